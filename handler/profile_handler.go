package handler

import (
	"main/model"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// GetCurrentUserHandler returns the identity resolved for this request's
// session, or 401 when there is none.
func GetCurrentUserHandler(c *gin.Context) {
	value, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "Unauthorized")
		return
	}

	user, ok := value.(*model.User)
	if !ok || user.ID == "" {
		utils.Unauthorized(c, "Unauthorized")
		return
	}

	utils.Success(c, user)
}
