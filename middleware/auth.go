package middleware

import (
	"main/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware gates protected routes. SessionMiddleware has already
// resolved the identity; requests without one are rejected before any
// handler runs. A resolved user that somehow lacks an id is treated the
// same as no session at all.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			utils.TrackAuthAttempt("failure", "session")
			utils.Unauthorized(c, "Unauthorized")
			c.Abort()
			return
		}
		c.Next()
	}
}
