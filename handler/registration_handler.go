package handler

import (
	"errors"
	"log"
	"strings"

	"main/dto"
	"main/services"
	"main/utils"

	"github.com/gin-gonic/gin"
)

func RegistrationHandler(c *gin.Context, provider *services.SupabaseAuth) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Email and password are required")
		return
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = strings.SplitN(req.Email, "@", 2)[0]
	}

	user, err := provider.SignUp(c.Request.Context(), req.Email, req.Password, displayName)
	if err != nil {
		utils.TrackAuthAttempt("failure", "register")
		var perr *services.ProviderError
		if errors.As(err, &perr) && perr.ClientCause() {
			utils.BadRequest(c, perr.Message)
			return
		}
		log.Printf("registration error: %v", err)
		utils.InternalError(c, err.Error())
		return
	}

	utils.TrackAuthAttempt("success", "register")
	utils.Created(c, "User registered successfully. Please check your email to confirm your account.", user)
}
