package handler

import (
	"errors"
	"log"

	"main/dto"
	"main/middleware"
	"main/services"
	"main/utils"

	"github.com/gin-gonic/gin"
)

func LoginHandler(c *gin.Context, strategy services.Strategy, sessions middleware.SessionStore) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Email and password are required")
		return
	}

	result, err := strategy.Authenticate(c.Request.Context(), services.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		utils.TrackAuthAttempt("failure", "login")
		var perr *services.ProviderError
		if errors.As(err, &perr) && perr.ClientCause() {
			utils.Unauthorized(c, perr.Message)
			return
		}
		log.Printf("login error: %v", err)
		utils.InternalError(c, err.Error())
		return
	}

	if _, err := middleware.CreateSession(c, result.User, result.AccessToken, sessions); err != nil {
		log.Printf("session creation failed: %v", err)
		utils.InternalError(c, "Failed to create session")
		return
	}

	utils.TrackAuthAttempt("success", "login")
	utils.SuccessMessage(c, "Login successful", result.User)
}
