package handler

import (
	"errors"
	"log"

	"main/dto"
	"main/services"
	"main/utils"

	"github.com/gin-gonic/gin"
)

func ForgotPasswordHandler(c *gin.Context, provider *services.SupabaseAuth) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Email is required")
		return
	}

	redirectTo := utils.GetEnvAsString("FRONTEND_URL", "") + "/reset-password"
	if err := provider.ResetPasswordForEmail(c.Request.Context(), req.Email, redirectTo); err != nil {
		respondProviderError(c, err, "forgot password")
		return
	}

	utils.SuccessMessage(c, "Password reset email sent successfully", nil)
}

func ResetPasswordHandler(c *gin.Context, provider *services.SupabaseAuth) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Access token, refresh token, and new password are required")
		return
	}

	err := provider.UpdateUserPassword(c.Request.Context(), req.AccessToken, req.RefreshToken, req.NewPassword)
	if err != nil {
		utils.TrackAuthAttempt("failure", "reset")
		respondProviderError(c, err, "reset password")
		return
	}

	utils.TrackAuthAttempt("success", "reset")
	utils.SuccessMessage(c, "Password updated successfully", nil)
}

func respondProviderError(c *gin.Context, err error, op string) {
	var perr *services.ProviderError
	if errors.As(err, &perr) && perr.ClientCause() {
		utils.BadRequest(c, perr.Message)
		return
	}
	log.Printf("%s error: %v", op, err)
	utils.InternalError(c, err.Error())
}
