package handler

import (
	"log"

	"main/middleware"
	"main/services"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// LogoutHandler destroys the session and asks the provider to revoke the
// backing token. Safe to call with no session at all.
func LogoutHandler(c *gin.Context, sessions middleware.SessionStore, provider *services.SupabaseAuth) {
	sessionID, err := c.Cookie(middleware.SessionCookieName)
	if err == nil && sessionID != "" {
		if session, err := sessions.GetSession(c.Request.Context(), sessionID); err == nil && session != nil {
			if err := provider.SignOut(c.Request.Context(), session.AccessToken); err != nil {
				log.Printf("upstream sign-out failed: %v", err)
			}
		}
		if err := sessions.DeleteSession(c.Request.Context(), sessionID); err != nil {
			log.Printf("session delete failed: %v", err)
		}
	}

	middleware.ClearSessionCookie(c)
	utils.SuccessMessage(c, "Logged out successfully", nil)
}
