package middleware

import (
	"net/http"
	"strings"

	"main/utils"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the configured frontend origins with credentials,
// which cookie-based sessions require.
func CORSMiddleware() gin.HandlerFunc {
	allowedOrigins := strings.Split(
		utils.GetEnvAsString("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"),
		",",
	)

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		for _, allowed := range allowedOrigins {
			if origin == strings.TrimSpace(allowed) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers",
			"Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods",
			"POST, GET, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
