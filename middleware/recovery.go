package middleware

import (
	"log"

	"main/utils"

	"github.com/gin-gonic/gin"
)

func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("panic recovered: %v", err)
				utils.TrackError("panic", "handler")
				utils.InternalError(c, "unexpected server error")
				c.Abort()
			}
		}()
		c.Next()
	}
}
