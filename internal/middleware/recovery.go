package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"taskify/server/internal/dto"

	"github.com/gin-gonic/gin"
)

// RecoveryWithLog turns a panic into a 500. The stack only goes to the log.
func RecoveryWithLog() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		log.Printf("panic recovered on %s %s: %v\n%s", c.Request.Method, c.Request.URL.Path, recovered, debug.Stack())
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewError(
			dto.CodeInternal, "Internal server error"))
	})
}
