package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Recovery turns a handler panic into a 500 with the generic error body.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		log.Error().
			Str("request_id", RequestIDFrom(c)).
			Str("route", c.FullPath()).
			Str("panic", fmt.Sprint(recovered)).
			Bytes("stack", debug.Stack()).
			Msg("handler panicked")

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message": "internal server error",
		})
	})
}
