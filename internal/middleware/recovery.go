package middleware

import (
	"fmt"
	"net/http"

	"github.com/Josepmarimon/bau-assist-sub002/internal/logger"
	"github.com/Josepmarimon/bau-assist-sub002/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Recovery turns a panic into a 500 envelope, logs it and reports it to Rollbar.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		reqID, _ := c.Get(response.ContextKeyRequestID)
		zerolog.Ctx(c.Request.Context()).Error().
			Str("panic", fmt.Sprint(recovered)).
			Str("path", c.Request.URL.Path).
			Msg("Recovered from panic")
		logger.ReportPanic(recovered, map[string]interface{}{
			"request_id": reqID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		})
		response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
	})
}
