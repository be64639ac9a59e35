package middleware

import (
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"memoria/pkg/utils"
)

// SentryMiddleware attaches a per-request hub to the request context and
// turns panics into captured events and a 500 response.
func SentryMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub := sentry.CurrentHub().Clone()
		hub.Scope().SetRequest(c.Request)
		if traceID := c.GetString("trace_id"); traceID != "" {
			hub.Scope().SetTag("trace_id", traceID)
		}
		c.Request = c.Request.WithContext(sentry.SetHubOnContext(c.Request.Context(), hub))

		defer func() {
			if r := recover(); r != nil {
				hub.RecoverWithContext(c.Request.Context(), r)
				log.Error("panic recovered",
					zap.String("path", c.Request.URL.Path),
					zap.String("panic", fmt.Sprint(r)),
					zap.Stack("stack"))
				utils.RespondError(c, http.StatusInternalServerError, "Internal server error")
				c.Abort()
			}
		}()

		c.Next()
	}
}
