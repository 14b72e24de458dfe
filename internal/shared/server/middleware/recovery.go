package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"analyst-backend/internal/shared/apierr"
	"analyst-backend/internal/shared/server/respond"
	"analyst-backend/internal/shared/telemetry"
)

// Recovery recovers from panics and returns an internal error response.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				telemetry.Error("panic", map[string]any{
					"request_id": RequestIDFromContext(c),
					"error":      fmt.Sprint(rec),
					"stack":      string(debug.Stack()),
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
				})
				respond.Error(c, http.StatusInternalServerError, apierr.KindInternal, "Internal Server Error")
			}
		}()
		c.Next()
	}
}
