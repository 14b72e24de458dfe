package respond

import (
	"github.com/gin-gonic/gin"

	"analyst-backend/internal/shared/apierr"
	"analyst-backend/internal/shared/telemetry"
)

// ErrorKindHeader carries the failure kind so clients need not parse messages.
const ErrorKindHeader = "X-Error-Kind"

// ErrorResponse is the error body: a single human-readable message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error sends an error response with the given status and kind.
func Error(c *gin.Context, status int, kind apierr.Kind, message string) {
	telemetry.Error("http.error", map[string]any{
		"status":     status,
		"kind":       string(kind),
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	})

	c.Header(ErrorKindHeader, string(kind))
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

// Fail classifies err and sends it using the status table for mode.
func Fail(c *gin.Context, mode apierr.Mode, err error) {
	apiErr := apierr.From(err)
	Error(c, mode.Status(apiErr.Kind), apiErr.Kind, apiErr.Error())
}
