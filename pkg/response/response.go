package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response represents a standard API error response.
type Response struct {
	Success bool       `json:"success"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo contains error details.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Ack is the acknowledgement body returned by ingest endpoints.
type Ack struct {
	Status string `json:"status"`
}

const (
	StatusReceived = "received"
	StatusOK       = "ok"
)

// Acknowledge sends a 200 response with {"status": status}.
func Acknowledge(c *gin.Context, status string) {
	c.JSON(http.StatusOK, Ack{Status: status})
}

// JSON sends a 200 response with the raw value, without the error envelope.
// Snapshot reads are consumed directly by dashboards.
func JSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Error sends an error response.
func Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// InternalError sends a 500 error response.
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}
