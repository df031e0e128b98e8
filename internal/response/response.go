package response

import (
	"github.com/gin-gonic/gin"
)

// Error codes
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeUnavailable  = "SERVICE_UNAVAILABLE"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// RequestIDKey is the gin context key holding the request id
const RequestIDKey = "request_id"

// AppError is an error with a machine-readable code
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Code + ": " + e.Message + " (" + e.Details + ")"
	}
	return e.Code + ": " + e.Message
}

// ErrorResponse is the body of every error answer
type ErrorResponse struct {
	Error     *AppError `json:"error"`
	RequestID string    `json:"requestId,omitempty"`
}

// SendError writes an error body and aborts the chain
func SendError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     &AppError{Code: code, Message: message},
		RequestID: c.GetString(RequestIDKey),
	})
}
