// Package httputil provides the JSON envelope shared by handlers and middleware.
package httputil

import (
	"oms-customers/internal/models"

	"github.com/gin-gonic/gin"
)

// LoginPath is where clients are sent when their session is missing.
const LoginPath = "/login"

// RequestIDKey is the gin context key the request id middleware writes.
const RequestIDKey = "request_id"

// Response is the envelope returned by the customer endpoints.
type Response struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Errors     map[string]string    `json:"errors,omitempty"`
	CustomerID uint                 `json:"customer_id,omitempty"`
	Data       *models.CustomerData `json:"data,omitempty"`
	Redirect   string               `json:"redirect,omitempty"`
	RequestID  string               `json:"request_id,omitempty"`
}

// Fail writes an unsuccessful envelope and aborts the handler chain.
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success:   false,
		Message:   message,
		RequestID: c.GetString(RequestIDKey),
	})
}

// Unauthorized writes a 401 with a login redirect hint.
func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(401, Response{
		Success:   false,
		Message:   message,
		Redirect:  LoginPath,
		RequestID: c.GetString(RequestIDKey),
	})
}
