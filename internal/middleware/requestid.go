package middleware

import (
	"oms-customers/internal/httputil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID tags the request with an id for logs and error envelopes.
// An incoming X-Request-ID is reused when it is a UUID; anything else is replaced.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.GetHeader(RequestIDHeader))
		if err != nil {
			id = uuid.New()
		}

		c.Set(httputil.RequestIDKey, id.String())
		c.Header(RequestIDHeader, id.String())
		c.Next()
	}
}

// RequestIDFrom returns the id set by RequestID, or "" outside that middleware.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(httputil.RequestIDKey)
}
