package middleware

import "github.com/gin-gonic/gin"

// apiHeaders are set on every response. Nothing here is ever rendered by a
// browser or cached by a proxy.
var apiHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Content-Security-Policy", "default-src 'none'"},
	{"Cache-Control", "no-store"},
	{"Pragma", "no-cache"},
}

func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range apiHeaders {
			h.Set(kv[0], kv[1])
		}
		c.Next()
	}
}
