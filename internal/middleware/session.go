package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session keys.
const (
	SessionUserID = "user_id"
	SessionRole   = "role"
	SessionCSRF   = "csrf_token"
)

// sessionValue reads key from the request's session; nil when the
// sessions middleware is not installed on this route.
func sessionValue(c *gin.Context, key string) any {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return nil
	}
	return sessions.Default(c).Get(key)
}

// CurrentUserID returns the logged-in user's id, or 0 without a session.
func CurrentUserID(c *gin.Context) uint {
	uid, _ := sessionValue(c, SessionUserID).(uint)
	return uid
}

// CurrentRole returns the logged-in user's role name.
func CurrentRole(c *gin.Context) string {
	role, _ := sessionValue(c, SessionRole).(string)
	return role
}

// CSRFToken returns the anti-forgery token bound to the session.
func CSRFToken(c *gin.Context) string {
	tok, _ := sessionValue(c, SessionCSRF).(string)
	return tok
}
