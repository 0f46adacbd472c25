package middleware

import (
	"crypto/subtle"
	"net/http"

	"oms-customers/internal/httputil"
	"oms-customers/internal/models"

	"github.com/gin-gonic/gin"
)

// CSRFField is the form field carrying the anti-forgery token.
const CSRFField = "csrf_token"

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUserID(c) == 0 {
			httputil.Unauthorized(c, "Unauthorized access. Please login again.")
			return
		}
		c.Next()
	}
}

func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := map[models.UserRole]struct{}{}
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := models.UserRole(CurrentRole(c))
		if _, ok := roleSet[role]; !ok {
			httputil.Fail(c, http.StatusForbidden, "Access denied.")
			return
		}
		c.Next()
	}
}

// RequireMethod rejects everything but method with 405. Routes using it are
// registered with Any so that authentication is checked first.
func RequireMethod(method string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != method {
			c.Header("Allow", method)
			httputil.Fail(c, http.StatusMethodNotAllowed, "Invalid request method.")
			return
		}
		c.Next()
	}
}

// RequireCSRF compares the submitted token with the one stored in the session.
func RequireCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		want := CSRFToken(c)
		got := c.PostForm(CSRFField)
		if want == "" || got == "" || subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
			httputil.Fail(c, http.StatusForbidden, "Invalid security token. Please refresh the page and try again.")
			return
		}
		c.Next()
	}
}
