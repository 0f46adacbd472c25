package middleware_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"oms-customers/internal/httputil"
	"oms-customers/internal/metrics"
	"oms-customers/internal/middleware"
	"oms-customers/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(values map[string]any) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("0123456789abcdef0123456789abcdef"))))
	r.Use(func(c *gin.Context) {
		s := sessions.Default(c)
		for k, v := range values {
			s.Set(k, v)
		}
		c.Next()
	})
	return r
}

func ok(c *gin.Context) { c.String(http.StatusOK, "ok") }

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func formRequest(method, path string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestRequireAuth(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		r := newEngine(nil)
		r.GET("/x", middleware.RequireAuth(), ok)

		w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
		var resp httputil.Response
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Redirect != httputil.LoginPath || resp.Message != "Unauthorized access. Please login again." {
			t.Errorf("unexpected body %+v", resp)
		}
	})

	t.Run("logged in", func(t *testing.T) {
		r := newEngine(map[string]any{middleware.SessionUserID: uint(3)})
		r.GET("/x", middleware.RequireAuth(), ok)

		if w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)); w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	for role, want := range map[models.UserRole]int{
		models.RoleAdmin: http.StatusOK,
		models.RoleStaff: http.StatusForbidden,
		"":               http.StatusForbidden,
	} {
		r := newEngine(map[string]any{middleware.SessionRole: string(role)})
		r.GET("/x", middleware.RequireRole(models.RoleAdmin), ok)

		if w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)); w.Code != want {
			t.Errorf("role %q: expected %d, got %d", role, want, w.Code)
		}
	}
}

func TestRequireMethod(t *testing.T) {
	r := newEngine(nil)
	r.Any("/x", middleware.RequireMethod(http.MethodPost), ok)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w := serve(r, httptest.NewRequest(method, "/x", nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: expected 405, got %d", method, w.Code)
		}
		if w.Header().Get("Allow") != http.MethodPost {
			t.Errorf("%s: Allow = %q", method, w.Header().Get("Allow"))
		}
	}

	if w := serve(r, httptest.NewRequest(http.MethodPost, "/x", nil)); w.Code != http.StatusOK {
		t.Errorf("POST: expected 200, got %d", w.Code)
	}
}

func TestRequireCSRF(t *testing.T) {
	tests := []struct {
		name    string
		session string
		form    url.Values
		want    int
	}{
		{"match", "tok-123", url.Values{"csrf_token": {"tok-123"}}, http.StatusOK},
		{"mismatch", "tok-123", url.Values{"csrf_token": {"tok-456"}}, http.StatusForbidden},
		{"missing field", "tok-123", url.Values{}, http.StatusForbidden},
		{"no session token", "", url.Values{"csrf_token": {""}}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine(map[string]any{middleware.SessionCSRF: tt.session})
			called := false
			r.POST("/x", middleware.RequireCSRF(), func(c *gin.Context) {
				called = true
				ok(c)
			})

			w := serve(r, formRequest(http.MethodPost, "/x", tt.form))

			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
			if called != (tt.want == http.StatusOK) {
				t.Errorf("handler called = %v", called)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	var seen string
	r.GET("/x", func(c *gin.Context) {
		seen = middleware.RequestIDFrom(c)
		ok(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(middleware.RequestIDHeader, "client-supplied")
	w := serve(r, req)

	got := w.Header().Get(middleware.RequestIDHeader)
	if got == "" || got == "client-supplied" {
		t.Errorf("expected a server generated id, got %q", got)
	}
	if seen != got {
		t.Errorf("context id %q != header id %q", seen, got)
	}
}

func TestRequestID_ReusesUUID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/x", ok)

	const upstream = "6f1c2a1e-8a47-4d2b-9a55-0c3e5f7b9d10"
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(middleware.RequestIDHeader, upstream)
	w := serve(r, req)

	if got := w.Header().Get(middleware.RequestIDHeader); got != upstream {
		t.Errorf("expected upstream id %q to be kept, got %q", upstream, got)
	}
}

func TestRequestIDFrom_WithoutMiddleware(t *testing.T) {
	r := gin.New()
	seen := "unset"
	r.GET("/x", func(c *gin.Context) {
		seen = middleware.RequestIDFrom(c)
		ok(c)
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))

	if seen != "" {
		t.Errorf("expected empty id, got %q", seen)
	}
}

func TestLogger_WithoutSessions(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(log))
	r.GET("/x", ok)

	if w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(middleware.SecurityHeaders())
	r.GET("/x", ok)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))

	want := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Content-Security-Policy": "default-src 'none'",
		"Cache-Control":           "no-store",
		"Pragma":                  "no-cache",
	}
	for k, v := range want {
		if got := w.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestMetrics_LabelsByRoute(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Metrics())
	r.GET("/customers/:id", ok)

	before := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues(http.MethodGet, "/customers/:id", "200"))
	serve(r, httptest.NewRequest(http.MethodGet, "/customers/42", nil))
	after := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues(http.MethodGet, "/customers/:id", "200"))

	if after-before != 1 {
		t.Errorf("expected one request under the route pattern, got %v", after-before)
	}

	before = testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404"))
	serve(r, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	after = testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404"))

	if after-before != 1 {
		t.Errorf("expected one unmatched request, got %v", after-before)
	}
}
