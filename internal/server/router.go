package server

import (
	"context"
	"net/http"
	"time"

	"oms-customers/internal/config"
	"oms-customers/internal/handlers"
	"oms-customers/internal/middleware"
	"oms-customers/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const sessionName = "oms_session"

// Pinger reports database reachability for /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds everything the router wires together.
type Deps struct {
	Config    *config.Config
	Log       *logrus.Logger
	DB        Pinger
	Cities    handlers.CitySearcher
	Updater   handlers.CustomerUpdater
	Customers handlers.CustomerReader
	Users     handlers.UserFinder
	Audit     handlers.AuditReader
}

func NewRouter(deps *Deps) *gin.Engine {
	cfg := deps.Config

	r := gin.New()
	_ = r.SetTrustedProxies(nil)

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.Metrics())
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           1 * time.Hour,
		}))
	}

	store := cookie.NewStore([]byte(cfg.SessionSecret.Value()))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int((12 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   cfg.SessionSecure,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	authH := handlers.NewAuthHandler(deps.Users, deps.Log)
	cityH := handlers.NewCityHandler(deps.Cities, deps.Log)
	customerH := handlers.NewCustomerHandler(deps.Updater, deps.Customers, deps.Log)
	auditH := handlers.NewAuditHandler(deps.Audit, deps.Log)

	// AUTH
	r.POST("/login", authH.Login)
	r.POST("/logout", authH.Logout)

	auth := r.Group("/")
	auth.Use(middleware.RequireAuth())

	auth.GET("/session", authH.Session)

	// CUSTOMERS
	auth.GET("/customers/cities", cityH.Lookup)
	// Any: the 401 check above must win over the 405 for a wrong method.
	auth.Any("/customers/update",
		middleware.RequireMethod(http.MethodPost),
		middleware.RequireCSRF(),
		customerH.Update,
	)
	auth.GET("/customers/:id", customerH.Get)

	// AUDIT
	auth.GET("/audit",
		middleware.RequireRole(models.RoleAdmin),
		auditH.List,
	)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		if err := deps.DB.Ping(c.Request.Context()); err != nil {
			deps.Log.WithError(err).Warn("health check: database unreachable")
			c.String(http.StatusServiceUnavailable, "database unavailable")
			return
		}
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
