package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"oms-customers/internal/config"
	"oms-customers/internal/database"
	"oms-customers/internal/server"
	"oms-customers/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	level := logLevel(log, cfg.LogLevel)
	log.SetLevel(level)
	gin.SetMode(ginMode(level))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}

	store := database.NewStore(db, database.NewAuditLogger(log))

	r := server.NewRouter(&server.Deps{
		Config:    cfg,
		Log:       log,
		DB:        store,
		Cities:    store,
		Updater:   service.NewCustomerService(store, log),
		Customers: store,
		Users:     store,
		Audit:     store,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// logLevel parses LOG_LEVEL, falling back to info.
func logLevel(log *logrus.Logger, name string) logrus.Level {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		log.WithError(err).Warn("invalid LOG_LEVEL, using info")
		return logrus.InfoLevel
	}
	return level
}

// ginMode enables gin's route dump and debug warnings only at debug level or above.
func ginMode(level logrus.Level) string {
	if level < logrus.DebugLevel {
		return gin.ReleaseMode
	}
	return gin.DebugMode
}
