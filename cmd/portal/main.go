package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"hostelportal/internal/apiclient"
	"hostelportal/internal/auth"
	"hostelportal/internal/config"
	"hostelportal/internal/httpmiddleware"
	"hostelportal/internal/session"
	"hostelportal/internal/store"
	"hostelportal/internal/web"
)

func main() {
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := runHTTP(cfg, logger); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

func newLogger(cfg config.App) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if cfg.Production() {
		zc = zap.NewProductionConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		log.Printf("invalid log level %q, using info", cfg.LogLevel)
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zc.Level = level
	return zc.Build()
}

func runHTTP(cfg config.App, logger *zap.Logger) error {
	var sessions session.Store
	if cfg.SessionBackend == "memory" {
		sessions = session.NewMemory(cfg.SessionTTL)
		logger.Info("using in-memory sessions")
	} else {
		redisClient := store.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
		defer func() { _ = redisClient.Close() }()
		if !redisClient.Healthy(context.Background()) {
			logger.Warn("redis not reachable", zap.String("addr", cfg.RedisAddr))
		}
		sessions = store.NewSessions(redisClient, "portal:session:", cfg.SessionTTL)
	}

	backend := apiclient.New(cfg.APIBaseURL, cfg.UpstreamTimeout, logger, apiclient.NewMetrics(prometheus.DefaultRegisterer))
	srvHandler := web.New(web.Options{
		Log:          logger,
		Backend:      backend,
		Sessions:     sessions,
		Issuer:       auth.NewIssuer(cfg.SessionSigningKey, cfg.SessionIssuer, cfg.SessionTTL),
		CookieSecure: cfg.CookieSecure,
		AdminEmail:   cfg.AdminEmail,
		Location:     cfg.Location(),
		Limiter:      httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin, prometheus.DefaultRegisterer),
	}).Handler()

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      srvHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting portal", zap.String("port", cfg.HTTPPort), zap.String("api", cfg.APIBaseURL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced shutdown", zap.Error(err))
	}

	logger.Info("server exited")
	return nil
}
