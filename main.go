// File: /main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	gormlogger "gorm.io/gorm/logger"

	"eventhub-api/config"
	"eventhub-api/database"
	"eventhub-api/jobs"
	"eventhub-api/logger"
	"eventhub-api/middleware"
	"eventhub-api/routes"
	"eventhub-api/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel)
	if cfg.UsesDefaultSecret() {
		l.Warn("JWT_SECRET is not set, sessions are signed with the development key")
	}
	log := l.WithField("from", "main")

	// Initialize database
	dbLogLevel := gormlogger.Warn
	if l.IsLevelEnabled(logrus.DebugLevel) {
		dbLogLevel = gormlogger.Info
	}
	db, err := database.Initialize(cfg.DBDriver, cfg.DatabaseURL, dbLogLevel)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	if err := database.SeedRoles(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}
	if cfg.AdminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}
		seed := database.AdminSeed{Username: cfg.AdminUsername, Email: cfg.AdminEmail, PasswordHash: string(hash)}
		if err := database.SeedAdmin(db, seed, log); err != nil {
			log.Warnf("failed to seed admin user: %v", err)
		}
	}

	// Mail delivery
	mailer, err := services.NewMailer(cfg, l)
	if err != nil {
		log.Fatalf("failed to configure mailer: %v", err)
	}
	dispatcher := jobs.NewMailDispatcher(mailer, cfg.NotifyWorkers, cfg.NotifyQueueSize, cfg.NotifyTimeout*2, l)
	dispatcher.Start()
	defer dispatcher.Stop()
	emailService := services.NewEmailService(dispatcher, cfg.BaseURL, cfg.NotifyTimeout, l)

	// Session revocation
	var revocations services.RevocationStore
	if cfg.RedisURL != "" {
		store, err := services.NewRedisRevocationStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = store.Ping(ctx)
		cancel()
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer store.Close()
		revocations = store
	} else {
		store := services.NewMemoryRevocationStore()
		cleanup := jobs.NewCleanupJob("revoked-token", store, 15*time.Minute, l)
		cleanup.Start()
		defer cleanup.Stop()
		revocations = store
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	limiterCleanup := jobs.NewCleanupJob("rate-limiter", rateLimiter, 10*time.Minute, l)
	limiterCleanup.Start()
	defer limiterCleanup.Stop()

	gin.SetMode(cfg.GinMode)

	// Create router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(l))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.ErrorHandler(l))

	// Setup routes
	routes.SetupRoutes(router, db, cfg, routes.Dependencies{
		EmailService: emailService,
		Revocations:  revocations,
		RateLimiter:  rateLimiter,
		Logger:       l,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("starting event management server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}
}
