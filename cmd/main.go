package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"github.com/sirupsen/logrus"

	"sentinel/internal/caching"
	"sentinel/internal/config"
	"sentinel/internal/handlers"
	"sentinel/internal/logs"
	"sentinel/internal/middleware"
	"sentinel/internal/repositories"
	"sentinel/internal/services"
	"sentinel/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log, err := logs.New(logs.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if err != nil {
		logrus.Fatalf("Failed to initialise logging: %v", err)
	}

	ctx := context.Background()

	// Database connection
	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	// JWT configuration
	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Warn("JWT_SECRET not set, using a generated secret; sessions will not survive a restart")
	}

	// Redis
	redisClient := caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisClient.Close()
	cacheSvc := caching.NewRedisCacheService(redisClient)

	// Mail delivery
	var mailer services.Mailer
	if cfg.SMTP.Host != "" {
		mailer = services.NewSMTPMailer(services.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.Mail.From,
		}, cfg.FrontendURL)
	} else {
		log.Warn("SMTP_HOST not set, activation links will be logged instead of mailed")
		mailer = services.NewLogMailer(log, cfg.FrontendURL)
	}

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	organizationRepo := repositories.NewOrganizationRepo(pool)
	txManager := repositories.NewTxManager(pool)

	// Services
	hasher := services.NewBcryptHasher(cfg.Auth.BcryptCost)
	sessionSvc := services.NewSessionService(cacheSvc, jwtSecret, cfg.JWT.TTL, log)
	accountSvc := services.NewAccountService(services.AccountDeps{
		Users:  userRepo,
		Tx:     txManager,
		Hasher: hasher,
		Mailer: mailer,
		Cache:  cacheSvc,
		Policy: services.LoginPolicy{
			MaxAttempts: cfg.Auth.LoginMaxAttempts,
			Window:      cfg.Auth.LoginWindow,
		},
		Log: log,
	})
	userSvc := services.NewUserService(userRepo, organizationRepo, hasher, mailer, log)
	organizationSvc := services.NewOrganizationService(organizationRepo, userRepo)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(log)

	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	handlers.RegisterRoutes(e, handlers.Routes{
		Auth: handlers.NewAuthHandlers(accountSvc, sessionSvc, handlers.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.Secure,
		}),
		Users:         handlers.NewUserHandlers(userSvc),
		Organizations: handlers.NewOrganizationHandlers(organizationSvc),
		Health:        handlers.NewHealthHandlers(pool, cacheSvc),
		Session:       middleware.Session(sessionSvc, cfg.Session.CookieName),
	})

	// Start server
	go func() {
		log.Infof("Sentinel v%s starting on port %d", version, cfg.Server.Port)
		if err := e.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Graceful shutdown failed: %v", err)
	}
}
