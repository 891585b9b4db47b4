package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/casesimpli/assistant-backend/internal/ai/azure"
	"github.com/casesimpli/assistant-backend/internal/api"
	"github.com/casesimpli/assistant-backend/internal/cache/redis"
	"github.com/casesimpli/assistant-backend/internal/config"
	"github.com/casesimpli/assistant-backend/internal/ratelimit"
	"github.com/casesimpli/assistant-backend/internal/service"
	"github.com/casesimpli/assistant-backend/internal/service/chat"
	"github.com/casesimpli/assistant-backend/internal/service/document"
	"github.com/casesimpli/assistant-backend/internal/storage/memory"
	"github.com/casesimpli/assistant-backend/internal/storage/postgres"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}

	// Configure log format and level
	if cfg.LogFormat == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using info")
	}

	logger.Info("starting assistant-backend server")

	ctx := context.Background()

	// Initialize storage
	var (
		convRepo     chat.ConversationStore
		templateRepo document.TemplateStore
	)
	switch cfg.Storage.Backend {
	case config.StorageBackendMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		convRepo = memory.NewConversationStore()
		templateRepo = memory.NewTemplateStore()
	default:
		db, err := postgres.New(ctx, cfg.Database.DSN, logger)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to database")
		}
		defer db.Close()
		convRepo = postgres.NewConversationRepository(db.Pool())
		templateRepo = postgres.NewTemplateRepository(db.Pool())
	}

	// Initialize rate limiter
	var limiter ratelimit.Limiter
	switch cfg.RateLimit.Backend {
	case config.RateLimitBackendRedis:
		redisClient, err := redis.New(cfg.Redis.URI)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to redis")
		}
		defer redisClient.Close()
		limiter = ratelimit.NewRedis(redisClient, cfg.RateLimit.Window, cfg.RateLimit.MaxRequests)
	default:
		limiter = ratelimit.NewMemory(cfg.RateLimit.Window, cfg.RateLimit.MaxRequests)
	}

	// Initialize services
	authService := service.NewAuthService(cfg.Server.JWTSecret)
	documentService := document.NewService(templateRepo, logger)

	// The chat routes stay disabled until the model deployment is fully configured
	var chatService *chat.Service
	if missing := cfg.Azure.Missing(); len(missing) > 0 {
		logger.WithField("missing", strings.Join(missing, ",")).Error("azure openai is not configured, chat routes will answer 503")
	} else {
		azureClient := azure.NewClient(azure.Config{
			APIKey:     cfg.Azure.APIKey,
			Endpoint:   cfg.Azure.Endpoint,
			Model:      cfg.Azure.Model,
			Deployment: cfg.Azure.Deployment,
			APIVersion: cfg.Azure.APIVersion,
			Timeout:    cfg.Azure.Timeout,
		})
		chatService = chat.NewService(limiter, convRepo, azureClient, logger, cfg.Chat)
	}

	// Initialize API server
	server := api.NewServer(authService, convRepo, chatService, documentService, logger)

	// Create Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Add middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			}).Info("request")
			return nil
		},
	}))

	server.Register(e)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	go func() {
		logger.WithField("addr", addr).Info("server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown error")
	}

	// Let in-flight title jobs finish before the stores close
	if chatService != nil {
		chatService.Wait()
	}

	logger.Info("server stopped")
}
