package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/curiohub/curiohub/internal/auth"
	"github.com/curiohub/curiohub/internal/cache"
	"github.com/curiohub/curiohub/internal/config"
	"github.com/curiohub/curiohub/internal/database"
	"github.com/curiohub/curiohub/internal/email"
	"github.com/curiohub/curiohub/internal/handlers"
	"github.com/curiohub/curiohub/internal/logger"
	"github.com/curiohub/curiohub/internal/metrics"
	"github.com/curiohub/curiohub/internal/middleware"
	"github.com/curiohub/curiohub/internal/storage"
	"github.com/curiohub/curiohub/internal/telemetry"
	"github.com/curiohub/curiohub/internal/validation"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const serviceName = "curiohub-api"

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.FatalWithFields("Invalid configuration", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		logger.FatalWithFields("Failed to initialize logger", err)
	}
	defer logger.Close()

	if envErr != nil {
		logger.Log.Info(".env file not found, using system environment variables")
	}
	logger.Log.Info("=== CurioHub server starting ===", zap.String("environment", cfg.Environment))

	tp, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTelEndpoint,
		Enabled:      cfg.OTelEnabled,
		SamplingRate: cfg.OTelSamplingRate,
	})
	if err != nil {
		logger.FatalWithFields("Failed to initialize tracing", err)
	}

	if err := database.Initialize(cfg.DSN(), cfg.LogLevel == "debug"); err != nil {
		logger.FatalWithFields("Failed to initialize database", err)
	}
	defer database.Close()

	if err := database.Migrate(database.DB); err != nil {
		logger.FatalWithFields("Failed to run migrations", err)
	}
	if cfg.OTelEnabled {
		if err := database.DB.Use(telemetry.GORMTracingPlugin()); err != nil {
			logger.WarnWithFields("GORM tracing disabled", err)
		}
	}

	metrics.Initialize()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Redis is optional: without it listings are uncached and rate limits
	// are per instance.
	var (
		redisClient *cache.RedisClient
		feedCache   *cache.FeedCache
		rateLimit   gin.HandlerFunc
	)
	limitCfg := middleware.DefaultRateLimitConfig()
	limitCfg.Limit = cfg.RateLimit
	limitCfg.Window = cfg.RateLimitWindow
	if cfg.RedisHost != "" {
		client, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err != nil {
			logger.WarnWithFields("Redis unavailable, continuing without feed cache", err)
		} else {
			redisClient = client
			defer redisClient.Close()
			feedCache = cache.NewFeedCache(redisClient, cfg.FeedCacheTTL)
			rateLimit = middleware.RedisRateLimitMiddleware(redisClient, limitCfg)
		}
	}
	if rateLimit == nil {
		limiter := middleware.NewRateLimiter(limitCfg)
		go limiter.SweepEvery(ctx, limitCfg.Window)
		rateLimit = limiter.Middleware()
	}

	var mailer email.Sender = email.NewLogSender(cfg.BaseURL)
	if cfg.MailEnabled() {
		ses, err := email.NewSESSender(cfg.AWSRegion, cfg.MailFromEmail, cfg.MailFromName, cfg.BaseURL)
		if err != nil {
			logger.WarnWithFields("SES unavailable, reset links will be logged", err)
		} else {
			mailer = ses
		}
	}

	authService := auth.NewService([]byte(cfg.JWTSecret), database.DB)

	h := handlers.NewHandlers(database.DB, authService, mailer)
	h.SetFeedCache(feedCache)

	validator := validation.NewServiceValidator("redis", "s3").
		Require("database").
		Register("database", func(context.Context) error { return database.Health() })
	if redisClient != nil {
		validator.Register("redis", redisClient.Ping)
	}
	if cfg.AvatarsEnabled() {
		uploader, err := storage.NewS3Uploader(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3BaseURL)
		if err != nil {
			logger.WarnWithFields("S3 unavailable, avatar uploads disabled", err)
		} else {
			validator.Register("s3", uploader.CheckBucketAccess)
			h.SetAvatarUploader(uploader)
		}
	}
	if err := validator.ValidateServices(ctx); err != nil {
		logger.FatalWithFields("Service validation failed", err)
	}
	go h.AuthLimiter().SweepEvery(ctx, time.Minute)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.TracingMiddleware(serviceName)...)
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		if err := database.Health(); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(rateLimit)
	h.RegisterRoutes(api)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("CurioHub API listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithFields("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	stop()

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithFields("Server forced to shutdown", err)
	}
	if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
		logger.WarnWithFields("Tracer shutdown", err)
	}

	logger.Log.Info("Server exited")
}
