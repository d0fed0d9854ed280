package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sofraeats/marketplace/internal/admin"
	"github.com/sofraeats/marketplace/internal/catalog"
	"github.com/sofraeats/marketplace/internal/orders"
	"github.com/sofraeats/marketplace/internal/profiles"
	"github.com/sofraeats/marketplace/internal/providers"
	"github.com/sofraeats/marketplace/internal/settlements"
	"github.com/sofraeats/marketplace/pkg/cache"
	"github.com/sofraeats/marketplace/pkg/common"
	"github.com/sofraeats/marketplace/pkg/config"
	"github.com/sofraeats/marketplace/pkg/database"
	"github.com/sofraeats/marketplace/pkg/errors"
	"github.com/sofraeats/marketplace/pkg/eventbus"
	"github.com/sofraeats/marketplace/pkg/logger"
	"github.com/sofraeats/marketplace/pkg/middleware"
	"github.com/sofraeats/marketplace/pkg/ratelimit"
	redisclient "github.com/sofraeats/marketplace/pkg/redis"
	"github.com/sofraeats/marketplace/pkg/tracing"
)

const (
	serviceName = "admin-service"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting admin service",
		zap.String("service", serviceName),
		zap.String("version", version),
		zap.String("environment", cfg.Server.Environment),
	)

	sentryConfig := errors.DefaultSentryConfig()
	sentryConfig.ServerName = serviceName
	sentryConfig.Release = version
	if err := errors.InitSentry(sentryConfig); err != nil {
		logger.Warn("Failed to initialize Sentry, continuing without error tracking", zap.Error(err))
	} else {
		defer errors.Flush(2 * time.Second)
	}

	tracerEnabled := os.Getenv("OTEL_ENABLED") == "true"
	if tracerEnabled {
		tracerCfg := tracing.Config{
			ServiceName:    serviceName,
			ServiceVersion: version,
			Environment:    cfg.Server.Environment,
			OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Enabled:        true,
		}
		tp, err := tracing.InitTracer(tracerCfg, logger.Get())
		if err != nil {
			logger.Warn("Failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					logger.Warn("Failed to shutdown tracer", zap.Error(err))
				}
			}()
		}
	}

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(&cfg.Database); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	db, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)
	logger.Info("Connected to database")

	var (
		redisClient  *redisclient.Client
		cacheManager *cache.Manager
		limiter      *ratelimit.Limiter
	)
	redisClient, err = redisclient.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Warn("Failed to connect to Redis - caching and rate limiting disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		cacheManager = cache.NewManager(redisClient)
		if cfg.RateLimit.Enabled {
			limiter = ratelimit.NewLimiter(redisClient.Client, cfg.RateLimit)
		}
		logger.Info("Connected to Redis")
	}

	var bus *eventbus.Bus
	if cfg.NATS.Enabled {
		busCfg := eventbus.DefaultConfig()
		busCfg.URL = cfg.NATS.URL
		busCfg.Name = serviceName
		bus, err = eventbus.New(busCfg)
		if err != nil {
			logger.Warn("Failed to connect to NATS - events disabled", zap.Error(err))
		} else {
			defer bus.Close()
			logger.Info("Connected to NATS")
		}
	}

	profileRepo := profiles.NewRepository(db)
	providerRepo := providers.NewRepository(db)
	catalogRepo := catalog.NewRepository(db)
	orderRepo := orders.NewRepository(db)
	settlementRepo := settlements.NewRepository(db)
	auditRepo := admin.NewAuditRepository(db)

	profileSvc := profiles.NewService(profileRepo, serviceName)
	providerSvc := providers.NewService(providerRepo, serviceName)
	providerSvc.SetRoleUpdater(profileSvc)
	orderSvc := orders.NewService(orderRepo, providerRepo, catalogRepo, serviceName)
	orderSvc.SetCounterUpdater(profileSvc)
	settlementSvc := settlements.NewService(settlementRepo, providerRepo, serviceName)
	if bus != nil {
		profileSvc.SetEventPublisher(bus)
		providerSvc.SetEventPublisher(bus)
		orderSvc.SetEventPublisher(bus)
		settlementSvc.SetEventPublisher(bus)
	}
	if cacheManager != nil {
		providerSvc.SetCache(cacheManager)
	}

	adminSvc := admin.NewService(auditRepo, providerSvc, profileSvc, orderSvc, settlementSvc)
	if cacheManager != nil {
		adminSvc.SetCache(cacheManager)
	}
	handler := admin.NewHandler(adminSvc)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RecoveryWithSentry())
	router.Use(middleware.SentryMiddleware())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestTimeout(time.Duration(cfg.Server.RequestTimeout) * time.Second))
	router.Use(middleware.RequestLogger(serviceName))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Metrics(serviceName))
	if tracerEnabled {
		router.Use(middleware.TracingMiddleware(serviceName))
	}
	router.Use(middleware.ErrorTracking())

	router.GET("/healthz", common.HealthCheck(serviceName, version))
	router.GET("/health/live", common.LivenessProbe(serviceName, version))

	healthChecks := map[string]func() error{
		"database": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.Ping(ctx)
		},
	}
	if redisClient != nil {
		healthChecks["redis"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Client.Ping(ctx).Err()
		}
	}
	router.GET("/health/ready", common.ReadinessProbe(serviceName, version, healthChecks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1/admin")
	api.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	api.Use(middleware.RequireAdmin())
	if limiter != nil {
		api.Use(middleware.RateLimit(limiter, cfg.RateLimit))
	}
	{
		api.GET("/dashboard", handler.Dashboard)

		providersGroup := api.Group("/providers")
		{
			providersGroup.GET("", handler.ListProviders)
			providersGroup.GET("/pending", handler.PendingProviders)
			providersGroup.POST("/:id/approve", handler.ApproveProvider)
			providersGroup.POST("/:id/reject", handler.RejectProvider)
			providersGroup.POST("/:id/suspend", handler.SuspendProvider)
			providersGroup.POST("/:id/reinstate", handler.ReinstateProvider)
			providersGroup.POST("/:id/featured", handler.SetProviderFeatured)
		}

		profilesGroup := api.Group("/profiles")
		{
			profilesGroup.GET("", handler.ListProfiles)
			profilesGroup.POST("/:id/role", handler.ChangeProfileRole)
			profilesGroup.POST("/:id/deactivate", handler.DeactivateProfile)
			profilesGroup.POST("/:id/reactivate", handler.ReactivateProfile)
		}

		ordersGroup := api.Group("/orders")
		{
			ordersGroup.GET("", handler.ListOrders)
			ordersGroup.POST("/:id/refund", handler.RefundOrder)
		}

		settlementsGroup := api.Group("/settlements")
		{
			settlementsGroup.GET("", handler.ListSettlements)
			settlementsGroup.GET("/:id", handler.SettlementDetail)
		}

		payoutsGroup := api.Group("/payouts")
		{
			payoutsGroup.POST("", handler.RecordPayout)
			payoutsGroup.POST("/:id/start", handler.StartPayout)
			payoutsGroup.POST("/:id/complete", handler.CompletePayout)
			payoutsGroup.POST("/:id/fail", handler.FailPayout)
		}

		api.GET("/audit-logs", handler.AuditTrail)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
