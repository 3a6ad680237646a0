package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/pharmacy-pos/backend/internal/application/catalog"
	salesapp "github.com/pharmacy-pos/backend/internal/application/sales"
	"github.com/pharmacy-pos/backend/internal/infrastructure/cache"
	"github.com/pharmacy-pos/backend/internal/infrastructure/config"
	"github.com/pharmacy-pos/backend/internal/infrastructure/logger"
	"github.com/pharmacy-pos/backend/internal/infrastructure/persistence"
	"github.com/pharmacy-pos/backend/internal/infrastructure/telemetry"
	"github.com/pharmacy-pos/backend/internal/interfaces/http/handler"
	"github.com/pharmacy-pos/backend/internal/interfaces/http/middleware"
	"github.com/pharmacy-pos/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting pharmacy POS backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Environment:       cfg.App.Env,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry.DBTraceEnabled, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected")

	// Stock snapshot cache: Redis when configured, in-memory otherwise
	var stockCache catalogapp.StockSnapshotCache
	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedisStockCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Cache.StockTTL, log)
		if err != nil {
			log.Warn("Redis unavailable, using in-memory stock cache", zap.Error(err))
			stockCache = cache.NewMemoryStockCache(cfg.Cache.StockTTL)
		} else {
			defer func() {
				_ = redisCache.Close()
			}()
			stockCache = redisCache
			log.Info("Redis stock cache connected", zap.String("addr", cfg.Redis.Addr()))
		}
	} else {
		stockCache = cache.NewMemoryStockCache(cfg.Cache.StockTTL)
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	lotRepo := persistence.NewGormLotRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	productService := catalogapp.NewProductService(productRepo, lotRepo, stockCache, log)
	allocationService := salesapp.NewAllocationService(productRepo, lotRepo, log)
	saleService := salesapp.NewSaleService(scope, productRepo, saleRepo, customerRepo, productService, log)
	customerService := salesapp.NewCustomerService(customerRepo, saleRepo, log)

	// HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, "/health"))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
	}

	r := router.New(engine, "v1")
	r.RegisterSystem(handler.NewSystemHandler(db.Ping))
	r.Register(
		handler.NewProductHandler(productService),
		handler.NewSaleHandler(saleService, allocationService),
		handler.NewCustomerHandler(customerService),
	)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
