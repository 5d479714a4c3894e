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
	auditapp "github.com/wms/backend/internal/application/audit"
	catalogapp "github.com/wms/backend/internal/application/catalog"
	inventoryapp "github.com/wms/backend/internal/application/inventory"
	partnerapp "github.com/wms/backend/internal/application/partner"
	reportapp "github.com/wms/backend/internal/application/report"
	tradeapp "github.com/wms/backend/internal/application/trade"
	"github.com/wms/backend/internal/infrastructure/auth"
	"github.com/wms/backend/internal/infrastructure/cache"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/idgen"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/infrastructure/persistence"
	"github.com/wms/backend/internal/infrastructure/telemetry"
	"github.com/wms/backend/internal/interfaces/http/handler"
	"github.com/wms/backend/internal/interfaces/http/middleware"
	"github.com/wms/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting WMS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.App.Location()
	if err != nil {
		log.Fatal("Invalid timezone", zap.Error(err))
	}

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.TracingConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = logsProvider.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowQuery))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTracingEnabled,
		LogFullSQL:      cfg.Telemetry.DBTracingFullSQL,
		SlowQueryThresh: cfg.Database.SlowQuery,
		DBSystem:        "postgresql",
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Repositories
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	partRepo := persistence.NewGormPartRepository(db.DB)
	purchaseOrderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	inventoryItemRepo := persistence.NewGormInventoryItemRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB, persistence.RetryConfig{
		Attempts:  cfg.Inventory.DeliveryRetryAttempts,
		BaseDelay: cfg.Inventory.DeliveryRetryBaseDelay,
	}, log)

	// Unique id generation
	sequenceStore, err := cache.NewSequenceStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create sequence store", zap.Error(err))
	}
	defer func() {
		if err := sequenceStore.Close(); err != nil {
			log.Error("Error closing sequence store", zap.Error(err))
		}
	}()
	generator := idgen.NewGenerator(sequenceStore, inventoryItemRepo, idgen.Config{
		Prefix:      cfg.Inventory.IDPrefix,
		MaxAttempts: cfg.Inventory.MaxIDAttempts,
		Location:    loc,
	}, log)

	scanMetrics, err := telemetry.NewScanMetrics(telemetry.ScanMetricsConfig{
		Meter:           meterProvider.Meter("wms/inventory"),
		Logger:          log,
		CollectInterval: cfg.Telemetry.MetricsInterval,
		StockProvider:   inventoryItemRepo,
	})
	if err != nil {
		log.Fatal("Failed to initialize scan metrics", zap.Error(err))
	}
	scanMetrics.StartPeriodicCollection(ctx)
	defer scanMetrics.Stop()

	// Application services
	inventoryService := inventoryapp.NewInventoryService(
		customerRepo, partRepo, purchaseOrderRepo, inventoryItemRepo, txScope, generator,
		inventoryapp.Options{
			AllowOverDelivery: cfg.Inventory.AllowOverDelivery,
			MaxLabelCopies:    cfg.Inventory.MaxLabelCopies,
			MaxIDAttempts:     cfg.Inventory.MaxIDAttempts,
		},
	)
	inventoryService.SetLogger(log)
	inventoryService.SetScanMetrics(scanMetrics)
	if !cfg.Inventory.AllowOverDelivery {
		log.Info("Strict delivery policy enabled, over-delivery is rejected")
	}

	purchaseOrderService := tradeapp.NewPurchaseOrderService(purchaseOrderRepo, partRepo, customerRepo, txScope)
	purchaseOrderService.SetLogger(log)
	customerService := partnerapp.NewCustomerService(customerRepo)
	partService := catalogapp.NewPartService(partRepo, customerRepo)
	reportService := reportapp.NewReportService(inventoryItemRepo, purchaseOrderRepo, loc)
	auditService := auditapp.NewAuditService(auditRepo)
	auditService.SetLogger(log)

	handlers := handler.Handlers{
		System:        handler.NewSystemHandler(db, cfg.App.Name, version),
		Customer:      handler.NewCustomerHandler(customerService, auditService),
		Part:          handler.NewPartHandler(partService, auditService),
		PurchaseOrder: handler.NewPurchaseOrderHandler(purchaseOrderService, auditService),
		Inventory:     handler.NewInventoryHandler(inventoryService, auditService),
		Report:        handler.NewReportHandler(reportService, auditService),
	}

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORS(corsConfig),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Tracing(cfg.Telemetry.ServiceName, tracerProvider.IsEnabled()),
		middleware.HTTPMetrics(meterProvider.Meter("wms/http")),
	)

	var verifier middleware.TokenVerifier
	if cfg.JWT.Secret != "" {
		verifier = auth.NewVerifier(cfg.JWT)
	}
	if cfg.HTTP.DevActorHeaders {
		log.Warn("Development actor headers are enabled, do not use in production")
	}
	actor := middleware.Actor(middleware.ActorConfig{
		Verifier:   verifier,
		DevHeaders: cfg.HTTP.DevActorHeaders,
		SkipPaths:  []string{"/api/v1/health", "/api/v1/system/info"},
		Logger:     log,
	})

	router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithMiddleware(actor, middleware.SpanEnricher()),
	).Register(handlers.Routes()...).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
	case <-ctx.Done():
		log.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
	_ = log.Sync()
	if err := logsProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}

	if len(serverErr) > 0 {
		os.Exit(1)
	}
}
