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

	billingapp "github.com/travelcrm/backend/internal/application/billing"
	enquiryapp "github.com/travelcrm/backend/internal/application/enquiry"
	loyaltyapp "github.com/travelcrm/backend/internal/application/loyalty"
	"github.com/travelcrm/backend/internal/infrastructure/auth"
	"github.com/travelcrm/backend/internal/infrastructure/cache"
	"github.com/travelcrm/backend/internal/infrastructure/config"
	"github.com/travelcrm/backend/internal/infrastructure/logger"
	"github.com/travelcrm/backend/internal/infrastructure/persistence"
	"github.com/travelcrm/backend/internal/infrastructure/storage"
	"github.com/travelcrm/backend/internal/infrastructure/telemetry"
	"github.com/travelcrm/backend/internal/interfaces/http/handler"
	"github.com/travelcrm/backend/internal/interfaces/http/middleware"
	"github.com/travelcrm/backend/internal/interfaces/http/router"
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

	log.Info("Starting travel CRM backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry providers. Each is a no-op when disabled in config.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer shutdownProvider(log, "tracer", tracerProvider.Shutdown)

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer shutdownProvider(log, "meter provider", meterProvider.Shutdown)

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	defer shutdownProvider(log, "log exporter", loggerProvider.Shutdown)

	if loggerProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: loggerProvider,
			Level:          logger.ParseLevel(cfg.Log.Level),
		})
		log = telemetry.NewBridgedLogger(log.Core(), otelCore)
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilerEnabled,
		ServerAddress:     cfg.Telemetry.ProfilerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		ProfileCPU:        true,
		ProfileHeap:       true,
		ProfileGoroutines: true,
	}, log)
	if err != nil {
		log.Warn("Profiler unavailable, continuing without it", zap.Error(err))
	} else if profiler.IsEnabled() {
		defer func() {
			if err := profiler.Stop(); err != nil {
				log.Error("Error stopping profiler", zap.Error(err))
			}
		}()
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Span profiles unavailable", zap.Error(err))
		}
	}

	var metrics *telemetry.BookingMetrics
	if meterProvider.IsEnabled() {
		metrics, err = telemetry.NewBookingMetrics(meterProvider.Meter("travelcrm.booking"))
		if err != nil {
			log.Fatal("Failed to create booking metrics", zap.Error(err))
		}
	}

	// Database with a zap-backed GORM logger; query tracing is a separate
	// switch so it can stay off in noisy environments.
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithOptions(&cfg.Database, persistence.Options{
		Logger:       gormLog,
		TraceQueries: cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Loyalty balance cache: Redis, with in-memory fallback when Redis is
	// unreachable at startup.
	cacheFactory := cache.NewBalanceCacheFactory(
		cfg.Redis,
		cfg.Loyalty.BalanceCacheTTL,
		cache.WithLogger(log),
	)
	balanceCache, err := cacheFactory.CreateCache()
	if err != nil {
		log.Fatal("Failed to create balance cache", zap.Error(err))
	}

	// Payment proof storage: S3-compatible in real deployments, in-memory
	// stub when no credentials are configured (local development).
	var proofStorage billingapp.ProofStorage
	if cfg.Storage.AccessKey != "" {
		s3Storage, err := storage.NewS3ProofStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize proof storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to ensure proof bucket", zap.Error(err))
		}
		proofStorage = s3Storage
	} else {
		log.Warn("No storage credentials configured, using in-memory proof storage")
		proofStorage = storage.NewStubProofStorage()
	}

	// Repositories and transaction scopes
	enquiryRepo := persistence.NewGormEnquiryRepository(db.DB)
	followUpRepo := persistence.NewGormFollowUpRepository(db.DB)
	familyHeadRepo := persistence.NewGormFamilyHeadRepository(db.DB)
	installmentRepo := persistence.NewGormInstallmentRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	tourRepo := persistence.NewGormTourRepository(db.DB)
	enquiryScope := persistence.NewGormEnquiryTransactionScope(db.DB)
	billingScope := persistence.NewGormBillingTransactionScope(db.DB)

	// Application services
	enquiryService := enquiryapp.NewService(
		enquiryScope,
		enquiryRepo,
		followUpRepo,
		familyHeadRepo,
		installmentRepo,
		balanceCache,
		enquiryapp.PointsPolicy{
			SelfBookingPoints: cfg.Loyalty.SelfBookingPoints,
			ReferralPoints:    cfg.Loyalty.ReferralPoints,
		},
	)
	registryService := enquiryapp.NewRegistryService(enquiryScope)
	cancellationService := enquiryapp.NewCancellationService(enquiryScope, balanceCache)
	pricingService := billingapp.NewPricingService(billingScope)
	paymentService := billingapp.NewPaymentService(billingScope, proofStorage)
	loyaltyService := loyaltyapp.NewService(ledgerRepo, userRepo, enquiryRepo, tourRepo, balanceCache)

	// JWT service for API authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	// HTTP engine and middleware chain
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanEnrichment())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.CORSWithConfig(middleware.CORSFromHTTPConfig(cfg.HTTP)))
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}

	// Health check outside API versioning
	systemHandler := handler.NewSystemHandler(db)
	engine.GET("/health", systemHandler.Health)

	// Handlers
	enquiryHandler := handler.NewEnquiryHandler(enquiryService, cancellationService, metrics)
	familyHandler := handler.NewFamilyHandler(registryService)
	billingHandler := handler.NewBillingHandler(pricingService, paymentService, metrics)
	loyaltyHandler := handler.NewLoyaltyHandler(loyaltyService, metrics)

	// Versioned API routes behind JWT authentication
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths:  []string{"/api/v1/health"},
		Logger:     log,
	}))

	bookingRoutes := router.NewDomainGroup("bookings", "/enquiries")
	bookingRoutes.POST("", enquiryHandler.Create)
	bookingRoutes.GET("", enquiryHandler.List)
	bookingRoutes.GET("/:id", enquiryHandler.Get)
	bookingRoutes.GET("/:id/status", enquiryHandler.Status)
	bookingRoutes.POST("/:id/follow-ups", enquiryHandler.LogFollowUp)
	bookingRoutes.GET("/:id/follow-ups", enquiryHandler.ListFollowUps)
	bookingRoutes.POST("/:id/confirm", enquiryHandler.Confirm)
	bookingRoutes.POST("/:id/cancel", enquiryHandler.Cancel)
	bookingRoutes.GET("/:id/refunds", enquiryHandler.ListGuestRefunds)
	bookingRoutes.POST("/:id/family-heads", familyHandler.RegisterFamilyHead)
	bookingRoutes.GET("/:id/family-heads", familyHandler.GetFamilyHead)
	r.Register(bookingRoutes)

	billingRoutes := router.NewDomainGroup("billing", "/family-heads")
	billingRoutes.POST("/:id/guests", familyHandler.RegisterGuest)
	billingRoutes.GET("/:id/guests", familyHandler.ListGuests)
	billingRoutes.POST("/:id/pricing", billingHandler.SetPricing)
	billingRoutes.GET("/:id/pricing", billingHandler.GetPricing)
	billingRoutes.POST("/:id/payments", billingHandler.RecordPayment)
	billingRoutes.GET("/:id/payments", billingHandler.ListPayments)
	billingRoutes.GET("/:id/payment-summary", billingHandler.PaymentSummary)
	r.Register(billingRoutes)

	paymentRoutes := router.NewDomainGroup("payments", "/payments")
	paymentRoutes.POST("/:id/confirm", billingHandler.ConfirmPayment)
	paymentRoutes.GET("/:id/proof-url", billingHandler.ProofURL)
	r.Register(paymentRoutes)

	loyaltyRoutes := router.NewDomainGroup("loyalty", "/loyalty")
	loyaltyRoutes.GET("/users/:id/balance", loyaltyHandler.Balance)
	loyaltyRoutes.GET("/users/:id/history", loyaltyHandler.History)
	loyaltyRoutes.GET("/users/:id/referrals", loyaltyHandler.Referrals)
	loyaltyRoutes.POST("/users/:id/redemptions", loyaltyHandler.Redeem)
	r.Register(loyaltyRoutes)

	systemRoutes := router.NewDomainGroup("system", "/health")
	systemRoutes.GET("", systemHandler.Health)
	r.Register(systemRoutes)

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
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// shutdownProvider flushes and stops a telemetry provider with a bounded
// timeout.
func shutdownProvider(log *zap.Logger, name string, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Error("Error shutting down "+name, zap.Error(err))
	}
}
