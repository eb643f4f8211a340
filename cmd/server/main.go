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
	authapp "github.com/pawnfin/console/internal/application/auth"
	companyapp "github.com/pawnfin/console/internal/application/company"
	customerapp "github.com/pawnfin/console/internal/application/customer"
	depositapp "github.com/pawnfin/console/internal/application/deposit"
	ledgerapp "github.com/pawnfin/console/internal/application/ledger"
	schemeapp "github.com/pawnfin/console/internal/application/scheme"
	"github.com/pawnfin/console/internal/domain/session"
	"github.com/pawnfin/console/internal/infrastructure/auth"
	"github.com/pawnfin/console/internal/infrastructure/config"
	"github.com/pawnfin/console/internal/infrastructure/logger"
	"github.com/pawnfin/console/internal/infrastructure/migration"
	"github.com/pawnfin/console/internal/infrastructure/pawnapi"
	"github.com/pawnfin/console/internal/infrastructure/persistence"
	"github.com/pawnfin/console/internal/infrastructure/printing"
	"github.com/pawnfin/console/internal/infrastructure/sessionstore"
	"github.com/pawnfin/console/internal/infrastructure/storage"
	"github.com/pawnfin/console/internal/infrastructure/telemetry"
	"github.com/pawnfin/console/internal/interfaces/http/handler"
	"github.com/pawnfin/console/internal/interfaces/http/middleware"
	"github.com/pawnfin/console/internal/interfaces/http/router"
	"github.com/pawnfin/console/internal/interfaces/http/view"
	"go.uber.org/zap"
)

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: timeFormat,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	tel := setupTelemetry(ctx, cfg, log)

	// Once the OTLP log pipeline exists every entry is also exported
	if tel.logs.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(tel.logs, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))
		if log, err = logger.New(logCfg, otelCore); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting pawn console",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("pawnapi", cfg.PawnAPI.BaseURL),
	)

	// Settings store
	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), 200*time.Millisecond)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver()))

	if cfg.Database.AutoMigrate {
		if err := migrateUp(&cfg.Database, log); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL && !cfg.IsProduction(),
		DBSystem:   cfg.Database.Driver,
	}, log); err != nil {
		log.Warn("Database tracing unavailable", zap.Error(err))
	}

	// Sessions
	sessions, err := sessionstore.NewFactory(cfg.Session, cfg.Redis, log).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create session store", zap.Error(err))
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			log.Error("Error closing session store", zap.Error(err))
		}
	}()

	// pawn-api client
	api, err := pawnapi.New(pawnapi.Options{
		BaseURL: cfg.PawnAPI.BaseURL,
		Timeout: cfg.PawnAPI.Timeout,
		Meter:   tel.metrics.Meter("pawnapi"),
	})
	if err != nil {
		log.Fatal("Failed to create pawn-api client", zap.Error(err))
	}

	// Application services
	authService := authapp.NewService(api, auth.NewTokenReader())
	companyService := companyapp.NewService(api)
	customerService := customerapp.NewService(api, log,
		customerapp.WithPhotoArchive(newPhotoArchive(ctx, cfg, log)),
	)
	depositService := depositapp.NewService(api)
	ledgerService := ledgerapp.NewService(api)
	schemeService := schemeapp.NewService(persistence.NewGormSchemeRepository(db.DB))

	templates := printing.NewTemplateEngine()
	ticketPrinter, closePrinter := newTicketPrinter(cfg, templates, log)
	defer closePrinter()

	// Handlers
	base := handler.NewBaseHandler(authService)
	authHandler := handler.NewAuthHandler(base, authService)
	companyHandler := handler.NewCompanyHandler(base, companyService)
	homeHandler := handler.NewHomeHandler(base)
	customerHandler := handler.NewCustomerHandler(base, customerService, schemeService, ticketPrinter)
	depositHandler := handler.NewDepositHandler(base, depositService)
	ledgerHandler := handler.NewLedgerHandler(base, ledgerService)
	schemeHandler := handler.NewSchemeHandler(base, schemeService)
	systemHandler := handler.NewSystemHandler(healthChecks(db, sessions))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	renderer, err := view.NewRenderer(templates)
	if err != nil {
		log.Fatal("Failed to parse page templates", zap.Error(err))
	}
	engine.HTMLRender = renderer

	// Middleware order:
	// 1. Recovery, RequestID, request logging
	// 2. Security headers, no-store, body limit
	// 3. Tracing and metrics
	// 4. Session, then span attributes that need the company
	// 5. Route guard
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log, "/static", "/healthz"))
	engine.Use(middleware.Secure())
	engine.Use(middleware.NoStore())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tel.tracer.IsEnabled(),
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(tel.metrics))
	engine.Use(middleware.SessionLoader(sessions, middleware.SessionConfig{
		CookieName: cfg.Session.CookieName,
		Cookie:     cfg.Cookie,
	}, log))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.RouteGuard(middleware.GuardConfig{
		PublicPrefixes: []string{"/static", "/healthz"},
	}))

	loginLimiter := middleware.NewRateLimiter(cfg.HTTP.LoginRateLimit, cfg.HTTP.LoginRateWindow)
	defer loginLimiter.Stop()

	r := router.NewRouter(engine)

	authRoutes := router.NewDomainGroup("auth", "")
	authRoutes.Page("/login", authHandler.LoginPage, authHandler.Login, middleware.RateLimit(loginLimiter))
	authRoutes.POST("/logout", authHandler.Logout)

	companyRoutes := router.NewDomainGroup("company", "")
	companyRoutes.Page("/company", companyHandler.Picker, companyHandler.Submit)
	companyRoutes.Page("/companies", companyHandler.Manage, companyHandler.Submit)
	companyRoutes.POST("/company/switch", companyHandler.Switch)

	homeRoutes := router.NewDomainGroup("home", "")
	homeRoutes.GET("/", homeHandler.Home)

	customerRoutes := router.NewDomainGroup("customers", "/customers")
	customerRoutes.Page("/new", customerHandler.NewForm, customerHandler.Create)
	customerRoutes.GET("/search", customerHandler.Search)
	customerRoutes.GET("/:accNo", customerHandler.Detail)
	customerRoutes.POST("/:accNo/edit", customerHandler.Update)
	customerRoutes.POST("/:accNo/payments", customerHandler.RecordPayment)
	customerRoutes.POST("/:accNo/close", customerHandler.Close)
	customerRoutes.Page("/:accNo/new-loan", customerHandler.NewLoanForm, customerHandler.NewLoan)
	customerRoutes.GET("/:accNo/ticket.pdf", customerHandler.Ticket)

	closeLoanRoutes := router.NewDomainGroup("close-loan", "")
	closeLoanRoutes.Page("/close-loan", customerHandler.CloseLoanPage, customerHandler.CloseLoan)

	depositRoutes := router.NewDomainGroup("deposits", "/deposits")
	depositRoutes.GET("", depositHandler.List)
	depositRoutes.Page("/new", depositHandler.NewForm, depositHandler.Create)
	depositRoutes.GET("/:id", depositHandler.Detail)
	depositRoutes.POST("/:id/payments", depositHandler.RecordPayment)

	ledgerRoutes := router.NewDomainGroup("ledger", "")
	ledgerRoutes.GET("/ledger", ledgerHandler.Ledger)
	ledgerRoutes.POST("/ledger/manual", ledgerHandler.AddManualEntry)
	ledgerRoutes.Page("/vouchers", ledgerHandler.Vouchers, ledgerHandler.AddVoucher)

	schemeRoutes := router.NewDomainGroup("schemes", "/schemes")
	schemeRoutes.Page("", schemeHandler.List, schemeHandler.Submit)
	schemeRoutes.POST("/:id/delete", schemeHandler.Delete)

	apiRoutes := router.NewDomainGroup("api", "/api")
	apiRoutes.GET("/account-number", customerHandler.AccountNumber)
	apiRoutes.GET("/schemes/rate", schemeHandler.Rate)

	groups := []*router.DomainGroup{
		authRoutes, companyRoutes, homeRoutes, customerRoutes, closeLoanRoutes,
		depositRoutes, ledgerRoutes, schemeRoutes, apiRoutes,
	}
	for _, g := range groups {
		r.Register(g)
		log.Debug("Routes registered", zap.String("group", g.Name()), zap.Strings("routes", g.Routes()))
	}
	r.Setup()

	engine.StaticFS("/static", http.FS(view.Static()))
	engine.GET("/healthz", systemHandler.Health)
	engine.NoRoute(homeHandler.NotFound)

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	tel.shutdown(shutdownCtx, log)

	log.Info("Server exited gracefully")
}

type providers struct {
	tracer   *telemetry.TracerProvider
	metrics  *telemetry.MeterProvider
	logs     *telemetry.LoggerProvider
	profiler *telemetry.Profiler
}

// setupTelemetry starts the OTLP providers. A provider that fails to start
// is replaced by its disabled form so the console still serves.
func setupTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) providers {
	tc := cfg.Telemetry

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tc.Enabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		SamplingRatio:     tc.SamplingRatio,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		log.Warn("Tracing disabled", zap.Error(err))
		tracer, _ = telemetry.NewTracerProvider(ctx, telemetry.Config{}, log)
	}

	metrics, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tc.Enabled && tc.MetricsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		log.Warn("Metrics disabled", zap.Error(err))
		metrics, _ = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{}, log)
	}

	logs, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           tc.Enabled && tc.LogsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		log.Warn("Log export disabled", zap.Error(err))
		logs, _ = telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{}, log)
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           tc.ProfilingEnabled,
		ServerAddress:     tc.ProfilingServer,
		ApplicationName:   tc.ServiceName,
		BasicAuthUser:     tc.ProfilingBasicAuthUser,
		BasicAuthPassword: tc.ProfilingBasicAuthPass,
	}, log)
	if err != nil {
		log.Warn("Profiling disabled", zap.Error(err))
		profiler, _ = telemetry.NewProfiler(telemetry.ProfilerConfig{}, log)
	}
	if profiler.IsEnabled() && tc.SpanProfilesEnabled {
		tracer.EnableSpanProfiles()
	}

	return providers{tracer: tracer, metrics: metrics, logs: logs, profiler: profiler}
}

func (p providers) shutdown(ctx context.Context, log *zap.Logger) {
	if err := p.tracer.Shutdown(ctx); err != nil {
		log.Error("Tracer shutdown failed", zap.Error(err))
	}
	if err := p.metrics.Shutdown(ctx); err != nil {
		log.Error("Meter shutdown failed", zap.Error(err))
	}
	if err := p.logs.Shutdown(ctx); err != nil {
		log.Error("Log exporter shutdown failed", zap.Error(err))
	}
	if err := p.profiler.Stop(); err != nil {
		log.Error("Profiler stop failed", zap.Error(err))
	}
}

func migrateUp(cfg *config.DatabaseConfig, log *zap.Logger) error {
	sqlDB, err := migration.Open(cfg)
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, cfg.Driver, log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() {
		_ = m.Close()
	}()
	return m.Up()
}

// newPhotoArchive returns the S3 archive when storage is enabled. Otherwise
// photos are only validated; the pawn-api keeps its own copy.
func newPhotoArchive(ctx context.Context, cfg *config.Config, log *zap.Logger) customerapp.PhotoArchive {
	if !cfg.Storage.Enabled {
		log.Info("Photo storage disabled, intake photos are not archived")
		return storage.NewDiscardPhotoArchive(cfg.Storage.Prefix)
	}
	archive, err := storage.NewS3PhotoArchive(ctx, &cfg.Storage)
	if err != nil {
		log.Fatal("Failed to create photo archive", zap.Error(err))
	}
	log.Info("Archiving intake photos to S3", zap.String("bucket", cfg.Storage.Bucket))
	return archive
}

// newTicketPrinter returns nil when printing is disabled; the ticket route
// then answers 503.
func newTicketPrinter(cfg *config.Config, templates *printing.TemplateEngine, log *zap.Logger) (handler.TicketPrinter, func()) {
	if !cfg.Printing.Enabled {
		return nil, func() {}
	}
	renderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
		DefaultTimeout: cfg.Printing.Timeout,
		RemoteURL:      cfg.Printing.RemoteURL,
		NoSandbox:      true,
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Failed to create PDF renderer", zap.Error(err))
	}
	printer := printing.NewTicketPrinter(templates, renderer, printing.ParsePaperSize(cfg.Printing.PaperSize), log)
	return printer, func() {
		if err := renderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}
}

func healthChecks(db *persistence.Database, sessions session.Store) map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error {
			return db.DB.WithContext(ctx).Exec("SELECT 1").Error
		},
	}
	if p, ok := sessions.(sessionstore.Pinger); ok {
		checks["sessions"] = p.Ping
	}
	return checks
}
