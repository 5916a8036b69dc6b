package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/fiscalbook/fiscalbook/internal/app"
	"github.com/fiscalbook/fiscalbook/internal/auth"
	"github.com/fiscalbook/fiscalbook/internal/classify"
	"github.com/fiscalbook/fiscalbook/internal/masterdata/accumulators"
	"github.com/fiscalbook/fiscalbook/internal/masterdata/cfops"
	"github.com/fiscalbook/fiscalbook/internal/masterdata/companies"
	"github.com/fiscalbook/fiscalbook/internal/masterdata/products"
	"github.com/fiscalbook/fiscalbook/internal/observability"
	"github.com/fiscalbook/fiscalbook/internal/platform/cache"
	"github.com/fiscalbook/fiscalbook/internal/platform/db"
	"github.com/fiscalbook/fiscalbook/internal/report"
	"github.com/fiscalbook/fiscalbook/internal/shared"
	"github.com/fiscalbook/fiscalbook/internal/sped"
	"github.com/fiscalbook/fiscalbook/internal/users"
	"github.com/fiscalbook/fiscalbook/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.NewClient(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	reportCache := cache.New(redisClient, cfg.CacheTTL)

	authService := auth.NewService(auth.NewRepository(pool))
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	usersService := users.NewService(users.NewRepository(pool))
	usersHandler := users.NewHandler(logger, usersService)

	companiesService := companies.NewService(companies.NewRepository(pool))
	companiesHandler := companies.NewHandler(logger, companiesService)

	cfopsService := cfops.NewService(cfops.NewRepository(pool))
	cfopsHandler := cfops.NewHandler(logger, cfopsService)

	accumulatorService := accumulators.NewService(accumulators.NewRepository(pool))
	accumulatorHandler := accumulators.NewHandler(logger, accumulatorService)

	productsService := products.NewService(products.NewRepository(pool), reportCache, logger)
	productsHandler := products.NewHandler(logger, productsService)

	metrics := observability.NewMetrics()

	importer := sped.NewImporter(sped.NewRepository(pool), reportCache, logger)
	spedHandler := sped.NewHandler(logger, importer, cfg.SpedMaxUpload, metrics)

	reportService := report.NewService(report.NewRepository(pool), reportCache, logger)
	reportHandler := report.NewHandler(logger, reportService)

	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	classifyService := classify.NewService(classify.NewRepository(pool), logger)
	classifyHandler := classify.NewHandler(logger, classifyService, jobsClient)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		AdminChecker:   authService,
		Metrics:        metrics,

		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		CompaniesHandler:   companiesHandler,
		CFOPsHandler:       cfopsHandler,
		AccumulatorHandler: accumulatorHandler,
		ProductsHandler:    productsHandler,
		SpedHandler:        spedHandler,
		ReportHandler:      reportHandler,
		ClassifyHandler:    classifyHandler,
		JobsHandler:        jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
