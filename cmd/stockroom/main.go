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
	"github.com/shopspring/decimal"

	"github.com/stockroom-wms/stockroom/internal/admin/incomes"
	"github.com/stockroom-wms/stockroom/internal/admin/outcomes"
	"github.com/stockroom-wms/stockroom/internal/admin/products"
	"github.com/stockroom-wms/stockroom/internal/admin/suppliers"
	"github.com/stockroom-wms/stockroom/internal/app"
	"github.com/stockroom-wms/stockroom/internal/backend"
	"github.com/stockroom-wms/stockroom/internal/catalog"
	"github.com/stockroom-wms/stockroom/internal/forms"
	"github.com/stockroom-wms/stockroom/internal/observability"
	"github.com/stockroom-wms/stockroom/internal/platform/cache"
	"github.com/stockroom-wms/stockroom/internal/platform/db"
	"github.com/stockroom-wms/stockroom/internal/shared"
	"github.com/stockroom-wms/stockroom/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "stockroom_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	auditLogger := shared.NewAuditLogger(pool)
	submitGuard := shared.NewSubmitGuard(pool)

	apiClient := backend.NewClient(cfg.BackendURL)
	fileStore := backend.NewFileStore(cfg.FileStoreURL)
	productRes := backend.NewResource[products.Product](apiClient, "product")
	supplierRes := backend.NewResource[suppliers.Supplier](apiClient, "supplier")
	incomeRes := backend.NewResource[incomes.Income](apiClient, "income")
	outcomeRes := backend.NewResource[outcomes.Outcome](apiClient, "outcome")

	catalogCache := catalog.NewCache(redisClient, cfg.CatalogTTL)
	catalogService := catalog.NewService(productRes, supplierRes, catalogCache, logger)

	registry := forms.NewRegistry()
	taxRate := decimal.NewFromFloat(cfg.TaxRate)
	metrics := observability.NewMetrics()

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	refreshCatalog := func(ctx context.Context) error {
		_, err := jobClient.EnqueueCatalogRefresh(ctx)
		return err
	}

	productHandler := products.NewHandler(logger, productRes, fileStore, registry, auditLogger, submitGuard, metrics)
	supplierHandler := suppliers.NewHandler(logger, supplierRes, registry, auditLogger, submitGuard, metrics)
	incomeHandler := incomes.NewHandler(logger, incomeRes, supplierRes, catalogService, registry, auditLogger, submitGuard, metrics, refreshCatalog, taxRate)
	outcomeHandler := outcomes.NewHandler(logger, outcomeRes, catalogService, registry, auditLogger, submitGuard, metrics, taxRate)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionManager:  sessionManager,
		CSRFManager:     csrfManager,
		ProductHandler:  productHandler,
		SupplierHandler: supplierHandler,
		IncomeHandler:   incomeHandler,
		OutcomeHandler:  outcomeHandler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
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
