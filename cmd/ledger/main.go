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

	"github.com/boddenberg/openbanking-ledger-go/internal/config"
	"github.com/boddenberg/openbanking-ledger-go/internal/domain"
	"github.com/boddenberg/openbanking-ledger-go/internal/handler"
	"github.com/boddenberg/openbanking-ledger-go/internal/infra/cache"
	"github.com/boddenberg/openbanking-ledger-go/internal/infra/client"
	"github.com/boddenberg/openbanking-ledger-go/internal/infra/idgen"
	"github.com/boddenberg/openbanking-ledger-go/internal/infra/journal"
	"github.com/boddenberg/openbanking-ledger-go/internal/infra/observability"
	"github.com/boddenberg/openbanking-ledger-go/internal/infra/resilience"
	"github.com/boddenberg/openbanking-ledger-go/internal/port"
	"github.com/boddenberg/openbanking-ledger-go/internal/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("tracing_enabled", cfg.TracingEnabled),
		zap.Bool("customer_api", cfg.CustomerAPIURL != ""),
		zap.Bool("auth_enabled", cfg.JWTSecret != ""),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	// --- Tracing ---
	otlpEndpoint := ""
	if cfg.TracingEnabled {
		otlpEndpoint = cfg.OTLPEndpoint
	}
	shutdownTracer, err := observability.InitTracer(otlpEndpoint, "openbanking-ledger")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	customerCache := cache.New[*domain.Customer](cfg.CacheTTL)
	defer customerCache.Close()

	// --- Customer provider ---
	var customers port.CustomerProvider
	if cfg.CustomerAPIURL != "" {
		resilienceCfg := resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
			MaxConcurrency: cfg.MaxConcurrency,
		}
		cb := resilience.NewCircuitBreaker("customers-api", logger, client.IsCustomerNotFound)
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		customers = client.NewCustomerClient(httpClient, cfg.CustomerAPIURL, cb, resilienceCfg)
		logger.Info("resolving customers through external API", zap.String("url", cfg.CustomerAPIURL))
	} else {
		logger.Info("no customer API configured, customers are accepted inline")
	}

	// --- Services ---
	ledgerJournal := journal.New(logger)
	bankSvc := service.NewBankService(
		idgen.NewSequence(cfg.AccountNumberPrefix, cfg.AccountNumberSeed),
		idgen.NewSequence(cfg.CardNumberPrefix, cfg.CardNumberSeed),
		ledgerJournal,
		metrics,
		logger,
	)
	metrics.TrackRegistry(bankSvc.Counts)

	services := handler.Services{
		Bank:      bankSvc,
		Payments:  service.NewPaymentService(bankSvc, ledgerJournal, metrics, logger),
		Customers: service.NewCustomerDirectory(customers, customerCache, metrics, logger),
	}
	if cfg.JWTSecret != "" {
		services.Tokens = service.NewTokenService(cfg.JWTSecret, 0)
	} else {
		logger.Warn("JWT_SECRET not set, write routes are unauthenticated")
	}

	// --- Router ---
	router := handler.NewRouter(services, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return
	}

	accounts, cards := bankSvc.Counts()
	logger.Info("server stopped",
		zap.Int("accounts", accounts),
		zap.Int("cards", cards),
		zap.Int("journal_entries", ledgerJournal.Len()),
	)
}
