// Package main is the entry point for the watch arbitrage scanner.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	arbApp "watcharb/business/arbitrage/app"
	arbInfra "watcharb/business/arbitrage/infra"
	catalogDomain "watcharb/business/catalog/domain"
	marketApp "watcharb/business/marketplace/app"
	"watcharb/business/marketplace/infra/chrono24"
	"watcharb/business/marketplace/infra/ebay"
	scannerApp "watcharb/business/scanner/app"
	"watcharb/internal/apm"
	"watcharb/internal/catalog"
	"watcharb/internal/config"
	"watcharb/internal/health"
	"watcharb/internal/logger"
	"watcharb/internal/metrics"
	"watcharb/internal/store/memory"
	"watcharb/internal/store/postgres"
	"watcharb/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// store is what the wiring needs from a storage backend: the catalog seeder,
// the scanner's listing store, and the analysis engine's repository.
type store interface {
	catalog.Store
	scannerApp.ListingStore
	arbApp.Repository
	Close()
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	once := flag.Bool("once", false, "Run a single scan and analysis cycle, then exit")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("watcharb %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// TUI is the default, CLI is for debugging; -once implies CLI
	tuiMode := !*cliMode && !*once

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, *configPath, tuiMode, *once); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode, once bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// In TUI mode logs would corrupt the screen, so discard them.
	logLevel := logger.ParseLevel(cfg.App.LogLevel)
	var log *logger.Logger
	if tuiMode {
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		log.Info(ctx, "starting watch arbitrage scanner",
			"version", version,
			"environment", cfg.App.Environment,
		)
	}

	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		traceProvider, err = apm.NewTraceProvider(apm.Config{
			Provider:    apm.Provider(cfg.Telemetry.TraceProvider),
			ServiceName: cfg.Telemetry.ServiceName,
			Endpoint:    cfg.Telemetry.OTLPEndpoint,
			Headers:     cfg.Telemetry.OTLPHeaders,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		log.Info(ctx, "tracing initialized", "provider", cfg.Telemetry.TraceProvider)

		if _, err := metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.NewPrometheusConfig()),
		); err != nil {
			return fmt.Errorf("failed to initialize metrics: %w", err)
		}
		go func() {
			if err := metrics.ServePrometheusMetrics(cfg.Telemetry.PrometheusPort); err != nil {
				log.Warn(ctx, "prometheus metrics server stopped", "error", err)
			}
		}()
		log.Info(ctx, "prometheus metrics server started", "port", cfg.Telemetry.PrometheusPort)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	st, err := newStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	healthServer := health.NewServer(cfg.Telemetry.HealthPort, version)
	healthServer.RegisterCheck("store", func(ctx context.Context) (bool, string) {
		if _, err := st.CountReferences(ctx); err != nil {
			return false, err.Error()
		}
		return true, "ok"
	})
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", cfg.Telemetry.HealthPort)
	}
	defer healthServer.Stop(ctx)

	seeded, err := catalog.SeedIfEmpty(ctx, st, log)
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	if seeded > 0 {
		log.Info(ctx, "catalog seeded", "references", seeded)
	}

	clients, err := newClients(cfg, log)
	if err != nil {
		return err
	}

	scanner, err := scannerApp.NewScanner(st, clients, scannerApp.Config{
		MinPriceUSD:  decimal.NewFromInt(int64(cfg.Scan.MinPriceUSD)),
		ListingLimit: cfg.Scan.ListingLimit,
		StaleWindow:  cfg.Scan.StaleWindow(),
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create scanner: %w", err)
	}

	scorer := arbApp.NewScorer(arbApp.ScoringConfig{
		Fees:           platformFees(cfg.Arbitrage.FeesDecimal()),
		DefaultFeeRate: cfg.Arbitrage.DefaultFeeRateDecimal(),
		ShippingCost:   cfg.Arbitrage.ShippingCostDecimal(),
		MinProfitUSD:   cfg.Arbitrage.MinProfitUSDDecimal(),
		MinROI:         cfg.Arbitrage.MinROIDecimal(),
	})

	engineConfig := arbApp.EngineConfig{
		CrossPlatformMargin: cfg.Arbitrage.CrossPlatformMarginDecimal(),
		MinDiscount:         cfg.Arbitrage.MinDiscountDecimal(),
	}

	interval := time.Duration(cfg.Scan.IntervalHours) * time.Hour

	if tuiMode {
		reporter := arbInfra.NewTUIReporter()
		engine, err := arbApp.NewEngine(st, scorer, reporter, engineConfig, log)
		if err != nil {
			return fmt.Errorf("failed to create engine: %w", err)
		}
		return runTUI(ctx, scanner, engine, reporter, interval)
	}

	reporter := arbInfra.NewConsoleReporter(os.Stdout)
	engine, err := arbApp.NewEngine(st, scorer, reporter, engineConfig, log)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	return runCLI(ctx, scanner, engine, interval, once, log)
}

func newStore(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) (store, error) {
	switch cfg.Database.Store {
	case "postgres":
		pool, err := postgres.Connect(ctx, postgres.Config{
			DSN:      cfg.Database.DSN,
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		log.Info(ctx, "connected to postgres")
		return postgres.NewStore(pool), nil
	default:
		log.Info(ctx, "using in-memory store; data will not survive a restart")
		return memory.New(), nil
	}
}

func newClients(cfg *config.Config, log logger.LoggerInterface) ([]marketApp.Client, error) {
	ebayClient, err := ebay.NewClient(ebay.Config{
		ClientID:          cfg.EBay.ClientID,
		ClientSecret:      cfg.EBay.ClientSecret,
		BaseURL:           cfg.EBay.BaseURL,
		MarketplaceID:     cfg.EBay.MarketplaceID,
		Timeout:           cfg.EBay.Timeout,
		RequestsPerMinute: cfg.EBay.RequestsPerMinute,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create ebay client: %w", err)
	}
	clients := []marketApp.Client{ebayClient}

	chronoClient := chrono24.NewClient(chrono24.Config{
		Enabled:           cfg.Chrono24.Enabled,
		BaseURL:           cfg.Chrono24.BaseURL,
		Timeout:           cfg.Chrono24.Timeout,
		RequestsPerMinute: cfg.Chrono24.RequestsPerMinute,
	}, log)
	if chronoClient.Available() {
		clients = append(clients, chronoClient)
	}
	return clients, nil
}

// platformFees converts the config fee table keys to domain platforms.
func platformFees(fees map[string]decimal.Decimal) map[catalogDomain.Platform]decimal.Decimal {
	out := make(map[catalogDomain.Platform]decimal.Decimal, len(fees))
	for name, rate := range fees {
		out[catalogDomain.Platform(name)] = rate
	}
	return out
}

// runCycle performs one scan-then-analyze pass. Scan errors for individual
// platforms are collected in stats, so a partial scan still gets analyzed.
func runCycle(ctx context.Context, scanner *scannerApp.Scanner, engine *arbApp.Engine, log logger.LoggerInterface) (*scannerApp.Stats, error) {
	stats, err := scanner.ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	for _, msg := range stats.Errors {
		log.Warn(ctx, "platform scan error", "error", msg)
	}
	if _, err := engine.AnalyzeAll(ctx); err != nil {
		return stats, fmt.Errorf("analysis failed: %w", err)
	}
	return stats, nil
}

func runCLI(ctx context.Context, scanner *scannerApp.Scanner, engine *arbApp.Engine, interval time.Duration, once bool, log *logger.Logger) error {
	if _, err := runCycle(ctx, scanner, engine, log); err != nil {
		return err
	}
	if once {
		return nil
	}

	log.Info(ctx, "scheduler started", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info(ctx, "shutting down")
			return nil
		case <-ticker.C:
			if _, err := runCycle(ctx, scanner, engine, log); err != nil {
				log.Error(ctx, "cycle failed", "error", err)
			}
		}
	}
}

func runTUI(ctx context.Context, scanner *scannerApp.Scanner, engine *arbApp.Engine, reporter *arbInfra.TUIReporter, interval time.Duration) error {
	if err := reporter.Start(ctx); err != nil {
		return fmt.Errorf("failed to start TUI: %w", err)
	}

	// TUI mode discards the logger, so cycle progress goes to the screen.
	log := logger.New(io.Discard, logger.LevelInfo, "watcharb", nil)

	go func() {
		cycle := func() {
			reporter.Send(ui.ScanStatusMsg{Scanning: true})
			stats, err := runCycle(ctx, scanner, engine, log)
			if err != nil {
				reporter.Send(ui.ErrorMsg{Error: err})
				return
			}
			reporter.Send(ui.ScanStatusMsg{
				References:  stats.ReferencesScanned,
				Created:     stats.Created,
				Updated:     stats.Updated,
				StaleMarked: stats.StaleMarked,
				Errors:      len(stats.Errors),
			})
		}

		cycle()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cycle()
			}
		}
	}()

	// Block until the user quits the TUI or the context is cancelled.
	errCh := make(chan error, 1)
	go func() { errCh <- reporter.Wait() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return reporter.Stop()
	}
}
