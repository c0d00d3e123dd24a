package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"arbscan/internal/arbitrage"
	"arbscan/internal/cache"
	"arbscan/internal/config"
	"arbscan/internal/database"
	"arbscan/internal/exchange"
	"arbscan/internal/report"
)

var (
	configPath = flag.String("config", ".", "directory containing config.yaml")
	once       = flag.Bool("once", false, "run a single scan cycle and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	logger.Info("starting arbscan",
		"mode", cfg.Source.Mode,
		"tokens", len(cfg.Tokens),
		"exchanges", len(cfg.Exchanges),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, err := exchange.NewSource(logger, &cfg)
	if err != nil {
		log.Fatalf("cannot create price source: %v", err)
	}

	costs := arbitrage.NewCostModel(&cfg)
	scanner := arbitrage.NewOpportunityScanner(logger, source, costs, cfg.Scanner.MinProfitUSD)
	filter, err := arbitrage.NewThresholdFilter(cfg.Scanner.MinProfitUSD)
	if err != nil {
		log.Fatalf("cannot create threshold filter: %v", err)
	}

	engine := arbitrage.NewEngine(logger, &cfg, scanner, filter)

	var sinks []report.Sink
	if cfg.Reporting.Table {
		sinks = append(sinks, report.NewTableSink(os.Stdout, engine.Trend))
	}
	if cfg.Reporting.JSONPath != "" {
		jsonSink, err := report.NewJSONFileSink(cfg.Reporting.JSONPath)
		if err != nil {
			log.Fatalf("cannot create json sink: %v", err)
		}
		sinks = append(sinks, jsonSink)
	}
	if cfg.Reporting.WebsocketAddr != "" {
		hub := report.NewHub(logger, cfg.Reporting.WebsocketAddr)
		hub.Start(ctx)
		sinks = append(sinks, hub)
	}
	if cfg.Reporting.Postgres {
		repo, err := database.NewPostgresRepository(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("cannot connect to database: %v", err)
		}
		defer repo.Close()
		if err := repo.Migrate(ctx); err != nil {
			log.Fatalf("cannot migrate database: %v", err)
		}
		sinks = append(sinks, report.NewPostgresSink(logger, repo))
	}
	engine.SetSink(report.NewMultiSink(logger, sinks...))

	if cfg.Redis.Enabled {
		priceCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			log.Fatalf("cannot connect to redis: %v", err)
		}
		defer priceCache.Close()
		engine.SetCache(priceCache)
	}

	if *once {
		runOnce(ctx, logger, &cfg, scanner, filter, sinks)
		return
	}

	engine.Run(ctx)
	logger.Info("shutdown complete")
}

// runOnce performs a single fetch/scan/publish pass, for spot checks and
// cron-style invocations.
func runOnce(ctx context.Context, logger *slog.Logger, cfg *config.Config, scanner *arbitrage.OpportunityScanner, filter *arbitrage.ThresholdFilter, sinks []report.Sink) {
	tokens := make([]string, 0, len(cfg.Tokens))
	for t := range cfg.Tokens {
		tokens = append(tokens, t)
	}
	exchanges := make([]string, 0, len(cfg.Exchanges))
	for e := range cfg.Exchanges {
		exchanges = append(exchanges, e)
	}

	opportunities := filter.Apply(scanner.Scan(ctx, tokens, exchanges, cfg.Scanner.TradeSizeUSD))
	logger.Info("single scan complete", "kept", len(opportunities))
	if err := report.NewMultiSink(logger, sinks...).Publish(ctx, opportunities); err != nil {
		logger.Error("publish failed", "error", err)
	}
}
