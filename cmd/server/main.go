// Package main provides the unified bonding-curve pool service:
// - HTTP settlement API (initialize, params, deposit, create, buy, sell, withdraw)
// - read API (config, pools, trades, quotes, balances)
// - websocket feed of settled trades
// - Prometheus metrics
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"curve-engine/internal/engine"
	"curve-engine/internal/events"
	"curve-engine/internal/ledger"
	"curve-engine/internal/observability"
	"curve-engine/internal/storage"
	chstore "curve-engine/internal/storage/clickhouse"
	"curve-engine/internal/storage/memory"
	"curve-engine/internal/storage/migrations"
	pgstore "curve-engine/internal/storage/postgres"
)

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", envOr("ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "Optional ClickHouse DSN; moves the trade store to ClickHouse")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	logger, err := buildLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, logger)
	if err != nil {
		logger.Fatal("create stores", zap.Error(err))
	}
	defer cleanup()

	led := ledger.NewMemory()
	bus := events.NewBus(logger)

	eng := engine.New(engine.Deps{
		Configs: stores.configs,
		Pools:   stores.pools,
		Trades:  stores.trades,
		Ledger:  led,
		Bus:     bus,
		Metrics: observability.DefaultMetrics,
		Logger:  logger,
	})

	srv := newServer(eng, led, bus, logger)
	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", zap.Error(err))
		}
	}()

	logger.Info("server listening", zap.String("addr", *addr), zap.Bool("use_memory", *useMemory))
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http server", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// allStores holds the store implementations behind the engine.
type allStores struct {
	configs storage.ConfigStore
	pools   storage.PoolStore
	trades  storage.TradeStore
}

// createStores wires memory or PostgreSQL stores, optionally moving the
// trade store to ClickHouse. Migrations run on startup.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool, logger *zap.Logger) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			configs: memory.NewConfigStore(),
			pools:   memory.NewPoolStore(),
			trades:  memory.NewTradeStore(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	stores := &allStores{
		configs: pgstore.NewConfigStore(pool),
		pools:   pgstore.NewPoolStore(pool),
		trades:  pgstore.NewTradeStore(pool),
	}
	cleanup := func() { pool.Close() }

	if clickhouseDSN != "" {
		chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		stores.trades = chstore.NewTradeStore(chConn)
		cleanup = func() {
			chConn.Close()
			pool.Close()
		}
		logger.Info("trade store on clickhouse")
	}

	return stores, cleanup, nil
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
