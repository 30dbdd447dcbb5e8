package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	opshttp "github.com/couchcryptid/tourism-dashboard-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/tourism-dashboard-service/internal/adapter/kafka"
	"github.com/couchcryptid/tourism-dashboard-service/internal/adapter/publicdata"
	"github.com/couchcryptid/tourism-dashboard-service/internal/api"
	"github.com/couchcryptid/tourism-dashboard-service/internal/cache"
	"github.com/couchcryptid/tourism-dashboard-service/internal/config"
	"github.com/couchcryptid/tourism-dashboard-service/internal/dataset"
	"github.com/couchcryptid/tourism-dashboard-service/internal/domain"
	"github.com/couchcryptid/tourism-dashboard-service/internal/observability"
	"github.com/couchcryptid/tourism-dashboard-service/internal/pipeline"
	"github.com/couchcryptid/tourism-dashboard-service/internal/scheduler"
	"github.com/couchcryptid/tourism-dashboard-service/internal/selection"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// One cache serves upstream responses and parsed dataset tables.
	proxyCache := cache.New[any](cfg.CacheSize, clockwork.NewRealClock())
	client := publicdata.NewClient(cfg, metrics, logger)
	source := publicdata.NewCachedSource(client, proxyCache, cfg.APICacheTTL, cfg.ProviderLocation, metrics)
	datasets := dataset.NewStore(cfg.DataDir, proxyCache, cfg.CSVCacheTTL, logger)

	var checks []opshttp.Check

	// Selection state (memory by default, SQLite via SELECTION_STORE).
	var selections selection.Store
	var db *selection.SQLiteStore
	switch cfg.SelectionStore {
	case "sqlite":
		db, err = selection.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			logger.Error("failed to open selection database", "path", cfg.SQLitePath, "error", err)
			os.Exit(1)
		}
		selections = db
		checks = append(checks, opshttp.Check{Name: "selection", Checker: opshttp.ReadinessFunc(db.Ping)})
		logger.Info("selection store: sqlite", "path", cfg.SQLitePath)
	default:
		selections = selection.NewMemoryStore()
		logger.Info("selection store: memory")
	}

	// Snapshot publishing (feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS).
	var loader pipeline.SnapshotLoader
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		loader = writer
		logger.Info("snapshot publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(source, loader, domain.Regions(), cfg.ProviderLocation, logger, metrics)

	var sched *scheduler.Scheduler
	if cfg.RefreshEnabled {
		sched = scheduler.New(p, cfg.RefreshInterval, cfg.ProviderLocation, logger, metrics)
		checks = append(checks, opshttp.Check{Name: "refresh", Checker: p})
	} else {
		logger.Info("scheduled refresh disabled")
	}

	app := api.NewApp(api.Deps{
		Source:     source,
		Datasets:   datasets,
		Selections: selections,
		Tracker:    selection.NewTracker(),
		Snapshots:  p,
		Location:   cfg.ProviderLocation,
		Metrics:    metrics,
		Logger:     logger,
		AccessLog:  os.Stdout,
	})
	ops := opshttp.NewServer(cfg.OpsAddr, logger, checks...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := ops.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server error", "error", err)
		}
	}()

	go func() {
		logger.Info("api server starting", "addr", cfg.HTTPAddr)
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			logger.Error("api server error", "error", err)
			stop()
		}
	}()

	if sched != nil {
		if err := sched.Start(ctx); err != nil {
			logger.Error("failed to start refresh scheduler", "error", err)
			stop()
		}
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("api server shutdown error", "error", err)
	}
	if sched != nil {
		sched.Stop()
	}
	if err := ops.Shutdown(shutdownCtx); err != nil {
		logger.Error("ops server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("selection database close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
