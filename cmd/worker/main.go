package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/advent-ledger/internal/config"
	"github.com/ignite/advent-ledger/internal/pkg/distlock"
	"github.com/ignite/advent-ledger/internal/pkg/logger"
	"github.com/ignite/advent-ledger/internal/repository/postgres"
	"github.com/ignite/advent-ledger/internal/service/report"
	"github.com/ignite/advent-ledger/internal/service/rollup"
	"github.com/ignite/advent-ledger/internal/worker"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		logger.Error("failed to load config", "path", *configPath, "err", err)
		os.Exit(1)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(!cfg.Logging.DisablePIIRedaction)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := postgres.Open(ctx, cfg.Database.URL, postgres.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime(),
	})
	cancel()
	if err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			opts = &redis.Options{Addr: cfg.Redis.URL}
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	rollups := postgres.NewRollupRepo(db)
	reconcileEvery := cfg.Worker.ReconcileInterval()
	retainEvery := cfg.Worker.RetentionInterval()

	// Lock TTLs outlive a normal cycle but expire before the next tick.
	reconciler := worker.NewRollupReconciler(
		rollups,
		rollup.NewAggregator(rollups, nil),
		report.NewCache(redisClient, cfg.Report.CacheTTL()),
		distlock.New(redisClient, db.DB, "rollup-reconcile", reconcileEvery/2),
		nil,
		reconcileEvery,
	)
	cleaner := worker.NewRetentionCleaner(
		db.DB,
		distlock.New(redisClient, db.DB, "retention", retainEvery/2),
		retainEvery,
		worker.WithRetentionDays(cfg.Worker.RetentionDays),
		worker.WithBatchSize(cfg.Worker.RetentionBatchSize),
	)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); reconciler.Start(runCtx) }()
	go func() { defer wg.Done(); cleaner.Start(runCtx) }()
	logger.Info("worker running")

	<-runCtx.Done()
	logger.Info("shutting down worker")
	wg.Wait()
	logger.Info("worker stopped")
}
