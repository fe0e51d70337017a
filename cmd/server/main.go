package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/advent-ledger/internal/api"
	"github.com/ignite/advent-ledger/internal/config"
	"github.com/ignite/advent-ledger/internal/pkg/logger"
	"github.com/ignite/advent-ledger/internal/quizgen"
	"github.com/ignite/advent-ledger/internal/repository/postgres"
	"github.com/ignite/advent-ledger/internal/service/draw"
	"github.com/ignite/advent-ledger/internal/service/ingest"
	"github.com/ignite/advent-ledger/internal/service/leads"
	"github.com/ignite/advent-ledger/internal/service/quiz"
	"github.com/ignite/advent-ledger/internal/service/report"
	"github.com/ignite/advent-ledger/internal/service/rollup"
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

	if cfg.Database.URL == "" {
		logger.Error("database url is required (database.url or DATABASE_URL)")
		os.Exit(1)
	}

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
	logger.Info("connected to database")

	redisClient := connectRedis(cfg.Redis.URL)
	if redisClient != nil {
		defer redisClient.Close()
	}

	clock := rollup.SystemClock{}
	aggregator := rollup.NewAggregator(postgres.NewRollupRepo(db), clock)

	tracker := ingest.NewService(postgres.NewEngagementRepo(db), aggregator, clock, ingest.Config{
		StoreTimeout:    cfg.Ingest.StoreTimeout(),
		BreakerFailures: uint32(cfg.Ingest.BreakerFailures),
		BreakerCooldown: cfg.Ingest.BreakerCooldown(),
	})
	reports := report.NewService(postgres.NewReportRepo(db), report.NewCache(redisClient, cfg.Report.CacheTTL()), clock)
	draws := draw.NewService(postgres.NewDrawRepo(db), aggregator)
	leadExport := leads.NewService(postgres.NewLeadsRepo(db))
	var generator quiz.Generator
	if cfg.Quiz.GeneratorURL != "" {
		generator = quizgen.NewClient(quizgen.Config{
			BaseURL: cfg.Quiz.GeneratorURL,
			APIKey:  cfg.Quiz.APIKey,
			Timeout: cfg.Quiz.Timeout(),
		})
	}
	quizzes := quiz.NewService(postgres.NewQuizRepo(db), generator)

	handlers := api.NewHandlers(tracker, reports, draws, leadExport, quizzes)
	health := api.NewHealthChecker(db.DB, redisClient)
	server := api.NewServer(cfg.Server, handlers, health, api.RouterOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		TrackRateLimit: cfg.Ingest.RateLimitPerMinute,
		TrustProxy:     cfg.Server.TrustProxy,
	})

	go func() {
		logger.Info("server listening", "addr", server.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "err", err)
	}
	logger.Info("server stopped")
}

// connectRedis returns nil when no URL is configured or Redis is unreachable;
// the report cache is optional.
func connectRedis(url string) *redis.Client {
	if url == "" {
		logger.Info("redis not configured, report cache disabled")
		return nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, report cache disabled", "err", err)
		client.Close()
		return nil
	}
	logger.Info("connected to redis")
	return client
}
