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

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/matchpoint-labs/tennis-predict/internal/config"
	"github.com/matchpoint-labs/tennis-predict/internal/handlers"
	"github.com/matchpoint-labs/tennis-predict/internal/logic"
	"github.com/matchpoint-labs/tennis-predict/internal/store"
	"github.com/matchpoint-labs/tennis-predict/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sugar := logger.Sugar()
	checks := map[string]handlers.DependencyFunc{}
	installers := map[string]handlers.DependencyFunc{}

	backends := []store.Store{store.NewMemoryStore(logger)}

	// Postgres
	if cfg.PostgresURL != "" {
		pg, err := store.Connect(ctx, cfg.PostgresURL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pg.Close()

		pgStore := store.NewPostgresStore(pg, logger)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("postgres schema: %w", err)
		}
		backends = append(backends, pgStore)
		checks["postgres"] = func(ctx context.Context) error { return pg.Ping(ctx) }
		installers["postgres"] = pgStore.EnsureSchema
		sugar.Infow("Connected to Postgres")
	}

	router, err := store.NewRouter(cfg.DataSource, backends...)
	if err != nil {
		return err
	}
	router.Subscribe(func(from, to string) {
		sugar.Infow("Data source switched", "from", from, "to", to)
	})

	// Redis
	var cache logic.RedisClient
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			sugar.Warnw("Redis unavailable, predictions will be served uncached until it recovers", "error", err)
		}
		cache = rdb
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// ClickHouse and the feedback export pool
	var (
		ch     driver.Conn
		export handlers.ExportQueue
	)
	if cfg.ClickHouseURL != "" {
		opts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
		if err != nil {
			return fmt.Errorf("parse clickhouse dsn: %w", err)
		}
		conn, err := clickhouse.Open(opts)
		if err != nil {
			return fmt.Errorf("open clickhouse: %w", err)
		}
		defer conn.Close()
		if err := worker.EnsureSchema(ctx, conn); err != nil {
			return fmt.Errorf("clickhouse schema: %w", err)
		}

		pool := worker.NewPool(worker.PoolConfig{
			WorkerCount:   cfg.WorkerCount,
			QueueSize:     cfg.QueueSize,
			BatchSize:     cfg.BatchSize,
			FlushInterval: cfg.FlushInterval,
			ClickHouse:    conn,
			Logger:        logger,
		})
		pool.Start(context.Background())
		defer pool.Stop()
		router.OnFeedback(pool.Listener())

		ch = conn
		export = pool
		checks["clickhouse"] = conn.Ping
		installers["clickhouse"] = func(ctx context.Context) error { return worker.EnsureSchema(ctx, conn) }
		sugar.Infow("Connected to ClickHouse")
	}

	rng := logic.EntropyRand()
	if cfg.RandomSeed != 0 {
		rng = logic.NewSeededRand(cfg.RandomSeed)
	}
	engine := logic.NewEngine(rng, logger)

	h := handlers.New(handlers.Config{
		Store:       router,
		DataSources: router,
		ExportQueue: export,
		Checks:      checks,
		Installers:  installers,
		Logger:      logger,
		Prediction:  logic.NewPredictionService(engine, router, cache, cfg.PredictionCacheTTL, logger),
		Accuracy:    logic.NewAccuracyService(router, ch),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h.Routes(cfg.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("Server listening", "port", cfg.Port, "env", cfg.Env, "dataSource", router.ActiveName())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	sugar.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
