package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/natefinch/lumberjack.v2"

	"content_fetcher/internal/browser"
	"content_fetcher/internal/config"
	"content_fetcher/internal/publisher"
	"content_fetcher/internal/scheduler"
	"content_fetcher/internal/search"
	"content_fetcher/internal/service"
	"content_fetcher/internal/storage/mongo"
	"content_fetcher/internal/storage/postgres"
	httptransport "content_fetcher/internal/transport/http"
	"content_fetcher/internal/transport/natsjobs"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger(config.LogConfig{Level: "info"})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.Log)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("content fetcher stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	contents, ledger, closeStore, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var rdb redis.UniversalClient
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return err
		}
		client := redis.NewClient(opts)
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, source info cache disabled", "error", err)
		} else {
			rdb = client
			logger.Info("connected to redis")
		}
	}

	profileTTL := cfg.Browser.ProfileTTL
	pool := browser.NewPool(browser.Config{
		BinPath:     cfg.Browser.BinPath,
		ProfileDir:  cfg.Browser.ProfileDir,
		Headless:    *cfg.Browser.Headless,
		MaxSessions: cfg.Browser.MaxSessions,
		NavTimeout:  cfg.Browser.NavTimeout,
		ScrollDelay: cfg.Browser.ScrollDelay,
	}, logger)
	defer pool.Close()

	registry, err := buildRegistry(ctx, cfg, pool, rdb, logger)
	if err != nil {
		return err
	}

	// Optional sinks stay nil interfaces when disabled.
	var pub service.Publisher
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	var indexer service.Indexer
	if cfg.Meilisearch.Host != "" {
		meili := search.NewMeili(search.Config{
			Host:   cfg.Meilisearch.Host,
			APIKey: cfg.Meilisearch.APIKey,
			Index:  cfg.Meilisearch.Index,
		}, logger)
		if err := meili.EnsureIndex(ctx); err != nil {
			logger.Warn("failed to prepare search index", "error", err)
		}
		indexer = meili
	}

	jobService := service.NewJobService(registry, contents, ledger, pub, indexer, logger)

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		browser.RunSweeper(ctx, cfg.Browser.ProfileDir, cfg.Browser.SweepInterval, profileTTL, logger)
	}()

	server := httptransport.NewServer(jobService, httptransport.Config{
		Addr:         cfg.HTTP.Addr,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		JobTimeout:   cfg.HTTP.JobTimeout,
	}, logger)
	go func() {
		if err := server.Start(); err != nil {
			select {
			case errCh <- err:
			default:
			}
		}
	}()

	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name("content-fetcher"))
		if err != nil {
			return err
		}
		defer nc.Close()

		sub := natsjobs.NewSubscriber(jobService, natsjobs.Config{
			Subject:    cfg.NATS.Subject,
			Queue:      cfg.NATS.Queue,
			JobTimeout: cfg.Scheduler.JobTimeout,
		}, logger)
		if err := sub.Subscribe(nc); err != nil {
			return err
		}
		defer sub.Drain()
	}

	if len(cfg.Scheduler.Jobs) > 0 {
		sched := scheduler.NewScheduler(jobService, scheduler.Config{
			Interval:   cfg.Scheduler.Interval,
			JobTimeout: cfg.Scheduler.JobTimeout,
			Jobs:       cfg.Scheduler.Jobs,
		}, logger)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				select {
				case errCh <- err:
				default:
				}
			}
		}()
	}

	logger.Info("starting content fetcher",
		"platforms", registry.Platforms(),
		"storage", cfg.Storage.Driver,
		"scheduled_jobs", len(cfg.Scheduler.Jobs),
	)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case runErr = <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}
	wg.Wait()

	return runErr
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.ContentStore, service.LedgerStore, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		client, err := mongodrv.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		}
		if err := client.Ping(ctx, nil); err != nil {
			closeFn()
			return nil, nil, nil, err
		}

		db := client.Database(cfg.Mongo.Database)
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			closeFn()
			return nil, nil, nil, err
		}
		logger.Info("connected to mongodb", "database", cfg.Mongo.Database)
		return mongo.NewContentStore(db), mongo.NewLedgerStore(db), closeFn, nil

	default:
		db, err := sqlx.Connect("postgres", cfg.Database.DSN())
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		logger.Info("connected to database")
		return postgres.NewContentStore(db), postgres.NewLedgerStore(db), func() { db.Close() }, nil
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var logLevel slog.Level
	switch cfg.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(out, opts)
	return slog.New(handler)
}
