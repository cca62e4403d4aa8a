package app

import (
	"context"
	"fmt"
	"log/slog"

	"voxablog/internal/cache"
	"voxablog/internal/config"
	"voxablog/internal/database"
	"voxablog/internal/events"
	"voxablog/internal/metrics"
	"voxablog/internal/repository"
	"voxablog/internal/service"
	"voxablog/internal/storage"
)

type Deps struct {
	DB       *database.DB
	Repo     *repository.Repository
	Services *service.Service
	Metrics  *metrics.Metrics
}

// App connects every backing service and wires the layers. The returned
// cleanup releases connections in reverse order.
func App(ctx context.Context, cfg *config.Config) (*Deps, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// connection DB
	db, err := database.ConnectDB(ctx, cfg)
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to connect to database: %w", err)
	}
	closers = append(closers, func() {
		if err := db.CloseDB(); err != nil {
			slog.Warn("failed to close database", "error", err)
		}
	})

	// connection MinIO
	minioClient, err := storage.NewMinIOClient(ctx, cfg.MinIO)
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to initialise MinIO: %w", err)
	}

	rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, cleanup, err
	}
	if rdb != nil {
		closers = append(closers, func() { _ = rdb.Close() })
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		slog.Info("publishing blog events", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}
	closers = append(closers, func() {
		if err := publisher.Close(); err != nil {
			slog.Warn("failed to close event publisher", "error", err)
		}
	})

	m := metrics.New()

	// enabling dependencies
	repo := repository.NewRepository(db.DB)
	listCache := cache.NewPostListCache(rdb, cfg.Redis.ListTTL, "blogs")
	services := service.NewService(repo, cfg, minioClient, listCache, publisher, m)

	return &Deps{
		DB:       db,
		Repo:     repo,
		Services: services,
		Metrics:  m,
	}, cleanup, nil
}
