package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"jobpay-engine/internal/cache"
	"jobpay-engine/internal/config"
	"jobpay-engine/internal/events"
	"jobpay-engine/internal/insights"
	"jobpay-engine/internal/location"
	"jobpay-engine/internal/logger"
	"jobpay-engine/internal/normalize"
	"jobpay-engine/internal/secrets"
	"jobpay-engine/internal/source"
	"jobpay-engine/internal/store"
)

// app holds the long-lived services behind the HTTP API.
type app struct {
	src       source.Source
	redis     *redis.Client
	service   *insights.Service
	refresher *insights.Refresher
	importer  *insights.Importer
	hub       *events.Hub
}

func newApp(cfg config.Config, dataDir string, db *store.DB) (*app, error) {
	src, err := source.New(cfg.Source, source.Options{DataDir: dataDir, Store: db})
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	a := &app{src: src, hub: events.NewHub()}

	cc := cache.Config{TTL: time.Duration(cfg.Cache.TTLSeconds) * time.Second}
	if cfg.Cache.RedisAddr != "" {
		a.redis = newRedisClient(cfg)
		cc.Tier = cache.NewRedisTier(a.redis, cfg.Cache.RedisPrefix)
	}

	cities := location.NewCanonicalizer(cfg.Cities.Aliases)
	a.service = insights.NewService(src, cache.New(cc), normalize.New(cities, cfg.Normalize.Workers))
	a.refresher = insights.NewRefresher(a.service, a.hub)

	// Imports only show up in the dataset when the source reads the shared store.
	if s, ok := src.(*source.SQLiteSource); ok && s.DB() == db {
		a.importer = insights.NewImporter(db, a.service, a.hub)
	}
	return a, nil
}

func newRedisClient(cfg config.Config) *redis.Client {
	log := logger.For("engine")

	password, err := secrets.ResolvePassword(secrets.RedisPasswordEnv, cfg.Cache.RedisPasswordKeyring)
	if err != nil && !errors.Is(err, secrets.ErrNotFound) {
		log.Warn().Err(err).Msg("redis password lookup failed")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: password,
		DB:       cfg.Cache.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		// the in-process cache keeps working; tier errors are logged per call
		log.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("redis unreachable")
	}
	return client
}

func (a *app) importFile(ctx context.Context, path string) error {
	if a.importer == nil {
		return insights.ErrNoStore
	}
	docs, err := source.ReadDocuments(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	added, err := a.importer.Import(ctx, docs, "cli")
	if err != nil {
		return err
	}
	log := logger.For("engine")
	log.Info().Str("file", path).Int("received", len(docs)).Int("added", added).Msg("postings imported")
	return nil
}

func (a *app) Close() error {
	var errs []error
	if err := source.Close(a.src); err != nil {
		errs = append(errs, err)
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
