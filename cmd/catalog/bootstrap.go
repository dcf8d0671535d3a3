package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/livraria-escolar/catalog/app/repositories"
	"github.com/livraria-escolar/catalog/app/services"
	"github.com/livraria-escolar/catalog/config"
	"github.com/livraria-escolar/catalog/pkg/cache"
	"github.com/livraria-escolar/catalog/pkg/docstore"
	"github.com/livraria-escolar/catalog/pkg/logger"
)

const connectTimeout = 10 * time.Second

// runtime holds the connections a command needs. close releases them in
// reverse order.
type runtime struct {
	cfg     *config.Config
	mongo   *docstore.Mongo
	cache   *cache.Cache
	logSink *logger.MongoHandler
	catalog *services.CatalogService
}

// boot loads configuration, connects to MongoDB and, when reachable,
// Redis. Redis is optional: without it reference data is read straight
// from the store.
func boot(ctx context.Context) (*runtime, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := config.Get()
	logger.Setup(os.Stdout, cfg.AppEnv)

	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	db, err := docstore.ConnectMongo(cctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, mongo: db}

	if cfg.LogMongoCollection != "" {
		col := db.Collection(cfg.LogMongoCollection)
		rt.logSink = logger.NewMongoHandler(col, slog.LevelInfo)
		logger.Setup(os.Stdout, cfg.AppEnv, rt.logSink)
	}

	c, err := cache.Connect(cctx, cfg.RedisAddr, cfg.RedisPassword, cfg.CacheTTL)
	if err != nil {
		logger.Warn("redis unavailable, reference data will not be cached", "error", err)
	}
	rt.cache = c

	rt.catalog = services.NewCatalogService(
		repositories.NewCatalogRepository(db),
		services.WithCache(c),
		services.WithMaxImageBytes(cfg.MaxInlineImageBytes),
	)

	logger.Info("connected",
		"mongo_database", cfg.MongoDatabase,
		"redis", c != nil,
		"log_collection", cfg.LogMongoCollection,
	)
	return rt, nil
}

func (rt *runtime) close() {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := rt.cache.Close(); err != nil {
		logger.Warn("redis close", "error", err)
	}
	if rt.logSink != nil {
		logger.Setup(os.Stdout, rt.cfg.AppEnv)
		rt.logSink.Close()
	}
	if err := rt.mongo.Close(ctx); err != nil {
		logger.Warn("mongo disconnect", "error", err)
	}
}
