// Package lrucachefx provides an fx module for a file-backed durable cache
// of strings.
package lrucachefx

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/lrucache"
	"github.com/discochess/lrucache/internal/stats"
	"github.com/discochess/lrucache/internal/stats/logger"
)

// Config holds configuration for the durable cache.
type Config struct {
	// Capacity is the maximum number of entries. Must be positive.
	// ConfigFromEnv defaults it to 1024.
	Capacity int `env:"LRUCACHE_CAPACITY" envDefault:"1024"`

	// Path is the snapshot file. Required.
	Path string `env:"LRUCACHE_PATH"`

	// Compression is one of none, gzip or zstd.
	// Default is none.
	Compression string `env:"LRUCACHE_COMPRESSION" envDefault:"none"`

	// NoFileLock skips the exclusive lock on <Path>.lock.
	NoFileLock bool `env:"LRUCACHE_NO_FILE_LOCK"`
}

// ConfigFromEnv reads Config from LRUCACHE_* environment variables.
func ConfigFromEnv() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing lrucache config: %w", err)
	}
	return cfg, nil
}

// Module provides a *lrucache.Durable[string, string].
// Requires a Config and a *zap.Logger to be provided.
var Module = fx.Module("lrucache",
	fx.Provide(
		newStatsCollector,
		newCache,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("lrucache.stats"))
}

// Params holds dependencies for creating the cache.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided cache.
type Result struct {
	fx.Out

	Cache *lrucache.Durable[string, string]
}

func newCache(p Params) (Result, error) {
	compression, err := lrucache.ParseCompression(p.Config.Compression)
	if err != nil {
		return Result{}, err
	}

	opts := []lrucache.Option{
		lrucache.WithCompression(compression),
		lrucache.WithStats(p.Collector),
		lrucache.WithLogger(p.Logger.Named("lrucache")),
	}
	if p.Config.NoFileLock {
		opts = append(opts, lrucache.WithoutFileLock())
	}

	cache, err := lrucache.Open(p.Config.Capacity, p.Config.Path,
		lrucache.StringEncoding(), lrucache.StringEncoding(), opts...)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return cache.Close()
		},
	})

	return Result{Cache: cache}, nil
}
