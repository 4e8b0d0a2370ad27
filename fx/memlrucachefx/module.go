// Package memlrucachefx provides an fx module for a durable cache of strings
// backed by an in-memory store.
// Useful for testing.
package memlrucachefx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/lrucache"
	"github.com/discochess/lrucache/internal/stats"
	"github.com/discochess/lrucache/internal/stats/logger"
	"github.com/discochess/lrucache/internal/store/memstore"
)

// Capacity is the number of entries the provided cache holds.
const Capacity = 128

// Module provides an in-memory durable cache for testing.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("memlrucache",
	fx.Provide(
		newStatsCollector,
		newMemStore,
		newCache,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("lrucache.stats"))
}

func newMemStore() *memstore.Store {
	return memstore.New()
}

// Params holds dependencies for creating the cache.
type Params struct {
	fx.In

	Logger    *zap.Logger
	Collector stats.Collector
	Store     *memstore.Store
	Lifecycle fx.Lifecycle
}

// Result holds the provided cache. The backing *memstore.Store is provided
// separately so tests can seed it or inject failures.
type Result struct {
	fx.Out

	Cache *lrucache.Durable[string, string]
}

func newCache(p Params) (Result, error) {
	cache, err := lrucache.Open(Capacity, "",
		lrucache.StringEncoding(), lrucache.StringEncoding(),
		lrucache.WithStore(p.Store),
		lrucache.WithStats(p.Collector),
		lrucache.WithLogger(p.Logger.Named("lrucache")),
	)
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
