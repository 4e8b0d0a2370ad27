// Package stats defines how the durable cache reports hits, evictions and
// snapshot writes to a metrics backend.
package stats

// Metric names recorded by the durable cache. Counters end in _total.
const (
	MetricHits   = "lrucache_hits_total"
	MetricMisses = "lrucache_misses_total"

	// Incremented once per overflowing put.
	MetricEvictions = "lrucache_evictions_total"
	// Entries held after the last load or write.
	MetricSize = "lrucache_size"

	MetricWrites       = "lrucache_writes_total"
	MetricWriteErrors  = "lrucache_write_errors_total"
	MetricWriteSeconds = "lrucache_write_seconds"
	// Lines read from the snapshot on open, including ones evicted on replay.
	MetricRecordsLoaded = "lrucache_records_loaded_total"
)

// Collector receives cache metrics by name. Implementations must accept any
// of the Metric* names; the durable cache never registers them up front.
type Collector interface {
	IncCounter(name string, delta int64)
	SetGauge(name string, value int64)
	ObserveHistogram(name string, value float64)
}
