package lrucache

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/discochess/lrucache/internal/codec"
	"github.com/discochess/lrucache/internal/codec/gzipcodec"
	"github.com/discochess/lrucache/internal/codec/noopcodec"
	"github.com/discochess/lrucache/internal/codec/zstdcodec"
	"github.com/discochess/lrucache/internal/stats"
	promstats "github.com/discochess/lrucache/internal/stats/prometheus"
	"github.com/discochess/lrucache/internal/store"
)

// Option configures a Durable cache.
type Option interface {
	apply(*options)
}

// options holds the durable cache configuration.
type options struct {
	store       store.Store
	compression Compression
	fileLock    bool
	stats       stats.Collector
	logger      *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		compression: CompressionNone,
		fileLock:    true,
		stats:       stats.NewNoop(),
		logger:      zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithStore sets the persistence backend, replacing the file at path.
func WithStore(s store.Store) Option {
	return optionFunc(func(o *options) {
		o.store = s
	})
}

// WithCompression compresses the snapshot file.
// Default is CompressionNone (plain text).
func WithCompression(c Compression) Option {
	return optionFunc(func(o *options) {
		o.compression = c
	})
}

// WithoutFileLock disables the exclusive lock on <path>.lock.
func WithoutFileLock() Option {
	return optionFunc(func(o *options) {
		o.fileLock = false
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		if c != nil {
			o.stats = c
		}
	})
}

// WithPrometheus records metrics in reg. A non-empty name is attached to
// every metric as the constant label cache=<name>.
func WithPrometheus(reg prometheus.Registerer, name string) Option {
	var opts []promstats.Option
	if name != "" {
		opts = append(opts, promstats.WithConstLabels(prometheus.Labels{"cache": name}))
	}
	return WithStats(promstats.New(reg, opts...))
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		if l != nil {
			o.logger = l
		}
	})
}

// Compression selects the codec wrapping the snapshot file.
type Compression string

// Supported compressions.
const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// ParseCompression parses "none", "gzip" or "zstd". The empty string is "none".
func ParseCompression(s string) (Compression, error) {
	c := Compression(s)
	if c == "" {
		return CompressionNone, nil
	}
	if _, err := c.codec(); err != nil {
		return "", err
	}
	return c, nil
}

func (c Compression) codec() (codec.Codec, error) {
	switch c {
	case CompressionNone, "":
		return noopcodec.New(), nil
	case CompressionGzip:
		return gzipcodec.New(), nil
	case CompressionZstd:
		return zstdcodec.New(), nil
	default:
		return nil, fmt.Errorf("lrucache: unknown compression %q", string(c))
	}
}
