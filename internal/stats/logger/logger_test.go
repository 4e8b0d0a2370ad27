package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/discochess/lrucache/internal/stats"
)

func TestCollector_LogsMetrics(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := New(zap.New(core))

	c.IncCounter(stats.MetricHits, 1)
	c.SetGauge(stats.MetricSize, 3)
	c.ObserveHistogram(stats.MetricWriteSeconds, 0.25)

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("logged %d entries, want 3", len(entries))
	}

	wantMessages := []string{"counter", "gauge", "histogram"}
	for i, want := range wantMessages {
		if entries[i].Message != want {
			t.Errorf("entry %d message = %q, want %q", i, entries[i].Message, want)
		}
		if entries[i].Level != zapcore.DebugLevel {
			t.Errorf("entry %d level = %v, want debug", i, entries[i].Level)
		}
	}

	fields := entries[1].ContextMap()
	if fields["metric"] != stats.MetricSize {
		t.Errorf("gauge metric = %v, want %q", fields["metric"], stats.MetricSize)
	}
	if fields["value"] != int64(3) {
		t.Errorf("gauge value = %v, want 3", fields["value"])
	}
}

func TestCollector_Level(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	New(zap.New(core)).IncCounter(stats.MetricEvictions, 1)
	if logs.Len() != 0 {
		t.Errorf("debug collector logged %d entries at info core, want 0", logs.Len())
	}

	NewLevel(zap.New(core), zapcore.InfoLevel).IncCounter(stats.MetricEvictions, 1)
	if logs.Len() != 1 {
		t.Errorf("info collector logged %d entries, want 1", logs.Len())
	}
}

func TestNew_NilLogger(t *testing.T) {
	c := New(nil)
	// Must not panic.
	c.IncCounter(stats.MetricMisses, 1)
}
