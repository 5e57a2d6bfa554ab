package bitdex

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting builder metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordRegister is called after each registration call.
	// added is the number of keys added, err is nil if successful.
	RecordRegister(added int, err error)

	// RecordBuild is called after each Build call.
	// keys and records describe the materialized index, duration is the
	// total time taken, err is nil if successful.
	RecordBuild(keys, records int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRegister(int, error)                  {}
func (NoopMetricsCollector) RecordBuild(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RegisterCount   atomic.Int64
	RegisterErrors  atomic.Int64
	KeysRegistered  atomic.Int64
	BuildCount      atomic.Int64
	BuildErrors     atomic.Int64
	BuildTotalNanos atomic.Int64
	BitsEvaluated   atomic.Int64
}

// RecordRegister implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRegister(added int, err error) {
	b.RegisterCount.Add(1)
	if err != nil {
		b.RegisterErrors.Add(1)
		return
	}
	b.KeysRegistered.Add(int64(added))
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(keys, records int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
		return
	}
	b.BitsEvaluated.Add(int64(keys) * int64(records))
}

// BuildStats describes a completed Build.
type BuildStats struct {
	Keys     int
	Records  int
	Workers  int
	SetBits  int
	Duration time.Duration
}
