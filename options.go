package bitdex

import "github.com/hupe1980/bitdex/bitmap"

type options struct {
	factory bitmap.Factory
	logger  *Logger
	metrics MetricsCollector
	workers int
}

func defaultOptions() options {
	return options{
		factory: bitmap.DenseFactory,
		logger:  NoopLogger(),
		metrics: NoopMetricsCollector{},
		workers: 1,
	}
}

// Option configures a Builder.
type Option func(*options)

// WithBitmapFactory sets the bitmap implementation used by Build.
//
// If nil is passed, bitmap.DenseFactory is used.
func WithBitmapFactory(f bitmap.Factory) Option {
	return func(o *options) {
		if f == nil {
			f = bitmap.DenseFactory
		}
		o.factory = f
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m MetricsCollector) Option {
	return func(o *options) {
		if m == nil {
			m = NoopMetricsCollector{}
		}
		o.metrics = m
	}
}

// WithWorkers sets the number of goroutines used to materialize bitmaps.
//
// With one worker (the default) Build makes a single pass over the dataset and
// evaluates every predicate per record. With n > 1 workers the keys are
// partitioned and each worker scans the dataset for its own keys.
// Values below 1 are treated as 1.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.workers = n
	}
}
