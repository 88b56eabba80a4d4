package knntune

import (
	"log/slog"

	"github.com/hupe1980/knntune/classify"
	"github.com/hupe1980/knntune/codec"
	"github.com/hupe1980/knntune/resource"
)

type options struct {
	strategy         classify.Strategy
	controller       *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
	codec            codec.Codec
}

// Option configures Tuner constructor behavior.
type Option func(*options)

// WithStrategy selects the neighbor selection strategy used by trials and
// single classifications. All strategies produce identical output; they
// differ only in running time.
func WithStrategy(s classify.Strategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// WithResourceController attaches a resource controller governing worker
// concurrency, trial pacing, and managed memory.
//
// Pass nil to run unthrottled.
func WithResourceController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// WithWorkers caps trial concurrency at n workers. Convenience wrapper for
// WithResourceController(resource.NewController(resource.Config{MaxWorkers: n})).
func WithWorkers(n int) Option {
	return func(o *options) {
		o.controller = resource.NewController(resource.Config{MaxWorkers: int64(n)})
	}
}

// WithCodec configures the codec used for encoding tuning reports.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &knntune.BasicMetricsCollector{}
//	tuner, _ := knntune.New(s, knntune.WithMetricsCollector(metrics))
//	// ... use tuner ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := knntune.NewJSONLogger(slog.LevelInfo)
//	tuner, _ := knntune.New(s, knntune.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		strategy:         classify.StrategyHeap,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		codec:            codec.Default,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
