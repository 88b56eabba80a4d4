package knntune

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hupe1980/knntune/classify"
	"github.com/hupe1980/knntune/distance"
	"github.com/hupe1980/knntune/model"
	"github.com/hupe1980/knntune/partition"
	"github.com/hupe1980/knntune/store"
	"github.com/hupe1980/knntune/tune"
)

// Tuner is the facade over the sample store, the partitioner, the k-NN
// classifier, and the grid-search pool. A Tuner is safe for concurrent use
// once partitioned.
type Tuner struct {
	store  *store.Store
	split  atomic.Pointer[partition.Split]
	pool   *tune.Pool
	opts   options
	closed atomic.Bool
}

// New creates a Tuner over an already-built sample store. The Tuner takes
// ownership of the store even when New fails: it is closed on Close, or on
// the error path. If a resource controller with a memory limit is
// configured, the store's footprint is reserved against it and released on
// Close.
func New(s *store.Store, optFns ...Option) (*Tuner, error) {
	opts := applyOptions(optFns)

	if err := opts.controller.AcquireMemory(context.Background(), s.MemoryBytes()); err != nil {
		s.Close()
		return nil, err
	}

	return &Tuner{
		store: s,
		pool:  tune.NewPool(opts.controller, opts.logger.Logger),
		opts:  opts,
	}, nil
}

// Load builds a sample store from raw records and wraps it in a Tuner.
// Rejected records (under store.SkipInvalid) are logged and counted.
func Load(records []model.Record, schema store.Schema, policy store.InvalidPolicy, optFns ...Option) (*Tuner, error) {
	opts := applyOptions(optFns)
	ctx := context.Background()

	rejected := 0
	start := time.Now()
	s, err := store.Load(records, schema,
		store.WithInvalidPolicy(policy),
		store.WithRejectHandler(func(row int, err error) {
			rejected++
			opts.logger.WarnContext(ctx, "record rejected", "row", row, "error", err)
		}),
	)
	opts.metricsCollector.RecordLoad(len(records), rejected, time.Since(start), err)
	if err != nil {
		opts.logger.LogLoad(ctx, len(records), rejected, err)
		return nil, translateError(err)
	}
	opts.logger.LogLoad(ctx, s.Len(), rejected, nil)

	return New(s, optFns...)
}

// Open memory-maps a snapshot file and wraps the decoded store in a Tuner.
func Open(path string, optFns ...Option) (*Tuner, error) {
	s, err := store.OpenSnapshot(path)
	if err != nil {
		return nil, err
	}
	return New(s, optFns...)
}

// Store returns the underlying sample store.
func (t *Tuner) Store() *store.Store { return t.store }

// Partition splits the store into training and testing rows using the
// given rule. Partition may be called again to re-split.
func (t *Tuner) Partition(rule partition.Rule) error {
	split, err := partition.Partition(t.store, rule)
	if err != nil {
		return err
	}
	t.split.Store(split)
	t.opts.logger.LogPartition(context.Background(), split.TrainingLen(), split.TestingLen())
	return nil
}

// Split returns the current training/testing split, or nil if the store
// has not been partitioned.
func (t *Tuner) Split() *partition.Split { return t.split.Load() }

// Tune runs a grid search over the hyperparameter grid and returns exactly
// one result per combination, sorted by (k, metric). Hyperparameters are
// validated before any trial starts; validation failures abort the run.
// Individual trial failures (including recovered panics) are reported in
// the corresponding Result's Err field and do not abort other trials.
func (t *Tuner) Tune(ctx context.Context, grid tune.Grid) ([]tune.Result, error) {
	split := t.split.Load()
	if split == nil {
		return nil, ErrNotPartitioned
	}

	start := time.Now()
	trials, err := grid.Trials(t.store, split, t.opts.strategy)
	if err != nil {
		t.opts.metricsCollector.RecordTune(0, 0, time.Since(start), err)
		t.opts.logger.LogTune(ctx, grid.Size(), 0, time.Since(start), err)
		return nil, translateError(err)
	}

	results := tune.Collect(t.pool.Run(ctx, trials))

	failed := 0
	for _, res := range results {
		t.opts.metricsCollector.RecordTrial(res.K, res.Elapsed, res.Err)
		if res.Err != nil {
			failed++
		}
	}
	t.opts.metricsCollector.RecordTune(len(results), failed, time.Since(start), nil)
	t.opts.logger.LogTune(ctx, len(results), failed, time.Since(start), nil)

	return results, nil
}

// Best runs Tune and returns the best successful result: highest quality,
// ties broken by smaller k, then metric declaration order.
func (t *Tuner) Best(ctx context.Context, grid tune.Grid) (tune.Result, error) {
	results, err := t.Tune(ctx, grid)
	if err != nil {
		return tune.Result{}, err
	}
	best, ok := tune.Best(results)
	if !ok {
		for _, res := range results {
			if res.Err != nil {
				return tune.Result{}, res.Err
			}
		}
		return tune.Result{}, ErrEmptyTestSet
	}
	return best, nil
}

// ClassifyOne classifies a single query vector against the training rows
// (or the whole store when not partitioned) and returns it as a classified
// sample.
func (t *Tuner) ClassifyOne(ctx context.Context, query []float64, k int, metric distance.Metric) (model.ClassifiedSample, error) {
	start := time.Now()

	sample, err := t.classifyOne(query, k, metric)
	t.opts.metricsCollector.RecordClassify(k, time.Since(start), err)
	t.opts.logger.LogClassify(ctx, k, sample.Label, err)
	return sample, translateError(err)
}

func (t *Tuner) classifyOne(query []float64, k int, metric distance.Metric) (model.ClassifiedSample, error) {
	if len(query) != t.store.Dim() {
		return model.ClassifiedSample{}, &store.ErrDimensionMismatch{Expected: t.store.Dim(), Actual: len(query)}
	}

	training := t.trainingRows()
	dist, err := distance.Provider(metric)
	if err != nil {
		return model.ClassifiedSample{}, err
	}
	clf, err := classify.New(t.store, training, k, dist, t.opts.strategy)
	if err != nil {
		return model.ClassifiedSample{}, err
	}

	return model.ClassifiedSample{
		Features: model.Vector(query).Clone(),
		Label:    clf.Classify(query),
	}, nil
}

func (t *Tuner) trainingRows() []uint32 {
	if split := t.split.Load(); split != nil {
		return split.TrainingRows()
	}
	rows := make([]uint32, t.store.Len())
	for i := range rows {
		rows[i] = uint32(i)
	}
	return rows
}

// Close releases the store's backing storage and returns reserved memory
// to the resource controller. Close is idempotent.
func (t *Tuner) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	t.opts.controller.ReleaseMemory(t.store.MemoryBytes())
	return t.store.Close()
}
