package tune

import (
	"context"
	"time"

	"github.com/hupe1980/knntune/classify"
	"github.com/hupe1980/knntune/distance"
	"github.com/hupe1980/knntune/partition"
	"github.com/hupe1980/knntune/store"
)

// ctxCheckInterval is how many testing rows a trial classifies between
// context cancellation checks.
const ctxCheckInterval = 64

// Result is the outcome of one trial. Exactly one Result is produced per
// trial; a failed trial carries its error in Err with Quality 0.
type Result struct {
	K       int             `json:"k"`
	Metric  distance.Metric `json:"metric"`
	Quality float64         `json:"quality"`
	Elapsed time.Duration   `json:"elapsed"`
	Err     error           `json:"-"`
}

// Trial evaluates one hyperparameter combination: it classifies every
// testing row against the training rows and measures the fraction
// classified correctly.
type Trial struct {
	store    *store.Store
	training []uint32
	testing  []uint32
	k        int
	metric   distance.Metric
	dist     distance.Func
	strategy classify.Strategy
}

// NewTrial creates a trial for the combination (k, metric). Hyperparameters
// are validated here, before the trial is scheduled: an out-of-range k
// returns *classify.ErrInvalidHyperparameter and an unknown metric returns
// distance.ErrUnknownMetric.
func NewTrial(s *store.Store, split *partition.Split, k int, metric distance.Metric, strategy classify.Strategy) (*Trial, error) {
	return newTrial(s, split.TrainingRows(), split.TestingRows(), k, metric, strategy)
}

// newTrial takes pre-materialized row lists so a grid can share one copy
// across all of its trials. Trials only read the lists.
func newTrial(s *store.Store, training, testing []uint32, k int, metric distance.Metric, strategy classify.Strategy) (*Trial, error) {
	if err := classify.ValidateK(k, len(training)); err != nil {
		return nil, err
	}
	dist, err := distance.Provider(metric)
	if err != nil {
		return nil, err
	}
	return &Trial{
		store:    s,
		training: training,
		testing:  testing,
		k:        k,
		metric:   metric,
		dist:     dist,
		strategy: strategy,
	}, nil
}

// K returns the trial's neighbor count.
func (t *Trial) K() int { return t.k }

// Metric returns the trial's distance metric.
func (t *Trial) Metric() distance.Metric { return t.metric }

// Run executes the trial and returns its result. Run never returns an
// unattributed error: failures are folded into the Result.
func (t *Trial) Run(ctx context.Context) Result {
	start := time.Now()
	res := Result{K: t.k, Metric: t.metric}

	if len(t.testing) == 0 {
		res.Err = ErrEmptyTestSet
		res.Elapsed = time.Since(start)
		return res
	}

	clf, err := classify.New(t.store, t.training, t.k, t.dist, t.strategy)
	if err != nil {
		res.Err = err
		res.Elapsed = time.Since(start)
		return res
	}

	correct := 0
	for i, row := range t.testing {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				res.Err = err
				res.Elapsed = time.Since(start)
				return res
			}
		}

		sample := store.TestingSample{KnownSample: t.store.Sample(row)}
		sample.Classification = clf.Classify(sample.Features())
		if sample.Matches() {
			correct++
		}
	}

	res.Quality = float64(correct) / float64(len(t.testing))
	res.Elapsed = time.Since(start)
	return res
}
