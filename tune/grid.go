package tune

import (
	"github.com/hupe1980/knntune/classify"
	"github.com/hupe1980/knntune/distance"
	"github.com/hupe1980/knntune/partition"
	"github.com/hupe1980/knntune/store"
)

// Grid is the hyperparameter search space: the cross-product of neighbor
// counts and distance metrics.
type Grid struct {
	Ks      []int
	Metrics []distance.Metric
}

// KRange returns a grid over k in [lo, hi] and all metrics.
func KRange(lo, hi int) Grid {
	var ks []int
	for k := lo; k <= hi; k++ {
		ks = append(ks, k)
	}
	return Grid{Ks: ks, Metrics: distance.All()}
}

// Size returns the number of combinations in the grid.
func (g Grid) Size() int { return len(g.Ks) * len(g.Metrics) }

// Trials expands the grid into one trial per combination. All
// hyperparameters are validated here; the first invalid combination fails
// the whole expansion, before anything is scheduled.
func (g Grid) Trials(s *store.Store, split *partition.Split, strategy classify.Strategy) ([]*Trial, error) {
	// Materialize the row lists once; every trial reads the same copy.
	training := split.TrainingRows()
	testing := split.TestingRows()

	trials := make([]*Trial, 0, g.Size())
	for _, k := range g.Ks {
		for _, m := range g.Metrics {
			t, err := newTrial(s, training, testing, k, m, strategy)
			if err != nil {
				return nil, err
			}
			trials = append(trials, t)
		}
	}
	return trials, nil
}
