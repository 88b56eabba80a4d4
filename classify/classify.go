// Package classify implements k-nearest-neighbor classification over a
// sample store. Three interchangeable selection strategies find the k
// nearest training rows; all three share one total order over measured
// rows and therefore produce identical classifications.
package classify

import (
	"container/heap"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/hupe1980/knntune/distance"
	"github.com/hupe1980/knntune/queue"
	"github.com/hupe1980/knntune/store"
)

// Strategy selects the algorithm used to find the k nearest neighbors.
// Strategies differ only in running time; their output is identical.
type Strategy int

const (
	// StrategyFullSort measures every training row, sorts all of them and
	// takes the first k. O(n log n), the baseline.
	StrategyFullSort Strategy = iota
	// StrategyBoundedInsert keeps a sorted buffer of the best k rows and
	// insertion-sorts each new measurement into it. O(n*k) worst case,
	// fast for small k.
	StrategyBoundedInsert
	// StrategyHeap keeps the best k rows in a bounded max-heap and evicts
	// the worst retained row in O(log k). O(n log k).
	StrategyHeap
)

// String implements the fmt.Stringer interface.
func (s Strategy) String() string {
	switch s {
	case StrategyFullSort:
		return "full-sort"
	case StrategyBoundedInsert:
		return "bounded-insert"
	case StrategyHeap:
		return "heap"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Strategies returns all selection strategies.
func Strategies() []Strategy {
	return []Strategy{StrategyFullSort, StrategyBoundedInsert, StrategyHeap}
}

// ErrInvalidHyperparameter is returned when k is out of range for the
// training set.
type ErrInvalidHyperparameter struct {
	K            int
	TrainingSize int
}

// Error implements the error interface.
func (e *ErrInvalidHyperparameter) Error() string {
	return fmt.Sprintf("invalid hyperparameter: k=%d must be in [1, %d]", e.K, e.TrainingSize)
}

// ValidateK checks that k is usable against a training set of the given
// size.
func ValidateK(k, trainingSize int) error {
	if k < 1 || k > trainingSize {
		return &ErrInvalidHyperparameter{K: k, TrainingSize: trainingSize}
	}
	return nil
}

// Classifier classifies queries by majority vote among the k nearest
// training rows under a distance function. It is immutable after
// construction and safe for concurrent use.
type Classifier struct {
	store    *store.Store
	training []uint32
	k        int
	dist     distance.Func
	strategy Strategy
}

// New creates a classifier over the given training rows of the store.
// The rows slice defines the scan order used for tie-breaking and is not
// copied; it must not be modified afterwards.
func New(s *store.Store, training []uint32, k int, dist distance.Func, strategy Strategy) (*Classifier, error) {
	if err := ValidateK(k, len(training)); err != nil {
		return nil, err
	}
	return &Classifier{
		store:    s,
		training: training,
		k:        k,
		dist:     dist,
		strategy: strategy,
	}, nil
}

// K returns the configured neighbor count.
func (c *Classifier) K() int { return c.k }

// Nearest returns the k nearest training rows to the query, ordered best
// first. The result is deterministic: distance ties are broken by scan
// position in the training slice.
func (c *Classifier) Nearest(query []float64) []queue.Item {
	switch c.strategy {
	case StrategyBoundedInsert:
		return c.nearestBoundedInsert(query)
	case StrategyHeap:
		return c.nearestHeap(query)
	default:
		return c.nearestFullSort(query)
	}
}

// Classify assigns a class to the query by majority vote among its k
// nearest training rows.
func (c *Classifier) Classify(query []float64) string {
	return c.store.ClassName(c.vote(c.Nearest(query)))
}

func (c *Classifier) measure(pos int, query []float64) queue.Item {
	row := c.training[pos]
	return queue.Item{
		Pos:      uint32(pos),
		Label:    c.store.LabelID(row),
		Distance: c.dist(query, c.store.Features(row)),
	}
}

func (c *Classifier) nearestFullSort(query []float64) []queue.Item {
	measured := make([]queue.Item, len(c.training))
	for pos := range c.training {
		measured[pos] = c.measure(pos, query)
	}
	slices.SortFunc(measured, func(a, b queue.Item) int {
		if queue.Worse(b, a) {
			return -1
		}
		return 1
	})
	return measured[:c.k]
}

func (c *Classifier) nearestBoundedInsert(query []float64) []queue.Item {
	// Seed the buffer with sentinels that rank after any real row
	best := make([]queue.Item, c.k)
	for i := range best {
		best[i] = queue.Item{Pos: math.MaxUint32, Distance: math.Inf(1)}
	}

	for pos := range c.training {
		item := c.measure(pos, query)
		if !queue.Worse(best[c.k-1], item) {
			continue
		}
		at := sort.Search(c.k, func(i int) bool {
			return queue.Worse(best[i], item)
		})
		copy(best[at+1:], best[at:c.k-1])
		best[at] = item
	}
	return best
}

func (c *Classifier) nearestHeap(query []float64) []queue.Item {
	h := queue.NewMaxHeap(c.k)
	for pos := range c.training {
		item := c.measure(pos, query)
		if h.Len() < c.k {
			heap.Push(h, item)
			continue
		}
		if queue.Worse(h.Top(), item) {
			h.ReplaceTop(item)
		}
	}

	// Drain worst-first into best-first order
	best := make([]queue.Item, h.Len())
	for i := len(best) - 1; i >= 0; i-- {
		best[i] = heap.Pop(h).(queue.Item)
	}
	return best
}

// vote returns the class id with the most supporters among the neighbors.
// Neighbors arrive ordered best first; on a vote tie the class that first
// reached the winning count wins, which makes the result deterministic
// across strategies.
func (c *Classifier) vote(neighbors []queue.Item) uint32 {
	counts := make(map[uint32]int, len(neighbors))
	winner := neighbors[0].Label
	winnerCount := 0
	for _, n := range neighbors {
		counts[n.Label]++
		if counts[n.Label] > winnerCount {
			winner = n.Label
			winnerCount = counts[n.Label]
		}
	}
	return winner
}
