// Package distance provides the interchangeable dissimilarity metrics used
// by the k-NN classifier.
//
// Every metric is a pure function: commutative, non-negative, and zero when
// both vectors are component-wise equal. The one carve-out is Sorensen on two
// all-zero vectors, where the 0/0 case is defined as 0.
package distance

import (
	"fmt"
	"math"
)

// Func computes a non-negative dissimilarity between two vectors.
// Assumes vectors are the same length (caller's responsibility).
type Func func(a, b []float64) float64

// Metric identifies one member of the fixed metric family.
type Metric int

const (
	MetricEuclidean Metric = iota
	MetricManhattan
	MetricChebyshev
	MetricSorensen
)

func (m Metric) String() string {
	switch m {
	case MetricEuclidean:
		return "Euclidean"
	case MetricManhattan:
		return "Manhattan"
	case MetricChebyshev:
		return "Chebyshev"
	case MetricSorensen:
		return "Sorensen"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// All returns the full metric family, in declaration order.
func All() []Metric {
	return []Metric{MetricEuclidean, MetricManhattan, MetricChebyshev, MetricSorensen}
}

// ErrUnknownMetric is returned when a metric has no registered provider.
type ErrUnknownMetric struct {
	Metric Metric
}

// Error implements the error interface.
func (e *ErrUnknownMetric) Error() string {
	return fmt.Sprintf("unknown metric: %v", e.Metric)
}

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricEuclidean:
		return Euclidean, nil
	case MetricManhattan:
		return Manhattan, nil
	case MetricChebyshev:
		return Chebyshev, nil
	case MetricSorensen:
		return Sorensen, nil
	default:
		return nil, &ErrUnknownMetric{Metric: m}
	}
}

// Euclidean is the L2 distance: sqrt(sum((a_i-b_i)^2)).
func Euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Manhattan is the L1 (cityblock) distance: sum(|a_i-b_i|).
func Manhattan(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

// Chebyshev is the L∞ distance: max(|a_i-b_i|).
func Chebyshev(a, b []float64) float64 {
	var best float64
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > best {
			best = d
		}
	}
	return best
}

// Sorensen is the L1 difference over the L1 sum: sum(|a_i-b_i|) / sum(a_i+b_i).
// When the denominator is zero (both vectors all-zero), the result is 0.
func Sorensen(a, b []float64) float64 {
	var num, den float64
	for i := range a {
		num += math.Abs(a[i] - b[i])
		den += a[i] + b[i]
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// Reduction selects how Minkowski folds per-component differences.
type Reduction int

const (
	// ReduceSum yields the Manhattan/Euclidean family depending on m.
	ReduceSum Reduction = iota
	// ReduceMax yields Chebyshev regardless of m.
	ReduceMax
)

// Minkowski returns the generalized form
//
//	distance = reduce(|a_i-b_i|^m for i) ^ (1/m)
//
// with m >= 1. Minkowski(1, ReduceSum) is Manhattan, Minkowski(2, ReduceSum)
// is Euclidean, and Minkowski(1, ReduceMax) is Chebyshev.
func Minkowski(m float64, r Reduction) (Func, error) {
	if m < 1 {
		return nil, fmt.Errorf("minkowski exponent must be >= 1, got %v", m)
	}
	switch r {
	case ReduceSum:
		return func(a, b []float64) float64 {
			var sum float64
			for i := range a {
				sum += math.Pow(math.Abs(a[i]-b[i]), m)
			}
			return math.Pow(sum, 1/m)
		}, nil
	case ReduceMax:
		return func(a, b []float64) float64 {
			var best float64
			for i := range a {
				if d := math.Pow(math.Abs(a[i]-b[i]), m); d > best {
					best = d
				}
			}
			return math.Pow(best, 1/m)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported reduction: %d", int(r))
	}
}
