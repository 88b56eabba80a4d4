package distance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	a := []float64{5.1, 3.5, 1.4, 0.2}
	b := []float64{7.9, 3.2, 4.7, 1.4}

	tests := []struct {
		metric   Metric
		expected float64
	}{
		{MetricEuclidean, 4.501110973970759},
		{MetricManhattan, 7.6},
		{MetricChebyshev, 3.3},
		{MetricSorensen, 0.2773722627737226},
	}

	for _, tt := range tests {
		t.Run(tt.metric.String(), func(t *testing.T) {
			fn, err := Provider(tt.metric)
			require.NoError(t, err)

			assert.InDelta(t, tt.expected, fn(a, b), 1e-12)
		})
	}
}

func TestMetricProperties(t *testing.T) {
	a := []float64{1.5, -2.0, 3.25}
	b := []float64{-0.5, 4.0, 1.0}

	for _, m := range All() {
		t.Run(m.String(), func(t *testing.T) {
			fn, err := Provider(m)
			require.NoError(t, err)

			t.Run("Symmetric", func(t *testing.T) {
				assert.Equal(t, fn(a, b), fn(b, a))
			})

			t.Run("ZeroOnEqual", func(t *testing.T) {
				assert.Equal(t, 0.0, fn(a, a))
			})

			t.Run("NonNegative", func(t *testing.T) {
				assert.GreaterOrEqual(t, fn(a, b), 0.0)
			})
		})
	}
}

func TestSorensenZeroDenominator(t *testing.T) {
	zero := []float64{0, 0, 0}
	assert.Equal(t, 0.0, Sorensen(zero, zero))
}

func TestProviderUnknownMetric(t *testing.T) {
	_, err := Provider(Metric(42))
	require.Error(t, err)

	var unknown *ErrUnknownMetric
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, Metric(42), unknown.Metric)
}

func TestMinkowski(t *testing.T) {
	a := []float64{5.1, 3.5, 1.4, 0.2}
	b := []float64{7.9, 3.2, 4.7, 1.4}

	t.Run("SumExponent1IsManhattan", func(t *testing.T) {
		fn, err := Minkowski(1, ReduceSum)
		require.NoError(t, err)
		assert.InDelta(t, Manhattan(a, b), fn(a, b), 1e-12)
	})

	t.Run("SumExponent2IsEuclidean", func(t *testing.T) {
		fn, err := Minkowski(2, ReduceSum)
		require.NoError(t, err)
		assert.InDelta(t, Euclidean(a, b), fn(a, b), 1e-12)
	})

	t.Run("MaxIsChebyshev", func(t *testing.T) {
		fn, err := Minkowski(1, ReduceMax)
		require.NoError(t, err)
		assert.InDelta(t, Chebyshev(a, b), fn(a, b), 1e-12)
	})

	t.Run("RejectsExponentBelowOne", func(t *testing.T) {
		_, err := Minkowski(0.5, ReduceSum)
		assert.Error(t, err)
	})
}

func TestMetricString(t *testing.T) {
	assert.Equal(t, "Euclidean", MetricEuclidean.String())
	assert.Equal(t, "Manhattan", MetricManhattan.String())
	assert.Equal(t, "Chebyshev", MetricChebyshev.String())
	assert.Equal(t, "Sorensen", MetricSorensen.String())
	assert.Contains(t, Metric(99).String(), "Unknown")
}
