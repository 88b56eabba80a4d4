package classify

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/knntune/distance"
	"github.com/hupe1980/knntune/model"
	"github.com/hupe1980/knntune/store"
)

func buildStore(t *testing.T, samples []model.ClassifiedSample, dim int) *store.Store {
	t.Helper()

	features := make([]string, dim)
	for i := range features {
		features[i] = string(rune('a' + i))
	}
	s, err := store.FromSamples(samples, store.Schema{Features: features, Label: "class"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func fourSamples(t *testing.T) (*store.Store, []uint32) {
	s := buildStore(t, []model.ClassifiedSample{
		{Features: model.Vector{1, 2, 3, 4}, Label: "a"},
		{Features: model.Vector{2, 3, 4, 5}, Label: "b"},
		{Features: model.Vector{3, 4, 5, 6}, Label: "c"},
		{Features: model.Vector{4, 5, 6, 7}, Label: "d"},
	}, 4)
	return s, []uint32{0, 1, 2, 3}
}

func TestClassifyExactMatch(t *testing.T) {
	s, training := fourSamples(t)

	for _, strategy := range Strategies() {
		t.Run(strategy.String(), func(t *testing.T) {
			clf, err := New(s, training, 1, distance.Manhattan, strategy)
			require.NoError(t, err)

			assert.Equal(t, "b", clf.Classify([]float64{2, 3, 4, 5}))
		})
	}
}

func TestClassifyNearby(t *testing.T) {
	s, training := fourSamples(t)

	clf, err := New(s, training, 1, distance.Euclidean, StrategyHeap)
	require.NoError(t, err)

	assert.Equal(t, "a", clf.Classify([]float64{1.1, 2.1, 3.1, 4.1}))
	assert.Equal(t, "d", clf.Classify([]float64{10, 10, 10, 10}))
}

func TestValidateK(t *testing.T) {
	tests := []struct {
		name         string
		k            int
		trainingSize int
		wantErr      bool
	}{
		{"Valid", 3, 10, false},
		{"KEqualsTrainingSize", 10, 10, false},
		{"Zero", 0, 10, true},
		{"Negative", -1, 10, true},
		{"TooLarge", 11, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateK(tt.k, tt.trainingSize)
			if tt.wantErr {
				var invalid *ErrInvalidHyperparameter
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, tt.k, invalid.K)
				assert.Equal(t, tt.trainingSize, invalid.TrainingSize)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewRejectsInvalidK(t *testing.T) {
	s, training := fourSamples(t)

	_, err := New(s, training, 0, distance.Euclidean, StrategyHeap)
	assert.Error(t, err)

	_, err = New(s, training, 5, distance.Euclidean, StrategyHeap)
	assert.Error(t, err)
}

func TestStrategiesProduceIdenticalNeighbors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	const dim = 6
	samples := make([]model.ClassifiedSample, 200)
	labels := []string{"red", "green", "blue"}
	for i := range samples {
		features := make(model.Vector, dim)
		for j := range features {
			features[j] = rng.Float64() * 10
		}
		samples[i] = model.ClassifiedSample{Features: features, Label: labels[rng.Intn(len(labels))]}
	}

	s := buildStore(t, samples, dim)
	training := make([]uint32, s.Len())
	for i := range training {
		training[i] = uint32(i)
	}

	metrics := []distance.Func{distance.Euclidean, distance.Manhattan, distance.Chebyshev, distance.Sorensen}

	for _, k := range []int{1, 3, 7, 50, 200} {
		for _, dist := range metrics {
			var baseline *Classifier
			for _, strategy := range Strategies() {
				clf, err := New(s, training, k, dist, strategy)
				require.NoError(t, err)
				if baseline == nil {
					baseline = clf
					continue
				}

				for trial := 0; trial < 10; trial++ {
					query := make([]float64, dim)
					for j := range query {
						query[j] = rng.Float64() * 10
					}
					assert.Equal(t, baseline.Nearest(query), clf.Nearest(query))
					assert.Equal(t, baseline.Classify(query), clf.Classify(query))
				}
			}
		}
	}
}

func TestDistanceTiesBrokenByScanPosition(t *testing.T) {
	// Two training rows equidistant from the query
	s := buildStore(t, []model.ClassifiedSample{
		{Features: model.Vector{0, 1}, Label: "first"},
		{Features: model.Vector{0, -1}, Label: "second"},
		{Features: model.Vector{5, 5}, Label: "far"},
	}, 2)
	training := []uint32{0, 1, 2}

	for _, strategy := range Strategies() {
		t.Run(strategy.String(), func(t *testing.T) {
			clf, err := New(s, training, 1, distance.Euclidean, strategy)
			require.NoError(t, err)

			neighbors := clf.Nearest([]float64{0, 0})
			require.Len(t, neighbors, 1)
			assert.Equal(t, uint32(0), neighbors[0].Pos)
			assert.Equal(t, "first", clf.Classify([]float64{0, 0}))
		})
	}
}

func TestVoteTieGoesToFirstReached(t *testing.T) {
	// k=2 with one neighbor of each class: the class of the nearer
	// neighbor reaches count 1 first and wins.
	s := buildStore(t, []model.ClassifiedSample{
		{Features: model.Vector{0, 1}, Label: "near"},
		{Features: model.Vector{0, 2}, Label: "far"},
	}, 2)
	training := []uint32{0, 1}

	for _, strategy := range Strategies() {
		t.Run(strategy.String(), func(t *testing.T) {
			clf, err := New(s, training, 2, distance.Euclidean, strategy)
			require.NoError(t, err)

			assert.Equal(t, "near", clf.Classify([]float64{0, 0}))
		})
	}
}

func TestMajorityVote(t *testing.T) {
	s := buildStore(t, []model.ClassifiedSample{
		{Features: model.Vector{0, 0}, Label: "minority"},
		{Features: model.Vector{1, 1}, Label: "majority"},
		{Features: model.Vector{1.1, 1.1}, Label: "majority"},
	}, 2)
	training := []uint32{0, 1, 2}

	clf, err := New(s, training, 3, distance.Euclidean, StrategyFullSort)
	require.NoError(t, err)

	// The single nearest row is "minority" but the 3-vote goes to "majority"
	assert.Equal(t, "majority", clf.Classify([]float64{0.1, 0.1}))
}

func TestTrainingSubset(t *testing.T) {
	s, _ := fourSamples(t)

	// Exclude row 1 from training: the query that matched "b" is now
	// equidistant from "a" and "c", and the earlier scan position wins.
	clf, err := New(s, []uint32{0, 2, 3}, 1, distance.Manhattan, StrategyBoundedInsert)
	require.NoError(t, err)

	assert.Equal(t, "a", clf.Classify([]float64{2, 3, 4, 5}))
}

func TestStrategyString(t *testing.T) {
	assert.Equal(t, "full-sort", StrategyFullSort.String())
	assert.Equal(t, "bounded-insert", StrategyBoundedInsert.String())
	assert.Equal(t, "heap", StrategyHeap.String())
	assert.Contains(t, Strategy(9).String(), "unknown")
}
