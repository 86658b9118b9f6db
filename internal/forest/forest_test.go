package forest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separableSet is a tiny perfectly separable problem: feature 0 alone
// decides the label.
func separableSet() ([][]float64, []int) {
	X := [][]float64{
		{0, 0, 1}, {0, 1, 0}, {0, 2, 1}, {1, 0, 0}, {1, 1, 1}, {1, 2, 0},
		{4, 0, 1}, {4, 1, 0}, {4, 2, 1}, {5, 0, 0}, {5, 1, 1}, {5, 2, 0},
	}
	y := []int{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1}
	return X, y
}

func testParams() Hyperparameters {
	return Hyperparameters{Trees: 25, FeatureSample: 2, Seed: 38}
}

func TestDefaultHyperparameters(t *testing.T) {
	params := DefaultHyperparameters()

	assert.Equal(t, 200, params.Trees)
	assert.Equal(t, 3, params.FeatureSample)
	assert.Equal(t, int64(38), params.Seed)
}

func TestFit_BuildsRequestedEnsemble(t *testing.T) {
	X, y := separableSet()

	f := Fit(X, y, testParams())

	require.Len(t, f.Trees, 25)
	assert.Equal(t, 3, f.FeatureCount)
	for _, tree := range f.Trees {
		assert.NotEmpty(t, tree.Nodes)
	}
}

func TestPredictProbability_WithinUnitInterval(t *testing.T) {
	X, y := separableSet()
	f := Fit(X, y, testParams())

	probes := [][]float64{
		{0, 0, 0}, {5, 2, 1}, {2, 1, 0}, {3, 0, 1}, {100, 0, 0},
	}
	for _, x := range probes {
		p := f.PredictProbability(x)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestFit_LearnsSeparableData(t *testing.T) {
	X, y := separableSet()
	f := Fit(X, y, testParams())

	assert.Less(t, f.PredictProbability([]float64{0, 1, 1}), 0.2)
	assert.Greater(t, f.PredictProbability([]float64{5, 1, 1}), 0.8)
}

func TestFit_DeterministicForSeed(t *testing.T) {
	X, y := separableSet()

	first := Fit(X, y, testParams())
	second := Fit(X, y, testParams())

	require.Equal(t, first.Trees, second.Trees)

	probe := []float64{2, 1, 0}
	assert.Equal(t, first.PredictProbability(probe), second.PredictProbability(probe))
}

func TestFit_SeedChangesEnsemble(t *testing.T) {
	X, y := separableSet()

	first := Fit(X, y, testParams())

	params := testParams()
	params.Seed = 99
	second := Fit(X, y, params)

	assert.NotEqual(t, first.Trees, second.Trees)
}

func TestPredictProbability_PureClassIsExact(t *testing.T) {
	// All rows share one label, so every bootstrap is pure and every tree
	// is a single leaf.
	X := [][]float64{{0, 0}, {1, 0}, {2, 1}, {3, 1}}
	y := []int{0, 0, 0, 0}

	f := Fit(X, y, testParams())

	assert.Equal(t, 0.0, f.PredictProbability([]float64{0, 0}))
	for _, tree := range f.Trees {
		assert.Len(t, tree.Nodes, 1)
	}
}

func TestPredictProbability_EmptyForest(t *testing.T) {
	f := &Forest{}

	assert.Equal(t, 0.0, f.PredictProbability([]float64{1, 2, 3}))
}

func TestTreePredict_RoutesOnThreshold(t *testing.T) {
	tree := Tree{Nodes: []Node{
		{Feature: 0, Threshold: 0.5, Left: 1, Right: 2},
		{Feature: -1, Positive: 0.0},
		{Feature: -1, Positive: 1.0},
	}}

	assert.Equal(t, 0.0, tree.predict([]float64{0}))
	assert.Equal(t, 0.0, tree.predict([]float64{0.5}))
	assert.Equal(t, 1.0, tree.predict([]float64{1}))
}

func TestCandidateThresholds(t *testing.T) {
	X := [][]float64{{2}, {0}, {1}, {2}, {0}}
	indices := []int{0, 1, 2, 3, 4}

	thresholds := candidateThresholds(X, indices, 0)

	assert.Equal(t, []float64{0.5, 1.5}, thresholds)
}

func TestCandidateThresholds_ConstantFeature(t *testing.T) {
	X := [][]float64{{3}, {3}, {3}}

	assert.Nil(t, candidateThresholds(X, []int{0, 1, 2}, 0))
}

func TestGini(t *testing.T) {
	assert.Equal(t, 0.0, gini(0, 4))
	assert.Equal(t, 0.0, gini(4, 4))
	assert.InDelta(t, 0.5, gini(2, 4), 1e-12)
}
