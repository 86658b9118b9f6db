// Package forest implements the risk classifier: a bagged ensemble of
// decision trees over encoded survey features. Each tree is fitted on a
// bootstrap sample of rows and considers a random subset of features at
// each split; the ensemble probability is the mean positive-class fraction of
// the per-tree leaves. Randomness affects training only; a fitted forest
// predicts deterministically.
package forest

import (
	"math"
	"math/rand"
)

// Hyperparameters are fixed at training time and recorded with the model
// artifact for reproducibility auditing.
type Hyperparameters struct {
	Trees         int   `json:"trees"`
	FeatureSample int   `json:"feature_sample"`
	Seed          int64 `json:"seed"`
}

// DefaultHyperparameters reflect the tuning the survey model ships with:
// 200 full-depth trees, 3 candidate features per split (~sqrt of the 10
// survey fields), seed 38.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		Trees:         200,
		FeatureSample: 3,
		Seed:          38,
	}
}

// Node is one tree node in an arena. Interior nodes carry a feature index
// and threshold with child indices into the same arena; leaves have
// Feature == -1 and carry the positive-class fraction of their training
// rows. Trees are acyclic and built once, so integer indices avoid any
// pointer-graph ownership.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int32   `json:"left,omitempty"`
	Right     int32   `json:"right,omitempty"`
	Positive  float64 `json:"positive,omitempty"`
}

// Tree is a single fitted decision tree. Node 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Forest is the fitted ensemble.
type Forest struct {
	Params       Hyperparameters `json:"hyperparameters"`
	FeatureCount int             `json:"feature_count"`
	Trees        []Tree          `json:"trees"`
}

// Fit trains the ensemble. Each tree draws its own rng from the base seed
// plus its index, so fitting is reproducible tree by tree.
func Fit(X [][]float64, y []int, params Hyperparameters) *Forest {
	f := &Forest{
		Params:       params,
		FeatureCount: len(X[0]),
		Trees:        make([]Tree, 0, params.Trees),
	}

	for t := 0; t < params.Trees; t++ {
		rng := rand.New(rand.NewSource(params.Seed + int64(t)))
		f.Trees = append(f.Trees, fitTree(X, y, params.FeatureSample, rng))
	}

	return f
}

// PredictProbability returns the ensemble's positive-class probability for
// one feature vector: the mean of the per-tree leaf fractions.
func (f *Forest) PredictProbability(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}

	sum := 0.0
	for i := range f.Trees {
		sum += f.Trees[i].predict(x)
	}
	return sum / float64(len(f.Trees))
}

func (t *Tree) predict(x []float64) float64 {
	i := int32(0)
	for {
		node := t.Nodes[i]
		if node.Feature < 0 {
			return node.Positive
		}
		if x[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}

// treeBuilder grows one tree into an arena of nodes.
type treeBuilder struct {
	X     [][]float64
	y     []int
	k     int
	rng   *rand.Rand
	nodes []Node
}

func fitTree(X [][]float64, y []int, featureSample int, rng *rand.Rand) Tree {
	// Bootstrap sample of rows, with replacement.
	indices := make([]int, len(X))
	for i := range indices {
		indices[i] = rng.Intn(len(X))
	}

	b := &treeBuilder{X: X, y: y, k: featureSample, rng: rng}
	b.grow(indices)
	return Tree{Nodes: b.nodes}
}

// grow recursively splits the given rows, appending nodes to the arena and
// returning the index of the subtree root. Trees are grown to purity:
// leaves may hold a single row.
func (b *treeBuilder) grow(indices []int) int32 {
	positives := 0
	for _, i := range indices {
		positives += b.y[i]
	}

	if positives == 0 || positives == len(indices) || len(indices) < 2 {
		return b.leaf(float64(positives) / float64(len(indices)))
	}

	feature, threshold, ok := b.bestSplit(indices)
	if !ok {
		return b.leaf(float64(positives) / float64(len(indices)))
	}

	var left, right []int
	for _, i := range indices {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	// Reserve the interior node slot before descending so child indices
	// land after their parent.
	id := int32(len(b.nodes))
	b.nodes = append(b.nodes, Node{})
	leftID := b.grow(left)
	rightID := b.grow(right)
	b.nodes[id] = Node{Feature: feature, Threshold: threshold, Left: leftID, Right: rightID}
	return id
}

func (b *treeBuilder) leaf(positive float64) int32 {
	id := int32(len(b.nodes))
	b.nodes = append(b.nodes, Node{Feature: -1, Positive: positive})
	return id
}

// bestSplit evaluates a random subset of features and picks the threshold
// with the lowest weighted Gini impurity. If the sampled subset yields no
// valid split, every feature is considered before giving up.
func (b *treeBuilder) bestSplit(indices []int) (int, float64, bool) {
	features := b.rng.Perm(len(b.X[0]))

	sample := b.k
	if sample > len(features) {
		sample = len(features)
	}

	bestFeature, bestThreshold, bestImpurity := -1, 0.0, math.Inf(1)

	evaluate := func(feats []int) {
		for _, feature := range feats {
			thresholds := candidateThresholds(b.X, indices, feature)
			for _, threshold := range thresholds {
				impurity, ok := splitImpurity(b.X, b.y, indices, feature, threshold)
				if ok && impurity < bestImpurity {
					bestFeature, bestThreshold, bestImpurity = feature, threshold, impurity
				}
			}
		}
	}

	evaluate(features[:sample])
	if bestFeature < 0 {
		evaluate(features[sample:])
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

// candidateThresholds returns midpoints between consecutive distinct values
// of the feature over the given rows.
func candidateThresholds(X [][]float64, indices []int, feature int) []float64 {
	seen := make(map[float64]bool, len(indices))
	values := make([]float64, 0, len(indices))
	for _, i := range indices {
		v := X[i][feature]
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}

	if len(values) < 2 {
		return nil
	}

	// Insertion sort: the codes are tiny integer vocabularies.
	for i := 1; i < len(values); i++ {
		for j := i; j > 0 && values[j] < values[j-1]; j-- {
			values[j], values[j-1] = values[j-1], values[j]
		}
	}

	thresholds := make([]float64, 0, len(values)-1)
	for i := 0; i < len(values)-1; i++ {
		thresholds = append(thresholds, (values[i]+values[i+1])/2)
	}
	return thresholds
}

// splitImpurity returns the weighted Gini impurity of partitioning rows at
// feature <= threshold. ok is false when one side would be empty.
func splitImpurity(X [][]float64, y []int, indices []int, feature int, threshold float64) (float64, bool) {
	var nLeft, nRight, posLeft, posRight int
	for _, i := range indices {
		if X[i][feature] <= threshold {
			nLeft++
			posLeft += y[i]
		} else {
			nRight++
			posRight += y[i]
		}
	}

	if nLeft == 0 || nRight == 0 {
		return 0, false
	}

	total := float64(nLeft + nRight)
	impurity := float64(nLeft)/total*gini(posLeft, nLeft) +
		float64(nRight)/total*gini(posRight, nRight)
	return impurity, true
}

func gini(positives, n int) float64 {
	p := float64(positives) / float64(n)
	return 1 - p*p - (1-p)*(1-p)
}
