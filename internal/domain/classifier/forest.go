package classifier

import (
	"encoding/json"
	"fmt"

	"github.com/okian/jobguard/internal/domain/model"
)

// KindForest identifies a random forest step.
const KindForest = "random_forest"

// leafMarker marks a leaf in children_left/children_right.
const leafMarker = -1

// treeParams is one fitted tree in flat array form: node i splits on
// feature[i] at threshold[i]; value[i] holds per-class weights.
type treeParams struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// forestParams mirrors the "params" object of a random_forest step.
type forestParams struct {
	Classes           []int        `json:"classes"`
	NFeatures         int          `json:"n_features"`
	Trees             []treeParams `json:"trees"`
	DecisionThreshold *float64     `json:"decision_threshold"`
}

// decisionTree is a validated tree with leaf distributions pre-normalized.
type decisionTree struct {
	left      []int
	right     []int
	feature   []int
	threshold []float64
	proba     [][2]float64 // only meaningful at leaves
}

// RandomForest averages the class distributions of its trees.
type RandomForest struct {
	labels    binaryLabels
	nFeatures int
	trees     []decisionTree
	threshold *float64
}

func newRandomForest(raw json.RawMessage) (*RandomForest, error) {
	var p forestParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}

	labels, err := newBinaryLabels(p.Classes)
	if err != nil {
		return nil, err
	}
	if p.NFeatures < 1 {
		return nil, fmt.Errorf("%w: random forest n_features must be positive", ErrArtifactIncompatible)
	}
	if len(p.Trees) == 0 {
		return nil, fmt.Errorf("%w: random forest has no trees", ErrArtifactIncompatible)
	}
	if err := checkThreshold(p.DecisionThreshold); err != nil {
		return nil, err
	}

	f := &RandomForest{
		labels:    labels,
		nFeatures: p.NFeatures,
		trees:     make([]decisionTree, len(p.Trees)),
		threshold: p.DecisionThreshold,
	}
	for i := range p.Trees {
		t, err := newDecisionTree(&p.Trees[i], p.NFeatures)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		f.trees[i] = t
	}
	return f, nil
}

func newDecisionTree(p *treeParams, nFeatures int) (decisionTree, error) {
	n := len(p.ChildrenLeft)
	if n == 0 {
		return decisionTree{}, fmt.Errorf("%w: empty tree", ErrArtifactIncompatible)
	}
	if len(p.ChildrenRight) != n || len(p.Feature) != n || len(p.Threshold) != n || len(p.Value) != n {
		return decisionTree{}, fmt.Errorf("%w: tree arrays differ in length", ErrArtifactIncompatible)
	}

	t := decisionTree{
		left:      p.ChildrenLeft,
		right:     p.ChildrenRight,
		feature:   p.Feature,
		threshold: p.Threshold,
		proba:     make([][2]float64, n),
	}
	for i := 0; i < n; i++ {
		l, r := t.left[i], t.right[i]
		if l == leafMarker || r == leafMarker {
			if l != r {
				return decisionTree{}, fmt.Errorf("%w: node %d has a single child", ErrArtifactIncompatible, i)
			}
			dist, err := leafDistribution(p.Value[i])
			if err != nil {
				return decisionTree{}, fmt.Errorf("node %d: %w", i, err)
			}
			t.proba[i] = dist
			continue
		}
		// Children always sit after their parent, which also rules out cycles.
		if l <= i || l >= n || r <= i || r >= n {
			return decisionTree{}, fmt.Errorf("%w: node %d has invalid children", ErrArtifactIncompatible, i)
		}
		if f := t.feature[i]; f < 0 || f >= nFeatures {
			return decisionTree{}, fmt.Errorf("%w: node %d splits on feature %d of %d",
				ErrArtifactIncompatible, i, f, nFeatures)
		}
		if !isFinite(t.threshold[i]) {
			return decisionTree{}, fmt.Errorf("%w: node %d threshold is not finite", ErrArtifactIncompatible, i)
		}
	}
	return t, nil
}

// leafDistribution normalizes class weights. An all-zero leaf keeps zeros.
func leafDistribution(v []float64) ([2]float64, error) {
	if len(v) != 2 {
		return [2]float64{}, fmt.Errorf("%w: leaf needs 2 class weights, got %d", ErrArtifactIncompatible, len(v))
	}
	if !isFinite(v[0]) || !isFinite(v[1]) || v[0] < 0 || v[1] < 0 {
		return [2]float64{}, fmt.Errorf("%w: leaf weights must be finite and non-negative", ErrArtifactIncompatible)
	}
	total := v[0] + v[1]
	if total == 0 {
		total = 1
	}
	return [2]float64{v[0] / total, v[1] / total}, nil
}

func (t *decisionTree) leaf(x SparseVector) [2]float64 {
	node := 0
	for t.left[node] != leafMarker {
		if x.At(t.feature[node]) <= t.threshold[node] {
			node = t.left[node]
		} else {
			node = t.right[node]
		}
	}
	return t.proba[node]
}

// Kind implements Classifier.
func (*RandomForest) Kind() string { return KindForest }

// NumFeatures implements Classifier.
func (f *RandomForest) NumFeatures() int { return f.nFeatures }

// Classify implements Classifier. The class with the larger mean probability
// wins; a tie goes to the first class.
func (f *RandomForest) Classify(rows []SparseVector) []model.PredictionResult {
	out := make([]model.PredictionResult, len(rows))
	n := float64(len(f.trees))
	for i, row := range rows {
		var sum [2]float64
		for k := range f.trees {
			d := f.trees[k].leaf(row)
			sum[0] += d[0]
			sum[1] += d[1]
		}
		pFirst, pSecond := sum[0]/n, sum[1]/n
		out[i] = f.labels.decide(pFirst, pSecond, pSecond > pFirst, f.threshold)
	}
	return out
}
