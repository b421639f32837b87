package models

import (
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

type TreeNode struct {
	IsLeaf    bool
	Class     int
	Value     float64
	Feature   int
	Threshold float64
	Left      *TreeNode
	Right     *TreeNode
	Samples   int
	Impurity  float64
}

func (n *TreeNode) leafFor(sample []float64) *TreeNode {
	node := n
	for !node.IsLeaf {
		if sample[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node
}

// DecisionTree is a CART classifier using Gini impurity. MaxDepth 0 grows
// the tree until leaves are pure or too small to split. MaxFeatures 0 means
// every feature is considered at each split.
type DecisionTree struct {
	BaseModel
	Root            *TreeNode
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int
	Classes         []int
	NumFeatures     int

	rng *rand.Rand
}

func NewDecisionTree(maxDepth, minSamplesSplit, maxFeatures int, rng *rand.Rand) *DecisionTree {
	if minSamplesSplit < 2 {
		minSamplesSplit = 2
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(0))
	}

	return &DecisionTree{
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		MaxFeatures:     maxFeatures,
		rng:             rng,
		BaseModel: BaseModel{
			Name: "DecisionTree",
			Params: map[string]any{
				"max_depth":         maxDepth,
				"min_samples_split": minSamplesSplit,
				"max_features":      maxFeatures,
			},
		},
	}
}

func (dt *DecisionTree) Fit(X mat.Matrix, y []int) error {
	if _, _, err := checkLengths(X, y); err != nil {
		return err
	}
	return dt.fitRows(toRows(X), y)
}

func (dt *DecisionTree) fitRows(rows [][]float64, y []int) error {
	dt.Classes = ExtractClasses(y)
	dt.NumFeatures = len(rows[0])

	indices := make([]int, len(rows))
	for i := range indices {
		indices[i] = i
	}

	dt.Root = dt.buildTree(rows, y, indices, 0)
	return nil
}

func (dt *DecisionTree) buildTree(rows [][]float64, y []int, indices []int, depth int) *TreeNode {
	counts := dt.classCounts(y, indices)
	node := &TreeNode{
		Samples:  len(indices),
		Impurity: gini(counts, len(indices)),
	}

	if (dt.MaxDepth > 0 && depth >= dt.MaxDepth) ||
		len(indices) < dt.MinSamplesSplit ||
		node.Impurity == 0 {
		dt.makeLeaf(node, counts)
		return node
	}

	feature, threshold, ok := dt.findBestSplit(rows, y, indices, node.Impurity)
	if !ok {
		dt.makeLeaf(node, counts)
		return node
	}

	left, right := partition(rows, indices, feature, threshold)

	node.Feature = feature
	node.Threshold = threshold
	node.Left = dt.buildTree(rows, y, left, depth+1)
	node.Right = dt.buildTree(rows, y, right, depth+1)

	return node
}

func (dt *DecisionTree) findBestSplit(rows [][]float64, y []int, indices []int, parentImpurity float64) (int, float64, bool) {
	n := len(indices)
	bestFeature := -1
	bestThreshold := 0.0
	bestDecrease := 0.0

	sorted := make([]int, n)
	for _, feature := range candidateFeatures(dt.NumFeatures, dt.MaxFeatures, dt.rng) {
		copy(sorted, indices)
		sortByFeature(rows, sorted, feature)

		left := make([]int, len(dt.Classes))
		right := dt.classCounts(y, sorted)

		for i := 0; i < n-1; i++ {
			label := dt.classIndex(y[sorted[i]])
			left[label]++
			right[label]--

			lo, hi := rows[sorted[i]][feature], rows[sorted[i+1]][feature]
			if lo == hi {
				continue
			}

			nl, nr := i+1, n-i-1
			weighted := (float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)) / float64(n)
			decrease := parentImpurity - weighted

			if decrease > bestDecrease {
				bestDecrease = decrease
				bestFeature = feature
				bestThreshold = lo + (hi-lo)/2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func (dt *DecisionTree) makeLeaf(node *TreeNode, counts []int) {
	node.IsLeaf = true
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	node.Class = dt.Classes[best]
	if node.Samples > 0 {
		node.Value = float64(counts[best]) / float64(node.Samples)
	}
}

func (dt *DecisionTree) classCounts(y []int, indices []int) []int {
	counts := make([]int, len(dt.Classes))
	for _, idx := range indices {
		counts[dt.classIndex(y[idx])]++
	}
	return counts
}

func (dt *DecisionTree) classIndex(label int) int {
	for i, class := range dt.Classes {
		if class == label {
			return i
		}
	}
	return 0
}

func (dt *DecisionTree) Predict(X mat.Matrix) ([]int, error) {
	if dt.Root == nil {
		return nil, ErrNotFitted
	}
	if _, d := X.Dims(); d != dt.NumFeatures {
		return nil, fmt.Errorf("decision tree fitted on %d features, got %d", dt.NumFeatures, d)
	}
	return dt.predictRows(toRows(X)), nil
}

func (dt *DecisionTree) predictRows(rows [][]float64) []int {
	predictions := make([]int, len(rows))
	for i, sample := range rows {
		predictions[i] = dt.Root.leafFor(sample).Class
	}
	return predictions
}

func (dt *DecisionTree) Reset() {
	dt.Root = nil
	dt.Classes = nil
	dt.NumFeatures = 0
}

// RegressionTree is a least-squares CART used as the weak learner in
// gradient boosting. Leaf values are assigned by the caller.
type RegressionTree struct {
	Root            *TreeNode
	MaxDepth        int
	MinSamplesSplit int
	NumFeatures     int

	rng *rand.Rand
}

func NewRegressionTree(maxDepth, minSamplesSplit int, rng *rand.Rand) *RegressionTree {
	if minSamplesSplit < 2 {
		minSamplesSplit = 2
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(0))
	}
	return &RegressionTree{
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		rng:             rng,
	}
}

// Fit grows the tree on targets and sets each leaf to leafValue(indices of
// the samples falling into that leaf).
func (rt *RegressionTree) Fit(rows [][]float64, targets []float64, leafValue func(indices []int) float64) {
	rt.NumFeatures = len(rows[0])
	indices := make([]int, len(rows))
	for i := range indices {
		indices[i] = i
	}
	rt.Root = rt.buildTree(rows, targets, indices, 0, leafValue)
}

func (rt *RegressionTree) buildTree(rows [][]float64, targets []float64, indices []int, depth int, leafValue func([]int) float64) *TreeNode {
	node := &TreeNode{Samples: len(indices)}

	if (rt.MaxDepth > 0 && depth >= rt.MaxDepth) || len(indices) < rt.MinSamplesSplit {
		node.IsLeaf = true
		node.Value = leafValue(indices)
		return node
	}

	feature, threshold, ok := rt.findBestSplit(rows, targets, indices)
	if !ok {
		node.IsLeaf = true
		node.Value = leafValue(indices)
		return node
	}

	left, right := partition(rows, indices, feature, threshold)

	node.Feature = feature
	node.Threshold = threshold
	node.Left = rt.buildTree(rows, targets, left, depth+1, leafValue)
	node.Right = rt.buildTree(rows, targets, right, depth+1, leafValue)

	return node
}

// findBestSplit maximizes sumL²/nL + sumR²/nR, which is equivalent to
// minimizing the summed squared error of the children.
func (rt *RegressionTree) findBestSplit(rows [][]float64, targets []float64, indices []int) (int, float64, bool) {
	n := len(indices)
	total := 0.0
	for _, idx := range indices {
		total += targets[idx]
	}
	parentScore := total * total / float64(n)

	bestFeature := -1
	bestThreshold := 0.0
	bestScore := parentScore

	sorted := make([]int, n)
	for _, feature := range candidateFeatures(rt.NumFeatures, 0, rt.rng) {
		copy(sorted, indices)
		sortByFeature(rows, sorted, feature)

		sumLeft := 0.0
		for i := 0; i < n-1; i++ {
			sumLeft += targets[sorted[i]]

			lo, hi := rows[sorted[i]][feature], rows[sorted[i+1]][feature]
			if lo == hi {
				continue
			}

			nl, nr := float64(i+1), float64(n-i-1)
			sumRight := total - sumLeft
			score := sumLeft*sumLeft/nl + sumRight*sumRight/nr

			if score > bestScore+1e-12 {
				bestScore = score
				bestFeature = feature
				bestThreshold = lo + (hi-lo)/2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func (rt *RegressionTree) predictRow(sample []float64) float64 {
	return rt.Root.leafFor(sample).Value
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		impurity -= p * p
	}
	return impurity
}

// candidateFeatures draws maxFeatures distinct features in random order; 0
// or a value >= nFeatures returns every feature in random order.
func candidateFeatures(nFeatures, maxFeatures int, rng *rand.Rand) []int {
	features := rng.Perm(nFeatures)
	if maxFeatures > 0 && maxFeatures < nFeatures {
		return features[:maxFeatures]
	}
	return features
}

func sortByFeature(rows [][]float64, indices []int, feature int) {
	sort.SliceStable(indices, func(i, j int) bool {
		return rows[indices[i]][feature] < rows[indices[j]][feature]
	})
}

func partition(rows [][]float64, indices []int, feature int, threshold float64) ([]int, []int) {
	var left, right []int
	for _, idx := range indices {
		if rows[idx][feature] <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	return left, right
}
