package models

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// RandomForest trains NTrees Gini trees on bootstrap samples, drawing
// sqrt(n_features) candidate features at every split. Trees are trained one
// after another; tree i uses its own source seeded with RandomSeed+i.
type RandomForest struct {
	BaseModel
	NTrees          int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int
	RandomSeed      int64
	Trees           []*DecisionTree
	Classes         []int
	NumFeatures     int
}

func NewRandomForest(nTrees, maxDepth, minSamplesSplit int, randomSeed int64) *RandomForest {
	return &RandomForest{
		NTrees:          nTrees,
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		RandomSeed:      randomSeed,
		BaseModel: BaseModel{
			Name: "RandomForest",
			Params: map[string]any{
				"n_trees":           nTrees,
				"max_depth":         maxDepth,
				"min_samples_split": minSamplesSplit,
				"random_seed":       randomSeed,
			},
		},
	}
}

func (rf *RandomForest) Fit(X mat.Matrix, y []int) error {
	_, nFeatures, err := checkLengths(X, y)
	if err != nil {
		return err
	}

	rows := toRows(X)
	rf.Classes = ExtractClasses(y)
	rf.NumFeatures = nFeatures

	rf.MaxFeatures = int(math.Sqrt(float64(nFeatures)))
	if rf.MaxFeatures < 1 {
		rf.MaxFeatures = 1
	}

	rf.Trees = make([]*DecisionTree, rf.NTrees)
	for i := 0; i < rf.NTrees; i++ {
		tree, err := rf.trainSingleTree(rows, y, rf.RandomSeed+int64(i))
		if err != nil {
			return fmt.Errorf("tree %d training failed: %w", i, err)
		}
		rf.Trees[i] = tree
	}

	return nil
}

func (rf *RandomForest) trainSingleTree(rows [][]float64, y []int, seed int64) (*DecisionTree, error) {
	r := rand.New(rand.NewSource(seed))

	n := len(rows)
	XBoot := make([][]float64, n)
	yBoot := make([]int, n)

	for i := 0; i < n; i++ {
		idx := r.Intn(n)
		XBoot[i] = rows[idx]
		yBoot[i] = y[idx]
	}

	tree := NewDecisionTree(rf.MaxDepth, rf.MinSamplesSplit, rf.MaxFeatures, r)
	if err := tree.fitRows(XBoot, yBoot); err != nil {
		return nil, err
	}

	return tree, nil
}

func (rf *RandomForest) Predict(X mat.Matrix) ([]int, error) {
	if len(rf.Trees) == 0 {
		return nil, ErrNotFitted
	}
	if _, d := X.Dims(); d != rf.NumFeatures {
		return nil, fmt.Errorf("random forest fitted on %d features, got %d", rf.NumFeatures, d)
	}

	rows := toRows(X)
	votes := make([][]int, len(rows))
	for i := range votes {
		votes[i] = make([]int, len(rf.Classes))
	}

	for _, tree := range rf.Trees {
		for i, pred := range tree.predictRows(rows) {
			votes[i][rf.classIndex(pred)]++
		}
	}

	predictions := make([]int, len(rows))
	for i, v := range votes {
		best := 0
		for c, count := range v {
			if count > v[best] {
				best = c
			}
		}
		predictions[i] = rf.Classes[best]
	}

	return predictions, nil
}

func (rf *RandomForest) classIndex(label int) int {
	for i, class := range rf.Classes {
		if class == label {
			return i
		}
	}
	return 0
}

func (rf *RandomForest) Reset() {
	rf.Trees = nil
	rf.Classes = nil
	rf.NumFeatures = 0
}
