package models

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// GradientBoosting is a binary classifier boosting least-squares regression
// trees on the log-loss gradient. Leaves take a single Newton step.
type GradientBoosting struct {
	BaseModel
	NEstimators     int
	LearningRate    float64
	MaxDepth        int
	MinSamplesSplit int
	RandomSeed      int64
	InitScore       float64
	Trees           []*RegressionTree
	NumFeatures     int
}

func NewGradientBoosting(nEstimators int, learningRate float64, maxDepth, minSamplesSplit int, randomSeed int64) *GradientBoosting {
	return &GradientBoosting{
		NEstimators:     nEstimators,
		LearningRate:    learningRate,
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		RandomSeed:      randomSeed,
		BaseModel: BaseModel{
			Name: "GradientBoosting",
			Params: map[string]any{
				"n_estimators":      nEstimators,
				"learning_rate":     learningRate,
				"max_depth":         maxDepth,
				"min_samples_split": minSamplesSplit,
				"random_seed":       randomSeed,
			},
		},
	}
}

func (gb *GradientBoosting) Fit(X mat.Matrix, y []int) error {
	n, d, err := checkLengths(X, y)
	if err != nil {
		return err
	}

	positives := 0
	for i, label := range y {
		switch label {
		case 0:
		case 1:
			positives++
		default:
			return fmt.Errorf("gradient boosting expects labels 0/1, got %d at row %d", label, i)
		}
	}

	rows := toRows(X)
	gb.NumFeatures = d
	gb.InitScore = priorLogOdds(positives, n)
	gb.Trees = make([]*RegressionTree, 0, gb.NEstimators)

	rng := rand.New(rand.NewSource(gb.RandomSeed))
	raw := make([]float64, n)
	for i := range raw {
		raw[i] = gb.InitScore
	}

	prob := make([]float64, n)
	residuals := make([]float64, n)

	for stage := 0; stage < gb.NEstimators; stage++ {
		for i := range raw {
			prob[i] = sigmoid(raw[i])
			residuals[i] = float64(y[i]) - prob[i]
		}

		tree := NewRegressionTree(gb.MaxDepth, gb.MinSamplesSplit, rng)
		tree.Fit(rows, residuals, func(indices []int) float64 {
			var num, den float64
			for _, idx := range indices {
				num += residuals[idx]
				den += prob[idx] * (1 - prob[idx])
			}
			if math.Abs(den) < 1e-150 {
				return 0
			}
			return num / den
		})

		for i, row := range rows {
			raw[i] += gb.LearningRate * tree.predictRow(row)
		}
		gb.Trees = append(gb.Trees, tree)
	}

	return nil
}

func (gb *GradientBoosting) decisionFunction(row []float64) float64 {
	score := gb.InitScore
	for _, tree := range gb.Trees {
		score += gb.LearningRate * tree.predictRow(row)
	}
	return score
}

func (gb *GradientBoosting) Predict(X mat.Matrix) ([]int, error) {
	if len(gb.Trees) == 0 {
		return nil, ErrNotFitted
	}
	if _, d := X.Dims(); d != gb.NumFeatures {
		return nil, fmt.Errorf("gradient boosting fitted on %d features, got %d", gb.NumFeatures, d)
	}

	rows := toRows(X)
	predictions := make([]int, len(rows))
	for i, row := range rows {
		if gb.decisionFunction(row) > 0 {
			predictions[i] = 1
		}
	}
	return predictions, nil
}

func (gb *GradientBoosting) Reset() {
	gb.Trees = nil
	gb.InitScore = 0
	gb.NumFeatures = 0
}

func priorLogOdds(positives, n int) float64 {
	p := float64(positives) / float64(n)
	const eps = 1e-15
	p = math.Min(math.Max(p, eps), 1-eps)
	return math.Log(p / (1 - p))
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
