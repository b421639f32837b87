package evaluation

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"tsunamieval/internal/models"
	"tsunamieval/internal/preprocessing"
)

type FoldResult struct {
	Fold           int
	TrainSize      int
	ValidationSize int
	Metrics        FoldMetrics
}

// CrossValidator runs k-fold validation one fold after another. The pipeline
// passed in is re-fitted on every fold and is left holding the state of the
// last fold.
type CrossValidator struct {
	splitter *KFoldSplitter
	logger   *zap.Logger
}

func NewCrossValidator(nFolds int, shuffle bool, randomSeed int64, logger *zap.Logger) *CrossValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CrossValidator{
		splitter: NewKFoldSplitter(nFolds, shuffle, randomSeed),
		logger:   logger,
	}
}

func (cv *CrossValidator) CrossValidateSerial(
	pipeline *models.Pipeline,
	X preprocessing.Table,
	y []int,
) ([]FoldResult, error) {
	if X.Len() != len(y) {
		return nil, fmt.Errorf("feature table and labels have different lengths: %d vs %d", X.Len(), len(y))
	}

	folds, err := cv.splitter.Split(X.Len())
	if err != nil {
		return nil, err
	}

	results := make([]FoldResult, 0, len(folds))
	for i, fold := range folds {
		metrics, err := cv.evaluateFold(pipeline, X, y, fold)
		if err != nil {
			return nil, fmt.Errorf("fold %d failed: %w", i+1, err)
		}

		cv.logger.Debug("fold evaluated",
			zap.String("model", pipeline.Name),
			zap.Int("fold", i+1),
			zap.Float64("accuracy", metrics.Accuracy),
			zap.Float64("mae", metrics.MAE))

		results = append(results, FoldResult{
			Fold:           i + 1,
			TrainSize:      len(fold.Train),
			ValidationSize: len(fold.Validation),
			Metrics:        metrics,
		})
	}

	return results, nil
}

func (cv *CrossValidator) evaluateFold(
	pipeline *models.Pipeline,
	X preprocessing.Table,
	y []int,
	fold Fold,
) (FoldMetrics, error) {
	XTrain := X.Subset(fold.Train)
	XVal := X.Subset(fold.Validation)
	yTrain := selectLabels(y, fold.Train)
	yVal := selectLabels(y, fold.Validation)

	if err := pipeline.Fit(XTrain, yTrain); err != nil {
		return FoldMetrics{}, err
	}

	predictions, err := pipeline.Predict(XVal)
	if err != nil {
		return FoldMetrics{}, err
	}

	return CalculateFoldMetrics(yVal, predictions)
}

func selectLabels(y []int, indices []int) []int {
	out := make([]int, len(indices))
	for i, idx := range indices {
		out[i] = y[idx]
	}
	return out
}

// FoldAccuracyStats returns the mean and sample standard deviation of the
// fold accuracies.
func FoldAccuracyStats(results []FoldResult) (mean, std float64) {
	if len(results) == 0 {
		return 0, 0
	}
	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.Metrics.Accuracy
	}
	if len(scores) == 1 {
		return scores[0], 0
	}
	return stat.MeanStdDev(scores, nil)
}

func FoldMetricsOf(results []FoldResult) []FoldMetrics {
	out := make([]FoldMetrics, len(results))
	for i, r := range results {
		out[i] = r.Metrics
	}
	return out
}
