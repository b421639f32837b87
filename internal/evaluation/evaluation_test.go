package evaluation

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tsunamieval/internal/models"
	"tsunamieval/internal/preprocessing"
)

func TestCalculateFoldMetrics(t *testing.T) {
	m, err := CalculateFoldMetrics([]int{1, 0, 1, 1}, []int{1, 1, 0, 1})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, m.Accuracy, 1e-12)
	assert.InDelta(t, 0.5, m.MAE, 1e-12)
	assert.InDelta(t, 0.7071067811865476, m.RMSE, 1e-12)
	// the miss on a true 0 divides by machine epsilon
	assert.InDelta(t, (1/mapeEpsilon+1)/4, m.MAPE, 1)
	assert.Equal(t, []float64{m.Accuracy, m.MAE, m.RMSE, m.MAPE}, m.Values())
	assert.Equal(t, m.RMSE, m.Get(MetricRMSE))

	_, err = CalculateFoldMetrics([]int{1}, []int{1, 0})
	require.Error(t, err)
	_, err = CalculateFoldMetrics(nil, nil)
	require.Error(t, err)
}

func TestPerfectPredictionsScoreZeroError(t *testing.T) {
	m, err := CalculateFoldMetrics([]int{0, 1, 1}, []int{0, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, FoldMetrics{Accuracy: 1}, m)
}

func TestMeanMetrics(t *testing.T) {
	mean := MeanMetrics([]FoldMetrics{
		{Accuracy: 1, MAE: 0, RMSE: 0, MAPE: 0},
		{Accuracy: 0.5, MAE: 0.5, RMSE: 0.7, MAPE: 2},
	})
	assert.InDelta(t, 0.75, mean.Accuracy, 1e-12)
	assert.InDelta(t, 0.25, mean.MAE, 1e-12)
	assert.InDelta(t, 0.35, mean.RMSE, 1e-12)
	assert.InDelta(t, 1.0, mean.MAPE, 1e-12)
	assert.Equal(t, FoldMetrics{}, MeanMetrics(nil))
}

func TestConfusionMatrixIsAlwaysSquare(t *testing.T) {
	yTrue := []int{0, 0, 1, 1, 1}
	yPred := []int{0, 0, 0, 0, 0}

	cm := BuildConfusionMatrix(yTrue, yPred, 2)
	require.Len(t, cm, 2)
	require.Len(t, cm[0], 2)
	assert.Equal(t, ConfusionMatrix{{2, 0}, {3, 0}}, cm)
	assert.Equal(t, []int{2, 3}, cm.RowSums())
	assert.Equal(t, []int{5, 0}, cm.ColSums())
	assert.Equal(t, 5, cm.Total())
}

func TestClassificationReport(t *testing.T) {
	yTrue := []int{0, 0, 0, 1, 1, 1, 1, 0}
	yPred := []int{0, 0, 1, 1, 1, 0, 1, 0}

	report, err := NewClassificationReport(yTrue, yPred, []string{"No", "Yes"})
	require.NoError(t, err)

	require.Len(t, report.Classes, 2)
	no, yes := report.Classes[0], report.Classes[1]
	assert.Equal(t, "No", no.Class)
	assert.Equal(t, "Yes", yes.Class)
	assert.Equal(t, 4, no.Support)
	assert.Equal(t, 4, yes.Support)
	assert.InDelta(t, 0.75, no.Precision, 1e-12)
	assert.InDelta(t, 0.75, yes.Recall, 1e-12)
	assert.InDelta(t, 0.75, report.Accuracy, 1e-12)
	assert.InDelta(t, 0.75, report.MacroF1, 1e-12)
	assert.InDelta(t, 0.75, no.Specificity, 1e-12)
	assert.Equal(t, ConfusionMatrix{{3, 1}, {1, 3}}, report.ConfusionMatrix)

	text := report.Format()
	assert.Contains(t, text, "precision")
	assert.Contains(t, text, "Yes")
	assert.Contains(t, text, "weighted avg")
}

func TestTrainTestSplitIsDisjointAndDeterministic(t *testing.T) {
	splitter := NewTrainTestSplitter(0.2, 42, true)
	train, test, err := splitter.Split(101)
	require.NoError(t, err)

	assert.Len(t, test, 21)
	assert.Len(t, train, 80)

	all := append(append([]int(nil), train...), test...)
	sort.Ints(all)
	for i, v := range all {
		require.Equal(t, i, v)
	}

	train2, test2, err := splitter.Split(101)
	require.NoError(t, err)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)

	_, _, err = NewTrainTestSplitter(1.5, 42, true).Split(10)
	require.Error(t, err)
}

func TestKFoldPartitionsPositions(t *testing.T) {
	folds, err := NewKFoldSplitter(5, true, 42).Split(23)
	require.NoError(t, err)
	require.Len(t, folds, 5)

	seen := make(map[int]int)
	for i, fold := range folds {
		if i < 3 {
			assert.Len(t, fold.Validation, 5)
		} else {
			assert.Len(t, fold.Validation, 4)
		}
		assert.Len(t, fold.Train, 23-len(fold.Validation))

		inVal := make(map[int]bool)
		for _, idx := range fold.Validation {
			inVal[idx] = true
			seen[idx]++
		}
		for _, idx := range fold.Train {
			assert.False(t, inVal[idx], "index %d in both train and validation of fold %d", idx, i)
		}
	}
	assert.Len(t, seen, 23)
	for idx, count := range seen {
		assert.Equal(t, 1, count, "index %d", idx)
	}
}

func TestKFoldSameSeedSameFolds(t *testing.T) {
	a, err := NewKFoldSplitter(5, true, 42).Split(50)
	require.NoError(t, err)
	b, err := NewKFoldSplitter(5, true, 42).Split(50)
	require.NoError(t, err)
	c, err := NewKFoldSplitter(5, true, 43).Split(50)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestKFoldRejectsBadFoldCount(t *testing.T) {
	_, err := NewKFoldSplitter(1, true, 42).Split(10)
	require.Error(t, err)
	_, err = NewKFoldSplitter(11, true, 42).Split(10)
	require.Error(t, err)
}

func syntheticTable(n int, seed int64) (preprocessing.Table, []int) {
	r := rand.New(rand.NewSource(seed))
	table := preprocessing.Table{Schema: preprocessing.Schema{"magnitude", "depth"}}
	y := make([]int, n)
	for i := 0; i < n; i++ {
		a, b := r.NormFloat64(), r.NormFloat64()
		table.Rows = append(table.Rows, []decimal.NullDecimal{
			decimal.NewNullDecimal(decimal.NewFromFloat(a)),
			decimal.NewNullDecimal(decimal.NewFromFloat(b)),
		})
		if a > 0 {
			y[i] = 1
		}
	}
	return table, y
}

func TestCrossValidateSerial(t *testing.T) {
	table, y := syntheticTable(60, 1)
	pipeline := models.NewPipeline(models.LogisticRegressionName, models.NewLogisticRegression(1, 1000))

	cv := NewCrossValidator(5, true, 42, zaptest.NewLogger(t))
	results, err := cv.CrossValidateSerial(pipeline, table, y)
	require.NoError(t, err)
	require.Len(t, results, 5)

	for i, r := range results {
		assert.Equal(t, i+1, r.Fold)
		assert.Equal(t, 60, r.TrainSize+r.ValidationSize)
		assert.GreaterOrEqual(t, r.Metrics.Accuracy, 0.0)
		assert.LessOrEqual(t, r.Metrics.Accuracy, 1.0)
	}
	assert.True(t, pipeline.IsFitted())

	mean, std := FoldAccuracyStats(results)
	assert.Greater(t, mean, 0.8)
	assert.GreaterOrEqual(t, std, 0.0)
	assert.Len(t, FoldMetricsOf(results), 5)
}
