package models

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"tsunamieval/internal/config"
	"tsunamieval/internal/preprocessing"
)

// separable returns n points in 2D labelled by the sign of x0 + x1.
func separable(n int, seed int64) (*mat.Dense, []int) {
	r := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, 2, nil)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		a, b := r.Float64()*2-1, r.Float64()*2-1
		X.Set(i, 0, a)
		X.Set(i, 1, b)
		if a+b > 0 {
			y[i] = 1
		}
	}
	return X, y
}

func accuracy(yTrue, yPred []int) float64 {
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue))
}

func allClassifiers(t *testing.T) []Classifier {
	t.Helper()
	cfg := config.Default().Models
	cfg.RandomForest.NTrees = 20
	cfg.GradientBoosting.NEstimators = 30

	var out []Classifier
	for _, name := range ModelNames {
		c, err := CreateModel(name, cfg)
		require.NoError(t, err)
		out = append(out, c)
	}
	return out
}

func TestClassifiersLearnSeparableData(t *testing.T) {
	X, y := separable(200, 1)
	XTest, yTest := separable(100, 2)

	for _, clf := range allClassifiers(t) {
		t.Run(clf.GetName(), func(t *testing.T) {
			require.NoError(t, clf.Fit(X, y))

			pred, err := clf.Predict(XTest)
			require.NoError(t, err)
			require.Len(t, pred, len(yTest))
			assert.Greater(t, accuracy(yTest, pred), 0.85)
		})
	}
}

func TestClassifiersRequireFit(t *testing.T) {
	X, _ := separable(10, 1)
	for _, clf := range allClassifiers(t) {
		_, err := clf.Predict(X)
		assert.ErrorIs(t, err, ErrNotFitted, clf.GetName())
	}
}

func TestClassifiersAreDeterministic(t *testing.T) {
	X, y := separable(150, 3)
	XTest, _ := separable(50, 4)

	first := allClassifiers(t)
	second := allClassifiers(t)
	for i := range first {
		require.NoError(t, first[i].Fit(X, y))
		require.NoError(t, second[i].Fit(X, y))

		a, err := first[i].Predict(XTest)
		require.NoError(t, err)
		b, err := second[i].Predict(XTest)
		require.NoError(t, err)
		assert.Equal(t, a, b, first[i].GetName())
	}
}

func TestRefitReplacesState(t *testing.T) {
	X, y := separable(120, 5)
	flipped := make([]int, len(y))
	for i, label := range y {
		flipped[i] = 1 - label
	}

	for _, clf := range allClassifiers(t) {
		require.NoError(t, clf.Fit(X, y))
		require.NoError(t, clf.Fit(X, flipped))

		pred, err := clf.Predict(X)
		require.NoError(t, err)
		assert.Greater(t, accuracy(flipped, pred), 0.85, clf.GetName())

		clf.Reset()
		_, err = clf.Predict(X)
		assert.ErrorIs(t, err, ErrNotFitted, clf.GetName())
	}
}

func TestClassifiersRejectWidthChange(t *testing.T) {
	X, y := separable(60, 6)
	wide := mat.NewDense(1, 3, []float64{0, 0, 0})

	for _, clf := range allClassifiers(t) {
		require.NoError(t, clf.Fit(X, y))
		_, err := clf.Predict(wide)
		assert.Error(t, err, clf.GetName())
	}
}

func TestDecisionTreeFitsTrainingData(t *testing.T) {
	X, y := separable(80, 7)
	tree := NewDecisionTree(0, 2, 0, rand.New(rand.NewSource(1)))
	require.NoError(t, tree.Fit(X, y))

	pred, err := tree.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, 1.0, accuracy(y, pred))
}

func TestExtractClassesIsSorted(t *testing.T) {
	assert.Equal(t, []int{0, 1, 3}, ExtractClasses([]int{3, 1, 0, 1, 3}))
}

func table(rows [][]float64, schema ...string) preprocessing.Table {
	t := preprocessing.Table{Schema: schema}
	for _, r := range rows {
		row := make([]decimal.NullDecimal, len(r))
		for j, v := range r {
			row[j] = decimal.NewNullDecimal(decimal.NewFromFloat(v))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func TestPipelineImputesScalesAndPredicts(t *testing.T) {
	X, y := separable(100, 8)
	rows := make([][]float64, 100)
	for i := range rows {
		// shift and stretch so scaling matters
		rows[i] = []float64{X.At(i, 0)*1000 + 50, X.At(i, 1)*1000 - 50}
	}
	train := table(rows, "a", "b")
	train.Rows[3][0] = decimal.NullDecimal{}

	registry, err := NewRegistry(config.Default().Models)
	require.NoError(t, err)
	require.Len(t, registry, 3)

	for _, p := range registry {
		require.NoError(t, p.Fit(train, y), p.Name)
		assert.True(t, p.IsFitted())
		assert.Equal(t, preprocessing.Schema{"a", "b"}, p.Schema())

		pred, err := p.Predict(train)
		require.NoError(t, err)
		assert.Len(t, pred, train.Len())
		assert.Greater(t, accuracy(y, pred), 0.85, p.Name)
	}
}

func TestPipelineRejectsSchemaMismatch(t *testing.T) {
	X, y := separable(40, 9)
	rows := make([][]float64, 40)
	for i := range rows {
		rows[i] = []float64{X.At(i, 0), X.At(i, 1)}
	}

	p := NewPipeline(LogisticRegressionName, NewLogisticRegression(1, 1000))
	_, err := p.Predict(table(rows, "a", "b"))
	require.ErrorIs(t, err, ErrNotFitted)

	require.NoError(t, p.Fit(table(rows, "a", "b"), y))
	_, err = p.Predict(table(rows, "b", "a"))
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestRegistryOrder(t *testing.T) {
	registry, err := NewRegistry(config.Default().Models)
	require.NoError(t, err)

	names := make([]string, len(registry))
	for i, p := range registry {
		names[i] = p.Name
	}
	assert.Equal(t, ModelNames, names)

	_, err = CreateModel("svm", config.Default().Models)
	assert.Error(t, err)
}
