package models

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNotFitted      = errors.New("model is not fitted")
	ErrSchemaMismatch = errors.New("feature schema does not match fitted schema")
)

type Trainable interface {
	// Fit replaces any previously learned parameters.
	Fit(X mat.Matrix, y []int) error
}

type Predictable interface {
	Predict(X mat.Matrix) ([]int, error)
}

type Classifier interface {
	Trainable
	Predictable
	GetName() string
	GetParams() map[string]any
	Reset()
}

type BaseModel struct {
	Name   string
	Params map[string]any
}

func (bm *BaseModel) GetName() string {
	return bm.Name
}

func (bm *BaseModel) GetParams() map[string]any {
	return bm.Params
}

// ExtractClasses returns the distinct labels in ascending order.
func ExtractClasses(y []int) []int {
	maxClass := -1
	for _, label := range y {
		if label > maxClass {
			maxClass = label
		}
	}

	seen := make([]bool, maxClass+1)
	for _, label := range y {
		if label >= 0 {
			seen[label] = true
		}
	}

	classes := make([]int, 0, len(seen))
	for class, ok := range seen {
		if ok {
			classes = append(classes, class)
		}
	}

	return classes
}

func toRows(X mat.Matrix) [][]float64 {
	n, d := X.Dims()
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = make([]float64, d)
		mat.Row(rows[i], i, X)
	}
	return rows
}

func checkLengths(X mat.Matrix, y []int) (int, int, error) {
	n, d := X.Dims()
	if n == 0 {
		return 0, 0, errors.New("empty training set")
	}
	if n != len(y) {
		return 0, 0, errors.New("feature matrix and labels have different lengths")
	}
	return n, d, nil
}
