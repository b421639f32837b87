package models

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"tsunamieval/internal/preprocessing"
)

// Pipeline chains mean imputation, standard scaling and a classifier. All
// learned state comes from the table passed to Fit; a later Fit replaces it.
// A Pipeline must not be fitted from two goroutines at once.
type Pipeline struct {
	Name       string
	Classifier Classifier

	imputer *preprocessing.MeanImputer
	scaler  *preprocessing.Scaler
	schema  preprocessing.Schema
	fitted  bool
}

func NewPipeline(name string, classifier Classifier) *Pipeline {
	return &Pipeline{
		Name:       name,
		Classifier: classifier,
	}
}

func (p *Pipeline) Fit(t preprocessing.Table, y []int) error {
	if t.Len() == 0 {
		return fmt.Errorf("%s: empty training table", p.Name)
	}
	if t.Len() != len(y) {
		return fmt.Errorf("%s: table has %d rows, labels %d", p.Name, t.Len(), len(y))
	}

	p.Reset()

	imputer := preprocessing.NewMeanImputer()
	filled, err := imputer.FitTransform(t)
	if err != nil {
		return fmt.Errorf("%s: impute: %w", p.Name, err)
	}

	scaler := preprocessing.NewScaler()
	scaled, err := scaler.FitTransform(filled)
	if err != nil {
		return fmt.Errorf("%s: scale: %w", p.Name, err)
	}

	if err := p.Classifier.Fit(toDense(scaled, t.Width()), y); err != nil {
		return fmt.Errorf("%s: fit: %w", p.Name, err)
	}

	p.imputer = imputer
	p.scaler = scaler
	p.schema = append(preprocessing.Schema(nil), t.Schema...)
	p.fitted = true
	return nil
}

func (p *Pipeline) Predict(t preprocessing.Table) ([]int, error) {
	if !p.fitted {
		return nil, fmt.Errorf("%s: %w", p.Name, ErrNotFitted)
	}
	if !p.schema.Equal(t.Schema) {
		return nil, fmt.Errorf("%s: %w: fitted %v, got %v", p.Name, ErrSchemaMismatch, p.schema, t.Schema)
	}
	if t.Len() == 0 {
		return []int{}, nil
	}

	filled, err := p.imputer.Transform(t)
	if err != nil {
		return nil, fmt.Errorf("%s: impute: %w", p.Name, err)
	}
	scaled, err := p.scaler.Transform(filled)
	if err != nil {
		return nil, fmt.Errorf("%s: scale: %w", p.Name, err)
	}

	predictions, err := p.Classifier.Predict(toDense(scaled, t.Width()))
	if err != nil {
		return nil, fmt.Errorf("%s: predict: %w", p.Name, err)
	}
	return predictions, nil
}

// Schema returns the feature columns the pipeline was last fitted on.
func (p *Pipeline) Schema() preprocessing.Schema {
	return p.schema
}

func (p *Pipeline) IsFitted() bool {
	return p.fitted
}

func (p *Pipeline) Reset() {
	p.Classifier.Reset()
	p.imputer = nil
	p.scaler = nil
	p.schema = nil
	p.fitted = false
}

func toDense(rows [][]float64, width int) *mat.Dense {
	data := make([]float64, 0, len(rows)*width)
	for _, row := range rows {
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), width, data)
}
