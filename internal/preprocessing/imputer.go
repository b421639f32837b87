package preprocessing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MeanImputer replaces missing values with the column mean of the values
// seen during Fit.
type MeanImputer struct {
	Means    []decimal.Decimal
	IsFitted bool
}

func NewMeanImputer() *MeanImputer {
	return &MeanImputer{}
}

func (mi *MeanImputer) Fit(t Table) error {
	if t.Len() == 0 {
		return fmt.Errorf("empty dataset")
	}

	nFeatures := t.Width()
	sums := make([]decimal.Decimal, nFeatures)
	counts := make([]int64, nFeatures)

	for _, row := range t.Rows {
		for j, v := range row {
			if v.Valid {
				sums[j] = sums[j].Add(v.Decimal)
				counts[j]++
			}
		}
	}

	mi.Means = make([]decimal.Decimal, nFeatures)
	for j := range sums {
		// a column with nothing to average is filled with zero
		if counts[j] == 0 {
			mi.Means[j] = decimal.Zero
			continue
		}
		mi.Means[j] = sums[j].Div(decimal.NewFromInt(counts[j]))
	}

	mi.IsFitted = true
	return nil
}

func (mi *MeanImputer) Transform(t Table) ([][]decimal.Decimal, error) {
	if !mi.IsFitted {
		return nil, fmt.Errorf("imputer must be fitted before transform")
	}
	if t.Width() != len(mi.Means) {
		return nil, fmt.Errorf("imputer fitted on %d features, got %d", len(mi.Means), t.Width())
	}

	result := make([][]decimal.Decimal, t.Len())
	for i, row := range t.Rows {
		result[i] = make([]decimal.Decimal, len(row))
		for j, v := range row {
			if v.Valid {
				result[i][j] = v.Decimal
			} else {
				result[i][j] = mi.Means[j]
			}
		}
	}

	return result, nil
}

func (mi *MeanImputer) FitTransform(t Table) ([][]decimal.Decimal, error) {
	if err := mi.Fit(t); err != nil {
		return nil, err
	}
	return mi.Transform(t)
}
