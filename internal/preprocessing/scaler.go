package preprocessing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes every column to zero mean and unit variance using
// statistics learned in Fit. The statistics are kept in float64 so that
// columns of very small magnitude keep their precision.
type Scaler struct {
	IsFitted    bool
	FeatureMean []float64
	FeatureStd  []float64
}

func NewScaler() *Scaler {
	return &Scaler{}
}

func (s *Scaler) Fit(X [][]decimal.Decimal) error {
	if len(X) == 0 {
		return fmt.Errorf("empty dataset")
	}

	nFeatures := len(X[0])
	s.FeatureMean = make([]float64, nFeatures)
	s.FeatureStd = make([]float64, nFeatures)

	column := make([]float64, len(X))
	for j := 0; j < nFeatures; j++ {
		constant := true
		for i := range X {
			if len(X[i]) != nFeatures {
				return fmt.Errorf("inconsistent feature count at row %d: expected %d, got %d", i, nFeatures, len(X[i]))
			}
			column[i] = X[i][j].InexactFloat64()
			if column[i] != column[0] {
				constant = false
			}
		}

		// constant column
		if constant {
			s.FeatureMean[j] = column[0]
			s.FeatureStd[j] = 1
			continue
		}

		n := float64(len(column))
		mean, variance := stat.MeanVariance(column, nil)
		s.FeatureMean[j] = mean
		// population variance
		s.FeatureStd[j] = math.Sqrt(variance * (n - 1) / n)
		if s.FeatureStd[j] == 0 || math.IsNaN(s.FeatureStd[j]) {
			s.FeatureStd[j] = 1
		}
	}

	s.IsFitted = true
	return nil
}

// Transform returns the standardized values as float64, ready for the
// classifiers.
func (s *Scaler) Transform(X [][]decimal.Decimal) ([][]float64, error) {
	if !s.IsFitted {
		return nil, fmt.Errorf("scaler must be fitted before transform")
	}

	result := make([][]float64, len(X))
	for i := range X {
		if len(X[i]) != len(s.FeatureMean) {
			return nil, fmt.Errorf("scaler fitted on %d features, got %d at row %d", len(s.FeatureMean), len(X[i]), i)
		}
		result[i] = make([]float64, len(X[i]))
		for j := range X[i] {
			result[i][j] = s.transformStandard(X[i][j], j)
		}
	}

	return result, nil
}

func (s *Scaler) FitTransform(X [][]decimal.Decimal) ([][]float64, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

func (s *Scaler) transformStandard(value decimal.Decimal, featureIndex int) float64 {
	return (value.InexactFloat64() - s.FeatureMean[featureIndex]) / s.FeatureStd[featureIndex]
}
