package preprocessing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// LabelEncoder maps numeric target values to consecutive class indices in
// ascending order of value.
type LabelEncoder struct {
	Values   []decimal.Decimal
	IsFitted bool
}

func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{}
}

func (le *LabelEncoder) Fit(labels []string) error {
	parsed, err := parseLabels(labels)
	if err != nil {
		return err
	}

	unique := make(map[string]decimal.Decimal)
	for _, v := range parsed {
		unique[v.String()] = v
	}

	le.Values = make([]decimal.Decimal, 0, len(unique))
	for _, v := range unique {
		le.Values = append(le.Values, v)
	}
	sort.Slice(le.Values, func(i, j int) bool {
		return le.Values[i].LessThan(le.Values[j])
	})

	le.IsFitted = true
	return nil
}

func (le *LabelEncoder) Transform(labels []string) ([]int, error) {
	if !le.IsFitted {
		return nil, fmt.Errorf("LabelEncoder must be fitted before transform")
	}

	parsed, err := parseLabels(labels)
	if err != nil {
		return nil, err
	}

	result := make([]int, len(parsed))
	for i, v := range parsed {
		idx := le.indexOf(v)
		if idx < 0 {
			return nil, fmt.Errorf("unknown label: %s", v)
		}
		result[i] = idx
	}

	return result, nil
}

func (le *LabelEncoder) FitTransform(labels []string) ([]int, error) {
	if err := le.Fit(labels); err != nil {
		return nil, err
	}
	return le.Transform(labels)
}

func (le *LabelEncoder) indexOf(v decimal.Decimal) int {
	for i, known := range le.Values {
		if known.Equal(v) {
			return i
		}
	}
	return -1
}

func parseLabels(labels []string) ([]decimal.Decimal, error) {
	parsed := make([]decimal.Decimal, len(labels))
	for i, raw := range labels {
		v, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid label %q at row %d: %w", raw, i, err)
		}
		parsed[i] = v
	}
	return parsed, nil
}
