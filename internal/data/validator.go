package data

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrDegenerateTarget = errors.New("target has fewer than two classes")
	ErrNotBinary        = errors.New("target is not binary")
)

type ClassCount struct {
	Class int
	Count int
}

type DataValidator struct{}

func NewDataValidator() *DataValidator {
	return &DataValidator{}
}

func (dv *DataValidator) ValidateDataset(X [][]string, y []string) error {
	if len(X) == 0 {
		return fmt.Errorf("dataset is empty")
	}

	if len(X) != len(y) {
		return fmt.Errorf("feature matrix and labels have different lengths: %d vs %d", len(X), len(y))
	}

	nFeatures := len(X[0])
	if nFeatures == 0 {
		return fmt.Errorf("features cannot be empty")
	}

	for i, sample := range X {
		if len(sample) != nFeatures {
			return fmt.Errorf("inconsistent feature count at sample %d: expected %d, got %d", i, nFeatures, len(sample))
		}
	}

	return nil
}

// ValidateBinaryLabels checks that y holds exactly two classes. The class
// counts are returned in either case so callers can report them.
func (dv *DataValidator) ValidateBinaryLabels(y []int) ([]ClassCount, error) {
	counts := CountClasses(y)

	if len(counts) < 2 {
		return counts, fmt.Errorf("%w: found %d", ErrDegenerateTarget, len(counts))
	}
	if len(counts) > 2 {
		return counts, fmt.Errorf("%w: found %d classes", ErrNotBinary, len(counts))
	}

	return counts, nil
}

// CountClasses returns per-class counts ordered by class.
func CountClasses(y []int) []ClassCount {
	classCount := make(map[int]int)
	for _, label := range y {
		classCount[label]++
	}

	counts := make([]ClassCount, 0, len(classCount))
	for class, n := range classCount {
		counts = append(counts, ClassCount{Class: class, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Class < counts[j].Class
	})

	return counts
}
