package evaluation

import (
	"fmt"
	"math"
	"math/rand"
)

type TrainTestSplitter struct {
	testSize   float64
	randomSeed int64
	shuffle    bool
}

func NewTrainTestSplitter(testSize float64, randomSeed int64, shuffle bool) *TrainTestSplitter {
	return &TrainTestSplitter{
		testSize:   testSize,
		randomSeed: randomSeed,
		shuffle:    shuffle,
	}
}

// Split partitions row indices 0..n-1 into disjoint train and test sets. The
// test set holds ceil(n*testSize) rows.
func (tts *TrainTestSplitter) Split(n int) ([]int, []int, error) {
	if n == 0 {
		return nil, nil, fmt.Errorf("cannot split empty dataset")
	}

	if tts.testSize <= 0 || tts.testSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be between 0 and 1")
	}

	testCount := int(math.Ceil(float64(n) * tts.testSize))
	trainCount := n - testCount
	if trainCount < 1 {
		return nil, nil, fmt.Errorf("test size %.2f leaves no training rows out of %d", tts.testSize, n)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	if tts.shuffle {
		rng := rand.New(rand.NewSource(tts.randomSeed))
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	train := append([]int(nil), indices[:trainCount]...)
	test := append([]int(nil), indices[trainCount:]...)
	return train, test, nil
}

// Fold holds positions (not row ids) into the array being split.
type Fold struct {
	Train      []int
	Validation []int
}

type KFoldSplitter struct {
	nFolds     int
	shuffle    bool
	randomSeed int64
}

func NewKFoldSplitter(nFolds int, shuffle bool, randomSeed int64) *KFoldSplitter {
	return &KFoldSplitter{
		nFolds:     nFolds,
		shuffle:    shuffle,
		randomSeed: randomSeed,
	}
}

// Split partitions 0..n-1 into nFolds validation sets. The first n%nFolds
// folds get one extra element. Every position appears in exactly one
// validation set and in the train sets of all other folds.
func (kfs *KFoldSplitter) Split(n int) ([]Fold, error) {
	if n == 0 {
		return nil, fmt.Errorf("cannot split empty dataset")
	}

	if kfs.nFolds <= 1 || kfs.nFolds > n {
		return nil, fmt.Errorf("number of folds must be between 2 and %d, got %d", n, kfs.nFolds)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	if kfs.shuffle {
		rng := rand.New(rand.NewSource(kfs.randomSeed))
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]Fold, 0, kfs.nFolds)
	start := 0
	for fold := 0; fold < kfs.nFolds; fold++ {
		size := n / kfs.nFolds
		if fold < n%kfs.nFolds {
			size++
		}
		end := start + size

		validation := append([]int(nil), indices[start:end]...)
		train := make([]int, 0, n-size)
		train = append(train, indices[:start]...)
		train = append(train, indices[end:]...)

		folds = append(folds, Fold{Train: train, Validation: validation})
		start = end
	}

	return folds, nil
}
