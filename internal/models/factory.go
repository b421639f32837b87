package models

import (
	"fmt"

	"tsunamieval/internal/config"
)

const (
	LogisticRegressionName = "Logistic Regression"
	RandomForestName       = "Random Forest"
	GradientBoostingName   = "Gradient Boosting"
)

// ModelNames lists the registry in evaluation order.
var ModelNames = []string{LogisticRegressionName, RandomForestName, GradientBoostingName}

func CreateModel(name string, cfg config.ModelsConfig) (Classifier, error) {
	switch name {
	case LogisticRegressionName:
		lr := cfg.LogisticRegression
		return NewLogisticRegression(lr.C, lr.MaxIter), nil

	case RandomForestName:
		rf := cfg.RandomForest
		if rf.NTrees <= 0 {
			rf.NTrees = 100
		}
		return NewRandomForest(rf.NTrees, rf.MaxDepth, rf.MinSamplesSplit, rf.RandomSeed), nil

	case GradientBoostingName:
		gb := cfg.GradientBoosting
		if gb.NEstimators <= 0 {
			gb.NEstimators = 100
		}
		if gb.LearningRate <= 0 {
			gb.LearningRate = 0.1
		}
		if gb.MaxDepth <= 0 {
			gb.MaxDepth = 3
		}
		return NewGradientBoosting(gb.NEstimators, gb.LearningRate, gb.MaxDepth, gb.MinSamplesSplit, gb.RandomSeed), nil

	default:
		return nil, fmt.Errorf("unknown model: %s", name)
	}
}

// NewRegistry builds one pipeline per registered model, in ModelNames order.
func NewRegistry(cfg config.ModelsConfig) ([]*Pipeline, error) {
	pipelines := make([]*Pipeline, 0, len(ModelNames))
	for _, name := range ModelNames {
		classifier, err := CreateModel(name, cfg)
		if err != nil {
			return nil, err
		}
		pipelines = append(pipelines, NewPipeline(name, classifier))
	}
	return pipelines, nil
}
