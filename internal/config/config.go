package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries every run parameter. The zero-argument run uses Default().
type Config struct {
	Data   DataConfig   `yaml:"data"`
	Split  SplitConfig  `yaml:"split"`
	CV     CVConfig     `yaml:"cross_validation"`
	Models ModelsConfig `yaml:"models"`
	Output OutputConfig `yaml:"output"`
	Plot   PlotConfig   `yaml:"plot"`
}

type DataConfig struct {
	Path       string   `yaml:"path"`
	Features   []string `yaml:"features"`
	Target     string   `yaml:"target"`
	ClassNames []string `yaml:"class_names"`
}

type SplitConfig struct {
	TestSize   float64 `yaml:"test_size"`
	RandomSeed int64   `yaml:"random_seed"`
}

type CVConfig struct {
	Folds    int   `yaml:"folds"`
	Trials   int   `yaml:"trials"`
	FoldSeed int64 `yaml:"fold_seed"`
	// VaryFoldSeed offsets FoldSeed by the trial index. Off by default, which
	// makes every trial reuse the same fold assignment.
	VaryFoldSeed bool `yaml:"vary_fold_seed"`
}

type ModelsConfig struct {
	LogisticRegression LogisticRegressionConfig `yaml:"logistic_regression"`
	RandomForest       RandomForestConfig       `yaml:"random_forest"`
	GradientBoosting   GradientBoostingConfig   `yaml:"gradient_boosting"`
}

type LogisticRegressionConfig struct {
	C       float64 `yaml:"c"`
	MaxIter int     `yaml:"max_iter"`
}

type RandomForestConfig struct {
	NTrees          int   `yaml:"n_trees"`
	MaxDepth        int   `yaml:"max_depth"`
	MinSamplesSplit int   `yaml:"min_samples_split"`
	RandomSeed      int64 `yaml:"random_seed"`
}

type GradientBoostingConfig struct {
	NEstimators     int     `yaml:"n_estimators"`
	LearningRate    float64 `yaml:"learning_rate"`
	MaxDepth        int     `yaml:"max_depth"`
	MinSamplesSplit int     `yaml:"min_samples_split"`
	RandomSeed      int64   `yaml:"random_seed"`
}

type OutputConfig struct {
	Dir                   string `yaml:"dir"`
	SummaryXLSX           string `yaml:"summary_xlsx"`
	SummaryCSV            string `yaml:"summary_csv"`
	FoldsCSV              string `yaml:"folds_csv"`
	ComparisonPNG         string `yaml:"comparison_png"`
	ConfusionMatrixPrefix string `yaml:"confusion_matrix_prefix"`
}

type PlotConfig struct {
	// Sizes are in points.
	HeatmapWidth     float64 `yaml:"heatmap_width"`
	HeatmapHeight    float64 `yaml:"heatmap_height"`
	ComparisonWidth  float64 `yaml:"comparison_width"`
	ComparisonHeight float64 `yaml:"comparison_height"`
	BarWidth         float64 `yaml:"bar_width"`
}

func Default() Config {
	return Config{
		Data: DataConfig{
			Path:       "data/earthquake_data_tsunami.csv",
			Features:   []string{"magnitude", "cdi", "alert", "rms", "depth", "longitude"},
			Target:     "tsunami",
			ClassNames: []string{"No", "Yes"},
		},
		Split: SplitConfig{
			TestSize:   0.2,
			RandomSeed: 42,
		},
		CV: CVConfig{
			Folds:    5,
			Trials:   3,
			FoldSeed: 42,
		},
		Models: ModelsConfig{
			LogisticRegression: LogisticRegressionConfig{C: 1.0, MaxIter: 1000},
			RandomForest: RandomForestConfig{
				NTrees:          100,
				MinSamplesSplit: 2,
				RandomSeed:      42,
			},
			GradientBoosting: GradientBoostingConfig{
				NEstimators:     100,
				LearningRate:    0.1,
				MaxDepth:        3,
				MinSamplesSplit: 2,
				RandomSeed:      42,
			},
		},
		Output: OutputConfig{
			Dir:                   "results",
			SummaryXLSX:           "model_summary.xlsx",
			SummaryCSV:            "model_summary.csv",
			FoldsCSV:              "cv_folds.csv",
			ComparisonPNG:         "model_comparison.png",
			ConfusionMatrixPrefix: "confusion_matrix_",
		},
		Plot: PlotConfig{
			HeatmapWidth:     360,
			HeatmapHeight:    288,
			ComparisonWidth:  864,
			ComparisonHeight: 720,
			BarWidth:         28,
		},
	}
}

// Load overlays the YAML file at path onto Default(). An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if len(c.Data.Features) == 0 {
		return fmt.Errorf("config: at least one feature is required")
	}
	if c.Data.Target == "" {
		return fmt.Errorf("config: target column is required")
	}
	if len(c.Data.ClassNames) != 2 {
		return fmt.Errorf("config: exactly 2 class names are required, got %d", len(c.Data.ClassNames))
	}
	if c.Split.TestSize <= 0 || c.Split.TestSize >= 1 {
		return fmt.Errorf("config: test size must be between 0 and 1, got %v", c.Split.TestSize)
	}
	if c.CV.Folds < 2 {
		return fmt.Errorf("config: folds must be at least 2, got %d", c.CV.Folds)
	}
	if c.CV.Trials < 1 {
		return fmt.Errorf("config: trials must be at least 1, got %d", c.CV.Trials)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("config: output dir is required")
	}
	return nil
}
