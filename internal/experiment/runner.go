package experiment

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tsunamieval/internal/config"
	"tsunamieval/internal/data"
	"tsunamieval/internal/evaluation"
	"tsunamieval/internal/models"
	"tsunamieval/internal/preprocessing"
)

type TrialResult struct {
	Trial    int
	FoldSeed int64
	Folds    []evaluation.FoldResult
	Mean     evaluation.FoldMetrics
	Report   *evaluation.ClassificationReport
}

type ModelResult struct {
	Name     string
	Pipeline *models.Pipeline
	Trials   []TrialResult
}

// TrialMeans returns the per-trial fold means in trial order.
func (mr ModelResult) TrialMeans() []evaluation.FoldMetrics {
	out := make([]evaluation.FoldMetrics, len(mr.Trials))
	for i, tr := range mr.Trials {
		out[i] = tr.Mean
	}
	return out
}

type Results struct {
	RunID       string
	Schema      preprocessing.Schema
	Dropped     []string
	ClassCounts []data.ClassCount
	Models      []ModelResult
	XTest       preprocessing.Table
	YTest       []int
}

type Runner struct {
	cfg    config.Config
	logger *zap.Logger
	out    io.Writer
}

func NewRunner(cfg config.Config, logger *zap.Logger, out io.Writer) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Runner{cfg: cfg, logger: logger, out: out}
}

// Run loads the dataset, prepares features and labels, and evaluates every
// registered model over the configured trials of k-fold validation on the
// training split. Each trial ends by scoring the model on the test split.
func (r *Runner) Run() (*Results, error) {
	results := &Results{RunID: uuid.NewString()}
	logger := r.logger.With(zap.String("run_id", results.RunID))

	X, y, err := r.loadData(logger, results)
	if err != nil {
		return nil, err
	}

	splitter := evaluation.NewTrainTestSplitter(r.cfg.Split.TestSize, r.cfg.Split.RandomSeed, true)
	trainIdx, testIdx, err := splitter.Split(X.Len())
	if err != nil {
		return nil, fmt.Errorf("train/test split: %w", err)
	}
	XTrain, yTrain := X.Subset(trainIdx), pick(y, trainIdx)
	results.XTest, results.YTest = X.Subset(testIdx), pick(y, testIdx)

	logger.Info("split dataset",
		zap.Int("train", XTrain.Len()),
		zap.Int("test", results.XTest.Len()))

	if r.cfg.CV.Trials > 1 && !r.cfg.CV.VaryFoldSeed {
		logger.Warn("fold seed is reused by every trial; trials will produce identical results",
			zap.Int64("fold_seed", r.cfg.CV.FoldSeed),
			zap.Int("trials", r.cfg.CV.Trials))
	}

	registry, err := models.NewRegistry(r.cfg.Models)
	if err != nil {
		return nil, err
	}
	results.Models = make([]ModelResult, len(registry))
	for i, p := range registry {
		results.Models[i] = ModelResult{Name: p.Name, Pipeline: p}
		logger.Debug("registered model",
			zap.String("model", p.Name),
			zap.Any("params", p.Classifier.GetParams()))
	}

	for trial := 1; trial <= r.cfg.CV.Trials; trial++ {
		seed := r.cfg.CV.FoldSeed
		if r.cfg.CV.VaryFoldSeed {
			seed += int64(trial - 1)
		}

		for i := range results.Models {
			mr := &results.Models[i]
			tr, err := r.runTrial(logger, mr.Pipeline, trial, seed, XTrain, yTrain, results.XTest, results.YTest)
			if err != nil {
				return nil, fmt.Errorf("%s trial %d: %w", mr.Name, trial, err)
			}
			mr.Trials = append(mr.Trials, tr)
		}
	}

	return results, nil
}

func (r *Runner) loadData(logger *zap.Logger, results *Results) (preprocessing.Table, []int, error) {
	ds, err := data.NewCSVReader(r.cfg.Data.Path).Load(r.cfg.Data.Features, r.cfg.Data.Target)
	if err != nil {
		return preprocessing.Table{}, nil, err
	}

	validator := data.NewDataValidator()
	if err := validator.ValidateDataset(ds.X, ds.Y); err != nil {
		return preprocessing.Table{}, nil, err
	}

	logger.Info("loaded dataset",
		zap.String("path", ds.Source),
		zap.Int("rows", ds.Len()),
		zap.Strings("features", ds.Features))

	coerced := preprocessing.Coerce(ds)
	for j, missing := range preprocessing.MissingCounts(coerced) {
		if missing > 0 {
			logger.Info("feature has missing or non-numeric values",
				zap.String("feature", coerced.Schema[j]),
				zap.Int("missing", missing),
				zap.Int("rows", coerced.Len()))
		}
	}

	table, dropped := preprocessing.DropMissingColumns(coerced)
	for _, name := range dropped {
		logger.Warn("dropping feature with no numeric values", zap.String("feature", name))
	}
	if table.Width() == 0 {
		return preprocessing.Table{}, nil, fmt.Errorf("no usable feature columns remain")
	}
	results.Schema = table.Schema
	results.Dropped = dropped

	encoder := preprocessing.NewLabelEncoder()
	y, err := encoder.FitTransform(ds.Y)
	if err != nil {
		return preprocessing.Table{}, nil, fmt.Errorf("target %s: %w", ds.Target, err)
	}

	counts, err := validator.ValidateBinaryLabels(y)
	results.ClassCounts = counts
	fmt.Fprintf(r.out, "Target class counts (%s):\n", ds.Target)
	for _, c := range counts {
		fmt.Fprintf(r.out, "  %s: %d\n", encoder.Values[c.Class].String(), c.Count)
	}
	if err != nil {
		return preprocessing.Table{}, nil, err
	}

	return table, y, nil
}

func (r *Runner) runTrial(
	logger *zap.Logger,
	pipeline *models.Pipeline,
	trial int,
	seed int64,
	XTrain preprocessing.Table,
	yTrain []int,
	XTest preprocessing.Table,
	yTest []int,
) (TrialResult, error) {
	start := time.Now()

	cv := evaluation.NewCrossValidator(r.cfg.CV.Folds, true, seed, logger)
	folds, err := cv.CrossValidateSerial(pipeline, XTrain, yTrain)
	if err != nil {
		return TrialResult{}, err
	}

	// the pipeline still holds the last fold's fit
	predictions, err := pipeline.Predict(XTest)
	if err != nil {
		return TrialResult{}, fmt.Errorf("predict test split: %w", err)
	}
	report, err := evaluation.NewClassificationReport(yTest, predictions, r.cfg.Data.ClassNames)
	if err != nil {
		return TrialResult{}, err
	}

	tr := TrialResult{
		Trial:    trial,
		FoldSeed: seed,
		Folds:    folds,
		Mean:     evaluation.MeanMetrics(evaluation.FoldMetricsOf(folds)),
		Report:   report,
	}

	cvMean, cvStd := evaluation.FoldAccuracyStats(folds)
	logger.Info("trial complete",
		zap.String("model", pipeline.Name),
		zap.Int("trial", trial),
		zap.Float64("cv_accuracy_mean", cvMean),
		zap.Float64("cv_accuracy_std", cvStd),
		zap.Float64("test_accuracy", report.Accuracy),
		zap.Duration("elapsed", time.Since(start)))

	return tr, nil
}

func pick(y []int, indices []int) []int {
	out := make([]int, len(indices))
	for i, idx := range indices {
		out[i] = y[idx]
	}
	return out
}
