package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"tsunamieval/internal/config"
	"tsunamieval/internal/evaluation"
	"tsunamieval/internal/experiment"
)

// Artifacts lists the files written by a report.
type Artifacts struct {
	SummaryXLSX   string
	SummaryCSV    string
	FoldsCSV      string
	ComparisonPNG string
	ConfusionPNGs []string
	TestReports   []*evaluation.ClassificationReport
}

type Reporter struct {
	cfg    config.Config
	logger *zap.Logger
	out    io.Writer
}

func NewReporter(cfg config.Config, logger *zap.Logger, out io.Writer) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Reporter{cfg: cfg, logger: logger, out: out}
}

// Report prints and persists the summary, then scores each model on the test
// split with whatever state its pipeline was left in by the last fold fit.
func (r *Reporter) Report(results *experiment.Results, summary Summary) (*Artifacts, error) {
	outCfg := r.cfg.Output
	if err := os.MkdirAll(outCfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	logger := r.logger.With(zap.String("run_id", results.RunID))

	art := &Artifacts{
		SummaryXLSX:   filepath.Join(outCfg.Dir, outCfg.SummaryXLSX),
		SummaryCSV:    filepath.Join(outCfg.Dir, outCfg.SummaryCSV),
		FoldsCSV:      filepath.Join(outCfg.Dir, outCfg.FoldsCSV),
		ComparisonPNG: filepath.Join(outCfg.Dir, outCfg.ComparisonPNG),
	}

	summary.Print(r.out)
	fmt.Fprintln(r.out)

	if err := WriteSummaryXLSX(art.SummaryXLSX, summary); err != nil {
		return nil, err
	}
	if err := WriteSummaryCSV(art.SummaryCSV, summary); err != nil {
		return nil, err
	}
	if err := WriteFoldsCSV(art.FoldsCSV, results); err != nil {
		return nil, err
	}
	logger.Info("wrote summary",
		zap.String("xlsx", art.SummaryXLSX),
		zap.String("csv", art.SummaryCSV),
		zap.String("folds", art.FoldsCSV))

	classNames := r.cfg.Data.ClassNames
	for _, mr := range results.Models {
		predictions, err := mr.Pipeline.Predict(results.XTest)
		if err != nil {
			return nil, fmt.Errorf("%s: predict test split: %w", mr.Name, err)
		}
		testReport, err := evaluation.NewClassificationReport(results.YTest, predictions, classNames)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", mr.Name, err)
		}
		art.TestReports = append(art.TestReports, testReport)

		PrintClassificationReport(r.out, mr.Name, testReport)
		PrintConfusionMatrix(r.out, testReport.ConfusionMatrix, classNames)
		fmt.Fprintln(r.out)

		path := filepath.Join(outCfg.Dir, outCfg.ConfusionMatrixPrefix+ModelSlug(mr.Name)+".png")
		title := fmt.Sprintf("Confusion Matrix: %s", mr.Name)
		if err := SaveConfusionHeatmap(path, title, testReport.ConfusionMatrix, classNames, r.cfg.Plot); err != nil {
			return nil, fmt.Errorf("%s: %w", mr.Name, err)
		}
		art.ConfusionPNGs = append(art.ConfusionPNGs, path)
		logger.Info("wrote confusion matrix", zap.String("model", mr.Name), zap.String("path", path))
	}

	if err := SaveComparisonChart(art.ComparisonPNG, summary, r.cfg.Plot); err != nil {
		return nil, err
	}
	logger.Info("wrote model comparison", zap.String("path", art.ComparisonPNG))

	return art, nil
}
