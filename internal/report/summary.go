package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/stat"

	"tsunamieval/internal/evaluation"
	"tsunamieval/internal/experiment"
)

const (
	SummarySheet = "Summary"
	StdDevSheet  = "StdDev"
)

type MetricStats struct {
	Mean float64
	Std  float64
}

// Summary holds the mean and sample standard deviation of the per-trial fold
// means. Stats is indexed [metric][model] following Metrics and Models.
type Summary struct {
	Models  []string
	Metrics []string
	Stats   [][]MetricStats
}

func Summarize(results *experiment.Results) Summary {
	s := Summary{
		Models:  make([]string, len(results.Models)),
		Metrics: append([]string(nil), evaluation.MetricNames...),
		Stats:   make([][]MetricStats, len(evaluation.MetricNames)),
	}
	for i := range s.Stats {
		s.Stats[i] = make([]MetricStats, len(results.Models))
	}

	for j, mr := range results.Models {
		s.Models[j] = mr.Name
		means := mr.TrialMeans()
		for i, metric := range s.Metrics {
			values := make([]float64, len(means))
			for t, m := range means {
				values[t] = m.Get(metric)
			}
			s.Stats[i][j] = meanStd(values)
		}
	}

	return s
}

func meanStd(values []float64) MetricStats {
	switch len(values) {
	case 0:
		return MetricStats{}
	case 1:
		return MetricStats{Mean: values[0]}
	}
	mean, std := stat.MeanStdDev(values, nil)
	return MetricStats{Mean: mean, Std: std}
}

// Get returns the stats for metric and model, and false if either is unknown.
func (s Summary) Get(metric, model string) (MetricStats, bool) {
	i := indexOf(s.Metrics, metric)
	j := indexOf(s.Models, model)
	if i < 0 || j < 0 {
		return MetricStats{}, false
	}
	return s.Stats[i][j], true
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func (s Summary) Print(w io.Writer) {
	c := newConsoleColors()

	fmt.Fprintln(w, c.cyan("Model Summary (mean ± std across trials)"))
	width := 12 + 24*len(s.Models)
	fmt.Fprintln(w, strings.Repeat("─", width))
	fmt.Fprintf(w, "%-12s", "Metric")
	for _, model := range s.Models {
		fmt.Fprint(w, padLeft(model, 24))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("─", width))

	for i, metric := range s.Metrics {
		fmt.Fprintf(w, "%-12s", metric)
		for _, st := range s.Stats[i] {
			fmt.Fprint(w, padLeft(formatValue(st.Mean)+" ± "+formatValue(st.Std), 24))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, strings.Repeat("─", width))
}

// padLeft right-aligns s in width columns, counting runes rather than bytes.
func padLeft(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}

func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// formatValue renders x with four decimal places.
func formatValue(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return strconv.FormatFloat(x, 'f', 4, 64)
	}
	return decimal.NewFromFloat(x).StringFixed(4)
}

// grid lays out one value per metric (rows) and model (columns) behind a
// header row.
func (s Summary) grid(value func(MetricStats) float64) [][]string {
	rows := make([][]string, 0, len(s.Metrics)+1)
	rows = append(rows, append([]string{"Metric"}, s.Models...))
	for i, metric := range s.Metrics {
		row := []string{metric}
		for _, st := range s.Stats[i] {
			row = append(row, formatValue(value(st)))
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteSummaryXLSX writes the means to the Summary sheet and the standard
// deviations to the StdDev sheet.
func WriteSummaryXLSX(path string, s Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeSheet(f, SummarySheet, s.grid(func(st MetricStats) float64 { return st.Mean })); err != nil {
		return err
	}

	if _, err := f.NewSheet(StdDevSheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", StdDevSheet, err)
	}
	if err := writeSheet(f, StdDevSheet, s.grid(func(st MetricStats) float64 { return st.Std })); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]string) error {
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

func WriteSummaryCSV(path string, s Summary) error {
	return writeCSV(path, s.grid(func(st MetricStats) float64 { return st.Mean }))
}

// WriteFoldsCSV exports every fold score of every trial and model.
func WriteFoldsCSV(path string, results *experiment.Results) error {
	rows := [][]string{{"model", "trial", "fold", "accuracy", "mae", "rmse", "mape"}}
	for _, mr := range results.Models {
		for _, tr := range mr.Trials {
			for _, fold := range tr.Folds {
				row := []string{mr.Name, strconv.Itoa(tr.Trial), strconv.Itoa(fold.Fold)}
				for _, v := range fold.Metrics.Values() {
					row = append(row, formatValue(v))
				}
				rows = append(rows, row)
			}
		}
	}
	return writeCSV(path, rows)
}

func writeCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return file.Close()
}
