package evaluation

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Metric names in report order.
const (
	MetricAccuracy = "Accuracy"
	MetricMAE      = "MAE"
	MetricRMSE     = "RMSE"
	MetricMAPE     = "MAPE"
)

var MetricNames = []string{MetricAccuracy, MetricMAE, MetricRMSE, MetricMAPE}

// mapeEpsilon bounds the MAPE denominator away from zero.
const mapeEpsilon = 2.220446049250313e-16

type FoldMetrics struct {
	Accuracy float64
	MAE      float64
	RMSE     float64
	MAPE     float64
}

// Values returns the metrics in MetricNames order.
func (m FoldMetrics) Values() []float64 {
	return []float64{m.Accuracy, m.MAE, m.RMSE, m.MAPE}
}

func (m FoldMetrics) Get(name string) float64 {
	switch name {
	case MetricAccuracy:
		return m.Accuracy
	case MetricMAE:
		return m.MAE
	case MetricRMSE:
		return m.RMSE
	case MetricMAPE:
		return m.MAPE
	default:
		return math.NaN()
	}
}

// CalculateFoldMetrics compares predicted labels with true labels, treating
// both as numbers for the error metrics.
func CalculateFoldMetrics(yTrue, yPred []int) (FoldMetrics, error) {
	if len(yTrue) != len(yPred) {
		return FoldMetrics{}, fmt.Errorf("label lengths differ: %d vs %d", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return FoldMetrics{}, fmt.Errorf("no samples to score")
	}

	n := float64(len(yTrue))
	var correct int
	var absSum, sqSum, pctSum float64

	for i := range yTrue {
		t, p := float64(yTrue[i]), float64(yPred[i])
		if yTrue[i] == yPred[i] {
			correct++
		}
		diff := math.Abs(t - p)
		absSum += diff
		sqSum += diff * diff
		pctSum += diff / math.Max(math.Abs(t), mapeEpsilon)
	}

	return FoldMetrics{
		Accuracy: float64(correct) / n,
		MAE:      absSum / n,
		RMSE:     math.Sqrt(sqSum / n),
		MAPE:     pctSum / n,
	}, nil
}

// MeanMetrics averages each metric over folds.
func MeanMetrics(folds []FoldMetrics) FoldMetrics {
	if len(folds) == 0 {
		return FoldMetrics{}
	}
	column := func(get func(FoldMetrics) float64) float64 {
		xs := make([]float64, len(folds))
		for i, f := range folds {
			xs[i] = get(f)
		}
		return stat.Mean(xs, nil)
	}
	return FoldMetrics{
		Accuracy: column(func(f FoldMetrics) float64 { return f.Accuracy }),
		MAE:      column(func(f FoldMetrics) float64 { return f.MAE }),
		RMSE:     column(func(f FoldMetrics) float64 { return f.RMSE }),
		MAPE:     column(func(f FoldMetrics) float64 { return f.MAPE }),
	}
}

// ConfusionMatrix is indexed [actual][predicted].
type ConfusionMatrix [][]int

func BuildConfusionMatrix(yTrue, yPred []int, numClasses int) ConfusionMatrix {
	matrix := make(ConfusionMatrix, numClasses)
	for i := range matrix {
		matrix[i] = make([]int, numClasses)
	}

	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		if t >= 0 && t < numClasses && p >= 0 && p < numClasses {
			matrix[t][p]++
		}
	}

	return matrix
}

func (cm ConfusionMatrix) RowSums() []int {
	sums := make([]int, len(cm))
	for i, row := range cm {
		for _, v := range row {
			sums[i] += v
		}
	}
	return sums
}

func (cm ConfusionMatrix) ColSums() []int {
	sums := make([]int, len(cm))
	for _, row := range cm {
		for j, v := range row {
			sums[j] += v
		}
	}
	return sums
}

func (cm ConfusionMatrix) Total() int {
	total := 0
	for _, s := range cm.RowSums() {
		total += s
	}
	return total
}

type ClassMetrics struct {
	Class       string
	Precision   float64
	Recall      float64
	F1Score     float64
	Specificity float64
	Support     int
}

type ClassificationReport struct {
	Classes           []ClassMetrics
	Accuracy          float64
	MacroPrecision    float64
	MacroRecall       float64
	MacroF1           float64
	WeightedPrecision float64
	WeightedRecall    float64
	WeightedF1        float64
	ConfusionMatrix   ConfusionMatrix
	NumSamples        int
}

// NewClassificationReport scores predictions for labels 0..len(classNames)-1.
func NewClassificationReport(yTrue, yPred []int, classNames []string) (*ClassificationReport, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("label lengths differ: %d vs %d", len(yTrue), len(yPred))
	}

	numClasses := len(classNames)
	cm := BuildConfusionMatrix(yTrue, yPred, numClasses)
	support := cm.RowSums()
	predicted := cm.ColSums()
	total := len(yTrue)

	report := &ClassificationReport{
		Classes:         make([]ClassMetrics, numClasses),
		ConfusionMatrix: cm,
		NumSamples:      total,
	}

	correct := 0
	for i := 0; i < numClasses; i++ {
		tp := cm[i][i]
		correct += tp
		fp := predicted[i] - tp
		fn := support[i] - tp
		tn := total - tp - fp - fn

		precision := safeDivide(float64(tp), float64(tp+fp))
		recall := safeDivide(float64(tp), float64(tp+fn))
		f1 := safeDivide(2*precision*recall, precision+recall)

		report.Classes[i] = ClassMetrics{
			Class:       classNames[i],
			Precision:   precision,
			Recall:      recall,
			F1Score:     f1,
			Specificity: safeDivide(float64(tn), float64(tn+fp)),
			Support:     support[i],
		}

		report.MacroPrecision += precision / float64(numClasses)
		report.MacroRecall += recall / float64(numClasses)
		report.MacroF1 += f1 / float64(numClasses)

		w := safeDivide(float64(support[i]), float64(total))
		report.WeightedPrecision += precision * w
		report.WeightedRecall += recall * w
		report.WeightedF1 += f1 * w
	}
	report.Accuracy = safeDivide(float64(correct), float64(total))

	return report, nil
}

func safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0.0
	}
	result := numerator / denominator
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0.0
	}
	return result
}

// Format renders the report as a fixed-width text table.
func (r *ClassificationReport) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-14s %10s %10s %10s %10s\n", "", "precision", "recall", "f1-score", "support")
	for _, c := range r.Classes {
		fmt.Fprintf(&b, "%-14s %10.4f %10.4f %10.4f %10d\n", c.Class, c.Precision, c.Recall, c.F1Score, c.Support)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%-14s %10s %10s %10.4f %10d\n", "accuracy", "", "", r.Accuracy, r.NumSamples)
	fmt.Fprintf(&b, "%-14s %10.4f %10.4f %10.4f %10d\n", "macro avg", r.MacroPrecision, r.MacroRecall, r.MacroF1, r.NumSamples)
	fmt.Fprintf(&b, "%-14s %10.4f %10.4f %10.4f %10d\n", "weighted avg", r.WeightedPrecision, r.WeightedRecall, r.WeightedF1, r.NumSamples)
	return b.String()
}
