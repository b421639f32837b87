package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"tsunamieval/internal/evaluation"
)

type consoleColors struct {
	green  func(a ...interface{}) string
	red    func(a ...interface{}) string
	yellow func(a ...interface{}) string
	cyan   func(a ...interface{}) string
}

func newConsoleColors() consoleColors {
	return consoleColors{
		green:  color.New(color.FgGreen).SprintFunc(),
		red:    color.New(color.FgRed).SprintFunc(),
		yellow: color.New(color.FgYellow).SprintFunc(),
		cyan:   color.New(color.FgCyan).SprintFunc(),
	}
}

// PrintConfusionMatrix writes cm with actual classes as rows. Correct counts
// are green, nonzero misclassifications red.
func PrintConfusionMatrix(w io.Writer, cm evaluation.ConfusionMatrix, classNames []string) {
	c := newConsoleColors()

	fmt.Fprintln(w, c.cyan("Confusion Matrix:"))
	fmt.Fprintln(w, "(Rows = Actual, Columns = Predicted)")
	fmt.Fprintf(w, "%-18s", "")
	for j := range cm {
		fmt.Fprint(w, padRight(className(classNames, j), 10))
	}
	fmt.Fprintln(w)

	for i, row := range cm {
		fmt.Fprint(w, padRight(className(classNames, i), 18))
		for j, count := range row {
			cell := fmt.Sprintf("%-10d", count)
			switch {
			case i == j:
				cell = c.green(cell)
			case count > 0:
				cell = c.red(cell)
			}
			fmt.Fprint(w, cell)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, strings.Repeat("─", 60))
}

func PrintClassificationReport(w io.Writer, modelName string, r *evaluation.ClassificationReport) {
	c := newConsoleColors()

	fmt.Fprintln(w, c.cyan(fmt.Sprintf("Classification Report: %s", modelName)))
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprint(w, r.Format())
	fmt.Fprintln(w, strings.Repeat("─", 60))

	accuracy := fmt.Sprintf("%.4f", r.Accuracy)
	switch {
	case r.Accuracy >= 0.9:
		accuracy = c.green(accuracy)
	case r.Accuracy >= 0.7:
		accuracy = c.yellow(accuracy)
	default:
		accuracy = c.red(accuracy)
	}
	fmt.Fprintf(w, "Test accuracy: %s (%d samples)\n\n", accuracy, r.NumSamples)
}

func className(names []string, i int) string {
	if i < len(names) {
		name := []rune(names[i])
		if len(name) > 8 {
			return string(name[:8])
		}
		return names[i]
	}
	return fmt.Sprintf("Class %d", i)
}
