package report

import (
	"fmt"
	"os"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"tsunamieval/internal/config"
	"tsunamieval/internal/evaluation"
)

// confusionGrid adapts a confusion matrix to plotter.GridXYZ. Grid row 0 is
// drawn at the bottom, so actual class 0 maps to the top row.
type confusionGrid struct {
	cm evaluation.ConfusionMatrix
}

func (g confusionGrid) Dims() (c, r int) {
	return len(g.cm), len(g.cm)
}

func (g confusionGrid) Z(c, r int) float64 {
	return float64(g.cm[len(g.cm)-1-r][c])
}

func (g confusionGrid) X(c int) float64 {
	return float64(c)
}

func (g confusionGrid) Y(r int) float64 {
	return float64(r)
}

// ModelSlug turns a model name into a file name fragment.
func ModelSlug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// SaveConfusionHeatmap renders cm as an annotated heatmap PNG.
func SaveConfusionHeatmap(path, title string, cm evaluation.ConfusionMatrix, classNames []string, cfg config.PlotConfig) error {
	if len(cm) == 0 {
		return fmt.Errorf("empty confusion matrix")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Predicted"
	p.Y.Label.Text = "Actual"

	grid := confusionGrid{cm: cm}
	heat := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	if heat.Min == heat.Max {
		heat.Max = heat.Min + 1
	}
	p.Add(heat)

	n := len(cm)
	var xys plotter.XYs
	var texts []string
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(r)})
			texts = append(texts, fmt.Sprintf("%d", int(grid.Z(c, r))))
		}
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return fmt.Errorf("heatmap labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(labels)

	names := make([]string, n)
	reversed := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = className(classNames, i)
		reversed[n-1-i] = names[i]
	}
	p.NominalX(names...)
	p.NominalY(reversed...)

	if err := p.Save(vg.Points(cfg.HeatmapWidth), vg.Points(cfg.HeatmapHeight), path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// SaveComparisonChart draws one bar chart per metric, one bar per model,
// tiled two per row, and writes the grid as a PNG.
func SaveComparisonChart(path string, s Summary, cfg config.PlotConfig) error {
	const cols = 2
	rows := (len(s.Metrics) + cols - 1) / cols

	plots := make([][]*plot.Plot, rows)
	for r := range plots {
		plots[r] = make([]*plot.Plot, cols)
	}

	for i, metric := range s.Metrics {
		p, err := metricBarPlot(metric, s.Models, s.Stats[i], cfg)
		if err != nil {
			return err
		}
		plots[i/cols][i%cols] = p
	}

	img := vgimg.New(vg.Points(cfg.ComparisonWidth), vg.Points(cfg.ComparisonHeight))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}

	canvases := plot.Align(plots, tiles, dc)
	for r := range plots {
		for c := range plots[r] {
			if plots[r][c] != nil {
				plots[r][c].Draw(canvases[r][c])
			}
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(file); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

func metricBarPlot(metric string, models []string, stats []MetricStats, cfg config.PlotConfig) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = metric
	p.Y.Label.Text = metric
	p.Y.Min = 0

	maxValue := 0.0
	var xys plotter.XYs
	var texts []string
	for i, st := range stats {
		bars, err := plotter.NewBarChart(plotter.Values{st.Mean}, vg.Points(cfg.BarWidth))
		if err != nil {
			return nil, fmt.Errorf("%s bars: %w", metric, err)
		}
		bars.XMin = float64(i)
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = 0
		p.Add(bars)

		xys = append(xys, plotter.XY{X: float64(i), Y: st.Mean})
		texts = append(texts, fmt.Sprintf("%.3f", st.Mean))
		if st.Mean > maxValue {
			maxValue = st.Mean
		}
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return nil, fmt.Errorf("%s labels: %w", metric, err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
	}
	labels.Offset = vg.Point{Y: vg.Points(3)}
	p.Add(labels)

	if maxValue > 0 {
		p.Y.Max = maxValue * 1.15
	} else {
		p.Y.Max = 1
	}
	p.NominalX(models...)

	return p, nil
}
