// Package charts draws PNG images for engine results and dataset columns.
// Bar, line, box, histogram and heatmap charts use gonum/plot; pie charts
// use go-chart.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/spektr-org/marksheet/dataset"
	"github.com/spektr-org/marksheet/engine"
	"github.com/spektr-org/marksheet/logging"
)

// Default image size in pixels.
const (
	DefaultWidth  = 600
	DefaultHeight = 400
)

// Chart kinds accepted by Render and the CLI.
const (
	KindBar       = "bar"
	KindLine      = "line"
	KindPie       = "pie"
	KindHeatmap   = "heatmap"
	KindBox       = "box"
	KindHistogram = "histogram"
)

var (
	// ErrNoData is returned when there is nothing to draw.
	ErrNoData = errors.New("no data to chart")
	// ErrUnsupported is returned for chart kinds Render does not draw.
	ErrUnsupported = errors.New("unsupported chart type")
)

// Options sizes the output image.
type Options struct {
	Width  int
	Height int
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// Render draws a ChartConfig built by engine.BuildChart.
func Render(cfg *engine.ChartConfig, opts Options) ([]byte, error) {
	if cfg == nil || len(cfg.Series) == 0 {
		return nil, ErrNoData
	}
	logging.Logger().Debug("rendering chart", "type", cfg.ChartType, "title", cfg.Title, "series", len(cfg.Series))

	switch cfg.ChartType {
	case KindBar:
		return Bar(cfg, opts)
	case KindLine:
		return Line(cfg, opts)
	case KindPie:
		return Pie(cfg, opts)
	case KindHeatmap:
		return HeatmapFromConfig(cfg, opts)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, cfg.ChartType)
}

// ============================================================================
// BAR / LINE
// ============================================================================

// Bar draws grouped bars: one bar group per category label, one bar per
// series. Missing points draw as zero-height bars.
func Bar(cfg *engine.ChartConfig, opts Options) ([]byte, error) {
	labels := categories(cfg.Series)
	if len(labels) == 0 {
		return nil, ErrNoData
	}

	p := newPlot(cfg)
	n := len(cfg.Series)
	width := vg.Points(math.Max(4, 60/float64(n)))

	for i, s := range cfg.Series {
		values := make(plotter.Values, len(labels))
		for j, label := range labels {
			if pt, ok := lookup(s, label); ok && !pt.Missing {
				values[j] = pt.Value
			}
		}
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return nil, fmt.Errorf("bar series %q: %w", s.Name, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = seriesColor(cfg, s, i)
		bars.Offset = vg.Length(float64(i)-float64(n-1)/2) * width
		p.Add(bars)
		if cfg.ShowLegend && s.Name != "" {
			p.Legend.Add(s.Name, bars)
		}
	}
	p.NominalX(labels...)
	return writePNG(p, opts)
}

// Line draws one line per series over the category labels. Missing points
// leave gaps.
func Line(cfg *engine.ChartConfig, opts Options) ([]byte, error) {
	labels := categories(cfg.Series)
	if len(labels) == 0 {
		return nil, ErrNoData
	}

	p := newPlot(cfg)
	for i, s := range cfg.Series {
		c := seriesColor(cfg, s, i)
		var legend plot.Thumbnailer
		for _, segment := range segments(s, labels) {
			line, points, err := plotter.NewLinePoints(segment)
			if err != nil {
				return nil, fmt.Errorf("line series %q: %w", s.Name, err)
			}
			line.Color = c
			points.Color = c
			p.Add(line, points)
			legend = line
		}
		if cfg.ShowLegend && legend != nil {
			p.Legend.Add(s.Name, legend)
		}
	}
	p.NominalX(labels...)
	return writePNG(p, opts)
}

// segments splits a series into runs of present points positioned by
// category index.
func segments(s engine.ChartSeries, labels []string) []plotter.XYs {
	var out []plotter.XYs
	var run plotter.XYs
	for j, label := range labels {
		pt, ok := lookup(s, label)
		if !ok || pt.Missing {
			if len(run) > 0 {
				out = append(out, run)
				run = nil
			}
			continue
		}
		run = append(run, plotter.XY{X: float64(j), Y: pt.Value})
	}
	if len(run) > 0 {
		out = append(out, run)
	}
	return out
}

// ============================================================================
// PIE
// ============================================================================

// Pie draws the first series as a pie. Missing and non-positive slices are
// left out.
func Pie(cfg *engine.ChartConfig, opts Options) ([]byte, error) {
	if cfg == nil || len(cfg.Series) == 0 {
		return nil, ErrNoData
	}
	w, h := opts.size()

	var values []chart.Value
	for i, pt := range cfg.Series[0].Data {
		if pt.Missing || pt.Value <= 0 {
			continue
		}
		v := chart.Value{
			Label: fmt.Sprintf("%s (%s)", pt.Label, dataset.FormatNumber(engine.RoundTo2(pt.Value))),
			Value: pt.Value,
		}
		if i < len(cfg.Colors) {
			fill := hexColor(cfg.Colors[i])
			v.Style = chart.Style{FillColor: fill, StrokeColor: drawing.ColorWhite}
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	pie := chart.PieChart{
		Title:  cfg.Title,
		Width:  w,
		Height: h,
		Values: values,
	}
	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render pie: %w", err)
	}
	return buf.Bytes(), nil
}

// ============================================================================
// BOX / HISTOGRAM
// ============================================================================

// Box draws one box plot per column from the numeric cells of view.
func Box(view dataset.View, columns []string, title string, opts Options) ([]byte, error) {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Score"
	p.Add(plotter.NewGrid())

	var labels []string
	for i, col := range columns {
		values := dataset.Floats(view, col)
		if len(values) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(30), float64(len(labels)), plotter.Values(values))
		if err != nil {
			return nil, fmt.Errorf("box %q: %w", col, err)
		}
		box.FillColor = hexColor(paletteColor(i))
		p.Add(box)
		labels = append(labels, col)
	}
	if len(labels) == 0 {
		return nil, ErrNoData
	}
	p.NominalX(labels...)
	return writePNG(p, opts)
}

// Histogram draws the distribution of values in bins buckets.
func Histogram(values []float64, title string, bins int, opts Options) ([]byte, error) {
	if len(values) == 0 {
		return nil, ErrNoData
	}
	if bins <= 0 {
		bins = 10
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Score"
	p.Y.Label.Text = "Count"
	p.Add(plotter.NewGrid())

	hist, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return nil, fmt.Errorf("histogram: %w", err)
	}
	hist.FillColor = hexColor(paletteColor(0))
	p.Add(hist)
	return writePNG(p, opts)
}

// ============================================================================
// HEATMAP
// ============================================================================

// grid adapts a square matrix of coefficients to plotter.GridXYZ.
type grid struct {
	values [][]float64
}

func (g grid) Dims() (int, int)   { return len(g.values), len(g.values) }
func (g grid) Z(c, r int) float64 { return g.values[r][c] }
func (g grid) X(c int) float64    { return float64(c) }
func (g grid) Y(r int) float64    { return float64(r) }

// Heatmap draws a correlation table. Undefined coefficients are left blank.
func Heatmap(t *engine.Table, opts Options) ([]byte, error) {
	cfg := engine.BuildChart(engine.OpCorrelation, t)
	if cfg == nil {
		return nil, ErrNoData
	}
	return HeatmapFromConfig(cfg, opts)
}

// HeatmapFromConfig draws a heatmap chart config: series are rows and
// their points are columns.
func HeatmapFromConfig(cfg *engine.ChartConfig, opts Options) ([]byte, error) {
	n := len(cfg.Series)
	if n == 0 {
		return nil, ErrNoData
	}
	labels := make([]string, n)
	values := make([][]float64, n)
	for r, s := range cfg.Series {
		labels[r] = s.Name
		values[r] = make([]float64, n)
		for c := 0; c < n; c++ {
			values[r][c] = math.NaN()
			if c < len(s.Data) && !s.Data[c].Missing {
				values[r][c] = s.Data[c].Value
			}
		}
	}

	p := newPlot(cfg)
	hm := plotter.NewHeatMap(grid{values: values}, palette.Heat(12, 1))
	hm.Min, hm.Max = -1, 1
	hm.NaN = color.Transparent
	p.Add(hm)
	p.NominalX(labels...)
	p.NominalY(labels...)
	return writePNG(p, opts)
}

// ============================================================================
// HELPERS
// ============================================================================

func newPlot(cfg *engine.ChartConfig) *plot.Plot {
	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = cfg.XAxis
	p.Y.Label.Text = cfg.YAxis
	p.Legend.Top = true
	if cfg.ShowGrid {
		p.Add(plotter.NewGrid())
	}
	return p
}

func writePNG(p *plot.Plot, opts Options) ([]byte, error) {
	w, h := opts.size()
	wt, err := p.WriterTo(pixels(w), pixels(h), "png")
	if err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// pixels converts a pixel count to a length at the 96 dpi PNG canvases use.
func pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / 96
}

// categories returns every point label across series, first-seen order.
func categories(series []engine.ChartSeries) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, s := range series {
		for _, pt := range s.Data {
			if !seen[pt.Label] {
				seen[pt.Label] = true
				labels = append(labels, pt.Label)
			}
		}
	}
	return labels
}

func lookup(s engine.ChartSeries, label string) (engine.ChartPoint, bool) {
	for _, pt := range s.Data {
		if pt.Label == label {
			return pt, true
		}
	}
	return engine.ChartPoint{}, false
}

func seriesColor(cfg *engine.ChartConfig, s engine.ChartSeries, i int) color.Color {
	if s.Color != "" {
		return hexColor(s.Color)
	}
	if i < len(cfg.Colors) {
		return hexColor(cfg.Colors[i])
	}
	return hexColor(paletteColor(i))
}

var fallbackColors = []string{"#1F77B4", "#FF7F0E", "#2CA02C", "#D62728", "#9467BD"}

func paletteColor(i int) string {
	return fallbackColors[i%len(fallbackColors)]
}

// hexColor parses "#RRGGBB".
func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
