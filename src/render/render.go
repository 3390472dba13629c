// Package render draws composed chart series collections to PNG with
// go-chart. It consumes the pipeline's output plus pass-through chart
// options (labels, scale, grid/legend toggles); it computes nothing about
// the data itself.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/fahadakmal/chartstudy/src/logging"
	"github.com/fahadakmal/chartstudy/src/pipeline"
)

// Options are the pass-through chart settings the renderer consumes. They
// come from the UI/chart-options collaborator unmodified.
type Options struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	XLabel  string `json:"xLabel,omitempty"`
	YLabel  string `json:"yLabel,omitempty"`
	// Autoscale derives the y range from the data; otherwise YMin/YMax apply.
	Autoscale bool    `json:"autoscale"`
	YMin      float64 `json:"yMin"`
	YMax      float64 `json:"yMax"`
	ShowGrid   bool `json:"showGrid"`
	ShowLegend bool `json:"showLegend"`
	// StampWarnings draws series advisories onto the image.
	StampWarnings bool `json:"stampWarnings"`
}

// DefaultOptions mirrors the instrument's default chart footprint.
func DefaultOptions() Options {
	return Options{
		Width:         1100,
		Height:        340,
		Autoscale:     true,
		ShowGrid:      true,
		ShowLegend:    true,
		StampWarnings: true,
	}
}

// ChartPNG renders one composed chart to PNG bytes. Render failures (e.g.
// degenerate axis ranges go-chart refuses to draw) fall back to a blank
// image so the instrument visibly updates instead of crashing mid-task.
func ChartPNG(c pipeline.Chart, opts Options) ([]byte, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		d := DefaultOptions()
		opts.Width, opts.Height = d.Width, d.Height
	}
	series := make([]chart.Series, 0, len(c.Series))
	temporalX := false
	for _, s := range c.Series {
		if s.TemporalX {
			temporalX = true
		}
		series = append(series, toChartSeries(s))
	}
	if len(series) == 0 {
		return encodePNG(blank(opts.Width, opts.Height))
	}

	xAxis := chart.XAxis{Name: opts.XLabel}
	if temporalX {
		xAxis.ValueFormatter = chart.TimeValueFormatterWithFormat("2006-01-02")
	}
	yAxis := chart.YAxis{Name: opts.YLabel}
	if !opts.Autoscale && opts.YMax > opts.YMin {
		yAxis.Range = &chart.ContinuousRange{Min: opts.YMin, Max: opts.YMax}
	}
	if opts.ShowGrid {
		grid := chart.Style{StrokeColor: chart.ColorAlternateGray, StrokeWidth: 1}
		xAxis.GridMajorStyle = grid
		yAxis.GridMajorStyle = grid
	}

	padBottom := 28
	if temporalX {
		padBottom = 48
	}
	ch := chart.Chart{
		Title:      c.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: padBottom}},
		XAxis:      xAxis,
		YAxis:      yAxis,
		Series:     series,
	}
	if opts.ShowLegend {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		logging.Warnf("chart %q render error: %v; using blank fallback", c.Title, err)
		return encodePNG(blank(opts.Width, opts.Height))
	}
	if !opts.StampWarnings {
		return buf.Bytes(), nil
	}
	warnings := collectWarnings(c)
	if len(warnings) == 0 {
		return buf.Bytes(), nil
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode rendered chart %q: %w", c.Title, err)
	}
	for _, w := range warnings {
		img = stampText(img, w)
	}
	return encodePNG(img)
}

// CollectionPNGs renders every chart of a collection, in order.
func CollectionPNGs(col *pipeline.Collection, opts Options) ([][]byte, error) {
	out := make([][]byte, 0, len(col.Charts))
	for _, c := range col.Charts {
		png, err := ChartPNG(c, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, png)
	}
	return out, nil
}

// toChartSeries maps one pipeline series to a go-chart series: TimeSeries
// when the source x column was temporal, ContinuousSeries otherwise. Single
// points are padded to two x values because go-chart needs a non-degenerate
// x range.
func toChartSeries(s pipeline.Series) chart.Series {
	st := seriesStyle(s.Style, len(s.Points) == 1)
	if s.TemporalX {
		times := make([]time.Time, len(s.Points))
		ys := make([]float64, len(s.Points))
		for i, p := range s.Points {
			times[i] = time.UnixMilli(int64(p.X)).UTC()
			ys[i] = p.Y
		}
		if len(times) == 1 {
			times = append(times, times[0].Add(1*time.Second))
			ys = append(ys, ys[0])
		}
		return chart.TimeSeries{Name: s.YName, XValues: times, YValues: ys, Style: st}
	}
	xs := make([]float64, len(s.Points))
	ys := make([]float64, len(s.Points))
	for i, p := range s.Points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	if len(xs) == 1 {
		xs = append(xs, xs[0]+1)
		ys = append(ys, ys[0])
	}
	return chart.ContinuousSeries{Name: s.YName, XValues: xs, YValues: ys, Style: st}
}

func collectWarnings(c pipeline.Chart) []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range c.Series {
		if s.Warning != "" && !seen[s.Warning] {
			seen[s.Warning] = true
			out = append(out, fmt.Sprintf("%s: %s", s.YName, s.Warning))
		}
	}
	return out
}

// stampText draws an advisory line onto the bottom-left of the image with a
// semi-opaque background and a one-pixel shadow for contrast.
func stampText(src image.Image, text string) image.Image {
	b := src.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, src, b.Min, draw.Src)
	pad := 6
	face := basicfont.Face7x13
	textCol := image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	shadowCol := image.NewUniform(color.RGBA{A: 180})
	dr := &font.Drawer{Dst: rgba, Src: textCol, Face: face}
	tw := dr.MeasureString(text).Ceil()
	x := b.Min.X + 8
	y := b.Max.Y - 6
	bg := image.NewUniform(color.RGBA{A: 200})
	rect := image.Rect(x-pad, y-face.Metrics().Ascent.Ceil()-pad, x+tw+pad, y+pad/2)
	draw.Draw(rgba, rect, bg, image.Point{}, draw.Over)
	drShadow := &font.Drawer{Dst: rgba, Src: shadowCol, Face: face, Dot: fixed.Point26_6{X: fixed.I(x + 1), Y: fixed.I(y + 1)}}
	drShadow.DrawString(text)
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)
	return rgba
}

func blank(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 250, G: 250, B: 250, A: 255})
		}
	}
	return img
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	return buf.Bytes(), nil
}
