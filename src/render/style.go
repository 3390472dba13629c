package render

import (
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/fahadakmal/chartstudy/src/tabular"
)

// seriesStyle maps a column's display style onto go-chart stroke and dot
// settings. go-chart only draws circular dots, so point shapes map to dot
// sizes instead of distinct glyphs; "none" suppresses dots entirely.
// Single-point series get an emphasized dot so they stay visible.
func seriesStyle(cs tabular.ColumnStyle, singlePoint bool) chart.Style {
	col := parseColor(cs.Color)
	st := chart.Style{}
	if cs.ShowLine {
		st.StrokeWidth = 2
		st.StrokeColor = col
		switch cs.Line {
		case tabular.LineDashed:
			st.StrokeDashArray = []float64{6, 4}
		case tabular.LineDotted:
			st.StrokeDashArray = []float64{2, 3}
		}
	}
	if cs.ShowPoints && cs.Shape != tabular.PointNone {
		st.DotColor = col
		st.DotWidth = dotWidth(cs.Shape)
		if singlePoint {
			st.DotWidth = 6
		}
	}
	return st
}

func dotWidth(shape tabular.PointShape) float64 {
	switch shape {
	case tabular.PointSquare:
		return 5
	case tabular.PointTriangle:
		return 4.5
	default:
		return 4
	}
}

func parseColor(hex string) drawing.Color {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) != 6 {
		return chart.ColorBlue
	}
	c := drawing.ColorFromHex(h)
	if c.IsZero() {
		return chart.ColorBlue
	}
	return c
}
