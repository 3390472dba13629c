package tabular

import (
	"fmt"
	"math/rand"
)

// LineStyle selects how a series' connecting line is drawn.
type LineStyle string

const (
	LineSolid  LineStyle = "solid"
	LineDashed LineStyle = "dashed"
	LineDotted LineStyle = "dotted"
)

// PointShape selects the marker drawn at each data point.
type PointShape string

const (
	PointCircle   PointShape = "circle"
	PointSquare   PointShape = "square"
	PointTriangle PointShape = "triangle"
	PointNone     PointShape = "none"
)

// ColumnStyle holds the per-column display settings a participant can adjust.
type ColumnStyle struct {
	Color      string     `json:"color"`
	Line       LineStyle  `json:"line"`
	Shape      PointShape `json:"shape"`
	ShowLine   bool       `json:"showLine"`
	ShowPoints bool       `json:"showPoints"`
}

// DefaultStyle is the fallback used when a column has no style entry.
func DefaultStyle() ColumnStyle {
	return ColumnStyle{
		Color:      "#4e79a7",
		Line:       LineSolid,
		Shape:      PointCircle,
		ShowLine:   true,
		ShowPoints: true,
	}
}

// RandomStyle synthesizes the lazy default for a newly selected column:
// solid line, circle points, a randomized color.
func RandomStyle() ColumnStyle {
	st := DefaultStyle()
	st.Color = randomColor()
	return st
}

func randomColor() string {
	// Bias toward mid-range channels so lines stay visible on a light background.
	r := 32 + rand.Intn(192)
	g := 32 + rand.Intn(192)
	b := 32 + rand.Intn(192)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
