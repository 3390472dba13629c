package pipeline

import (
	"math"
	"sort"
	"strings"

	"github.com/fahadakmal/chartstudy/src/tabular"
)

// Extract produces one series per selected y-column of a file. A file with no
// x-axis or no y-axes selected is simply not configured yet and contributes
// nothing; a y-column where no row survives filtering is omitted rather than
// emitted empty.
func Extract(f *tabular.File) []Series {
	if f == nil || f.Axes.X == "" || len(f.Axes.Y) == 0 {
		return nil
	}
	var out []Series
	for _, ycol := range f.Axes.Y {
		if s, ok := extractColumn(f, ycol); ok {
			out = append(out, s)
		}
	}
	return out
}

func extractColumn(f *tabular.File, ycol string) (Series, bool) {
	xcol := f.Axes.X
	// A column is temporal if any of its values is a temporal instant;
	// mixed-type columns count as temporal.
	temporalX, temporalY := false, false
	for _, row := range f.Rows {
		if row[xcol].Kind == tabular.KindTemporal {
			temporalX = true
		}
		if row[ycol].Kind == tabular.KindTemporal {
			temporalY = true
		}
		if temporalX && temporalY {
			break
		}
	}
	pts := make([]Point, 0, len(f.Rows))
	for _, row := range f.Rows {
		x, okX := row[xcol].Coord()
		y, okY := row[ycol].Coord()
		if !okX || !okY || !finite(x) || !finite(y) {
			continue
		}
		pts = append(pts, Point{X: x, Y: y})
	}
	if len(pts) == 0 {
		return Series{}, false
	}
	// Stable sort keeps original row order for equal x values.
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].X < pts[j].X })
	s := Series{
		ID:            sanitizeID(f.ID + "-" + ycol),
		SourceFileIDs: []string{f.ID},
		XName:         xcol,
		YName:         ycol,
		Points:        pts,
		TemporalX:     temporalX,
		TemporalY:     temporalY,
		Style:         f.Style(ycol),
	}
	flagScaleMismatch(&s)
	return s, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// sanitizeID maps an arbitrary composite key to a string safe for use as a
// rendering-target selector: alphanumerics, hyphens and underscores only.
func sanitizeID(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
