package pipeline

import (
	"sort"
	"strings"
)

// Merge combines series that share both an x-axis identity and a y-column
// name into one unified series. Grouping is keyed by (trimmed lowercased
// xName, temporality of x) and within that by trimmed lowercased yName.
//
// The merge is deliberately lossy in one documented way: style and temporal
// flags come from the first member in input order, with no reconciliation of
// divergent styles across files. Points are concatenated without
// deduplication (coincident x values from different files are all kept),
// then stably sorted ascending by x, so the total point count is conserved.
func Merge(in []Series) []Series {
	type xKey struct {
		name     string
		temporal bool
	}
	type group struct {
		key     xKey
		yOrder  []string
		byYName map[string][]Series
	}
	var order []xKey
	groups := map[xKey]*group{}
	for _, s := range in {
		k := xKey{name: strings.ToLower(strings.TrimSpace(s.XName)), temporal: s.TemporalX}
		g, ok := groups[k]
		if !ok {
			g = &group{key: k, byYName: map[string][]Series{}}
			groups[k] = g
			order = append(order, k)
		}
		y := strings.ToLower(strings.TrimSpace(s.YName))
		if _, ok := g.byYName[y]; !ok {
			g.yOrder = append(g.yOrder, y)
		}
		g.byYName[y] = append(g.byYName[y], s)
	}
	var out []Series
	for _, k := range order {
		g := groups[k]
		for _, y := range g.yOrder {
			out = append(out, mergeBucket(k.name, k.temporal, y, g.byYName[y]))
		}
	}
	return out
}

func mergeBucket(xKey string, temporal bool, yKey string, members []Series) Series {
	first := members[0]
	total := 0
	for _, m := range members {
		total += len(m.Points)
	}
	pts := make([]Point, 0, total)
	var fileIDs []string
	for _, m := range members {
		pts = append(pts, m.Points...)
		fileIDs = append(fileIDs, m.SourceFileIDs...)
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].X < pts[j].X })
	kind := "num"
	if temporal {
		kind = "time"
	}
	merged := Series{
		ID:            sanitizeID(xKey + "-" + kind + "-" + yKey),
		SourceFileIDs: fileIDs,
		XName:         first.XName,
		YName:         first.YName,
		Points:        pts,
		TemporalX:     first.TemporalX,
		TemporalY:     first.TemporalY,
		Style:         first.Style,
	}
	flagScaleMismatch(&merged)
	return merged
}
