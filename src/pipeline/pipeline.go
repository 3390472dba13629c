// Package pipeline turns loaded tabular files into renderable chart series.
// It is a pure, synchronous transform: extraction filters and sorts raw rows
// into point sequences, the classifier decides which files can share one
// x-scale, and the composition engine groups or merges series according to
// the selected layout mode. The whole pipeline recomputes from scratch on
// every call and never throws on malformed data; incomplete or inconsistent
// input degrades to "no series for this file".
package pipeline

import (
	"errors"
	"strings"

	"github.com/fahadakmal/chartstudy/src/tabular"
)

// Mode selects the layout composition policy.
type Mode string

const (
	// ModeSeparate renders one chart per file, series untouched.
	ModeSeparate Mode = "separate"
	// ModeSingle merges all series from all files into one chart.
	ModeSingle Mode = "single"
	// ModeHybrid merges the largest mutually compatible file subset and
	// renders the rest separately.
	ModeHybrid Mode = "hybrid"
)

// ParseMode maps a user-supplied string to a Mode, defaulting to separate.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeSingle:
		return ModeSingle
	case ModeHybrid:
		return ModeHybrid
	}
	return ModeSeparate
}

// Point is one plotted coordinate pair. Temporal x values are already encoded
// as epoch milliseconds by extraction.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Series is one plotted line/point set, extracted from one file or merged
// from several. Points are strictly sorted ascending by X and never contain
// a non-finite coordinate.
type Series struct {
	ID            string              `json:"id"`
	SourceFileIDs []string            `json:"sourceFileIds"`
	XName         string              `json:"xName"`
	YName         string              `json:"yName"`
	Points        []Point             `json:"points"`
	TemporalX     bool                `json:"temporalX"`
	TemporalY     bool                `json:"temporalY"`
	Style         tabular.ColumnStyle `json:"style"`
	Warning       string              `json:"warning,omitempty"`
}

// Chart is one renderable group of series.
type Chart struct {
	Title   string   `json:"title"`
	FileIDs []string `json:"fileIds"`
	Series  []Series `json:"series"`
}

// Collection is the composed output handed to the renderer. Chart and series
// order matter only for legend/z-order, not correctness.
type Collection struct {
	Charts []Chart `json:"charts"`
}

// AllSeries flattens the collection in chart order.
func (c *Collection) AllSeries() []Series {
	var out []Series
	for _, ch := range c.Charts {
		out = append(out, ch.Series...)
	}
	return out
}

// ErrNoData signals that zero series survived extraction across all files.
// The collection returned alongside it is valid and empty, so callers can
// distinguish "computed, nothing to draw" from "not yet computed".
var ErrNoData = errors.New("chartstudy: no plottable data")

// Compute runs the full pipeline over the current files under the given
// mode. It is idempotent and side-effect free; calling it twice with the
// same input produces an identical collection.
func Compute(files []*tabular.File, mode Mode) (*Collection, error) {
	col := &Collection{}
	switch mode {
	case ModeSingle:
		// The UI gates entry into single mode with SingleChartCompatible,
		// but the engine does not assume pre-validated input: it simply
		// groups and merges by best-effort key.
		merged := Merge(extractAll(files))
		if len(merged) > 0 {
			col.Charts = append(col.Charts, combinedChart(merged, files))
		}
	case ModeHybrid:
		combined, separate := HybridPartition(files)
		merged := Merge(extractAll(combined))
		if len(merged) > 0 {
			col.Charts = append(col.Charts, combinedChart(merged, combined))
		}
		for _, f := range separate {
			if s := Extract(f); len(s) > 0 {
				col.Charts = append(col.Charts, Chart{Title: f.Name, FileIDs: []string{f.ID}, Series: s})
			}
		}
	default:
		for _, f := range files {
			if s := Extract(f); len(s) > 0 {
				col.Charts = append(col.Charts, Chart{Title: f.Name, FileIDs: []string{f.ID}, Series: s})
			}
		}
	}
	if len(col.AllSeries()) == 0 {
		return col, ErrNoData
	}
	return col, nil
}

func extractAll(files []*tabular.File) []Series {
	var out []Series
	for _, f := range files {
		out = append(out, Extract(f)...)
	}
	return out
}

// combinedChart titles a merged chart after the files that actually
// contributed points, in first-contribution order.
func combinedChart(merged []Series, files []*tabular.File) Chart {
	names := map[string]string{}
	for _, f := range files {
		names[f.ID] = f.Name
	}
	var ids []string
	seen := map[string]bool{}
	for _, s := range merged {
		for _, id := range s.SourceFileIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	title := "Combined"
	if len(ids) > 0 && len(ids) <= 3 {
		parts := make([]string, 0, len(ids))
		for _, id := range ids {
			if n := names[id]; n != "" {
				parts = append(parts, n)
			}
		}
		if len(parts) > 0 {
			title = strings.Join(parts, " + ")
		}
	}
	return Chart{Title: title, FileIDs: ids, Series: merged}
}
