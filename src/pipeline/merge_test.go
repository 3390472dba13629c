package pipeline

import (
	"reflect"
	"testing"

	"github.com/fahadakmal/chartstudy/src/tabular"
)

func TestMergeCombinesMatchingBuckets(t *testing.T) {
	a := Series{
		ID: "a-temp", SourceFileIDs: []string{"fa"}, XName: "Date", YName: "Temp",
		TemporalX: true,
		Points:    []Point{{X: 1, Y: 10}, {X: 3, Y: 30}},
		Style:     tabular.ColumnStyle{Color: "#111111", Line: tabular.LineSolid},
	}
	b := Series{
		ID: "b-temp", SourceFileIDs: []string{"fb"}, XName: " date ", YName: "temp",
		TemporalX: true,
		Points:    []Point{{X: 2, Y: 20}, {X: 4, Y: 40}},
		Style:     tabular.ColumnStyle{Color: "#222222", Line: tabular.LineDashed},
	}
	out := Merge([]Series{a, b})
	if len(out) != 1 {
		t.Fatalf("expected one merged series, got %d", len(out))
	}
	m := out[0]
	if len(m.Points) != 4 {
		t.Fatalf("merge must conserve points: got %d", len(m.Points))
	}
	for i := 0; i+1 < len(m.Points); i++ {
		if m.Points[i].X > m.Points[i+1].X {
			t.Fatalf("merged points not sorted: %v", m.Points)
		}
	}
	if !reflect.DeepEqual(m.SourceFileIDs, []string{"fa", "fb"}) {
		t.Fatalf("source file ids not concatenated: %v", m.SourceFileIDs)
	}
	// Style, names and flags follow the first member in input order.
	if m.Style.Color != "#111111" || m.Style.Line != tabular.LineSolid {
		t.Fatalf("style must come from the first member, got %+v", m.Style)
	}
	if m.XName != "Date" || m.YName != "Temp" {
		t.Fatalf("names must come from the first member, got %q/%q", m.XName, m.YName)
	}
	if !m.TemporalX {
		t.Fatalf("temporal flag must come from the first member")
	}
}

func TestMergeKeepsDistinctYNamesApart(t *testing.T) {
	// Two files share the x identity but plot different measures: the merge
	// yields one series per y-name, not one combined series.
	a := Series{XName: "Date", YName: "Temp", TemporalX: true, SourceFileIDs: []string{"fa"}, Points: []Point{{X: 1, Y: 1}}}
	b := Series{XName: "Date", YName: "PM2.5", TemporalX: true, SourceFileIDs: []string{"fb"}, Points: []Point{{X: 1, Y: 2}}}
	out := Merge([]Series{a, b})
	if len(out) != 2 {
		t.Fatalf("distinct y names must stay separate, got %d series", len(out))
	}
}

func TestMergeKeepsDistinctXKindsApart(t *testing.T) {
	a := Series{XName: "Date", YName: "V", TemporalX: true, SourceFileIDs: []string{"fa"}, Points: []Point{{X: 1, Y: 1}}}
	b := Series{XName: "Date", YName: "V", TemporalX: false, SourceFileIDs: []string{"fb"}, Points: []Point{{X: 1, Y: 2}}}
	out := Merge([]Series{a, b})
	if len(out) != 2 {
		t.Fatalf("temporal and numeric x must not merge, got %d series", len(out))
	}
	if out[0].ID == out[1].ID {
		t.Fatalf("ids must stay distinct across x kinds: %q", out[0].ID)
	}
}

func TestMergePreservesCoincidentXValues(t *testing.T) {
	a := Series{XName: "X", YName: "V", SourceFileIDs: []string{"fa"}, Points: []Point{{X: 5, Y: 1}}}
	b := Series{XName: "X", YName: "V", SourceFileIDs: []string{"fb"}, Points: []Point{{X: 5, Y: 2}}}
	out := Merge([]Series{a, b})
	if len(out) != 1 || len(out[0].Points) != 2 {
		t.Fatalf("coincident x values must all be kept, got %+v", out)
	}
}

func TestMergeIDIsSanitized(t *testing.T) {
	a := Series{XName: "Date (UTC)", YName: "PM2.5", SourceFileIDs: []string{"fa"}, Points: []Point{{X: 1, Y: 1}}}
	out := Merge([]Series{a})
	for _, r := range out[0].ID {
		ok := r == '-' || r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			t.Fatalf("unsafe rune %q in merged id %q", r, out[0].ID)
		}
	}
}

func TestMergeRecomputesScaleAdvisory(t *testing.T) {
	// Neither input fires alone; the combined range does.
	a := Series{XName: "X", YName: "V", SourceFileIDs: []string{"fa"}, Points: []Point{{X: 1, Y: 1}, {X: 2, Y: 2}}}
	b := Series{XName: "X", YName: "V", SourceFileIDs: []string{"fb"}, Points: []Point{{X: 3, Y: 40}, {X: 4, Y: 50}}}
	out := Merge([]Series{a, b})
	if len(out) != 1 {
		t.Fatalf("expected one merged series")
	}
	if out[0].Warning != ScaleWarning {
		t.Fatalf("advisory must reflect the merged range, got %q", out[0].Warning)
	}
}
