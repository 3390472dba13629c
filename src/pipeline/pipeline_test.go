package pipeline

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/fahadakmal/chartstudy/src/tabular"
)

func TestComputeSeparateOneChartPerFile(t *testing.T) {
	a := dateFile(t, "a", "Temp", 1, 2, 3)
	b := dateFile(t, "b", "PM2.5", 4, 5)
	col, err := Compute([]*tabular.File{a, b}, ModeSeparate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(col.Charts) != 2 {
		t.Fatalf("expected 2 charts, got %d", len(col.Charts))
	}
	if col.Charts[0].Title != "a" || col.Charts[1].Title != "b" {
		t.Fatalf("charts must follow file order: %q, %q", col.Charts[0].Title, col.Charts[1].Title)
	}
	if len(col.Charts[0].Series) != 1 || len(col.Charts[1].Series) != 1 {
		t.Fatalf("expected one series per chart")
	}
}

func TestComputeSingleMergesAcrossFiles(t *testing.T) {
	a := dateFile(t, "a", "Temp", 1, 2)
	b := dateFile(t, "b", "Temp", 3, 4)
	col, err := Compute([]*tabular.File{a, b}, ModeSingle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(col.Charts) != 1 {
		t.Fatalf("single mode must produce one chart, got %d", len(col.Charts))
	}
	series := col.Charts[0].Series
	if len(series) != 1 {
		t.Fatalf("matching buckets must merge, got %d series", len(series))
	}
	if len(series[0].Points) != 4 {
		t.Fatalf("merge conservation violated: %d points", len(series[0].Points))
	}
	if len(col.Charts[0].FileIDs) != 2 {
		t.Fatalf("combined chart must reference both files, got %v", col.Charts[0].FileIDs)
	}
}

func TestComputeSingleDisjointYNames(t *testing.T) {
	// Both temporal Date axes, disjoint measures: two merged series on one
	// chart, not one combined series.
	a := dateFile(t, "a", "Temp", 1, 2)
	b := dateFile(t, "b", "PM2.5", 3, 4)
	col, err := Compute([]*tabular.File{a, b}, ModeSingle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(col.Charts) != 1 || len(col.Charts[0].Series) != 2 {
		t.Fatalf("expected one chart with two series, got %d charts", len(col.Charts))
	}
}

func TestComputeSingleDoesNotRequireCompatibility(t *testing.T) {
	// The engine must not assume the UI gate ran: incompatible files still
	// group-and-merge by best-effort key.
	a := dateFile(t, "a", "Temp", 1, 2)
	c := categoryFile(t, "c") // category x extracts no points
	col, err := Compute([]*tabular.File{a, c}, ModeSingle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(col.Charts) != 1 {
		t.Fatalf("expected one best-effort chart, got %d", len(col.Charts))
	}
}

func TestComputeHybrid(t *testing.T) {
	a := dateFile(t, "a", "Temp", 1, 2)
	b := dateFile(t, "b", "Temp", 3, 4)
	c := categoryFileWithNumericX(t, "c")
	col, err := Compute([]*tabular.File{a, b, c}, ModeHybrid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(col.Charts) != 2 {
		t.Fatalf("expected combined chart plus one separate chart, got %d", len(col.Charts))
	}
	if len(col.Charts[0].Series) != 1 || len(col.Charts[0].Series[0].Points) != 4 {
		t.Fatalf("combined subset must merge")
	}
	if col.Charts[1].Title != "c" {
		t.Fatalf("separate subset stays per-file, got %q", col.Charts[1].Title)
	}
}

// categoryFileWithNumericX builds a file that extracts points but cannot
// join the Date bucket.
func categoryFileWithNumericX(t *testing.T, name string) *tabular.File {
	t.Helper()
	f := tabular.New(name, []string{"Index", "Count"}, []tabular.Row{
		{"Index": tabular.Number(1), "Count": tabular.Number(4)},
		{"Index": tabular.Number(2), "Count": tabular.Number(9)},
	})
	f.SetXAxis("Index")
	f.SetYAxes([]string{"Count"})
	return f
}

func TestComputeNoData(t *testing.T) {
	col, err := Compute(nil, ModeSeparate)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if col == nil || len(col.Charts) != 0 {
		t.Fatalf("no-data must still return an empty collection")
	}

	unconfigured := tabular.New("u", []string{"X", "Y"}, []tabular.Row{
		{"X": tabular.Number(1), "Y": tabular.Number(2)},
	})
	if _, err := Compute([]*tabular.File{unconfigured}, ModeSingle); !errors.Is(err, ErrNoData) {
		t.Fatalf("unconfigured files alone must yield ErrNoData, got %v", err)
	}
}

func TestComputeIdempotent(t *testing.T) {
	files := []*tabular.File{
		dateFile(t, "a", "Temp", 1, 2, 3),
		dateFile(t, "b", "Temp", 4, 5),
		categoryFile(t, "c"),
	}
	for _, mode := range []Mode{ModeSeparate, ModeSingle, ModeHybrid} {
		first, err1 := Compute(files, mode)
		second, err2 := Compute(files, mode)
		if (err1 == nil) != (err2 == nil) {
			t.Fatalf("mode %s: error mismatch %v vs %v", mode, err1, err2)
		}
		ja, _ := json.Marshal(first)
		jb, _ := json.Marshal(second)
		if string(ja) != string(jb) {
			t.Fatalf("mode %s: output not byte-identical across runs", mode)
		}
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"single":   ModeSingle,
		" HYBRID ": ModeHybrid,
		"separate": ModeSeparate,
		"bogus":    ModeSeparate,
		"":         ModeSeparate,
	}
	for in, want := range cases {
		if got := ParseMode(in); got != want {
			t.Fatalf("ParseMode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestComputeRenameInvalidatesOldKeys(t *testing.T) {
	a := dateFile(t, "a", "Temp", 1, 2)
	col, _ := Compute([]*tabular.File{a}, ModeSingle)
	oldID := col.Charts[0].Series[0].ID
	if err := a.RenameColumn("Temp", "Temperature"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	col, err := Compute([]*tabular.File{a}, ModeSingle)
	if err != nil {
		t.Fatalf("unexpected error after rename: %v", err)
	}
	s := col.Charts[0].Series[0]
	if s.YName != "Temperature" {
		t.Fatalf("extraction must use the new name, got %q", s.YName)
	}
	if s.ID == oldID {
		t.Fatalf("series keyed by the old name must be recomputed, id still %q", s.ID)
	}
}
