package tabular

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCellCoord(t *testing.T) {
	if v, ok := Number(3.5).Coord(); !ok || v != 3.5 {
		t.Fatalf("number coord: %v %v", v, ok)
	}
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if v, ok := TemporalTime(when).Coord(); !ok || v != float64(when.UnixMilli()) {
		t.Fatalf("temporal coord: %v %v", v, ok)
	}
	if _, ok := Text("north").Coord(); ok {
		t.Fatalf("text has no numeric encoding")
	}
	if _, ok := Missing().Coord(); ok {
		t.Fatalf("missing has no numeric encoding")
	}
}

func TestCellTimeRoundTrip(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	if got := TemporalTime(when).Time(); !got.Equal(when) {
		t.Fatalf("time round trip: %v vs %v", got, when)
	}
}

func TestCellJSONRoundTrip(t *testing.T) {
	cells := []Cell{
		Missing(),
		Number(-12.75),
		Text("sensor offline"),
		Temporal(1709251200000),
	}
	for _, c := range cells {
		raw, err := json.Marshal(c)
		if err != nil {
			t.Fatalf("marshal %v: %v", c, err)
		}
		var back Cell
		if err := json.Unmarshal(raw, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if back != c {
			t.Fatalf("round trip changed %v -> %v (json %s)", c, back, raw)
		}
	}
}

func TestCellJSONRejectsMalformed(t *testing.T) {
	var c Cell
	if err := json.Unmarshal([]byte(`{"k":"n"}`), &c); err == nil {
		t.Fatalf("number cell without value must fail")
	}
	if err := json.Unmarshal([]byte(`{"k":"zzz"}`), &c); err == nil {
		t.Fatalf("unknown kind must fail")
	}
}

func TestRandomStyleShape(t *testing.T) {
	st := RandomStyle()
	if st.Line != LineSolid || st.Shape != PointCircle || !st.ShowLine || !st.ShowPoints {
		t.Fatalf("random style must only randomize color: %+v", st)
	}
	if len(st.Color) != 7 || st.Color[0] != '#' {
		t.Fatalf("expected #rrggbb color, got %q", st.Color)
	}
}
