package tabular

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind tags the value held by a Cell. The tag is decided once at load time;
// downstream code never re-inspects raw text.
type Kind int

const (
	KindMissing Kind = iota
	KindNumber
	KindText
	KindTemporal
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindTemporal:
		return "temporal"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Cell is one tagged value in a row. Numbers live in Num, text in Text and
// temporal instants in Epoch (milliseconds since the Unix epoch, UTC).
type Cell struct {
	Kind  Kind
	Num   float64
	Text  string
	Epoch int64
}

func Missing() Cell              { return Cell{Kind: KindMissing} }
func Number(v float64) Cell      { return Cell{Kind: KindNumber, Num: v} }
func Text(s string) Cell         { return Cell{Kind: KindText, Text: s} }
func Temporal(epochMs int64) Cell { return Cell{Kind: KindTemporal, Epoch: epochMs} }

// TemporalTime builds a temporal cell from a time.Time.
func TemporalTime(t time.Time) Cell { return Temporal(t.UnixMilli()) }

// IsMissing reports whether the cell holds no value.
func (c Cell) IsMissing() bool { return c.Kind == KindMissing }

// Coord returns the cell's plottable numeric encoding: the number itself, or
// epoch milliseconds for temporal instants. Missing and text cells have no
// numeric encoding. Finiteness is not checked here; callers filter non-finite
// coordinates.
func (c Cell) Coord() (float64, bool) {
	switch c.Kind {
	case KindNumber:
		return c.Num, true
	case KindTemporal:
		return float64(c.Epoch), true
	}
	return 0, false
}

// Time returns the temporal value, valid only for KindTemporal.
func (c Cell) Time() time.Time { return time.UnixMilli(c.Epoch).UTC() }

// cellJSON is the persisted form: a short kind token plus one value field.
type cellJSON struct {
	K string   `json:"k"`
	N *float64 `json:"n,omitempty"`
	S *string  `json:"s,omitempty"`
	T *int64   `json:"t,omitempty"`
}

func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case KindNumber:
		return json.Marshal(cellJSON{K: "n", N: &c.Num})
	case KindText:
		return json.Marshal(cellJSON{K: "s", S: &c.Text})
	case KindTemporal:
		return json.Marshal(cellJSON{K: "t", T: &c.Epoch})
	}
	return json.Marshal(cellJSON{K: "m"})
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	var raw cellJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.K {
	case "n":
		if raw.N == nil {
			return fmt.Errorf("number cell without value")
		}
		*c = Number(*raw.N)
	case "s":
		if raw.S == nil {
			return fmt.Errorf("text cell without value")
		}
		*c = Text(*raw.S)
	case "t":
		if raw.T == nil {
			return fmt.Errorf("temporal cell without value")
		}
		*c = Temporal(*raw.T)
	case "m", "":
		*c = Missing()
	default:
		return fmt.Errorf("unknown cell kind %q", raw.K)
	}
	return nil
}
