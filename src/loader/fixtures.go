package loader

import (
	"bytes"
	"embed"
	"fmt"

	"github.com/fahadakmal/chartstudy/src/tabular"
)

//go:embed data/*.csv
var fixtureFS embed.FS

// fixtureAxes preselects axes for the predefined datasets so a study session
// starts with renderable charts.
var fixtureAxes = map[string]struct {
	x string
	y []string
}{
	"air_quality.csv":       {x: "Date", y: []string{"PM2.5", "PM10"}},
	"river_temperature.csv": {x: "Date", y: []string{"Temperature"}},
}

// fixtureOrder keeps fixture loading deterministic.
var fixtureOrder = []string{"air_quality.csv", "river_temperature.csv"}

// Fixtures loads the embedded predefined datasets used when a study runs
// without participant uploads, with axes preselected.
func Fixtures() ([]*tabular.File, error) {
	files := make([]*tabular.File, 0, len(fixtureOrder))
	for _, name := range fixtureOrder {
		raw, err := fixtureFS.ReadFile("data/" + name)
		if err != nil {
			return nil, fmt.Errorf("read fixture %s: %w", name, err)
		}
		f, err := CSV(name, bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("parse fixture %s: %w", name, err)
		}
		axes := fixtureAxes[name]
		f.SetXAxis(axes.x)
		f.SetYAxes(axes.y)
		files = append(files, f)
	}
	return files, nil
}
