// Package tabular holds the in-memory model of one loaded dataset: named
// columns, rows of tagged cell values, the participant's axis selection and
// per-column display styles. The chart pipeline consumes these objects as-is;
// all raw-text coercion happens in the loader before a File exists.
package tabular

import (
	"fmt"

	"github.com/google/uuid"
)

// Row maps column name to the tagged value for that column.
type Row map[string]Cell

// AxisSelection names the chosen independent column and the ordered set of
// dependent columns. Empty values mean "not yet configured", which is a valid
// state that simply contributes no series.
type AxisSelection struct {
	X string   `json:"xAxis"`
	Y []string `json:"yAxes"`
}

// File is one loaded dataset. The id is assigned at load time and stable for
// the file's lifetime; names are display-only and not guaranteed unique.
type File struct {
	ID      string                 `json:"id"`
	Name    string                 `json:"name"`
	Columns []string               `json:"columns"`
	Rows    []Row                  `json:"rows"`
	Axes    AxisSelection          `json:"axes"`
	Styles  map[string]ColumnStyle `json:"styles"`
}

// New builds a File with a fresh id and an empty axis selection.
func New(name string, columns []string, rows []Row) *File {
	return &File{
		ID:      uuid.NewString(),
		Name:    name,
		Columns: append([]string(nil), columns...),
		Rows:    rows,
		Styles:  map[string]ColumnStyle{},
	}
}

// HasColumn reports whether name is one of the file's columns.
func (f *File) HasColumn(name string) bool {
	for _, c := range f.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// SetXAxis selects the independent column.
func (f *File) SetXAxis(name string) { f.Axes.X = name }

// SetYAxes replaces the dependent-column selection. Every selected column
// gets a style entry on first selection, created with a randomized color.
func (f *File) SetYAxes(names []string) {
	f.Axes.Y = append([]string(nil), names...)
	if f.Styles == nil {
		f.Styles = map[string]ColumnStyle{}
	}
	for _, n := range names {
		if _, ok := f.Styles[n]; !ok {
			f.Styles[n] = RandomStyle()
		}
	}
}

// Style resolves the display style for a column, falling back to the default
// when no entry exists.
func (f *File) Style(column string) ColumnStyle {
	if st, ok := f.Styles[column]; ok {
		return st
	}
	return DefaultStyle()
}

// SetStyle replaces the style entry for a column.
func (f *File) SetStyle(column string, st ColumnStyle) {
	if f.Styles == nil {
		f.Styles = map[string]ColumnStyle{}
	}
	f.Styles[column] = st
}

// RenameColumn renames a column atomically: the column list, every row's
// field key, the axis selection and the style map all move in one call, so a
// partially renamed file can never be observed.
func (f *File) RenameColumn(oldName, newName string) error {
	if newName == "" {
		return fmt.Errorf("rename %q: new name is empty", oldName)
	}
	if oldName == newName {
		return nil
	}
	if !f.HasColumn(oldName) {
		return fmt.Errorf("rename %q: no such column", oldName)
	}
	if f.HasColumn(newName) {
		return fmt.Errorf("rename %q to %q: column already exists", oldName, newName)
	}
	for i, c := range f.Columns {
		if c == oldName {
			f.Columns[i] = newName
		}
	}
	for _, row := range f.Rows {
		if cell, ok := row[oldName]; ok {
			row[newName] = cell
			delete(row, oldName)
		}
	}
	if f.Axes.X == oldName {
		f.Axes.X = newName
	}
	for i, y := range f.Axes.Y {
		if y == oldName {
			f.Axes.Y[i] = newName
		}
	}
	if st, ok := f.Styles[oldName]; ok {
		f.Styles[newName] = st
		delete(f.Styles, oldName)
	}
	return nil
}
