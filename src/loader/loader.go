// Package loader parses delimited-text and spreadsheet sources into tabular
// files. Per-cell type coercion happens here, once: ISO-8601-like strings
// become temporal instants, decimal strings become numbers, the missing-value
// sentinels become missing cells, and everything else stays text. The chart
// pipeline downstream never re-inspects raw strings.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fahadakmal/chartstudy/src/tabular"
)

// temporalLayouts are tried in order against trimmed cell text. Date-only
// values parse as midnight UTC.
var temporalLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// Coerce decides the tagged value for one raw cell.
func Coerce(raw string) tabular.Cell {
	s := strings.TrimSpace(raw)
	switch s {
	case "", "NaN", "null", "undefined":
		return tabular.Missing()
	}
	for _, layout := range temporalLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return tabular.TemporalTime(t)
		}
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return tabular.Number(v)
	}
	return tabular.Text(s)
}

// CSV reads a header row plus records into a File. Short records are padded
// with missing cells; extra fields beyond the header are ignored.
func CSV(name string, r io.Reader) (*tabular.File, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", name, err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}
	var rows []tabular.Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		row := make(tabular.Row, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = Coerce(record[i])
			} else {
				row[col] = tabular.Missing()
			}
		}
		rows = append(rows, row)
	}
	return tabular.New(name, columns, rows), nil
}

// CSVFile loads a delimited-text file from disk, named after its base name.
func CSVFile(path string) (*tabular.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return CSV(filepath.Base(path), f)
}

// XLSX loads the first sheet of a spreadsheet file, first row as header.
func XLSX(path string) (*tabular.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return XLSXReader(filepath.Base(path), f)
}

// XLSXReader loads the first sheet of a spreadsheet stream.
func XLSXReader(name string, r io.Reader) (*tabular.File, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer wb.Close()
	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: no sheets", name)
	}
	records, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s of %s: %w", sheets[0], name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty sheet", name)
	}
	columns := make([]string, len(records[0]))
	for i, h := range records[0] {
		columns[i] = strings.TrimSpace(h)
	}
	var rows []tabular.Row
	for _, record := range records[1:] {
		row := make(tabular.Row, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = Coerce(record[i])
			} else {
				row[col] = tabular.Missing()
			}
		}
		rows = append(rows, row)
	}
	return tabular.New(name, columns, rows), nil
}

// Load picks a parser by file extension.
func Load(path string) (*tabular.File, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return XLSX(path)
	default:
		return CSVFile(path)
	}
}
