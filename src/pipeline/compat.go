package pipeline

import (
	"fmt"
	"strings"

	"github.com/fahadakmal/chartstudy/src/tabular"
)

// SingleChartCompatible reports whether every file can share one x-scale:
// all x-axis names equal the first file's, and the runtime kind of the first
// value in that column is identical across files. Zero or one file is
// trivially compatible. The check looks at the raw per-row value kind, not
// the numeric encoding extraction produces.
//
// This check is looser than the hybrid partition below, which additionally
// demands numeric-or-missing y columns.
func SingleChartCompatible(files []*tabular.File) bool {
	if len(files) < 2 {
		return true
	}
	refName := files[0].Axes.X
	refKind := firstValueKind(files[0], refName)
	for _, f := range files[1:] {
		if f.Axes.X != refName {
			return false
		}
		if firstValueKind(f, f.Axes.X) != refKind {
			return false
		}
	}
	return true
}

// firstValueKind is the runtime kind of the first row's value in a column;
// a file with no rows reads as missing.
func firstValueKind(f *tabular.File, column string) tabular.Kind {
	if len(f.Rows) == 0 {
		return tabular.KindMissing
	}
	return f.Rows[0][column].Kind
}

// HybridPartition splits files into the subset drawn as one combined chart
// and the rest drawn separately. Files bucket by (trimmed x-axis name, first
// x value kind); a file only qualifies for combination when every selected
// y-column is numeric-or-missing across all its rows. The largest bucket by
// file count wins, ties broken by first-encountered bucket. With fewer than
// two files the lone file (if any) is the whole combined group.
//
// A file with zero selected y-columns still buckets by x-axis identity; it
// contributes no series but does not break its group's compatibility.
func HybridPartition(files []*tabular.File) (combined, separate []*tabular.File) {
	if len(files) < 2 {
		return files, nil
	}
	type bucket struct {
		key   string
		files []*tabular.File
	}
	var buckets []*bucket
	byKey := map[string]*bucket{}
	for _, f := range files {
		if !numericYColumns(f) {
			continue
		}
		key := fmt.Sprintf("%s|%s", strings.TrimSpace(f.Axes.X), firstValueKind(f, f.Axes.X))
		b, ok := byKey[key]
		if !ok {
			b = &bucket{key: key}
			byKey[key] = b
			buckets = append(buckets, b)
		}
		b.files = append(b.files, f)
	}
	var winner *bucket
	for _, b := range buckets {
		if winner == nil || len(b.files) > len(winner.files) {
			winner = b
		}
	}
	inWinner := map[string]bool{}
	if winner != nil {
		combined = winner.files
		for _, f := range winner.files {
			inWinner[f.ID] = true
		}
	}
	for _, f := range files {
		if !inWinner[f.ID] {
			separate = append(separate, f)
		}
	}
	return combined, separate
}

// numericYColumns reports whether every selected y-column holds only numeric
// or missing values. Any text or temporal value in a selected column
// disqualifies the file from hybrid combination.
func numericYColumns(f *tabular.File) bool {
	for _, ycol := range f.Axes.Y {
		for _, row := range f.Rows {
			switch row[ycol].Kind {
			case tabular.KindNumber, tabular.KindMissing:
			default:
				return false
			}
		}
	}
	return true
}
