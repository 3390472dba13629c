package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fahadakmal/chartstudy/src/loader"
	"github.com/fahadakmal/chartstudy/src/logging"
	"github.com/fahadakmal/chartstudy/src/pipeline"
	"github.com/fahadakmal/chartstudy/src/render"
	"github.com/fahadakmal/chartstudy/src/tabular"
)

func renderCmd() *cobra.Command {
	var (
		mode   string
		xcol   string
		ycols  []string
		outDir string
		width  int
		height int
	)
	cmd := &cobra.Command{
		Use:   "render [dataset...]",
		Short: "Render datasets to PNG charts without the HTTP shell",
		Long: `Render loads one or more CSV/XLSX datasets, applies the axis selection,
composes them under the chosen layout mode and writes one PNG per chart.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var files []*tabular.File
			for _, path := range args {
				f, err := loader.Load(path)
				if err != nil {
					return err
				}
				applyAxes(f, xcol, ycols)
				files = append(files, f)
			}
			col, err := pipeline.Compute(files, pipeline.ParseMode(mode))
			if errors.Is(err, pipeline.ErrNoData) {
				return fmt.Errorf("no plottable data in %d file(s); check --x/--y selections", len(files))
			}
			if err != nil {
				return err
			}
			opts := render.DefaultOptions()
			if width > 0 {
				opts.Width = width
			}
			if height > 0 {
				opts.Height = height
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create out dir: %w", err)
			}
			pngs, err := render.CollectionPNGs(col, opts)
			if err != nil {
				return err
			}
			for i, raw := range pngs {
				path := filepath.Join(outDir, fmt.Sprintf("chart_%02d.png", i))
				if err := os.WriteFile(path, raw, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				logging.Infof("wrote %s (%q, %d series)", path, col.Charts[i].Title, len(col.Charts[i].Series))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "separate", "Layout mode: separate, single or hybrid")
	cmd.Flags().StringVar(&xcol, "x", "", "X-axis column (defaults to the first column)")
	cmd.Flags().StringSliceVar(&ycols, "y", nil, "Y-axis columns (defaults to all remaining columns)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	cmd.Flags().IntVar(&width, "width", 0, "Chart width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "Chart height in pixels")
	return cmd
}

// applyAxes configures a loaded file from the flags, skipping columns the
// file does not have so mixed file sets still render.
func applyAxes(f *tabular.File, xcol string, ycols []string) {
	x := xcol
	if x == "" || !f.HasColumn(x) {
		if len(f.Columns) > 0 {
			x = f.Columns[0]
		}
	}
	f.SetXAxis(x)
	var ys []string
	if len(ycols) > 0 {
		for _, y := range ycols {
			if f.HasColumn(y) {
				ys = append(ys, y)
			}
		}
	} else {
		for _, c := range f.Columns {
			if c != x {
				ys = append(ys, c)
			}
		}
	}
	f.SetYAxes(ys)
}
