package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fahadakmal/chartstudy/src/study"
)

func exportCmd(cfgPath *string) *cobra.Command {
	var (
		format  string
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recorded study sessions from the document store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			store, err := study.Open(cfg.StoreDir)
			if err != nil {
				return err
			}
			defer store.Close()
			sessions, err := store.ListSessions(context.Background())
			if err != nil {
				return err
			}
			var out io.Writer = os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				defer f.Close()
				out = f
			}
			switch format {
			case "json":
				return study.WriteSessionsJSON(out, sessions)
			case "csv":
				return study.WriteSessionsCSV(out, sessions)
			default:
				return fmt.Errorf("unknown format %q (want csv or json)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "Export format: csv or json")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	return cmd
}
