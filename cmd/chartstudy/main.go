// Package main provides the chartstudy binary: the app shell around the
// chart pipeline, the renderer and the study session store. Subcommands
// cover the HTTP instrument API, one-shot chart rendering, result export and
// store inspection.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fahadakmal/chartstudy/src/logging"
)

const version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)
	cmd := &cobra.Command{
		Use:   "chartstudy",
		Short: "Usability-study instrument for environmental time-series charts",
		Long: `Chartstudy presents environmental time-series data in separate, single or
hybrid chart layouts, records participant interaction metrics, and persists
results to a local document store for statistical export.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetLevel(logLevel)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(serveCmd(&configPath))
	cmd.AddCommand(renderCmd())
	cmd.AddCommand(exportCmd(&configPath))
	cmd.AddCommand(inspectCmd(&configPath))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("chartstudy version %s\n", version)
		},
	})
	return cmd
}
