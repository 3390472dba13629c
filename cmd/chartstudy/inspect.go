package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/fahadakmal/chartstudy/src/study"
)

func inspectCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print a summary of the document store",
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
			ctx := context.Background()
			sessions, err := store.ListSessions(ctx)
			if err != nil {
				return err
			}
			files, err := store.ListFiles(ctx)
			if err != nil {
				return err
			}
			completed, consented, tasks := 0, 0, 0
			byLayout := map[string]int{}
			for _, s := range sessions {
				if s.Completed() {
					completed++
				}
				if s.ConsentGiven {
					consented++
				}
				tasks += len(s.Tasks)
				for _, t := range s.Tasks {
					k := t.Layout
					if k == "" {
						k = "(none)"
					}
					byLayout[k]++
				}
			}
			fmt.Printf("Store: %s\n", store.Path())
			fmt.Printf("Sessions: %d (consented %d, completed %d)\n", len(sessions), consented, completed)
			fmt.Printf("Task results: %d\n", tasks)
			layouts := make([]string, 0, len(byLayout))
			for k := range byLayout {
				layouts = append(layouts, k)
			}
			sort.Strings(layouts)
			for _, k := range layouts {
				fmt.Printf("  %s: %d\n", k, byLayout[k])
			}
			fmt.Printf("Cached files: %d\n", len(files))
			for _, f := range files {
				fmt.Printf("  %s (%s, %d rows)\n", f.Name, f.ID, len(f.Rows))
			}
			return nil
		},
	}
	return cmd
}
