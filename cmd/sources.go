package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sells-group/newsletter-cli/internal/model"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured sources and their quality ranking",
	RunE: func(cmd *cobra.Command, args []string) error {
		ranking, err := buildRanking(cfg)
		if err != nil {
			return err
		}

		enabled := make(map[model.Source]bool, len(cfg.Sources.Enabled))
		for _, id := range cfg.Sources.Enabled {
			enabled[model.Source(id)] = true
		}

		sources := model.KnownSources()
		sort.Slice(sources, func(i, j int) bool {
			return ranking[sources[i]] > ranking[sources[j]]
		})

		for _, s := range sources {
			state := "disabled"
			if enabled[s] {
				state = "enabled"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-14s quality=%d  %s\n", s, ranking[s], state)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
