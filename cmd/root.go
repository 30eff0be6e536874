package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/newsletter-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "newsletter-cli",
	Short: "Multi-source newsletter dataset builder",
	Long:  "Collects newsletter metadata from RSS feeds, a directory site, a curated list, and a platform discovery API, then merges everything into one de-duplicated dataset.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
