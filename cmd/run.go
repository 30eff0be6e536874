package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/newsletter-cli/internal/pipeline"
)

var (
	runCompleteOnly bool
	runLimit        int
	runKeywords     []string
	runReport       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect, merge, and write the newsletter dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Flag overrides.
		if cmd.Flags().Changed("complete-only") {
			cfg.Processing.CompleteOnly = runCompleteOnly
		}
		if cmd.Flags().Changed("limit") {
			cfg.Processing.Limit = runLimit
		}
		if len(runKeywords) > 0 {
			cfg.Processing.Keywords = runKeywords
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		fetch := buildFetcher(cfg)
		collectors, err := buildCollectors(cfg, fetch)
		if err != nil {
			return err
		}
		ranking, err := buildRanking(cfg)
		if err != nil {
			return err
		}
		verifier, err := buildVerifier(cfg)
		if err != nil {
			return err
		}
		sinks, closeSinks, err := buildSinks(cfg)
		if err != nil {
			return eris.Wrap(err, "init sinks")
		}
		defer closeSinks()

		p, err := pipeline.New(collectors, sinks, pipeline.Options{
			Ranking: ranking,
			Policy: pipeline.KeepPolicy{
				CompleteOnly: cfg.Processing.CompleteOnly,
				Verifier:     verifier,
			},
			Limit:         cfg.Processing.Limit,
			Concurrency:   cfg.Processing.Concurrency,
			SourceTimeout: time.Duration(cfg.Processing.SourceTimeoutSecs) * time.Second,
		})
		if err != nil {
			return err
		}

		newsletters, result, err := p.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("collection complete",
			zap.Int("kept", result.Kept),
			zap.Int("merged", result.Merged),
		)

		if runReport {
			fmt.Fprintln(os.Stderr, pipeline.FormatReport(result, newsletters))
		}

		// Print result JSON to stdout
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	runCmd.Flags().BoolVar(&runCompleteOnly, "complete-only", false, "keep only records with all required fields")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "max canonical records to keep (0 = unlimited)")
	runCmd.Flags().StringSliceVar(&runKeywords, "keywords", nil, "search keywords for sources that support search")
	runCmd.Flags().BoolVar(&runReport, "report", false, "print a human-readable report to stderr")
	rootCmd.AddCommand(runCmd)
}
