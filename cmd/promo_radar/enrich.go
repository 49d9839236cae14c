package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/promo-radar/internal/metrics"
	"github.com/jonathan/promo-radar/internal/observability"
)

var enrichLimit int

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Extract and enrich pending events",
	Long:  "Renders detail pages for events without a snapshot, classifies their marketing content, and attaches an AI or rule-based insight.",
	RunE:  runEnrich,
}

func init() {
	enrichCmd.Flags().IntVar(&enrichLimit, "limit", 0, "Maximum events to process (default: config enrich_limit)")
	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	limit := enrichLimit
	if limit <= 0 {
		limit = cfg.EnrichLimit
	}

	ctx := cmd.Context()
	store, err := connectStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	runner, cleanup, err := buildRunner(ctx, cfg, store, metrics.New())
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := runner.RunExtractAndEnrich(ctx, limit)
	if err != nil {
		return fmt.Errorf("enrich failed: %w", err)
	}

	if cfg.Verbose {
		observability.NewPrinter(os.Stdout).PrintEnrichResult(result)
	} else {
		fmt.Printf("Enrich %s: %d ok, %d failed, %d AI\n",
			result.RunID, result.Succeeded, result.Failed, result.AIEnriched)
	}
	return nil
}
