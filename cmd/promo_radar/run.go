package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/promo-radar/internal/metrics"
	"github.com/jonathan/promo-radar/internal/observability"
)

var runLimit int

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Ingest all companies, then extract and enrich",
	Long:  "Runs the full pipeline: crawl every listing, then process the pending events in one pass.",
	RunE:  runFull,
}

func init() {
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "Maximum events to enrich (default: config enrich_limit)")
	rootCmd.AddCommand(runCmd)
}

func runFull(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	limit := runLimit
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

	printer := observability.NewPrinter(os.Stdout)

	ingested, err := runner.RunIngest(ctx, "")
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	if cfg.Verbose {
		printer.PrintIngestResult(ingested)
	} else {
		fmt.Printf("Ingest %s: %d new, %d skipped\n", ingested.RunID, ingested.Ingested, ingested.Skipped)
	}

	enriched, err := runner.RunExtractAndEnrich(ctx, limit)
	if err != nil {
		return fmt.Errorf("enrich failed: %w", err)
	}
	if cfg.Verbose {
		printer.PrintEnrichResult(enriched)
	} else {
		fmt.Printf("Enrich %s: %d ok, %d failed, %d AI\n",
			enriched.RunID, enriched.Succeeded, enriched.Failed, enriched.AIEnriched)
	}

	if len(ingested.FailedCompanies) > 0 {
		return fmt.Errorf("crawl failed for: %v", ingested.FailedCompanies)
	}
	return nil
}
