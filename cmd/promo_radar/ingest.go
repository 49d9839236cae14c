package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/promo-radar/internal/metrics"
	"github.com/jonathan/promo-radar/internal/observability"
)

var ingestCompany string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Crawl event listings and store new events",
	Long:  "Crawls the card-company listing pages and stores events whose canonical URL has not been seen before.",
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestCompany, "company", "", "Single connector slug to crawl (default: all)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
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

	result, err := runner.RunIngest(ctx, ingestCompany)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if cfg.Verbose {
		observability.NewPrinter(os.Stdout).PrintIngestResult(result)
	} else {
		fmt.Printf("Ingest %s: %d new, %d skipped\n", result.RunID, result.Ingested, result.Skipped)
	}
	if len(result.FailedCompanies) > 0 {
		return fmt.Errorf("crawl failed for: %v", result.FailedCompanies)
	}
	return nil
}
