package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/promo-radar/internal/metrics"
	"github.com/jonathan/promo-radar/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP trigger and read API",
	Long:  "Starts an HTTP server exposing pipeline triggers, run progress, the event read surface, and Prometheus metrics.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: config listen_addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.ListenAddr = serveAddr
	}

	ctx := context.Background()
	store, err := connectStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	m := metrics.New()
	runner, cleanup, err := buildRunner(ctx, cfg, store, m)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := server.New(server.Config{
		Addr:        cfg.ListenAddr,
		EnrichLimit: cfg.EnrichLimit,
	}, store, runner, m)

	return srv.Start()
}
