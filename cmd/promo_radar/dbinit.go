package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var dbinitCmd = &cobra.Command{
	Use:   "dbinit",
	Short: "Create the database schema",
	Long:  "Creates the events, sections, insights, snapshots, edits, and jobs tables if they do not exist.",
	RunE:  runDBInit,
}

func init() {
	rootCmd.AddCommand(dbinitCmd)
}

func runDBInit(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := connectStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	fmt.Println("Schema initialized")
	return nil
}
