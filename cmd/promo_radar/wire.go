package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/promo-radar/internal/browser"
	"github.com/jonathan/promo-radar/internal/config"
	"github.com/jonathan/promo-radar/internal/connectors"
	"github.com/jonathan/promo-radar/internal/db"
	"github.com/jonathan/promo-radar/internal/extraction"
	"github.com/jonathan/promo-radar/internal/insights"
	"github.com/jonathan/promo-radar/internal/llm"
	"github.com/jonathan/promo-radar/internal/metrics"
	"github.com/jonathan/promo-radar/internal/pipeline"
)

// loadConfig reads the effective configuration and applies the pieces that
// act at package level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if cfg.Samsung.IDStart > 0 && cfg.Samsung.IDEnd > cfg.Samsung.IDStart {
		connectors.SetSamsungIDRange(cfg.Samsung.IDStart, cfg.Samsung.IDEnd)
	}
	if flagVerbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

// connectStore opens the database pool. Fails fast when DATABASE_URL is
// missing.
func connectStore(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL required: set database_url in the config file or the DATABASE_URL environment variable")
	}
	return db.Connect(ctx, cfg.DatabaseURL)
}

// buildRunner assembles the full pipeline: store, browser factory,
// extraction engine, AI client behind its rate limiter, and metrics.
// The returned cleanup closes the AI client; the store is the caller's.
func buildRunner(ctx context.Context, cfg *config.Config, store *db.DB, m *metrics.Metrics) (*pipeline.Runner, func(), error) {
	var client llm.Client
	cleanup := func() {}

	if cfg.GeminiAPIKey != "" {
		limiter := llm.NewLimiter(
			cfg.AI.RequestsPerMinute,
			time.Minute,
			cfg.AI.RateMode,
			time.Duration(cfg.AI.MaxWaitSeconds)*time.Second,
		)

		llmCfg := llm.DefaultConfig()
		if len(cfg.AI.Models) > 0 {
			llmCfg.Models = cfg.AI.Models
		}
		if cfg.AI.Temperature > 0 {
			llmCfg.Temperature = float32(cfg.AI.Temperature)
		}
		if cfg.AI.CooldownSeconds > 0 {
			llmCfg.Cooldown = time.Duration(cfg.AI.CooldownSeconds) * time.Second
		}

		gemini, err := llm.NewGeminiClient(ctx, llmCfg, limiter, cfg.GeminiAPIKey)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create AI client: %w", err)
		}
		client = gemini
		cleanup = func() {
			if err := gemini.Close(); err != nil {
				log.Printf("closing AI client: %v", err)
			}
		}
	} else {
		log.Printf("GEMINI_API_KEY not set; insights fall back to the rule engine")
	}

	params := extraction.DefaultParams()
	if cfg.Extraction.SecondaryThreshold > 0 {
		params.SecondaryThreshold = cfg.Extraction.SecondaryThreshold
	}
	if cfg.Extraction.SectionCap > 0 {
		params.SectionCap = cfg.Extraction.SectionCap
	}

	runner := pipeline.NewRunner(
		store,
		browser.NewSession,
		extraction.NewEngine(params),
		insights.NewGenerator(client),
		m,
	)
	return runner, cleanup, nil
}
