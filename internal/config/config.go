// Package config provides configuration loading and validation for the CLI
// and the HTTP server.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// AIConfig tunes the Gemini client and its rate limiter.
type AIConfig struct {
	Models            []string `json:"models,omitempty"`
	Temperature       float64  `json:"temperature,omitempty" validate:"gte=0,lte=2"`
	RequestsPerMinute int      `json:"requests_per_minute,omitempty" validate:"omitempty,gt=0"`
	RateMode          string   `json:"rate_mode,omitempty" validate:"omitempty,oneof=wait skip"`
	MaxWaitSeconds    int      `json:"max_wait_seconds,omitempty" validate:"omitempty,gt=0"`
	CooldownSeconds   int      `json:"cooldown_seconds,omitempty" validate:"omitempty,gt=0"`
}

// ExtractionConfig tunes the detail-page section classifier.
type ExtractionConfig struct {
	SecondaryThreshold int `json:"secondary_threshold,omitempty" validate:"omitempty,gt=0"`
	SectionCap         int `json:"section_cap,omitempty" validate:"omitempty,gt=0"`
}

// SamsungConfig narrows the sequential cms_id probe window.
type SamsungConfig struct {
	IDStart int `json:"id_start,omitempty" validate:"omitempty,gt=0"`
	IDEnd   int `json:"id_end,omitempty" validate:"omitempty,gtfield=IDStart"`
}

// Config is the full runtime configuration. All fields are optional; missing
// values fall back to defaults and then to environment variables.
type Config struct {
	DatabaseURL  string `json:"database_url,omitempty"`
	GeminiAPIKey string `json:"gemini_api_key,omitempty"`
	ListenAddr   string `json:"listen_addr,omitempty" validate:"omitempty,hostname_port"`
	EnrichLimit  int    `json:"enrich_limit,omitempty" validate:"omitempty,gt=0"`
	Verbose      bool   `json:"verbose,omitempty"`

	AI         AIConfig         `json:"ai,omitempty"`
	Extraction ExtractionConfig `json:"extraction,omitempty"`
	Samsung    SamsungConfig    `json:"samsung,omitempty"`
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() Config {
	return Config{
		ListenAddr:  ":8080",
		EnrichLimit: 50,
		AI: AIConfig{
			Models:            []string{"gemini-2.5-flash-lite", "gemini-2.5-flash"},
			Temperature:       0.25,
			RequestsPerMinute: 5,
			RateMode:          "wait",
			MaxWaitSeconds:    180,
			CooldownSeconds:   65,
		},
		Extraction: ExtractionConfig{
			SecondaryThreshold: 2,
			SectionCap:         25,
		},
	}
}

// Load builds the effective configuration: defaults, then the JSON file at
// path (when non-empty), then environment variables, validated last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv fills secrets and connection strings from the environment when the
// file left them empty. The .env file, if any, is loaded by the CLI before
// this runs.
func (c *Config) applyEnv() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.GeminiAPIKey == "" {
		c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if addr := os.Getenv("PROMO_RADAR_ADDR"); addr != "" {
		c.ListenAddr = addr
	}
	if v := os.Getenv("PROMO_RADAR_RPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.AI.RequestsPerMinute = n
		}
	}
}

// Validate checks ranges and enumerations on the merged configuration.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: field %q fails %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}
