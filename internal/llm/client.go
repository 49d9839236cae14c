package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateJSON sends a prompt and returns the raw JSON text the model produced
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	// Close releases any resources held by the client
	Close() error
}

// Config holds Gemini client settings. Models are tried in order; a model
// the API reports as unavailable is skipped for the rest of the process.
type Config struct {
	Models          []string
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
	MaxAttempts     int
	Cooldown        time.Duration
}

// DefaultConfig returns the production Gemini settings.
func DefaultConfig() *Config {
	return &Config{
		Models:          []string{"gemini-2.5-flash-lite", "gemini-2.5-flash"},
		Temperature:     0.25,
		TopP:            0.85,
		MaxOutputTokens: 2048,
		MaxAttempts:     3,
		Cooldown:        65 * time.Second,
	}
}

// GeminiClient implements Client for Google Gemini with model fallback
// and a shared rate limiter.
type GeminiClient struct {
	client  *genai.Client
	config  *Config
	limiter *Limiter

	mu       sync.Mutex
	modelIdx int
}

// currentModel returns the active model name, or false once the fallback
// list is exhausted.
func (c *GeminiClient) currentModel() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.modelIdx >= len(c.config.Models) {
		return "", false
	}
	return c.config.Models[c.modelIdx], true
}

// advanceModel drops modelName from rotation. A concurrent caller may
// already have advanced past it, so only move when it is still current.
func (c *GeminiClient) advanceModel(modelName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.modelIdx < len(c.config.Models) && c.config.Models[c.modelIdx] == modelName {
		c.modelIdx++
	}
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, limiter *Limiter, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if len(config.Models) == 0 {
		return nil, fmt.Errorf("no models configured")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		config:  config,
		limiter: limiter,
	}, nil
}

// GenerateJSON sends the prompt through the rate limiter and returns the
// model's JSON text. An unavailable model advances the fallback list for
// the rest of the process; a rate limited first attempt retries once
// after marking the cooldown.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt < c.config.MaxAttempts; attempt++ {
		modelName, ok := c.currentModel()
		if !ok {
			return "", fmt.Errorf("all models exhausted: %w", lastErr)
		}

		if c.limiter != nil {
			if err := c.limiter.Acquire(ctx); err != nil {
				return "", err
			}
		}

		model := c.client.GenerativeModel(modelName)
		model.SetTemperature(c.config.Temperature)
		model.SetTopP(c.config.TopP)
		model.SetMaxOutputTokens(c.config.MaxOutputTokens)
		model.ResponseMIMEType = "application/json"

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			lastErr = err
			if isModelUnavailableErr(err) {
				log.Printf("[llm] model %s unavailable, falling back", modelName)
				c.advanceModel(modelName)
				continue
			}
			if isRateLimitErr(err) {
				if c.limiter != nil {
					c.limiter.Cooldown(c.config.Cooldown)
				}
				if attempt == 0 {
					log.Printf("[llm] rate limited on %s, cooling down %s", modelName, c.config.Cooldown)
					continue
				}
			}
			return "", fmt.Errorf("failed to generate content: %w", err)
		}

		text, err := extractTextFromResponse(resp)
		if err != nil {
			return "", err
		}
		return ExtractJSONText(text), nil
	}

	return "", fmt.Errorf("generation attempts exhausted: %w", lastErr)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
