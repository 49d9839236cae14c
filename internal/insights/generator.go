// Package insights turns extraction results into marketing analyses. The AI
// analyzer is preferred; the rule engine guarantees an insight for every
// event when the AI path is throttled, invalid, or down.
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/promo-radar/internal/llm"
	"github.com/jonathan/promo-radar/internal/prompts"
	"github.com/jonathan/promo-radar/internal/schemas"
	"github.com/jonathan/promo-radar/internal/textutil"
	"github.com/jonathan/promo-radar/internal/types"
)

const (
	promptTargetCap      = 300
	promptBenefitCap     = 600
	promptConditionsCap  = 500
	promptSectionItemCap = 200
	promptSectionItems   = 5
	promptSectionLines   = 20
	promptRawExcerptCap  = 2500
)

// Generator produces insights for extracted events.
type Generator struct {
	client llm.Client
}

// NewGenerator builds a Generator. A nil client disables the AI path and
// every call falls through to the rule engine.
func NewGenerator(client llm.Client) *Generator {
	return &Generator{client: client}
}

// aiResponse mirrors the JSON contract in the event-insight prompt.
type aiResponse struct {
	OneLineSummary    string   `json:"one_line_summary"`
	Category          string   `json:"category"`
	ThreatLevel       string   `json:"threat_level"`
	ThreatReason      string   `json:"threat_reason"`
	BenefitLevel      string   `json:"benefit_level"`
	TargetClarity     string   `json:"target_clarity"`
	CompetitivePoints []string `json:"competitive_points"`
	PromoStrategies   []string `json:"promo_strategies"`
	ObjectiveTags     []string `json:"objective_tags"`
	TargetTags        []string `json:"target_tags"`
	ChannelTags       []string `json:"channel_tags"`
	MarketingTakeaway string   `json:"marketing_takeaway"`
}

// Generate returns an insight for the extraction result plus the source
// that produced it. The AI analyzer is tried first; any failure there
// falls back to the rule engine, so callers always get a usable insight.
func (g *Generator) Generate(ctx context.Context, res *types.ExtractionResult, company string) (types.Insight, string) {
	if g.client != nil {
		insight, err := g.aiInsight(ctx, res, company)
		if err == nil {
			return insight, types.InsightSourceAI
		}
		if errors.Is(err, llm.ErrSkipped) {
			log.Printf("[insights] AI slot unavailable, using rule engine: %s", head(res.Title, 40))
		} else {
			log.Printf("[insights] AI insight failed (%v), using rule engine: %s", err, head(res.Title, 40))
		}
	}
	return RuleInsight(res), types.InsightSourceRule
}

func (g *Generator) aiInsight(ctx context.Context, res *types.ExtractionResult, company string) (types.Insight, error) {
	prompt := buildPrompt(company, res)

	raw, err := g.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return types.Insight{}, err
	}

	if err := schemas.ValidateInsightResponse(raw); err != nil {
		return types.Insight{}, fmt.Errorf("insight response rejected: %w", err)
	}

	var resp aiResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return types.Insight{}, fmt.Errorf("failed to parse insight response: %w", err)
	}
	if strings.TrimSpace(resp.OneLineSummary) == "" {
		return types.Insight{}, fmt.Errorf("insight response missing summary")
	}

	level := resp.BenefitLevel
	if level == "" {
		level = types.BenefitLevelMid
	}

	return types.Insight{
		Source:            types.InsightSourceAI,
		BenefitLevel:      level,
		BenefitScore:      types.BenefitScore(level),
		TargetClarity:     resp.TargetClarity,
		ObjectiveTags:     resp.ObjectiveTags,
		TargetTags:        resp.TargetTags,
		ChannelTags:       resp.ChannelTags,
		CompetitivePoints: resp.CompetitivePoints,
		PromoStrategies:   resp.PromoStrategies,
		ThreatLevel:       resp.ThreatLevel,
		ThreatReason:      resp.ThreatReason,
		Summary:           resp.OneLineSummary,
		Category:          resp.Category,
		Takeaway:          resp.MarketingTakeaway,
		Confidence:        0.85,
		SectionCoverage:   res.SectionCoverage(),
	}, nil
}

// buildPrompt assembles the full analysis prompt: system instructions, the
// structured summary, a per-section digest, and a raw text excerpt.
func buildPrompt(company string, res *types.ExtractionResult) string {
	system := prompts.MustGet("insights.json", "event-insight-system")
	userTmpl := prompts.MustGet("insights.json", "event-insight-user")

	user := prompts.Format(userTmpl, map[string]string{
		"Company":    company,
		"Title":      res.Title,
		"Period":     orPlaceholder(res.Period, "미추출"),
		"Target":     orPlaceholder(textutil.Truncate(res.TargetSegment, promptTargetCap), "미추출 (전체 고객 가능성)"),
		"Benefit":    orPlaceholder(textutil.Truncate(res.BenefitValue, promptBenefitCap), "미추출"),
		"Conditions": orPlaceholder(textutil.Truncate(res.Conditions, promptConditionsCap), "미추출"),
		"Sections":   sectionDigest(res),
		"RawExcerpt": textutil.Truncate(res.RawText, promptRawExcerptCap),
	})

	return system + "\n\n" + user
}

// sectionDigest renders each populated section as "[kind] item / item",
// in canonical section order.
func sectionDigest(res *types.ExtractionResult) string {
	var lines []string
	for _, kind := range types.SectionKinds {
		items := res.Sections[kind]
		if len(items) == 0 {
			continue
		}
		if len(items) > promptSectionItems {
			items = items[:promptSectionItems]
		}
		trimmed := make([]string, 0, len(items))
		for _, item := range items {
			trimmed = append(trimmed, textutil.Truncate(item, promptSectionItemCap))
		}
		lines = append(lines, fmt.Sprintf("[%s] %s", kind, strings.Join(trimmed, " / ")))
		if len(lines) >= promptSectionLines {
			break
		}
	}
	if len(lines) == 0 {
		return "(섹션 데이터 없음)"
	}
	return strings.Join(lines, "\n")
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

func head(s string, n int) string {
	return textutil.Truncate(s, n)
}
