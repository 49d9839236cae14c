package types

import "time"

// Insight sources, in preference order when both exist for an event.
const (
	InsightSourceAI   = "ai"
	InsightSourceRule = "rule"
)

// Benefit level labels produced by both the AI and rule analyzers.
const (
	BenefitLevelHigh    = "높음"
	BenefitLevelMidHigh = "중상"
	BenefitLevelMid     = "보통"
	BenefitLevelLow     = "낮음"
)

// BenefitScore maps a benefit level label to its numeric score.
// Unknown labels score zero.
func BenefitScore(level string) float64 {
	switch level {
	case BenefitLevelHigh:
		return 4.0
	case BenefitLevelMidHigh:
		return 3.0
	case BenefitLevelMid:
		return 2.0
	case BenefitLevelLow:
		return 1.0
	}
	return 0
}

// Insight is the analytical read on a single event, produced either by the
// AI analyzer or the rule engine. At most one row per (event, source).
type Insight struct {
	ID                int64     `json:"id"`
	EventID           int64     `json:"event_id"`
	Source            string    `json:"source"`
	BenefitLevel      string    `json:"benefit_level"`
	BenefitScore      float64   `json:"benefit_score"`
	TargetClarity     string    `json:"target_clarity"`
	ObjectiveTags     []string  `json:"objective_tags,omitempty"`
	TargetTags        []string  `json:"target_tags,omitempty"`
	ChannelTags       []string  `json:"channel_tags,omitempty"`
	CompetitivePoints []string  `json:"competitive_points,omitempty"`
	PromoStrategies   []string  `json:"promo_strategies,omitempty"`
	ThreatLevel       string    `json:"threat_level,omitempty"`
	ThreatReason      string    `json:"threat_reason,omitempty"`
	Summary           string    `json:"one_line_summary,omitempty"`
	Category          string    `json:"category,omitempty"`
	Takeaway          string    `json:"takeaway,omitempty"`
	Confidence        float64   `json:"confidence"`
	SectionCoverage   float64   `json:"section_coverage"`
	CreatedAt         time.Time `json:"created_at"`
}
