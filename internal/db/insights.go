package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/promo-radar/internal/types"
)

// SaveInsight stores an insight for an event, replacing any previous row
// from the same source. Each event keeps at most one rule and one AI
// insight; readers prefer the AI row.
func (db *DB) SaveInsight(ctx context.Context, eventID int64, insight types.Insight) error {
	tags, err := marshalTagFields(insight)
	if err != nil {
		return err
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM event_insights WHERE event_id = $1 AND source = $2`,
		eventID, insight.Source); err != nil {
		return fmt.Errorf("failed to clear prior insight: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO event_insights (event_id, source, benefit_level, benefit_score,
			target_clarity, objective_tags, target_tags, channel_tags,
			competitive_points, promo_strategies, threat_level, threat_reason,
			summary, category, takeaway, confidence, section_coverage)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		eventID, insight.Source, insight.BenefitLevel, insight.BenefitScore,
		insight.TargetClarity, tags.objective, tags.target, tags.channel,
		tags.points, tags.strategies, insight.ThreatLevel, insight.ThreatReason,
		insight.Summary, insight.Category, insight.Takeaway, insight.Confidence,
		insight.SectionCoverage); err != nil {
		return fmt.Errorf("failed to insert insight: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit insight: %w", err)
	}
	return nil
}

// EventInsights returns all stored insights for an event, AI first.
func (db *DB) EventInsights(ctx context.Context, eventID int64) ([]types.Insight, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, event_id, source, benefit_level, benefit_score, target_clarity,
			objective_tags, target_tags, channel_tags, competitive_points,
			promo_strategies, threat_level, threat_reason, summary, category,
			takeaway, confidence, section_coverage, generated_at
		 FROM event_insights WHERE event_id = $1
		 ORDER BY CASE source WHEN 'ai' THEN 0 ELSE 1 END`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get insights: %w", err)
	}
	defer rows.Close()

	var insights []types.Insight
	for rows.Next() {
		var in types.Insight
		var objective, target, channel, points, strategies []byte
		if err := rows.Scan(
			&in.ID, &in.EventID, &in.Source, &in.BenefitLevel, &in.BenefitScore,
			&in.TargetClarity, &objective, &target, &channel, &points, &strategies,
			&in.ThreatLevel, &in.ThreatReason, &in.Summary, &in.Category,
			&in.Takeaway, &in.Confidence, &in.SectionCoverage, &in.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		unmarshalTags(objective, &in.ObjectiveTags)
		unmarshalTags(target, &in.TargetTags)
		unmarshalTags(channel, &in.ChannelTags)
		unmarshalTags(points, &in.CompetitivePoints)
		unmarshalTags(strategies, &in.PromoStrategies)
		insights = append(insights, in)
	}
	return insights, rows.Err()
}

type tagColumns struct {
	objective, target, channel, points, strategies []byte
}

func marshalTagFields(insight types.Insight) (tagColumns, error) {
	var tags tagColumns
	var err error
	for _, pair := range []struct {
		dst *[]byte
		src []string
	}{
		{&tags.objective, insight.ObjectiveTags},
		{&tags.target, insight.TargetTags},
		{&tags.channel, insight.ChannelTags},
		{&tags.points, insight.CompetitivePoints},
		{&tags.strategies, insight.PromoStrategies},
	} {
		if pair.src == nil {
			pair.src = []string{}
		}
		if *pair.dst, err = json.Marshal(pair.src); err != nil {
			return tags, fmt.Errorf("failed to marshal insight tags: %w", err)
		}
	}
	return tags, nil
}

func unmarshalTags(data []byte, dst *[]string) {
	if len(data) == 0 {
		return
	}
	// Stored by us as JSON arrays; a decode failure leaves the field empty.
	_ = json.Unmarshal(data, dst)
}
