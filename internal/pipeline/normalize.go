package pipeline

import (
	"time"

	"github.com/jonathan/promo-radar/internal/textutil"
	"github.com/jonathan/promo-radar/internal/types"
)

// NormalizeUpdate turns an extraction result into the event update to
// persist. Fields the extraction left empty keep the existing event's
// value, so a weak re-extraction never erases data a better pass found.
func NormalizeUpdate(res *types.ExtractionResult, existing *types.Event) types.EventUpdate {
	title := orExisting(res.Title, existing.Title)
	period := orExisting(res.Period, existing.Period)
	benefitValue := orExisting(res.BenefitValue, existing.BenefitValue)

	var periodStart, periodEnd *time.Time
	if start, end, ok := textutil.ParsePeriodDates(period); ok {
		periodStart, periodEnd = &start, &end
	}

	var amount int64
	var pct float64
	if aw, bp, ok := textutil.ParseBenefit(benefitValue); ok {
		amount, pct = aw, bp
	}

	return types.EventUpdate{
		Title:         title,
		Period:        period,
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		BenefitType:   orExisting(res.BenefitType, existing.BenefitType),
		BenefitValue:  benefitValue,
		BenefitAmount: amount,
		BenefitPct:    pct,
		Conditions:    orExisting(res.Conditions, existing.Conditions),
		TargetSegment: orExisting(res.TargetSegment, existing.TargetSegment),
		ThreatLevel:   existing.ThreatLevel,
		Category:      existing.Category,
		Summary:       orExisting(res.Summary, existing.Summary),
		RawText:       orExisting(res.RawText, existing.RawText),
		Status:        textutil.ComputeStatus(periodEnd, time.Now()),
	}
}

// applyAIFields folds the AI insight's summary/category/threat into the
// event update when present. Rule insights never touch these fields.
func applyAIFields(update *types.EventUpdate, insight types.Insight) {
	if insight.Summary != "" {
		update.Summary = insight.Summary
	}
	if insight.Category != "" {
		update.Category = insight.Category
	}
	if insight.ThreatLevel != "" {
		update.ThreatLevel = insight.ThreatLevel
	}
}

func orExisting(fresh, existing string) string {
	if fresh != "" {
		return fresh
	}
	return existing
}
