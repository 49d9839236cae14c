package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/promo-radar/internal/types"
)

func TestNormalizeUpdate_FreshValuesWin(t *testing.T) {
	existing := &types.Event{
		Title:        "옛 제목",
		Period:       "2026.01.01 ~ 2026.01.31",
		BenefitValue: "5천원",
		Summary:      "옛 요약",
	}
	res := &types.ExtractionResult{
		Title:        "새 제목",
		Period:       "2026.09.01 ~ 2026.09.30",
		BenefitValue: "최대 5만원 캐시백",
		Summary:      "새 요약",
		RawText:      "본문 전체",
	}

	update := NormalizeUpdate(res, existing)

	assert.Equal(t, "새 제목", update.Title)
	assert.Equal(t, "2026.09.01 ~ 2026.09.30", update.Period)
	assert.Equal(t, "최대 5만원 캐시백", update.BenefitValue)
	assert.Equal(t, "새 요약", update.Summary)
	assert.Equal(t, "본문 전체", update.RawText)
}

func TestNormalizeUpdate_EmptyFieldsKeepExisting(t *testing.T) {
	existing := &types.Event{
		Title:         "여름 페스타",
		Period:        "2026.08.01 ~ 2026.08.31",
		BenefitType:   "캐시백",
		BenefitValue:  "3만원",
		Conditions:    "3만원 이상 결제",
		TargetSegment: "신규 회원",
		Summary:       "기존 요약",
		RawText:       "기존 본문",
		ThreatLevel:   types.ThreatMid,
		Category:      "쇼핑",
	}
	res := &types.ExtractionResult{}

	update := NormalizeUpdate(res, existing)

	assert.Equal(t, "여름 페스타", update.Title)
	assert.Equal(t, "2026.08.01 ~ 2026.08.31", update.Period)
	assert.Equal(t, "캐시백", update.BenefitType)
	assert.Equal(t, "3만원", update.BenefitValue)
	assert.Equal(t, "3만원 이상 결제", update.Conditions)
	assert.Equal(t, "신규 회원", update.TargetSegment)
	assert.Equal(t, "기존 요약", update.Summary)
	assert.Equal(t, "기존 본문", update.RawText)
	assert.Equal(t, types.ThreatMid, update.ThreatLevel)
	assert.Equal(t, "쇼핑", update.Category)
}

func TestNormalizeUpdate_DerivesDatesBenefitStatus(t *testing.T) {
	existing := &types.Event{}
	res := &types.ExtractionResult{
		Period:       "2020.01.01 ~ 2020.02.29",
		BenefitValue: "최대 5만원 캐시백",
	}

	update := NormalizeUpdate(res, existing)

	require.NotNil(t, update.PeriodStart)
	require.NotNil(t, update.PeriodEnd)
	assert.Equal(t, 2020, update.PeriodStart.Year())
	assert.Equal(t, time.February, update.PeriodEnd.Month())
	assert.Equal(t, int64(50000), update.BenefitAmount)
	assert.Equal(t, types.StatusEnded, update.Status, "a long-past end date means ended")
}

func TestNormalizeUpdate_UnparseablePeriod(t *testing.T) {
	update := NormalizeUpdate(&types.ExtractionResult{Period: "상시 진행"}, &types.Event{})

	assert.Nil(t, update.PeriodStart)
	assert.Nil(t, update.PeriodEnd)
	assert.Equal(t, types.StatusUnknown, update.Status)
}

func TestApplyAIFields(t *testing.T) {
	t.Run("overwrites when present", func(t *testing.T) {
		update := types.EventUpdate{Summary: "규칙 요약", Category: "생활", ThreatLevel: types.ThreatLow}
		applyAIFields(&update, types.Insight{
			Summary:     "AI 요약",
			Category:    "쇼핑",
			ThreatLevel: types.ThreatHigh,
		})

		assert.Equal(t, "AI 요약", update.Summary)
		assert.Equal(t, "쇼핑", update.Category)
		assert.Equal(t, types.ThreatHigh, update.ThreatLevel)
	})

	t.Run("keeps update values when insight fields are empty", func(t *testing.T) {
		update := types.EventUpdate{Summary: "규칙 요약", Category: "생활", ThreatLevel: types.ThreatLow}
		applyAIFields(&update, types.Insight{})

		assert.Equal(t, "규칙 요약", update.Summary)
		assert.Equal(t, "생활", update.Category)
		assert.Equal(t, types.ThreatLow, update.ThreatLevel)
	})
}
