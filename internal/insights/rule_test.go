package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/promo-radar/internal/types"
)

func TestRuleInsight_BenefitLevels(t *testing.T) {
	tests := []struct {
		name  string
		res   types.ExtractionResult
		level string
		score float64
	}{
		{
			name:  "high amount",
			res:   types.ExtractionResult{BenefitValue: "최대 15만원 캐시백"},
			level: types.BenefitLevelHigh,
			score: 4.0,
		},
		{
			name:  "high percent",
			res:   types.ExtractionResult{BenefitValue: "전 가맹점 30% 할인"},
			level: types.BenefitLevelHigh,
			score: 4.0,
		},
		{
			name:  "upper mid amount",
			res:   types.ExtractionResult{BenefitValue: "5만원 캐시백"},
			level: types.BenefitLevelMidHigh,
			score: 3.0,
		},
		{
			name:  "mid by keyword only",
			res:   types.ExtractionResult{RawText: "무이자 할부 행사"},
			level: types.BenefitLevelMid,
			score: 2.0,
		},
		{
			name:  "low with no signal",
			res:   types.ExtractionResult{Title: "안내", RawText: "서비스 이용 안내"},
			level: types.BenefitLevelLow,
			score: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insight := RuleInsight(&tt.res)
			assert.Equal(t, tt.level, insight.BenefitLevel)
			assert.Equal(t, tt.score, insight.BenefitScore)
			assert.Equal(t, types.InsightSourceRule, insight.Source)
			assert.Equal(t, 0.5, insight.Confidence)
		})
	}
}

func TestRuleInsight_FallsBackToFullTextPool(t *testing.T) {
	// amount lives in the raw text only, not the benefit fields
	res := types.ExtractionResult{RawText: "결제 시 최대 12만원 혜택을 드립니다"}

	insight := RuleInsight(&res)
	assert.Equal(t, types.BenefitLevelHigh, insight.BenefitLevel)
}

func TestRuleTargetClarity(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"empty", "   ", "낮음"},
		{"broad audience few signals", "전체 고객 대상", "낮음"},
		{"card name pattern", "신한 Deep Dream 카드 소지 회원", "높음"},
		{"many signals", "신규 회원 및 기존 VIP 고객", "높음"},
		{"moderate", "직장인 대상", "보통"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ruleTargetClarity(tt.target))
		})
	}
}

func TestRuleInsight_CompetitivePointsAndStrategies(t *testing.T) {
	res := types.ExtractionResult{
		Title:        "신규 회원 웰컴 캐시백",
		BenefitValue: "최대 6만원 캐시백",
		Conditions:   "앱에서 응모 후 간편결제 이용 시",
		Sections: map[types.SectionKind][]string{
			types.SectionPartnership: {"스타벅스 제휴 혜택"},
		},
	}

	insight := RuleInsight(&res)

	assert.Contains(t, insight.CompetitivePoints, "즉시 체감형 캐시백")
	assert.Contains(t, insight.CompetitivePoints, "고액 혜택")
	assert.Contains(t, insight.CompetitivePoints, "제휴 파트너 연계")
	assert.Contains(t, insight.PromoStrategies, "신규 고객 유치")
	assert.Contains(t, insight.PromoStrategies, "참여 유도형 캠페인")
	assert.Contains(t, insight.PromoStrategies, "브랜드 제휴 확장")
	assert.Contains(t, insight.PromoStrategies, "공격적 가격 프로모션")
}

func TestRuleInsight_DefaultStrategy(t *testing.T) {
	res := types.ExtractionResult{Title: "안내", RawText: "서비스 점검 안내"}

	insight := RuleInsight(&res)
	assert.Equal(t, []string{"기본 혜택 유지형"}, insight.PromoStrategies)
}

func TestRuleInsight_Tags(t *testing.T) {
	res := types.ExtractionResult{
		Title:         "첫 결제 이벤트",
		Conditions:    "온라인 매장 및 앱 결제 시, 신규 회원 한정",
		TargetSegment: "신규 고객",
		RawText:       "간편결제 등록 후 참여",
	}

	insight := RuleInsight(&res)

	assert.Contains(t, insight.ObjectiveTags, "신규유치")
	assert.Contains(t, insight.ObjectiveTags, "디지털전환")
	assert.Contains(t, insight.TargetTags, "신규")
	assert.Contains(t, insight.ChannelTags, "앱")
	assert.Contains(t, insight.ChannelTags, "웹")
	assert.Contains(t, insight.ChannelTags, "오프라인")
	assert.Contains(t, insight.ChannelTags, "간편결제")
}

func TestRuleInsight_TargetTagsDefault(t *testing.T) {
	res := types.ExtractionResult{Title: "이벤트"}

	insight := RuleInsight(&res)
	assert.Equal(t, []string{"전연령"}, insight.TargetTags)
}

func TestRuleInsight_SectionCoverage(t *testing.T) {
	res := types.ExtractionResult{
		Sections: map[types.SectionKind][]string{
			types.SectionBenefitDetail: {"10% 할인"},
			types.SectionCaution:       {"중복 적용 불가"},
		},
	}

	insight := RuleInsight(&res)
	assert.InDelta(t, 2.0/7.0, insight.SectionCoverage, 0.01)
}
