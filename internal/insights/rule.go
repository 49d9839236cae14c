package insights

import (
	"regexp"
	"strings"

	"github.com/jonathan/promo-radar/internal/textutil"
	"github.com/jonathan/promo-radar/internal/types"
)

// targetTagVocab is the standard target tag set. AI output is free to use
// other values; the rule engine only ever emits from this list.
var targetTagVocab = []string{"신규", "기존", "VIP", "프리미엄", "20대", "30대", "40대", "전연령", "법인"}

var targetCardRe = regexp.MustCompile(`[가-힣A-Za-z0-9\s]{2,25}카드`)

var targetSignals = []string{
	"신규", "기존", "VIP", "프리미엄", "회원", "고객",
	"직장인", "대학생", "법인", "개인", "대상카드", "대상 카드",
}

// RuleInsight derives a benefit/target/strategy analysis from the extracted
// fields alone. It always succeeds, which is what makes it a safe fallback
// when the AI path is throttled or down.
func RuleInsight(res *types.ExtractionResult) types.Insight {
	benefitPool := joinNonEmpty(" ",
		res.BenefitValue,
		res.Conditions,
		sectionText(res, types.SectionBenefitDetail),
		sectionText(res, types.SectionParticipation),
		sectionText(res, types.SectionCaution),
		sectionText(res, types.SectionRestriction),
		sectionText(res, types.SectionPartnership),
		sectionText(res, types.SectionMarketingMsg),
	)
	textPool := joinNonEmpty(" ", res.Title, res.TargetSegment, res.RawText, benefitPool)

	maxAmount := textutil.MaxAmount(textutil.ExtractAmounts(benefitPool))
	maxPct := textutil.MaxPercent(textutil.ExtractPercents(benefitPool))
	if maxAmount == 0 && maxPct == 0 {
		maxAmount = textutil.MaxAmount(textutil.ExtractAmounts(textPool))
		maxPct = textutil.MaxPercent(textutil.ExtractPercents(textPool))
	}

	level := types.BenefitLevelLow
	switch {
	case maxAmount >= 100000 || maxPct >= 30:
		level = types.BenefitLevelHigh
	case maxAmount >= 50000 || maxPct >= 20:
		level = types.BenefitLevelMidHigh
	case maxAmount >= 10000 || maxPct >= 10 ||
		textutil.ContainsAny(textPool, []string{"캐시백", "무이자", "할부", "적립", "청구할인"}):
		level = types.BenefitLevelMid
	}

	var points []string
	if textutil.ContainsAny(textPool, []string{"무이자", "할부"}) {
		points = pushUnique(points, "무이자/할부 혜택")
	}
	if maxPct >= 20 {
		points = pushUnique(points, "높은 할인율")
	}
	if maxAmount >= 50000 {
		points = pushUnique(points, "고액 혜택")
	}
	if strings.Contains(textPool, "캐시백") {
		points = pushUnique(points, "즉시 체감형 캐시백")
	}
	if textutil.ContainsAny(textPool, []string{"포인트", "적립"}) {
		points = pushUnique(points, "포인트 적립형 혜택")
	}
	if len(res.Sections[types.SectionPartnership]) > 0 {
		points = pushUnique(points, "제휴 파트너 연계")
	}
	if textutil.ContainsAny(textPool, []string{"VIP", "프리미엄", "우수회원"}) {
		points = pushUnique(points, "프리미엄 고객 혜택")
	}

	targetText := joinNonEmpty(" ", res.TargetSegment, sectionText(res, types.SectionTargetBase))
	clarity := ruleTargetClarity(targetText)

	var strategies []string
	if textutil.ContainsAny(textPool, []string{"신규", "첫", "웰컴", "처음"}) {
		strategies = pushUnique(strategies, "신규 고객 유치")
	}
	if textutil.ContainsAny(textPool, []string{"기존", "재이용", "재구매", "재참여"}) {
		strategies = pushUnique(strategies, "기존 고객 리텐션")
	}
	if textutil.ContainsAny(textPool, []string{"한정", "선착순", "마감", "기간한정", "월", "1회", "한도", "최대"}) {
		strategies = pushUnique(strategies, "한정/희소성 프로모션")
	}
	if textutil.ContainsAny(textPool, []string{"응모", "추첨", "참여", "등록", "신청"}) {
		strategies = pushUnique(strategies, "참여 유도형 캠페인")
	}
	if textutil.ContainsAny(textPool, []string{"앱", "온라인", "간편결제", "KB Pay", "삼성카드 앱", "신한SOL"}) {
		strategies = pushUnique(strategies, "디지털 채널 전환")
	}
	if len(res.Sections[types.SectionPartnership]) > 0 || strings.Contains(textPool, "제휴") {
		strategies = pushUnique(strategies, "브랜드 제휴 확장")
	}
	if maxAmount >= 50000 || maxPct >= 20 {
		strategies = pushUnique(strategies, "공격적 가격 프로모션")
	}
	if len(strategies) == 0 {
		if level == types.BenefitLevelHigh || level == types.BenefitLevelMidHigh {
			strategies = append(strategies, "혜택 중심 인지도 강화")
		} else {
			strategies = append(strategies, "기본 혜택 유지형")
		}
	}

	return types.Insight{
		Source:            types.InsightSourceRule,
		BenefitLevel:      level,
		BenefitScore:      types.BenefitScore(level),
		TargetClarity:     clarity,
		CompetitivePoints: points,
		PromoStrategies:   strategies,
		ObjectiveTags:     inferObjectiveTags(res),
		TargetTags:        inferTargetTags(res),
		ChannelTags:       inferChannelTags(res),
		Confidence:        0.5,
		SectionCoverage:   res.SectionCoverage(),
	}
}

func ruleTargetClarity(targetText string) string {
	hits := 0
	for _, sig := range targetSignals {
		if strings.Contains(targetText, sig) {
			hits++
		}
	}
	hasCardPattern := targetCardRe.MatchString(targetText)

	switch {
	case strings.TrimSpace(targetText) == "":
		return "낮음"
	case textutil.ContainsAny(targetText, []string{"전체", "전 고객", "전회원"}) && hits <= 2:
		return "낮음"
	case hits >= 3 || hasCardPattern:
		return "높음"
	default:
		return "보통"
	}
}

func inferObjectiveTags(res *types.ExtractionResult) []string {
	text := joinNonEmpty(" ", res.Title, res.BenefitValue, res.Conditions, res.RawText)
	var tags []string
	if textutil.ContainsAny(text, []string{"신규", "첫", "웰컴", "가입"}) {
		tags = append(tags, "신규유치")
	}
	if textutil.ContainsAny(text, []string{"기존", "재이용", "재구매"}) {
		tags = append(tags, "리텐션")
	}
	if textutil.ContainsAny(text, []string{"최대", "이상", "결제금액"}) {
		tags = append(tags, "객단가증대")
	}
	if textutil.ContainsAny(text, []string{"앱", "온라인", "디지털", "간편결제", "Pay"}) {
		tags = append(tags, "디지털전환")
	}
	if textutil.ContainsAny(text, []string{"제휴", "파트너", "스타벅스", "CGV", "배달"}) {
		tags = append(tags, "제휴확장")
	}
	if textutil.ContainsAny(text, []string{"프리미엄", "VIP", "브랜드", "한정"}) {
		tags = append(tags, "브랜드강화")
	}
	return tags
}

func inferTargetTags(res *types.ExtractionResult) []string {
	text := joinNonEmpty(" ", res.TargetSegment, res.Conditions)
	var tags []string
	for _, tag := range targetTagVocab {
		if strings.Contains(text, tag) {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		tags = append(tags, "전연령")
	}
	return tags
}

func inferChannelTags(res *types.ExtractionResult) []string {
	text := joinNonEmpty(" ", res.Conditions, res.RawText)
	var tags []string
	if textutil.ContainsAny(text, []string{"앱", "App", "APP"}) {
		tags = append(tags, "앱")
	}
	if textutil.ContainsAny(text, []string{"온라인", "웹", "사이트"}) {
		tags = append(tags, "웹")
	}
	if textutil.ContainsAny(text, []string{"오프라인", "매장", "점포"}) {
		tags = append(tags, "오프라인")
	}
	if textutil.ContainsAny(text, []string{"간편결제", "Pay", "페이"}) {
		tags = append(tags, "간편결제")
	}
	return tags
}

func sectionText(res *types.ExtractionResult, kind types.SectionKind) string {
	return strings.Join(res.Sections[kind], " ")
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func pushUnique(list []string, item string) []string {
	for _, have := range list {
		if have == item {
			return list
		}
	}
	return append(list, item)
}
