package types

// SectionKind is the fixed taxonomy used to classify event body text.
// Values are stored verbatim in the database and in AI prompts, so they
// keep the Korean labels the downstream consumers expect.
type SectionKind string

const (
	SectionBenefitDetail SectionKind = "혜택_상세"
	SectionParticipation SectionKind = "참여방법"
	SectionCaution       SectionKind = "유의사항"
	SectionRestriction   SectionKind = "제한사항"
	SectionPartnership   SectionKind = "파트너십"
	SectionMarketingMsg  SectionKind = "마케팅_메시지"
	SectionTargetBase    SectionKind = "타겟_고객"
)

// SectionKinds lists every kind in canonical order. Classification output,
// coverage ratios, and prompt digests all iterate in this order.
var SectionKinds = []SectionKind{
	SectionBenefitDetail,
	SectionParticipation,
	SectionCaution,
	SectionRestriction,
	SectionPartnership,
	SectionMarketingMsg,
	SectionTargetBase,
}

// Valid reports whether k is one of the known section kinds.
func (k SectionKind) Valid() bool {
	for _, known := range SectionKinds {
		if k == known {
			return true
		}
	}
	return false
}
