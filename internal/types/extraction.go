package types

import (
	"strings"
	"time"
)

// LoadFailurePrefix starts the RawText of results whose page never
// rendered.
const LoadFailurePrefix = "로드 실패"

// ExtractionResult is everything the detail-page extractor pulled from one
// event URL. Extraction never fails at the page level: failures come back
// as a result whose RawText carries the failure note.
type ExtractionResult struct {
	Title         string                   `json:"title"`
	Period        string                   `json:"period"`
	BenefitValue  string                   `json:"benefit_value"`
	BenefitType   string                   `json:"benefit_type"`
	Conditions    string                   `json:"conditions"`
	TargetSegment string                   `json:"target_segment"`
	Summary       string                   `json:"one_line_summary"`
	RawText       string                   `json:"raw_text"`
	Sections      map[SectionKind][]string `json:"marketing_content"`
	Amounts       []string                 `json:"amounts"`
	Percents      []string                 `json:"percentages"`
	Latency       time.Duration            `json:"-"`
}

// Failed reports whether the page could not be rendered at all.
func (r *ExtractionResult) Failed() bool {
	return strings.HasPrefix(r.RawText, LoadFailurePrefix)
}

// SectionCoverage is the fraction of the seven section kinds that came back
// non-empty.
func (r *ExtractionResult) SectionCoverage() float64 {
	filled := 0
	for _, kind := range SectionKinds {
		if len(r.Sections[kind]) > 0 {
			filled++
		}
	}
	return float64(filled) / float64(len(SectionKinds))
}
