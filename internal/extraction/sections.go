package extraction

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/promo-radar/internal/textutil"
	"github.com/jonathan/promo-radar/internal/types"
)

// Params tune the section classifier. Defaults reproduce the behavior the
// downstream consumers were calibrated against.
type Params struct {
	// SecondaryThreshold is the minimum keyword score for a line to also
	// land in sections beyond its primary one.
	SecondaryThreshold int
	// SectionCap limits the items emitted per section.
	SectionCap int
	// StoredCap limits the scored items held per section before ranking.
	StoredCap int
	// FallbackBlockCap limits blocks collected to backfill empty sections.
	FallbackBlockCap int
}

func DefaultParams() Params {
	return Params{
		SecondaryThreshold: 2,
		SectionCap:         25,
		StoredCap:          30,
		FallbackBlockCap:   15,
	}
}

type scoredLine struct {
	score int
	text  string
}

type sectionAccumulator struct {
	params Params
	scored map[types.SectionKind][]scoredLine
	seen   map[types.SectionKind]map[string]struct{}
}

func newSectionAccumulator(params Params) *sectionAccumulator {
	acc := &sectionAccumulator{
		params: params,
		scored: map[types.SectionKind][]scoredLine{},
		seen:   map[types.SectionKind]map[string]struct{}{},
	}
	for _, kind := range types.SectionKinds {
		acc.scored[kind] = nil
		acc.seen[kind] = map[string]struct{}{}
	}
	return acc
}

func (a *sectionAccumulator) add(kind types.SectionKind, text string, score int) {
	cleaned := textutil.CleanText(text)
	if len([]rune(cleaned)) < 6 {
		return
	}
	cleaned = textutil.Truncate(cleaned, 500)
	if isHeaderLike(cleaned) || isNotificationBanner(cleaned) || isNonMarketingNoise(cleaned) {
		return
	}
	if len(a.scored[kind]) >= a.params.StoredCap {
		return
	}
	key := textutil.NormalizeKey(cleaned)
	if key == "" {
		return
	}
	if _, dup := a.seen[kind][key]; dup {
		return
	}
	a.seen[kind][key] = struct{}{}
	a.scored[kind] = append(a.scored[kind], scoredLine{score: score, text: cleaned})
}

// result ranks each section's lines by (score, length) descending and
// applies the per-section cap.
func (a *sectionAccumulator) result() map[types.SectionKind][]string {
	sections := map[types.SectionKind][]string{}
	for _, kind := range types.SectionKinds {
		items := append([]scoredLine(nil), a.scored[kind]...)
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].score != items[j].score {
				return items[i].score > items[j].score
			}
			return len(items[i].text) > len(items[j].text)
		})
		if len(items) > a.params.SectionCap {
			items = items[:a.params.SectionCap]
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, item.text)
		}
		sections[kind] = out
	}
	return sections
}

// classifySections assigns candidate lines to the seven marketing sections.
// Each line lands in the section it scores highest for; extra placements
// need at least the secondary threshold. Sections still empty afterwards
// are backfilled from keyword blocks.
func classifySections(doc *goquery.Document, rawText string, params Params) map[types.SectionKind][]string {
	acc := newSectionAccumulator(params)

	candidates := SplitRawText(rawText)
	if len(candidates) < 40 {
		candidates = append(candidates, SplitRawText(textWithSeparator(doc.Selection, "\n"))...)
	}

	seen := map[string]struct{}{}
	var merged []string
	for _, line := range candidates {
		key := textutil.NormalizeKey(line)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, line)
	}

	for _, line := range merged {
		scores := map[types.SectionKind]int{}
		for kind, keywords := range sectionKeywords {
			if score := textutil.ScoreKeywords(line, keywords); score > 0 {
				scores[kind] = score
			}
		}
		if len(scores) == 0 {
			continue
		}

		if textutil.ContainsAny(line, cautionHints) {
			scores[types.SectionCaution] += 2
		}
		if textutil.ContainsAny(line, restrictionHints) {
			scores[types.SectionRestriction] += 2
		}
		if textutil.ContainsAny(line, participationHints) {
			scores[types.SectionParticipation] += 2
		}
		if textutil.ContainsAny(line, targetHints) {
			scores[types.SectionTargetBase]++
		}

		ranked := make([]types.SectionKind, 0, len(scores))
		for kind := range scores {
			ranked = append(ranked, kind)
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			if scores[ranked[i]] != scores[ranked[j]] {
				return scores[ranked[i]] > scores[ranked[j]]
			}
			// Deterministic tie-break by canonical section order.
			return sectionRank(ranked[i]) < sectionRank(ranked[j])
		})

		acc.add(ranked[0], line, scores[ranked[0]])
		for _, kind := range ranked[1:] {
			if scores[kind] >= params.SecondaryThreshold {
				acc.add(kind, line, scores[kind])
			}
		}
	}

	for _, kind := range types.SectionKinds {
		if len(acc.scored[kind]) > 0 {
			continue
		}
		for _, block := range collectBlocks(doc, sectionKeywords[kind], rawText, 500, params.FallbackBlockCap) {
			acc.add(kind, block, 1)
		}
	}

	return acc.result()
}

func sectionRank(kind types.SectionKind) int {
	for i, k := range types.SectionKinds {
		if k == kind {
			return i
		}
	}
	return len(types.SectionKinds)
}

// extractBenefits condenses benefit-keyword blocks into one field value.
func extractBenefits(doc *goquery.Document, rawText string) string {
	blocks := collectBlocks(doc, sectionKeywords[types.SectionBenefitDetail], rawText, 320, 10)
	return strings.Join(blocks, " | ")
}

// extractConditions condenses participation, caution, and restriction
// blocks into one field value.
func extractConditions(doc *goquery.Document, rawText string) string {
	var keywords []string
	seen := map[string]struct{}{}
	for _, kind := range []types.SectionKind{types.SectionParticipation, types.SectionCaution, types.SectionRestriction} {
		for _, kw := range sectionKeywords[kind] {
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			keywords = append(keywords, kw)
		}
	}
	blocks := collectBlocks(doc, keywords, rawText, 320, 10)
	return strings.Join(blocks, " | ")
}

var targetCardLabels = []string{"대상카드", "해당카드", "적용카드", "대상 카드"}
var targetCardLineKeywords = []string{"대상카드", "대상 카드", "해당카드", "적용카드", "대상 회원", "대상 고객"}

// extractTargetCard finds the "eligible cards" text near its label.
func extractTargetCard(doc *goquery.Document, rawText string) string {
	for _, label := range targetCardLabels {
		text := findLabeledText(doc, label)
		if n := len([]rune(text)); n > 5 && n < 150 {
			return textutil.Truncate(text, 120)
		}
	}
	for _, line := range SplitRawText(rawText) {
		if textutil.ContainsAny(line, targetCardLineKeywords) && len([]rune(line)) <= 160 {
			return line
		}
	}
	return ""
}
