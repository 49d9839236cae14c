// Package extraction renders event detail pages and structures what the
// visitor actually sees: title, period, benefits, conditions, and the
// classified marketing sections.
package extraction

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/promo-radar/internal/browser"
	"github.com/jonathan/promo-radar/internal/textutil"
	"github.com/jonathan/promo-radar/internal/types"
)

// domainTextSelectors are per-site container fallbacks tried when the
// rendered body text comes back too short.
var domainTextSelectors = map[string][]string{
	"samsungcard.com": {".event-detail", ".evt_cont", ".cont", "#container"},
	"shinhancard.com": {
		".event-view", ".event_detail", ".view_cont",
		"#container", "#contents", "#eventContentsWrap", "#eventContents", "section.evt_detail",
	},
	"hyundaicard.com": {
		".eventView", ".event-view", ".eventDetail", ".evt-wrap",
		"#container", "#contentWrap", ".content.w792", ".event_content",
	},
	"kbcard.com": {
		".event_detail", ".event-view", ".board_view", "#container", "#contents",
		"#main_contents", ".eventViewWrap", "#eventBodyRE", "iframe",
	},
}

var baseTextSelectors = []string{
	"main", "article", "#content", ".content", ".event-detail", ".evt_cont", ".container",
	"#main_contents", ".eventViewWrap", "#eventBodyRE", "#eventContents", "#eventContentsWrap",
}

// iframeTextJS collects body inner text from every same-origin iframe.
const iframeTextJS = `
(() => Array.from(document.querySelectorAll('iframe')).map((f) => {
  try { return f.contentDocument && f.contentDocument.body ? f.contentDocument.body.innerText : ''; }
  catch (e) { return ''; }
}))()`

// Engine renders detail pages through a shared browser session and parses
// them into ExtractionResults.
type Engine struct {
	params  Params
	navWait time.Duration
}

func NewEngine(params Params) *Engine {
	return &Engine{params: params, navWait: 15 * time.Second}
}

// Extract fetches and structures one detail page. Page-level failures are
// not errors: the result comes back with a load-failure note in RawText so
// the pipeline can record the outcome.
func (e *Engine) Extract(ctx context.Context, session browser.Session, pageURL string) *types.ExtractionResult {
	started := time.Now()
	result := &types.ExtractionResult{
		BenefitType: "기타",
		Sections:    map[types.SectionKind][]string{},
	}
	defer func() { result.Latency = time.Since(started) }()

	if !strings.HasPrefix(pageURL, "http") {
		return result
	}

	if err := session.Navigate(ctx, pageURL, e.navWait); err != nil {
		log.Printf("[extract] %s: %v", pageURL, err)
		result.RawText = types.LoadFailurePrefix + ": " + textutil.Truncate(err.Error(), 200)
		return result
	}
	for i := 0; i < 3; i++ {
		_ = session.ScrollToBottom(ctx)
	}

	html, err := session.HTML(ctx)
	if err != nil {
		log.Printf("[extract] %s: %v", pageURL, err)
		result.RawText = types.LoadFailurePrefix + ": " + textutil.Truncate(err.Error(), 200)
		return result
	}
	bodyText := e.bestBodyText(ctx, session, pageURL)

	if strings.Contains(html, "조회 결과가 없습니다") {
		result.RawText = "조회 결과가 없습니다."
		return result
	}

	e.parse(result, html, bodyText)
	return result
}

// bestBodyText prefers the rendered body's inner text, walking container
// selectors and iframe bodies when the page keeps its content out of the
// top-level body. Longest non-empty text wins.
func (e *Engine) bestBodyText(ctx context.Context, session browser.Session, pageURL string) string {
	bodyText, err := session.Text(ctx, "body")
	if err != nil {
		bodyText = ""
	}

	if cleanLen(bodyText) < 120 {
		selectors := append(append([]string{}, baseTextSelectors...), domainTextSelectors[domainKey(pageURL)]...)
		for _, selector := range selectors {
			if selector == "iframe" {
				bodyText = longerOf(bodyText, e.iframeText(ctx, session))
				continue
			}
			candidate, err := session.Text(ctx, selector)
			if err != nil {
				continue
			}
			bodyText = longerOf(bodyText, candidate)
		}
	}
	if cleanLen(bodyText) < 120 {
		bodyText = longerOf(bodyText, e.iframeText(ctx, session))
	}
	if cleanLen(bodyText) < 60 {
		var candidate string
		if err := session.Evaluate(ctx,
			`(document.body && document.body.innerText) ? document.body.innerText : ''`, &candidate); err == nil {
			bodyText = longerOf(bodyText, candidate)
		}
	}
	return bodyText
}

func (e *Engine) iframeText(ctx context.Context, session browser.Session) string {
	var frames []string
	if err := session.Evaluate(ctx, iframeTextJS, &frames); err != nil {
		return ""
	}
	best := ""
	for _, text := range frames {
		best = longerOf(best, text)
	}
	return best
}

func (e *Engine) parse(result *types.ExtractionResult, pageHTML, bodyText string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		result.RawText = types.LoadFailurePrefix + ": " + textutil.Truncate(err.Error(), 200)
		return
	}
	doc.Find("script, style, nav, footer").Remove()
	doc.Find(".all_menu_container, #allMenuList, .siteList, .rect_list, #gnb, #header, #footer").Remove()

	fullText := textWithSeparator(doc.Selection, "\n")
	rawSource := strings.TrimSpace(bodyText)
	if rawSource == "" {
		rawSource = fullText
	} else if cleanLen(rawSource)*2 < cleanLen(fullText) {
		// The rendered body text missed most of the page.
		rawSource = rawSource + "\n" + fullText
	}

	rawLines := SplitRawText(rawSource)
	result.RawText = textutil.Truncate(strings.Join(rawLines, "\n"), 8000)

	result.Title = extractTitle(doc)
	if result.Title == "" && len(rawLines) > 0 {
		result.Title = textutil.Truncate(rawLines[0], 100)
	}
	result.Period = extractPeriod(doc, result.RawText)
	result.BenefitValue = extractBenefits(doc, result.RawText)
	result.Conditions = extractConditions(doc, result.RawText)
	result.TargetSegment = extractTargetCard(doc, result.RawText)
	result.BenefitType = inferBenefitType(fullText)
	result.Summary = result.Title

	result.Sections = classifySections(doc, result.RawText, e.params)

	// Section-derived fallbacks for fields the direct pickers missed.
	if result.BenefitValue == "" && len(result.Sections[types.SectionBenefitDetail]) > 0 {
		result.BenefitValue = strings.Join(head(result.Sections[types.SectionBenefitDetail], 8), " | ")
	}
	if result.Conditions == "" {
		merged := append(append(
			head(result.Sections[types.SectionParticipation], 3),
			head(result.Sections[types.SectionCaution], 3)...),
			head(result.Sections[types.SectionRestriction], 3)...)
		if len(merged) > 0 {
			result.Conditions = strings.Join(head(merged, 8), " | ")
		}
	}
	if result.TargetSegment == "" && len(result.Sections[types.SectionTargetBase]) > 0 {
		result.TargetSegment = strings.Join(head(result.Sections[types.SectionTargetBase], 3), " | ")
	}

	result.Amounts, result.Percents = extractAmountsAndPercents(strings.Join([]string{
		result.BenefitValue, result.Conditions, result.RawText, fullText,
	}, " "))
}

func domainKey(pageURL string) string {
	lowered := strings.ToLower(pageURL)
	for domain := range domainTextSelectors {
		if strings.Contains(lowered, domain) {
			return domain
		}
	}
	return ""
}

func cleanLen(s string) int {
	return len([]rune(textutil.CleanText(s)))
}

func longerOf(current, candidate string) string {
	if cleanLen(candidate) > cleanLen(current) {
		return candidate
	}
	return current
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
