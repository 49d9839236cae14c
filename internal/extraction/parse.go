package extraction

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jonathan/promo-radar/internal/textutil"
	"github.com/jonathan/promo-radar/internal/types"
)

// sectionKeywords drive the scored classification of candidate lines.
var sectionKeywords = map[types.SectionKind][]string{
	types.SectionBenefitDetail: {"혜택", "할인", "캐시백", "적립", "포인트", "무료", "증정", "할부", "무이자", "리워드", "보너스", "청구할인", "즉시할인"},
	types.SectionParticipation: {"참여", "응모", "신청", "등록", "접수", "가입", "다운로드", "설치", "앱", "온라인", "오프라인", "방법", "절차", "결제"},
	types.SectionCaution:       {"유의", "주의", "안내", "필수", "반드시", "확인", "주의사항", "필수사항", "고지", "참고"},
	types.SectionRestriction:   {"제한", "제외", "불가", "불가능", "한도", "최대", "최소", "월", "1회", "횟수", "선착순", "제한사항"},
	types.SectionPartnership:   {"제휴", "파트너", "협력", "브랜드", "스타벅스", "CGV", "롯데", "신세계", "이마트", "올리브영", "GS25", "CU", "배달의민족", "요기요"},
	types.SectionMarketingMsg:  {"특별", "프리미엄", "VIP", "신규", "첫", "한정", "오직", "단독", "이벤트", "프로모션", "웰컴", "한시적"},
	types.SectionTargetBase:    {"신규", "기존", "VIP", "프리미엄", "일반", "전체", "20대", "30대", "40대", "고객", "회원", "대상카드", "대상 카드"},
}

var (
	cautionHints       = []string{"유의", "주의", "반드시", "필수"}
	restrictionHints   = []string{"제한", "제외", "불가", "한도", "최대", "최소", "월", "횟수", "선착순"}
	participationHints = []string{"참여", "응모", "신청", "등록", "방법"}
	targetHints        = []string{"대상", "회원", "고객", "카드"}
)

var contentScopeSelectors = []string{
	"main", ".content", ".event-detail", `[class*="event"]`, `[class*="detail"]`, `[class*="campaign"]`, "article",
}

var titleClassSelectors = []string{
	".event-title", ".title", ".tit", ".campaign-title", `[class*="tit"]`, `[class*="title"]`,
}

var ogTitleSuffixes = []string{
	" | 삼성카드", " | Samsung", "- 삼성카드", "- Samsung",
	" | 신한카드", " | Shinhan", "- 신한카드", "- Shinhan",
	" | 현대카드", " | Hyundai", "- 현대카드", "- Hyundai",
	" | KB국민카드", " | KB카드", "- KB국민카드", "- KB카드",
	" :: 삼성카드", " :: 신한카드", " :: 현대카드", " :: KB국민카드",
}

var benefitTitleKeywords = []string{"혜택", "할인", "캐시백", "프로모션", "할부", "등록금", "자동차"}

// textWithSeparator walks the selection's text nodes, joining trimmed
// pieces with sep. goquery's Text() concatenates without separators, which
// glues adjacent lines together.
func textWithSeparator(sel *goquery.Selection, sep string) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, sep)
}

func titleOK(t string) bool {
	if len([]rune(t)) < 4 {
		return false
	}
	return !isHeaderLike(t) && !isNotificationBanner(t)
}

// extractTitle picks the event title out of the document body, skipping
// site chrome and entry-confirmation banners. Longer candidates rank
// higher; a candidate naming the benefit wins outright.
func extractTitle(doc *goquery.Document) string {
	var candidates []string
	add := func(t string) {
		t = textutil.CleanText(t)
		if titleOK(t) {
			candidates = append(candidates, t)
		}
	}

	for _, scopeSel := range contentScopeSelectors {
		scope := doc.Find(scopeSel).First()
		if scope.Length() == 0 {
			continue
		}
		scope.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) { add(s.Text()) })
	}
	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) { add(s.Text()) })
	for _, sel := range titleClassSelectors {
		if el := doc.Find(sel).First(); el.Length() > 0 {
			add(el.Text())
		}
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		t := strings.TrimSpace(og)
		for _, suffix := range ogTitleSuffixes {
			if strings.HasSuffix(t, suffix) {
				t = strings.TrimSpace(strings.TrimSuffix(t, suffix))
				break
			}
		}
		add(t)
	}
	if len(candidates) == 0 {
		return ""
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if len(candidates[i]) != len(candidates[j]) {
			return len(candidates[i]) > len(candidates[j])
		}
		return candidates[i] < candidates[j]
	})
	seen := map[string]struct{}{}
	var unique []string
	for _, t := range candidates {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}
	for _, t := range unique {
		if textutil.ContainsAny(t, benefitTitleKeywords) {
			return t
		}
	}
	return unique[0]
}

var (
	dateRangeRe = regexp.MustCompile(
		`(\d{2,4})[./-]\s*(\d{1,2})[./-]\s*(\d{1,2})\s*(?:\([^)]*\))?\s*(?:~|～|-|–|∼)\s*(\d{2,4})[./-]\s*(\d{1,2})[./-]\s*(\d{1,2})`)
	dateRangeNoEndYearRe = regexp.MustCompile(
		`(\d{2,4})[./-]\s*(\d{1,2})[./-]\s*(\d{1,2})\s*(?:\([^)]*\))?\s*(?:~|～|-|–|∼)\s*(\d{1,2})[./-]\s*(\d{1,2})`)
	koreanDateRangeRe = regexp.MustCompile(
		`(\d{2,4})\s*년\s*(\d{1,2})\s*월\s*(\d{1,2})\s*일?\s*(?:~|～|-|–|∼|부터)\s*(\d{2,4})\s*년\s*(\d{1,2})\s*월\s*(\d{1,2})\s*일?`)
)

func normalizeDatePart(year, month, day string) string {
	y, _ := strconv.Atoi(year)
	if len(year) == 2 {
		y += 2000
	}
	mo, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	return fmt.Sprintf("%04d.%02d.%02d", y, mo, d)
}

// extractDateRange finds the first date range in text, accepting dotted,
// dashed, and Korean 년/월/일 notations.
func extractDateRange(text string) string {
	normalized := textutil.CleanText(text)
	if normalized == "" {
		return ""
	}
	if m := dateRangeRe.FindStringSubmatch(normalized); m != nil {
		return normalizeDatePart(m[1], m[2], m[3]) + "~" + normalizeDatePart(m[4], m[5], m[6])
	}
	if m := dateRangeNoEndYearRe.FindStringSubmatch(normalized); m != nil {
		return normalizeDatePart(m[1], m[2], m[3]) + "~" + normalizeDatePart(m[1], m[4], m[5])
	}
	if m := koreanDateRangeRe.FindStringSubmatch(normalized); m != nil {
		return normalizeDatePart(m[1], m[2], m[3]) + "~" + normalizeDatePart(m[4], m[5], m[6])
	}
	return ""
}

var periodKeywords = []string{"기간", "이벤트 기간", "진행기간", "응모기간", "이용기간"}

// extractPeriod hunts for the event period: the top of the body first,
// then period-keyword lines, then the whole document, and finally the text
// around a 기간 label even when no parseable range exists.
func extractPeriod(doc *goquery.Document, rawText string) string {
	rawLines := SplitRawText(rawText)

	top := rawLines
	if len(top) > 40 {
		top = top[:40]
	}
	for _, line := range top {
		if period := extractDateRange(line); period != "" {
			return period
		}
	}

	for _, line := range rawLines {
		if textutil.ContainsAny(line, periodKeywords) {
			if period := extractDateRange(line); period != "" {
				return period
			}
		}
	}

	body := textutil.CleanText(textWithSeparator(doc.Selection, " ") + " " + rawText)
	if period := extractDateRange(body); period != "" {
		return period
	}

	for _, kw := range []string{"기간", "이벤트 기간", "진행기간"} {
		text := findLabeledText(doc, kw)
		if text == "" {
			continue
		}
		if period := extractDateRange(text); period != "" {
			return period
		}
		if n := len([]rune(text)); n > 5 && n < 120 {
			return textutil.Truncate(text, 100)
		}
	}

	for _, line := range rawLines {
		if strings.Contains(line, "기간") && len([]rune(line)) <= 240 {
			if period := extractDateRange(line); period != "" {
				return period
			}
			return line
		}
	}
	return ""
}

// findLabeledText locates the first element whose own text mentions the
// keyword and returns its parent's combined text.
func findLabeledText(doc *goquery.Document, keyword string) string {
	found := ""
	doc.Find("body *").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		own := ownText(s)
		if !strings.Contains(own, keyword) {
			return true
		}
		found = textutil.CleanText(s.Parent().Text())
		if found == "" {
			found = textutil.CleanText(own)
		}
		return false
	})
	return found
}

// ownText is the element's direct text content, child elements excluded.
func ownText(s *goquery.Selection) string {
	var parts []string
	for _, n := range s.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				if t := strings.TrimSpace(c.Data); t != "" {
					parts = append(parts, t)
				}
			}
		}
	}
	return strings.Join(parts, " ")
}

// collectBlocks gathers keyword-bearing text blocks: content-area elements
// first, then raw text lines, then the whole document.
func collectBlocks(doc *goquery.Document, keywords []string, rawText string, maxLen, maxBlocks int) []string {
	seen := map[string]struct{}{}
	var blocks []string

	tryAdd := func(text string) {
		if len(blocks) >= maxBlocks {
			return
		}
		cleaned := textutil.CleanText(text)
		n := len([]rune(cleaned))
		if n < 6 || n > maxLen {
			return
		}
		if isHeaderLike(cleaned) || isNotificationBanner(cleaned) || isNonMarketingNoise(cleaned) {
			return
		}
		if !textutil.ContainsAny(cleaned, keywords) {
			return
		}
		key := textutil.NormalizeKey(cleaned)
		if key == "" {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		blocks = append(blocks, cleaned)
	}

	areas := doc.Find(`main, article, .content, .event-detail, [class*="event"], [class*="detail"], [class*="campaign"]`)
	if areas.Length() == 0 {
		areas = doc.Selection
	}
	areas.Find("div, section, p, li, td, span, h2, h3, h4, dl, dd").
		EachWithBreak(func(_ int, s *goquery.Selection) bool {
			tryAdd(textWithSeparator(s, " "))
			return len(blocks) < maxBlocks
		})

	if len(blocks) < maxBlocks && rawText != "" {
		for _, line := range SplitRawText(rawText) {
			tryAdd(line)
			if len(blocks) >= maxBlocks {
				break
			}
		}
	}
	if len(blocks) < maxBlocks {
		for _, line := range SplitRawText(textWithSeparator(doc.Selection, "\n")) {
			tryAdd(line)
			if len(blocks) >= maxBlocks {
				break
			}
		}
	}
	return blocks
}

// inferBenefitType classifies the benefit by the first matching family, in
// fixed priority order.
func inferBenefitType(fullText string) string {
	t := strings.ToLower(fullText)
	switch {
	case strings.Contains(t, "할인"):
		return "할인"
	case strings.Contains(t, "캐시백"):
		return "캐시백"
	case strings.Contains(t, "포인트") || strings.Contains(t, "적립"):
		return "포인트적립"
	case strings.Contains(t, "무이자") || strings.Contains(t, "할부"):
		return "무이자할부"
	case strings.Contains(t, "증정") || strings.Contains(t, "무료"):
		return "사은품"
	default:
		return "기타"
	}
}

var (
	amountMentionRe  = regexp.MustCompile(`(\d[\d,]{0,8})\s*(만|천)?\s*원`)
	percentMentionRe = regexp.MustCompile(`(\d{1,3}(?:\.\d+)?)\s*(?:%|％|퍼센트)`)
)

// extractAmountsAndPercents lists every distinct amount and percentage
// mention, preserving first-seen order.
func extractAmountsAndPercents(text string) (amounts, percents []string) {
	seenAmounts := map[string]struct{}{}
	for _, m := range amountMentionRe.FindAllStringSubmatch(text, -1) {
		value := strings.ReplaceAll(m[1]+m[2]+"원", " ", "")
		if _, dup := seenAmounts[value]; dup {
			continue
		}
		seenAmounts[value] = struct{}{}
		amounts = append(amounts, value)
	}
	seenPercents := map[string]struct{}{}
	for _, m := range percentMentionRe.FindAllStringSubmatch(text, -1) {
		value := m[1] + "%"
		if _, dup := seenPercents[value]; dup {
			continue
		}
		seenPercents[value] = struct{}{}
		percents = append(percents, value)
	}
	return amounts, percents
}
