package connectors

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/jonathan/promo-radar/internal/textutil"
	"github.com/jonathan/promo-radar/internal/types"
)

// ErrInvalidEvent marks an item rejected by the event-building gate.
var ErrInvalidEvent = errors.New("event requires a canonical url and a title")

// categoryKeywords maps each category to its trigger words. Evaluated in
// categoryOrder; the first category with a hit wins.
var categoryKeywords = map[string][]string{
	"여행":  {"여행", "호텔", "항공", "리조트", "해외", "마일리지"},
	"쇼핑":  {"쇼핑", "백화점", "마트", "온라인", "쿠팡", "11번가"},
	"식음료": {"식사", "레스토랑", "다이닝", "스타벅스", "카페", "배달", "음식"},
	"교통":  {"자동차", "주유", "차량", "하이패스", "교통"},
	"문화":  {"영화", "공연", "문화", "CGV", "도서", "OTT"},
	"금융":  {"금리", "대출", "할부", "금융", "적금", "예금"},
	"통신":  {"통신", "넷플릭스", "유튜브", "구독", "멜론"},
}

var categoryOrder = []string{"여행", "쇼핑", "식음료", "교통", "문화", "금융", "통신"}

var (
	threatHighMarkers = []string{"10만원", "20만원", "30만원", "50만원", "100만원", "최대", "프리미엄", "VIP"}
	threatMidMarkers  = []string{"1만원", "2만원", "3만원", "5만원", "5천원", "캐시백", "할인"}
)

// dropQueryKeys are tracking parameters stripped during canonicalization.
var dropQueryKeys = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_content":  {},
	"utm_term":     {},
	"fbclid":       {},
	"gclid":        {},
	"vst_clck_nm":  {},
	"vst_page_nm":  {},
}

// titleNoise are chrome strings listing pages emit as link text. A title
// that is exactly one of these carries no information.
var titleNoise = []string{"진행중 이벤트", "이벤트", "혜택", "상세", "본문 바로가기"}

// Base holds per-site identity and the shared normalization helpers every
// connector builds its events through.
type Base struct {
	CompanyName string
	ListURL     string
}

func (b *Base) Company() string { return b.CompanyName }

// CanonicalURL resolves href against the listing URL and normalizes it:
// tracking parameters and blank searchWord dropped, query keys sorted,
// fragment removed. Returns "" for non-HTTP schemes or anything without a
// scheme and host after resolution.
func (b *Base) CanonicalURL(href string) string {
	return CanonicalURL(href, b.ListURL)
}

// CanonicalURL is the standalone form used when resolving against a page
// other than the connector's listing URL.
func CanonicalURL(href, baseURL string) string {
	raw := textutil.CleanText(href)
	if raw == "" {
		return ""
	}
	lowered := strings.ToLower(raw)
	for _, scheme := range []string{"javascript:", "mailto:", "tel:"} {
		if strings.HasPrefix(lowered, scheme) {
			return ""
		}
	}

	abs := raw
	if baseURL != "" {
		base, err := url.Parse(baseURL)
		if err == nil {
			ref, err := url.Parse(raw)
			if err != nil {
				return ""
			}
			abs = base.ResolveReference(ref).String()
		}
	}

	parsed, err := url.Parse(abs)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}

	type pair struct{ k, v string }
	var kept []pair
	for _, item := range strings.Split(parsed.RawQuery, "&") {
		if item == "" {
			continue
		}
		k, v, _ := strings.Cut(item, "=")
		key, err1 := url.QueryUnescape(k)
		val, err2 := url.QueryUnescape(v)
		if err1 != nil || err2 != nil {
			key, val = k, v
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if key == "" {
			continue
		}
		if _, drop := dropQueryKeys[strings.ToLower(key)]; drop {
			continue
		}
		if key == "searchWord" && val == "" {
			continue
		}
		kept = append(kept, pair{key, val})
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].k != kept[j].k {
			return kept[i].k < kept[j].k
		}
		return kept[i].v < kept[j].v
	})

	q := url.Values{}
	for _, p := range kept {
		q.Add(p.k, p.v)
	}
	parsed.RawQuery = q.Encode()
	parsed.Fragment = ""
	return parsed.String()
}

// CleanTitle collapses whitespace and rejects titles that are exactly a
// listing chrome string.
func CleanTitle(title string) string {
	text := textutil.CleanText(title)
	for _, noise := range titleNoise {
		if text == noise {
			return ""
		}
	}
	return text
}

// InferCategory picks the first category whose keywords appear in the text,
// defaulting to 생활.
func InferCategory(text string) string {
	for _, cat := range categoryOrder {
		if textutil.ContainsAny(text, categoryKeywords[cat]) {
			return cat
		}
	}
	return "생활"
}

// InferThreat buckets the text by benefit-size markers.
func InferThreat(text string) string {
	if textutil.ContainsAny(text, threatHighMarkers) {
		return types.ThreatHigh
	}
	if textutil.ContainsAny(text, threatMidMarkers) {
		return types.ThreatMid
	}
	return types.ThreatLow
}

// EventKey dedups crawled items: the lowercased URL when present, otherwise
// title plus period.
func EventKey(eventURL, title, period string) string {
	if eventURL != "" {
		return "url::" + strings.ToLower(eventURL)
	}
	return fmt.Sprintf("title::%s::%s",
		strings.ToLower(textutil.CleanText(title)),
		strings.ToLower(textutil.CleanText(period)))
}

// EventParams is the raw material for one crawled event.
type EventParams struct {
	URL           string
	Title         string
	Period        string
	RawText       string
	BenefitType   string
	BenefitValue  string
	Conditions    string
	TargetSegment string
}

// BuildEvent is the validating gate every connector item passes through.
// It canonicalizes the URL, cleans the title, normalizes the period, trims
// raw text to 800 runes, and infers category and threat level. Items whose
// URL or title clean away to nothing are rejected with ErrInvalidEvent.
func (b *Base) BuildEvent(p EventParams) (types.RawEvent, error) {
	cleanURL := b.CanonicalURL(p.URL)
	cleanTitle := CleanTitle(p.Title)
	if cleanURL == "" || cleanTitle == "" {
		return types.RawEvent{}, ErrInvalidEvent
	}

	cleanPeriod := textutil.NormalizePeriod(p.Period)
	cleanRaw := textutil.Truncate(textutil.CleanText(p.RawText), 800)
	categorySource := strings.TrimSpace(cleanTitle + " " + cleanRaw)
	threatSource := strings.TrimSpace(cleanTitle + " " + cleanPeriod + " " + cleanRaw)

	return types.RawEvent{
		SourceURL:     cleanURL,
		Company:       b.CompanyName,
		Title:         cleanTitle,
		Period:        cleanPeriod,
		Category:      InferCategory(categorySource),
		BenefitType:   textutil.CleanText(p.BenefitType),
		BenefitValue:  textutil.CleanText(p.BenefitValue),
		Conditions:    textutil.CleanText(p.Conditions),
		TargetSegment: textutil.CleanText(p.TargetSegment),
		ThreatLevel:   InferThreat(threatSource),
		Summary:       cleanTitle,
		RawText:       cleanRaw,
	}, nil
}
