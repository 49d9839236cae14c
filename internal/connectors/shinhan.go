package connectors

import (
	"context"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/promo-radar/internal/browser"
	"github.com/jonathan/promo-radar/internal/textutil"
	"github.com/jonathan/promo-radar/internal/types"
)

// Shinhan exposes its event inventory three ways, in decreasing order of
// completeness: static JSON catalogs, a mobile AJAX endpoint, and the
// rendered listing DOM. Each tier only runs when the previous ones came up
// short.
type Shinhan struct {
	Base
	jsonURLs  []string
	mobileURL string
}

func NewShinhan() *Shinhan {
	return &Shinhan{
		Base: Base{
			CompanyName: "신한카드",
			ListURL:     "https://www.shinhancard.com/mob/MOBFM829N/MOBFM829R03.shc?sourcePage=R01",
		},
		jsonURLs: []string{
			"https://www.shinhancard.com/logic/json/evnPgsList01.json",
			"https://www.shinhancard.com/logic/json/evnPgsList02.json",
			"https://www.shinhancard.com/logic/json/evnPgsList03.json",
		},
		mobileURL: "https://www.shinhancard.com/mob/MOBFM829N/MOBFM829R03.ajax",
	}
}

type shinhanItem struct {
	MobWbEvtNm    string `json:"mobWbEvtNm"`
	EvtImgSlTilNm string `json:"evtImgSlTilNm"`
	EvtImgRplNm   string `json:"evtImgRplNm"`
	HpgEvtDetail  string `json:"hpgEvtDlPgeUrlAr"`
	EvtDtlURL     string `json:"evtDtlUrl"`
	EvtURLAr      string `json:"evtUrlAr"`
	MobWbEvtStd   string `json:"mobWbEvtStd"`
	MobWbEvtEdd   string `json:"mobWbEvtEdd"`
	EvtTermTxt    string `json:"evtTermTxt"`
	EventPeriod   string `json:"eventPeriod"`
	HpgEvtSmrTt   string `json:"hpgEvtSmrTt"`
}

type shinhanPayload struct {
	Root struct {
		EvnList []shinhanItem `json:"evnlist"`
	} `json:"root"`
	Mbw struct {
		DpEvtList  []shinhanItem `json:"dpEvtList"`
		IngEvtList []shinhanItem `json:"ingEvtList"`
		ZipEvtList []shinhanItem `json:"zipEvtList"`
		EvtList    []shinhanItem `json:"evtList"`
	} `json:"mbw_json"`
}

func (p *shinhanPayload) items() []shinhanItem {
	var items []shinhanItem
	items = append(items, p.Root.EvnList...)
	items = append(items, p.Mbw.DpEvtList...)
	items = append(items, p.Mbw.IngEvtList...)
	items = append(items, p.Mbw.ZipEvtList...)
	items = append(items, p.Mbw.EvtList...)
	return items
}

func (c *Shinhan) Crawl(ctx context.Context, session browser.Session) ([]types.RawEvent, error) {
	var events []types.RawEvent
	seen := map[string]struct{}{}

	events = append(events, c.crawlJSONCatalogs(ctx, session, seen)...)
	if len(events) < 100 {
		events = append(events, c.crawlMobileAjax(ctx, session, seen)...)
	}
	if len(events) < 80 {
		events = append(events, c.crawlDOM(ctx, session, seen)...)
	}

	log.Printf("[ingest][shinhan] collected=%d", len(events))
	return events, nil
}

func (c *Shinhan) crawlJSONCatalogs(ctx context.Context, session browser.Session, seen map[string]struct{}) []types.RawEvent {
	var collected []types.RawEvent
	for _, jsonURL := range c.jsonURLs {
		var payload shinhanPayload
		if err := session.RequestJSON(ctx, jsonURL, &payload); err != nil {
			log.Printf("[ingest][shinhan] json fetch failed %s: %v", jsonURL, err)
			continue
		}
		for _, item := range payload.items() {
			event, ok := c.eventFromItem(item)
			if !ok {
				continue
			}
			key := EventKey(event.SourceURL, event.Title, event.Period)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			collected = append(collected, event)
		}
	}
	return collected
}

func (c *Shinhan) crawlMobileAjax(ctx context.Context, session browser.Session, seen map[string]struct{}) []types.RawEvent {
	var payload shinhanPayload
	if err := session.RequestJSON(ctx, c.mobileURL, &payload); err != nil {
		log.Printf("[ingest][shinhan] mobile ajax failed: %v", err)
		return nil
	}
	var collected []types.RawEvent
	for _, item := range payload.items() {
		event, ok := c.eventFromItem(item)
		if !ok {
			continue
		}
		key := EventKey(event.SourceURL, event.Title, event.Period)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		collected = append(collected, event)
	}
	return collected
}

func (c *Shinhan) crawlDOM(ctx context.Context, session browser.Session, seen map[string]struct{}) []types.RawEvent {
	if err := session.Navigate(ctx, c.ListURL, 30*time.Second); err != nil {
		log.Printf("[ingest][shinhan] listing open failed: %v", err)
		return nil
	}

	// Infinite-scroll listing; nudge it until enough items render.
	for i := 0; i < 8; i++ {
		var count int
		err := session.Evaluate(ctx,
			`document.querySelectorAll('#evtList li.list_area, #evtList [data-bind-item]').length`, &count)
		if err == nil && count >= 50 {
			break
		}
		_ = session.ScrollToBottom(ctx)
	}

	html, err := session.HTML(ctx)
	if err != nil {
		log.Printf("[ingest][shinhan] listing read failed: %v", err)
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var collected []types.RawEvent
	doc.Find("a[href*='/pconts/html/benefit/event/'], a[href*='/evt/'], a[href*='MOBEVENTN'], a[href*='MOBFM829R02']").
		Each(func(_ int, anchor *goquery.Selection) {
			href, _ := anchor.Attr("href")
			eventURL := c.CanonicalURL(href)
			if eventURL == "" {
				return
			}
			container := anchor.Closest("li, div, article, section")
			if container.Length() == 0 {
				container = anchor
			}
			title := CleanTitle(anchor.Text())
			rawText := textutil.CleanText(container.Text())
			if title == "" {
				title = inferTitleFromBlock(rawText)
			}
			if title == "" {
				return
			}

			event, err := c.BuildEvent(EventParams{
				URL:     eventURL,
				Title:   title,
				Period:  extractPeriodFromText(rawText),
				RawText: rawText,
			})
			if err != nil {
				return
			}
			key := EventKey(event.SourceURL, event.Title, event.Period)
			if _, dup := seen[key]; dup {
				return
			}
			seen[key] = struct{}{}
			collected = append(collected, event)
		})
	return collected
}

func (c *Shinhan) eventFromItem(item shinhanItem) (types.RawEvent, bool) {
	title := CleanTitle(firstNonEmpty(item.MobWbEvtNm, item.EvtImgSlTilNm, item.EvtImgRplNm))
	if title == "" {
		return types.RawEvent{}, false
	}
	href := firstNonEmpty(item.HpgEvtDetail, item.EvtDtlURL, item.EvtURLAr)
	eventURL := c.CanonicalURL(href)
	if eventURL == "" {
		return types.RawEvent{}, false
	}

	period := textutil.BuildPeriod(item.MobWbEvtStd, item.MobWbEvtEdd)
	if period == "" {
		period = textutil.NormalizePeriod(firstNonEmpty(item.EvtTermTxt, item.EventPeriod))
	}

	rawParts := []string{
		title,
		textutil.CleanText(item.HpgEvtSmrTt),
		textutil.CleanText(item.EvtImgSlTilNm),
		textutil.CleanText(item.EvtImgRplNm),
		period,
	}
	var nonEmpty []string
	for _, part := range rawParts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}

	event, err := c.BuildEvent(EventParams{
		URL:     eventURL,
		Title:   title,
		Period:  period,
		RawText: strings.Join(nonEmpty, " | "),
	})
	if err != nil {
		return types.RawEvent{}, false
	}
	return event, true
}

var listPeriodRe = regexp.MustCompile(
	`(\d{2,4}[./-]\d{1,2}[./-]\d{1,2})\s*(?:~|∼|～|-|–)\s*(\d{2,4}[./-]\d{1,2}[./-]\d{1,2})`)

// extractPeriodFromText finds the first date range in a listing block.
func extractPeriodFromText(text string) string {
	m := listPeriodRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return textutil.NormalizePeriod(m[1] + "~" + m[2])
}

var blockSplitRe = regexp.MustCompile(`[|·•]+`)

// inferTitleFromBlock pulls a plausible title out of a listing block when
// the anchor itself only carries chrome text.
func inferTitleFromBlock(text string) string {
	for _, chunk := range blockSplitRe.Split(text, -1) {
		candidate := CleanTitle(chunk)
		if candidate == "" || len([]rune(candidate)) < 4 {
			continue
		}
		if strings.Contains(candidate, "이벤트") || strings.Contains(candidate, "혜택") {
			return candidate
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
