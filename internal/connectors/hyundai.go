package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/promo-radar/internal/browser"
	"github.com/jonathan/promo-radar/internal/textutil"
	"github.com/jonathan/promo-radar/internal/types"
)

// Hyundai renders its listing client-side behind a load-more button. The
// crawl walks the DOM while clicking through the pager, then falls back to
// the listing API when the DOM yielded too little.
type Hyundai struct {
	Base
	apiURL     string
	detailPath string
}

func NewHyundai() *Hyundai {
	return &Hyundai{
		Base: Base{
			CompanyName: "현대카드",
			ListURL:     "https://www.hyundaicard.com/cpb/ev/CPBEV0101_01.hc",
		},
		apiURL:     "https://www.hyundaicard.com/cpb/ev/apiCPBEV0101_05s.hc",
		detailPath: "/cpb/ev/CPBEV0101_06.hc",
	}
}

// hyundaiDOMRow is one listing item as scraped in-page.
type hyundaiDOMRow struct {
	Href    string `json:"href"`
	Title   string `json:"title"`
	Period  string `json:"period"`
	RawText string `json:"raw_text"`
}

// domRowsJS serializes every listing item in one evaluation round trip.
const domRowsJS = `
(() => {
  const items = Array.from(document.querySelectorAll('#event_list1 li'));
  return items.map((li) => {
    const anchor = li.querySelector('a[href*="CPBEV0101_06.hc"]');
    if (!anchor) return null;
    const titleEl = li.querySelector('.txt_title');
    const dateEl = li.querySelector('.txt_date');
    return {
      href: anchor.getAttribute('href') || '',
      title: (titleEl ? titleEl.textContent : anchor.textContent) || '',
      period: (dateEl ? dateEl.textContent : '') || '',
      raw_text: li.innerText || ''
    };
  }).filter(Boolean);
})()`

func (c *Hyundai) Crawl(ctx context.Context, session browser.Session) ([]types.RawEvent, error) {
	var events []types.RawEvent
	seen := map[string]struct{}{}

	if err := session.Navigate(ctx, c.ListURL, 30*time.Second); err != nil {
		log.Printf("[ingest][hyundai] listing open failed: %v", err)
		return events, nil
	}

	events = c.collectFromDOM(ctx, session, events, seen)
	events = c.loadMoreAndCollect(ctx, session, events, seen)

	if len(events) < 80 {
		events = c.collectFromAPI(ctx, session, events, seen)
	}

	log.Printf("[ingest][hyundai] collected=%d", len(events))
	return events, nil
}

func (c *Hyundai) collectFromDOM(ctx context.Context, session browser.Session, events []types.RawEvent, seen map[string]struct{}) []types.RawEvent {
	var rows []hyundaiDOMRow
	if err := session.Evaluate(ctx, domRowsJS, &rows); err != nil {
		log.Printf("[ingest][hyundai] listing scrape failed: %v", err)
		return events
	}
	for _, row := range rows {
		if row.Href == "" || row.Title == "" {
			continue
		}
		event, err := c.BuildEvent(EventParams{
			URL:     row.Href,
			Title:   row.Title,
			Period:  row.Period,
			RawText: row.RawText,
		})
		if err != nil {
			continue
		}
		key := EventKey(event.SourceURL, event.Title, event.Period)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		events = append(events, event)
	}
	return events
}

func (c *Hyundai) loadMoreAndCollect(ctx context.Context, session browser.Session, events []types.RawEvent, seen map[string]struct{}) []types.RawEvent {
	stagnant := 0
	for i := 0; i < 12; i++ {
		var visible bool
		err := session.Evaluate(ctx,
			`(() => { const el = document.querySelector('#moreDiv'); return !!el && el.offsetParent !== null; })()`,
			&visible)
		if err != nil || !visible {
			break
		}

		before := c.listItemCount(ctx, session)
		if err := session.Click(ctx, "#moreDiv .btn-more"); err != nil {
			log.Printf("[ingest][hyundai] load-more click failed: %v", err)
		}
		after := c.listItemCount(ctx, session)

		events = c.collectFromDOM(ctx, session, events, seen)

		if after <= before {
			stagnant++
			if stagnant >= 2 {
				break
			}
		} else {
			stagnant = 0
		}
	}
	return events
}

func (c *Hyundai) listItemCount(ctx context.Context, session browser.Session) int {
	var count int
	_ = session.Evaluate(ctx, `document.querySelectorAll('#event_list1 li').length`, &count)
	return count
}

type hyundaiAPIItem struct {
	BnftWebEvntCd string `json:"bnftWebEvntCd"`
	BnftEvntNm    string `json:"bnftEvntNm"`
	SrtDttm       string `json:"srtDttm"`
	EndDttm       string `json:"endDttm"`
	BnftEvntSmrCn string `json:"bnftEvntSmrCn"`
}

type hyundaiAPIResponse struct {
	Bdy struct {
		EventList []hyundaiAPIItem `json:"eventList"`
		Paging    struct {
			Rnum  string `json:"rnum"`
			Index string `json:"index"`
		} `json:"cpbev0101_0103VO"`
	} `json:"bdy"`
}

func (c *Hyundai) collectFromAPI(ctx context.Context, session browser.Session, events []types.RawEvent, seen map[string]struct{}) []types.RawEvent {
	rnum := c.inputValue(ctx, session, "#rnum", "56")
	index := c.inputValue(ctx, session, "#index", "29")
	searchWord := c.inputValue(ctx, session, "#searchWord1", "")
	ctgr := c.inputValue(ctx, session, "#evntCtgrVl", "")

	for page := 0; page < 10; page++ {
		body, err := session.SubmitForm(ctx, c.apiURL, map[string]string{
			"rnum":       rnum,
			"index":      index,
			"searchWord": searchWord,
			"evntCtgrVl": ctgr,
		})
		if err != nil {
			log.Printf("[ingest][hyundai] api fetch failed: %v", err)
			break
		}
		var resp hyundaiAPIResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			log.Printf("[ingest][hyundai] api decode failed: %v", err)
			break
		}
		if len(resp.Bdy.EventList) == 0 {
			break
		}

		for _, item := range resp.Bdy.EventList {
			event, ok := c.eventFromAPIItem(item, searchWord)
			if !ok {
				continue
			}
			key := EventKey(event.SourceURL, event.Title, event.Period)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			events = append(events, event)
		}

		nextRnum := nextCursor(resp.Bdy.Paging.Rnum, rnum, 28)
		nextIndex := nextCursor(resp.Bdy.Paging.Index, index, 28)
		if nextRnum == rnum && nextIndex == index {
			break
		}
		rnum, index = nextRnum, nextIndex
	}
	return events
}

func (c *Hyundai) eventFromAPIItem(item hyundaiAPIItem, searchWord string) (types.RawEvent, bool) {
	eventCode := textutil.CleanText(item.BnftWebEvntCd)
	title := CleanTitle(item.BnftEvntNm)
	if eventCode == "" || title == "" {
		return types.RawEvent{}, false
	}

	period := textutil.NormalizePeriod(
		textutil.CleanText(item.SrtDttm) + "~" + textutil.CleanText(item.EndDttm))
	detailHref := fmt.Sprintf("%s?bnftWebEvntCd=%s&searchWord=%s", c.detailPath, eventCode, searchWord)

	var rawParts []string
	for _, part := range []string{title, textutil.CleanText(item.SrtDttm), textutil.CleanText(item.EndDttm), textutil.CleanText(item.BnftEvntSmrCn)} {
		if part != "" {
			rawParts = append(rawParts, part)
		}
	}

	event, err := c.BuildEvent(EventParams{
		URL:     detailHref,
		Title:   title,
		Period:  period,
		RawText: strings.Join(rawParts, " | "),
	})
	if err != nil {
		return types.RawEvent{}, false
	}
	return event, true
}

func (c *Hyundai) inputValue(ctx context.Context, session browser.Session, selector, fallback string) string {
	js := fmt.Sprintf(
		`(() => { const el = document.querySelector(%q); return el ? el.value : ""; })()`, selector)
	var value string
	if err := session.Evaluate(ctx, js, &value); err != nil {
		return fallback
	}
	if v := textutil.CleanText(value); v != "" {
		return v
	}
	return fallback
}

// nextCursor advances a numeric paging cursor by step, preferring the value
// the API echoed back over the one we sent.
func nextCursor(fromAPI, current string, step int) string {
	if v, err := strconv.Atoi(textutil.CleanText(fromAPI)); err == nil {
		return strconv.Itoa(v + step)
	}
	if v, err := strconv.Atoi(textutil.CleanText(current)); err == nil {
		return strconv.Itoa(v + step)
	}
	return current
}
