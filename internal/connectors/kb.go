package connectors

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/promo-radar/internal/browser"
	"github.com/jonathan/promo-radar/internal/textutil"
	"github.com/jonathan/promo-radar/internal/types"
)

// KB serves its listing server-rendered, paged through a form POST. Detail
// links are javascript:goDetail('NNN') calls, so detail URLs are rebuilt
// from the event number.
type KB struct {
	Base
	maxPage int
}

func NewKB() *KB {
	return &KB{
		Base: Base{
			CompanyName: "KB국민카드",
			ListURL:     "https://card.kbcard.com/BON/DVIEW/HBBMCXCRVNEC0001",
		},
		maxPage: 40,
	}
}

func (c *KB) Crawl(ctx context.Context, session browser.Session) ([]types.RawEvent, error) {
	var events []types.RawEvent
	seen := map[string]struct{}{}

	// Hit the listing once in the tab so the site sets its session cookies.
	if err := session.Navigate(ctx, c.ListURL, 30*time.Second); err != nil {
		log.Printf("[ingest][kb] listing open failed: %v", err)
		return events, nil
	}

	for pageNo := 1; pageNo <= c.maxPage; pageNo++ {
		html := c.fetchPage(ctx, session, pageNo)
		if html == "" {
			break
		}
		pageEvents := c.parseListing(html)
		if len(pageEvents) == 0 {
			break
		}

		added := 0
		for _, event := range pageEvents {
			key := EventKey(event.SourceURL, event.Title, event.Period)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			events = append(events, event)
			added++
		}
		if added == 0 {
			break
		}
	}

	log.Printf("[ingest][kb] collected=%d", len(events))
	return events, nil
}

func (c *KB) fetchPage(ctx context.Context, session browser.Session, pageNo int) string {
	body, err := session.SubmitForm(ctx, c.ListURL, map[string]string{
		"pageCount": strconv.Itoa(pageNo),
		"카드이벤트구분":   "",
		"이벤트혜택구분":   "ALL",
		"이벤트일련번호":   "",
		"가맹점분류코드":   "",
		"prevUrl":   "HBBMCXCRVNEC0001",
		"대고객게시여부":   "",
		"admin":     "",
	})
	if err != nil {
		log.Printf("[ingest][kb] page=%d fetch failed: %v", pageNo, err)
		return ""
	}
	return string(body)
}

func (c *KB) parseListing(html string) []types.RawEvent {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var events []types.RawEvent
	doc.Find("#main_contents a[href^='javascript:goDetail'], .eventList a[href^='javascript:goDetail']").
		Each(func(_ int, anchor *goquery.Selection) {
			href, _ := anchor.Attr("href")
			eventNo := extractKBEventNo(href)
			if eventNo == "" {
				return
			}
			title := c.extractTitle(anchor)
			if title == "" {
				return
			}

			blockText := textutil.CleanText(anchor.Text())
			detailURL := fmt.Sprintf("%s?mainCC=a&eventNum=%s", c.ListURL, eventNo)

			event, err := c.BuildEvent(EventParams{
				URL:     detailURL,
				Title:   title,
				Period:  extractKBPeriod(blockText),
				RawText: blockText,
			})
			if err != nil {
				return
			}
			events = append(events, event)
		})
	return events
}

var kbEventNoRe = regexp.MustCompile(`goDetail\('(\d+)'`)

func extractKBEventNo(href string) string {
	m := kbEventNoRe.FindStringSubmatch(href)
	if m == nil {
		return ""
	}
	return m[1]
}

var kbStripPeriodRe = regexp.MustCompile(
	`\d{4}\.\d{1,2}\.\d{1,2}\s*(?:\([^)]*\))?\s*(?:~|∼|～|-|–)\s*\d{1,4}\.\d{1,2}\.\d{1,2}\s*(?:\([^)]*\))?`)

func (c *KB) extractTitle(anchor *goquery.Selection) string {
	for _, selector := range []string{".evtlist-desc .tit", ".evtlist-desc .title", ".tit", ".title", "strong"} {
		el := anchor.Find(selector).First()
		if el.Length() > 0 {
			if title := CleanTitle(el.Text()); title != "" {
				return title
			}
		}
	}

	if img := anchor.Find("img[alt]").First(); img.Length() > 0 {
		alt, _ := img.Attr("alt")
		if title := CleanTitle(alt); title != "" {
			return title
		}
	}

	// Last resort: strip the date range out of the block text.
	text := textutil.CleanText(anchor.Text())
	text = kbStripPeriodRe.ReplaceAllString(text, "")
	return CleanTitle(textutil.Truncate(text, 80))
}

var kbPeriodRe = regexp.MustCompile(
	`(\d{4}\.\d{1,2}\.\d{1,2})(?:\([^)]*\))?\s*(?:~|∼|～|-|–)\s*(\d{1,4}(?:\.\d{1,2}){1,2})(?:\([^)]*\))?`)

// extractKBPeriod handles KB's habit of writing the end date without a year,
// like "2026.2.1(토) ~ 2.28(금)".
func extractKBPeriod(text string) string {
	m := kbPeriodRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	start, end := m[1], m[2]
	if strings.Count(end, ".") == 1 {
		startYear := strings.SplitN(start, ".", 2)[0]
		end = startYear + "." + end
	}
	return textutil.NormalizePeriod(start + "~" + end)
}
