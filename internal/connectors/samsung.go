package connectors

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/promo-radar/internal/browser"
	"github.com/jonathan/promo-radar/internal/textutil"
	"github.com/jonathan/promo-radar/internal/types"
)

// noResultsMarker is what Samsung's detail page renders for an unused
// cms_id. Hitting it counts as a probe miss.
const noResultsMarker = "조회 결과가 없습니다"

// Samsung has no crawlable listing; event pages live under sequential
// cms_id values. The crawl probes an ID window and stops after a run of
// consecutive misses.
type Samsung struct {
	Base
	detailBase string
	idStart    int
	idEnd      int
	maxMisses  int
}

func NewSamsung() *Samsung {
	return &Samsung{
		Base: Base{
			CompanyName: "삼성카드",
			ListURL:     "https://www.samsungcard.com/personal/event/ing/UHPPBE1403M0.jsp",
		},
		detailBase: "https://www.samsungcard.com/personal/event/ing/UHPPBE1403M0.jsp?cms_id=",
		idStart:    3733000,
		idEnd:      3740000,
		maxMisses:  60,
	}
}

// SetIDRange narrows the probe window, mainly for incremental runs.
func (c *Samsung) SetIDRange(start, end int) {
	c.idStart = start
	c.idEnd = end
}

var (
	samsungHeaderNoise  = []string{"삼성카드", "삼성 카드", "로그인", "마이페이지", "이벤트 목록"}
	samsungNotification = []string{"이벤트에 응모되었습니다", "이벤트에 응모 되었습니다"}
)

func (c *Samsung) Crawl(ctx context.Context, session browser.Session) ([]types.RawEvent, error) {
	var events []types.RawEvent
	misses := 0

	for cmsID := c.idStart; cmsID < c.idEnd; cmsID++ {
		if err := ctx.Err(); err != nil {
			return events, err
		}

		pageURL := fmt.Sprintf("%s%d", c.detailBase, cmsID)
		if err := session.Navigate(ctx, pageURL, 12*time.Second); err != nil {
			misses++
			if misses >= c.maxMisses {
				break
			}
			continue
		}
		html, err := session.HTML(ctx)
		if err != nil {
			misses++
			if misses >= c.maxMisses {
				break
			}
			continue
		}
		if strings.Contains(html, noResultsMarker) {
			misses++
			if misses >= c.maxMisses {
				break
			}
			continue
		}
		misses = 0

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			continue
		}
		title := extractSamsungTitle(doc)
		if len([]rune(title)) < 3 {
			continue
		}

		event, err := c.BuildEvent(EventParams{
			URL:     pageURL,
			Title:   title,
			Period:  extractPeriodFromText(textutil.CleanText(doc.Text())),
			RawText: doc.Text(),
		})
		if err != nil {
			continue
		}
		events = append(events, event)
	}

	log.Printf("[ingest][samsung] collected=%d", len(events))
	return events, nil
}

// extractSamsungTitle walks content containers for the first real heading,
// then falls back to og:title with the site suffix stripped.
func extractSamsungTitle(doc *goquery.Document) string {
	for _, scopeSel := range []string{"main", ".content", ".event-detail", `[class*="event"]`, "article"} {
		scope := doc.Find(scopeSel).First()
		if scope.Length() == 0 {
			continue
		}
		title := ""
		scope.Find("h1, h2, h3").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
			t := textutil.CleanText(heading.Text())
			if len([]rune(t)) < 4 {
				return true
			}
			if textutil.ContainsAny(t, samsungHeaderNoise) {
				return true
			}
			for _, prefix := range samsungNotification {
				if strings.HasPrefix(t, prefix) {
					return true
				}
			}
			title = t
			return false
		})
		if title != "" {
			return title
		}
	}

	og, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	t := textutil.CleanText(og)
	for _, suffix := range []string{" | 삼성카드", "- 삼성카드"} {
		t = strings.TrimSpace(strings.TrimSuffix(t, suffix))
	}
	if len([]rune(t)) >= 4 {
		return t
	}
	return ""
}
