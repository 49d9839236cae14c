// Package browser provides a headless browser session shared across a
// pipeline run. Connectors navigate card-site listing pages through it and
// the extraction engine renders detail pages with it.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// userAgent is a realistic desktop UA. Card sites serve stripped-down or
// blocked pages to obvious headless agents.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Session is one live browser tab plus an HTTP surface sharing its identity.
// All methods honor ctx cancellation.
type Session interface {
	// Navigate loads a URL and waits for the body to be ready.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// HTML returns the current document's outer HTML.
	HTML(ctx context.Context) (string, error)
	// Text returns the rendered inner text of the first node matching the
	// selector, or "" when no node matches.
	Text(ctx context.Context, selector string) (string, error)
	// Evaluate runs a JavaScript expression and unmarshals the result.
	Evaluate(ctx context.Context, js string, out any) error
	// Click clicks the first visible node matching the selector.
	Click(ctx context.Context, selector string) error
	// ScrollToBottom scrolls the page end-wards to trigger lazy loading.
	ScrollToBottom(ctx context.Context) error
	// SubmitForm POSTs urlencoded fields outside the tab, carrying the
	// session user agent.
	SubmitForm(ctx context.Context, url string, fields map[string]string) ([]byte, error)
	// RequestJSON GETs a URL outside the tab and decodes the JSON body.
	RequestJSON(ctx context.Context, url string, out any) error
	// Close releases the tab and the underlying browser process.
	Close()
}

// NavigationError reports a page that could not be loaded. Crawls treat it
// as a per-page failure, not a fatal one.
type NavigationError struct {
	URL   string
	Cause error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Cause)
}

func (e *NavigationError) Unwrap() error { return e.Cause }

type chromeSession struct {
	tabCtx     context.Context
	cancelTab  context.CancelFunc
	cancelAll  context.CancelFunc
	httpClient *http.Client
}

// NewSession launches a headless Chrome and opens one tab. The returned
// error is fatal to the run: without a browser nothing can be crawled.
func NewSession(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(userAgent),
		chromedp.WindowSize(1366, 900),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// Start the browser now so allocation failures surface here.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start headless browser: %w", err)
	}

	return &chromeSession{
		tabCtx:     tabCtx,
		cancelTab:  cancelTab,
		cancelAll:  cancelAlloc,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (s *chromeSession) Navigate(ctx context.Context, pageURL string, timeout time.Duration) error {
	merged, stop := mergeCtx(s.tabCtx, ctx)
	defer stop()
	runCtx, cancel := context.WithTimeout(merged, timeout)
	defer cancel()

	err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(1500*time.Millisecond),
	)
	if err != nil {
		return &NavigationError{URL: pageURL, Cause: err}
	}
	return nil
}

func (s *chromeSession) HTML(ctx context.Context) (string, error) {
	var html string
	merged, stop := mergeCtx(s.tabCtx, ctx)
	defer stop()
	err := chromedp.Run(merged, chromedp.OuterHTML("html", &html))
	if err != nil {
		return "", fmt.Errorf("failed to read page HTML: %w", err)
	}
	return html, nil
}

func (s *chromeSession) Text(ctx context.Context, selector string) (string, error) {
	js := fmt.Sprintf(
		`(() => { const el = document.querySelector(%q); return el ? el.innerText : ""; })()`,
		selector)
	var text string
	if err := s.Evaluate(ctx, js, &text); err != nil {
		return "", err
	}
	return text, nil
}

func (s *chromeSession) Evaluate(ctx context.Context, js string, out any) error {
	merged, stop := mergeCtx(s.tabCtx, ctx)
	defer stop()
	err := chromedp.Run(merged, chromedp.Evaluate(js, out))
	if err != nil {
		return fmt.Errorf("script evaluation failed: %w", err)
	}
	return nil
}

func (s *chromeSession) Click(ctx context.Context, selector string) error {
	merged, stop := mergeCtx(s.tabCtx, ctx)
	defer stop()
	runCtx, cancel := context.WithTimeout(merged, 5*time.Second)
	defer cancel()
	return chromedp.Run(runCtx, chromedp.Click(selector, chromedp.NodeVisible))
}

func (s *chromeSession) ScrollToBottom(ctx context.Context) error {
	merged, stop := mergeCtx(s.tabCtx, ctx)
	defer stop()
	return chromedp.Run(merged,
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(800*time.Millisecond),
	)
}

func (s *chromeSession) SubmitForm(ctx context.Context, formURL string, fields map[string]string) ([]byte, error) {
	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, formURL, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("form submission to %s failed: %w", formURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("form submission to %s returned status %d", formURL, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (s *chromeSession) RequestJSON(ctx context.Context, jsonURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jsonURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", jsonURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request to %s returned status %d", jsonURL, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode JSON from %s: %w", jsonURL, err)
	}
	return nil
}

func (s *chromeSession) Close() {
	s.cancelTab()
	s.cancelAll()
}

// mergeCtx derives a tab-bound context that is also cancelled when the
// caller's ctx is cancelled. chromedp actions must run on the tab context,
// but pipeline cancellation has to cut them short too. The returned stop
// func releases the watcher goroutine and must be called when the action
// finishes, otherwise every call leaks a goroutine for the life of the tab.
func mergeCtx(tab, caller context.Context) (context.Context, context.CancelFunc) {
	if caller == nil || caller == context.Background() {
		return tab, func() {}
	}
	merged, cancel := context.WithCancel(tab)
	go func() {
		select {
		case <-caller.Done():
			cancel()
		case <-merged.Done():
		}
	}()
	return merged, cancel
}
