package fetch

import (
	"context"
	"net/http"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/citation-audit/internal/resilience"
)

const chromeUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ChromeFetcher renders pages in a headless browser. This is the first
// cascade tier: heavily protected directories only serve real content
// to a JavaScript-capable client.
type ChromeFetcher struct {
	settle  time.Duration // wait after navigation for JS to render
	timeout time.Duration
}

// ChromeOption customizes a ChromeFetcher.
type ChromeOption func(*ChromeFetcher)

// WithSettleDelay sets how long to wait after navigation before
// capturing the DOM.
func WithSettleDelay(d time.Duration) ChromeOption {
	return func(c *ChromeFetcher) { c.settle = d }
}

// WithRenderTimeout bounds a single render end to end.
func WithRenderTimeout(d time.Duration) ChromeOption {
	return func(c *ChromeFetcher) { c.timeout = d }
}

// NewChromeFetcher creates a headless browser fetcher. Each Fetch spins
// up a fresh browser context so a crashed render cannot poison later
// ones.
func NewChromeFetcher(opts ...ChromeOption) *ChromeFetcher {
	c := &ChromeFetcher{
		settle:  6 * time.Second,
		timeout: 45 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ChromeFetcher) Name() string           { return "chrome" }
func (c *ChromeFetcher) Supports(_ string) bool { return true }

// Fetch navigates to the URL, waits for the page to settle, and captures
// the rendered DOM.
func (c *ChromeFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(
			chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(chromeUserAgent),
		)...,
	)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	// A rendered 404 still produces a plausible-looking DOM, so the
	// navigation status has to be checked before the body is trusted.
	resp, err := chromedp.RunResponse(browserCtx, chromedp.Navigate(targetURL))
	if err != nil {
		return nil, eris.Wrapf(err, "chrome: navigate %s", targetURL)
	}
	status := http.StatusOK
	if resp != nil {
		status = int(resp.Status)
	}
	if status == http.StatusNotFound || status == http.StatusGone {
		return nil, &resilience.DeadLinkError{URL: targetURL, StatusCode: status}
	}

	var html string
	err = chromedp.Run(browserCtx,
		chromedp.Sleep(c.settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "chrome: render %s", targetURL)
	}

	if blocked, blockType := SoftBlocked(html); blocked {
		zap.L().Debug("chrome: challenge interstitial",
			zap.String("url", targetURL),
			zap.String("block", string(blockType)),
		)
		return nil, &resilience.BlockedError{URL: targetURL, Reason: string(blockType)}
	}

	return &Page{
		URL:        targetURL,
		Title:      ExtractTitle(html),
		HTML:       html,
		Text:       StripHTML(html),
		StatusCode: status,
		Source:     c.Name(),
	}, nil
}
