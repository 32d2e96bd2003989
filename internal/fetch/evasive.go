package fetch

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/citation-audit/internal/resilience"
)

// EvasiveHTTP fetches pages over plain HTTP with a full set of realistic
// browser headers. Cheaper than a browser render, and enough for
// directories whose protection only inspects headers.
type EvasiveHTTP struct {
	client *http.Client
	retry  resilience.RetryConfig
	minLen int // smallest body accepted as a real page
}

// EvasiveOption customizes an EvasiveHTTP fetcher.
type EvasiveOption func(*EvasiveHTTP)

// WithHTTPTimeout bounds a single request end to end.
func WithHTTPTimeout(d time.Duration) EvasiveOption {
	return func(e *EvasiveHTTP) {
		if d > 0 {
			e.client.Timeout = d
		}
	}
}

// WithMinContentLen sets the body size below which a response is
// treated as empty rather than a page.
func WithMinContentLen(n int) EvasiveOption {
	return func(e *EvasiveHTTP) {
		if n > 0 {
			e.minLen = n
		}
	}
}

// NewEvasiveHTTP creates an EvasiveHTTP fetcher with its own transport.
func NewEvasiveHTTP(opts ...EvasiveOption) *EvasiveHTTP {
	e := &EvasiveHTTP{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		retry: resilience.RetryConfig{
			MaxAttempts:    2,
			InitialBackoff: time.Second,
		},
		minLen: 100,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *EvasiveHTTP) Name() string           { return "evasive_http" }
func (e *EvasiveHTTP) Supports(_ string) bool { return true }

// Fetch retrieves the URL. 404/410 come back as DeadLinkError so the
// cascade stops instead of escalating; detected blocks come back as
// BlockedError so it escalates to the next tier.
func (e *EvasiveHTTP) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	return resilience.DoVal(ctx, e.retry, "evasive_http.fetch", func(ctx context.Context) (*Page, error) {
		return e.fetchOnce(ctx, targetURL)
	})
}

func (e *EvasiveHTTP) fetchOnce(ctx context.Context, targetURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "evasive_http: create request")
	}
	setBrowserHeaders(req)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "evasive_http: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, eris.Wrap(err, "evasive_http: read body")
	}

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil, &resilience.DeadLinkError{URL: targetURL, StatusCode: resp.StatusCode}
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		return nil, &resilience.BlockedError{URL: targetURL, Reason: string(blockType)}
	}

	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		return nil, resilience.NewTransientError(
			eris.Errorf("evasive_http: status %d", resp.StatusCode), resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("evasive_http: status %d", resp.StatusCode)
	}

	html := string(body)
	if blocked, blockType := SoftBlocked(html); blocked {
		return nil, &resilience.BlockedError{URL: targetURL, Reason: string(blockType)}
	}
	if len(body) < e.minLen {
		return nil, eris.Errorf("evasive_http: body shorter than %d bytes", e.minLen)
	}

	finalURL := targetURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Page{
		URL:        finalURL,
		Title:      ExtractTitle(html),
		HTML:       html,
		Text:       StripHTML(html),
		StatusCode: resp.StatusCode,
		Source:     e.Name(),
	}, nil
}

// setBrowserHeaders applies the header set real Chrome sends on a
// top-level navigation. Several directories 403 anything less complete.
func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", chromeUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Sec-Fetch-User", "?1")
	req.Header.Set("Cache-Control", "max-age=0")
}
