// Package fetch retrieves directory profile pages through an escalating
// cascade of rendering tiers: a headless browser first, then a
// hard-headed plain HTTP client, then the Jina Reader API as the
// last-resort hosted tier.
package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/citation-audit/internal/resilience"
)

// Page holds a fetched page ready for NAP extraction.
type Page struct {
	URL        string
	Title      string
	HTML       string // raw markup when the tier produced any
	Text       string // plaintext or markdown rendering of the body
	StatusCode int
	Source     string // tier that produced the page
}

// Fetcher retrieves a single URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
	Name() string
	Supports(url string) bool
}

// Cascade tries fetchers in priority order, returning the first usable
// page. Dead links are authoritative: a DeadLinkError from any tier
// short-circuits the cascade, because HTTP 404/410 from the origin
// outranks whatever a hosted renderer might synthesize.
type Cascade struct {
	fetchers []Fetcher
	cache    *PageCache   // optional
	precheck *http.Client // optional origin status pre-check
}

// NewCascade creates a Cascade over the given fetchers in priority order.
func NewCascade(fetchers ...Fetcher) *Cascade {
	return &Cascade{fetchers: fetchers}
}

// WithCache enables the TTL page cache. Cached pages are returned
// without touching any tier; fresh pages are written back on success.
func (c *Cascade) WithCache(cache *PageCache) *Cascade {
	c.cache = cache
	return c
}

// WithStatusPrecheck issues a plain GET against each URL before any tier
// runs. Browser renders and hosted readers dress up a 404 as a rendered
// page, so the origin's own status is checked first; only a conclusive
// 404/410 short-circuits, everything else falls through to the tiers.
func (c *Cascade) WithStatusPrecheck(client *http.Client) *Cascade {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	c.precheck = client
	return c
}

// Invalidate drops any cached copy of the URL. No-op without a cache.
func (c *Cascade) Invalidate(ctx context.Context, url string) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Invalidate(ctx, url)
}

// Fetch runs the cascade for a single URL.
func (c *Cascade) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	if c.cache != nil {
		if page, err := c.cache.Get(ctx, targetURL); err != nil {
			zap.L().Warn("fetch: cache read failed", zap.Error(err))
		} else if page != nil {
			zap.L().Debug("fetch: cache hit", zap.String("url", targetURL))
			return page, nil
		}
	}

	if c.precheck != nil {
		if err := checkDeadLink(ctx, c.precheck, targetURL); err != nil {
			zap.L().Debug("fetch: origin reports dead link", zap.String("url", targetURL))
			return nil, err
		}
	}

	var lastErr error
	for _, f := range c.fetchers {
		if !f.Supports(targetURL) {
			continue
		}
		page, err := f.Fetch(ctx, targetURL)
		if err == nil && page != nil {
			if c.cache != nil {
				if cerr := c.cache.Put(ctx, page); cerr != nil {
					zap.L().Warn("fetch: cache write failed", zap.Error(cerr))
				}
			}
			return page, nil
		}
		if err != nil {
			if resilience.IsDeadLink(err) {
				return nil, err
			}
			zap.L().Debug("fetch: tier failed, trying next",
				zap.String("tier", f.Name()),
				zap.String("url", targetURL),
				zap.Error(err),
			)
			lastErr = err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	if lastErr != nil {
		if resilience.IsBlocked(lastErr) {
			return nil, lastErr
		}
		return nil, eris.Wrap(lastErr, "fetch: all tiers failed")
	}
	return nil, eris.Errorf("fetch: no suitable tier for url: %s", targetURL)
}

func (c *Cascade) Name() string           { return "cascade" }
func (c *Cascade) Supports(_ string) bool { return true }

// checkDeadLink asks the origin directly whether the URL still exists.
// Network failures and non-conclusive statuses return nil; those are
// for the tiers to sort out.
func checkDeadLink(ctx context.Context, client *http.Client, targetURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil
	}
	setBrowserHeaders(req)

	resp, err := client.Do(req)
	if err != nil {
		return nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return &resilience.DeadLinkError{URL: targetURL, StatusCode: resp.StatusCode}
	}
	return nil
}
