package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/citation-audit/internal/resilience"
)

// mockFetcher implements Fetcher for testing.
type mockFetcher struct {
	name     string
	supports bool
	page     *Page
	err      error
	calls    int
}

func (m *mockFetcher) Name() string           { return m.name }
func (m *mockFetcher) Supports(_ string) bool { return m.supports }
func (m *mockFetcher) Fetch(_ context.Context, _ string) (*Page, error) {
	m.calls++
	return m.page, m.err
}

func TestCascade_FirstSuccess(t *testing.T) {
	f1 := &mockFetcher{name: "primary", supports: true,
		page: &Page{URL: "https://acme.com", Title: "Acme", Text: "content", Source: "primary"}}
	f2 := &mockFetcher{name: "fallback", supports: true}

	page, err := NewCascade(f1, f2).Fetch(context.Background(), "https://acme.com")

	require.NoError(t, err)
	assert.Equal(t, "primary", page.Source)
	assert.Zero(t, f2.calls)
}

func TestCascade_FallbackOnBlock(t *testing.T) {
	f1 := &mockFetcher{name: "primary", supports: true,
		err: &resilience.BlockedError{URL: "https://acme.com", Reason: "cloudflare"}}
	f2 := &mockFetcher{name: "fallback", supports: true,
		page: &Page{URL: "https://acme.com", Source: "fallback"}}

	page, err := NewCascade(f1, f2).Fetch(context.Background(), "https://acme.com")

	require.NoError(t, err)
	assert.Equal(t, "fallback", page.Source)
}

func TestCascade_DeadLinkShortCircuits(t *testing.T) {
	f1 := &mockFetcher{name: "primary", supports: true,
		err: &resilience.DeadLinkError{URL: "https://acme.com/gone", StatusCode: 404}}
	f2 := &mockFetcher{name: "fallback", supports: true,
		page: &Page{URL: "https://acme.com/gone", Source: "fallback"}}

	_, err := NewCascade(f1, f2).Fetch(context.Background(), "https://acme.com/gone")

	require.True(t, resilience.IsDeadLink(err))
	assert.Zero(t, f2.calls, "dead link must not escalate to the next tier")
}

func TestCascade_AllFail(t *testing.T) {
	f1 := &mockFetcher{name: "f1", supports: true, err: errors.New("f1 down")}
	f2 := &mockFetcher{name: "f2", supports: true, err: errors.New("f2 down")}

	page, err := NewCascade(f1, f2).Fetch(context.Background(), "https://acme.com")

	assert.Error(t, err)
	assert.Nil(t, page)
	assert.Contains(t, err.Error(), "all tiers failed")
}

func TestCascade_AllBlockedSurfacesBlockedError(t *testing.T) {
	f1 := &mockFetcher{name: "f1", supports: true, err: errors.New("f1 down")}
	f2 := &mockFetcher{name: "f2", supports: true,
		err: &resilience.BlockedError{URL: "https://acme.com", Reason: "captcha"}}

	_, err := NewCascade(f1, f2).Fetch(context.Background(), "https://acme.com")

	assert.True(t, resilience.IsBlocked(err))
}

func TestCascade_SkipsUnsupported(t *testing.T) {
	f1 := &mockFetcher{name: "open-circuit", supports: false}
	f2 := &mockFetcher{name: "f2", supports: true,
		page: &Page{URL: "https://acme.com", Source: "f2"}}

	page, err := NewCascade(f1, f2).Fetch(context.Background(), "https://acme.com")

	require.NoError(t, err)
	assert.Equal(t, "f2", page.Source)
	assert.Zero(t, f1.calls)
}

func TestCascade_PrecheckCatchesDeadLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	// The rendering tier happily returns the styled 404 body as content;
	// the origin's own status has to be checked first.
	f1 := &mockFetcher{name: "renderer", supports: true,
		page: &Page{URL: srv.URL + "/gone", Title: "Listing", Text: strings.Repeat("looks like a page ", 50), Source: "renderer"}}
	cascade := NewCascade(f1).WithStatusPrecheck(srv.Client())

	_, err := cascade.Fetch(context.Background(), srv.URL+"/gone")

	require.True(t, resilience.IsDeadLink(err))
	assert.Zero(t, f1.calls, "no tier may dress up a 404 as content")
}

func TestCascade_PrecheckPassesLivePages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>Acme Dental, 123 Main St</body></html>"))
	}))
	defer srv.Close()

	f1 := &mockFetcher{name: "renderer", supports: true,
		page: &Page{URL: srv.URL, Title: "Acme", Text: "content", Source: "renderer"}}
	cascade := NewCascade(f1).WithStatusPrecheck(srv.Client())

	page, err := cascade.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "renderer", page.Source)
	assert.Equal(t, 1, f1.calls)
}

func TestCascade_PrecheckIgnoresNonConclusiveStatus(t *testing.T) {
	// A 403 from the origin is a block, not a dead link; the tiers get
	// their chance to break through.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f1 := &mockFetcher{name: "renderer", supports: true,
		page: &Page{URL: srv.URL, Title: "Acme", Text: "content", Source: "renderer"}}
	cascade := NewCascade(f1).WithStatusPrecheck(srv.Client())

	page, err := cascade.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "renderer", page.Source)
}

func TestCascade_CacheRoundTrip(t *testing.T) {
	cache, err := NewPageCache(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	require.NoError(t, err)
	defer cache.Close()

	markup := `<html><head><script type="application/ld+json">{"@type":"Dentist"}</script></head></html>`
	f1 := &mockFetcher{name: "primary", supports: true,
		page: &Page{URL: "https://acme.com", Title: "Acme", Text: "content", HTML: markup, StatusCode: 200, Source: "primary"}}
	cascade := NewCascade(f1).WithCache(cache)

	_, err = cascade.Fetch(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, 1, f1.calls)

	// Second fetch is served from cache, markup included so structured
	// data extraction still works on cache hits.
	page, err := cascade.Fetch(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, 1, f1.calls)
	assert.Equal(t, "Acme", page.Title)
	assert.Equal(t, "content", page.Text)
	assert.Equal(t, markup, page.HTML)
}

func TestPageCache_ExpiryAndInvalidate(t *testing.T) {
	cache, err := NewPageCache(filepath.Join(t.TempDir(), "cache.db"), -time.Hour)
	require.NoError(t, err)
	defer cache.Close()
	// Negative TTL is normalized to the default.
	assert.Equal(t, 24*time.Hour, cache.ttl)

	ctx := context.Background()
	require.NoError(t, cache.Put(ctx, &Page{URL: "https://acme.com", Text: "x", StatusCode: 200}))

	page, err := cache.Get(ctx, "https://acme.com")
	require.NoError(t, err)
	require.NotNil(t, page)

	require.NoError(t, cache.Invalidate(ctx, "https://acme.com"))
	page, err = cache.Get(ctx, "https://acme.com")
	require.NoError(t, err)
	assert.Nil(t, page)
}
