package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/citation-audit/internal/resilience"
)

func TestEvasiveHTTP_Success(t *testing.T) {
	body := "<html><head><title>Acme Dental - Yelp</title></head><body>" +
		strings.Repeat("Acme Dental 123 Main St Austin TX. ", 20) + "</body></html>"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, chromeUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "document", r.Header.Get("Sec-Fetch-Dest"))
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	page, err := NewEvasiveHTTP().Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "evasive_http", page.Source)
	assert.Equal(t, "Acme Dental - Yelp", page.Title)
	assert.Contains(t, page.Text, "123 Main St")
	assert.Equal(t, 200, page.StatusCode)
}

func TestEvasiveHTTP_DeadLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	_, err := NewEvasiveHTTP().Fetch(context.Background(), srv.URL+"/removed-profile")

	require.True(t, resilience.IsDeadLink(err))
	var de *resilience.DeadLinkError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, http.StatusGone, de.StatusCode)
}

func TestEvasiveHTTP_BlockedByCloudflare(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("cf-ray", "abc123")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewEvasiveHTTP().Fetch(context.Background(), srv.URL)

	assert.True(t, resilience.IsBlocked(err))
}

func TestEvasiveHTTP_SoftBlockOnChallengeBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>Verify you are human to continue</body></html>"))
	}))
	defer srv.Close()

	_, err := NewEvasiveHTTP().Fetch(context.Background(), srv.URL)

	assert.True(t, resilience.IsBlocked(err))
}

func TestEvasiveHTTP_MinContentLen(t *testing.T) {
	body := "<html><body>" + strings.Repeat("short listing stub. ", 10) + "</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	_, err := NewEvasiveHTTP().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	_, err = NewEvasiveHTTP(WithMinContentLen(1000)).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shorter than 1000")
}

func TestEvasiveHTTP_FollowsRedirects(t *testing.T) {
	body := "<html><title>Final</title><body>" + strings.Repeat("profile content ", 20) + "</body></html>"
	var finalURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	finalURL = srv.URL + "/new"

	page, err := NewEvasiveHTTP().Fetch(context.Background(), srv.URL+"/old")

	require.NoError(t, err)
	assert.Equal(t, finalURL, page.URL)
}
