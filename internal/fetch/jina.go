package fetch

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/citation-audit/internal/resilience"
	"github.com/sells-group/citation-audit/pkg/jina"
)

// JinaFetcher wraps the Jina Reader API as the last cascade tier, behind
// a circuit breaker: 3 consecutive failures within 30s open the circuit
// for 60s so the cascade stops burning quota on a struggling upstream.
type JinaFetcher struct {
	client  jina.Client
	breaker *resilience.CircuitBreaker
	timeout time.Duration // per-read bound, 0 defers to the caller's context
}

// JinaOption customizes a JinaFetcher.
type JinaOption func(*JinaFetcher)

// WithReaderTimeout bounds a single Reader API call.
func WithReaderTimeout(d time.Duration) JinaOption {
	return func(j *JinaFetcher) {
		if d > 0 {
			j.timeout = d
		}
	}
}

// NewJinaFetcher creates a JinaFetcher from a Jina client.
func NewJinaFetcher(client jina.Client, opts ...JinaOption) *JinaFetcher {
	j := &JinaFetcher{
		client:  client,
		breaker: resilience.NewCircuitBreaker("jina", 3, 30*time.Second, 60*time.Second),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *JinaFetcher) Name() string { return "jina" }

// Supports returns true unless the circuit breaker is open.
func (j *JinaFetcher) Supports(_ string) bool {
	return !j.breaker.IsOpen()
}

// Fetch reads a URL through Jina Reader and validates the response.
func (j *JinaFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	if j.breaker.IsOpen() {
		return nil, eris.New("jina: circuit breaker open")
	}

	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	resp, err := j.client.Read(ctx, targetURL)
	if err != nil {
		j.breaker.RecordFailure()
		return nil, err
	}

	if needsFallback(resp) {
		j.breaker.RecordFailure()
		return nil, &resilience.BlockedError{URL: targetURL, Reason: "jina_challenge"}
	}

	j.breaker.RecordSuccess()
	return &Page{
		URL:        resp.Data.URL,
		Title:      resp.Data.Title,
		Text:       resp.Data.Content,
		StatusCode: resp.Code,
		Source:     j.Name(),
	}, nil
}

// needsFallback checks whether a Jina response contains usable content
// or still shows the target's challenge page.
func needsFallback(resp *jina.ReadResponse) bool {
	if resp == nil {
		return true
	}
	if resp.Code != 0 && resp.Code != 200 {
		return true
	}

	content := strings.TrimSpace(resp.Data.Content)
	if len(content) < 100 {
		return true
	}

	lower := strings.ToLower(content)
	challengeSignatures := []string{
		"checking your browser",
		"enable javascript",
		"please enable cookies",
		"access denied",
		"403 forbidden",
		"just a moment",
		"cloudflare",
		"attention required",
	}
	for _, sig := range challengeSignatures {
		if strings.Contains(lower, sig) && len(content) < 1000 {
			return true
		}
	}

	return false
}
