package resilience

import (
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"explicit transient", NewTransientError(errors.New("busy"), 503), true},
		{"wrapped transient", eris.Wrap(NewTransientError(errors.New("busy"), 429), "fetch: upstream"), true},
		{"blocked is not transient", &BlockedError{URL: "https://x", Reason: "cloudflare"}, false},
		{"dead link is not transient", &DeadLinkError{URL: "https://x", StatusCode: 404}, false},
		{"connection reset string", errors.New("read tcp: connection reset by peer"), true},
		{"dns failure string", errors.New("dial tcp: lookup x: no such host"), true},
		{"plain error", errors.New("bad request"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	t.Parallel()

	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 301, 400, 403, 404, 410, 501} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}

func TestErrorClassifiersWalkChains(t *testing.T) {
	t.Parallel()

	blocked := eris.Wrap(&BlockedError{URL: "https://a", Reason: "captcha"}, "verify: fetch profile")
	assert.True(t, IsBlocked(blocked))
	assert.False(t, IsDeadLink(blocked))

	dead := eris.Wrap(&DeadLinkError{URL: "https://b", StatusCode: 410}, "resolve: reachability")
	assert.True(t, IsDeadLink(dead))
	assert.False(t, IsBlocked(dead))
}
