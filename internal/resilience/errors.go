package resilience

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// TransientError wraps an error that is safe to retry (429, 5xx, network
// timeouts).
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// NewTransientError wraps an error as transient with an optional HTTP
// status code.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// BlockedError indicates a page was withheld by anti-bot protection.
// Verification results for blocked pages are inconclusive, never failures.
type BlockedError struct {
	URL    string
	Reason string // e.g. "cloudflare", "captcha", "js_shell"
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("blocked (%s): %s", e.Reason, e.URL)
}

// IsBlocked reports whether any error in the chain is a BlockedError.
func IsBlocked(err error) bool {
	var be *BlockedError
	return errors.As(err, &be)
}

// DeadLinkError indicates a profile URL that authoritatively no longer
// exists (HTTP 404 or 410). Dead links are conclusive: no fallback
// rendering tier should be consulted afterwards.
type DeadLinkError struct {
	URL        string
	StatusCode int
}

func (e *DeadLinkError) Error() string {
	return fmt.Sprintf("dead link (%d): %s", e.StatusCode, e.URL)
}

// IsDeadLink reports whether any error in the chain is a DeadLinkError.
func IsDeadLink(err error) bool {
	var de *DeadLinkError
	return errors.As(err, &de)
}

// AmbiguousMatchError indicates resolution surfaced listings but none
// cleared the acceptance thresholds. Distinct from a clean miss: the
// directory may well carry the listing, the signals were just too weak
// to pick one.
type AmbiguousMatchError struct {
	Directory string
	Query     string
	Results   int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("ambiguous match on %s: %d result(s) below acceptance thresholds", e.Directory, e.Results)
}

// IsAmbiguous reports whether any error in the chain is an
// AmbiguousMatchError.
func IsAmbiguous(err error) bool {
	var ae *AmbiguousMatchError
	return errors.As(err, &ae)
}

// MalformedResponseError indicates an upstream returned a payload that
// could not be parsed into the expected shape.
type MalformedResponseError struct {
	Source string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %v", e.Source, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// IsMalformed reports whether any error in the chain is a
// MalformedResponseError.
func IsMalformed(err error) bool {
	var me *MalformedResponseError
	return errors.As(err, &me)
}

// IsTransient returns true if the error (or any error in its chain) is a
// TransientError, or matches common transient network patterns.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	// Blocks and dead links are deterministic, retrying the same way
	// will not help.
	if IsBlocked(err) || IsDeadLink(err) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
		"transport connection broken",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsTransientHTTPStatus returns true for status codes that indicate a
// retryable server-side condition.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
