// Package validate confirms that discovered directory candidates are
// reachable and that their homepage domain plausibly belongs to the
// directory they claim to be. A reachable but misnamed candidate is
// either corrected through search or discarded, never accepted as-is.
package validate

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/citation-audit/internal/model"
	"github.com/sells-group/citation-audit/pkg/serper"
)

const (
	reachTimeout  = 5 * time.Second
	browserUA     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	correctionTop = 3 // search results inspected when correcting a URL
)

// Validator checks directory candidates against reachability and
// domain-identity rules.
type Validator struct {
	search serper.Client
	client *http.Client
}

// Option configures a Validator.
type Option func(*Validator)

// WithReachTimeout bounds each reachability check.
func WithReachTimeout(d time.Duration) Option {
	return func(v *Validator) {
		if d > 0 {
			v.client.Timeout = d
		}
	}
}

// New creates a Validator. The search client powers URL correction;
// pass nil to disable correction (mismatches then discard directly).
func New(search serper.Client, opts ...Option) *Validator {
	v := &Validator{
		search: search,
		client: &http.Client{Timeout: reachTimeout},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs the two checks on a candidate and returns it with its
// status updated: validated (as-is), corrected (URL replaced), or
// discarded.
func (v *Validator) Validate(ctx context.Context, cand model.DirectoryCandidate) model.DirectoryCandidate {
	reachable := v.Reachable(ctx, cand.URL)
	identity := DomainMatchesName(cand.Domain(), cand.Name)

	if reachable && identity {
		cand.URL = ensureScheme(cand.URL)
		cand.Status = model.ValidationValidated
		return cand
	}

	reason := "mismatch"
	if !reachable {
		reason = "unreachable"
	}
	zap.L().Debug("validate: candidate failed checks",
		zap.String("directory", cand.Name),
		zap.String("url", cand.URL),
		zap.String("reason", reason),
	)

	if corrected := v.correct(ctx, cand.Name); corrected != "" {
		cand.URL = corrected
		cand.Status = model.ValidationCorrected
		return cand
	}

	cand.Status = model.ValidationDiscarded
	return cand
}

// Reachable issues a HEAD request with a browser User-Agent, falling
// back to GET once, and accepts any status below 400.
func (v *Validator) Reachable(ctx context.Context, rawURL string) bool {
	rawURL = ensureScheme(rawURL)
	for _, method := range []string{http.MethodHead, http.MethodGet} {
		req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
		if err != nil {
			return false
		}
		req.Header.Set("User-Agent", browserUA)

		resp, err := v.client.Do(req)
		if err != nil {
			continue
		}
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		if resp.StatusCode < 400 {
			return true
		}
	}
	return false
}

// correct searches for the directory by name and accepts the first of
// the top results whose domain passes the identity check.
func (v *Validator) correct(ctx context.Context, directoryName string) string {
	if v.search == nil {
		return ""
	}

	results, err := v.search.Search(ctx, directoryName, serper.WithNum(correctionTop))
	if err != nil {
		zap.L().Warn("validate: correction search failed",
			zap.String("directory", directoryName),
			zap.Error(err),
		)
		return ""
	}

	for _, r := range results {
		domain := model.BaseDomain(r.URL)
		if DomainMatchesName(domain, directoryName) {
			zap.L().Debug("validate: corrected directory URL",
				zap.String("directory", directoryName),
				zap.String("domain", domain),
			)
			return "https://" + domain
		}
	}
	return ""
}

// strippedTLDs are removed before keyword matching so "com"/"org" never
// count as name tokens.
var strippedTLDs = []string{".com", ".org", ".net", ".edu", ".gov", ".io", ".co", ".us", ".uk"}

var stopWords = map[string]bool{
	"the": true, "and": true, "or": true, "of": true, "for": true,
	"in": true, "a": true, "an": true, "at": true, "to": true, "by": true,
	"inc": true, "llc": true, "ltd": true, "com": true, "org": true, "net": true,
}

var (
	nonWordRe     = regexp.MustCompile(`[^\w\s]`)
	domainSplitRe = regexp.MustCompile(`[.-]`)
)

// DomainMatchesName checks whether a domain semantically matches a
// directory's display name, via the acronym of its significant words
// ("American Dental Association" → ada.org) or literal keyword hits.
// Longer names need two keyword hits so that a generic word like
// "dental" cannot claim an unrelated domain by itself.
func DomainMatchesName(domain, name string) bool {
	if domain == "" || name == "" {
		return false
	}

	target := strings.ToLower(domain)
	for _, tld := range strippedTLDs {
		if strings.HasSuffix(target, tld) {
			target = strings.TrimSuffix(target, tld)
			break
		}
	}

	cleanName := nonWordRe.ReplaceAllString(strings.ToLower(name), "")
	var significant []string
	for _, w := range strings.Fields(cleanName) {
		if !stopWords[w] {
			significant = append(significant, w)
		}
	}
	if len(significant) == 0 {
		return false
	}

	// Acronym check.
	if len(significant) > 1 {
		var b strings.Builder
		for _, w := range significant {
			b.WriteByte(w[0])
		}
		acronym := b.String()
		if len(acronym) >= 2 {
			for _, token := range domainSplitRe.Split(target, -1) {
				if token == acronym {
					return true
				}
			}
			if strings.HasPrefix(target, acronym) {
				return true
			}
		}
	}

	// Keyword check.
	hits := 0
	for _, w := range significant {
		if len(w) > 2 && strings.Contains(target, w) {
			hits++
		}
	}
	if len(significant) <= 2 {
		return hits >= 1
	}
	return hits >= 2
}

func ensureScheme(rawURL string) string {
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		return rawURL
	}
	return "https://" + rawURL
}
