package resolve

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/citation-audit/internal/model"
	"github.com/sells-group/citation-audit/internal/resilience"
	"github.com/sells-group/citation-audit/pkg/serper"
)

// profileHit is a confirmed profile URL with its display title.
type profileHit struct {
	url   string
	title string
}

// confirmUncertain fetches the top uncertain results and accepts the first
// whose page actually mentions the business. A dead link (404/410) rejects
// that result outright; a blocked page is assumed valid since the search
// engine surfaced it for the quoted name.
func (r *Resolver) confirmUncertain(ctx context.Context, business model.BusinessProfile, domain string, results []serper.Result) *profileHit {
	if r.fetcher == nil {
		return nil
	}

	limit := r.maxConfirm
	if limit > len(results) {
		limit = len(results)
	}

	for _, res := range results[:limit] {
		if ctx.Err() != nil {
			return nil
		}

		page, err := r.fetcher.Fetch(ctx, res.URL)
		if err != nil {
			switch {
			case resilience.IsDeadLink(err):
				zap.L().Debug("uncertain result is a dead link", zap.String("url", res.URL))
			case resilience.IsBlocked(err):
				zap.L().Debug("uncertain result blocked, assuming valid", zap.String("url", res.URL))
				return &profileHit{url: res.URL, title: res.Title}
			default:
				zap.L().Debug("uncertain result fetch failed",
					zap.String("url", res.URL), zap.Error(err))
			}
			continue
		}

		text := strings.ToLower(page.Text)
		if isSoft404(text) {
			zap.L().Debug("uncertain result is a soft 404", zap.String("url", res.URL))
			continue
		}
		if !nameOnPage(business.Name, text) {
			zap.L().Debug("business name not on page", zap.String("url", res.URL))
			continue
		}

		// A search or listing page that mentions the business usually links
		// to the real profile; prefer that link when we can pull one out.
		if isSearchPageURL(res.URL) || looksLikeSearchPage(text, page.Title) {
			if link, title := extractProfileLink(page.HTML, business.Name, domain); link != "" {
				zap.L().Debug("extracted profile link from search page",
					zap.String("search_page", res.URL), zap.String("profile", link))
				return &profileHit{url: link, title: title}
			}
		}

		return &profileHit{url: res.URL, title: res.Title}
	}
	return nil
}

// nameOnPage requires the leading significant name words to appear
// together in the page text, not scattered across it.
func nameOnPage(name, textLower string) bool {
	parts := significantWords(name)
	switch {
	case len(parts) >= 2:
		return strings.Contains(textLower, strings.Join(parts[:2], " "))
	case len(parts) == 1:
		return strings.Contains(textLower, parts[0])
	}
	return false
}

var soft404Phrases = []string{
	"page not found",
	"provider not found",
	"we couldn't find",
	"we could not find",
	"no results for",
	"doesn't exist",
	"does not exist",
	"error 404",
	"404 error",
	"page unavailable",
	"profile not found",
}

// isSoft404 detects pages that return 200 but render a not-found message.
// Reader-proxy metadata lines are dropped first so a URL containing "404"
// does not trip the check.
func isSoft404(textLower string) bool {
	if strings.Contains(textLower, "url source:") || strings.Contains(textLower, "title:") {
		var kept []string
		for _, line := range strings.Split(textLower, "\n") {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "url source:") || strings.HasPrefix(trimmed, "title:") {
				continue
			}
			kept = append(kept, line)
		}
		textLower = strings.Join(kept, "\n")
	}
	for _, phrase := range soft404Phrases {
		if strings.Contains(textLower, phrase) {
			return true
		}
	}
	return false
}

var searchPageURLPatterns = []string{"/search", "/find", "/results", "?q=", "?query="}

func isSearchPageURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, p := range searchPageURLPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

var searchPageIndicators = []string{
	"search results for",
	"results for",
	"matching results",
	"providers found",
}

// looksLikeSearchPage flags result listings by their title or the top of
// their text, so a profile that merely links "back to search results"
// further down is not caught.
func looksLikeSearchPage(textLower, title string) bool {
	titleLower := strings.ToLower(title)
	if strings.HasPrefix(titleLower, "search") || strings.HasPrefix(titleLower, "find") ||
		strings.Contains(titleLower, "search results") {
		return true
	}
	head := textLower
	if len(head) > 1000 {
		head = head[:1000]
	}
	for _, ind := range searchPageIndicators {
		if strings.Contains(head, ind) {
			return true
		}
	}
	return false
}
