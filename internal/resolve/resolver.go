// Package resolve locates a business's profile listing on a validated
// directory. It runs a site-scoped search with the business name quoted,
// classifies the results by how strongly they look like a profile page,
// confirms uncertain results by fetching them, and falls back to the
// directory's own search form when the open web surfaces nothing.
package resolve

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/citation-audit/internal/fetch"
	"github.com/sells-group/citation-audit/internal/model"
	"github.com/sells-group/citation-audit/internal/registry"
	"github.com/sells-group/citation-audit/internal/resilience"
	"github.com/sells-group/citation-audit/pkg/serper"
)

const (
	searchResultCount  = 5
	defaultMaxConfirm  = 3
	defaultMaxCandLogs = 3
)

// PageFetcher fetches a rendered page for confirmation and direct search.
// Satisfied by fetch.Cascade.
type PageFetcher interface {
	Fetch(ctx context.Context, targetURL string) (*fetch.Page, error)
}

// Resolver finds profile URLs on directories.
type Resolver struct {
	search     serper.Client
	fetcher    PageFetcher
	reg        *registry.Registry
	maxConfirm int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxConfirm caps how many uncertain search results are fetched for
// page-level confirmation.
func WithMaxConfirm(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxConfirm = n
		}
	}
}

// New creates a Resolver. The fetcher may be nil, which disables
// page-level confirmation and direct directory search.
func New(search serper.Client, fetcher PageFetcher, reg *registry.Registry, opts ...Option) *Resolver {
	if reg == nil {
		reg = registry.New()
	}
	r := &Resolver{
		search:     search,
		fetcher:    fetcher,
		reg:        reg,
		maxConfirm: defaultMaxConfirm,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve locates the business's profile on one directory candidate.
func (r *Resolver) Resolve(ctx context.Context, business model.BusinessProfile, cand model.DirectoryCandidate) (*model.ProfileCandidate, error) {
	domain := cand.Domain()
	if domain == "" {
		return nil, eris.Errorf("resolve: candidate %q has no usable domain", cand.Name)
	}

	profile := &model.ProfileCandidate{
		DirectoryName: cand.Name,
		Directory:     domain,
	}

	if !r.reg.Searchable(domain) {
		zap.L().Debug("directory not searchable", zap.String("domain", domain))
		profile.Status = model.ResolveNotSearchable
		return profile, nil
	}

	if corrected, ok := r.reg.CorrectDomain(cand.Name, domain); ok {
		zap.L().Debug("corrected directory domain",
			zap.String("directory", cand.Name),
			zap.String("from", domain),
			zap.String("to", corrected))
		domain = corrected
		profile.Directory = corrected
	}

	searchName := business.SearchName()
	locationTerm := business.LocationTerm()
	query := collapseSpaces(fmt.Sprintf("site:%s %q %s", domain, searchName, locationTerm))
	profile.Query = query

	results, err := r.searchResults(ctx, query, business.LocaleHint())
	if err != nil {
		return nil, err
	}

	// Some directories index state abbreviations rather than full location
	// names; a location-free query catches those.
	if len(results) == 0 && locationTerm != "" {
		fallback := collapseSpaces(fmt.Sprintf("site:%s %q", domain, searchName))
		zap.L().Debug("no results with location, retrying without",
			zap.String("query", fallback))
		results, err = r.searchResults(ctx, fallback, business.LocaleHint())
		if err != nil {
			return nil, err
		}
		profile.Query = fallback
	}

	if len(results) == 0 {
		if hit := r.directSearch(ctx, business, domain); hit != nil {
			profile.Status = model.ResolveFound
			profile.URL = hit.url
			profile.Title = hit.title
			profile.Match = model.MatchDirectSearch
			return profile, nil
		}
		profile.Status = model.ResolveNotFound
		return profile, nil
	}

	if best, kind := classify(results, business); best != nil {
		profile.Status = model.ResolveFound
		profile.URL = best.URL
		profile.Title = best.Title
		profile.Match = kind
		return profile, nil
	}

	// Results came back but none matched confidently. Fetch the top few and
	// look for the business name on the page itself.
	if len(results) > 0 {
		urls := make([]string, 0, defaultMaxCandLogs)
		for _, res := range results {
			if len(urls) == defaultMaxCandLogs {
				break
			}
			urls = append(urls, res.URL)
		}
		zap.L().Debug("uncertain results, confirming by fetch", zap.Strings("urls", urls))
	}
	if hit := r.confirmUncertain(ctx, business, domain, results); hit != nil {
		profile.Status = model.ResolveFound
		profile.URL = hit.url
		profile.Title = hit.title
		profile.Match = model.MatchValidated
		return profile, nil
	}

	if hit := r.directSearch(ctx, business, domain); hit != nil {
		profile.Status = model.ResolveFound
		profile.URL = hit.url
		profile.Title = hit.title
		profile.Match = model.MatchDirectSearch
		return profile, nil
	}

	// Results existed but neither classification, confirmation, nor the
	// directory's own search could pick one.
	return nil, &resilience.AmbiguousMatchError{
		Directory: domain,
		Query:     profile.Query,
		Results:   len(results),
	}
}

// searchResults runs the query and drops homepage results. The quoted
// business name makes everything else relevant enough to classify.
func (r *Resolver) searchResults(ctx context.Context, query, locale string) ([]serper.Result, error) {
	raw, err := r.search.Search(ctx, query,
		serper.WithLocale(locale),
		serper.WithNum(searchResultCount))
	if err != nil {
		return nil, eris.Wrapf(err, "resolve: search %q", query)
	}

	results := raw[:0:0]
	for _, res := range raw {
		if isHomepage(res.URL) {
			zap.L().Debug("skipping homepage result", zap.String("url", res.URL))
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

var homepagePaths = map[string]struct{}{
	"":            {},
	"/":           {},
	"/index.html": {},
	"/index.php":  {},
	"/home":       {},
}

var homepagePatterns = []string{"/webhp", "/home/", "/index"}

func isHomepage(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if _, ok := homepagePaths[u.Path]; ok {
		return true
	}
	lower := strings.ToLower(rawURL)
	for _, p := range homepagePatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

var listPatterns = []string{"/top-", "/best-", "/list", "/find-", "-near-", "-in-"}

// classify buckets search results by match strength and returns the best
// one: profile pages beat practitioner pages beat list pages. Nil means
// every result was uncertain.
func classify(results []serper.Result, business model.BusinessProfile) (*serper.Result, model.MatchKind) {
	var profileHits, doctorHits, listHits []serper.Result

	slug := ""
	if toks := slugTokens(business.Name); len(toks) >= 2 {
		slug = strings.Join(toks[:2], "-")
	}

	for _, res := range results {
		urlLower := strings.ToLower(res.URL)

		isProfile := slug != "" && strings.Contains(urlLower, slug)
		if NameInText(business.Name, res.Title) {
			isProfile = true
		}

		isDoctor := business.Alias != "" &&
			(NameInText(business.Alias, res.Title) || NameInText(business.Alias, res.Snippet))

		isList := false
		for _, p := range listPatterns {
			if strings.Contains(urlLower, p) {
				isList = true
				break
			}
		}
		// A list page that names the business in its title or snippet is as
		// good as a profile hit.
		nameInMeta := NameInText(business.Name, res.Title) || NameInText(business.Name, res.Snippet)
		if isList && nameInMeta {
			isProfile = true
		}

		switch {
		case isProfile:
			profileHits = append(profileHits, res)
		case isDoctor:
			doctorHits = append(doctorHits, res)
		case isList && nameInMeta:
			listHits = append(listHits, res)
		}
	}

	switch {
	case len(profileHits) > 0:
		return &profileHits[0], model.MatchProfile
	case len(doctorHits) > 0:
		return &doctorHits[0], model.MatchDoctor
	case len(listHits) > 0:
		return &listHits[0], model.MatchList
	}
	return nil, model.MatchUncertain
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
