package discovery

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/citation-audit/internal/model"
)

// Rejection reason codes, logged per skipped candidate.
const (
	reasonWrongCountry = "wrong_country"
	reasonExcluded     = "excluded"
	reasonBadDomain    = "bad_domain"
	reasonUSOnly       = "us_only"
	reasonForeignTLD   = "foreign_tld"
	reasonDuplicate    = "duplicate"
)

// excludedDirectories are handled by dedicated flows (GBP, Facebook) or
// are categorically unusable, regardless of country.
var excludedDirectories = []string{
	"facebook", "facebook business", "facebook business pages",
	"google business profile", "google business", "google my business", "gbp",
	"caredash", "care dash",
}

// badDomains are not citation directories: SEO tooling vendors, B2B
// agency marketplaces, broad Q&A forums.
var badDomains = []string{
	"clutch.co", "clutchco.com.au", "sortlist.com", "goodfirms.co", "upcity.com",
	"yext.com", "brightlocal.com", "moz.com", "semrush.com", "ahrefs.com",
	"whitespark.ca", "localviking.com",
	"reddit.com", "quora.com",
	"localstack.cloud", "mojo.vision",
	"provenexpert.com", "trustpilot.com", "trustindex.io",
}

// knownDirectories bypass the generic blocklists; all of these are
// confirmed citation sources.
var knownDirectories = []string{
	"healthgrades.com", "zocdoc.com", "vitals.com", "ratemds.com", "webmd.com",
	"yelp.com", "yellowpages.com", "bbb.org", "manta.com", "superpages.com",
	"findatopdoc.com", "castleconnolly.com", "sharecare.com", "wellness.com",
	"usnews.com", "superdoctors.com", "hotfrog.com", "brownbook.net", "cylex.us.com",
	"foursquare.com", "mapquest.com", "nextdoor.com", "angi.com", "thumbtack.com",
	"chamberofcommerce.com", "medifind.com", "dexknows.com", "n49.com",
	"threebestrated.com", "opencare.com", "topratedlocal.com",
}

// usOnlyDirectories have no usable coverage outside the United States.
// Matched by exact domain so yellowpages.com.au survives the
// yellowpages.com entry.
var usOnlyDirectories = map[string]bool{
	"mapquest.com": true, "angi.com": true, "thumbtack.com": true, "nextdoor.com": true,
	"homeadvisor.com": true, "angieslist.com": true, "superpages.com": true, "dexknows.com": true,
	"manta.com": true, "yellowpages.com": true, "whitepages.com": true, "citysearch.com": true,
	"local.com": true, "insiderpages.com": true, "kudzu.com": true, "merchantcircle.com": true,
}

var nameTokenRe = regexp.MustCompile(`[^a-z0-9]+`)

// jurisdictionFilter holds the per-run exclusion tables derived from
// the target country.
type jurisdictionFilter struct {
	country      string
	countryLower string
	badTLDs      []string
	badTerms     []string
}

func newJurisdictionFilter(country string) *jurisdictionFilter {
	if country == "" {
		country = "United States"
	}
	f := &jurisdictionFilter{country: country, countryLower: strings.ToLower(country)}
	c := f.countryLower

	// TLDs foreign to the target country.
	if !strings.Contains(c, "australia") {
		f.badTLDs = append(f.badTLDs, ".au", ".com.au")
	}
	if !strings.Contains(c, "united kingdom") && !strings.Contains(c, "uk") {
		f.badTLDs = append(f.badTLDs, ".uk", ".co.uk")
	}
	if !strings.Contains(c, "canada") {
		f.badTLDs = append(f.badTLDs, ".ca")
	}
	if !strings.Contains(c, "germany") {
		f.badTLDs = append(f.badTLDs, ".de")
	}
	if !strings.Contains(c, "france") {
		f.badTLDs = append(f.badTLDs, ".fr")
	}
	if !strings.Contains(c, "india") {
		f.badTLDs = append(f.badTLDs, ".in", ".co.in")
	}

	// Name tokens referring to a different jurisdiction.
	if !strings.Contains(c, "united states") && !strings.Contains(c, "usa") {
		f.badTerms = append(f.badTerms, "usa", "united states", "america", "american", "us")
	}
	if !strings.Contains(c, "united kingdom") && !strings.Contains(c, "uk") {
		f.badTerms = append(f.badTerms, "uk", "united kingdom", "britain", "british")
	}
	if !strings.Contains(c, "australia") {
		f.badTerms = append(f.badTerms, "australia", "australian", "sydney", "melbourne")
	}
	if !strings.Contains(c, "canada") {
		f.badTerms = append(f.badTerms, "canada", "canadian")
	}

	return f
}

func (f *jurisdictionFilter) isUS() bool {
	return strings.Contains(f.countryLower, "united states") || strings.Contains(f.countryLower, "usa")
}

// reject returns a non-empty reason code when the candidate should be
// skipped.
func (f *jurisdictionFilter) reject(cand model.DirectoryCandidate, seen map[string]bool) string {
	nameLower := strings.ToLower(cand.Name)
	domain := cand.Domain()

	// Token-level country match so "US News" is caught but "focus" is not.
	tokens := map[string]bool{}
	for _, tok := range nameTokenRe.Split(nameLower, -1) {
		if tok != "" {
			tokens[tok] = true
		}
	}
	for _, term := range f.badTerms {
		termTokens := strings.Fields(term)
		hit := len(termTokens) > 0
		for _, tt := range termTokens {
			if !tokens[tt] {
				hit = false
				break
			}
		}
		if hit {
			return reasonWrongCountry
		}
	}

	for _, excl := range excludedDirectories {
		if strings.Contains(nameLower, excl) {
			return reasonExcluded
		}
	}

	whitelisted := false
	for _, known := range knownDirectories {
		if strings.Contains(domain, known) {
			whitelisted = true
			break
		}
	}

	if !whitelisted {
		for _, bad := range badDomains {
			if strings.Contains(domain, bad) {
				return reasonBadDomain
			}
		}
	}

	if !f.isUS() && usOnlyDirectories[domain] {
		return reasonUSOnly
	}

	urlLower := strings.ToLower(cand.URL)
	for _, tld := range f.badTLDs {
		if strings.HasSuffix(urlLower, tld) || strings.Contains(urlLower, tld+"/") {
			return reasonForeignTLD
		}
	}

	if seen[nameLower] || (domain != "" && seen[domain]) {
		return reasonDuplicate
	}
	seen[nameLower] = true
	if domain != "" {
		seen[domain] = true
	}

	return ""
}

// applyFilters runs the jurisdiction and quality filters over a raw
// candidate batch, logging each rejection.
func applyFilters(raw []model.DirectoryCandidate, country string) []model.DirectoryCandidate {
	f := newJurisdictionFilter(country)
	seen := map[string]bool{}

	kept := make([]model.DirectoryCandidate, 0, len(raw))
	for _, cand := range raw {
		if cand.Name == "" || cand.URL == "" {
			continue
		}
		if reason := f.reject(cand, seen); reason != "" {
			zap.L().Debug("discovery: skipping candidate",
				zap.String("directory", cand.Name),
				zap.String("url", cand.URL),
				zap.String("reason", reason),
			)
			continue
		}
		kept = append(kept, cand)
	}
	return kept
}
