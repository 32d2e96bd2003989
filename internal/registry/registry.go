// Package registry holds per-directory strategy: on-site search URL
// templates, submission/claim URLs, domain corrections for directories
// the research model habitually mislabels, and the set of directories
// that cannot be resolved through site-scoped web search.
package registry

import (
	"net/url"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/citation-audit/internal/model"
)

// Registry answers strategy questions about known directories. The zero
// value is not usable; construct with New or NewWithOverrides.
type Registry struct {
	corrections   map[string]string // lowercased name keyword -> canonical domain
	submitURLs    map[string]string // domain -> submit/claim URL
	searchURLs    map[string]string // domain -> search URL template
	notSearchable map[string]struct{}
}

// Overrides is the YAML shape accepted by NewWithOverrides. All fields
// merge on top of the built-in defaults; entries with empty values are
// ignored.
type Overrides struct {
	Corrections   map[string]string `yaml:"corrections"`
	SubmitURLs    map[string]string `yaml:"submit_urls"`
	SearchURLs    map[string]string `yaml:"search_urls"`
	NotSearchable []string          `yaml:"not_searchable"`
}

// New returns a registry populated with the built-in directory strategy
// tables.
func New() *Registry {
	r := &Registry{
		corrections:   make(map[string]string, len(defaultCorrections)),
		submitURLs:    make(map[string]string, len(defaultSubmitURLs)),
		searchURLs:    make(map[string]string, len(defaultSearchURLs)),
		notSearchable: make(map[string]struct{}, len(defaultNotSearchable)),
	}
	for k, v := range defaultCorrections {
		r.corrections[k] = v
	}
	for k, v := range defaultSubmitURLs {
		r.submitURLs[k] = v
	}
	for k, v := range defaultSearchURLs {
		r.searchURLs[k] = v
	}
	for _, d := range defaultNotSearchable {
		r.notSearchable[d] = struct{}{}
	}
	return r
}

// NewWithOverrides loads a YAML overrides file and merges it on top of
// the defaults. A missing path is not an error; a malformed file is.
func NewWithOverrides(path string) (*Registry, error) {
	r := New()
	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			zap.L().Debug("registry: overrides file absent, using defaults",
				zap.String("path", path))
			return r, nil
		}
		return nil, eris.Wrap(err, "registry: read overrides")
	}

	var ov Overrides
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return nil, eris.Wrap(err, "registry: parse overrides")
	}
	r.merge(ov)
	return r, nil
}

func (r *Registry) merge(ov Overrides) {
	for k, v := range ov.Corrections {
		if k != "" && v != "" {
			r.corrections[strings.ToLower(k)] = v
		}
	}
	for k, v := range ov.SubmitURLs {
		if k != "" && v != "" {
			r.submitURLs[k] = v
		}
	}
	for k, v := range ov.SearchURLs {
		if k != "" && v != "" {
			r.searchURLs[k] = v
		}
	}
	for _, d := range ov.NotSearchable {
		if d != "" {
			r.notSearchable[d] = struct{}{}
		}
	}
}

// CorrectDomain checks the directory name against the known-bad-domain
// table. When a keyword matches and the supplied domain disagrees with
// the canonical one, the canonical domain and true are returned.
func (r *Registry) CorrectDomain(directoryName, domain string) (string, bool) {
	nameLower := strings.ToLower(directoryName)
	for keyword, canonical := range r.corrections {
		if strings.Contains(nameLower, keyword) {
			if domain != canonical {
				zap.L().Debug("registry: correcting directory domain",
					zap.String("directory", directoryName),
					zap.String("from", domain),
					zap.String("to", canonical))
				return canonical, true
			}
			return domain, false
		}
	}
	return domain, false
}

// Searchable reports whether the directory can be resolved through
// site-scoped web search. Walled gardens like Google Business Profile
// and Facebook never surface profile URLs that way.
func (r *Registry) Searchable(domain string) bool {
	_, skip := r.notSearchable[domain]
	return !skip
}

// SubmitURL returns the submission or claim URL for a directory domain.
// Matching is containment in either direction so that subdomains such
// as findadentist.ada.org still hit their entry. Returns "" when the
// directory is unknown.
func (r *Registry) SubmitURL(domain string) string {
	if u, ok := r.submitURLs[domain]; ok {
		return u
	}
	for known, u := range r.submitURLs {
		if strings.Contains(domain, known) || strings.Contains(known, domain) {
			return u
		}
	}
	return ""
}

// SearchURL builds the directory's own search page URL for a business.
// Returns "" and false when the directory has no known on-site search.
func (r *Registry) SearchURL(domain, query, location string) (string, bool) {
	tmpl, ok := r.searchURLs[domain]
	if !ok {
		for known, t := range r.searchURLs {
			if strings.Contains(domain, known) || strings.Contains(known, domain) {
				tmpl = t
				break
			}
		}
	}
	if tmpl == "" {
		return "", false
	}
	u := strings.ReplaceAll(tmpl, "{query}", url.QueryEscape(query))
	u = strings.ReplaceAll(u, "{location}", url.QueryEscape(location))
	return u, true
}

// SubmitURLFor is a convenience that resolves the submit URL from a
// candidate's raw URL, falling back to the directory name's corrected
// domain when the URL is empty.
func (r *Registry) SubmitURLFor(cand model.DirectoryCandidate) string {
	domain := cand.Domain()
	if domain == "" {
		return ""
	}
	return r.SubmitURL(domain)
}
