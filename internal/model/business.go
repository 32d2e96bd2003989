// Package model defines the domain types shared across the citation audit
// pipeline: the business ground truth, directory and profile candidates,
// verification results, and the per-directory lifecycle state.
package model

import "strings"

// BusinessProfile is the ground-truth NAP+W record for one business.
// It is read-only for the duration of an audit and safe to share across
// concurrent directory pipelines.
type BusinessProfile struct {
	Name       string `json:"name"`
	Alias      string `json:"alias,omitempty"` // practitioner name, e.g. "Dr. Jane Smith"
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	Region     string `json:"region,omitempty"` // state / province
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Website    string `json:"website,omitempty"`
	Category   string `json:"category"` // service type, e.g. "general_dentistry"
}

// SearchName returns the name used when searching directories: the
// practitioner alias when supplied, else the business name.
func (b BusinessProfile) SearchName() string {
	if b.Alias != "" {
		return b.Alias
	}
	return b.Name
}

// CountryCode is a canonical country identifier used for jurisdiction
// filtering and search locale hints.
type CountryCode string

const (
	CountryUS      CountryCode = "us"
	CountryCA      CountryCode = "ca"
	CountryUK      CountryCode = "uk"
	CountryAU      CountryCode = "au"
	CountryNZ      CountryCode = "nz"
	CountryIE      CountryCode = "ie"
	CountryIN      CountryCode = "in"
	CountryDE      CountryCode = "de"
	CountryFR      CountryCode = "fr"
	CountryUnknown CountryCode = ""
)

var countryAliases = map[string]CountryCode{
	"united states":            CountryUS,
	"united states of america": CountryUS,
	"usa":                      CountryUS,
	"us":                       CountryUS,
	"canada":                   CountryCA,
	"ca":                       CountryCA,
	"united kingdom":           CountryUK,
	"great britain":            CountryUK,
	"uk":                       CountryUK,
	"gb":                       CountryUK,
	"australia":                CountryAU,
	"au":                       CountryAU,
	"new zealand":              CountryNZ,
	"nz":                       CountryNZ,
	"ireland":                  CountryIE,
	"ie":                       CountryIE,
	"india":                    CountryIN,
	"in":                       CountryIN,
	"germany":                  CountryDE,
	"de":                       CountryDE,
	"france":                   CountryFR,
	"fr":                       CountryFR,
}

// NormalizeCountry maps a free-form country string to its canonical code.
// An empty country defaults to the US (matching how listings data is
// sourced); an unrecognized country returns CountryUnknown.
func NormalizeCountry(country string) CountryCode {
	c := strings.ToLower(strings.TrimSpace(country))
	if c == "" {
		return CountryUS
	}
	if code, ok := countryAliases[c]; ok {
		return code
	}
	return CountryUnknown
}

// NormalizedCountry returns the canonical country code for the business.
func (b BusinessProfile) NormalizedCountry() CountryCode {
	return NormalizeCountry(b.Country)
}

// IsUS reports whether the business is in the United States, which drives
// the location term used in site-scoped searches.
func (b BusinessProfile) IsUS() bool {
	return b.NormalizedCountry() == CountryUS
}

// LocaleHint returns the search engine locale parameter for the business's
// country. Unknown countries fall back to "us".
func (b BusinessProfile) LocaleHint() string {
	switch b.NormalizedCountry() {
	case CountryAU:
		return "au"
	case CountryCA:
		return "ca"
	case CountryUK:
		return "uk"
	case CountryNZ:
		return "nz"
	case CountryIE:
		return "ie"
	case CountryIN:
		return "in"
	case CountryDE:
		return "de"
	case CountryFR:
		return "fr"
	default:
		return "us"
	}
}

// LocationTerm returns the location portion of a site-scoped search query:
// city + region for US businesses, the bare country name otherwise. This
// mirrors how a human searches internationally ("Acme Removals Australia").
func (b BusinessProfile) LocationTerm() string {
	if b.IsUS() {
		return strings.TrimSpace(b.City + " " + b.Region)
	}
	return strings.TrimSpace(b.Country)
}
