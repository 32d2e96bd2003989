package napmatch

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonDigitRe   = regexp.MustCompile(`\D`)
	punctRe      = regexp.MustCompile(`[^\w\s]`)

	// Credential suffixes commonly appended to practitioner names.
	credentialRe = regexp.MustCompile(`(?i)[,\s]+(m\.?d\.?|d\.?d\.?s\.?|d\.?m\.?d\.?|d\.?o\.?|ph\.?d\.?|f\.?a\.?c\.?s\.?)\s*$`)
	drPrefixRe   = regexp.MustCompile(`(?i)^dr\.?\s+`)

	diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// NormalizeText lowercases, folds diacritics, and collapses whitespace.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	if folded, _, err := transform.String(diacriticFolder, text); err == nil {
		text = folded
	}
	text = strings.ToLower(strings.TrimSpace(text))
	return whitespaceRe.ReplaceAllString(text, " ")
}

// NormalizePhone strips everything but digits.
func NormalizePhone(phone string) string {
	return nonDigitRe.ReplaceAllString(phone, "")
}

// NormalizeName prepares a business or practitioner name for fuzzy
// comparison: honorific prefix and credential suffixes go, then
// punctuation, then the usual text folding.
func NormalizeName(name string) string {
	name = drPrefixRe.ReplaceAllString(strings.TrimSpace(name), "")
	// Credentials may stack ("Jane Smith, DDS, MD").
	for {
		stripped := credentialRe.ReplaceAllString(name, "")
		if stripped == name {
			break
		}
		name = stripped
	}
	// Fold diacritics before stripping punctuation: \w is ASCII-only.
	name = NormalizeText(name)
	name = punctRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(name, " "))
}

// addressAbbrev folds the long form of common street designators to the
// abbreviation directories usually print.
var addressAbbrev = map[string]string{
	"street":    "st",
	"avenue":    "ave",
	"boulevard": "blvd",
	"drive":     "dr",
	"road":      "rd",
	"lane":      "ln",
	"court":     "ct",
	"place":     "pl",
	"suite":     "ste",
	"highway":   "hwy",
	"parkway":   "pkwy",
	"north":     "n",
	"south":     "s",
	"east":      "e",
	"west":      "w",
}

// NormalizeAddress folds an address component so "123 Main Street"
// compares equal to "123 Main St".
func NormalizeAddress(part string) string {
	part = punctRe.ReplaceAllString(NormalizeText(part), " ")
	words := strings.Fields(part)
	for i, w := range words {
		if abbrev, ok := addressAbbrev[w]; ok {
			words[i] = abbrev
		}
	}
	return strings.Join(words, " ")
}
