package resolve

import (
	"strings"

	"github.com/sells-group/citation-audit/internal/napmatch"
)

var slugStopWords = map[string]struct{}{
	"the": {},
	"and": {},
	"of":  {},
}

// significantWords returns the normalized name tokens longer than two
// characters, in order.
func significantWords(name string) []string {
	var out []string
	for _, w := range strings.Fields(napmatch.NormalizeName(name)) {
		if len(w) > 2 {
			out = append(out, w)
		}
	}
	return out
}

// slugTokens is significantWords minus connective words, used to build the
// hyphenated pattern matched against URL slugs.
func slugTokens(name string) []string {
	var out []string
	for _, w := range significantWords(name) {
		if _, stop := slugStopWords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

// NameInText reports whether a business or practitioner name appears in
// text. Multi-word names require the leading significant words to appear
// together, which keeps "Northwestern Medicine" from matching a bio that
// mentions "trained at Northwestern in internal medicine".
func NameInText(name, text string) bool {
	if name == "" || text == "" {
		return false
	}
	nameNorm := napmatch.NormalizeName(name)
	textLower := strings.ToLower(text)

	if strings.Contains(textLower, nameNorm) {
		return true
	}

	parts := significantWords(name)
	switch {
	case len(parts) >= 2:
		if strings.Contains(textLower, strings.Join(parts[:2], " ")) {
			return true
		}
		if len(parts) >= 3 && strings.Contains(textLower, strings.Join(parts[:3], " ")) {
			return true
		}
	case len(parts) == 1:
		// Single-word names must match a whole token.
		for _, tok := range strings.Fields(textLower) {
			if tok == parts[0] {
				return true
			}
		}
	}
	return false
}
