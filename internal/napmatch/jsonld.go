package napmatch

import (
	"encoding/json"
	"regexp"
	"strings"
)

// StructuredNAP holds identity fields lifted from a page's JSON-LD
// markup. Directories that embed schema.org LocalBusiness data give us
// exact fields instead of raw-text heuristics.
type StructuredNAP struct {
	Name       string
	Street     string
	City       string
	PostalCode string
	Phone      string
	URL        string
}

var jsonLDRe = regexp.MustCompile(`(?is)<script[^>]+type\s*=\s*["']application/ld\+json["'][^>]*>(.*?)</script>`)

// localBusinessTypes is the schema.org type family treated as a
// business listing.
var localBusinessTypes = map[string]bool{
	"localbusiness":               true,
	"dentist":                     true,
	"physician":                   true,
	"medicalbusiness":             true,
	"medicalclinic":               true,
	"medicalorganization":         true,
	"organization":                true,
	"professionalservice":         true,
	"healthandbeautybusiness":     true,
	"attorney":                    true,
	"legalservice":                true,
	"homeandconstructionbusiness": true,
}

// ExtractStructuredNAP scans HTML for application/ld+json blocks and
// returns the first LocalBusiness-family entity found, or nil.
func ExtractStructuredNAP(html string) *StructuredNAP {
	for _, m := range jsonLDRe.FindAllStringSubmatch(html, -1) {
		var raw any
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &raw); err != nil {
			continue
		}
		if nap := findBusinessEntity(raw); nap != nil {
			return nap
		}
	}
	return nil
}

// findBusinessEntity walks a decoded JSON-LD document, including @graph
// arrays and top-level arrays, looking for a business entity.
func findBusinessEntity(node any) *StructuredNAP {
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			if nap := findBusinessEntity(item); nap != nil {
				return nap
			}
		}
	case map[string]any:
		if isBusinessType(v["@type"]) {
			return parseBusinessEntity(v)
		}
		if graph, ok := v["@graph"]; ok {
			return findBusinessEntity(graph)
		}
	}
	return nil
}

func isBusinessType(t any) bool {
	switch v := t.(type) {
	case string:
		return localBusinessTypes[strings.ToLower(v)]
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && localBusinessTypes[strings.ToLower(s)] {
				return true
			}
		}
	}
	return false
}

func parseBusinessEntity(entity map[string]any) *StructuredNAP {
	nap := &StructuredNAP{
		Name:  str(entity["name"]),
		Phone: str(entity["telephone"]),
		URL:   str(entity["url"]),
	}

	if addr, ok := entity["address"].(map[string]any); ok {
		nap.Street = str(addr["streetAddress"])
		nap.City = str(addr["addressLocality"])
		nap.PostalCode = str(addr["postalCode"])
	}

	if nap.Name == "" && nap.Phone == "" && nap.Street == "" {
		return nil
	}
	return nap
}

func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
