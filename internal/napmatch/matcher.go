// Package napmatch scores how well a fetched directory page matches a
// business's ground-truth NAP+W record (Name, Address, Phone, Website).
package napmatch

import (
	"fmt"
	"net/url"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"go.uber.org/zap"

	"github.com/sells-group/citation-audit/internal/fetch"
	"github.com/sells-group/citation-audit/internal/model"
)

const (
	nameThreshold    = 80 // partial-ratio score for name_ok
	addressThreshold = 60 // percent of address parts present for address_ok
	phoneFloor       = 90 // minimum confidence when the phone matched
	minPhoneDigits   = 10
)

// websitePhrases weakly indicate the listing links out to the business
// site even when the domain itself is not printed in the text.
var websitePhrases = []string{
	"visit website", "view website", "go to website", "website:",
	"visit site", "official website",
	"visit their website", "visit our website",
	"business website", "practice website", "company website",
}

// Matcher computes weighted NAP verification results.
type Matcher struct{}

// NewMatcher creates a Matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Verify scores a fetched page against the business's NAP record.
// Phone carries half the weight: a digit-stream phone hit on a page is
// close to proof of identity, so it also floors the confidence at 90.
func (m *Matcher) Verify(page *fetch.Page, business model.BusinessProfile) model.NapVerificationResult {
	content := NormalizeText(page.Text)

	var structured *StructuredNAP
	if page.HTML != "" {
		structured = ExtractStructuredNAP(page.HTML)
		if structured != nil {
			zap.L().Debug("napmatch: structured data present",
				zap.String("url", page.URL),
				zap.String("name", structured.Name),
			)
		}
	}

	phoneScore := m.phoneScore(business.Phone, page.Text, structured)
	nameScore := m.nameScore(business, content, structured)
	addressScore := m.addressScore(business, content, structured)
	websiteOK := m.websiteCheck(business.Website, content, structured)

	confidence := int(0.5*float64(phoneScore) + 0.3*float64(nameScore) + 0.2*float64(addressScore))
	if phoneScore == 100 && confidence < phoneFloor {
		confidence = phoneFloor
	}

	nameOK := nameScore >= nameThreshold
	addressOK := addressScore >= addressThreshold
	phoneOK := phoneScore == 100

	return model.NapVerificationResult{
		URL:        page.URL,
		Status:     model.VerifyFound,
		Confidence: confidence,
		NameOK:     &nameOK,
		AddressOK:  &addressOK,
		PhoneOK:    &phoneOK,
		WebsiteOK:  websiteOK,
		Details:    summarize(nameScore, addressScore, phoneOK, websiteOK),
	}
}

// Blocked builds the inconclusive result for a page withheld by anti-bot
// protection. The URL itself stays valid; only the field checks are
// unknown.
func (m *Matcher) Blocked(targetURL string) model.NapVerificationResult {
	host := "directory"
	if u, err := url.Parse(targetURL); err == nil && u.Hostname() != "" {
		host = strings.TrimPrefix(u.Hostname(), "www.")
		if i := strings.IndexByte(host, '.'); i > 0 {
			host = host[:i]
		}
		if host != "" {
			host = strings.ToUpper(host[:1]) + host[1:]
		}
	}
	return model.NapVerificationResult{
		URL:        targetURL,
		Status:     model.VerifyBlocked,
		Confidence: 0,
		Details:    fmt.Sprintf("Scraper blocked by %s. NAP checks require manual verification.", host),
	}
}

func (m *Matcher) phoneScore(phone, rawContent string, structured *StructuredNAP) int {
	phoneNorm := NormalizePhone(phone)
	if len(phoneNorm) < minPhoneDigits {
		return 0
	}

	contentDigits := NormalizePhone(rawContent)
	if structured != nil && structured.Phone != "" {
		contentDigits += " " + NormalizePhone(structured.Phone)
	}
	if strings.Contains(contentDigits, phoneNorm) {
		return 100
	}
	return 0
}

func (m *Matcher) nameScore(business model.BusinessProfile, content string, structured *StructuredNAP) int {
	target := NormalizeName(business.SearchName())
	if target == "" || content == "" {
		return 0
	}

	score := fuzzy.PartialRatio(target, content)
	if structured != nil && structured.Name != "" {
		if s := fuzzy.PartialRatio(target, NormalizeName(structured.Name)); s > score {
			score = s
		}
	}
	return score
}

func (m *Matcher) addressScore(business model.BusinessProfile, content string, structured *StructuredNAP) int {
	parts := []string{business.Street, business.City, business.PostalCode}

	var structuredParts []string
	if structured != nil {
		structuredParts = []string{structured.Street, structured.City, structured.PostalCode}
	}

	contentNorm := NormalizeAddress(content)

	hits, total := 0, 0
	for i, part := range parts {
		if part == "" {
			continue
		}
		total++
		norm := NormalizeAddress(part)
		if strings.Contains(contentNorm, norm) {
			hits++
			continue
		}
		if structuredParts != nil && structuredParts[i] != "" &&
			NormalizeAddress(structuredParts[i]) == norm {
			hits++
		}
	}
	if total == 0 {
		return 0
	}
	return hits * 100 / total
}

// websiteCheck returns nil when no website was supplied.
func (m *Matcher) websiteCheck(website, content string, structured *StructuredNAP) *bool {
	if website == "" {
		return nil
	}

	domain := model.BaseDomain(website)
	if domain == "" {
		return nil
	}

	ok := strings.Contains(content, domain)
	if !ok && structured != nil && structured.URL != "" {
		ok = strings.Contains(NormalizeText(structured.URL), domain)
	}
	if !ok {
		// Weak secondary signal: the listing advertises an outbound
		// website link without printing the domain.
		for _, phrase := range websitePhrases {
			if strings.Contains(content, phrase) {
				ok = true
				break
			}
		}
	}
	return &ok
}

// summarize renders the 4-line NAP+W summary.
func summarize(nameScore, addressScore int, phoneOK bool, websiteOK *bool) string {
	lines := make([]string, 0, 4)

	switch {
	case nameScore >= 90:
		lines = append(lines, "✓ Name: Found exactly")
	case nameScore >= 80:
		lines = append(lines, "✓ Name: Partial match")
	case nameScore >= 70:
		lines = append(lines, "⚠ Name: Weak match")
	default:
		lines = append(lines, "✗ Name: Not found")
	}

	switch {
	case addressScore >= 80:
		lines = append(lines, "✓ Address: Found")
	case addressScore >= 60:
		lines = append(lines, "⚠ Address: Partial")
	default:
		lines = append(lines, "✗ Address: Not found")
	}

	if phoneOK {
		lines = append(lines, "✓ Phone: Verified")
	} else {
		lines = append(lines, "✗ Phone: Not found")
	}

	switch {
	case websiteOK == nil:
		lines = append(lines, "— Website: Not checked")
	case *websiteOK:
		lines = append(lines, "✓ Website: Link found")
	default:
		lines = append(lines, "✗ Website: Not found")
	}

	return strings.Join(lines, " | ")
}
