package resolve

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/sells-group/citation-audit/internal/model"
)

// directSearch runs the directory's own search form and scans the result
// page for a link naming the business. Used when the open web surfaces
// nothing; only directories with a registered search template qualify.
func (r *Resolver) directSearch(ctx context.Context, business model.BusinessProfile, domain string) *profileHit {
	if r.fetcher == nil {
		return nil
	}

	location := business.City
	if business.Country != "" {
		location = strings.Trim(business.City+", "+business.Country, ", ")
	}

	searchURL, ok := r.reg.SearchURL(domain, business.Name, location)
	if !ok {
		zap.L().Debug("no direct search template", zap.String("domain", domain))
		return nil
	}

	zap.L().Debug("direct directory search",
		zap.String("domain", domain), zap.String("url", searchURL))

	page, err := r.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		zap.L().Debug("direct search fetch failed",
			zap.String("url", searchURL), zap.Error(err))
		return nil
	}

	if link, title := extractProfileLink(page.HTML, business.Name, domain); link != "" {
		return &profileHit{url: link, title: title}
	}
	zap.L().Debug("direct search found no matching profiles", zap.String("domain", domain))
	return nil
}

var skipLinkPatterns = []string{"/search", "/category", "/browse", "?q=", "/find/"}

// extractProfileLink walks the document's anchors and returns the first
// one whose href or text names the business, with relative hrefs resolved
// against the directory domain. Returns "" when nothing matches.
func extractProfileLink(rawHTML, businessName, domain string) (string, string) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", ""
	}

	var found *profileHit
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			href := attr(n, "href")
			if href != "" && !skipLink(href) {
				text := strings.TrimSpace(anchorText(n))
				if NameInText(businessName, text) || NameInText(businessName, href) {
					found = &profileHit{url: resolveHref(href, domain), title: text}
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if found == nil {
		return "", ""
	}
	return found.url, found.title
}

func skipLink(href string) bool {
	lower := strings.ToLower(href)
	for _, p := range skipLinkPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func anchorText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func resolveHref(href, domain string) string {
	switch {
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "/"):
		return "https://" + domain + href
	default:
		return "https://" + domain + "/" + href
	}
}
