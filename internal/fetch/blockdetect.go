package fetch

import (
	"net/http"
	"strings"
)

// BlockType describes the kind of anti-bot block detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
)

// DetectBlock checks an HTTP response for signs of anti-bot protection.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockType) {
	if resp == nil {
		return false, BlockNone
	}

	// Cloudflare: 403/503 with cf-* headers.
	if resp.StatusCode == 403 || resp.StatusCode == 503 {
		if resp.Header.Get("cf-ray") != "" || resp.Header.Get("cf-cache-status") != "" {
			return true, BlockCloudflare
		}
		if resp.Header.Get("server") == "cloudflare" {
			return true, BlockCloudflare
		}
	}

	// Phrase checks only mean anything on short documents: a real
	// listing page routinely embeds reCAPTCHA for its contact forms.
	if len(body) < 5000 {
		lower := strings.ToLower(string(body))

		if strings.Contains(lower, "checking your browser") ||
			strings.Contains(lower, "cf-browser-verification") ||
			strings.Contains(lower, "cloudflare") && strings.Contains(lower, "challenge") {
			return true, BlockCloudflare
		}

		if strings.Contains(lower, "captcha") ||
			strings.Contains(lower, "recaptcha") ||
			strings.Contains(lower, "hcaptcha") {
			return true, BlockCaptcha
		}

		// JS-only shell: very small body with noscript or meta refresh.
		if len(body) < 2000 {
			if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
				return true, BlockJSShell
			}
			if strings.Contains(lower, "meta http-equiv=\"refresh\"") {
				return true, BlockJSShell
			}
		}
	}

	return false, BlockNone
}

// challengePhrases appear on interstitial pages that rendered without a
// real body. Only meaningful on short documents.
var challengePhrases = []string{
	"verify you are human",
	"checking your browser",
	"access denied",
	"just a moment",
	"enable javascript and cookies",
	"attention required",
}

// SoftBlocked reports whether rendered HTML is a challenge interstitial
// rather than real page content. Headless renders succeed at the HTTP
// level even when the page body is a challenge, so status codes alone
// are not enough.
func SoftBlocked(html string) (bool, BlockType) {
	if len(html) >= 5000 {
		return false, BlockNone
	}
	lower := strings.ToLower(html)
	for _, phrase := range challengePhrases {
		if strings.Contains(lower, phrase) {
			if strings.Contains(lower, "captcha") {
				return true, BlockCaptcha
			}
			return true, BlockCloudflare
		}
	}
	if len(lower) < 500 && strings.TrimSpace(lower) == "" {
		return true, BlockJSShell
	}
	return false, BlockNone
}
