package fetch

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func respWith(status int, headers map[string]string) *http.Response {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	return &http.Response{StatusCode: status, Header: h}
}

func TestDetectBlock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		resp      *http.Response
		body      string
		blocked   bool
		blockType BlockType
	}{
		{"nil response", nil, "", false, BlockNone},
		{"clean 200", respWith(200, nil), "<html><body>Acme Dental, 123 Main St</body></html>", false, BlockNone},
		{"cloudflare 403 header", respWith(403, map[string]string{"cf-ray": "abc123"}), "", true, BlockCloudflare},
		{"cloudflare server header", respWith(503, map[string]string{"server": "cloudflare"}), "", true, BlockCloudflare},
		{"cloudflare challenge body", respWith(200, nil), "Checking your browser before accessing", true, BlockCloudflare},
		{"captcha body", respWith(200, nil), "please solve this reCAPTCHA to continue", true, BlockCaptcha},
		{"js shell", respWith(200, nil), "<noscript>This site requires JavaScript</noscript>", true, BlockJSShell},
		{"large body with noscript is fine", respWith(200, nil),
			"<noscript>js</noscript>" + strings.Repeat("real content ", 200), false, BlockNone},
		{"long page embedding recaptcha is fine", respWith(200, nil),
			`<div class="g-recaptcha"></div>` + strings.Repeat("listing content ", 400), false, BlockNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocked, blockType := DetectBlock(tt.resp, []byte(tt.body))
			assert.Equal(t, tt.blocked, blocked)
			assert.Equal(t, tt.blockType, blockType)
		})
	}
}

func TestSoftBlocked(t *testing.T) {
	t.Parallel()

	blocked, bt := SoftBlocked("<html><body>Verify you are human</body></html>")
	assert.True(t, blocked)
	assert.Equal(t, BlockCloudflare, bt)

	blocked, bt = SoftBlocked("<html>please complete the captcha to verify you are human</html>")
	assert.True(t, blocked)
	assert.Equal(t, BlockCaptcha, bt)

	// Long documents are trusted even when a challenge phrase appears
	// somewhere in them.
	long := "access denied stories from our archive " + strings.Repeat("article text ", 500)
	blocked, _ = SoftBlocked(long)
	assert.False(t, blocked)

	blocked, _ = SoftBlocked("<html><body><h1>Acme Dental</h1><p>123 Main St, Austin TX</p></body></html>")
	assert.False(t, blocked)
}

func TestStripHTML(t *testing.T) {
	t.Parallel()

	html := `<html><head><title>Acme Dental</title><style>body{}</style></head>
<body><script>track()</script><nav>menu</nav><h1>Acme &amp; Co</h1><p>123 Main St</p><footer>legal</footer></body></html>`

	text := StripHTML(html)
	assert.Contains(t, text, "Acme & Co")
	assert.Contains(t, text, "123 Main St")
	assert.NotContains(t, text, "track()")
	assert.NotContains(t, text, "menu")
	assert.NotContains(t, text, "legal")

	assert.Equal(t, "Acme Dental", ExtractTitle(html))
	assert.Empty(t, ExtractTitle("<html><body>no title</body></html>"))
}
