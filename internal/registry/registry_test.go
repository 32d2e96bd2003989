package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrectDomain(t *testing.T) {
	t.Parallel()
	r := New()

	tests := []struct {
		name      string
		directory string
		domain    string
		want      string
		corrected bool
	}{
		{"known bad domain", "American Dental Association", "1800dentist.com", "ada.org", true},
		{"already correct", "American Dental Association", "ada.org", "ada.org", false},
		{"keyword inside longer name", "ADA Find-a-Dentist Tool", "dentist.com", "ada.org", true},
		{"unknown directory", "Yelp", "yelp.com", "yelp.com", false},
		{"bbb", "Better Business Bureau", "bbb.com", "bbb.org", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, corrected := r.CorrectDomain(tt.directory, tt.domain)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.corrected, corrected)
		})
	}
}

func TestSearchable(t *testing.T) {
	t.Parallel()
	r := New()

	assert.False(t, r.Searchable("google.com"))
	assert.False(t, r.Searchable("facebook.com"))
	assert.False(t, r.Searchable("business.google.com"))
	assert.True(t, r.Searchable("yelp.com"))
	assert.True(t, r.Searchable("healthgrades.com"))
}

func TestSubmitURL(t *testing.T) {
	t.Parallel()
	r := New()

	assert.Equal(t, "https://biz.yelp.com/claim", r.SubmitURL("yelp.com"))
	// Subdomain resolves through containment.
	assert.Equal(t, "https://www.ada.org/member-center/update-profile", r.SubmitURL("findadentist.ada.org"))
	assert.Empty(t, r.SubmitURL("no-such-directory.example"))
}

func TestSearchURL(t *testing.T) {
	t.Parallel()
	r := New()

	u, ok := r.SearchURL("yelp.com.au", "Acme Dental", "Sydney, Australia")
	require.True(t, ok)
	assert.Equal(t, "https://www.yelp.com.au/search?find_desc=Acme+Dental&find_loc=Sydney%2C+Australia", u)

	u, ok = r.SearchURL("truelocal.com.au", "Acme Dental", "Sydney")
	require.True(t, ok)
	assert.Equal(t, "https://www.truelocal.com.au/search/Acme+Dental/Sydney", u)

	_, ok = r.SearchURL("obscure-directory.net", "Acme", "Austin")
	assert.False(t, ok)
}

func TestNewWithOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "registry.yaml")
	content := `
corrections:
  acme directory network: acmedir.com
submit_urls:
  yelp.com: https://example.com/overridden
not_searchable:
  - walled-garden.example
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := NewWithOverrides(path)
	require.NoError(t, err)

	got, corrected := r.CorrectDomain("Acme Directory Network", "wrong.com")
	assert.True(t, corrected)
	assert.Equal(t, "acmedir.com", got)

	assert.Equal(t, "https://example.com/overridden", r.SubmitURL("yelp.com"))
	assert.False(t, r.Searchable("walled-garden.example"))
	// Defaults survive the merge.
	assert.False(t, r.Searchable("google.com"))
	assert.Equal(t, "https://www.manta.com/claim", r.SubmitURL("manta.com"))
}

func TestNewWithOverrides_MissingFile(t *testing.T) {
	t.Parallel()

	r, err := NewWithOverrides(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.True(t, r.Searchable("yelp.com"))
}

func TestNewWithOverrides_Malformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("corrections: [not, a, map]"), 0o644))

	_, err := NewWithOverrides(path)
	require.Error(t, err)
}
