package napmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "acme dental", NormalizeText("  Acme   Dental "))
	assert.Equal(t, "", NormalizeText(""))
	// Diacritics fold so "Café Dentál" matches what a directory prints.
	assert.Equal(t, "cafe dental", NormalizeText("Café Dentál"))
}

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "5125550100", NormalizePhone("(512) 555-0100"))
	assert.Equal(t, "15125550100", NormalizePhone("+1 512.555.0100"))
	assert.Equal(t, "", NormalizePhone("no digits"))
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Dr. Jane Smith, DDS", "jane smith"},
		{"Dr Jane Smith", "jane smith"},
		{"Jane Smith, MD, FACS", "jane smith"},
		{"Jane Smith DMD", "jane smith"},
		{"Acme Dental & Co.", "acme dental co"},
		{"Acme Dental", "acme dental"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeAddress(t *testing.T) {
	t.Parallel()

	assert.Equal(t, NormalizeAddress("123 Main Street"), NormalizeAddress("123 Main St."))
	assert.Equal(t, "123 n main st ste 4", NormalizeAddress("123 North Main Street, Suite 4"))
	assert.Equal(t, "456 oak blvd", NormalizeAddress("456 Oak Boulevard"))
}
