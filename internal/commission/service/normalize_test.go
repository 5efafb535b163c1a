package service

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commission-service/internal/commission/model"
)

func TestNormalize(t *testing.T) {
	n := MustNormalizer(0)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"nan", "nan", ""},
		{"NaN upper", "  NaN ", ""},
		{"none", "None", ""},
		{"lower + trim", "  Akıllı   Telefon ", "akilli telefon"},
		{"dotted capital I", "İstanbul", "istanbul"},
		{"all turkish letters", "ığüşöç İĞÜŞÖÇ", "igusoc igusoc"},
		{"nbsp collapse", "Ev\u00a0\u00a0Tekstili", "ev tekstili"},
		{"decomposed cedilla", "S\u0327emsiye", "semsiye"},
		{"nan inside text kept", "nan ekmek", "nan ekmek"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := MustNormalizer(0)
	inputs := []string{
		"", "nan", "NONE", "İstanbul Şöyle Çeşit", "  Bebek   Bezi\t", "Kılıf & Aksesuar",
		"Ev, Yaşam", "ÇİÇEK", "Ş", "100% Pamuk",
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "input %q", in)
	}
}

func TestNormalize_FoldsToASCII(t *testing.T) {
	n := MustNormalizer(0)
	out := n.Normalize("İstanbul Şöyle Çeşit")
	assert.Equal(t, "istanbul soyle cesit", out)
	for _, r := range out {
		assert.True(t, r == ' ' || (r < unicode.MaxASCII && unicode.IsLower(r)), "rune %q", r)
	}
}

func TestNormalizeCell(t *testing.T) {
	n := MustNormalizer(0)
	assert.Equal(t, "", n.NormalizeCell(model.NullCell()))
	assert.Equal(t, "", n.NormalizeCell(model.TextCell("nan")))
	assert.Equal(t, "0.18", n.NormalizeCell(model.NumberCell(0.18)))
	assert.Equal(t, "tava", n.NormalizeCell(model.TextCell(" TAVA ")))
}

func TestNormalizer_CacheIsBounded(t *testing.T) {
	n, err := NewNormalizer(2)
	require.NoError(t, err)
	n.Normalize("a")
	n.Normalize("b")
	n.Normalize("c")
	assert.Equal(t, 2, n.Len())
	// вытеснение не влияет на результат
	assert.Equal(t, "a", n.Normalize("A"))
}
