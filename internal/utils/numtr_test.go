package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAmountTR(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1.234,50", "1234.50", true},
		{"1 234,50 TL", "1234.50", true},
		{"₺99,9", "99.9", true},
		{"1234.5", "1234.5", true},
		{"1,234.50", "1234.50", true},
		{"1.000.000", "1000000", true},
		{"12", "12", true},
		{"-15,5", "-15.5", true},
		{"(20,00)", "-20.00", true},
		{"", "", false},
		{"abc", "", false},
		{"1-2", "", false},
		{",", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeAmountTR(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmountTR(t *testing.T) {
	f, ok := ParseAmountTR("2.499,99")
	assert.True(t, ok)
	assert.InDelta(t, 2499.99, f, 1e-9)

	_, ok = ParseAmountTR("yok")
	assert.False(t, ok)
}
