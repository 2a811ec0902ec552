package crawler

import (
	"testing"

	apperrors "sjsage522/cardwatch/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"9,50 €", "9.50"},
		{"9.50 €", "9.50"},
		{"11,00 €", "11.00"},
		{"1.234,56 €", "1234.56"},
		{"1,234.56 €", "1234.56"},
		{"1.234.567 €", "1234567.00"},
		{"€ 0,05", "0.05"},
		{",5", "0.50"},
		{"12", "12.00"},
		{"  3,1 € ", "3.10"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			price := ParsePrice(tt.raw)
			require.True(t, price.Valid)
			assert.Equal(t, tt.want, price.String())
		})
	}
}

func TestParsePriceWithoutDigits(t *testing.T) {
	for _, raw := range []string{"", "—", "€", "N/A", ",.", "  "} {
		price := ParsePrice(raw)
		assert.False(t, price.Valid, "%q should not parse", raw)
		assert.Equal(t, "", price.String())
	}
}

func TestParseAmountReportsParsingError(t *testing.T) {
	_, err := parseAmount("free")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeParsing))
}
