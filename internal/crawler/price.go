package crawler

import (
	"fmt"
	"regexp"
	"strings"

	"sjsage522/cardwatch/internal/model"
	"sjsage522/cardwatch/logger"
	apperrors "sjsage522/cardwatch/pkg/errors"

	"github.com/shopspring/decimal"
)

var priceNoise = regexp.MustCompile(`[^\d.,]`)

// ParsePrice extracts an amount from a displayed price such as "1.234,56 €".
// A string without digits yields an absent price.
func ParsePrice(raw string) model.Price {
	amount, err := parseAmount(raw)
	if err != nil {
		logger.ForSource("price").Debug().Err(err).Msg("offer price not parseable")
		return model.NoPrice()
	}
	return model.SomePrice(amount)
}

// parseAmount keeps digits and separators only. When both "." and "," occur
// the last one is the decimal separator; a single kind counts as decimal
// separator only if it occurs once.
func parseAmount(raw string) (decimal.Decimal, error) {
	s := priceNoise.ReplaceAllString(raw, "")
	if !strings.ContainsAny(s, "0123456789") {
		return decimal.Zero, apperrors.NewParsing("price", fmt.Sprintf("no number in %q", raw), nil)
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	decimalAt := -1
	switch {
	case lastDot >= 0 && lastComma >= 0:
		decimalAt = max(lastDot, lastComma)
	case lastDot >= 0 && strings.Count(s, ".") == 1:
		decimalAt = lastDot
	case lastComma >= 0 && strings.Count(s, ",") == 1:
		decimalAt = lastComma
	}

	var b strings.Builder
	for i, r := range s {
		if r == '.' || r == ',' {
			if i == decimalAt {
				b.WriteByte('.')
			}
			continue
		}
		b.WriteRune(r)
	}

	normalized := strings.TrimSuffix(b.String(), ".")
	if strings.HasPrefix(normalized, ".") {
		normalized = "0" + normalized
	}

	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, apperrors.NewParsing("price", fmt.Sprintf("invalid number in %q", raw), err)
	}
	return amount, nil
}
