package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	// maxAmount bounds amounts to eight integer digits, two decimals.
	maxAmount = decimal.New(1, 8)
)

// maxInputLen caps the cleaned text handed to the decimal parser.
const maxInputLen = 16

// ParseAmount parses user-entered text such as "598.54", "598,54" or
// "1 298,54 €". Text that is not a plain decimal below 100 000 000 with
// at most two fractional digits is rejected with ErrInvalidAmount; it is
// never coerced to zero. Exponent notation is not accepted.
func ParseAmount(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimSuffix(s, "€")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, s)

	if strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", "")
	} else {
		s = strings.ReplaceAll(s, ",", ".")
	}

	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty input", ErrInvalidAmount)
	}
	if strings.ContainsAny(s, "eE") || len(s) > maxInputLen {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, truncate(text))
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, truncate(text))
	}
	if err := checkAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// checkAmount rejects amounts finer than a cent or outside the stored range.
func checkAmount(d decimal.Decimal) error {
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("%w: must be below 100000000 in absolute value", ErrInvalidAmount)
	}
	if !d.Mul(hundred).Equal(d.Mul(hundred).Floor()) {
		return fmt.Errorf("%w: more than 2 decimal places", ErrInvalidAmount)
	}
	return nil
}

func truncate(text string) string {
	const max = 32
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
