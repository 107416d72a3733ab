package ledger

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"598.54", "598.54"},
		{"598,54", "598.54"},
		{"  450 ", "450"},
		{"1 298,54", "1298.54"},
		{"1 298,54 €", "1298.54"},
		{"1 298,54€", "1298.54"},
		{"1,298.54", "1298.54"},
		{"-75", "-75"},
		{"0", "0"},
		{"0.5", "0.5"},
		{"99 999 999,99", "99999999.99"},
		{"-99999999.99", "-99999999.99"},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		require.NoError(t, err, "ParseAmount(%q)", tt.in)
		assert.True(t, dec(tt.want).Equal(got), "ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
	}
}

func TestParseAmount_Rejects(t *testing.T) {
	rejected := []string{
		"", "   ", "abc", "12abc", "NaN", "Inf", "-Inf", "1.234", "€",
		"1e3", "1E5", "5e20", "1e-3000000", "2,5e2",
		"100000000", "-100 000 000", "123456789012345678901234567890",
	}
	for _, in := range rejected {
		_, err := ParseAmount(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "ParseAmount(%q)", in)
	}
}

func TestParseAmount_ErrorStaysShort(t *testing.T) {
	for _, in := range []string{"1e-3000000", "0.0000000000001", strings.Repeat("9", 500)} {
		_, err := ParseAmount(in)
		require.Error(t, err)
		assert.Less(t, len(err.Error()), 120, "error for %q", in)
	}
}

func TestSetAmount_RejectsOutOfRange(t *testing.T) {
	l := rsaLedger(t)
	err := l.SetAmount("2024-03", "RSA", "RSA", decimal.New(1, 9))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
