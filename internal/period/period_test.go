package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "2024-03", Format(2024, 3))
	assert.Equal(t, "2025-12", Format(2025, 12))
}

func TestFromTime(t *testing.T) {
	assert.Equal(t, "2024-03", FromTime(time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC)))
}

func TestParse(t *testing.T) {
	year, month, err := Parse("2024-03")
	require.NoError(t, err)
	assert.Equal(t, 2024, year)
	assert.Equal(t, 3, month)
}

func TestParse_Invalid(t *testing.T) {
	for _, p := range []string{"", "2024", "2024-3", "24-03", "2024-13", "2024-00", "abcd-01", "2024-0a", "Mar"} {
		_, _, err := Parse(p)
		assert.Error(t, err, "Parse(%q) should fail", p)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2024-03", "2024-04", -1},
		{"2024-04", "2024-03", 1},
		{"2024-03", "2024-03", 0},
		{"2023-12", "2024-01", -1},
		{"2025-01", "2024-12", 1},
	}
	for _, tt := range tests {
		got, err := Compare(tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Compare(%q, %q)", tt.a, tt.b)
	}

	_, err := Compare("2024-03", "bad")
	require.Error(t, err)
}

func TestNext(t *testing.T) {
	got, err := Next("2024-03")
	require.NoError(t, err)
	assert.Equal(t, "2024-04", got)

	got, err = Next("2024-12")
	require.NoError(t, err)
	assert.Equal(t, "2025-01", got)

	_, err = Next("nope")
	require.Error(t, err)
}
