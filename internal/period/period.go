package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format returns a period label like "2024-03".
func Format(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// FromTime returns the period containing t.
func FromTime(t time.Time) string {
	return Format(t.Year(), int(t.Month()))
}

// Parse parses "2024-03" into year and month.
func Parse(p string) (year, month int, err error) {
	parts := strings.SplitN(p, "-", 2)
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("invalid period format: %q", p)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in period %q: %w", p, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month in period %q: %w", p, err)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("month %d out of range in period %q", month, p)
	}

	return year, month, nil
}

// Validate reports whether p is a well-formed period label.
func Validate(p string) error {
	_, _, err := Parse(p)
	return err
}

// Compare orders two periods chronologically: -1 if a is before b, 0 if
// equal, +1 if after. Both must be valid.
func Compare(a, b string) (int, error) {
	ay, am, err := Parse(a)
	if err != nil {
		return 0, err
	}
	by, bm, err := Parse(b)
	if err != nil {
		return 0, err
	}
	ak, bk := ay*12+am, by*12+bm
	switch {
	case ak < bk:
		return -1, nil
	case ak > bk:
		return 1, nil
	}
	return 0, nil
}

// Next returns the period following p.
// "2024-12" -> "2025-01"
func Next(p string) (string, error) {
	year, month, err := Parse(p)
	if err != nil {
		return "", err
	}
	if month == 12 {
		return Format(year+1, 1), nil
	}
	return Format(year, month+1), nil
}
