package service

import (
	"fmt"
	"math"
	"time"
)

const day = 24 * time.Hour

// AdjustedPrice applies a percentage change to a nightly price and rounds
// half up to a whole amount.  Results are clamped to [0, MaxInt64].
func AdjustedPrice(price int64, percentage float64) int64 {
	v := math.Floor(float64(price)*(1+percentage/100) + 0.5)
	switch {
	case v < 0:
		return 0
	case v >= math.MaxInt64:
		// float64(MaxInt64) rounds up to 2^63, which int64() cannot hold
		return math.MaxInt64
	}
	return int64(v)
}

// Nights counts started 24h periods between start and end.  A stay must
// end strictly after it starts.
func Nights(start, end time.Time) (int, error) {
	d := end.Sub(start)
	if d <= 0 {
		return 0, fmt.Errorf("%w: end date must be after start date", ErrValidation)
	}
	n := int(d / day)
	if d%day != 0 {
		n++
	}
	return n, nil
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates; the
// latter are read as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrValidation, s)
}
