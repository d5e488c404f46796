// Package daterange holds the date arithmetic used for stays.
//
// A stay is the half-open interval [CheckIn, CheckOut): the night of CheckOut
// is free for the next guest. All values are truncated to UTC midnight so that
// comparisons never depend on the time of day a request was made.
package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

type Range struct {
	CheckIn  time.Time `json:"check_in" bson:"check_in"`
	CheckOut time.Time `json:"check_out" bson:"check_out"`
}

// Day strips the time-of-day, returning midnight UTC of t's UTC date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay accepts "2006-01-02" or an RFC 3339 timestamp.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}
	if t, err := time.Parse(DayLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Day(t), nil
}

func New(checkIn, checkOut time.Time) Range {
	return Range{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
}

// IsValid reports whether checkOut is strictly after checkIn and checkIn is
// not before today. Comparison happens at day granularity.
func IsValid(checkIn, checkOut, today time.Time) bool {
	in, out, now := Day(checkIn), Day(checkOut), Day(today)
	return out.After(in) && !in.Before(now)
}

// Overlaps is the half-open intersection test. Back-to-back stays, where one
// checkout equals the other's check-in, do not overlap.
func Overlaps(existing, candidate Range) bool {
	return existing.CheckIn.Before(candidate.CheckOut) && existing.CheckOut.After(candidate.CheckIn)
}

func (r Range) Valid(today time.Time) bool {
	return IsValid(r.CheckIn, r.CheckOut, today)
}

func (r Range) Overlaps(other Range) bool {
	return Overlaps(r, other)
}

func (r Range) Nights() int {
	if !r.CheckOut.After(r.CheckIn) {
		return 0
	}
	return int(Day(r.CheckOut).Sub(Day(r.CheckIn)).Hours() / 24)
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)", r.CheckIn.Format(DayLayout), r.CheckOut.Format(DayLayout))
}
