package schedule

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// DATE - A plain calendar date (ISO YYYY-MM-DD, no timezone)
// =============================================================================

// ISODate is the wire format for calendar dates.
const ISODate = "2006-01-02"

// Date is a calendar date with no time-of-day and no timezone. The zero value
// is invalid; construct via NewDate or ParseDate. Internally anchored at UTC
// midnight so day-of-week math never shifts across timezones.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(ISODate, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// MustParseDate is for tests and literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf truncates a point in time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func (d Date) IsZero() bool { return d.t.IsZero() }
func (d Date) ISO() string { return d.t.Format(ISODate) }
func (d Date) String() string { return d.ISO() }

// Weekday returns the day of week under the Sunday=0 convention
// (so Saturday is 6). time.Weekday already numbers Sunday as 0.
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// IsSaturday reports whether the date falls on a Saturday.
func (d Date) IsSaturday() bool { return d.t.Weekday() == time.Saturday }

// NextSaturday returns the first Saturday strictly after d. A Saturday input
// yields the following Saturday, one week later.
func (d Date) NextSaturday() Date {
	days := (int(time.Saturday) - int(d.t.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return d.AddDays(days)
}

func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// AddMonths adds n calendar months via time.AddDate, which normalizes instead
// of clamping: Jan 31 + 1 month is Mar 3, not Feb 28. Callers that need one
// bucket per month must step from FirstOfMonth.
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }

// FirstOfMonth returns the first day of d's month.
func (d Date) FirstOfMonth() Date {
	return NewDate(d.t.Year(), d.t.Month(), 1)
}

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

// YearMonth returns the YYYY-MM prefix, used as a month bucket key.
func (d Date) YearMonth() string { return d.t.Format("2006-01") }

// Year returns the YYYY prefix, used as a year bucket key.
func (d Date) Year() string { return d.t.Format("2006") }

// MarshalJSON encodes as a quoted ISO date.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.ISO())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// TIME OF DAY - Optional HH:MM, 24-hour
// =============================================================================

// ValidTimeOfDay reports whether s is a well-formed HH:MM, 24-hour clock.
// The empty string is valid and means "unset".
func ValidTimeOfDay(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}
