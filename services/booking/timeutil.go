package booking

import (
	"regexp"
	"strconv"
	"time"
)

const dateLayout = "2006-01-02"

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// Date is a calendar day without a zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, NewValidationError("invalid date", "date must be YYYY-MM-DD, got "+strconv.Quote(s))
	}
	return DateOf(t), nil
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(dateLayout)
}

func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC).Weekday()
}

// ParseClock returns minutes since midnight for "HH:MM".
func ParseClock(s string) (int, error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, NewInvalidTimeFormat("time %q does not match HH:MM", s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, NewInvalidTimeFormat("time %q is out of range", s)
	}
	return hour*60 + minute, nil
}

// LoadLocation resolves an IANA zone name.
func LoadLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return nil, NewInvalidTimeFormat("timezone is required")
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, NewInvalidTimeFormat("unknown timezone %q", tz)
	}
	return loc, nil
}

// ResolveWallClock returns the instant at which clock reads on date in timezone tz.
// Wall clocks inside a DST gap are normalized forward by time.Date.
func ResolveWallClock(date Date, clock, tz string) (time.Time, error) {
	loc, err := LoadLocation(tz)
	if err != nil {
		return time.Time{}, err
	}
	return resolveIn(date, clock, loc)
}

func resolveIn(date Date, clock string, loc *time.Location) (time.Time, error) {
	minutes, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year, date.Month, date.Day, minutes/60, minutes%60, 0, 0, loc), nil
}

// DayBounds returns [midnight of date, midnight of the following date) in loc.
func DayBounds(date Date, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(date.Year, date.Month, date.Day, 0, 0, 0, 0, loc)
	return start, time.Date(date.Year, date.Month, date.Day+1, 0, 0, 0, 0, loc)
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
