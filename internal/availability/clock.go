// Package availability derives room occupancy and per-slot availability from a room's
// operating calendar and a day's appointments. Every function is pure: callers pass the
// current time explicitly and get a freshly computed result back.
package availability

import (
	"fmt"
	"time"
)

// DateLayout is the calendar day format used by appointments
const DateLayout = "2006-01-02"

// Clock is a wall-clock time of day in minutes since midnight
type Clock int

// ParseClock parses a zero-padded 24-hour "HH:MM" label
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	h, okH := twoDigits(s[0], s[1])
	m, okM := twoDigits(s[3], s[4])
	if !okH || !okM {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return Clock(h*60 + m), nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// ClockOf returns the wall-clock time of t, truncated to the minute
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

// Add returns the clock shifted by the given number of minutes
func (c Clock) Add(minutes int) Clock {
	return c + Clock(minutes)
}

// String formats the clock as "HH:MM"
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// ParseDate parses a "YYYY-MM-DD" calendar day in the given location
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// dayNumber orders calendar days without regard to time of day or location
func dayNumber(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
