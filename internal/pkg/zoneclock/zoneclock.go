// Package zoneclock converts between wall-clock readings in named IANA zones and
// absolute instants.
//
// Every function is pure. Failures are returned as wrapped sentinel errors so that
// callers can fold them into a "no schedule" outcome instead of aborting.
package zoneclock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var (
	ErrInvalidTimezone   = errors.New("invalid timezone")
	ErrMalformedWallTime = errors.New("malformed wall time, use HH:MM")
	ErrMalformedDate     = errors.New("malformed date, use YYYY-MM-DD")
)

// LoadLocation resolves an IANA identifier. The empty string and "Local" are
// rejected: both depend on the host rather than on the data.
func LoadLocation(tz string) (*time.Location, error) {
	name := strings.TrimSpace(tz)
	if name == "" || name == "Local" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, tz)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, tz)
	}
	return loc, nil
}

// WeekdayOf returns the weekday observed in tz at instant.
func WeekdayOf(instant time.Time, tz string) (time.Weekday, error) {
	loc, err := LoadLocation(tz)
	if err != nil {
		return 0, err
	}
	return instant.In(loc).Weekday(), nil
}

// DateOf returns the calendar date (YYYY-MM-DD) observed in tz at instant.
func DateOf(instant time.Time, tz string) (string, error) {
	loc, err := LoadLocation(tz)
	if err != nil {
		return "", err
	}
	return instant.In(loc).Format(DateLayout), nil
}

// ParseWallTime parses "HH:MM" (a single-digit hour and a trailing ":SS" are
// tolerated, seconds are ignored).
func ParseWallTime(wallTime string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(wallTime), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedWallTime, wallTime)
	}
	if len(parts[0]) < 1 || len(parts[0]) > 2 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedWallTime, wallTime)
	}
	hour, errH := strconv.Atoi(parts[0])
	minute, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedWallTime, wallTime)
	}
	if len(parts) == 3 {
		if sec, err := strconv.Atoi(parts[2]); err != nil || len(parts[2]) != 2 || sec < 0 || sec > 59 {
			return 0, 0, fmt.Errorf("%w: %q", ErrMalformedWallTime, wallTime)
		}
	}
	return hour, minute, nil
}

// ParseDate parses a YYYY-MM-DD calendar date at midnight UTC.
func ParseDate(date string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, date)
	}
	return d, nil
}

// ToInstant returns the instant whose reading in tz is date + wallTime.
//
// The wall time is first taken as if it were UTC; that guess is rendered back in tz
// and shifted by the minute difference between the rendered and the desired reading.
// When a DST switch falls between the guess and the answer the corrected instant is
// checked once more with the offset in force at the answer. A reading that does not
// exist (spring-forward gap) keeps the first correction.
func ToInstant(date, wallTime, tz string) (time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	hour, minute, err := ParseWallTime(wallTime)
	if err != nil {
		return time.Time{}, err
	}
	loc, err := LoadLocation(tz)
	if err != nil {
		return time.Time{}, err
	}

	desired := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)

	first := correct(desired, desired, loc)
	if wallMinutes(first, loc).Equal(desired) {
		return first, nil
	}
	if second := correct(first, desired, loc); wallMinutes(second, loc).Equal(desired) {
		return second, nil
	}
	return first, nil
}

// correct shifts guess by the signed minute difference between its reading in loc
// and the desired reading.
func correct(guess, desired time.Time, loc *time.Location) time.Time {
	diff := wallMinutes(guess, loc).Sub(desired) / time.Minute
	return guess.Add(-diff * time.Minute)
}

// wallMinutes renders t in loc and re-reads the wall clock, to the minute, as UTC.
func wallMinutes(t time.Time, loc *time.Location) time.Time {
	r := t.In(loc)
	return time.Date(r.Year(), r.Month(), r.Day(), r.Hour(), r.Minute(), 0, 0, time.UTC)
}
