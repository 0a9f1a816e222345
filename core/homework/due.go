package homework

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

const (
	// DueLayout is how due timestamps are written.
	DueLayout = "2006-01-02 15:04"
	DayLayout = "2006-01-02"

	// older rows were written with unpadded hours and minutes ("2024-07-22 9:5")
	dueParseLayout = "2006-01-02 15:4"
)

var ErrMalformedDue = errors.New("malformed due timestamp")

// Due is a homework deadline: a wall clock date and time, stored without zone
// and read in the school's location.
// It is the only place due timestamps are formatted or parsed.
type Due struct {
	raw string
}

// DueAt formats t's wall clock.
func DueAt(t time.Time) Due {
	return Due{raw: t.Format(DueLayout)}
}

// DueFromParts builds a Due from the form fields: a "2006-01-02" day, an hour and a minute.
func DueFromParts(day string, hour, minute int) (Due, error) {
	d, err := time.Parse(DayLayout, day)
	if err != nil {
		return Due{}, errors.Wrapf(ErrMalformedDue, "day %q", day)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return Due{}, errors.Wrapf(ErrMalformedDue, "time %d:%d", hour, minute)
	}
	return DueAt(time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC)), nil
}

// DueFromString wraps a stored value as is; it is only checked when read with In.
func DueFromString(s string) Due {
	return Due{raw: s}
}

func (d Due) String() string {
	return d.raw
}

func (d Due) IsZero() bool {
	return d.raw == ""
}

// In parses the due timestamp as a wall clock in loc.
func (d Due) In(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dueParseLayout, d.raw, loc)
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrMalformedDue, "%q", d.raw)
	}
	return t, nil
}

// PassedAt reports whether now is strictly after the due timestamp, read in now's location.
func (d Due) PassedAt(now time.Time) (bool, error) {
	t, err := d.In(now.Location())
	if err != nil {
		return false, err
	}
	return now.After(t), nil
}

// Parts splits the due timestamp back into the form fields.
func (d Due) Parts() (day string, hour, minute int, err error) {
	t, err := d.In(time.UTC)
	if err != nil {
		return "", 0, 0, err
	}
	return t.Format(DayLayout), t.Hour(), t.Minute(), nil
}

// Display formats the due timestamp for humans; malformed values are shown as stored.
func (d Due) Display() string {
	t, err := d.In(time.UTC)
	if err != nil {
		return d.raw
	}
	return fmt.Sprintf("%s (%s)", t.Format("2006/01/02 15:04"), t.Weekday().String()[:3])
}
