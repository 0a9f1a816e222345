package chart

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Clock is a time of day in minutes since midnight.
type Clock int

func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ParseClock parses "HH:MM".
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing clock %q", s)
	}
	return NewClock(t.Hour(), t.Minute()), nil
}

func ClockOf(t time.Time) Clock {
	return NewClock(t.Hour(), t.Minute())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Window is a class period, from Start (inclusive) to End (exclusive).
type Window struct {
	Start Clock
	End   Clock
}

func (w Window) Contains(c Clock) bool {
	return c >= w.Start && c < w.End
}

// Timetable holds the ordered, non-overlapping class periods of a day.
// A window's index is its slot offset.
type Timetable []Window

var DefaultTimetable = Timetable{
	{Start: NewClock(8, 30), End: NewClock(10, 0)},
	{Start: NewClock(10, 20), End: NewClock(11, 50)},
	{Start: NewClock(12, 50), End: NewClock(14, 20)},
	{Start: NewClock(14, 40), End: NewClock(16, 10)},
	{Start: NewClock(16, 20), End: NewClock(17, 50)},
}

// Offset returns the index of the first window containing c.
func (tt Timetable) Offset(c Clock) (int, bool) {
	for i, w := range tt {
		if w.Contains(c) {
			return i, true
		}
	}
	return 0, false
}

// WeekdayIndex maps t's weekday to 0=Monday..6=Sunday.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// SlotAt resolves the chart slot in session at t, which must already be in the school's location.
// ok is false outside any class period, weekends included.
func (tt Timetable) SlotAt(t time.Time) (id int, ok bool) {
	offset, ok := tt.Offset(ClockOf(t))
	if !ok {
		return 0, false
	}
	id = SlotID(WeekdayIndex(t), 1+offset)
	if !ValidSlotID(id) {
		return 0, false
	}
	return id, true
}
