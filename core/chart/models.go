package chart

import (
	"github.com/trezcool/kadai/core"
)

const (
	PeriodsPerDay = 9
	Weekdays      = 5
	SlotCount     = PeriodsPerDay * Weekdays
)

// DayLabels are the day_of_week labels of the chart, Monday first.
var DayLabels = [Weekdays]string{"月", "火", "水", "木", "金"}

var ErrNotFound = core.NewNotFoundError("slot")

// Slot is one period of the weekly chart.
type Slot struct {
	ID         int    `json:"time_id"`
	LessonID   *int   `json:"lesson_id"`
	StartTime  string `json:"start_time"`
	FinishTime string `json:"finish_time"`
	DayOfWeek  string `json:"day_of_week"`
}

func (s Slot) HasLesson() bool {
	return s.LessonID != nil
}

// Weekday is the 0 based weekday (0=Monday) of the slot.
func (s Slot) Weekday() int {
	return (s.ID - 1) / PeriodsPerDay
}

// Period is the 1 based period of the slot within its day.
func (s Slot) Period() int {
	return (s.ID-1)%PeriodsPerDay + 1
}

// SlotID returns the chart id of period (1 based) on weekday (0=Monday).
func SlotID(weekday, period int) int {
	return weekday*PeriodsPerDay + period
}

// ValidSlotID reports whether id is one of the seeded chart slots.
func ValidSlotID(id int) bool {
	return id >= 1 && id <= SlotCount
}

// DefaultSlots builds the seed rows of the chart: every weekday gets its 9 periods,
// the ones covered by tt carry their start and finish times.
func DefaultSlots(tt Timetable) []Slot {
	slots := make([]Slot, 0, SlotCount)
	for day := 0; day < Weekdays; day++ {
		for period := 1; period <= PeriodsPerDay; period++ {
			slot := Slot{
				ID:        SlotID(day, period),
				DayOfWeek: DayLabels[day],
			}
			if offset := period - 1; offset < len(tt) {
				slot.StartTime = tt[offset].Start.String()
				slot.FinishTime = tt[offset].End.String()
			}
			slots = append(slots, slot)
		}
	}
	return slots
}

// Grid is the chart laid out for display: one row per period, one cell per weekday.
type Grid [PeriodsPerDay][Weekdays]Cell

type Cell struct {
	Slot       Slot
	LessonName string
}
