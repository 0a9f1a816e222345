package chart

import (
	"context"

	"github.com/pkg/errors"
)

type (
	Repository interface {
		GetSlot(ctx context.Context, id int) (Slot, error)
		// QuerySlots returns every slot ordered by id.
		QuerySlots(ctx context.Context) ([]Slot, error)
		// SeedSlots inserts missing slots and refreshes the times and labels of existing ones.
		// Lesson references are left untouched.
		SeedSlots(ctx context.Context, slots []Slot) error
	}

	Service struct {
		repo      Repository
		timetable Timetable
	}
)

func NewService(repo Repository, tt Timetable) *Service {
	return &Service{repo: repo, timetable: tt}
}

func (svc *Service) Timetable() Timetable {
	return svc.timetable
}

func (svc *Service) Get(ctx context.Context, id int) (Slot, error) {
	if !ValidSlotID(id) {
		return Slot{}, ErrNotFound
	}
	return svc.repo.GetSlot(ctx, id)
}

// Seed populates the 45 chart slots from the timetable.
func (svc *Service) Seed(ctx context.Context) error {
	if err := svc.repo.SeedSlots(ctx, DefaultSlots(svc.timetable)); err != nil {
		return errors.Wrap(err, "seeding chart")
	}
	return nil
}

// Grid lays the chart out by period and weekday, naming each slot's lesson from lessonNames.
func (svc *Service) Grid(ctx context.Context, lessonNames map[int]string) (Grid, error) {
	var grid Grid
	slots, err := svc.repo.QuerySlots(ctx)
	if err != nil {
		return grid, errors.Wrap(err, "querying slots")
	}
	for _, slot := range slots {
		if !ValidSlotID(slot.ID) {
			continue
		}
		cell := Cell{Slot: slot}
		if slot.LessonID != nil {
			cell.LessonName = lessonNames[*slot.LessonID]
		}
		grid[slot.Period()-1][slot.Weekday()] = cell
	}
	return grid, nil
}
