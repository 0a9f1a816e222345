package lesson

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/kadai/core/chart"
)

type (
	Repository interface {
		// CreateLesson inserts lsn and, when slotID is not 0, points that chart slot at it,
		// both in one transaction. chart.ErrNotFound is returned for an unknown slot.
		CreateLesson(ctx context.Context, lsn Lesson, slotID int) (Lesson, error)
		GetLesson(ctx context.Context, id int) (Lesson, error)
		QueryLessons(ctx context.Context) ([]Lesson, error)
		UpdateLesson(ctx context.Context, lsn Lesson) (Lesson, error)
		// DecrementAbsences atomically lowers the absence counter by one and returns the updated Lesson.
		DecrementAbsences(ctx context.Context, id int) (Lesson, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a Lesson and attaches it to the chart slot slotID (0 for none).
func (svc *Service) Create(ctx context.Context, slotID int, f Form) (Lesson, error) {
	if slotID != 0 && !chart.ValidSlotID(slotID) {
		return Lesson{}, chart.ErrNotFound
	}
	lsn := Lesson{
		Name:     f.Name,
		Absences: f.Absences,
	}
	return svc.repo.CreateLesson(ctx, lsn, slotID)
}

func (svc *Service) Get(ctx context.Context, id int) (Lesson, error) {
	return svc.repo.GetLesson(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Lesson, error) {
	return svc.repo.QueryLessons(ctx)
}

// Names maps lesson ids to their names, for display.
func (svc *Service) Names(ctx context.Context) (map[int]string, error) {
	lessons, err := svc.repo.QueryLessons(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying lessons")
	}
	names := make(map[int]string, len(lessons))
	for _, lsn := range lessons {
		names[lsn.ID] = lsn.Name
	}
	return names, nil
}

func (svc *Service) Update(ctx context.Context, id int, f Form) (Lesson, error) {
	return svc.repo.UpdateLesson(ctx, Lesson{
		ID:       id,
		Name:     f.Name,
		Absences: f.Absences,
	})
}

// RecordAbsence decrements the absence counter of the lesson, unconditionally.
func (svc *Service) RecordAbsence(ctx context.Context, id int) (Lesson, error) {
	return svc.repo.DecrementAbsences(ctx, id)
}
