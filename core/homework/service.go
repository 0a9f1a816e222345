package homework

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/kadai/core"
)

type (
	Repository interface {
		// CreateHomework inserts hw and its lesson association in one transaction.
		// lesson.ErrNotFound is returned for an unknown lesson.
		CreateHomework(ctx context.Context, hw Homework, lessonID int) (Homework, error)
		GetHomework(ctx context.Context, id int) (Homework, error)
		QueryHomeworks(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Homework, error)
		// QueryHomeworkLessons returns homeworks joined with their lessons; orphans are left out.
		QueryHomeworkLessons(ctx context.Context) ([]HomeworkLesson, error)
		// UpdateHomework saves the description, due timestamp and weekly flag of hw.
		UpdateHomework(ctx context.Context, hw Homework) (Homework, error)
		// SetStatus unconditionally sets the status of a homework.
		SetStatus(ctx context.Context, id int, to Status) error
		// SwapStatus sets the status to `to` only if it currently is `from`, atomically.
		SwapStatus(ctx context.Context, id int, from, to Status) (bool, error)
		// DeleteHomework deletes the homework row only; lesson associations are kept.
		DeleteHomework(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
	}

	// Board groups homeworks by status for the home page.
	Board struct {
		Unsubmitted []Homework
		Submitted   []Homework
		Late        []Homework
		Lessons     []HomeworkLesson
	}
)

// OrderingFields maps the orderings accepted from clients to the stored columns.
var OrderingFields = map[string]string{
	"id":          "homework_id",
	"due":         "limit_time",
	"description": "contest",
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, lessonID int, f Form) (Homework, error) {
	due, err := f.Due()
	if err != nil {
		return Homework{}, err
	}
	hw := Homework{
		Description: f.Description,
		Due:         due,
		Status:      StatusUnsubmitted,
		OnceAWeek:   f.OnceAWeek,
	}
	return svc.repo.CreateHomework(ctx, hw, lessonID)
}

func (svc *Service) Get(ctx context.Context, id int) (Homework, error) {
	return svc.repo.GetHomework(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Homework, error) {
	return svc.repo.QueryHomeworks(ctx, filter, ordering)
}

func (svc *Service) QueryByStatus(ctx context.Context, s Status) ([]Homework, error) {
	return svc.repo.QueryHomeworks(ctx, QueryFilter{Status: &s}, []core.DBOrdering{{Field: "limit_time", Ascending: true}})
}

func (svc *Service) Board(ctx context.Context) (Board, error) {
	var board Board
	var err error
	if board.Unsubmitted, err = svc.QueryByStatus(ctx, StatusUnsubmitted); err != nil {
		return Board{}, errors.Wrap(err, "querying unsubmitted homeworks")
	}
	if board.Submitted, err = svc.QueryByStatus(ctx, StatusSubmitted); err != nil {
		return Board{}, errors.Wrap(err, "querying submitted homeworks")
	}
	if board.Late, err = svc.QueryByStatus(ctx, StatusLate); err != nil {
		return Board{}, errors.Wrap(err, "querying late homeworks")
	}
	if board.Lessons, err = svc.repo.QueryHomeworkLessons(ctx); err != nil {
		return Board{}, errors.Wrap(err, "querying homework lessons")
	}
	return board, nil
}

// Update saves the edited fields; the status is left as is.
func (svc *Service) Update(ctx context.Context, id int, f Form) (Homework, error) {
	due, err := f.Due()
	if err != nil {
		return Homework{}, err
	}
	return svc.repo.UpdateHomework(ctx, Homework{
		ID:          id,
		Description: f.Description,
		Due:         due,
		OnceAWeek:   f.OnceAWeek,
	})
}

// Complete marks the homework as submitted, whatever its current status.
func (svc *Service) Complete(ctx context.Context, id int) error {
	return svc.repo.SetStatus(ctx, id, StatusSubmitted)
}

// Uncomplete marks the homework as unsubmitted, whatever its current status.
func (svc *Service) Uncomplete(ctx context.Context, id int) error {
	return svc.repo.SetStatus(ctx, id, StatusUnsubmitted)
}

// Delete removes the homework. Its lesson association rows stay behind as orphans.
func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteHomework(ctx, id)
}
