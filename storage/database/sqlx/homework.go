package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/kadai/core"
	"github.com/trezcool/kadai/core/homework"
	"github.com/trezcool/kadai/core/lesson"
)

type homeworkRow struct {
	ID          int    `db:"homework_id"`
	Description string `db:"contest"`
	Due         string `db:"limit_time"`
	Status      int    `db:"submission"`
	OnceAWeek   bool   `db:"once_a_week"`
}

func (r homeworkRow) homework() (homework.Homework, error) {
	status, err := homework.StatusFromCode(r.Status)
	if err != nil {
		return homework.Homework{}, errors.Wrapf(err, "homework %d", r.ID)
	}
	return homework.Homework{
		ID:          r.ID,
		Description: r.Description,
		Due:         homework.DueFromString(r.Due),
		Status:      status,
		OnceAWeek:   r.OnceAWeek,
	}, nil
}

const homeworkColumns = `h.homework_id, h.contest, h.limit_time, h.submission, h.once_a_week`

var orderableColumns = map[string]bool{
	"homework_id": true,
	"limit_time":  true,
	"contest":     true,
}

type homeworkRepository struct {
	db core.DB
}

var _ homework.Repository = (*homeworkRepository)(nil) // interface compliance check

func NewHomeworkRepository(db core.DB) homework.Repository {
	return &homeworkRepository{db: db}
}

func (repo *homeworkRepository) CreateHomework(ctx context.Context, hw homework.Homework, lessonID int) (homework.Homework, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return homework.Homework{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var found bool
	if err = tx.GetContext(ctx, &found, `SELECT true FROM lesson WHERE lesson_id = $1`, lessonID); err != nil {
		if err == sql.ErrNoRows {
			return homework.Homework{}, lesson.ErrNotFound
		}
		return homework.Homework{}, errors.Wrapf(err, "selecting lesson %d", lessonID)
	}

	q := `INSERT INTO homework (contest, limit_time, submission, once_a_week) VALUES ($1, $2, $3, $4)
		RETURNING homework_id`
	if err = tx.GetContext(ctx, &hw.ID, q, hw.Description, hw.Due.String(), hw.Status.Code(), hw.OnceAWeek); err != nil {
		return homework.Homework{}, errors.Wrap(err, "inserting homework")
	}

	q = `INSERT INTO lesson_homework (lesson_id, homework_id) VALUES ($1, $2)`
	if _, err = tx.ExecContext(ctx, q, lessonID, hw.ID); err != nil {
		return homework.Homework{}, errors.Wrap(err, "linking homework to lesson")
	}

	if err = tx.Commit(); err != nil {
		return homework.Homework{}, errors.Wrap(err, "committing homework")
	}
	return hw, nil
}

func (repo *homeworkRepository) GetHomework(ctx context.Context, id int) (homework.Homework, error) {
	var row homeworkRow
	q := `SELECT ` + homeworkColumns + ` FROM homework h WHERE h.homework_id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return homework.Homework{}, homework.ErrNotFound
		}
		return homework.Homework{}, errors.Wrapf(err, "selecting homework %d", id)
	}
	return row.homework()
}

func orderBy(ordering []core.DBOrdering) (string, error) {
	clauses := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		if !orderableColumns[ord.Field] {
			return "", errors.Errorf("invalid ordering field %q", ord.Field)
		}
		clauses = append(clauses, "h."+ord.String())
	}
	clauses = append(clauses, "h.homework_id ASC")
	return " ORDER BY " + strings.Join(clauses, ", "), nil
}

func (repo *homeworkRepository) QueryHomeworks(ctx context.Context, filter homework.QueryFilter, ordering []core.DBOrdering) ([]homework.Homework, error) {
	var (
		conds []string
		args  []interface{}
	)
	q := `SELECT ` + homeworkColumns + ` FROM homework h`
	if filter.Status != nil {
		args = append(args, filter.Status.Code())
		conds = append(conds, fmt.Sprintf("h.submission = $%d", len(args)))
	}
	if filter.LessonID != 0 {
		args = append(args, filter.LessonID)
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM lesson_homework lh WHERE lh.homework_id = h.homework_id AND lh.lesson_id = $%d)", len(args)))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	order, err := orderBy(ordering)
	if err != nil {
		return nil, err
	}
	q += order

	var rows []homeworkRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting homeworks")
	}
	homeworks := make([]homework.Homework, 0, len(rows))
	for _, r := range rows {
		hw, err := r.homework()
		if err != nil {
			return nil, err
		}
		homeworks = append(homeworks, hw)
	}
	return homeworks, nil
}

func (repo *homeworkRepository) QueryHomeworkLessons(ctx context.Context) ([]homework.HomeworkLesson, error) {
	var rows []struct {
		homeworkRow
		LessonID   int    `db:"lesson_id"`
		LessonName string `db:"name"`
		Absences   int    `db:"number_absence"`
	}
	q := `SELECT ` + homeworkColumns + `, l.lesson_id, l.name, l.number_absence
		FROM lesson_homework lh
		JOIN homework h ON h.homework_id = lh.homework_id
		JOIN lesson l ON l.lesson_id = lh.lesson_id
		ORDER BY lh.lesson_homework_id`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting homework lessons")
	}

	pairs := make([]homework.HomeworkLesson, 0, len(rows))
	for _, r := range rows {
		hw, err := r.homework()
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, homework.HomeworkLesson{
			Homework: hw,
			Lesson:   lesson.Lesson{ID: r.LessonID, Name: r.LessonName, Absences: r.Absences},
		})
	}
	return pairs, nil
}

func (repo *homeworkRepository) UpdateHomework(ctx context.Context, hw homework.Homework) (homework.Homework, error) {
	var row homeworkRow
	q := `UPDATE homework h SET contest = $2, limit_time = $3, once_a_week = $4 WHERE h.homework_id = $1
		RETURNING ` + homeworkColumns
	if err := repo.db.GetContext(ctx, &row, q, hw.ID, hw.Description, hw.Due.String(), hw.OnceAWeek); err != nil {
		if err == sql.ErrNoRows {
			return homework.Homework{}, homework.ErrNotFound
		}
		return homework.Homework{}, errors.Wrapf(err, "updating homework %d", hw.ID)
	}
	return row.homework()
}

func (repo *homeworkRepository) SetStatus(ctx context.Context, id int, to homework.Status) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE homework SET submission = $2 WHERE homework_id = $1`, id, to.Code())
	if err != nil {
		return errors.Wrapf(err, "setting status of homework %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "setting status of homework %d", id)
	}
	if n == 0 {
		return homework.ErrNotFound
	}
	return nil
}

func (repo *homeworkRepository) SwapStatus(ctx context.Context, id int, from, to homework.Status) (bool, error) {
	q := `UPDATE homework SET submission = $3 WHERE homework_id = $1 AND submission = $2`
	res, err := repo.db.ExecContext(ctx, q, id, from.Code(), to.Code())
	if err != nil {
		return false, errors.Wrapf(err, "swapping status of homework %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrapf(err, "swapping status of homework %d", id)
	}
	return n == 1, nil
}

func (repo *homeworkRepository) DeleteHomework(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM homework WHERE homework_id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "deleting homework %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "deleting homework %d", id)
	}
	if n == 0 {
		return homework.ErrNotFound
	}
	return nil
}
