package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/trezcool/kadai/core"
	"github.com/trezcool/kadai/core/chart"
	"github.com/trezcool/kadai/core/lesson"
)

type lessonRow struct {
	ID       int    `db:"lesson_id"`
	Name     string `db:"name"`
	Absences int    `db:"number_absence"`
}

func (r lessonRow) lesson() lesson.Lesson {
	return lesson.Lesson{ID: r.ID, Name: r.Name, Absences: r.Absences}
}

type lessonRepository struct {
	db core.DB
}

var _ lesson.Repository = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db core.DB) lesson.Repository {
	return &lessonRepository{db: db}
}

func (repo *lessonRepository) CreateLesson(ctx context.Context, lsn lesson.Lesson, slotID int) (lesson.Lesson, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	q := `INSERT INTO lesson (name, number_absence) VALUES ($1, $2) RETURNING lesson_id`
	if err = tx.GetContext(ctx, &lsn.ID, q, lsn.Name, lsn.Absences); err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "inserting lesson")
	}

	if slotID != 0 {
		res, err := tx.ExecContext(ctx, `UPDATE chart SET lesson_id = $1 WHERE time_id = $2`, lsn.ID, slotID)
		if err != nil {
			return lesson.Lesson{}, errors.Wrapf(err, "attaching lesson to slot %d", slotID)
		}
		if n, err := res.RowsAffected(); err != nil {
			return lesson.Lesson{}, errors.Wrap(err, "attaching lesson")
		} else if n == 0 {
			return lesson.Lesson{}, chart.ErrNotFound
		}
	}

	if err = tx.Commit(); err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "committing lesson")
	}
	return lsn, nil
}

func (repo *lessonRepository) GetLesson(ctx context.Context, id int) (lesson.Lesson, error) {
	var row lessonRow
	q := `SELECT lesson_id, name, number_absence FROM lesson WHERE lesson_id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return lesson.Lesson{}, lesson.ErrNotFound
		}
		return lesson.Lesson{}, errors.Wrapf(err, "selecting lesson %d", id)
	}
	return row.lesson(), nil
}

func (repo *lessonRepository) QueryLessons(ctx context.Context) ([]lesson.Lesson, error) {
	var rows []lessonRow
	q := `SELECT lesson_id, name, number_absence FROM lesson ORDER BY lesson_id`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting lessons")
	}
	lessons := make([]lesson.Lesson, 0, len(rows))
	for _, r := range rows {
		lessons = append(lessons, r.lesson())
	}
	return lessons, nil
}

func (repo *lessonRepository) UpdateLesson(ctx context.Context, lsn lesson.Lesson) (lesson.Lesson, error) {
	var row lessonRow
	q := `UPDATE lesson SET name = $2, number_absence = $3 WHERE lesson_id = $1
		RETURNING lesson_id, name, number_absence`
	if err := repo.db.GetContext(ctx, &row, q, lsn.ID, lsn.Name, lsn.Absences); err != nil {
		if err == sql.ErrNoRows {
			return lesson.Lesson{}, lesson.ErrNotFound
		}
		return lesson.Lesson{}, errors.Wrapf(err, "updating lesson %d", lsn.ID)
	}
	return row.lesson(), nil
}

func (repo *lessonRepository) DecrementAbsences(ctx context.Context, id int) (lesson.Lesson, error) {
	var row lessonRow
	q := `UPDATE lesson SET number_absence = number_absence - 1 WHERE lesson_id = $1
		RETURNING lesson_id, name, number_absence`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return lesson.Lesson{}, lesson.ErrNotFound
		}
		return lesson.Lesson{}, errors.Wrapf(err, "decrementing absences of lesson %d", id)
	}
	return row.lesson(), nil
}
