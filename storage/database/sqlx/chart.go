package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kadai/core"
	"github.com/trezcool/kadai/core/chart"
)

type slotRow struct {
	ID         int         `db:"time_id"`
	LessonID   null.Int    `db:"lesson_id"`
	StartTime  null.String `db:"start_time"`
	FinishTime null.String `db:"finish_time"`
	DayOfWeek  string      `db:"day_of_week"`
}

func (r slotRow) slot() chart.Slot {
	slot := chart.Slot{
		ID:         r.ID,
		StartTime:  r.StartTime.String,
		FinishTime: r.FinishTime.String,
		DayOfWeek:  r.DayOfWeek,
	}
	if r.LessonID.Valid {
		id := r.LessonID.Int
		slot.LessonID = &id
	}
	return slot
}

const slotColumns = `time_id, lesson_id, start_time, finish_time, day_of_week`

type chartRepository struct {
	db core.DB
}

var _ chart.Repository = (*chartRepository)(nil) // interface compliance check

func NewChartRepository(db core.DB) chart.Repository {
	return &chartRepository{db: db}
}

func (repo *chartRepository) GetSlot(ctx context.Context, id int) (chart.Slot, error) {
	var row slotRow
	q := `SELECT ` + slotColumns + ` FROM chart WHERE time_id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return chart.Slot{}, chart.ErrNotFound
		}
		return chart.Slot{}, errors.Wrapf(err, "selecting slot %d", id)
	}
	return row.slot(), nil
}

func (repo *chartRepository) QuerySlots(ctx context.Context) ([]chart.Slot, error) {
	var rows []slotRow
	q := `SELECT ` + slotColumns + ` FROM chart ORDER BY time_id`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting slots")
	}
	slots := make([]chart.Slot, 0, len(rows))
	for _, r := range rows {
		slots = append(slots, r.slot())
	}
	return slots, nil
}

func (repo *chartRepository) SeedSlots(ctx context.Context, slots []chart.Slot) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	q := `INSERT INTO chart (time_id, start_time, finish_time, day_of_week) VALUES ($1, $2, $3, $4)
		ON CONFLICT (time_id) DO UPDATE
		SET start_time = EXCLUDED.start_time, finish_time = EXCLUDED.finish_time, day_of_week = EXCLUDED.day_of_week`
	for _, s := range slots {
		start := null.NewString(s.StartTime, s.StartTime != "")
		finish := null.NewString(s.FinishTime, s.FinishTime != "")
		if _, err = tx.ExecContext(ctx, q, s.ID, start, finish, s.DayOfWeek); err != nil {
			return errors.Wrapf(err, "seeding slot %d", s.ID)
		}
	}
	return errors.Wrap(tx.Commit(), "committing chart")
}
