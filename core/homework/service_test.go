package homework_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kadai/core"
	"github.com/trezcool/kadai/core/homework"
	"github.com/trezcool/kadai/core/lesson"
	"github.com/trezcool/kadai/storage/database/inmem"
	"github.com/trezcool/kadai/tests"
)

func TestService_Create(t *testing.T) {
	repo, lsn, db := setup(t)
	svc := homework.NewService(repo)
	ctx := context.Background()

	hw, err := svc.Create(ctx, lsn.ID, homework.Form{Description: "Drill", Day: "2024-07-30", Hour: 9, Minute: 5})
	require.NoError(t, err)
	assert.Equal(t, "2024-07-30 09:05", hw.Due.String())
	assert.Equal(t, homework.StatusUnsubmitted, hw.Status)
	assert.Equal(t, 1, db.LinkCount())

	_, err = svc.Create(ctx, 999, homework.Form{Description: "Drill", Day: "2024-07-30", Hour: 9})
	assert.Equal(t, lesson.ErrNotFound, err)
	assert.True(t, core.IsNotFound(err))

	_, err = svc.Create(ctx, lsn.ID, homework.Form{Description: "Drill", Day: "someday"})
	assert.Error(t, err)
	assert.Equal(t, 1, db.LinkCount(), "nothing created on error")
}

func TestService_CompleteUncomplete(t *testing.T) {
	repo, lsn, _ := setup(t)
	svc := homework.NewService(repo)
	ctx := context.Background()

	hw := testutil.CreateHomework(t, repo, lsn.ID, "Drill", "2024-07-30 09:00", homework.StatusUnsubmitted)

	require.NoError(t, svc.Complete(ctx, hw.ID))
	require.NoError(t, svc.Complete(ctx, hw.ID))
	assert.Equal(t, homework.StatusSubmitted, statusOf(t, repo, hw.ID))

	require.NoError(t, svc.Uncomplete(ctx, hw.ID))
	require.NoError(t, svc.Uncomplete(ctx, hw.ID))
	assert.Equal(t, homework.StatusUnsubmitted, statusOf(t, repo, hw.ID))

	// a late homework can still be handed in
	late := testutil.CreateHomework(t, repo, lsn.ID, "Late", "2024-07-01 09:00", homework.StatusLate)
	require.NoError(t, svc.Complete(ctx, late.ID))
	assert.Equal(t, homework.StatusSubmitted, statusOf(t, repo, late.ID))

	assert.Equal(t, homework.ErrNotFound, svc.Complete(ctx, 999))
	assert.Equal(t, homework.ErrNotFound, svc.Uncomplete(ctx, 999))
}

func TestService_Delete(t *testing.T) {
	repo, lsn, db := setup(t)
	svc := homework.NewService(repo)
	ctx := context.Background()

	hw := testutil.CreateHomework(t, repo, lsn.ID, "Drill", "2024-07-30 09:00", homework.StatusUnsubmitted)
	require.Equal(t, 1, db.LinkCount())

	require.NoError(t, svc.Delete(ctx, hw.ID))
	assert.Equal(t, 1, db.LinkCount(), "association row is left behind")

	_, err := svc.Get(ctx, hw.ID)
	assert.Equal(t, homework.ErrNotFound, err)
	assert.Equal(t, homework.ErrNotFound, svc.Delete(ctx, hw.ID))

	board, err := svc.Board(ctx)
	require.NoError(t, err)
	assert.Empty(t, board.Lessons, "orphans are not listed")
}

func TestService_Board(t *testing.T) {
	repo, lsn, _ := setup(t)
	svc := homework.NewService(repo)

	b := testutil.CreateHomework(t, repo, lsn.ID, "B", "2024-07-31 09:00", homework.StatusUnsubmitted)
	a := testutil.CreateHomework(t, repo, lsn.ID, "A", "2024-07-30 09:00", homework.StatusUnsubmitted)
	s := testutil.CreateHomework(t, repo, lsn.ID, "S", "2024-07-30 09:00", homework.StatusSubmitted)
	l := testutil.CreateHomework(t, repo, lsn.ID, "L", "2024-07-01 09:00", homework.StatusLate)

	board, err := svc.Board(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []homework.Homework{a, b}, board.Unsubmitted, "ordered by due")
	assert.Equal(t, []homework.Homework{s}, board.Submitted)
	assert.Equal(t, []homework.Homework{l}, board.Late)
	require.Len(t, board.Lessons, 4)
	assert.Equal(t, lsn, board.Lessons[0].Lesson)
	assert.Equal(t, b, board.Lessons[0].Homework)
}

func TestService_Update(t *testing.T) {
	repo, lsn, _ := setup(t)
	svc := homework.NewService(repo)
	ctx := context.Background()

	hw := testutil.CreateHomework(t, repo, lsn.ID, "Drill", "2024-07-30 9:5", homework.StatusLate)

	f := homework.FormOf(hw)
	assert.Equal(t, homework.Form{Description: "Drill", Day: "2024-07-30", Hour: 9, Minute: 5}, f)

	f.Description = "Drill 2"
	f.Hour = 10
	got, err := svc.Update(ctx, hw.ID, f)
	require.NoError(t, err)
	assert.Equal(t, "Drill 2", got.Description)
	assert.Equal(t, "2024-07-30 10:05", got.Due.String())
	assert.Equal(t, homework.StatusLate, got.Status)

	_, err = svc.Update(ctx, 999, f)
	assert.Equal(t, homework.ErrNotFound, err)
}

func TestService_Query(t *testing.T) {
	repo, lsn, db := setup(t)
	svc := homework.NewService(repo)
	other := testutil.CreateLesson(t, inmemdb.NewLessonRepository(db), "Art", 5)

	x := testutil.CreateHomework(t, repo, lsn.ID, "X", "2024-07-31 09:00", homework.StatusUnsubmitted)
	y := testutil.CreateHomework(t, repo, other.ID, "Y", "2024-07-30 09:00", homework.StatusSubmitted)

	got, err := svc.Query(context.Background(), homework.QueryFilter{LessonID: other.ID})
	require.NoError(t, err)
	assert.Equal(t, []homework.Homework{y}, got)

	got, err = svc.Query(context.Background(), homework.QueryFilter{}, core.DBOrdering{Field: "limit_time", Ascending: false})
	require.NoError(t, err)
	assert.Equal(t, []homework.Homework{x, y}, got)

	got, err = svc.QueryByStatus(context.Background(), homework.StatusSubmitted)
	require.NoError(t, err)
	assert.Equal(t, []homework.Homework{y}, got)
}
