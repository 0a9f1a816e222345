package tests

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kadai/core/chart"
	"github.com/trezcool/kadai/core/homework"
	"github.com/trezcool/kadai/tests"
)

func homeworkForm(description, day, hour, minute string, onceAWeek bool) url.Values {
	v := url.Values{
		"contest": {description},
		"day":     {day},
		"hour":    {hour},
		"minute":  {minute},
	}
	if onceAWeek {
		v.Set("once_a_week", "true")
	}
	return v
}

func Test_homeworkApi_index(t *testing.T) {
	setup(t)

	lsn := testutil.CreateLesson(t, lessonRepo, "Math", 5)
	testutil.CreateHomework(t, hwRepo, lsn.ID, "Drill 1", "2024-07-30 9:5", homework.StatusUnsubmitted)
	testutil.CreateHomework(t, hwRepo, lsn.ID, "Drill 2", "2024-07-29 09:00", homework.StatusSubmitted)
	testutil.CreateHomework(t, hwRepo, lsn.ID, "Drill 3", "2024-07-01 09:00", homework.StatusLate)

	runHTTPTests(t, []httpTest{
		{name: "board", path: "/", wantBody: []string{"Drill 1", "2024/07/30 09:05 (Tue)", "Drill 2", "Drill 3", "Math"}},
		{name: "trailing slash", path: "/lessons/", wantBody: []string{"Math"}},
		{name: "unknown page", path: "/lol", wantCode: http.StatusNotFound},
	})
}

func Test_homeworkApi_chart(t *testing.T) {
	setup(t)

	// Tuesday 2nd period
	lsn := testutil.CreateLesson(t, lessonRepo, "Physics", 5, chart.SlotID(1, 2))

	runHTTPTests(t, []httpTest{
		{
			name: "grid",
			path: "/new_homework",
			wantBody: []string{
				"Physics",
				`href="/new_homework/` + strconv.Itoa(lsn.ID) + `"`,
				`href="/new_lesson/1"`,
				`href="/new_lesson/45"`,
				"月", "金",
			},
		},
	})
}

func Test_homeworkApi_create(t *testing.T) {
	setup(t)

	lsn := testutil.CreateLesson(t, lessonRepo, "Math", 5)
	path := "/new_homework/" + strconv.Itoa(lsn.ID)

	runHTTPTests(t, []httpTest{
		{name: "form", path: path, wantBody: []string{"Math", `name="contest"`}},
		{name: "form: unknown lesson", path: "/new_homework/999", wantCode: http.StatusNotFound, wantBody: []string{"lesson not found"}},
		{name: "form: invalid lesson id", path: "/new_homework/lol", wantCode: http.StatusNotFound},
		{
			name: "missing fields", method: http.MethodPost, path: path, form: homeworkForm("", "", "9", "0", false),
			wantCode: http.StatusBadRequest, wantBody: []string{"this field is required"},
		},
		{
			name: "minute off grid", method: http.MethodPost, path: path, form: homeworkForm("Drill", "2024-07-30", "9", "7", false),
			wantCode: http.StatusBadRequest, wantBody: []string{"minute must be a multiple of 5"},
		},
		{
			name: "bad day", method: http.MethodPost, path: path, form: homeworkForm("Drill", "30/07/2024", "9", "5", false),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown lesson", method: http.MethodPost, path: "/new_homework/999", form: homeworkForm("Drill", "2024-07-30", "9", "5", false),
			wantCode: http.StatusNotFound,
		},
		{
			name: "create", method: http.MethodPost, path: path, form: homeworkForm("Drill", "2024-07-30", "9", "5", true),
			wantCode: http.StatusSeeOther, wantLoc: "/",
		},
	})

	homeworks, err := hwRepo.QueryHomeworks(context.Background(), homework.QueryFilter{LessonID: lsn.ID}, nil)
	require.NoError(t, err)
	require.Len(t, homeworks, 1)
	assert.Equal(t, "Drill", homeworks[0].Description)
	assert.Equal(t, "2024-07-30 09:05", homeworks[0].Due.String())
	assert.Equal(t, homework.StatusUnsubmitted, homeworks[0].Status)
	assert.True(t, homeworks[0].OnceAWeek)
}

func Test_homeworkApi_status(t *testing.T) {
	setup(t)

	lsn := testutil.CreateLesson(t, lessonRepo, "Math", 5)
	hw := testutil.CreateHomework(t, hwRepo, lsn.ID, "Drill", "2024-07-01 09:00", homework.StatusLate)
	path := "/homeworks/" + strconv.Itoa(hw.ID)

	statusOf := func() homework.Status {
		got, err := hwRepo.GetHomework(context.Background(), hw.ID)
		require.NoError(t, err)
		return got.Status
	}

	runHTTPTests(t, []httpTest{{name: "complete", method: http.MethodPost, path: path + "/complete", wantCode: http.StatusSeeOther, wantLoc: "/"}})
	assert.Equal(t, homework.StatusSubmitted, statusOf())

	runHTTPTests(t, []httpTest{{name: "complete again", method: http.MethodPost, path: path + "/complete", wantCode: http.StatusSeeOther}})
	assert.Equal(t, homework.StatusSubmitted, statusOf())

	runHTTPTests(t, []httpTest{{name: "uncomplete", method: http.MethodPost, path: path + "/uncomplete", wantCode: http.StatusSeeOther}})
	assert.Equal(t, homework.StatusUnsubmitted, statusOf())

	runHTTPTests(t, []httpTest{
		{name: "uncomplete again", method: http.MethodPost, path: path + "/uncomplete", wantCode: http.StatusSeeOther},
		{name: "complete unknown", method: http.MethodPost, path: "/homeworks/999/complete", wantCode: http.StatusNotFound, wantBody: []string{"homework not found: nothing was changed"}},
		{name: "uncomplete unknown", method: http.MethodPost, path: "/homeworks/999/uncomplete", wantCode: http.StatusNotFound},
	})
	assert.Equal(t, homework.StatusUnsubmitted, statusOf())
}

func Test_homeworkApi_destroy(t *testing.T) {
	setup(t)

	lsn := testutil.CreateLesson(t, lessonRepo, "Math", 5)
	hw := testutil.CreateHomework(t, hwRepo, lsn.ID, "Drill", "2024-07-01 09:00", homework.StatusUnsubmitted)
	path := "/homeworks/" + strconv.Itoa(hw.ID) + "/delete"

	runHTTPTests(t, []httpTest{
		{name: "delete", method: http.MethodPost, path: path, wantCode: http.StatusSeeOther, wantLoc: "/"},
		{name: "delete again", method: http.MethodPost, path: path, wantCode: http.StatusNotFound},
		{name: "board without orphan", path: "/", wantBody: []string{"なし"}},
	})

	_, err := hwRepo.GetHomework(context.Background(), hw.ID)
	assert.Equal(t, homework.ErrNotFound, err)
	assert.Equal(t, 1, mem.LinkCount(), "association row is kept")
}

func Test_homeworkApi_update(t *testing.T) {
	setup(t)

	lsn := testutil.CreateLesson(t, lessonRepo, "Math", 5)
	hw := testutil.CreateHomework(t, hwRepo, lsn.ID, "Drill", "2024-07-30 9:5", homework.StatusLate)
	path := "/homeworks/" + strconv.Itoa(hw.ID) + "/update"

	runHTTPTests(t, []httpTest{
		{
			name: "prefilled form", path: path,
			wantBody: []string{`value="Drill"`, `value="2024-07-30"`, `value="9" selected`, `value="5" selected`},
		},
		{name: "form: unknown", path: "/homeworks/999/update", wantCode: http.StatusNotFound},
		{
			name: "invalid", method: http.MethodPost, path: path, form: homeworkForm("", "2024-08-01", "10", "30", false),
			wantCode: http.StatusBadRequest, wantBody: []string{"this field is required"},
		},
		{
			name: "update", method: http.MethodPost, path: path, form: homeworkForm("Drill 2", "2024-08-01", "10", "30", true),
			wantCode: http.StatusSeeOther, wantLoc: "/",
		},
	})

	got, err := hwRepo.GetHomework(context.Background(), hw.ID)
	require.NoError(t, err)
	assert.Equal(t, "Drill 2", got.Description)
	assert.Equal(t, "2024-08-01 10:30", got.Due.String())
	assert.True(t, got.OnceAWeek)
	assert.Equal(t, homework.StatusLate, got.Status, "status is not edited")
}

func Test_homeworkApi_query(t *testing.T) {
	setup(t)

	math := testutil.CreateLesson(t, lessonRepo, "Math", 5)
	art := testutil.CreateLesson(t, lessonRepo, "Art", 5)
	testutil.CreateHomework(t, hwRepo, math.ID, "Bravo", "2024-07-30 09:00", homework.StatusUnsubmitted)
	testutil.CreateHomework(t, hwRepo, art.ID, "Alpha", "2024-07-31 09:00", homework.StatusSubmitted)

	runHTTPTests(t, []httpTest{
		{name: "all", path: "/homeworks", wantBody: []string{"Alpha", "Bravo"}},
		{name: "by status", path: "/homeworks?status=submitted", wantBody: []string{"Alpha"}},
		{name: "by lesson", path: "/homeworks?lesson_id=" + strconv.Itoa(math.ID), wantBody: []string{"Bravo"}},
		{name: "ordered", path: "/homeworks?ordering=-due,description"},
		{name: "unknown status", path: "/homeworks?status=lol", wantCode: http.StatusBadRequest},
		{name: "unknown ordering", path: "/homeworks?ordering=lol", wantCode: http.StatusBadRequest, wantBody: []string{"unknown field lol"}},
	})

	req, rec := newRequest(http.MethodGet, "/homeworks?status=submitted", nil)
	app.ServeHTTP(rec, req)
	assert.NotContains(t, rec.Body.String(), "Bravo")
}
