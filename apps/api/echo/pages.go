package echoapi

import (
	"github.com/trezcool/kadai/core/chart"
	"github.com/trezcool/kadai/core/homework"
	"github.com/trezcool/kadai/core/lesson"
)

const (
	pageIndex        = "index"
	pageNewHomework  = "new_homework"
	pageHomeworkForm = "homework_form"
	pageLessonForm   = "lesson_form"
	pageLessons      = "lessons"
	pageHomeworks    = "homeworks"
	pageError        = "error"
)

var (
	formHours   = steps(0, 23, 1)
	formMinutes = steps(0, 55, 5)
)

func steps(from, to, step int) []int {
	s := make([]int, 0, (to-from)/step+1)
	for i := from; i <= to; i += step {
		s = append(s, i)
	}
	return s
}

type (
	indexPage struct {
		Title string
		Board homework.Board
	}

	chartPage struct {
		Title string
		Days  [chart.Weekdays]string
		Grid  chart.Grid
	}

	lessonFormPage struct {
		Title  string
		Action string
		Form   lesson.Form
		Errors map[string]string
	}

	homeworkFormPage struct {
		Title   string
		Action  string
		Form    homework.Form
		Errors  map[string]string
		Hours   []int
		Minutes []int
	}

	lessonsPage struct {
		Title   string
		Lessons []lesson.Lesson
	}

	homeworksPage struct {
		Title     string
		Homeworks []homework.Homework
	}

	errorPage struct {
		Title   string
		Message string
	}
)

func newHomeworkFormPage(title, action string, f homework.Form, errs map[string]string) homeworkFormPage {
	return homeworkFormPage{
		Title:   title,
		Action:  action,
		Form:    f,
		Errors:  errs,
		Hours:   formHours,
		Minutes: formMinutes,
	}
}
