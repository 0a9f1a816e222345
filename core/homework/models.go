package homework

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/kadai/core"
	"github.com/trezcool/kadai/core/lesson"
)

var (
	ErrNotFound      = core.NewNotFoundError("homework")
	ErrUnknownStatus = errors.New("unknown submission status")
)

// Status is the submission state of a Homework, persisted as its code.
type Status int

const (
	StatusUnsubmitted Status = 0
	StatusSubmitted   Status = 1
	// 2 is reserved by the schema and never written.
	StatusLate Status = 3
)

var Statuses = []Status{StatusUnsubmitted, StatusSubmitted, StatusLate}

// StatusFromCode converts a stored submission code.
func StatusFromCode(code int) (Status, error) {
	s := Status(code)
	if !s.Valid() {
		return 0, errors.Wrapf(ErrUnknownStatus, "code %d", code)
	}
	return s, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusUnsubmitted, StatusSubmitted, StatusLate:
		return true
	}
	return false
}

func (s Status) Code() int {
	return int(s)
}

func (s Status) String() string {
	switch s {
	case StatusUnsubmitted:
		return "unsubmitted"
	case StatusSubmitted:
		return "submitted"
	case StatusLate:
		return "late"
	}
	return "unknown"
}

// ParseStatus converts the name returned by Status.String.
func ParseStatus(name string) (Status, error) {
	for _, s := range Statuses {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownStatus, "%q", name)
}

type Homework struct {
	ID          int    `json:"homework_id"`
	Description string `json:"contest"`
	Due         Due    `json:"limit_time"`
	Status      Status `json:"submission"`
	OnceAWeek   bool   `json:"once_a_week"`
}

// HomeworkLesson pairs a Homework with the Lesson it was assigned for.
type HomeworkLesson struct {
	Homework Homework
	Lesson   lesson.Lesson
}

// Form contains the information needed to create or update a Homework.
type Form struct {
	Description string `form:"contest" validate:"required,max=120"`
	Day         string `form:"day" validate:"required,datetime=2006-01-02"`
	Hour        int    `form:"hour" validate:"min=0,max=23"`
	Minute      int    `form:"minute" validate:"min=0,max=59,minute_step"`
	OnceAWeek   bool   `form:"once_a_week"`
}

func (f *Form) Validate(validate *validator.Validate) error {
	f.Description = core.CleanString(f.Description)
	f.Day = core.CleanString(f.Day)
	return validate.Struct(f)
}

func (f Form) Due() (Due, error) {
	return DueFromParts(f.Day, f.Hour, f.Minute)
}

// FormOf prefills a Form from hw.
func FormOf(hw Homework) Form {
	f := Form{
		Description: hw.Description,
		OnceAWeek:   hw.OnceAWeek,
	}
	if day, hour, minute, err := hw.Due.Parts(); err == nil {
		f.Day, f.Hour, f.Minute = day, hour, minute
	}
	return f
}

// QueryFilter restricts QueryHomeworks; zero values match everything.
type QueryFilter struct {
	Status   *Status
	LessonID int
}
