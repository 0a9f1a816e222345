package lesson

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kadai/core"
)

var ErrNotFound = core.NewNotFoundError("lesson")

type Lesson struct {
	ID   int    `json:"lesson_id"`
	Name string `json:"name"`
	// Absences counts down on every recorded absence. It has no floor.
	Absences int `json:"number_absence"`
}

// Form contains the information needed to create or edit a Lesson.
type Form struct {
	Name     string `form:"name" validate:"required,max=120"`
	Absences int    `form:"number_absence" validate:"min=0"`
}

func (f *Form) Validate(validate *validator.Validate) error {
	f.Name = core.CleanString(f.Name)
	return validate.Struct(f)
}
