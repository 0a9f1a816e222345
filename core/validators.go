package core

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
)

var (
	// custom validation tags & texts
	minuteStepTag  = "minute_step"
	minuteStepText = "{0} must be a multiple of 5"
	minuteStep     = int64(5)

	slotIDTag  = "slot_id"
	slotIDText = "{0} must be a timetable slot between 1 and 45"
	maxSlotID  = int64(45)

	requiredTag  = "required"
	requiredText = "this field is required"
)

// NewTranslator returns the english translator validation errors are rendered with.
func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use form field names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(minuteStepTag, minuteStepValidation)
	RegisterCustomTranslation(validate, translator, minuteStepTag, minuteStepText)

	_ = validate.RegisterValidation(slotIDTag, slotIDValidation)
	RegisterCustomTranslation(validate, translator, slotIDTag, slotIDText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// FieldErrors maps validation errors to their translated message per form field.
// ok is false when err holds no validation errors.
func FieldErrors(err error, translator ut.Translator) (fldErrs map[string]string, ok bool) {
	switch vErr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		fldErrs = make(map[string]string, len(vErr))
		for _, fe := range vErr {
			fldErrs[fe.Field()] = fe.Translate(translator)
		}
		return fldErrs, true
	case *ValidationError:
		fldErrs = make(map[string]string, len(vErr.Fields))
		for _, fe := range vErr.Fields {
			fldErrs[fe.Field] = fe.Error
		}
		return fldErrs, true
	}
	return nil, false
}

// Custom Global Validators

// minuteStepValidation only allows minutes on the 5 minutes grid offered by the forms.
func minuteStepValidation(fl validator.FieldLevel) bool {
	return fl.Field().Int()%minuteStep == 0
}

// slotIDValidation only allows ids of the 9 periods x 5 weekdays chart.
func slotIDValidation(fl validator.FieldLevel) bool {
	id := fl.Field().Int()
	return id >= 1 && id <= maxSlotID
}
