package echoapi

import (
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kadai/core"
	"github.com/trezcool/kadai/core/chart"
	"github.com/trezcool/kadai/core/lesson"
)

type lessonApi struct {
	svc        *lesson.Service
	chartSvc   *chart.Service
	validate   *validator.Validate
	translator ut.Translator
}

// slotParam is the chart slot a new lesson is created for.
type slotParam struct {
	TimeID int `validate:"slot_id"`
}

func registerLessonAPI(
	e *echo.Echo,
	svc *lesson.Service,
	chartSvc *chart.Service,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := lessonApi{
		svc:        svc,
		chartSvc:   chartSvc,
		validate:   validate,
		translator: translator,
	}

	e.GET("/new_lesson/:time_id", api.createForm)
	e.POST("/new_lesson/:time_id", api.create)
	e.GET("/lessons", api.query)
	e.GET("/lessons/:id/edit", api.updateForm)
	e.POST("/lessons/:id/edit", api.update)
}

// Handlers

func (api *lessonApi) createForm(ctx echo.Context) error {
	slot, err := api.pathSlot(ctx)
	if err != nil {
		return err
	}
	return api.renderForm(ctx, http.StatusOK, newLessonTitle(slot), lesson.Form{}, nil)
}

func (api *lessonApi) create(ctx echo.Context) error {
	slot, err := api.pathSlot(ctx)
	if err != nil {
		return err
	}

	var data lesson.Form
	if err = api.bind(ctx, &data); err != nil {
		if errs, ok := core.FieldErrors(err, api.translator); ok {
			return api.renderForm(ctx, http.StatusBadRequest, newLessonTitle(slot), data, errs)
		}
		return err
	}

	if _, err = api.svc.Create(ctx.Request().Context(), slot.ID, data); err != nil {
		return errors.Wrap(err, "creating lesson")
	}
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (api *lessonApi) query(ctx echo.Context) error {
	lessons, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying lessons")
	}
	return ctx.Render(http.StatusOK, pageLessons, lessonsPage{Title: "授業一覧", Lessons: lessons})
}

func (api *lessonApi) updateForm(ctx echo.Context) error {
	lsn, err := api.pathLesson(ctx)
	if err != nil {
		return err
	}
	f := lesson.Form{Name: lsn.Name, Absences: lsn.Absences}
	return api.renderForm(ctx, http.StatusOK, "授業の編集: "+lsn.Name, f, nil)
}

func (api *lessonApi) update(ctx echo.Context) error {
	lsn, err := api.pathLesson(ctx)
	if err != nil {
		return err
	}

	var data lesson.Form
	if err = api.bind(ctx, &data); err != nil {
		if errs, ok := core.FieldErrors(err, api.translator); ok {
			return api.renderForm(ctx, http.StatusBadRequest, "授業の編集: "+lsn.Name, data, errs)
		}
		return err
	}

	if _, err = api.svc.Update(ctx.Request().Context(), lsn.ID, data); err != nil {
		return errors.Wrap(err, "updating lesson")
	}
	return ctx.Redirect(http.StatusSeeOther, "/lessons")
}

// Helpers

func (api *lessonApi) bind(ctx echo.Context, data *lesson.Form) error {
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding to lesson.Form")
	}
	return data.Validate(api.validate)
}

func (api *lessonApi) renderForm(ctx echo.Context, code int, title string, f lesson.Form, errs map[string]string) error {
	return ctx.Render(code, pageLessonForm, lessonFormPage{
		Title:  title,
		Action: ctx.Request().URL.Path,
		Form:   f,
		Errors: errs,
	})
}

// pathSlot resolves the :time_id param; ids outside the chart are not found.
func (api *lessonApi) pathSlot(ctx echo.Context) (chart.Slot, error) {
	id, err := pathID(ctx, "time_id")
	if err != nil {
		return chart.Slot{}, err
	}
	p := slotParam{TimeID: id}
	if err = api.validate.Struct(p); err != nil {
		return chart.Slot{}, chart.ErrNotFound
	}
	slot, err := api.chartSvc.Get(ctx.Request().Context(), p.TimeID)
	if err != nil {
		return chart.Slot{}, errors.Wrap(err, "getting slot")
	}
	return slot, nil
}

func (api *lessonApi) pathLesson(ctx echo.Context) (lesson.Lesson, error) {
	id, err := pathID(ctx, "id")
	if err != nil {
		return lesson.Lesson{}, err
	}
	lsn, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "getting lesson")
	}
	return lsn, nil
}

func newLessonTitle(slot chart.Slot) string {
	return "授業の追加: " + slot.DayOfWeek + "曜 " + strconv.Itoa(slot.Period()) + "限"
}

// pathID reads an integer path param; anything else is not found.
func pathID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}
