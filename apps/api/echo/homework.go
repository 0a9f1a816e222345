package echoapi

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kadai/core"
	"github.com/trezcool/kadai/core/chart"
	"github.com/trezcool/kadai/core/homework"
	"github.com/trezcool/kadai/core/lesson"
)

type homeworkApi struct {
	svc        *homework.Service
	lessonSvc  *lesson.Service
	chartSvc   *chart.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerHomeworkAPI(
	e *echo.Echo,
	svc *homework.Service,
	lessonSvc *lesson.Service,
	chartSvc *chart.Service,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := homeworkApi{
		svc:        svc,
		lessonSvc:  lessonSvc,
		chartSvc:   chartSvc,
		validate:   validate,
		translator: translator,
	}

	e.GET("/", api.index)
	e.GET("/new_homework", api.chart)
	e.GET("/new_homework/:lesson_id", api.createForm)
	e.POST("/new_homework/:lesson_id", api.create)
	e.GET("/homeworks", api.query)

	// detail endpoints
	dg := e.Group("/homeworks/:id")
	dg.POST("/complete", api.complete)
	dg.POST("/uncomplete", api.uncomplete)
	dg.POST("/delete", api.destroy)
	dg.GET("/update", api.updateForm)
	dg.POST("/update", api.update)
}

// Handlers

func (api *homeworkApi) index(ctx echo.Context) error {
	board, err := api.svc.Board(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting homework board")
	}
	return ctx.Render(http.StatusOK, pageIndex, indexPage{Title: "課題", Board: board})
}

func (api *homeworkApi) chart(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	names, err := api.lessonSvc.Names(rctx)
	if err != nil {
		return errors.Wrap(err, "getting lesson names")
	}
	grid, err := api.chartSvc.Grid(rctx, names)
	if err != nil {
		return errors.Wrap(err, "getting chart grid")
	}
	return ctx.Render(http.StatusOK, pageNewHomework, chartPage{Title: "時間割", Days: chart.DayLabels, Grid: grid})
}

func (api *homeworkApi) createForm(ctx echo.Context) error {
	lsn, err := api.pathLesson(ctx)
	if err != nil {
		return err
	}
	return api.renderForm(ctx, http.StatusOK, newHomeworkTitle(lsn), ctx.Request().URL.Path, homework.Form{}, nil)
}

func (api *homeworkApi) create(ctx echo.Context) error {
	lsn, err := api.pathLesson(ctx)
	if err != nil {
		return err
	}

	var data homework.Form
	if err = api.bind(ctx, &data); err != nil {
		if errs, ok := core.FieldErrors(err, api.translator); ok {
			return api.renderForm(ctx, http.StatusBadRequest, newHomeworkTitle(lsn), ctx.Request().URL.Path, data, errs)
		}
		return err
	}

	if _, err = api.svc.Create(ctx.Request().Context(), lsn.ID, data); err != nil {
		return errors.Wrap(err, "creating homework")
	}
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (api *homeworkApi) query(ctx echo.Context) error {
	var filter struct {
		Status   string `query:"status"`
		LessonID int    `query:"lesson_id"`
	}
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding homework filter")
	}
	qf := homework.QueryFilter{LessonID: filter.LessonID}
	if filter.Status != "" {
		status, err := homework.ParseStatus(filter.Status)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "status", Error: err.Error()})
		}
		qf.Status = &status
	}

	var ord Ordering
	if err := ord.Bind(ctx, homework.OrderingFields); err != nil {
		return err
	}

	homeworks, err := api.svc.Query(ctx.Request().Context(), qf, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying homeworks")
	}
	return ctx.Render(http.StatusOK, pageHomeworks, homeworksPage{Title: "課題一覧", Homeworks: homeworks})
}

func (api *homeworkApi) complete(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Complete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "completing homework")
	}
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (api *homeworkApi) uncomplete(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Uncomplete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "uncompleting homework")
	}
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (api *homeworkApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting homework")
	}
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (api *homeworkApi) updateForm(ctx echo.Context) error {
	hw, err := api.pathHomework(ctx)
	if err != nil {
		return err
	}
	return api.renderForm(ctx, http.StatusOK, updateHomeworkTitle(hw), ctx.Request().URL.Path, homework.FormOf(hw), nil)
}

func (api *homeworkApi) update(ctx echo.Context) error {
	hw, err := api.pathHomework(ctx)
	if err != nil {
		return err
	}

	var data homework.Form
	if err = api.bind(ctx, &data); err != nil {
		if errs, ok := core.FieldErrors(err, api.translator); ok {
			return api.renderForm(ctx, http.StatusBadRequest, updateHomeworkTitle(hw), ctx.Request().URL.Path, data, errs)
		}
		return err
	}

	if _, err = api.svc.Update(ctx.Request().Context(), hw.ID, data); err != nil {
		return errors.Wrap(err, "updating homework")
	}
	return ctx.Redirect(http.StatusSeeOther, "/")
}

// Helpers

func (api *homeworkApi) bind(ctx echo.Context, data *homework.Form) error {
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding to homework.Form")
	}
	return data.Validate(api.validate)
}

func (api *homeworkApi) renderForm(ctx echo.Context, code int, title, action string, f homework.Form, errs map[string]string) error {
	return ctx.Render(code, pageHomeworkForm, newHomeworkFormPage(title, action, f, errs))
}

func (api *homeworkApi) pathLesson(ctx echo.Context) (lesson.Lesson, error) {
	id, err := pathID(ctx, "lesson_id")
	if err != nil {
		return lesson.Lesson{}, err
	}
	lsn, err := api.lessonSvc.Get(ctx.Request().Context(), id)
	if err != nil {
		return lesson.Lesson{}, errors.Wrap(err, "getting lesson")
	}
	return lsn, nil
}

func (api *homeworkApi) pathHomework(ctx echo.Context) (homework.Homework, error) {
	id, err := pathID(ctx, "id")
	if err != nil {
		return homework.Homework{}, err
	}
	hw, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return homework.Homework{}, errors.Wrap(err, "getting homework")
	}
	return hw, nil
}

func newHomeworkTitle(lsn lesson.Lesson) string {
	return fmt.Sprintf("課題の追加: %s", lsn.Name)
}

func updateHomeworkTitle(hw homework.Homework) string {
	return fmt.Sprintf("課題の編集: %s", hw.Description)
}
