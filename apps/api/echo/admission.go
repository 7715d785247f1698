package echoapi

import (
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/udahili/core"
	"github.com/trezcool/udahili/core/admission"
)

type admissionApi struct {
	svc        admission.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerAdmissionAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc admission.Service,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := admissionApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	ag := g.Group("/applications")

	// applicant endpoints
	ag.POST("", api.submit)
	ag.GET("/:id", api.retrieve)
	ag.POST("/:id/documents", api.attachDocument)
	ag.DELETE("/:id/documents/:type", api.detachDocument)

	// staff endpoints; per-route middleware so the public routes above stay open
	ag.GET("", api.query, jwt, staffMiddleware())
	ag.POST("/:id/schedule", api.schedule, jwt, staffMiddleware())
	ag.POST("/:id/decision", api.decide, jwt, staffMiddleware())
}

// Requests & Responses

type ScheduleRequest struct {
	ExamSchedule time.Time `json:"exam_schedule" validate:"required"`
}

func (r ScheduleRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

type DecisionRequest struct {
	Status string `json:"status" validate:"required"`
}

func (r DecisionRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

// Handlers

func (api *admissionApi) submit(ctx echo.Context) error {
	var data admission.NewApplication
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewApplication")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	app, err := api.svc.Submit(data)
	if err != nil {
		return errors.Wrap(err, "submitting application")
	}

	return ctx.JSON(http.StatusCreated, app)
}

func (api *admissionApi) retrieve(ctx echo.Context) error {
	app, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *admissionApi) query(ctx echo.Context) error {
	var filter admission.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	var ord Ordering
	ord.Bind(ctx)

	apps, err := api.svc.Filter(filter, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "filtering applications")
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *admissionApi) schedule(ctx echo.Context) error {
	var data ScheduleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrapf(admission.ErrInvalidSchedule, "malformed date: %v", err)
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	app, err := api.svc.Schedule(ctx.Param("id"), data.ExamSchedule)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *admissionApi) decide(ctx echo.Context) error {
	var data DecisionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DecisionRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	status, err := admission.ParseStatus(data.Status)
	if err != nil {
		return err
	}

	app, err := api.svc.Transition(ctx.Param("id"), status)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *admissionApi) attachDocument(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(errors.New("missing file upload"), core.FieldError{Field: "file", Error: "this field is required"})
	}
	docType := ctx.FormValue("type")
	if docType == "" {
		return core.NewValidationError(errors.New("missing document type"), core.FieldError{Field: "type", Error: "this field is required"})
	}

	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer f.Close()

	desc, err := api.svc.AttachDocument(ctx.Param("id"), admission.NewDocument{
		Type:        docType,
		Content:     f,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		SizeBytes:   fh.Size,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, desc)
}

func (api *admissionApi) detachDocument(ctx echo.Context) error {
	app, err := api.svc.DetachDocument(ctx.Param("id"), ctx.Param("type"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, app)
}
