package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/risingacademy/backend/core/application"
	exportsvc "github.com/risingacademy/backend/services/export"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type applicationApi struct {
	svc      *application.Service
	validate *validator.Validate
}

func registerApplicationAPI(
	g *echo.Group,
	adminOnly []echo.MiddlewareFunc,
	rateLimit echo.MiddlewareFunc,
	svc *application.Service,
	validate *validator.Validate,
) {
	api := applicationApi{svc: svc, validate: validate}

	// public endpoints
	g.GET("/options", api.options)
	g.POST("/applications", api.submit, rateLimit)

	// admin endpoints
	g.GET("/applications", api.query, adminOnly...)
	g.DELETE("/applications", api.destroyMultiple, adminOnly...)
	g.GET("/applications/stats", api.stats, adminOnly...)
	g.GET("/applications/export", api.export, adminOnly...)
	g.GET("/applications/:id", api.retrieve, adminOnly...)
	g.PATCH("/applications/:id/status", api.setStatus, adminOnly...)
	g.DELETE("/applications/:id", api.destroy, adminOnly...)
}

// Handlers

func (api *applicationApi) options(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, application.FormOptions())
}

func (api *applicationApi) submit(ctx echo.Context) error {
	var data application.NewApplication
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewApplication")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	id, err := api.svc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting application")
	}
	return ctx.JSON(http.StatusCreated, SubmitResponse{ID: id})
}

func (api *applicationApi) query(ctx echo.Context) error {
	filter := new(application.Filter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to Filter")
	}
	filter.Clean()

	apps, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying applications")
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *applicationApi) stats(ctx echo.Context) error {
	stats, err := api.svc.Stats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *applicationApi) export(ctx echo.Context) error {
	filter := new(application.Filter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to Filter")
	}
	filter.Clean()

	apps, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying applications")
	}
	wb, err := exportsvc.NewApplicationsWorkbook(apps)
	if err != nil {
		return errors.Wrap(err, "building workbook")
	}
	defer wb.Close()

	resp := ctx.Response()
	resp.Header().Set(echo.HeaderContentType, xlsxMIME)
	resp.Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+exportsvc.Filename(time.Now())+`"`)
	resp.WriteHeader(http.StatusOK)
	if _, err := wb.WriteTo(resp); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

func (api *applicationApi) retrieve(ctx echo.Context) error {
	app, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting application")
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *applicationApi) setStatus(ctx echo.Context) error {
	var data application.UpdateStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatus")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	app, err := api.svc.SetStatus(ctx.Request().Context(), ctx.Param("id"), data.Status)
	if err != nil {
		return errors.Wrap(err, "setting application status")
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *applicationApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting application")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *applicationApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if len(query.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting applications")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	SubmitResponse struct {
		ID string `json:"id"`
	}

	DestroyMultipleRequest struct {
		IDs []string `query:"id"`
	}
)
