package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/risingacademy/backend/core/settings"
)

type settingsApi struct {
	svc      *settings.Service
	validate *validator.Validate
}

func registerSettingsAPI(g *echo.Group, adminOnly []echo.MiddlewareFunc, svc *settings.Service, validate *validator.Validate) {
	api := settingsApi{svc: svc, validate: validate}

	g.GET("/settings", api.retrieve)
	g.PATCH("/settings", api.update, adminOnly...)
}

// Handlers

// retrieve never fails: the public pages fall back to the default settings.
func (api *settingsApi) retrieve(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Get(ctx.Request().Context()))
}

func (api *settingsApi) update(ctx echo.Context) error {
	var data settings.UpdateSiteSettings
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSiteSettings")
	}
	if data.IsEmpty() {
		return errEmptySettings
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Update(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "updating settings")
	}
	return ctx.JSON(http.StatusOK, s)
}
