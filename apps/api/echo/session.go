package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/risingacademy/backend/core/user"
)

type authApi struct {
	svc      *user.AuthService
	auth     *tokenAuth
	validate *validator.Validate
}

func registerAuthAPI(
	g *echo.Group,
	authed []echo.MiddlewareFunc,
	auth *tokenAuth,
	svc *user.AuthService,
	validate *validator.Validate,
) {
	api := authApi{svc: svc, auth: auth, validate: validate}

	g.POST("/auth/login", api.login)
	g.POST("/auth/logout", api.logout, authed...)
	g.GET("/auth/me", api.me, authed...)
	g.POST("/auth/token-refresh", api.refreshToken, authed...)
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	p, err := api.svc.SignIn(reqCtx, data.Email, data.Password)
	if err != nil {
		return errors.Wrap(err, "signing in")
	}
	isAdmin, err := api.svc.IsAdmin(reqCtx, p.UID)
	if err != nil {
		return errors.Wrap(err, "checking admin role")
	}

	token, err := api.auth.generateToken(api.auth.getUserClaims(p, isAdmin))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, IsAdmin: isAdmin})
}

func (api *authApi) logout(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}
	if err := api.svc.SignOut(ctx.Request().Context(), p.SessionID); err != nil {
		return errors.Wrap(err, "signing out")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *authApi) me(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context principal")
	}

	resp := MeResponse{Principal: p}
	prof, err := api.svc.Profile(ctx.Request().Context(), p.UID)
	switch {
	case err == nil:
		resp.Profile = &prof
		resp.IsAdmin = prof.IsAdmin()
	case errors.Cause(err) != user.ErrNotFound:
		return errors.Wrap(err, "getting profile")
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	token, isAdmin, err := api.auth.refreshToken(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, IsAdmin: isAdmin})
}

type (
	LoginResponse struct {
		Token   string `json:"token"`
		IsAdmin bool   `json:"isAdmin"`
	}

	MeResponse struct {
		user.Principal
		IsAdmin bool          `json:"isAdmin"`
		Profile *user.Profile `json:"profile"`
	}
)
