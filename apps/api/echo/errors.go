package echoapi

import (
	"net/http"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/risingacademy/backend/core"
	"github.com/risingacademy/backend/core/application"
	"github.com/risingacademy/backend/core/user"
)

const msgServiceUnavailable = "service temporarily unavailable"

var (
	errUnauthorized    = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errSessionExpired  = echo.NewHTTPError(http.StatusUnauthorized, "session has expired")
	errRefreshExpired  = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden   = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound    = echo.NewHTTPError(http.StatusNotFound, "not found")
	errTooManyRequests = echo.NewHTTPError(http.StatusTooManyRequests, "too many submissions, please try again later")
	errEmptySettings   = echo.NewHTTPError(http.StatusBadRequest, "no settings block given")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, uni *ut.UniversalTranslator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch cause {
		case application.ErrNotFound, user.ErrNotFound:
			cause = errHttpNotFound
		case application.ErrInvalidTransition:
			cause = echo.NewHTTPError(http.StatusConflict, cause.Error())
		}

		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			trans := core.FindTranslator(uni, requestLocales(ctx)...)
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[fieldKey(vErr)] = vErr.Translate(trans)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.AuthError:
			code = http.StatusUnauthorized
			message = echo.Map{"error": origErr.Message, "code": origErr.Code}
		case *core.PersistenceError:
			code = http.StatusServiceUnavailable
			message = msgServiceUnavailable
			logger.Error(origErr.Op, errors.Wrap(err, origErr.Op), contextPrincipal(ctx))
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			logger.Error(msg, errors.Wrap(err, msg), contextPrincipal(ctx))

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// contextPrincipal returns the signed-in principal for error reports, falling back to the token claims.
func contextPrincipal(ctx echo.Context) user.Principal {
	if p, err := getContextPrincipal(ctx); err == nil {
		return p
	}
	var p user.Principal
	if claims, err := getContextClaims(ctx); err == nil {
		p.UID = claims.Subject
		p.Email = claims.Email
		p.SessionID = claims.Id
	}
	return p
}

// fieldKey is the JSON path of the field, without the top-level struct name: "stats.successRate".
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func requestLocales(ctx echo.Context) []string {
	header := ctx.Request().Header.Get("Accept-Language")
	if header == "" {
		return nil
	}
	tags := strings.Split(header, ",")
	for i, tag := range tags {
		tags[i] = strings.SplitN(tag, ";", 2)[0] // drop the q-factor
	}
	return tags
}
