package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/risingacademy/backend/core/user"
	metricsvc "github.com/risingacademy/backend/services/metrics"
	"github.com/risingacademy/backend/services/ratelimit"
)

// sessionMiddleware checks that the session behind the token is still live and stores its principal.
func sessionMiddleware(svc *user.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			p, err := svc.CurrentUser(ctx.Request().Context(), claims.Id)
			if err != nil {
				return errors.Wrap(err, "getting current user")
			}
			if p == nil || p.UID != claims.Subject {
				return errSessionExpired
			}
			ctx.Set(contextPrincipalKey, *p)
			return next(ctx)
		}
	}
}

// adminMiddleware reads the profile on every request: a revoked admin is denied at once.
func adminMiddleware(svc *user.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			p, err := getContextPrincipal(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context principal")
			}
			isAdmin, err := svc.IsAdmin(ctx.Request().Context(), p.UID)
			if err != nil {
				return errors.Wrap(err, "checking admin role")
			}
			if !isAdmin {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

// rateLimitMiddleware limits the requests per client IP. A nil limiter lets everything through.
func rateLimitMiddleware(limiter ratelimit.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if limiter != nil && !limiter.Allow(ctx.Request().Context(), ctx.RealIP()) {
				return errTooManyRequests
			}
			return next(ctx)
		}
	}
}

func metricsMiddleware(collector *metricsvc.Collector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if err := next(ctx); err != nil {
				ctx.Error(err)
			}
			collector.ObserveRequest(ctx.Request().Method, strconv.Itoa(ctx.Response().Status))
			return nil
		}
	}
}
