package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/risingacademy/backend/core"
	"github.com/risingacademy/backend/core/application"
	"github.com/risingacademy/backend/core/settings"
	"github.com/risingacademy/backend/core/user"
	metricsvc "github.com/risingacademy/backend/services/metrics"
	"github.com/risingacademy/backend/services/ratelimit"
)

type (
	ServerDeps struct {
		Conf        *core.Config
		Logger      core.Logger
		AppSvc      *application.Service
		SettingsSvc *settings.Service
		AuthSvc     *user.AuthService
		Limiter     ratelimit.Limiter    // submissions; nil disables rate limiting
		Metrics     *metricsvc.Collector // nil disables /metrics
		DB          core.Pinger          // nil skips the DB health check
		Validate    *validator.Validate
		Uni         *ut.UniversalTranslator
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		auth     *tokenAuth
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	vala.BeginValidation().Validate(
		vala.IsNotNil(deps.Conf, "Conf"),
		vala.IsNotNil(deps.Logger, "Logger"),
		vala.IsNotNil(deps.AppSvc, "AppSvc"),
		vala.IsNotNil(deps.SettingsSvc, "SettingsSvc"),
		vala.IsNotNil(deps.AuthSvc, "AuthSvc"),
		vala.IsNotNil(deps.Validate, "Validate"),
		vala.IsNotNil(deps.Uni, "Uni"),
	).CheckAndPanic()

	s := &Server{
		deps:     deps,
		app:      echo.New(),
		auth:     newTokenAuth(deps.Conf),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{conf.FrontendBaseURL},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
	}))
	if s.deps.Metrics != nil {
		s.app.Use(metricsMiddleware(s.deps.Metrics))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Uni, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)
	s.app.GET("/healthz", healthCheck(s.deps.DB, s.deps.Metrics))
	if s.deps.Metrics != nil {
		s.app.GET("/metrics", echo.WrapHandler(s.deps.Metrics.Handler()))
	}

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.auth.jwtConfig)
	session := sessionMiddleware(s.deps.AuthSvc)
	admin := adminMiddleware(s.deps.AuthSvc)
	authed := []echo.MiddlewareFunc{jwt, session}
	adminOnly := []echo.MiddlewareFunc{jwt, session, admin}

	registerAuthAPI(v1, authed, s.auth, s.deps.AuthSvc, s.deps.Validate)
	registerApplicationAPI(v1, adminOnly, rateLimitMiddleware(s.deps.Limiter), s.deps.AppSvc, s.deps.Validate)
	registerSettingsAPI(v1, adminOnly, s.deps.SettingsSvc, s.deps.Validate)
}

func (s *Server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

// Start listens on the configured address; the failure is sent on Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Rising Academy API!")
}

func healthCheck(db core.Pinger, collector *metricsvc.Collector) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if db != nil {
			start := time.Now()
			err := db.PingContext(ctx.Request().Context())
			if collector != nil {
				collector.ObserveDBPing(time.Since(start))
			}
			if err != nil {
				return ctx.JSON(http.StatusServiceUnavailable, echo.Map{"status": "db unavailable"})
			}
		}
		return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
	}
}
