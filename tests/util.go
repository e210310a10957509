package testutil

import (
	"context"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/risingacademy/backend/core"
	"github.com/risingacademy/backend/core/application"
	"github.com/risingacademy/backend/core/settings"
	"github.com/risingacademy/backend/core/user"
	emailsvc "github.com/risingacademy/backend/services/email"
	identitysvc "github.com/risingacademy/backend/services/identity"
	logsvc "github.com/risingacademy/backend/services/logger"
	inmemdb "github.com/risingacademy/backend/storage/database/inmem"
)

// Env holds services wired on the in-memory store.
type Env struct {
	Conf     *core.Config
	DB       *inmemdb.DB
	Logger   core.Logger
	Mail     *emailsvc.ConsoleServiceMock
	Sessions identitysvc.SessionStore
	IdP      *identitysvc.LocalProvider
	Validate *validator.Validate
	Uni      *ut.UniversalTranslator

	AppRepo      application.Repository
	SettingsRepo settings.Repository
	UserRepo     user.Repository

	AppSvc      *application.Service
	SettingsSvc *settings.Service
	AuthSvc     *user.AuthService
}

// NewLogger returns a silent logger that never reports to Rollbar.
func NewLogger() core.Logger {
	logger := logsvc.NewRollbarLogger(zap.NewNop(), core.NewTestConfig())
	logger.Enable(false)
	return logger
}

// NewValidator returns a validator with every custom tag and translation registered.
func NewValidator() (*validator.Validate, *ut.UniversalTranslator) {
	validate := validator.New()
	uni := core.NewUniversalTranslator()
	core.InitValidators(validate, uni)
	application.InitValidators(validate, uni)
	user.InitValidators(validate, uni)
	return validate, uni
}

// NewEnv wires fresh services on an empty in-memory store. conf defaults to core.NewTestConfig().
func NewEnv(t *testing.T, conf ...*core.Config) *Env {
	t.Helper()
	identitysvc.HashCost = bcrypt.MinCost

	env := &Env{Conf: core.NewTestConfig()}
	if len(conf) > 0 && conf[0] != nil {
		env.Conf = conf[0]
	}
	env.DB = inmemdb.Open()
	env.Logger = NewLogger()
	env.Mail = emailsvc.NewConsoleServiceMock(env.Conf, env.Logger)
	env.Sessions = identitysvc.NewMemorySessionStore()
	env.Validate, env.Uni = NewValidator()

	env.AppRepo = inmemdb.NewApplicationRepository(env.DB)
	env.SettingsRepo = inmemdb.NewSettingsRepository(env.DB)
	env.UserRepo = inmemdb.NewUserRepository(env.DB)
	env.IdP = identitysvc.NewLocalProvider(inmemdb.NewCredentialRepository(env.DB), env.Sessions, env.Logger, env.Conf)

	env.AppSvc = application.NewService(env.AppRepo, env.Mail, nil, env.Logger, env.Conf)
	env.SettingsSvc = settings.NewService(env.SettingsRepo, nil, env.Logger)
	env.AuthSvc = user.NewAuthService(env.IdP, env.UserRepo, nil, env.Logger, env.Conf)
	return env
}

// CreateApplication stores an Application as it would be after submission (and decision).
func CreateApplication(
	t *testing.T,
	repo application.Repository,
	typ application.Type,
	firstName, lastName, email string,
	status application.Status,
	createdAt ...time.Time,
) application.Application {
	t.Helper()
	tstamp := time.Now().UTC().Truncate(time.Microsecond)
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC().Truncate(time.Microsecond)
	}
	if status == "" {
		status = application.StatusPending
	}
	app := application.Application{
		Type:       typ,
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		Phone:      "+213 670 71 05 05",
		Age:        24,
		Motivation: "I want to learn.",
		Status:     status,
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	}
	app, err := repo.CreateApplication(context.Background(), app)
	if err != nil {
		t.Fatalf("CreateApplication() failed: %v", err)
	}
	return app
}

// CreateAdmin registers an admin account and signs it in.
func CreateAdmin(t *testing.T, env *Env, email, pwd string) user.Principal {
	t.Helper()
	ctx := context.Background()
	if _, err := env.AuthSvc.InitializeAdmin(ctx, user.NewAdmin{
		Email: email, FirstName: "Test", LastName: "Admin", Password: pwd, PasswordConfirm: pwd,
	}); err != nil {
		t.Fatalf("CreateAdmin() failed: %v", err)
	}
	p, err := env.AuthSvc.SignIn(ctx, email, pwd)
	if err != nil {
		t.Fatalf("CreateAdmin() failed to sign in: %v", err)
	}
	return p
}

// CreateUser registers a signed-in account whose profile is not an admin.
func CreateUser(t *testing.T, env *Env, email, pwd string) user.Principal {
	t.Helper()
	ctx := context.Background()
	p, err := env.IdP.CreateUser(ctx, email, pwd)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	if _, err := env.UserRepo.SaveProfile(ctx, user.Profile{
		ID: p.UID, Email: p.Email, Role: user.RoleUser, CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}); err != nil {
		t.Fatalf("CreateUser() failed to save profile: %v", err)
	}
	return p
}
