package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kat-co/vala"

	"github.com/risingacademy/backend/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound = errors.New("user not found")
)

// sign-in results
const (
	SignInSuccess   = "success"
	SignInBootstrap = "bootstrap"
	SignInFailure   = "failure"
)

type (
	// Repository stores the Profiles mirroring the provider identities.
	Repository interface {
		// SaveProfile creates or replaces the Profile with the same ID.
		SaveProfile(ctx context.Context, p Profile) (Profile, error)
		GetProfileByID(ctx context.Context, uid string) (Profile, error)
		GetProfileByEmail(ctx context.Context, email string) (Profile, error)
	}

	AuthService struct {
		idp     IdentityProvider
		repo    Repository
		metrics core.Metrics
		logger  core.Logger
		demo    core.AuthConfig
	}
)

func NewAuthService(idp IdentityProvider, repo Repository, metrics core.Metrics, logger core.Logger, conf *core.Config) *AuthService {
	vala.BeginValidation().Validate(
		vala.IsNotNil(idp, "idp"),
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(logger, "logger"),
		vala.IsNotNil(conf, "conf"),
	).CheckAndPanic()

	if metrics == nil {
		metrics = core.NopMetrics{}
	}
	return &AuthService{
		idp:     idp,
		repo:    repo,
		metrics: metrics,
		logger:  logger,
		demo:    conf.Auth,
	}
}

func (svc *AuthService) isDemo(email, pwd string) bool {
	return svc.demo.DemoBootstrap &&
		svc.demo.DemoEmail != "" &&
		email == core.CleanString(svc.demo.DemoEmail, true /* lower */) &&
		pwd == svc.demo.DemoPassword
}

// SignIn signs a principal in. The demo admin account is provisioned on its first sign-in.
func (svc *AuthService) SignIn(ctx context.Context, email, pwd string) (Principal, error) {
	email = core.CleanString(email, true /* lower */)

	p, err := svc.idp.SignIn(ctx, email, pwd)
	if err == nil {
		svc.metrics.SignIn(SignInSuccess)
		return p, nil
	}

	if core.AuthErrorCode(err) == CodeUserNotFound && svc.isDemo(email, pwd) {
		if p, err = svc.idp.CreateUser(ctx, email, pwd); err != nil {
			svc.metrics.SignIn(SignInFailure)
			return Principal{}, err
		}
		prof := Profile{
			ID:        p.UID,
			Email:     email,
			Role:      RoleAdmin,
			FirstName: "Admin",
			LastName:  "User",
			CreatedAt: NowFunc().UTC().Truncate(time.Microsecond),
		}
		if _, err = svc.repo.SaveProfile(ctx, prof); err != nil {
			svc.metrics.SignIn(SignInFailure)
			return Principal{}, core.NewPersistenceError("saving admin profile", err)
		}
		svc.logger.Info(fmt.Sprintf("user.SignIn: demo admin %s provisioned", email))
		svc.metrics.SignIn(SignInBootstrap)
		return p, nil
	}

	svc.metrics.SignIn(SignInFailure)
	return Principal{}, err
}

// SignOut ends the session.
func (svc *AuthService) SignOut(ctx context.Context, sessionID string) error {
	return svc.idp.SignOut(ctx, sessionID)
}

// CurrentUser returns the principal of a live session, or nil.
func (svc *AuthService) CurrentUser(ctx context.Context, sessionID string) (*Principal, error) {
	if sessionID == "" {
		return nil, nil
	}
	return svc.idp.Session(ctx, sessionID)
}

// IsAdmin reports whether the Profile of uid has the admin role. A missing Profile is not an admin.
func (svc *AuthService) IsAdmin(ctx context.Context, uid string) (bool, error) {
	prof, err := svc.repo.GetProfileByID(ctx, uid)
	if err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, core.NewPersistenceError("getting profile", err)
	}
	return prof.IsAdmin(), nil
}

func (svc *AuthService) Profile(ctx context.Context, uid string) (Profile, error) {
	prof, err := svc.repo.GetProfileByID(ctx, uid)
	if err != nil {
		if err == ErrNotFound {
			return Profile{}, err
		}
		return Profile{}, core.NewPersistenceError("getting profile", err)
	}
	return prof, nil
}

// InitializeAdmin registers a new identity with an admin Profile.
func (svc *AuthService) InitializeAdmin(ctx context.Context, na NewAdmin) (Profile, error) {
	p, err := svc.idp.CreateUser(ctx, na.Email, na.Password)
	if err != nil {
		if core.AuthErrorCode(err) == CodeEmailInUse {
			return Profile{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
		}
		return Profile{}, err
	}
	// the session opened by CreateUser is not needed
	if err := svc.idp.SignOut(ctx, p.SessionID); err != nil {
		svc.logger.Warn(fmt.Sprintf("user.InitializeAdmin: signing out: %v", err), err)
	}

	prof, err := svc.repo.SaveProfile(ctx, Profile{
		ID:        p.UID,
		Email:     na.Email,
		Role:      RoleAdmin,
		FirstName: na.FirstName,
		LastName:  na.LastName,
		CreatedAt: NowFunc().UTC().Truncate(time.Microsecond),
	})
	if err != nil {
		return Profile{}, core.NewPersistenceError("saving admin profile", err)
	}
	return prof, nil
}

// ResetPassword sets a new password on the identity of rp.Email.
func (svc *AuthService) ResetPassword(ctx context.Context, rp ResetPassword) error {
	return svc.idp.SetPassword(ctx, rp.Email, rp.Password)
}
