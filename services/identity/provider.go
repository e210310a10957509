package identitysvc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"golang.org/x/crypto/bcrypt"

	"github.com/risingacademy/backend/core"
	"github.com/risingacademy/backend/core/user"
)

var (
	NowFunc  = time.Now           // mockable
	HashCost = bcrypt.DefaultCost // lowered by tests
)

// LocalProvider is an email/password identity provider backed by the credential store.
type LocalProvider struct {
	repo       user.CredentialRepository
	sessions   SessionStore
	sessionTTL time.Duration
	logger     core.Logger
}

var _ user.IdentityProvider = (*LocalProvider)(nil)

func NewLocalProvider(repo user.CredentialRepository, sessions SessionStore, logger core.Logger, conf *core.Config) *LocalProvider {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(sessions, "sessions"),
		vala.IsNotNil(logger, "logger"),
		vala.IsNotNil(conf, "conf"),
	).CheckAndPanic()

	ttl := conf.Server.JWTRefreshExpirationDelta
	if ttl <= 0 {
		ttl = conf.Server.JWTExpirationDelta
	}
	return &LocalProvider{repo: repo, sessions: sessions, sessionTTL: ttl, logger: logger}
}

func (p *LocalProvider) startSession(ctx context.Context, ident user.Identity) (user.Principal, error) {
	now := NowFunc().UTC()
	s := Session{
		ID:        uuid.NewString(),
		UID:       ident.UID,
		Email:     ident.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(p.sessionTTL),
	}
	if err := p.sessions.Save(ctx, s); err != nil {
		return user.Principal{}, core.NewPersistenceError("saving session", err)
	}
	if err := p.repo.TouchIdentity(ctx, ident.UID, now); err != nil {
		p.logger.Warn(fmt.Sprintf("identitysvc.startSession: %v", err), err)
	}
	return user.Principal{UID: ident.UID, Email: ident.Email, SessionID: s.ID, ExpiresAt: s.ExpiresAt}, nil
}

func (p *LocalProvider) SignIn(ctx context.Context, email, pwd string) (user.Principal, error) {
	ident, err := p.repo.GetIdentityByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if err == user.ErrIdentityNotFound {
			return user.Principal{}, core.NewAuthError(user.CodeUserNotFound, "There is no user record corresponding to this identifier.")
		}
		return user.Principal{}, core.NewPersistenceError("getting identity", err)
	}
	if err := bcrypt.CompareHashAndPassword(ident.PasswordHash, []byte(pwd)); err != nil {
		return user.Principal{}, core.NewAuthError(user.CodeWrongPassword, "The password is invalid.")
	}
	return p.startSession(ctx, ident)
}

func (p *LocalProvider) CreateUser(ctx context.Context, email, pwd string) (user.Principal, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), HashCost)
	if err != nil {
		return user.Principal{}, err
	}
	ident, err := p.repo.CreateIdentity(ctx, user.Identity{
		UID:          uuid.NewString(),
		Email:        core.CleanString(email, true /* lower */),
		PasswordHash: hash,
		CreatedAt:    NowFunc().UTC().Truncate(time.Microsecond),
	})
	if err != nil {
		if err == user.ErrEmailExists {
			return user.Principal{}, core.NewAuthError(user.CodeEmailInUse, "The email address is already in use by another account.")
		}
		return user.Principal{}, core.NewPersistenceError("creating identity", err)
	}
	return p.startSession(ctx, ident)
}

func (p *LocalProvider) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return core.NewAuthError(user.CodeNoSession, "No user is currently signed in.")
	}
	if err := p.sessions.Delete(ctx, sessionID); err != nil {
		return core.NewPersistenceError("deleting session", err)
	}
	return nil
}

func (p *LocalProvider) Session(ctx context.Context, sessionID string) (*user.Principal, error) {
	s, err := p.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, core.NewPersistenceError("getting session", err)
	}
	if s == nil {
		return nil, nil
	}
	return &user.Principal{UID: s.UID, Email: s.Email, SessionID: s.ID, ExpiresAt: s.ExpiresAt}, nil
}

func (p *LocalProvider) SetPassword(ctx context.Context, email, pwd string) error {
	ident, err := p.repo.GetIdentityByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if err == user.ErrIdentityNotFound {
			return core.NewAuthError(user.CodeUserNotFound, "There is no user record corresponding to this identifier.")
		}
		return core.NewPersistenceError("getting identity", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), HashCost)
	if err != nil {
		return err
	}
	if err := p.repo.UpdateIdentityPassword(ctx, ident.UID, hash); err != nil {
		return core.NewPersistenceError("updating password", err)
	}
	return nil
}
