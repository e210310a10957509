package user

import (
	"context"
	"errors"
	"time"
)

// Identity provider error codes
const (
	CodeUserNotFound  = "auth/user-not-found"
	CodeWrongPassword = "auth/wrong-password"
	CodeEmailInUse    = "auth/email-already-in-use"
	CodeNoSession     = "auth/no-current-user"
)

var (
	ErrIdentityNotFound = errors.New("identity not found")
	ErrEmailExists      = errors.New("an identity with this email already exists")
)

type (
	// IdentityProvider signs principals in and out. Credential failures are *core.AuthError.
	IdentityProvider interface {
		SignIn(ctx context.Context, email, password string) (Principal, error)
		// CreateUser registers a new identity and signs it in.
		CreateUser(ctx context.Context, email, password string) (Principal, error)
		SignOut(ctx context.Context, sessionID string) error
		// Session returns the principal of a live session, nil when there is none.
		Session(ctx context.Context, sessionID string) (*Principal, error)
		SetPassword(ctx context.Context, email, password string) error
	}

	// Identity is the credential record owned by the provider.
	Identity struct {
		UID          string     `db:"uid"`
		Email        string     `db:"email"`
		PasswordHash []byte     `db:"password_hash"`
		CreatedAt    time.Time  `db:"created_at"`     // UTC
		LastSignInAt *time.Time `db:"last_sign_in_at"` // UTC
	}

	CredentialRepository interface {
		CreateIdentity(ctx context.Context, ident Identity) (Identity, error)
		GetIdentityByEmail(ctx context.Context, email string) (Identity, error)
		UpdateIdentityPassword(ctx context.Context, uid string, hash []byte) error
		TouchIdentity(ctx context.Context, uid string, signedInAt time.Time) error
	}
)
