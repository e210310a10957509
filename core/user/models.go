package user

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/risingacademy/backend/core"
)

// Roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var Roles = []string{RoleAdmin, RoleUser}

// Profile mirrors an identity of the provider; it is only used to mark admins.
type Profile struct {
	ID        string    `json:"id"` // provider uid
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"` // UTC
}

func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Principal is a signed-in identity.
type Principal struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	SessionID string    `json:"-"`
	ExpiresAt time.Time `json:"-"` // session expiry
}

// Credentials are the email/password pair used to sign in.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return validate.Struct(c)
}

// NewAdmin contains information needed to create a new admin account.
type NewAdmin struct {
	Email           string `json:"email" validate:"required,email"`
	FirstName       string `json:"firstName" validate:"max=100"`
	LastName        string `json:"lastName" validate:"max=100"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func (na *NewAdmin) Validate(validate *validator.Validate) error {
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.FirstName = core.CleanString(na.FirstName)
	na.LastName = core.CleanString(na.LastName)
	return validate.Struct(na)
}

type ResetPassword struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func (rp *ResetPassword) Validate(validate *validator.Validate) error {
	rp.Email = core.CleanString(rp.Email, true /* lower */)
	return validate.Struct(rp)
}
