package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/risingacademy/backend/core"
	"github.com/risingacademy/backend/core/user"
)

// pq error code of unique_violation
const uniqueViolation = "23505"

type profileRow struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	Role      string    `db:"role"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	CreatedAt time.Time `db:"created_at"`
}

func (r profileRow) toProfile() user.Profile {
	return user.Profile{
		ID:        r.ID,
		Email:     r.Email,
		Role:      r.Role,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type userRepository struct {
	db core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db core.DBExecutor) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) SaveProfile(ctx context.Context, p user.Profile) (user.Profile, error) {
	q := `INSERT INTO users (id, email, role, first_name, last_name, created_at) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, role = EXCLUDED.role,
			first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name
		RETURNING id, email, role, first_name, last_name, created_at`

	var r profileRow
	if err := repo.db.GetContext(ctx, &r, q, p.ID, p.Email, p.Role, p.FirstName, p.LastName, p.CreatedAt); err != nil {
		return user.Profile{}, errors.Wrap(err, "saving profile")
	}
	return r.toProfile(), nil
}

func (repo *userRepository) getProfile(ctx context.Context, where string, arg interface{}) (user.Profile, error) {
	var r profileRow
	q := `SELECT id, email, role, first_name, last_name, created_at FROM users ` + where + ` LIMIT 1`
	if err := repo.db.GetContext(ctx, &r, q, arg); err != nil {
		if err == sql.ErrNoRows {
			return user.Profile{}, user.ErrNotFound
		}
		return user.Profile{}, errors.Wrap(err, "getting profile")
	}
	return r.toProfile(), nil
}

func (repo *userRepository) GetProfileByID(ctx context.Context, uid string) (user.Profile, error) {
	return repo.getProfile(ctx, "WHERE id = $1", uid)
}

func (repo *userRepository) GetProfileByEmail(ctx context.Context, email string) (user.Profile, error) {
	return repo.getProfile(ctx, "WHERE email = $1", email)
}

type credentialRepository struct {
	db core.DBExecutor
}

var _ user.CredentialRepository = (*credentialRepository)(nil)

func NewCredentialRepository(db core.DBExecutor) user.CredentialRepository {
	return &credentialRepository{db: db}
}

func (repo *credentialRepository) CreateIdentity(ctx context.Context, ident user.Identity) (user.Identity, error) {
	q := `INSERT INTO identities (uid, email, password_hash, created_at, last_sign_in_at)
		VALUES (:uid, :email, :password_hash, :created_at, :last_sign_in_at)`
	query, args, err := bindNamed(q, ident)
	if err != nil {
		return user.Identity{}, err
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return user.Identity{}, user.ErrEmailExists
		}
		return user.Identity{}, errors.Wrap(err, "inserting identity")
	}
	return ident, nil
}

func (repo *credentialRepository) GetIdentityByEmail(ctx context.Context, email string) (user.Identity, error) {
	var ident user.Identity
	q := `SELECT uid, email, password_hash, created_at, last_sign_in_at FROM identities WHERE email = $1`
	if err := repo.db.GetContext(ctx, &ident, q, email); err != nil {
		if err == sql.ErrNoRows {
			return user.Identity{}, user.ErrIdentityNotFound
		}
		return user.Identity{}, errors.Wrap(err, "getting identity")
	}
	ident.CreatedAt = ident.CreatedAt.UTC()
	return ident, nil
}

func (repo *credentialRepository) UpdateIdentityPassword(ctx context.Context, uid string, hash []byte) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE identities SET password_hash = $1 WHERE uid = $2`, hash, uid)
	if err != nil {
		return errors.Wrap(err, "updating password")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrIdentityNotFound
	}
	return nil
}

func (repo *credentialRepository) TouchIdentity(ctx context.Context, uid string, signedInAt time.Time) error {
	if _, err := repo.db.ExecContext(ctx, `UPDATE identities SET last_sign_in_at = $1 WHERE uid = $2`, signedInAt, uid); err != nil {
		return errors.Wrap(err, "touching identity")
	}
	return nil
}
