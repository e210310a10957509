package inmemdb

import (
	"context"
	"time"

	"github.com/risingacademy/backend/core/user"
)

type userRepository struct {
	db  *DB
	tbl *userTable
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db, tbl: db.user}
}

func (repo *userRepository) SaveProfile(_ context.Context, p user.Profile) (user.Profile, error) {
	if err := repo.db.failure(); err != nil {
		return user.Profile{}, err
	}
	repo.tbl.mutex.Lock()
	defer repo.tbl.mutex.Unlock()

	if orig, ok := repo.tbl.table[p.ID]; ok {
		p.CreatedAt = orig.CreatedAt
	}
	repo.tbl.table[p.ID] = &p
	return p, nil
}

func (repo *userRepository) GetProfileByID(_ context.Context, uid string) (user.Profile, error) {
	if err := repo.db.failure(); err != nil {
		return user.Profile{}, err
	}
	repo.tbl.mutex.RLock()
	defer repo.tbl.mutex.RUnlock()

	if p, ok := repo.tbl.table[uid]; ok {
		return *p, nil
	}
	return user.Profile{}, user.ErrNotFound
}

func (repo *userRepository) GetProfileByEmail(_ context.Context, email string) (user.Profile, error) {
	if err := repo.db.failure(); err != nil {
		return user.Profile{}, err
	}
	repo.tbl.mutex.RLock()
	defer repo.tbl.mutex.RUnlock()

	for _, p := range repo.tbl.table {
		if p.Email == email {
			return *p, nil
		}
	}
	return user.Profile{}, user.ErrNotFound
}

// ProfileCount returns the number of stored profiles.
func (db *DB) ProfileCount() int {
	db.user.mutex.RLock()
	defer db.user.mutex.RUnlock()
	return len(db.user.table)
}

type credentialRepository struct {
	db  *DB
	tbl *identityTable
}

var _ user.CredentialRepository = (*credentialRepository)(nil)

func NewCredentialRepository(db *DB) user.CredentialRepository {
	return &credentialRepository{db: db, tbl: db.identity}
}

func (repo *credentialRepository) CreateIdentity(_ context.Context, ident user.Identity) (user.Identity, error) {
	if err := repo.db.failure(); err != nil {
		return user.Identity{}, err
	}
	repo.tbl.mutex.Lock()
	defer repo.tbl.mutex.Unlock()

	if _, ok := repo.tbl.table[ident.Email]; ok {
		return user.Identity{}, user.ErrEmailExists
	}
	repo.tbl.table[ident.Email] = &ident
	return ident, nil
}

func (repo *credentialRepository) GetIdentityByEmail(_ context.Context, email string) (user.Identity, error) {
	if err := repo.db.failure(); err != nil {
		return user.Identity{}, err
	}
	repo.tbl.mutex.RLock()
	defer repo.tbl.mutex.RUnlock()

	if ident, ok := repo.tbl.table[email]; ok {
		return *ident, nil
	}
	return user.Identity{}, user.ErrIdentityNotFound
}

func (repo *credentialRepository) find(uid string) *user.Identity {
	for _, ident := range repo.tbl.table {
		if ident.UID == uid {
			return ident
		}
	}
	return nil
}

func (repo *credentialRepository) UpdateIdentityPassword(_ context.Context, uid string, hash []byte) error {
	if err := repo.db.failure(); err != nil {
		return err
	}
	repo.tbl.mutex.Lock()
	defer repo.tbl.mutex.Unlock()

	ident := repo.find(uid)
	if ident == nil {
		return user.ErrIdentityNotFound
	}
	ident.PasswordHash = hash
	return nil
}

func (repo *credentialRepository) TouchIdentity(_ context.Context, uid string, signedInAt time.Time) error {
	if err := repo.db.failure(); err != nil {
		return err
	}
	repo.tbl.mutex.Lock()
	defer repo.tbl.mutex.Unlock()

	if ident := repo.find(uid); ident != nil {
		ident.LastSignInAt = &signedInAt
	}
	return nil
}
