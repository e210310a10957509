package inmemdb

import (
	"sync"

	"github.com/risingacademy/backend/core/application"
	"github.com/risingacademy/backend/core/settings"
	"github.com/risingacademy/backend/core/user"
)

type (
	// DB is an in-process store behaving like the postgres one.
	DB struct {
		application *applicationTable
		settings    *settingsTable
		user        *userTable
		identity    *identityTable

		errMu sync.RWMutex
		err   error
	}

	applicationTable struct {
		mutex sync.RWMutex
		table map[string]*application.Application
	}

	settingsTable struct {
		mutex sync.RWMutex
		doc   *settings.SiteSettings
	}

	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.Profile
	}

	identityTable struct {
		mutex sync.RWMutex
		table map[string]*user.Identity // {email: Identity}
	}
)

func Open() *DB {
	return &DB{
		application: &applicationTable{table: make(map[string]*application.Application)},
		settings:    &settingsTable{},
		user:        &userTable{table: make(map[string]*user.Profile)},
		identity:    &identityTable{table: make(map[string]*user.Identity)},
	}
}

// SetError makes every following operation fail with err, until reset with nil.
func (db *DB) SetError(err error) {
	db.errMu.Lock()
	defer db.errMu.Unlock()
	db.err = err
}

func (db *DB) failure() error {
	db.errMu.RLock()
	defer db.errMu.RUnlock()
	return db.err
}
