package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/risingacademy/backend/core/application"
)

type applicationRepository struct {
	db  *DB
	tbl *applicationTable
}

var _ application.Repository = (*applicationRepository)(nil)

func NewApplicationRepository(db *DB) application.Repository {
	return &applicationRepository{db: db, tbl: db.application}
}

func copyApplication(app application.Application) application.Application {
	if app.PreferredLanguages != nil {
		app.PreferredLanguages = append([]string(nil), app.PreferredLanguages...)
	}
	if app.Availability != nil {
		app.Availability = append([]string(nil), app.Availability...)
	}
	return app
}

// query returns the matching applications, newest first. Callers hold the read lock.
func (repo *applicationRepository) query(match func(app *application.Application) bool) []application.Application {
	apps := make([]application.Application, 0, len(repo.tbl.table))
	for _, app := range repo.tbl.table {
		if match == nil || match(app) {
			apps = append(apps, copyApplication(*app))
		}
	}
	sort.SliceStable(apps, func(i, j int) bool {
		if apps[i].CreatedAt.Equal(apps[j].CreatedAt) {
			return apps[i].ID > apps[j].ID
		}
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
	return apps
}

func (repo *applicationRepository) CreateApplication(_ context.Context, app application.Application) (application.Application, error) {
	if err := repo.db.failure(); err != nil {
		return application.Application{}, err
	}
	repo.tbl.mutex.Lock()
	defer repo.tbl.mutex.Unlock()

	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	stored := copyApplication(app)
	repo.tbl.table[app.ID] = &stored
	return copyApplication(stored), nil
}

func (repo *applicationRepository) QueryAllApplications(_ context.Context) ([]application.Application, error) {
	if err := repo.db.failure(); err != nil {
		return nil, err
	}
	repo.tbl.mutex.RLock()
	defer repo.tbl.mutex.RUnlock()
	return repo.query(nil), nil
}

func (repo *applicationRepository) QueryApplicationsByType(_ context.Context, typ application.Type) ([]application.Application, error) {
	if err := repo.db.failure(); err != nil {
		return nil, err
	}
	repo.tbl.mutex.RLock()
	defer repo.tbl.mutex.RUnlock()
	return repo.query(func(app *application.Application) bool { return app.Type == typ }), nil
}

func (repo *applicationRepository) GetApplicationByID(_ context.Context, id string) (application.Application, error) {
	if err := repo.db.failure(); err != nil {
		return application.Application{}, err
	}
	repo.tbl.mutex.RLock()
	defer repo.tbl.mutex.RUnlock()

	if app, ok := repo.tbl.table[id]; ok {
		return copyApplication(*app), nil
	}
	return application.Application{}, application.ErrNotFound
}

func (repo *applicationRepository) UpdateApplicationStatus(
	_ context.Context, id string, status application.Status, updatedAt time.Time, fromStatus application.Status,
) (application.Application, error) {
	if err := repo.db.failure(); err != nil {
		return application.Application{}, err
	}
	repo.tbl.mutex.Lock()
	defer repo.tbl.mutex.Unlock()

	app, ok := repo.tbl.table[id]
	if !ok {
		return application.Application{}, application.ErrNotFound
	}
	if fromStatus != "" && app.Status != fromStatus {
		return application.Application{}, application.ErrInvalidTransition
	}
	app.Status = status
	app.UpdatedAt = updatedAt
	return copyApplication(*app), nil
}

func (repo *applicationRepository) DeleteApplicationsByID(_ context.Context, ids ...string) (int, error) {
	if err := repo.db.failure(); err != nil {
		return 0, err
	}
	repo.tbl.mutex.Lock()
	defer repo.tbl.mutex.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.tbl.table[id]; ok {
			delete(repo.tbl.table, id)
			n++
		}
	}
	return n, nil
}
