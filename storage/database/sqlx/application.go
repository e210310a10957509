package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/risingacademy/backend/core"
	"github.com/risingacademy/backend/core/application"
)

const applicationColumns = `id, type, first_name, last_name, email, phone, age, experience, motivation,
	preferred_languages, programming_experience, availability, status, created_at, updated_at`

var applicationOrdering = core.DBOrdering{Field: "created_at", Ascending: false}

type applicationRow struct {
	ID                    string         `db:"id"`
	Type                  string         `db:"type"`
	FirstName             string         `db:"first_name"`
	LastName              string         `db:"last_name"`
	Email                 string         `db:"email"`
	Phone                 string         `db:"phone"`
	Age                   int            `db:"age"`
	Experience            null.String    `db:"experience"`
	Motivation            string         `db:"motivation"`
	PreferredLanguages    pq.StringArray `db:"preferred_languages"`
	ProgrammingExperience null.String    `db:"programming_experience"`
	Availability          pq.StringArray `db:"availability"`
	Status                string         `db:"status"`
	CreatedAt             time.Time      `db:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at"`
}

func newApplicationRow(app application.Application) applicationRow {
	return applicationRow{
		ID:                    app.ID,
		Type:                  string(app.Type),
		FirstName:             app.FirstName,
		LastName:              app.LastName,
		Email:                 app.Email,
		Phone:                 app.Phone,
		Age:                   app.Age,
		Experience:            app.Experience,
		Motivation:            app.Motivation,
		PreferredLanguages:    pq.StringArray(nonNil(app.PreferredLanguages)),
		ProgrammingExperience: app.ProgrammingExperience,
		Availability:          pq.StringArray(nonNil(app.Availability)),
		Status:                string(app.Status),
		CreatedAt:             app.CreatedAt,
		UpdatedAt:             app.UpdatedAt,
	}
}

func (r applicationRow) toApplication() application.Application {
	app := application.Application{
		ID:                    r.ID,
		Type:                  application.Type(r.Type),
		FirstName:             r.FirstName,
		LastName:              r.LastName,
		Email:                 r.Email,
		Phone:                 r.Phone,
		Age:                   r.Age,
		Experience:            r.Experience,
		Motivation:            r.Motivation,
		ProgrammingExperience: r.ProgrammingExperience,
		Status:                application.Status(r.Status),
		CreatedAt:             r.CreatedAt.UTC(),
		UpdatedAt:             r.UpdatedAt.UTC(),
	}
	if len(r.PreferredLanguages) > 0 {
		app.PreferredLanguages = []string(r.PreferredLanguages)
	}
	if len(r.Availability) > 0 {
		app.Availability = []string(r.Availability)
	}
	return app
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

type applicationRepository struct {
	db core.DBExecutor
}

var _ application.Repository = (*applicationRepository)(nil)

func NewApplicationRepository(db core.DBExecutor) application.Repository {
	return &applicationRepository{db: db}
}

func (repo *applicationRepository) CreateApplication(ctx context.Context, app application.Application) (application.Application, error) {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	q := `INSERT INTO applications (` + applicationColumns + `)
		VALUES (:id, :type, :first_name, :last_name, :email, :phone, :age, :experience, :motivation,
			:preferred_languages, :programming_experience, :availability, :status, :created_at, :updated_at)`
	query, args, err := bindNamed(q, newApplicationRow(app))
	if err != nil {
		return application.Application{}, err
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return application.Application{}, errors.Wrap(err, "inserting application")
	}
	return app, nil
}

func (repo *applicationRepository) selectApplications(ctx context.Context, where string, args ...interface{}) ([]application.Application, error) {
	q := `SELECT ` + applicationColumns + ` FROM applications ` + where + ` ORDER BY ` + applicationOrdering.String()
	var rows []applicationRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting applications")
	}
	apps := make([]application.Application, 0, len(rows))
	for _, r := range rows {
		apps = append(apps, r.toApplication())
	}
	return apps, nil
}

func (repo *applicationRepository) QueryAllApplications(ctx context.Context) ([]application.Application, error) {
	return repo.selectApplications(ctx, "")
}

func (repo *applicationRepository) QueryApplicationsByType(ctx context.Context, typ application.Type) ([]application.Application, error) {
	return repo.selectApplications(ctx, "WHERE type = $1", string(typ))
}

func (repo *applicationRepository) GetApplicationByID(ctx context.Context, id string) (application.Application, error) {
	if _, err := uuid.Parse(id); err != nil {
		return application.Application{}, application.ErrNotFound
	}
	var r applicationRow
	q := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		if err == sql.ErrNoRows {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, errors.Wrap(err, "getting application")
	}
	return r.toApplication(), nil
}

func (repo *applicationRepository) UpdateApplicationStatus(
	ctx context.Context, id string, status application.Status, updatedAt time.Time, fromStatus application.Status,
) (application.Application, error) {
	if _, err := uuid.Parse(id); err != nil {
		return application.Application{}, application.ErrNotFound
	}

	q := `UPDATE applications SET status = $1, updated_at = $2 WHERE id = $3`
	args := []interface{}{string(status), updatedAt, id}
	if fromStatus != "" {
		q += ` AND status = $4`
		args = append(args, string(fromStatus))
	}
	q += ` RETURNING ` + applicationColumns

	var r applicationRow
	if err := repo.db.GetContext(ctx, &r, q, args...); err != nil {
		if err != sql.ErrNoRows {
			return application.Application{}, errors.Wrap(err, "updating application status")
		}
		// nothing updated: either missing or not in fromStatus anymore
		if _, err := repo.GetApplicationByID(ctx, id); err != nil {
			return application.Application{}, err
		}
		return application.Application{}, application.ErrInvalidTransition
	}
	return r.toApplication(), nil
}

func (repo *applicationRepository) DeleteApplicationsByID(ctx context.Context, ids ...string) (int, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return 0, nil
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM applications WHERE id = ANY($1::uuid[])`, pq.Array(valid))
	if err != nil {
		return 0, errors.Wrap(err, "deleting applications")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting deleted applications")
	}
	return int(n), nil
}
