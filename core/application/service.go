package application

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"

	"github.com/risingacademy/backend/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound          = errors.New("application not found")
	ErrInvalidTransition = errors.New("application has already been decided")
	ErrInvalidDecision   = errors.New("status must be one of: approved, rejected")
)

type (
	Repository interface {
		CreateApplication(ctx context.Context, app Application) (Application, error)
		// QueryAllApplications returns every Application, newest first.
		QueryAllApplications(ctx context.Context) ([]Application, error)
		// QueryApplicationsByType returns the Applications of one Type, newest first.
		QueryApplicationsByType(ctx context.Context, typ Type) ([]Application, error)
		GetApplicationByID(ctx context.Context, id string) (Application, error)
		// UpdateApplicationStatus sets the status and updatedAt of an Application.
		// When fromStatus is not empty, only an Application currently in fromStatus is updated
		// and ErrInvalidTransition is returned otherwise.
		UpdateApplicationStatus(ctx context.Context, id string, status Status, updatedAt time.Time, fromStatus Status) (Application, error)
		// DeleteApplicationsByID removes the given Applications and returns how many existed.
		// Unknown ids are skipped.
		DeleteApplicationsByID(ctx context.Context, ids ...string) (int, error)
	}

	// UpdateStatus is the admin decision on an Application.
	UpdateStatus struct {
		Status Status `json:"status" validate:"required,decision"`
	}

	Service struct {
		repo              Repository
		mailSvc           core.EmailService
		metrics           core.Metrics
		logger            core.Logger
		strictTransitions bool
		notifyApplicants  bool
	}
)

func (us *UpdateStatus) Validate(validate *validator.Validate) error {
	us.Status = Status(core.CleanString(string(us.Status), true /* lower */))
	return validate.Struct(us)
}

func NewService(repo Repository, mailSvc core.EmailService, metrics core.Metrics, logger core.Logger, conf *core.Config) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(mailSvc, "mailSvc"),
		vala.IsNotNil(logger, "logger"),
		vala.IsNotNil(conf, "conf"),
	).CheckAndPanic()

	if metrics == nil {
		metrics = core.NopMetrics{}
	}
	return &Service{
		repo:              repo,
		mailSvc:           mailSvc,
		metrics:           metrics,
		logger:            logger,
		strictTransitions: conf.Applications.StrictTransitions,
		notifyApplicants:  conf.Applications.NotifyApplicants,
	}
}

func now() time.Time {
	// the store keeps microseconds
	return NowFunc().UTC().Truncate(time.Microsecond)
}

// Submit stores a new pending Application and returns its ID.
func (svc *Service) Submit(ctx context.Context, na NewApplication) (string, error) {
	na.Clean()
	tstamp := now()
	app := Application{
		Type:                  na.Type,
		FirstName:             na.FirstName,
		LastName:              na.LastName,
		Email:                 na.Email,
		Phone:                 na.Phone,
		Age:                   na.Age,
		Experience:            na.Experience,
		Motivation:            na.Motivation,
		PreferredLanguages:    na.PreferredLanguages,
		ProgrammingExperience: na.ProgrammingExperience,
		Availability:          na.Availability,
		Status:                StatusPending,
		CreatedAt:             tstamp,
		UpdatedAt:             tstamp,
	}
	app, err := svc.repo.CreateApplication(ctx, app)
	if err != nil {
		return "", core.NewPersistenceError("creating application", err)
	}

	svc.metrics.ApplicationSubmitted(string(app.Type))
	if svc.notifyApplicants {
		svc.sendReceivedMail(app)
	}
	return app.ID, nil
}

// ListAll returns every Application, newest first.
func (svc *Service) ListAll(ctx context.Context) ([]Application, error) {
	apps, err := svc.repo.QueryAllApplications(ctx)
	if err != nil {
		return nil, core.NewPersistenceError("querying applications", err)
	}
	return apps, nil
}

// ListByType returns the Applications of one Type, newest first.
func (svc *Service) ListByType(ctx context.Context, typ Type) ([]Application, error) {
	apps, err := svc.repo.QueryApplicationsByType(ctx, typ)
	if err != nil {
		return nil, core.NewPersistenceError("querying applications by type", err)
	}
	return apps, nil
}

// Query returns the Applications matching filter, newest first.
func (svc *Service) Query(ctx context.Context, filter Filter) ([]Application, error) {
	var (
		apps []Application
		err  error
	)
	if filter.Type != "" {
		apps, err = svc.ListByType(ctx, filter.Type)
	} else {
		apps, err = svc.ListAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	return filter.Apply(apps), nil
}

func (svc *Service) Get(ctx context.Context, id string) (Application, error) {
	app, err := svc.repo.GetApplicationByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return Application{}, err
		}
		return Application{}, core.NewPersistenceError("getting application", err)
	}
	return app, nil
}

// SetStatus records the admin decision on an Application.
// Unless transitions are permissive, only pending Applications can be decided.
func (svc *Service) SetStatus(ctx context.Context, id string, status Status) (Application, error) {
	if !status.Decision() {
		return Application{}, core.NewValidationError(ErrInvalidDecision, core.FieldError{Field: "status", Error: ErrInvalidDecision.Error()})
	}

	current, err := svc.Get(ctx, id)
	if err != nil {
		return Application{}, err
	}

	var fromStatus Status
	if svc.strictTransitions {
		if current.Status != StatusPending {
			return Application{}, ErrInvalidTransition
		}
		fromStatus = StatusPending
	}

	updatedAt := now()
	if !updatedAt.After(current.UpdatedAt) {
		updatedAt = current.UpdatedAt.Add(time.Microsecond)
	}

	app, err := svc.repo.UpdateApplicationStatus(ctx, id, status, updatedAt, fromStatus)
	if err != nil {
		if err == ErrNotFound || err == ErrInvalidTransition {
			return Application{}, err
		}
		return Application{}, core.NewPersistenceError("updating application status", err)
	}

	svc.metrics.ApplicationStatusChanged(string(status))
	if svc.notifyApplicants {
		svc.sendDecisionMail(app)
	}
	return app, nil
}

// Delete permanently removes Applications. Unknown IDs are ignored.
func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	n, err := svc.repo.DeleteApplicationsByID(ctx, ids...)
	if err != nil {
		return core.NewPersistenceError("deleting applications", err)
	}
	svc.metrics.ApplicationsDeleted(n)
	return nil
}

// Stats returns the dashboard counters over all Applications.
func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	apps, err := svc.ListAll(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Summarize(apps), nil
}
