package admission

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/udahili/core"
)

type (
	// Repository is the application record store adapter. Implementations
	// must make UpdateApplicationAtomic a per-record atomic
	// read-modify-write: the patch runs against the current record and its
	// result is committed as one unit, so concurrent updates on the same id
	// serialize. A patch error aborts the write and leaves the record
	// untouched.
	Repository interface {
		CreateApplication(app Application) (Application, error)
		GetApplicationByID(id string) (Application, error)
		// FilterApplications applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on FullName or Email.
		FilterApplications(filter QueryFilter, ordering []core.DBOrdering) ([]Application, error)
		UpdateApplicationAtomic(id string, patch func(app *Application) error) (Application, error)
	}

	// BlobStore keeps document bytes. Delete is best-effort.
	BlobStore interface {
		Put(content io.Reader, suggestedKey string) (uri string, err error)
		Delete(uri string) error
	}

	Service interface {
		Submit(na NewApplication) (Application, error)
		GetByID(id string) (Application, error)
		Filter(filter QueryFilter, ordering []core.DBOrdering) ([]Application, error)

		// Schedule assigns examAt to the application and transitions it to
		// scheduled, both as one atomic write. On success the updated record
		// is handed to the notification dispatcher; notification failure
		// never rolls the schedule back.
		Schedule(id string, examAt time.Time) (Application, error)

		// Transition validates (current, to) against the lifecycle table and
		// commits the new status. It does not decide when to transition;
		// callers do.
		Transition(id string, to Status) (Application, error)

		AttachDocument(id string, nd NewDocument) (DocumentDescriptor, error)
		DetachDocument(id, docType string) (Application, error)

		// NotifySchedule sends the exam schedule confirmation email. Exactly
		// one outbound message per invocation, no dedup, no retry.
		NotifySchedule(app Application) DispatchResult
	}

	service struct {
		repo    Repository
		blob    BlobStore
		mailSvc core.EmailService
		conf    *core.Config
		logger  core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, blob BlobStore, mailSvc core.EmailService, conf *core.Config, logger core.Logger) Service {
	return &service{
		repo:    repo,
		blob:    blob,
		mailSvc: mailSvc,
		conf:    conf,
		logger:  logger,
	}
}

func (svc *service) Submit(na NewApplication) (Application, error) {
	now := time.Now().UTC()
	app := Application{
		ID:             uuid.New().String(),
		FullName:       na.FullName,
		Email:          na.Email,
		ContactNumber:  na.ContactNumber,
		DesiredProgram: na.DesiredProgram,
		Status:         StatusSubmitted,
		SubmittedAt:    now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateApplication(app)
}

func (svc *service) GetByID(id string) (Application, error) {
	return svc.repo.GetApplicationByID(id)
}

func (svc *service) Filter(filter QueryFilter, ordering []core.DBOrdering) ([]Application, error) {
	filter.Clean()
	return svc.repo.FilterApplications(filter, ordering)
}

// isTerminal consults the configured terminal set rather than the transition
// table so that deployments may terminate extra statuses.
func (svc *service) isTerminal(s Status) bool {
	for _, terminal := range svc.conf.Admission.TerminalStatuses {
		if string(s) == terminal {
			return true
		}
	}
	return false
}

func (svc *service) Schedule(id string, examAt time.Time) (Application, error) {
	app, err := svc.schedule(id, examAt)
	if err != nil {
		return Application{}, err
	}

	// fire-and-forget: scheduling success is independent of notification
	go svc.notifyScheduleAsync(app)

	return app, nil
}

func (svc *service) schedule(id string, examAt time.Time) (Application, error) {
	if examAt.IsZero() {
		return Application{}, errors.Wrap(ErrInvalidSchedule, "no date provided")
	}
	if examAt.Before(time.Now()) {
		return Application{}, errors.Wrapf(ErrInvalidSchedule, "%s is in the past", examAt.Format(time.RFC3339))
	}

	app, err := svc.repo.UpdateApplicationAtomic(id, func(app *Application) error {
		if svc.isTerminal(app.Status) || !app.Status.CanTransitionTo(StatusScheduled) {
			return errors.Wrapf(ErrIllegalTransition, "cannot schedule an exam while %q", app.Status)
		}
		at := examAt.UTC()
		app.ExamSchedule = &at
		app.Status = StatusScheduled
		app.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return Application{}, err
	}
	return app, nil
}

func (svc *service) notifyScheduleAsync(app Application) {
	if res := svc.NotifySchedule(app); res.Err != nil {
		svc.logger.Error(fmt.Sprintf("notifying schedule for application %s: %v", app.ID, res.Err), res.Err, app)
	}
}

func (svc *service) Transition(id string, to Status) (Application, error) {
	if !to.IsValid() {
		return Application{}, errors.Wrapf(ErrIllegalTransition, "unknown status %q", to)
	}
	return svc.repo.UpdateApplicationAtomic(id, func(app *Application) error {
		if svc.isTerminal(app.Status) || !app.Status.CanTransitionTo(to) {
			return errors.Wrapf(ErrIllegalTransition, "%q cannot move to %q", app.Status, to)
		}
		app.Status = to
		app.UpdatedAt = time.Now().UTC()
		// ExamSchedule is retained on terminal transitions for audit.
		return nil
	})
}
