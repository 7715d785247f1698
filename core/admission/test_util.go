package admission

import (
	"time"

	"github.com/trezcool/udahili/core"
)

type serviceMock struct {
	service
}

// NewServiceMock is a Service whose schedule notifications run synchronously
// so tests can observe sent mail deterministically.
func NewServiceMock(repo Repository, blob BlobStore, mailSvc core.EmailService, conf *core.Config, logger core.Logger) Service {
	return &serviceMock{
		service: service{
			repo:    repo,
			blob:    blob,
			mailSvc: mailSvc,
			conf:    conf,
			logger:  logger,
		},
	}
}

func (svc *serviceMock) Schedule(id string, examAt time.Time) (Application, error) {
	app, err := svc.schedule(id, examAt)
	if err != nil {
		return Application{}, err
	}
	// run synchronously
	svc.notifyScheduleAsync(app)
	return app, nil
}
