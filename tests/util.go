package testutil

import (
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/udahili/core"
	"github.com/trezcool/udahili/core/admission"
)

// NewConfig returns a Config suitable for tests.
func NewConfig(t *testing.T) *core.Config {
	conf := core.NewConfig()
	conf.Debug = true
	conf.TestMode = true
	conf.Admission.MediaRoot = t.TempDir()
	return conf
}

type stdLogger struct {
	std *log.Logger
}

var _ core.Logger = (*stdLogger)(nil)

// NewLogger returns a plain stdout logger; rollbar stays out of tests.
func NewLogger() core.Logger {
	return &stdLogger{std: log.New(os.Stdout, "TEST : ", log.LstdFlags|log.Lshortfile)}
}

func (l stdLogger) print(lvl, msg string, args []interface{}) {
	l.std.Println(lvl + " " + msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l stdLogger) Debug(msg string, args ...interface{}) { l.print("DEBUG", msg, args) }
func (l stdLogger) Info(msg string, args ...interface{})  { l.print("INFO", msg, args) }
func (l stdLogger) Warn(msg string, args ...interface{})  { l.print("WARN", msg, args) }
func (l stdLogger) Error(msg string, args ...interface{}) { l.print("ERROR", msg, args) }
func (l stdLogger) Fatal(msg string, args ...interface{}) { l.print("FATAL", msg, args); panic(msg) }

// CreateApplication seeds an application record directly in the repository,
// bypassing the service, so fixtures can start in any state.
func CreateApplication(
	t *testing.T,
	repo admission.Repository,
	fullName, email, program string,
	status admission.Status,
	examAt *time.Time,
	submittedAt ...time.Time,
) admission.Application {
	tstamp := time.Now().UTC()
	if len(submittedAt) > 0 {
		tstamp = submittedAt[0].UTC()
	}
	if examAt != nil {
		at := examAt.UTC()
		examAt = &at
	}
	app := admission.Application{
		ID:             uuid.New().String(),
		FullName:       fullName,
		Email:          email,
		ContactNumber:  "+254 700 000000",
		DesiredProgram: program,
		Status:         status,
		ExamSchedule:   examAt,
		SubmittedAt:    tstamp,
		UpdatedAt:      tstamp,
	}
	app, err := repo.CreateApplication(app)
	if err != nil {
		t.Fatalf("CreateApplication() failed: %v", err)
	}
	return app
}
