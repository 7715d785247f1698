package admission

import (
	"io"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/udahili/core"
)

// Application is one student's admission request and its evolving status.
// Status is mutated only through Service.Transition / Service.Schedule;
// ExamSchedule only through Service.Schedule.
type Application struct {
	ID             string                        `json:"id"`
	FullName       string                        `json:"full_name"`
	Email          string                        `json:"email"`
	ContactNumber  string                        `json:"contact_number"`
	DesiredProgram string                        `json:"desired_program"`
	Status         Status                        `json:"status"`
	ExamSchedule   *time.Time                    `json:"exam_schedule,omitempty"` // UTC
	SubmittedAt    time.Time                     `json:"submitted_at"`            // UTC
	UpdatedAt      time.Time                     `json:"updated_at"`              // UTC
	Documents      map[string]DocumentDescriptor `json:"documents,omitempty"`
}

// Document returns the descriptor attached under docType, if any.
func (app *Application) Document(docType string) (DocumentDescriptor, bool) {
	desc, ok := app.Documents[docType]
	return desc, ok
}

// DocumentDescriptor points at a stored document; the bytes themselves live
// in the blob store behind URI.
type DocumentDescriptor struct {
	URI         string    `json:"uri"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedAt  time.Time `json:"uploaded_at"` // UTC
}

// NewApplication contains information needed to submit a new Application.
type NewApplication struct {
	FullName       string `json:"full_name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	ContactNumber  string `json:"contact_number" validate:"required,phone_"`
	DesiredProgram string `json:"desired_program" validate:"required,alphanum_"`
}

func (na *NewApplication) Validate(validate *validator.Validate) error {
	na.FullName = core.CleanString(na.FullName)
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.ContactNumber = core.CleanString(na.ContactNumber)
	na.DesiredProgram = core.CleanString(na.DesiredProgram)
	return validate.Struct(na)
}

// NewDocument is an upload to attach under a document-type key. SizeBytes is
// the declared size; the manager never inspects Content beyond streaming it
// to the blob store.
type NewDocument struct {
	Type        string
	Content     io.Reader
	ContentType string
	SizeBytes   int64
}

// QueryFilter carries only bindable scalar fields; result ordering travels
// separately so the HTTP binder never trips over it.
type QueryFilter struct {
	Search        string    `query:"search"` // matches full name or email
	Statuses      []string  `query:"status"`
	Program       string    `query:"program"`
	SubmittedFrom time.Time `query:"submitted_from"`
	SubmittedTo   time.Time `query:"submitted_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Statuses == nil && qf.Program == "" &&
		qf.SubmittedFrom.IsZero() && qf.SubmittedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Program = core.CleanString(qf.Program)
	for i, s := range qf.Statuses {
		qf.Statuses[i] = core.CleanString(s, true /* lower */)
	}
}
