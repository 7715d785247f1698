package sqlxrepos

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"

	"github.com/trezcool/udahili/core"
	"github.com/trezcool/udahili/core/admission"
)

type applicationRepository struct {
	db *sqlx.DB
}

var _ admission.Repository = (*applicationRepository)(nil) // interface compliance check

func NewApplicationRepository(db *sql.DB) admission.Repository {
	return &applicationRepository{db: sqlx.NewDb(db, "postgres")}
}

type applicationRow struct {
	ID             string         `db:"id"`
	FullName       string         `db:"full_name"`
	Email          string         `db:"email"`
	ContactNumber  string         `db:"contact_number"`
	DesiredProgram string         `db:"desired_program"`
	Status         string         `db:"status"`
	ExamSchedule   *time.Time     `db:"exam_schedule"`
	SubmittedAt    time.Time      `db:"submitted_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	Documents      types.JSONText `db:"documents"`
}

func (row applicationRow) toApplication() (admission.Application, error) {
	app := admission.Application{
		ID:             row.ID,
		FullName:       row.FullName,
		Email:          row.Email,
		ContactNumber:  row.ContactNumber,
		DesiredProgram: row.DesiredProgram,
		Status:         admission.Status(row.Status),
		ExamSchedule:   row.ExamSchedule,
		SubmittedAt:    row.SubmittedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
	if len(row.Documents) > 0 && string(row.Documents) != "{}" {
		if err := json.Unmarshal(row.Documents, &app.Documents); err != nil {
			return admission.Application{}, errors.Wrap(err, "decoding documents")
		}
	}
	if app.ExamSchedule != nil {
		at := app.ExamSchedule.UTC()
		app.ExamSchedule = &at
	}
	return app, nil
}

func toRow(app admission.Application) (applicationRow, error) {
	docs := app.Documents
	if docs == nil {
		docs = make(map[string]admission.DocumentDescriptor)
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return applicationRow{}, errors.Wrap(err, "encoding documents")
	}
	return applicationRow{
		ID:             app.ID,
		FullName:       app.FullName,
		Email:          app.Email,
		ContactNumber:  app.ContactNumber,
		DesiredProgram: app.DesiredProgram,
		Status:         string(app.Status),
		ExamSchedule:   app.ExamSchedule,
		SubmittedAt:    app.SubmittedAt,
		UpdatedAt:      app.UpdatedAt,
		Documents:      data,
	}, nil
}

const applicationColumns = `id, full_name, email, contact_number, desired_program, status, exam_schedule, submitted_at, updated_at, documents`

func (repo *applicationRepository) CreateApplication(app admission.Application) (admission.Application, error) {
	row, err := toRow(app)
	if err != nil {
		return admission.Application{}, err
	}
	_, err = repo.db.NamedExec(`
		INSERT INTO application (`+applicationColumns+`)
		VALUES (:id, :full_name, :email, :contact_number, :desired_program, :status, :exam_schedule, :submitted_at, :updated_at, :documents)`,
		row,
	)
	if err != nil {
		return admission.Application{}, core.NewAdapterError("database", err)
	}
	return app, nil
}

func (repo *applicationRepository) GetApplicationByID(id string) (admission.Application, error) {
	var row applicationRow
	err := repo.db.Get(&row, `SELECT `+applicationColumns+` FROM application WHERE id = $1`, id)
	switch {
	case err == sql.ErrNoRows:
		return admission.Application{}, admission.ErrNotFound
	case err != nil:
		return admission.Application{}, core.NewAdapterError("database", err)
	}
	return row.toApplication()
}

// UpdateApplicationAtomic runs patch inside a transaction holding a row lock
// (SELECT ... FOR UPDATE), so concurrent patches on the same id serialize
// and a failed patch rolls back untouched.
func (repo *applicationRepository) UpdateApplicationAtomic(id string, patch func(app *admission.Application) error) (admission.Application, error) {
	tx, err := repo.db.Beginx()
	if err != nil {
		return admission.Application{}, core.NewAdapterError("database", err)
	}
	defer func() { _ = tx.Rollback() }()

	var row applicationRow
	err = tx.Get(&row, `SELECT `+applicationColumns+` FROM application WHERE id = $1 FOR UPDATE`, id)
	switch {
	case err == sql.ErrNoRows:
		return admission.Application{}, admission.ErrNotFound
	case err != nil:
		return admission.Application{}, core.NewAdapterError("database", err)
	}

	app, err := row.toApplication()
	if err != nil {
		return admission.Application{}, err
	}
	if err = patch(&app); err != nil {
		return admission.Application{}, err
	}

	row, err = toRow(app)
	if err != nil {
		return admission.Application{}, err
	}
	if _, err = tx.NamedExec(`
		UPDATE application
		SET full_name = :full_name, email = :email, contact_number = :contact_number,
		    desired_program = :desired_program, status = :status, exam_schedule = :exam_schedule,
		    updated_at = :updated_at, documents = :documents
		WHERE id = :id`,
		row,
	); err != nil {
		return admission.Application{}, core.NewAdapterError("database", err)
	}
	if err = tx.Commit(); err != nil {
		return admission.Application{}, core.NewAdapterError("database", err)
	}
	return app, nil
}

// orderableColumns whitelists the fields exposed to result ordering.
var orderableColumns = map[string]bool{
	"full_name":       true,
	"email":           true,
	"desired_program": true,
	"status":          true,
	"submitted_at":    true,
}

func (repo *applicationRepository) FilterApplications(filter admission.QueryFilter, ordering []core.DBOrdering) ([]admission.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM application`
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(full_name ILIKE %s OR email ILIKE %s)", p, p))
	}
	if len(filter.Statuses) > 0 {
		ph := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			ph = append(ph, arg(status))
		}
		conds = append(conds, "status IN ("+strings.Join(ph, ", ")+")")
	}
	if filter.Program != "" {
		conds = append(conds, "desired_program ILIKE "+arg(filter.Program))
	}
	if !filter.SubmittedFrom.IsZero() {
		conds = append(conds, "submitted_at >= "+arg(filter.SubmittedFrom.UTC()))
	}
	if !filter.SubmittedTo.IsZero() {
		conds = append(conds, "submitted_at <= "+arg(filter.SubmittedTo.UTC()))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	orderings := []string{"submitted_at DESC"}
	if len(ordering) > 0 {
		orderings = orderings[:0]
		for _, ord := range ordering {
			if orderableColumns[ord.Field] {
				orderings = append(orderings, ord.String())
			}
		}
	}
	if len(orderings) > 0 {
		query += " ORDER BY " + strings.Join(orderings, ", ")
	}

	var rows []applicationRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, core.NewAdapterError("database", err)
	}
	apps := make([]admission.Application, 0, len(rows))
	for _, row := range rows {
		app, err := row.toApplication()
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}
