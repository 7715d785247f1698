package dummydb

import (
	"sort"
	"strings"

	"github.com/trezcool/udahili/core"
	"github.com/trezcool/udahili/core/admission"
)

type applicationRepository struct {
	db *applicationTable
}

var _ admission.Repository = (*applicationRepository)(nil) // interface compliance check

func NewApplicationRepository(db *DB) admission.Repository {
	return &applicationRepository{db: db.application}
}

// clone copies the record including its documents map so callers never
// share state with the table.
func clone(app admission.Application) admission.Application {
	if app.Documents != nil {
		docs := make(map[string]admission.DocumentDescriptor, len(app.Documents))
		for k, v := range app.Documents {
			docs[k] = v
		}
		app.Documents = docs
	}
	if app.ExamSchedule != nil {
		at := *app.ExamSchedule
		app.ExamSchedule = &at
	}
	return app
}

func (repo *applicationRepository) query() []admission.Application {
	apps := make([]admission.Application, 0, len(repo.db.table))
	for _, app := range repo.db.table {
		apps = append(apps, clone(*app))
	}
	return apps
}

func (repo *applicationRepository) CreateApplication(app admission.Application) (admission.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored := clone(app)
	repo.db.table[app.ID] = &stored
	return app, nil
}

func (repo *applicationRepository) GetApplicationByID(id string) (admission.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if app, ok := repo.db.table[id]; ok {
		return clone(*app), nil
	}
	return admission.Application{}, admission.ErrNotFound
}

// UpdateApplicationAtomic holds the table lock for the whole
// read-patch-write, so concurrent patches on the same id serialize and a
// failed patch leaves the record untouched.
func (repo *applicationRepository) UpdateApplicationAtomic(id string, patch func(app *admission.Application) error) (admission.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	current, ok := repo.db.table[id]
	if !ok {
		return admission.Application{}, admission.ErrNotFound
	}

	draft := clone(*current)
	if err := patch(&draft); err != nil {
		return admission.Application{}, err
	}
	repo.db.table[id] = &draft
	return clone(draft), nil
}

func (repo *applicationRepository) FilterApplications(filter admission.QueryFilter, ordering []core.DBOrdering) ([]admission.Application, error) {
	repo.db.RLock()
	apps := repo.query()
	repo.db.RUnlock()

	if filter.Search != "" {
		var filtered []admission.Application
		search := strings.ToLower(filter.Search)
		for _, app := range apps {
			if strings.Contains(strings.ToLower(app.FullName), search) ||
				strings.Contains(strings.ToLower(app.Email), search) {
				filtered = append(filtered, app)
			}
		}
		apps = filtered
	}
	if apps != nil && len(filter.Statuses) > 0 {
		var filtered []admission.Application
		for _, app := range apps {
			for _, status := range filter.Statuses {
				if string(app.Status) == status {
					filtered = append(filtered, app)
					break
				}
			}
		}
		apps = filtered
	}
	if apps != nil && filter.Program != "" {
		var filtered []admission.Application
		for _, app := range apps {
			if strings.EqualFold(app.DesiredProgram, filter.Program) {
				filtered = append(filtered, app)
			}
		}
		apps = filtered
	}
	if apps != nil && !filter.SubmittedFrom.IsZero() {
		var filtered []admission.Application
		from := filter.SubmittedFrom.UTC()
		for _, app := range apps {
			if app.SubmittedAt.Equal(from) || app.SubmittedAt.After(from) {
				filtered = append(filtered, app)
			}
		}
		apps = filtered
	}
	if apps != nil && !filter.SubmittedTo.IsZero() {
		var filtered []admission.Application
		to := filter.SubmittedTo.UTC()
		for _, app := range apps {
			if app.SubmittedAt.Equal(to) || app.SubmittedAt.Before(to) {
				filtered = append(filtered, app)
			}
		}
		apps = filtered
	}

	if apps == nil {
		apps = []admission.Application{}
	}
	orderApplications(apps, ordering)
	return apps, nil
}

func orderApplications(apps []admission.Application, orderings []core.DBOrdering) {
	if len(orderings) == 0 {
		// newest submissions first by default
		sort.SliceStable(apps, func(i, j int) bool { return apps[i].SubmittedAt.After(apps[j].SubmittedAt) })
		return
	}
	sort.SliceStable(apps, func(i, j int) bool {
		for _, ord := range orderings {
			cmp := compareApplications(apps[i], apps[j], ord.Field)
			if cmp == 0 {
				continue
			}
			if ord.Ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})
}

func compareApplications(a, b admission.Application, field string) int {
	switch field {
	case "full_name":
		return strings.Compare(strings.ToLower(a.FullName), strings.ToLower(b.FullName))
	case "email":
		return strings.Compare(a.Email, b.Email)
	case "desired_program":
		return strings.Compare(strings.ToLower(a.DesiredProgram), strings.ToLower(b.DesiredProgram))
	case "status":
		return strings.Compare(string(a.Status), string(b.Status))
	case "submitted_at":
		switch {
		case a.SubmittedAt.Before(b.SubmittedAt):
			return -1
		case a.SubmittedAt.After(b.SubmittedAt):
			return 1
		}
	}
	return 0
}
