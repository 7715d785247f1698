package admission

import "github.com/pkg/errors"

// Status is the lifecycle state of an Application. Transitions are monotonic
// along the table below; nothing else mutates it.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusScheduled Status = "scheduled"
	StatusExamTaken Status = "exam_taken"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

var Statuses = []Status{StatusSubmitted, StatusScheduled, StatusExamTaken, StatusApproved, StatusRejected}

// transitions is the legal (from -> to) table. The scheduled self-loop is a
// reschedule: the new date overwrites the old one. approved and rejected
// have no outgoing edges.
var transitions = map[Status][]Status{
	StatusSubmitted: {StatusScheduled, StatusRejected},
	StatusScheduled: {StatusScheduled, StatusExamTaken, StatusApproved, StatusRejected},
	StatusExamTaken: {StatusApproved, StatusRejected},
}

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the (s, to) edge exists in the table.
func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range transitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", errors.Wrapf(ErrIllegalTransition, "unknown status %q", s)
	}
	return status, nil
}
