package admission

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		// submitted
		{StatusSubmitted, StatusScheduled, true},
		{StatusSubmitted, StatusRejected, true},
		{StatusSubmitted, StatusApproved, false},
		{StatusSubmitted, StatusExamTaken, false},
		{StatusSubmitted, StatusSubmitted, false},
		// scheduled: reschedule self-loop + decisions
		{StatusScheduled, StatusScheduled, true},
		{StatusScheduled, StatusExamTaken, true},
		{StatusScheduled, StatusApproved, true},
		{StatusScheduled, StatusRejected, true},
		{StatusScheduled, StatusSubmitted, false},
		// exam_taken
		{StatusExamTaken, StatusApproved, true},
		{StatusExamTaken, StatusRejected, true},
		{StatusExamTaken, StatusScheduled, false},
		// terminal states have no outgoing edges
		{StatusApproved, StatusRejected, false},
		{StatusApproved, StatusScheduled, false},
		{StatusApproved, StatusSubmitted, false},
		{StatusRejected, StatusApproved, false},
		{StatusRejected, StatusScheduled, false},
		{StatusRejected, StatusSubmitted, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+" to "+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, known := range Statuses {
		status, err := ParseStatus(string(known))
		assert.NoError(t, err)
		assert.Equal(t, known, status)
	}

	_, err := ParseStatus("enrolled")
	assert.Equal(t, ErrIllegalTransition, errors.Cause(err))

	_, err = ParseStatus("")
	assert.Error(t, err)
}
