package admission_test

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/udahili/core"
	"github.com/trezcool/udahili/core/admission"
	emailsvc "github.com/trezcool/udahili/services/email"
	dummyblob "github.com/trezcool/udahili/storage/blob/dummy"
	dummydb "github.com/trezcool/udahili/storage/database/dummy"
	testutil "github.com/trezcool/udahili/tests"
)

func TestService_NotifySchedule(t *testing.T) {
	examAt := time.Date(2021, time.September, 13, 1, 30, 0, 0, time.UTC)

	t.Run("one message per invocation", func(t *testing.T) {
		svc, repo, _, conf := setup(t)
		conf.Admission.TimeZone = "Asia/Manila" // UTC+8, no DST
		app := testutil.CreateApplication(t, repo, "Juan Dela Cruz", "juan@test.cm", "BS Computer Science", admission.StatusScheduled, &examAt)

		res := svc.NotifySchedule(app)
		require.True(t, res.OK(), "dispatch failed: %v", res.Err)
		assert.Equal(t, app.ID, res.ApplicationID)
		assert.NotEmpty(t, res.MessageID)
		assert.False(t, res.SentAt.IsZero())

		msg, ok := emailsvc.LastSentMessage()
		require.True(t, ok)
		require.Len(t, msg.To, 1)
		assert.Equal(t, "juan@test.cm", msg.To[0].Address)
		assert.Equal(t, "Juan Dela Cruz", msg.To[0].Name)
		assert.Equal(t, "Your Entrance Exam Schedule", msg.Subject)
		// date and time rendered in the campus time zone
		assert.Contains(t, msg.TextContent, "Monday, 13 September 2021")
		assert.Contains(t, msg.TextContent, "9:30 AM")

		res = svc.NotifySchedule(app)
		require.True(t, res.OK())
		assert.Len(t, emailsvc.SentMessages, 2) // no dedup
	})

	t.Run("unknown time zone falls back to UTC", func(t *testing.T) {
		svc, repo, _, conf := setup(t)
		conf.Admission.TimeZone = "Mars/Olympus"
		app := testutil.CreateApplication(t, repo, "Juan Dela Cruz", "juan@test.cm", "BS Computer Science", admission.StatusScheduled, &examAt)

		res := svc.NotifySchedule(app)
		require.True(t, res.OK(), "dispatch failed: %v", res.Err)

		msg, _ := emailsvc.LastSentMessage()
		assert.Contains(t, msg.TextContent, "1:30 AM")
	})

	t.Run("invalid recipient address", func(t *testing.T) {
		svc, _, _, _ := setup(t)
		app := admission.Application{
			ID:           "app1",
			FullName:     "Juan Dela Cruz",
			Email:        "not-an-address",
			ExamSchedule: &examAt,
		}

		res := svc.NotifySchedule(app)
		assert.False(t, res.OK())
		assert.True(t, admission.IsNotificationError(res.Err))
		assert.Empty(t, res.MessageID)
		assert.Empty(t, emailsvc.SentMessages)
	})

	t.Run("no exam schedule on the record", func(t *testing.T) {
		svc, repo, _, _ := setup(t)
		app := testutil.CreateApplication(t, repo, "Juan Dela Cruz", "juan@test.cm", "BS Computer Science", admission.StatusSubmitted, nil)

		res := svc.NotifySchedule(app)
		assert.False(t, res.OK())
		assert.True(t, admission.IsNotificationError(res.Err))
	})

	t.Run("transport failure surfaces as a notification error", func(t *testing.T) {
		conf := testutil.NewConfig(t)
		db, err := dummydb.Open()
		require.NoError(t, err)
		repo := dummydb.NewApplicationRepository(db)
		svc := admission.NewServiceMock(repo, dummyblob.NewStore(), failingMailService{}, conf, testutil.NewLogger())
		app := testutil.CreateApplication(t, repo, "Juan Dela Cruz", "juan@test.cm", "BS Computer Science", admission.StatusScheduled, &examAt)

		res := svc.NotifySchedule(app)
		assert.False(t, res.OK())
		assert.True(t, admission.IsNotificationError(res.Err))
		assert.Equal(t, errMailDown, errors.Cause(res.Err))
	})

	t.Run("notification failure never rolls back the schedule", func(t *testing.T) {
		conf := testutil.NewConfig(t)
		db, err := dummydb.Open()
		require.NoError(t, err)
		repo := dummydb.NewApplicationRepository(db)
		svc := admission.NewServiceMock(repo, dummyblob.NewStore(), failingMailService{}, conf, testutil.NewLogger())
		app := testutil.CreateApplication(t, repo, "Juan Dela Cruz", "juan@test.cm", "BS Computer Science", admission.StatusSubmitted, nil)

		updated, err := svc.Schedule(app.ID, time.Now().Add(72*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, admission.StatusScheduled, updated.Status)

		stored, err := repo.GetApplicationByID(app.ID)
		require.NoError(t, err)
		assert.Equal(t, admission.StatusScheduled, stored.Status)
		require.NotNil(t, stored.ExamSchedule)
	})
}

var errMailDown = errors.New("mail relay down")

type failingMailService struct{}

var _ core.EmailService = (*failingMailService)(nil)

func (failingMailService) SendMessages(...*core.EmailMessage)      {}
func (failingMailService) Send(*core.EmailMessage) (string, error) { return "", errMailDown }
