package admission

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/udahili/core"
)

// DispatchResult reports the outcome of one notification attempt. Failure is
// explicit and queryable rather than only logged.
type DispatchResult struct {
	ApplicationID string
	MessageID     string
	SentAt        time.Time // UTC
	Err           error
}

func (res DispatchResult) OK() bool { return res.Err == nil }

type scheduleMailData struct {
	FullName string
	Program  string
	ExamDate string
	ExamTime string
}

func (svc *service) NotifySchedule(app Application) DispatchResult {
	res := DispatchResult{ApplicationID: app.ID}

	if _, err := mail.ParseAddress(app.Email); err != nil {
		res.Err = &NotificationError{Err: errors.Wrapf(err, "invalid recipient address %q", app.Email)}
		return res
	}
	if app.ExamSchedule == nil {
		res.Err = &NotificationError{Err: errors.New("no exam schedule set")}
		return res
	}

	loc, err := time.LoadLocation(svc.conf.Admission.TimeZone)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("unknown time zone %q, falling back to UTC", svc.conf.Admission.TimeZone), err)
		loc = time.UTC
	}
	examAt := app.ExamSchedule.In(loc)

	data := scheduleMailData{
		FullName: app.FullName,
		Program:  app.DesiredProgram,
		ExamDate: examAt.Format("Monday, 02 January 2006"),
		ExamTime: examAt.Format("3:04 PM (MST)"),
	}
	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: app.FullName, Address: app.Email}},
		Subject: "Your Entrance Exam Schedule",
		// plain-text fallback; the exam-schedule template takes over when parsed
		BodyStr: fmt.Sprintf(
			"Dear %s,\n\n"+
				"Your admission application to the %s program has been received and your "+
				"entrance examination has been scheduled.\n\n"+
				"Date: %s\nTime: %s\n\n"+
				"Please bring a valid ID and arrive 30 minutes early.\n\n"+
				"Admissions Office",
			data.FullName, data.Program, data.ExamDate, data.ExamTime,
		),
		TemplateName: "exam-schedule",
		TemplateData: data,
	}

	msgID, err := svc.mailSvc.Send(msg)
	if err != nil {
		res.Err = &NotificationError{Err: err}
		return res
	}
	res.MessageID = msgID
	res.SentAt = time.Now().UTC()
	return res
}
