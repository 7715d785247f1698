package admission

import "github.com/pkg/errors"

var (
	// caller/input mistakes; surfaced synchronously, never retried
	ErrNotFound                = errors.New("application not found")
	ErrIllegalTransition       = errors.New("illegal status transition")
	ErrInvalidSchedule         = errors.New("exam schedule must be a valid future date")
	ErrPayloadTooLarge         = errors.New("document exceeds the maximum upload size")
	ErrUnsupportedDocumentType = errors.New("unsupported document type")
	ErrUnsupportedContentType  = errors.New("content type not allowed for this document type")
)

// NotificationError reports a failed schedule notification, carrying the
// underlying transport error. Recoverable; retry policy belongs to the
// caller.
type NotificationError struct {
	Err error
}

func (err *NotificationError) Error() string {
	return "notification failed: " + err.Err.Error()
}

func (err *NotificationError) Unwrap() error { return err.Err }

// Cause exposes the transport error to errors.Cause chains.
func (err *NotificationError) Cause() error { return err.Err }

func IsNotificationError(err error) bool {
	var nerr *NotificationError
	return errors.As(err, &nerr)
}
