package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/udahili/core"
	"github.com/trezcool/udahili/core/admission"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how
// to handle our errors. Validation-class errors surface as 4xx (the input was
// wrong); adapter and notification failures surface as 5xx (safe to retry).
// signalShutdown is called to gracefully stop the Server whenever a
// core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch cause := errors.Cause(err); cause {
		case admission.ErrNotFound:
			code = http.StatusNotFound
			message = err.Error()
		case admission.ErrIllegalTransition, admission.ErrInvalidSchedule, admission.ErrUnsupportedDocumentType, admission.ErrUnsupportedContentType:
			code = http.StatusBadRequest
			message = err.Error()
		case admission.ErrPayloadTooLarge:
			code = http.StatusRequestEntityTooLarge
			message = err.Error()
		default:
			// NotificationError carries its transport cause, so errors.Cause
			// unwraps past it; look for it in the chain before inspecting the
			// root cause.
			var notifErr *admission.NotificationError
			if errors.As(err, &notifErr) {
				code = http.StatusBadGateway
				message = notifErr.Error()
				logger.Error(notifErr.Error(), errors.Wrap(err, "notification failed"))
				break
			}

			switch origErr := cause.(type) {
			case *echo.HTTPError:
				if origErr == middleware.ErrJWTMissing {
					code = http.StatusUnauthorized
					message = origErr.Message
					break
				}
				if origErr.Internal != nil {
					if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
						origErr = herr
					}
				}
				code = origErr.Code
				message = origErr.Message
			case validator.ValidationErrors:
				fldErrs := make(map[string]string, len(origErr))
				for _, vErr := range origErr {
					fldErrs[vErr.Field()] = vErr.Translate(translator)
				}
				code = http.StatusBadRequest
				message = fldErrs
			case *core.ValidationError:
				if origErr.Fields != nil {
					fldErrs := make(map[string]string, len(origErr.Fields))
					for _, fErr := range origErr.Fields {
						fldErrs[fErr.Field] = fErr.Error
					}
					message = fldErrs
				} else {
					message = origErr.Error()
				}
				code = http.StatusBadRequest
			case *core.AdapterError:
				code = http.StatusServiceUnavailable
				message = http.StatusText(http.StatusServiceUnavailable)
				logger.Error(origErr.Error(), errors.Wrap(err, "adapter unavailable"))
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				logger.Error(msg, errors.Wrap(err, msg))

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug && code >= http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
