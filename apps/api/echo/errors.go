package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/dev-Vortex51/iitms/core"
	"github.com/dev-Vortex51/iitms/core/attendance"
	"github.com/dev-Vortex51/iitms/core/student"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound  = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch cause := errors.Cause(err); cause {
		case attendance.ErrRecordNotFound, student.ErrNotFound, student.ErrSupervisorNotFound:
			code = http.StatusNotFound
			message = cause.Error()
		case attendance.ErrNotAuthorized:
			code = http.StatusForbidden
			message = cause.Error()
		case attendance.ErrDuplicateRecord:
			code = http.StatusConflict
			message = cause.Error()
		case attendance.ErrNoActivePlacement, attendance.ErrAlreadyCheckedIn, attendance.ErrNotCheckedIn,
			attendance.ErrAlreadyCheckedOut, attendance.ErrCheckOutTooEarly, attendance.ErrDayAlreadySettled:
			// the request is well-formed but the record's lifecycle forbids it
			code = http.StatusPreconditionFailed
			message = cause.Error()
		default:
			code, message = handleErrByType(err, ctx, logger, translator, signalShutdown)
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
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

func handleErrByType(
	err error,
	ctx echo.Context,
	logger core.Logger,
	translator ut.Translator,
	signalShutdown func(),
) (int, interface{}) {
	switch origErr := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if origErr == middleware.ErrJWTMissing {
			return http.StatusUnauthorized, origErr.Message
		}
		if origErr.Internal != nil {
			if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
				origErr = herr
			}
		}
		return origErr.Code, origErr.Message
	case validator.ValidationErrors:
		fldErrs := make(map[string]string, len(origErr))
		for _, vErr := range origErr {
			fldErrs[vErr.Field()] = vErr.Translate(translator)
		}
		return http.StatusBadRequest, fldErrs
	case *core.ValidationError:
		if origErr.Fields != nil {
			fldErrs := make(map[string]string, len(origErr.Fields))
			for _, fErr := range origErr.Fields {
				fldErrs[fErr.Field] = fErr.Error
			}
			return http.StatusBadRequest, fldErrs
		}
		return http.StatusBadRequest, origErr.Error()
	default: // any other error is a server error
		msg := http.StatusText(http.StatusInternalServerError)

		var actor core.Actor
		if claims, cErr := getContextClaims(ctx); cErr == nil {
			actor.ID = claims.Subject
			actor.Name = claims.Name
			actor.Email = claims.Email
		}
		logger.Error(msg, errors.Wrap(err, msg), actor)

		// shutting down...
		if core.IsShutdown(err) {
			signalShutdown()
		}
		return http.StatusInternalServerError, msg
	}
}
