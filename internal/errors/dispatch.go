package errors

import (
	"fmt"

	"github.com/cristianoliveira/retroshelf/internal/api"
)

// Outcome is what Dispatch did with an error.
type Outcome int

const (
	// OutcomeNone means there was no error.
	OutcomeNone Outcome = iota
	// OutcomeLogout means the session was dropped and the user asked to log in.
	OutcomeLogout
	// OutcomeNotFound means the view should render its explicit not-found state.
	OutcomeNotFound
	// OutcomeFieldErrors means per-field messages were reported.
	OutcomeFieldErrors
	// OutcomeMessage means a single message was reported.
	OutcomeMessage
)

// Messages shown for classes of failure whose details are not useful.
const (
	MsgSessionExpired = "Your session has expired. Run `retroshelf login` to sign in again."
	MsgNotFound       = "Not found."
	MsgUnavailable    = "The service is unavailable right now. Please try again later."
)

// Dispatch reports err through h according to its kind. logout runs for
// authorization failures and may be nil.
func Dispatch(err error, h ErrorHandler, logout func()) Outcome {
	if err == nil {
		return OutcomeNone
	}
	switch api.Classify(err) {
	case api.KindUnauthorized:
		if logout != nil {
			logout()
		}
		h.Warning(MsgSessionExpired)
		return OutcomeLogout
	case api.KindNotFound:
		h.Info(MsgNotFound)
		return OutcomeNotFound
	case api.KindValidation:
		apiErr, _ := api.AsError(err)
		if apiErr == nil || len(apiErr.Fields) == 0 {
			h.Error(messageOf(err))
			return OutcomeFieldErrors
		}
		for _, name := range apiErr.FieldNames() {
			h.Error(fmt.Sprintf("%s: %s", name, apiErr.Fields[name].Message))
		}
		return OutcomeFieldErrors
	case api.KindConflict:
		h.Warning(messageOf(err))
		return OutcomeMessage
	case api.KindTransient:
		h.Error(MsgUnavailable)
		return OutcomeMessage
	default:
		h.Error(messageOf(err))
		return OutcomeMessage
	}
}

// FieldErrors returns the per-field messages carried by err, or nil.
func FieldErrors(err error) map[string]string {
	apiErr, ok := api.AsError(err)
	if !ok || len(apiErr.Fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(apiErr.Fields))
	for name, f := range apiErr.Fields {
		out[name] = f.Message
	}
	return out
}

// messageOf prefers the backend's human message over the wrapped error text.
func messageOf(err error) string {
	if apiErr, ok := api.AsError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
