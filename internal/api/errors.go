package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
)

// ErrorKind is the closed set of failure classes callers dispatch on.
type ErrorKind int

const (
	// KindNone classifies a nil error.
	KindNone ErrorKind = iota
	KindUnauthorized
	KindNotFound
	KindValidation
	KindConflict
	KindTransient
	KindUnknown
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Retryable reports whether a failure of this kind may succeed on retry.
func (k ErrorKind) Retryable() bool {
	return k == KindTransient
}

// Machine-readable codes the backend is known to send.
const (
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeTokenExpired    = "TOKEN_EXPIRED"
	CodeInvalidToken    = "INVALID_TOKEN"
	CodeNotFound        = "NOT_FOUND"
	CodeValidationError = "VALIDATION_ERROR"
	CodeConflict        = "CONFLICT"
	CodeAlreadyExists   = "ALREADY_EXISTS"
)

// FieldError is one field-level validation failure.
type FieldError struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

// Error is a non-2xx response from the backend.
type Error struct {
	Kind    ErrorKind
	Status  int
	Code    string
	Message string
	Fields  map[string]FieldError
	Method  string
	Path    string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("api %s %s: %d %s: %s", e.Method, e.Path, e.Status, e.Code, msg)
	}
	return fmt.Sprintf("api %s %s: %d: %s", e.Method, e.Path, e.Status, msg)
}

// FieldNames returns the names of the failing fields, sorted.
func (e *Error) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// errorBody is the JSON shape of a failed response.
type errorBody struct {
	Code    string                `json:"code"`
	Message string                `json:"message"`
	Errors  map[string]FieldError `json:"errors"`
}

// newError builds an *Error from a failed response. A body that is not the
// expected JSON still yields an error carrying the status.
func newError(method, path string, status int, body io.Reader) *Error {
	e := &Error{Status: status, Method: method, Path: path}
	data, err := io.ReadAll(io.LimitReader(body, 1<<20))
	if err == nil && len(data) > 0 {
		var parsed errorBody
		if json.Unmarshal(data, &parsed) == nil {
			e.Code = parsed.Code
			e.Message = parsed.Message
			e.Fields = parsed.Errors
		} else {
			e.Message = strings.TrimSpace(string(data))
		}
	}
	e.Kind = kindFor(status, e.Code, len(e.Fields) > 0)
	return e
}

// kindFor classifies a response. The code wins over the status when both
// are meaningful.
func kindFor(status int, code string, hasFields bool) ErrorKind {
	code = strings.ToUpper(code)
	switch {
	case code == CodeUnauthorized || code == CodeTokenExpired || code == CodeInvalidToken:
		return KindUnauthorized
	case code == CodeNotFound || strings.HasSuffix(code, "_NOT_FOUND"):
		return KindNotFound
	case code == CodeValidationError || hasFields:
		return KindValidation
	case code == CodeConflict || code == CodeAlreadyExists || strings.HasSuffix(code, "_ALREADY_EXISTS"):
		return KindConflict
	}

	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusNotFound || status == http.StatusGone:
		return KindNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500:
		return KindTransient
	default:
		return KindUnknown
	}
}

// Classify maps any error returned by this package, or by the transport
// underneath it, to an ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) {
		return KindTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransient
	}
	return KindUnknown
}

// AsError returns the *Error inside err, if any.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
