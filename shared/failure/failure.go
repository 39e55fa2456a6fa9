package failure

import (
	"errors"
	"net/http"
)

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
// Kind is a stable machine readable classifier; two failures with the same non-empty
// Kind match under errors.Is.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

const (
	KindBadRequest    = "bad_request"
	KindUnauthorized  = "unauthorized"
	KindForbidden     = "forbidden"
	KindNotFound      = "not_found"
	KindConflict      = "conflict"
	KindUnprocessable = "unprocessable"
	KindInternal      = "internal"
	KindUnimplemented = "unimplemented"
)

var (
	ErrBadRequest = &Failure{Code: http.StatusBadRequest, Message: "bad request", Kind: KindBadRequest}
	ErrNotFound   = &Failure{Code: http.StatusNotFound, Message: "not found", Kind: KindNotFound}
	ErrConflict   = &Failure{Code: http.StatusConflict, Message: "conflict", Kind: KindConflict}

	InvalidLimitParam = &Failure{Code: http.StatusBadRequest, Message: "invalid limit parameter", Kind: KindBadRequest}
	ForbiddenError    = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions", Kind: KindForbidden}
	BranchRestricted  = &Failure{Code: http.StatusForbidden, Message: "You don't have access to this branch", Kind: KindForbidden}
)

// Error returns the failure message.
func (e *Failure) Error() string {
	return e.Message
}

// Is reports whether target is the same failure or a failure of the same kind.
func (e *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}

	if e == t {
		return true
	}

	return e.Kind != "" && e.Kind == t.Kind
}

// New returns a failure with an explicit code and kind.
func New(code int, kind, message string) *Failure {
	return &Failure{
		Code:    code,
		Message: message,
		Kind:    kind,
	}
}

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return New(http.StatusBadRequest, KindBadRequest, err.Error())
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return New(http.StatusBadRequest, KindBadRequest, msg)
}

// Unauthorized returns a new Failure with code for unauthorized requests.
func Unauthorized(msg string) error {
	return New(http.StatusUnauthorized, KindUnauthorized, msg)
}

// InternalError returns a new Failure with code for internal error and message derived from an error interface.
func InternalError(err error) error {
	if err != nil {
		return New(http.StatusInternalServerError, KindInternal, err.Error())
	}

	return nil
}

// Unimplemented returns a new Failure with code for unimplemented method.
func Unimplemented(methodName string) error {
	return New(http.StatusNotImplemented, KindUnimplemented, methodName)
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(msg string) error {
	return New(http.StatusNotFound, KindNotFound, msg)
}

// Conflict returns a new Failure with code for conflict situations.
func Conflict(msg string) error {
	return New(http.StatusConflict, KindConflict, msg)
}

// Unprocessable returns a new Failure for well formed requests the domain refuses.
func Unprocessable(msg string) error {
	return New(http.StatusUnprocessableEntity, KindUnprocessable, msg)
}

func Forbidden(msg string) error {
	return New(http.StatusForbidden, KindForbidden, msg)
}

// GetCode returns the error code of an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// GetKind returns the kind of the first failure in the chain, or KindInternal.
func GetKind(err error) string {
	var fail *Failure
	if errors.As(err, &fail) && fail.Kind != "" {
		return fail.Kind
	}

	return KindInternal
}
