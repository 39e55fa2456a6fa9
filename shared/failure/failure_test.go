package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"pms/shared/failure"
	"testing"
)

func TestFailure_Error(t *testing.T) {
	f := &failure.Failure{
		Code:    http.StatusBadRequest,
		Message: "test error message",
	}

	if f.Error() != "test error message" {
		t.Errorf("expected error message to be 'test error message', got %s", f.Error())
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		kind    string
		message string
	}{
		{
			name:    "BadRequest",
			err:     failure.BadRequest(errors.New("validation failed")),
			code:    http.StatusBadRequest,
			kind:    failure.KindBadRequest,
			message: "validation failed",
		},
		{
			name:    "BadRequestFromString",
			err:     failure.BadRequestFromString("custom bad request"),
			code:    http.StatusBadRequest,
			kind:    failure.KindBadRequest,
			message: "custom bad request",
		},
		{
			name:    "Unauthorized",
			err:     failure.Unauthorized("token expired"),
			code:    http.StatusUnauthorized,
			kind:    failure.KindUnauthorized,
			message: "token expired",
		},
		{
			name:    "InternalError",
			err:     failure.InternalError(errors.New("database connection failed")),
			code:    http.StatusInternalServerError,
			kind:    failure.KindInternal,
			message: "database connection failed",
		},
		{
			name:    "Unimplemented",
			err:     failure.Unimplemented("Reschedule"),
			code:    http.StatusNotImplemented,
			kind:    failure.KindUnimplemented,
			message: "Reschedule",
		},
		{
			name:    "NotFound",
			err:     failure.NotFound("reservation not found"),
			code:    http.StatusNotFound,
			kind:    failure.KindNotFound,
			message: "reservation not found",
		},
		{
			name:    "Conflict",
			err:     failure.Conflict("already exists"),
			code:    http.StatusConflict,
			kind:    failure.KindConflict,
			message: "already exists",
		},
		{
			name:    "Unprocessable",
			err:     failure.Unprocessable("cannot do that"),
			code:    http.StatusUnprocessableEntity,
			kind:    failure.KindUnprocessable,
			message: "cannot do that",
		},
		{
			name:    "Forbidden",
			err:     failure.Forbidden("nope"),
			code:    http.StatusForbidden,
			kind:    failure.KindForbidden,
			message: "nope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := tt.err.(*failure.Failure)
			if !ok {
				t.Fatalf("expected *failure.Failure, got %T", tt.err)
			}

			if f.Code != tt.code {
				t.Errorf("expected code %d, got %d", tt.code, f.Code)
			}

			if f.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, f.Kind)
			}

			if f.Message != tt.message {
				t.Errorf("expected message %s, got %s", tt.message, f.Message)
			}
		})
	}
}

func TestNilInputs(t *testing.T) {
	if err := failure.BadRequest(nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	if err := failure.InternalError(nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestFailure_Is(t *testing.T) {
	roomTaken := failure.New(http.StatusConflict, "room_unavailable", "room unavailable")

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same kind through wrapping",
			err:    fmt.Errorf("failed to get reservation: %w", failure.NotFound("reservation r-1 not found")),
			target: failure.ErrNotFound,
			want:   true,
		},
		{
			name:   "different kind",
			err:    failure.Conflict("modified concurrently"),
			target: roomTaken,
			want:   false,
		},
		{
			name:   "sentinel identity",
			err:    fmt.Errorf("%w: room 101", roomTaken),
			target: roomTaken,
			want:   true,
		},
		{
			name:   "plain error",
			err:    errors.New("boom"),
			target: failure.ErrNotFound,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCodeAndKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		kind string
	}{
		{
			name: "failure error",
			err:  failure.NotFound("not found"),
			code: http.StatusNotFound,
			kind: failure.KindNotFound,
		},
		{
			name: "wrapped failure",
			err:  fmt.Errorf("wrapped: %w", failure.Conflict("conflict")),
			code: http.StatusConflict,
			kind: failure.KindConflict,
		},
		{
			name: "standard error",
			err:  errors.New("standard error"),
			code: http.StatusInternalServerError,
			kind: failure.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := failure.GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %d, want %d", got, tt.code)
			}

			if got := failure.GetKind(tt.err); got != tt.kind {
				t.Errorf("GetKind() = %s, want %s", got, tt.kind)
			}
		})
	}
}
