package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mcreview/mcreview-backend/internal/domain/packages"
)

// Error is the transport-facing error shape: an HTTP status plus a stable
// machine code.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromDomain maps a domain error onto its transport status. Validation
// failures are the caller's to fix; not_found is distinct from internal
// failures; conflicts cover stale-write and wrong-status rejections;
// invariant violations are data-integrity failures surfaced as 500s.
func FromDomain(err error) *Error {
	if err == nil {
		return nil
	}
	var subErr *packages.SubmissionError
	if errors.As(err, &subErr) {
		return New(http.StatusBadRequest, subErr.Code, err)
	}
	switch packages.CodeOf(err) {
	case packages.CodeValidation:
		return New(http.StatusBadRequest, "BAD_USER_INPUT", err)
	case packages.CodeNotFound:
		return New(http.StatusNotFound, "NOT_FOUND", err)
	case packages.CodeConflict, packages.CodePreconditionFailed:
		return New(http.StatusConflict, "CONFLICT", err)
	case packages.CodeRetryable:
		return New(http.StatusServiceUnavailable, "RETRYABLE", err)
	default:
		return New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", err)
	}
}
