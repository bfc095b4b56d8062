package quizkit

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrValidation marks a local, pre-network validation failure. Use
	// [AsValidationError] to recover the field-level detail.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials is returned when the backend rejects an email or
	// password during login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is the 403-equivalent: the session exists but is not
	// allowed to perform the operation.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNetwork marks transport-level failures (unreachable backend,
	// timeout) as opposed to structured backend rejections.
	ErrNetwork = errors.New("backend unreachable")
	// ErrNotFound is returned when the backend reports a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrMalformedData marks inconsistent backend data the client degrades
	// around rather than crashing on (e.g. a conflicting question payload).
	ErrMalformedData = errors.New("malformed backend data")
	// ErrEmptyQuestionSet is returned when a quiz start yields zero
	// questions; no attempt is created.
	ErrEmptyQuestionSet = errors.New("empty question set")

	// ErrRestorePending rejects login/register while the startup session
	// restore has not yet run to completion.
	ErrRestorePending = errors.New("session restore pending")
	// ErrOperationInFlight rejects an auth operation while another one is
	// still suspended at a network call.
	ErrOperationInFlight = errors.New("operation already in flight")
	// ErrAlreadyAuthenticated rejects login/register from an authenticated
	// session; there is deliberately no authenticating-while-authenticated
	// transition.
	ErrAlreadyAuthenticated = errors.New("already authenticated")
	// ErrNotAuthenticated is returned by operations that require an
	// authenticated session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrRefreshInvalid is returned when the refresh credential exchange is
	// rejected; a refresh failure is terminal for the session.
	ErrRefreshInvalid = errors.New("invalid refresh token")

	// ErrNoActiveAttempt is returned by quiz operations outside an attempt.
	ErrNoActiveAttempt = errors.New("no active attempt")
	// ErrAttemptCompleted rejects submissions after the attempt finished.
	ErrAttemptCompleted = errors.New("attempt already completed")
	// ErrAnswerAlreadyRecorded rejects a second submission for a question
	// that already has an answer record.
	ErrAnswerAlreadyRecorded = errors.New("answer already recorded for question")
	// ErrQuestionMismatch rejects a submission that does not target the
	// current cursor question.
	ErrQuestionMismatch = errors.New("submission does not match current question")
)

// ValidationError carries field-level validation detail, either produced
// locally before any network call or normalized from a backend 400 response.
// It unwraps to [ErrValidation] so callers can classify it with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, f := range names {
		parts = append(parts, f+": "+e.Fields[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// AsValidationError returns the field-level detail of err, if any.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// APIError is a remote failure normalized to a single human-readable message
// plus the original machine-readable reason code. It unwraps to one of the
// taxonomy sentinels above.
type APIError struct {
	Reason  string
	Message string
	Kind    error
}

func (e *APIError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%v: %s (%s)", e.Kind, e.Message, e.Reason)
}

func (e *APIError) Unwrap() error { return e.Kind }
