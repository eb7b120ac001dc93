package domain

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Code classifies an AppError. Each code maps to one HTTP status.
type Code int

const (
	CodeNotFound Code = iota + 1
	CodeValidation
	CodeInternal
	CodeNotImplemented
	CodeUnavailable
)

var statusByCode = map[Code]int{
	CodeNotFound:       http.StatusNotFound,
	CodeValidation:     http.StatusBadRequest,
	CodeInternal:       http.StatusInternalServerError,
	CodeNotImplemented: http.StatusNotImplemented,
	CodeUnavailable:    http.StatusServiceUnavailable,
}

// AppError is a catalog failure with a code, a client-safe message and an
// optional cause.
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any *AppError carrying the same code, so errors.Is(err, ErrNotFound)
// holds for freshly built errors too.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrNotFound    = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrValidation  = &AppError{Code: CodeValidation, Message: "validation error"}
	ErrUnavailable = &AppError{Code: CodeUnavailable, Message: "store unavailable"}
)

func NewAppError(code Code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func IsNotFound(err error) bool    { return errors.Is(err, ErrNotFound) }
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }

// HTTPStatusCode maps err to a response status:
//   - an expired request deadline gives 408;
//   - a *ValidationError gives 501 when it rejects a sort column, else 400;
//   - an *AppError gives the status of its code;
//   - anything else, nil included, gives 500.
func HTTPStatusCode(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusRequestTimeout
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		if vErr.Has(ViolationUnknownSortColumn) {
			return http.StatusNotImplemented
		}
		return http.StatusBadRequest
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if status, ok := statusByCode[appErr.Code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// ViolationCode classifies a single rejected list request parameter.
type ViolationCode string

const (
	ViolationInvalidPaging     ViolationCode = "InvalidPaging"
	ViolationUnknownSortColumn ViolationCode = "UnknownSortColumn"
	ViolationInvalidSortOrder  ViolationCode = "InvalidSortOrder"
)

// Violation describes one rejected request field.
type Violation struct {
	Field   string        `json:"field"`
	Code    ViolationCode `json:"code"`
	Message string        `json:"message"`
}

// ValidationError aggregates every rule a list request violated.
// An unknown sort column signals a capability gap and maps to 501 instead of 400.
type ValidationError struct {
	Violations []Violation
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "invalid list request: " + strings.Join(parts, "; ")
}

// Has reports whether any violation carries the given code.
func (e *ValidationError) Has(code ViolationCode) bool {
	for _, v := range e.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

