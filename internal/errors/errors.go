// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package errors provides the domain error taxonomy for the literature pipeline.
//
// Adapters return typed errors; the aggregator absorbs upstream failures and
// the HTTP layer maps the remaining ones to status codes:
//
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    status := domainErr.HTTPStatus()
//	}
//
//	if errors.Is(err, errors.ErrInvalidInput) { ... }
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

// Code represents a machine-readable error code.
type Code string

const (
	CodeInvalidInput        Code = "INVALID_INPUT"
	CodeNotFound            Code = "NOT_FOUND"
	CodeUpstreamTimeout     Code = "UPSTREAM_TIMEOUT"
	CodeBadUpstreamResponse Code = "BAD_UPSTREAM_RESPONSE"
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
	CodeNoResults           Code = "NO_RESULTS"
	CodeSynthesisFailure    Code = "SYNTHESIS_FAILURE"
	CodeInternal            Code = "INTERNAL"
)

// HTTPStatus returns the HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUpstreamTimeout:
		return http.StatusGatewayTimeout
	case CodeBadUpstreamResponse, CodeUpstreamUnavailable, CodeSynthesisFailure:
		return http.StatusBadGateway
	case CodeNoResults:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is matching by code.
var (
	ErrInvalidInput        = &Error{Code: CodeInvalidInput}
	ErrNotFound            = &Error{Code: CodeNotFound}
	ErrUpstreamTimeout     = &Error{Code: CodeUpstreamTimeout}
	ErrBadUpstreamResponse = &Error{Code: CodeBadUpstreamResponse}
	ErrUpstreamUnavailable = &Error{Code: CodeUpstreamUnavailable}
	ErrNoResults           = &Error{Code: CodeNoResults}
	ErrSynthesisFailure    = &Error{Code: CodeSynthesisFailure}
)

// Error is a domain error with a code, a message, and the component or
// provider that raised it.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Source  string `json:"source,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Source != "" {
		msg = e.Source + ": " + msg
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// InvalidInput reports a missing or malformed request field.
func InvalidInput(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a lookup with no match.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// UpstreamTimeout reports a provider call that exceeded its deadline.
func UpstreamTimeout(source string, cause error) *Error {
	return &Error{Code: CodeUpstreamTimeout, Message: "request timed out", Source: source, cause: cause}
}

// BadUpstreamResponse reports a non-success status or an unparseable body.
func BadUpstreamResponse(source, message string, cause error) *Error {
	return &Error{Code: CodeBadUpstreamResponse, Message: message, Source: source, cause: cause}
}

// UpstreamUnavailable reports a transport failure before any response arrived.
func UpstreamUnavailable(source string, cause error) *Error {
	return &Error{Code: CodeUpstreamUnavailable, Message: "request failed", Source: source, cause: cause}
}

// NoResults is the informational outcome of a query nobody matched.
func NoResults(format string, args ...any) *Error {
	return &Error{Code: CodeNoResults, Message: fmt.Sprintf(format, args...)}
}

// SynthesisFailure reports a failed or malformed text-generation call.
func SynthesisFailure(message string, cause error) *Error {
	return &Error{Code: CodeSynthesisFailure, Message: message, Source: "synthesis", cause: cause}
}

// Internal wraps an unexpected failure.
func Internal(message string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: message, cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HTTPStatusOf maps any error to an HTTP status.
func HTTPStatusOf(err error) int {
	return CodeOf(err).HTTPStatus()
}
