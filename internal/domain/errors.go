package domain

import (
	"fmt"
	"net/http"
	"strings"
)

// ValidationKind categorizes a vocabulary validation failure.
type ValidationKind string

const (
	// ValidationEmptyInput indicates the comma list held no usable tokens.
	ValidationEmptyInput ValidationKind = "empty_input"

	// ValidationInvalidCountryCodes indicates unresolvable country tokens.
	ValidationInvalidCountryCodes ValidationKind = "invalid_country_codes"

	// ValidationInvalidFields indicates field names outside the closed set.
	ValidationInvalidFields ValidationKind = "invalid_fields"
)

// ValidationError is raised while validating CLI input. Tokens carries
// every offending token in its original input order, never just the first,
// so one correction cycle fixes the whole flag value.
type ValidationError struct {
	Kind   ValidationKind
	Param  string
	Tokens []string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ValidationEmptyInput:
		return fmt.Sprintf("%s cannot be empty", e.Param)
	case ValidationInvalidCountryCodes:
		return fmt.Sprintf("invalid/unsupported country code: %s", strings.Join(e.Tokens, ","))
	case ValidationInvalidFields:
		return fmt.Sprintf("unsupported fields: %s", strings.Join(e.Tokens, ","))
	}
	return fmt.Sprintf("invalid %s", e.Param)
}

// ErrEmptyInput builds the empty-list validation error for a parameter.
func ErrEmptyInput(param string) *ValidationError {
	return &ValidationError{Kind: ValidationEmptyInput, Param: param}
}

// ErrInvalidCountryCodes builds the error listing every unresolvable token.
func ErrInvalidCountryCodes(tokens []string) *ValidationError {
	return &ValidationError{Kind: ValidationInvalidCountryCodes, Param: "country", Tokens: tokens}
}

// ErrInvalidFields builds the error listing every unknown field name.
func ErrInvalidFields(tokens []string) *ValidationError {
	return &ValidationError{Kind: ValidationInvalidFields, Param: "fields", Tokens: tokens}
}

// MissingSelectorError is the one cross-field rule in the repo: a query
// must be scoped by search terms or page ids, otherwise it would sweep the
// whole archive.
type MissingSelectorError struct{}

func (e *MissingSelectorError) Error() string {
	return "at least one must be set: --search-terms, --search-page-ids"
}

// UnknownActionError is returned when the positional action name is not in
// the closed action set. A configuration mistake, not a runtime fault.
type UnknownActionError struct {
	Name  string
	Known []string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("invalid action %q (known actions: %s)", e.Name, strings.Join(e.Known, ", "))
}

// ErrorType categorizes a failure surfaced by the archive API.
type ErrorType string

const (
	// ErrorTypeInvalidRequest indicates a malformed or rejected request.
	ErrorTypeInvalidRequest ErrorType = "invalid_request"

	// ErrorTypeAuthentication indicates the access token was rejected.
	ErrorTypeAuthentication ErrorType = "authentication"

	// ErrorTypeRateLimit indicates API rate limiting was triggered.
	ErrorTypeRateLimit ErrorType = "rate_limit"

	// ErrorTypeServer indicates an upstream server error.
	ErrorTypeServer ErrorType = "server"

	// ErrorTypeTransport indicates the HTTP exchange itself failed.
	ErrorTypeTransport ErrorType = "transport"
)

// APIError is a terminal failure from the archive API, after the traversal
// has exhausted its retries. It aborts the whole run; no partial output is
// flushed.
type APIError struct {
	Type ErrorType

	// Code is the numeric error code the Graph API reports, when present.
	Code int

	Message string

	// StatusCode is the HTTP status of the failing response, 0 for
	// transport-level failures.
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Transient reports whether the traversal may retry the same page.
// Rate limits and server-side errors pass; a rejected token or a malformed
// request would fail identically on every attempt.
func (e *APIError) Transient() bool {
	switch e.Type {
	case ErrorTypeRateLimit, ErrorTypeServer, ErrorTypeTransport:
		return true
	}
	return e.StatusCode >= http.StatusInternalServerError
}
