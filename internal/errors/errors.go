package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Validation errors (VALIDATION-001 to VALIDATION-099)
	// Rejected locally before any remote call is made.
	ErrCodeUsernameRequired     ErrorCode = "VALIDATION-001"
	ErrCodePasswordRequired     ErrorCode = "VALIDATION-002"
	ErrCodeEmailRequired        ErrorCode = "VALIDATION-003"
	ErrCodeOrgRequired          ErrorCode = "VALIDATION-004"
	ErrCodeMemberRequired       ErrorCode = "VALIDATION-005"
	ErrCodeConfirmationUnknown  ErrorCode = "VALIDATION-006"
	ErrCodeConfirmationConsumed ErrorCode = "VALIDATION-007"
	ErrCodeSoleAdminGuard       ErrorCode = "VALIDATION-008"
	ErrCodeOperationInFlight    ErrorCode = "VALIDATION-009"

	// Remote errors (REMOTE-001 to REMOTE-099)
	// The service processed the request and reported failure.
	ErrCodeBadCredentials  ErrorCode = "REMOTE-001"
	ErrCodeRemoteRejected  ErrorCode = "REMOTE-002"
	ErrCodeRemoteNotFound  ErrorCode = "REMOTE-003"
	ErrCodeRemoteDuplicate ErrorCode = "REMOTE-004"
	ErrCodeUnauthorized    ErrorCode = "REMOTE-005"

	// Transport errors (TRANSPORT-001 to TRANSPORT-099)
	// The request never completed; distinguishable for retry logic.
	ErrCodeRequestFailed   ErrorCode = "TRANSPORT-001"
	ErrCodeRequestTimeout  ErrorCode = "TRANSPORT-002"
	ErrCodeBadResponseBody ErrorCode = "TRANSPORT-003"

	// Session errors (SESSION-001 to SESSION-099)
	ErrCodeNoActiveSession ErrorCode = "SESSION-001"
	ErrCodeStaleCallback   ErrorCode = "SESSION-002"

	// Scope errors (SCOPE-001 to SCOPE-099)
	// Resolved internally by falling back to the global scope; never
	// surfaced to the user.
	ErrCodeStaleSelection ErrorCode = "SCOPE-001"

	// Local state errors (IO-001 to IO-099)
	ErrCodeStateReadFailed  ErrorCode = "IO-001"
	ErrCodeStateWriteFailed ErrorCode = "IO-002"
	ErrCodeStateMalformed   ErrorCode = "IO-003"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
	ErrCodeConfigRead    ErrorCode = "CONFIG-002"
)

// FleetyError represents an enhanced error with code, suggestions, and documentation
type FleetyError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *FleetyError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *FleetyError) Unwrap() error {
	return e.Cause
}

// New creates a new FleetyError
func New(code ErrorCode, message string) *FleetyError {
	return &FleetyError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new FleetyError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *FleetyError {
	return &FleetyError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *FleetyError) WithSuggestion(suggestion string) *FleetyError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *FleetyError) WithSuggestions(suggestions ...string) *FleetyError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *FleetyError) WithDocs(url string) *FleetyError {
	e.DocsURL = url
	return e
}

// Category predicates
//
// Callers branch on the error category, not on individual codes: validation
// failures are caller bugs or bad input, remote failures carry a
// service-provided message, transport failures are candidates for retry.

func hasPrefix(err error, prefix string) bool {
	var fe *FleetyError
	if !errors.As(err, &fe) {
		return false
	}
	return strings.HasPrefix(string(fe.Code), prefix)
}

// IsValidation reports whether err was rejected locally before any remote call
func IsValidation(err error) bool {
	return hasPrefix(err, "VALIDATION-")
}

// IsRemote reports whether the remote service processed and rejected the request
func IsRemote(err error) bool {
	return hasPrefix(err, "REMOTE-")
}

// IsTransport reports whether the remote call could not complete
func IsTransport(err error) bool {
	return hasPrefix(err, "TRANSPORT-")
}

// Code extracts the ErrorCode from err, or "" if err is not a FleetyError
func Code(err error) ErrorCode {
	var fe *FleetyError
	if !errors.As(err, &fe) {
		return ""
	}
	return fe.Code
}

// Common error constructors for frequently used errors

// NewUsernameRequiredError creates an empty-username validation error
func NewUsernameRequiredError() *FleetyError {
	return New(ErrCodeUsernameRequired, "username cannot be empty").
		WithSuggestion("Provide a non-empty username")
}

// NewOrgRequiredError creates an empty-organisation validation error
func NewOrgRequiredError() *FleetyError {
	return New(ErrCodeOrgRequired, "organisation id cannot be empty").
		WithSuggestion("Select an organisation first").
		WithSuggestion("Run 'fleetyctl org list' to see your organisations")
}

// NewBadCredentialsError creates a failed-authentication error
func NewBadCredentialsError(cause error) *FleetyError {
	return Wrap(ErrCodeBadCredentials, "authentication failed", cause).
		WithSuggestion("Check your username and password").
		WithSuggestion("Run 'fleetyctl auth register' to create an account")
}

// NewNoActiveSessionError creates a not-logged-in error
func NewNoActiveSessionError() *FleetyError {
	return New(ErrCodeNoActiveSession, "not logged in").
		WithSuggestion("Run 'fleetyctl auth login' to authenticate")
}

// NewStateMalformedError creates a malformed stored-state error
func NewStateMalformedError(path string, cause error) *FleetyError {
	return Wrap(ErrCodeStateMalformed, fmt.Sprintf("stored state is malformed: %s", path), cause).
		WithSuggestion("Run 'fleetyctl auth logout' to clear local state").
		WithSuggestion("Login again to recreate it")
}

// NewConfirmationUnknownError creates an unknown removal-confirmation error
func NewConfirmationUnknownError(token string) *FleetyError {
	return New(ErrCodeConfirmationUnknown, fmt.Sprintf("unknown removal confirmation: %s", token)).
		WithSuggestion("Request the removal again before confirming it")
}

// NewSoleAdminGuardError creates a last-admin protection error
func NewSoleAdminGuardError(username string) *FleetyError {
	return New(ErrCodeSoleAdminGuard, fmt.Sprintf("%s is the only admin of this organisation", username)).
		WithSuggestion("Promote another member to admin first")
}
