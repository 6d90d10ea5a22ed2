// Package exitcode maps errors to process exit codes so scripts can react
// to failure classes without parsing output.
package exitcode

import (
	"os"
	"strings"

	"github.com/fleety/fleetyctl/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid input (bad flags, missing args, local validation)
	UsageError = 2

	// AuthError indicates an authentication or authorization failure
	AuthError = 3

	// NetworkError indicates the platform could not be reached
	NetworkError = 4

	// Interrupted indicates the run was cancelled by the user
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}
	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	switch errors.Code(err) {
	case errors.ErrCodeBadCredentials, errors.ErrCodeUnauthorized, errors.ErrCodeNoActiveSession:
		return AuthError
	}

	if errors.IsValidation(err) {
		return UsageError
	}
	if errors.IsTransport(err) {
		return NetworkError
	}

	// Cobra reports flag and argument problems as plain errors
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unknown command") || strings.Contains(msg, "unknown flag") ||
		strings.Contains(msg, "required flag") || strings.Contains(msg, "accepts") {
		return UsageError
	}

	return GeneralError
}

// Describe returns a human-readable description of an exit code
func Describe(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags, arguments, or input)"
	case AuthError:
		return "Authentication error"
	case NetworkError:
		return "Network error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
