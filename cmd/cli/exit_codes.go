package cli

import (
	"errors"

	"github.com/tyemirov/taskline/internal/declaration"
	"github.com/tyemirov/taskline/internal/targets"
)

// UsageError reports a malformed command line.
type UsageError struct {
	Cause error
}

// Error implements the error interface.
func (usageError UsageError) Error() string {
	if usageError.Cause == nil {
		return usageErrorMessageConstant
	}
	return usageError.Cause.Error()
}

// Unwrap exposes the underlying parse error.
func (usageError UsageError) Unwrap() error {
	return usageError.Cause
}

// ApplicationError reports a failure of the runner itself, such as an unreadable
// configuration file or an unusable logger.
type ApplicationError struct {
	Cause error
}

// Error implements the error interface.
func (applicationError ApplicationError) Error() string {
	if applicationError.Cause == nil {
		return applicationErrorMessageConstant
	}
	return applicationError.Cause.Error()
}

// Unwrap exposes the underlying failure.
func (applicationError ApplicationError) Unwrap() error {
	return applicationError.Cause
}

// ExitCode maps an Execute error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return targets.ExitCodeSuccess
	}

	var usageError UsageError
	if errors.As(err, &usageError) {
		return targets.ExitCodeConfigurationError
	}
	if declaration.IsDeclarationError(err) {
		return targets.ExitCodeConfigurationError
	}

	var applicationError ApplicationError
	if errors.As(err, &applicationError) {
		return targets.ExitCodeInternalError
	}

	return targets.ExitCode(err)
}
