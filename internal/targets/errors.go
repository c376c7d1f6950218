package targets

import (
	"errors"
	"fmt"
	"strings"
)

const (
	targetNameMissingMessageConstant         = "target name not provided"
	stepExecutorNotConfiguredMessageConstant = "target runner step executor not configured"
	duplicateTargetTemplateConstant          = "target %q declared multiple times"
	unknownTargetTemplateConstant            = "unknown target %q"
	unknownPrerequisiteTemplateConstant      = "target %q depends on unknown target %q"
	cyclicDependencyTemplateConstant         = "targets contain dependency cycle: %s"
	cyclePathSeparatorConstant               = " -> "
	stepFailedTemplateConstant               = "target %s: %s exited with code %d"
	stepStartFailedTemplateConstant          = "target %s: unable to start %s"
)

var (
	// ErrTargetNameMissing indicates a target was registered without a name.
	ErrTargetNameMissing = errors.New(targetNameMissingMessageConstant)
	// ErrStepExecutorNotConfigured indicates the runner was built without a step executor.
	ErrStepExecutorNotConfigured = errors.New(stepExecutorNotConfiguredMessageConstant)
)

// DuplicateTargetError reports a second registration under an existing name.
type DuplicateTargetError struct {
	TargetName string
}

// Error implements the error interface.
func (duplicateError DuplicateTargetError) Error() string {
	return fmt.Sprintf(duplicateTargetTemplateConstant, duplicateError.TargetName)
}

// UnknownTargetError reports a reference to an unregistered target. ReferencedBy
// is empty when the name was requested directly.
type UnknownTargetError struct {
	TargetName   string
	ReferencedBy string
}

// Error implements the error interface.
func (unknownError UnknownTargetError) Error() string {
	if len(unknownError.ReferencedBy) > 0 {
		return fmt.Sprintf(unknownPrerequisiteTemplateConstant, unknownError.ReferencedBy, unknownError.TargetName)
	}
	return fmt.Sprintf(unknownTargetTemplateConstant, unknownError.TargetName)
}

// CyclicDependencyError reports a prerequisite cycle. Path starts and ends with the same target.
type CyclicDependencyError struct {
	Path []string
}

// Error implements the error interface.
func (cycleError CyclicDependencyError) Error() string {
	return fmt.Sprintf(cyclicDependencyTemplateConstant, strings.Join(cycleError.Path, cyclePathSeparatorConstant))
}

// StepFailedError reports a step whose command ran and exited with a non-zero code.
type StepFailedError struct {
	TargetName string
	Step       Step
	ExitCode   int
	Cause      error
}

// Error implements the error interface.
func (failedError StepFailedError) Error() string {
	return fmt.Sprintf(stepFailedTemplateConstant, failedError.TargetName, failedError.Step, failedError.ExitCode)
}

// Unwrap exposes the executor error.
func (failedError StepFailedError) Unwrap() error {
	return failedError.Cause
}

// StepStartError reports a step whose command could not be started at all.
type StepStartError struct {
	TargetName string
	Step       Step
	Cause      error
}

// Error implements the error interface.
func (startError StepStartError) Error() string {
	baseMessage := fmt.Sprintf(stepStartFailedTemplateConstant, startError.TargetName, startError.Step)
	if startError.Cause == nil {
		return baseMessage
	}
	detail := errors.Unwrap(startError.Cause)
	if detail == nil {
		detail = startError.Cause
	}
	return fmt.Sprintf("%s: %v", baseMessage, detail)
}

// Unwrap exposes the executor error.
func (startError StepStartError) Unwrap() error {
	return startError.Cause
}

// IsConfigurationError reports whether the error stems from the target declaration
// rather than from executing a step.
func IsConfigurationError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTargetNameMissing) {
		return true
	}
	var duplicateError DuplicateTargetError
	if errors.As(err, &duplicateError) {
		return true
	}
	var unknownError UnknownTargetError
	if errors.As(err, &unknownError) {
		return true
	}
	var cycleError CyclicDependencyError
	return errors.As(err, &cycleError)
}
