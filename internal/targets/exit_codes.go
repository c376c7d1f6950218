package targets

import (
	"context"
	"errors"
	"io/fs"
	"os/exec"
)

// Process exit codes reported for runner outcomes that are not a step's own status.
const (
	ExitCodeSuccess              = 0
	ExitCodeInternalError        = 1
	ExitCodeConfigurationError   = 2
	ExitCodeCommandNotExecutable = 126
	ExitCodeCommandNotFound      = 127
	ExitCodeInterrupted          = 130
)

// ExitCode maps a runner error to the process exit status. A failing step
// propagates its own exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	if errors.Is(err, context.Canceled) {
		return ExitCodeInterrupted
	}
	if IsConfigurationError(err) {
		return ExitCodeConfigurationError
	}

	var startError StepStartError
	if errors.As(err, &startError) {
		if errors.Is(startError.Cause, exec.ErrNotFound) || errors.Is(startError.Cause, fs.ErrNotExist) {
			return ExitCodeCommandNotFound
		}
		return ExitCodeCommandNotExecutable
	}

	var failedError StepFailedError
	if errors.As(err, &failedError) && failedError.ExitCode != 0 {
		return failedError.ExitCode
	}

	return ExitCodeInternalError
}
