package execshell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"syscall"
	"time"
)

const (
	environmentAssignmentSeparatorConstant = "="
	signalExitCodeBaseConstant             = 128
)

// OSCommandRunner spawns real processes whose standard streams are connected
// directly to the configured readers and writers.
type OSCommandRunner struct {
	standardInput  io.Reader
	standardOutput io.Writer
	standardError  io.Writer
}

// NewOSCommandRunner constructs a runner. Nil streams fall back to the current process streams.
func NewOSCommandRunner(standardInput io.Reader, standardOutput io.Writer, standardError io.Writer) *OSCommandRunner {
	if standardInput == nil {
		standardInput = os.Stdin
	}
	if standardOutput == nil {
		standardOutput = os.Stdout
	}
	if standardError == nil {
		standardError = os.Stderr
	}
	return &OSCommandRunner{
		standardInput:  standardInput,
		standardOutput: standardOutput,
		standardError:  standardError,
	}
}

// Run starts the command and waits for it to exit.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if len(command.Name) == 0 {
		return ExecutionResult{}, ErrCommandNameMissing
	}

	process := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	process.Dir = command.Details.WorkingDirectory
	process.Stdin = runner.standardInput
	process.Stdout = runner.standardOutput
	process.Stderr = runner.standardError
	if len(command.Details.EnvironmentVariables) > 0 {
		process.Env = mergeEnvironment(os.Environ(), command.Details.EnvironmentVariables)
	}

	startedAt := time.Now()
	if startError := process.Start(); startError != nil {
		return ExecutionResult{}, startError
	}

	waitError := process.Wait()
	result := ExecutionResult{Duration: time.Since(startedAt)}
	if waitError == nil {
		return result, nil
	}

	var exitError *exec.ExitError
	if errors.As(waitError, &exitError) {
		result.ExitCode = exitStatusCode(exitError)
		return result, nil
	}

	return ExecutionResult{}, waitError
}

func exitStatusCode(exitError *exec.ExitError) int {
	if waitStatus, ok := exitError.Sys().(syscall.WaitStatus); ok && waitStatus.Signaled() {
		return signalExitCodeBaseConstant + int(waitStatus.Signal())
	}
	return exitError.ExitCode()
}

func mergeEnvironment(baseEnvironment []string, overrides map[string]string) []string {
	values := make(map[string]string, len(baseEnvironment)+len(overrides))
	for _, assignment := range baseEnvironment {
		name, value, found := strings.Cut(assignment, environmentAssignmentSeparatorConstant)
		if !found || len(name) == 0 {
			continue
		}
		values[name] = value
	}
	for name, value := range overrides {
		values[name] = value
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	merged := make([]string, 0, len(names))
	for _, name := range names {
		merged = append(merged, name+environmentAssignmentSeparatorConstant+values[name])
	}
	return merged
}
