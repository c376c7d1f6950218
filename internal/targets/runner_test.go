package targets_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tyemirov/taskline/internal/execshell"
	"github.com/tyemirov/taskline/internal/targets"
)

const (
	testWorkingDirectoryConstant = "/tmp/project"
	manifestFileNameConstant     = "pyproject.toml"
	lockFileNameConstant         = "poetry.lock"
	manifestContentsConstant     = "[tool.poetry]\nname = \"sample\"\nversion = \"0.1.0\"\n"
	lockScriptConstant           = "[ poetry.lock -nt pyproject.toml ] || cp pyproject.toml poetry.lock"
)

func TestNewRunnerValidatesDependencies(testInstance *testing.T) {
	registry := targets.NewRegistry()

	_, registryError := targets.NewRunner(zap.NewNop(), nil, newScriptedStepExecutor(), false)
	require.ErrorIs(testInstance, registryError, targets.ErrRegistryNotConfigured)

	_, executorError := targets.NewRunner(zap.NewNop(), registry, nil, false)
	require.ErrorIs(testInstance, executorError, targets.ErrStepExecutorNotConfigured)

	runner, runnerError := targets.NewRunner(nil, registry, newScriptedStepExecutor(), false)
	require.NoError(testInstance, runnerError)
	require.NotNil(testInstance, runner)
}

func TestRunnerExecutesTargets(testInstance *testing.T) {
	testCases := []struct {
		name              string
		requested         string
		exitCodes         map[string]int
		expectedCommands  []string
		expectedCompleted []string
		expectedExitCode  int
		expectError       bool
	}{
		{
			name:              "local_pipeline_succeeds",
			requested:         localTargetNameConstant,
			expectedCommands:  []string{lockCommandLineConstant, formatCommandLineConstant, autoFixCommandLineConstant, lintCommandLineConstant},
			expectedCompleted: []string{lockTargetNameConstant, formatTargetNameConstant, lintTargetNameConstant, localTargetNameConstant},
			expectedExitCode:  targets.ExitCodeSuccess,
		},
		{
			name:              "blank_name_runs_default",
			requested:         "  ",
			expectedCommands:  []string{lockCommandLineConstant, formatCommandLineConstant, autoFixCommandLineConstant, lintCommandLineConstant},
			expectedCompleted: []string{lockTargetNameConstant, formatTargetNameConstant, lintTargetNameConstant, localTargetNameConstant},
			expectedExitCode:  targets.ExitCodeSuccess,
		},
		{
			name:              "auto_fix_failure_stops_pipeline",
			requested:         localTargetNameConstant,
			exitCodes:         map[string]int{autoFixCommandLineConstant: 1},
			expectedCommands:  []string{lockCommandLineConstant, formatCommandLineConstant, autoFixCommandLineConstant},
			expectedCompleted: []string{lockTargetNameConstant},
			expectedExitCode:  1,
			expectError:       true,
		},
		{
			name:              "lint_exit_code_propagates",
			requested:         lintTargetNameConstant,
			exitCodes:         map[string]int{lintCommandLineConstant: 4},
			expectedCommands:  []string{lintCommandLineConstant},
			expectedCompleted: []string{},
			expectedExitCode:  4,
			expectError:       true,
		},
		{
			name:              "unknown_target_spawns_nothing",
			requested:         "release",
			expectedCompleted: []string{},
			expectedExitCode:  targets.ExitCodeConfigurationError,
			expectError:       true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			stepExecutor := newScriptedStepExecutor()
			for commandLine, exitCode := range testCase.exitCodes {
				stepExecutor.exitCodes[commandLine] = exitCode
			}

			runner, runnerError := targets.NewRunner(zap.NewNop(), buildLocalRegistry(testInstance), stepExecutor, false)
			require.NoError(testInstance, runnerError)

			result, runError := runner.Run(context.Background(), testCase.requested, targets.RunnerOptions{})
			if testCase.expectError {
				require.Error(testInstance, runError)
			} else {
				require.NoError(testInstance, runError)
				require.True(testInstance, result.Succeeded())
			}

			require.Equal(testInstance, testCase.expectedCommands, stepExecutor.executedCommands)
			require.Equal(testInstance, testCase.expectedCompleted, result.ExecutedTargetNames())
			require.Equal(testInstance, testCase.expectedExitCode, result.ExitCode)
			require.Equal(testInstance, testCase.expectedExitCode, targets.ExitCode(runError))
			require.Equal(testInstance, len(testCase.expectedCommands), result.StartedStepCount())
		})
	}
}

func TestRunnerReportsFailingStep(testInstance *testing.T) {
	stepExecutor := newScriptedStepExecutor()
	stepExecutor.exitCodes[autoFixCommandLineConstant] = 1

	runner, runnerError := targets.NewRunner(zap.NewNop(), buildLocalRegistry(testInstance), stepExecutor, false)
	require.NoError(testInstance, runnerError)

	result, runError := runner.Run(context.Background(), localTargetNameConstant, targets.RunnerOptions{})

	var failedError targets.StepFailedError
	require.ErrorAs(testInstance, runError, &failedError)
	require.Equal(testInstance, formatTargetNameConstant, failedError.TargetName)
	require.Equal(testInstance, autoFixCommandLineConstant, failedError.Step.String())
	require.Equal(testInstance, 1, failedError.ExitCode)
	require.EqualError(testInstance, runError, "target code-format: ruff check --fix . exited with code 1")

	require.Equal(testInstance, []string{lockTargetNameConstant, formatTargetNameConstant, lintTargetNameConstant, localTargetNameConstant}, result.Plan)
	require.Len(testInstance, result.Targets, 2)
	require.False(testInstance, result.Targets[1].Completed)
	require.Len(testInstance, result.Targets[1].Steps, 2)
	require.Equal(testInstance, 1, result.Targets[1].Steps[1].ExitCode)
	require.False(testInstance, result.Succeeded())
}

func TestRunnerRepeatedRunsReportSameExitCode(testInstance *testing.T) {
	stepExecutor := newScriptedStepExecutor()
	stepExecutor.exitCodes[lintCommandLineConstant] = 1

	runner, runnerError := targets.NewRunner(zap.NewNop(), buildLocalRegistry(testInstance), stepExecutor, false)
	require.NoError(testInstance, runnerError)

	firstResult, firstError := runner.Run(context.Background(), lintTargetNameConstant, targets.RunnerOptions{})
	secondResult, secondError := runner.Run(context.Background(), lintTargetNameConstant, targets.RunnerOptions{})

	require.Error(testInstance, firstError)
	require.Error(testInstance, secondError)
	require.Equal(testInstance, firstResult.ExitCode, secondResult.ExitCode)
	require.Equal(testInstance, []string{lintCommandLineConstant, lintCommandLineConstant}, stepExecutor.executedCommands)
}

func TestRunnerStartFailureMapsToCommandNotFound(testInstance *testing.T) {
	testCases := []struct {
		name             string
		startError       error
		expectedExitCode int
	}{
		{name: "not_found", startError: exec.ErrNotFound, expectedExitCode: targets.ExitCodeCommandNotFound},
		{name: "missing_file", startError: os.ErrNotExist, expectedExitCode: targets.ExitCodeCommandNotFound},
		{name: "not_executable", startError: errors.New(testRunnerFailureMessageConstant), expectedExitCode: targets.ExitCodeCommandNotExecutable},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			stepExecutor := newScriptedStepExecutor()
			stepExecutor.startErrors[lockCommandLineConstant] = testCase.startError

			runner, runnerError := targets.NewRunner(zap.NewNop(), buildLocalRegistry(testInstance), stepExecutor, false)
			require.NoError(testInstance, runnerError)

			result, runError := runner.Run(context.Background(), localTargetNameConstant, targets.RunnerOptions{})

			var startError targets.StepStartError
			require.ErrorAs(testInstance, runError, &startError)
			require.Equal(testInstance, lockTargetNameConstant, startError.TargetName)
			require.Contains(testInstance, runError.Error(), testCase.startError.Error())
			require.Equal(testInstance, testCase.expectedExitCode, result.ExitCode)
			require.Empty(testInstance, stepExecutor.executedCommands)
			require.Zero(testInstance, result.StartedStepCount())
		})
	}
}

func TestRunnerDryRunSpawnsNothing(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zapcore.InfoLevel)
	stepExecutor := newScriptedStepExecutor()

	runner, runnerError := targets.NewRunner(zap.New(observerCore), buildLocalRegistry(testInstance), stepExecutor, true)
	require.NoError(testInstance, runnerError)

	result, runError := runner.Run(context.Background(), localTargetNameConstant, targets.RunnerOptions{DryRun: true})
	require.NoError(testInstance, runError)
	require.Empty(testInstance, stepExecutor.executedCommands)
	require.True(testInstance, result.DryRun)
	require.Zero(testInstance, result.StartedStepCount())
	require.Len(testInstance, result.Targets, 4)

	messages := make([]string, 0, observedLogs.Len())
	for _, entry := range observedLogs.All() {
		messages = append(messages, entry.Message)
	}
	require.Contains(testInstance, messages, "Would run "+lockCommandLineConstant)
	require.Contains(testInstance, messages, "Would run "+autoFixCommandLineConstant)
	require.Contains(testInstance, messages, "Target local (4/4)")
}

func TestRunnerInterruptedContext(testInstance *testing.T) {
	stepExecutor := newScriptedStepExecutor()
	runner, runnerError := targets.NewRunner(zap.NewNop(), buildLocalRegistry(testInstance), stepExecutor, false)
	require.NoError(testInstance, runnerError)

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	result, runError := runner.Run(cancelledContext, localTargetNameConstant, targets.RunnerOptions{})
	require.ErrorIs(testInstance, runError, context.Canceled)
	require.Equal(testInstance, targets.ExitCodeInterrupted, result.ExitCode)
	require.Empty(testInstance, stepExecutor.executedCommands)
}

func TestRunnerPassesWorkingDirectory(testInstance *testing.T) {
	stepExecutor := newScriptedStepExecutor()
	runner, runnerError := targets.NewRunner(zap.NewNop(), buildLocalRegistry(testInstance), stepExecutor, false)
	require.NoError(testInstance, runnerError)

	_, runError := runner.Run(context.Background(), formatTargetNameConstant, targets.RunnerOptions{WorkingDirectory: testWorkingDirectoryConstant})
	require.NoError(testInstance, runError)
	require.Len(testInstance, stepExecutor.executedDetails, 2)
	for _, details := range stepExecutor.executedDetails {
		require.Equal(testInstance, testWorkingDirectoryConstant, details.WorkingDirectory)
	}
	require.Equal(testInstance, []string{"check", "--fix", "."}, stepExecutor.executedDetails[1].Arguments)
}

func TestRunnerStructuredLogging(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	runner, runnerError := targets.NewRunner(zap.New(observerCore), buildLocalRegistry(testInstance), newScriptedStepExecutor(), false)
	require.NoError(testInstance, runnerError)

	result, runError := runner.Run(context.Background(), formatTargetNameConstant, targets.RunnerOptions{})
	require.NoError(testInstance, runError)
	require.Len(testInstance, result.RunID, 26)

	planEntries := observedLogs.FilterMessage("target plan resolved").All()
	require.Len(testInstance, planEntries, 1)
	require.Equal(testInstance, zapcore.DebugLevel, planEntries[0].Level)
	require.Equal(testInstance, result.RunID, planEntries[0].ContextMap()["run_id"])

	completedEntries := observedLogs.FilterMessage("target completed").All()
	require.Len(testInstance, completedEntries, 1)
	require.Equal(testInstance, formatTargetNameConstant, completedEntries[0].ContextMap()["target"])
	require.Equal(testInstance, result.RunID, completedEntries[0].ContextMap()["run_id"])

	secondResult, secondRunError := runner.Run(context.Background(), formatTargetNameConstant, targets.RunnerOptions{})
	require.NoError(testInstance, secondRunError)
	require.NotEqual(testInstance, result.RunID, secondResult.RunID)
}

func TestRunnerLockTargetIsIdempotent(testInstance *testing.T) {
	if runtime.GOOS == "windows" {
		testInstance.Skip("requires a POSIX shell")
	}
	if _, lookupError := exec.LookPath("sh"); lookupError != nil {
		testInstance.Skip("sh not available")
	}

	projectDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(projectDirectory, manifestFileNameConstant), []byte(manifestContentsConstant), 0o644))

	registry := targets.NewRegistry()
	require.NoError(testInstance, registry.Register(targets.Target{
		Name:  lockTargetNameConstant,
		Steps: []targets.Step{targets.NewStep("sh", "-c", lockScriptConstant)},
	}))

	shellExecutor, executorError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner(nil, &bytes.Buffer{}, &bytes.Buffer{}), false)
	require.NoError(testInstance, executorError)

	runner, runnerError := targets.NewRunner(zap.NewNop(), registry, shellExecutor, false)
	require.NoError(testInstance, runnerError)

	options := targets.RunnerOptions{WorkingDirectory: projectDirectory}
	lockPath := filepath.Join(projectDirectory, lockFileNameConstant)

	_, firstError := runner.Run(context.Background(), lockTargetNameConstant, options)
	require.NoError(testInstance, firstError)
	firstContents, readError := os.ReadFile(lockPath)
	require.NoError(testInstance, readError)

	_, secondError := runner.Run(context.Background(), lockTargetNameConstant, options)
	require.NoError(testInstance, secondError)
	secondContents, readError := os.ReadFile(lockPath)
	require.NoError(testInstance, readError)

	require.Equal(testInstance, firstContents, secondContents)
	require.Equal(testInstance, manifestContentsConstant, string(secondContents))
}
