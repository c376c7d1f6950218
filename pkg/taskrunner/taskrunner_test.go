package taskrunner

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/taskline/internal/targets"
)

type fakeExecutor struct {
	result targets.ExecutionResult
	err    error
	calls  []string
}

func (executor *fakeExecutor) Run(_ context.Context, targetName string, _ targets.RunnerOptions) (targets.ExecutionResult, error) {
	executor.calls = append(executor.calls, targetName)
	return executor.result, executor.err
}

func completedResult() targets.ExecutionResult {
	return targets.ExecutionResult{
		RequestedTarget: "code-format",
		Plan:            []string{"code-format"},
		Targets: []targets.TargetOutcome{
			{
				Name:      "code-format",
				Completed: true,
				Steps: []targets.StepOutcome{
					{Step: targets.NewStep("ruff", "format", "."), Started: true},
					{Step: targets.NewStep("ruff", "check", "--fix", "."), Started: true},
				},
			},
		},
		Duration: 1500 * time.Millisecond,
	}
}

func TestRenderSummaryLineFormatsCounts(testInstance *testing.T) {
	summary := RenderSummaryLine(completedResult())
	require.Equal(testInstance, "Summary: targets=1 steps=2 exit_code=0 duration_human=1.5s duration_ms=1500", summary)
}

func TestRenderSummaryLineMarksDryRun(testInstance *testing.T) {
	result := completedResult()
	result.DryRun = true
	for index := range result.Targets[0].Steps {
		result.Targets[0].Steps[index].Started = false
	}
	result.Duration = 0

	summary := RenderSummaryLine(result)
	require.Equal(testInstance, "Summary: targets=1 steps=0 exit_code=0 dry_run=true duration_human=0s duration_ms=0", summary)
}

func TestRenderSummaryLineReportsFailure(testInstance *testing.T) {
	result := completedResult()
	result.Targets[0].Completed = false
	result.ExitCode = 1

	summary := RenderSummaryLine(result)
	require.Contains(testInstance, summary, "targets=0")
	require.Contains(testInstance, summary, "exit_code=1")
}

func TestSummaryExecutorPrintsSummaryAndPropagatesError(testInstance *testing.T) {
	buffer := &bytes.Buffer{}
	runError := errors.New("lint failed")
	delegate := &fakeExecutor{result: completedResult(), err: runError}
	executor := summaryExecutor{
		delegate:     delegate,
		dependencies: Dependencies{Errors: buffer, Output: &bytes.Buffer{}},
	}

	result, err := executor.Run(context.Background(), "code-format", targets.RunnerOptions{})
	require.ErrorIs(testInstance, err, runError)
	require.Equal(testInstance, "code-format", result.RequestedTarget)
	require.Equal(testInstance, []string{"code-format"}, delegate.calls)
	require.Contains(testInstance, buffer.String(), "Summary: targets=1 steps=2")
}

func TestSummaryExecutorHonorsDisableSummary(testInstance *testing.T) {
	buffer := &bytes.Buffer{}
	executor := summaryExecutor{
		delegate:     &fakeExecutor{result: completedResult()},
		dependencies: Dependencies{Errors: buffer, DisableSummary: true},
	}

	_, err := executor.Run(context.Background(), "code-format", targets.RunnerOptions{})
	require.NoError(testInstance, err)
	require.Empty(testInstance, buffer.String())
}

func TestResolveUsesFactoryWhenProvided(testInstance *testing.T) {
	delegate := &fakeExecutor{result: completedResult()}
	buffer := &bytes.Buffer{}

	executor, resolveError := Resolve(func(Dependencies) Executor { return delegate }, Dependencies{Errors: buffer})
	require.NoError(testInstance, resolveError)

	_, runError := executor.Run(context.Background(), "lint", targets.RunnerOptions{})
	require.NoError(testInstance, runError)
	require.Equal(testInstance, []string{"lint"}, delegate.calls)
	require.NotEmpty(testInstance, buffer.String())
}

func TestResolveRequiresRunnerCollaborators(testInstance *testing.T) {
	_, resolveError := Resolve(nil, Dependencies{})
	require.ErrorIs(testInstance, resolveError, targets.ErrRegistryNotConfigured)
}
