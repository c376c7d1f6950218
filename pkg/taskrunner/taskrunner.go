package taskrunner

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tyemirov/taskline/internal/targets"
)

// Executor runs one requested target and everything it depends on.
type Executor interface {
	Run(ctx context.Context, targetName string, options targets.RunnerOptions) (targets.ExecutionResult, error)
}

// Factory constructs an Executor given runner dependencies.
type Factory func(Dependencies) Executor

// Resolve returns either the provided factory result or the default target
// runner, wrapped so that every run ends with a summary line.
func Resolve(factory Factory, dependencies Dependencies) (Executor, error) {
	var base Executor
	if factory != nil {
		base = factory(dependencies)
	}
	if base == nil {
		runner, runnerError := targets.NewRunner(dependencies.Logger, dependencies.Registry, dependencies.StepExecutor, dependencies.HumanReadableLogging)
		if runnerError != nil {
			return nil, fmt.Errorf("taskrunner.resolve: %w", runnerError)
		}
		base = runner
	}
	return summaryExecutor{
		delegate:     base,
		dependencies: dependencies,
	}, nil
}

type summaryExecutor struct {
	delegate     Executor
	dependencies Dependencies
}

func (executor summaryExecutor) Run(ctx context.Context, targetName string, options targets.RunnerOptions) (targets.ExecutionResult, error) {
	result, err := executor.delegate.Run(ctx, targetName, options)
	executor.printSummary(result)
	return result, err
}

func (executor summaryExecutor) printSummary(result targets.ExecutionResult) {
	if executor.dependencies.DisableSummary {
		return
	}
	writer := executor.summaryWriter()
	if writer == nil {
		return
	}

	summary := RenderSummaryLine(result)
	if len(strings.TrimSpace(summary)) == 0 {
		return
	}
	fmt.Fprintln(writer, summary)
}

func (executor summaryExecutor) summaryWriter() io.Writer {
	if executor.dependencies.Errors != nil {
		return executor.dependencies.Errors
	}
	if executor.dependencies.Output != nil {
		return executor.dependencies.Output
	}
	return nil
}
