package targets

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/tyemirov/taskline/internal/execshell"
)

const (
	registryNotConfiguredMessageConstant = "target runner registry not configured"
	runPlannedMessageConstant            = "target plan resolved"
	targetStartMessageConstant           = "target starting"
	targetCompletedMessageConstant       = "target completed"
	targetFailedMessageConstant          = "target failed"
	stepSkippedMessageConstant           = "dry run skipped step"
	targetFieldNameConstant              = "target"
	planFieldNameConstant                = "plan"
	positionFieldNameConstant            = "position"
	totalFieldNameConstant               = "total"
	stepFieldNameConstant                = "step"
	durationFieldNameConstant            = "duration"
	runIDFieldNameConstant               = "run_id"
	humanPlanTemplateConstant            = "Plan for %s: %s"
	humanTargetStartTemplateConstant     = "Target %s (%d/%d)"
	humanTargetCompletedTemplateConstant = "Finished %s in %s"
	humanTargetFailedTemplateConstant    = "Target %s failed"
	humanStepSkippedTemplateConstant     = "Would run %s"
	humanPlanSeparatorConstant           = ", "
	interruptedTemplateConstant          = "target %s interrupted: %w"
)

// ErrRegistryNotConfigured indicates the runner was built without a registry.
var ErrRegistryNotConfigured = errors.New(registryNotConfiguredMessageConstant)

// StepExecutor runs one external command; *execshell.ShellExecutor satisfies it.
type StepExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// RunnerOptions adjusts a single run.
type RunnerOptions struct {
	WorkingDirectory string
	DryRun           bool
}

// Runner executes resolved targets sequentially, stopping at the first failing step.
type Runner struct {
	registry             *Registry
	stepExecutor         StepExecutor
	logger               *zap.Logger
	humanReadableLogging bool
}

// NewRunner builds a runner over an immutable registry.
func NewRunner(logger *zap.Logger, registry *Registry, stepExecutor StepExecutor, humanReadableLogging bool) (*Runner, error) {
	if registry == nil {
		return nil, ErrRegistryNotConfigured
	}
	if stepExecutor == nil {
		return nil, ErrStepExecutorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		registry:             registry,
		stepExecutor:         stepExecutor,
		logger:               logger,
		humanReadableLogging: humanReadableLogging,
	}, nil
}

// Run resolves the named target, or the registry default when the name is blank,
// then executes every planned target's steps in order. Configuration errors are
// returned before any step is spawned.
func (runner *Runner) Run(executionContext context.Context, targetName string, options RunnerOptions) (ExecutionResult, error) {
	startedAt := time.Now()

	requestedTarget := strings.TrimSpace(targetName)
	if len(requestedTarget) == 0 {
		requestedTarget = runner.registry.DefaultTargetName()
	}

	result := ExecutionResult{RunID: newRunID(startedAt), RequestedTarget: requestedTarget, DryRun: options.DryRun}
	if !runner.humanReadableLogging {
		runner = runner.withLogger(runner.logger.With(zap.String(runIDFieldNameConstant, result.RunID)))
	}

	plan, resolveError := runner.registry.Resolve(requestedTarget)
	if resolveError != nil {
		return runner.finish(result, startedAt, resolveError)
	}

	for _, target := range plan {
		result.Plan = append(result.Plan, target.Name)
	}
	runner.logPlan(requestedTarget, result.Plan)

	for targetIndex, target := range plan {
		if contextError := executionContext.Err(); contextError != nil {
			return runner.finish(result, startedAt, fmt.Errorf(interruptedTemplateConstant, target.Name, contextError))
		}

		outcome, targetError := runner.runTarget(executionContext, target, targetIndex, len(plan), options)
		result.Targets = append(result.Targets, outcome)
		if targetError != nil {
			return runner.finish(result, startedAt, targetError)
		}
	}

	return runner.finish(result, startedAt, nil)
}

func (runner *Runner) runTarget(executionContext context.Context, target Target, targetIndex int, targetCount int, options RunnerOptions) (TargetOutcome, error) {
	targetStartedAt := time.Now()
	outcome := TargetOutcome{Name: target.Name, Steps: make([]StepOutcome, 0, len(target.Steps))}

	if runner.humanReadableLogging {
		runner.logger.Info(fmt.Sprintf(humanTargetStartTemplateConstant, target.Name, targetIndex+1, targetCount))
	} else {
		runner.logger.Info(targetStartMessageConstant,
			zap.String(targetFieldNameConstant, target.Name),
			zap.Int(positionFieldNameConstant, targetIndex+1),
			zap.Int(totalFieldNameConstant, targetCount),
		)
	}

	for _, step := range target.Steps {
		if options.DryRun {
			runner.logSkippedStep(target.Name, step)
			outcome.Steps = append(outcome.Steps, StepOutcome{Step: step})
			continue
		}

		stepOutcome, stepError := runner.runStep(executionContext, target.Name, step, options)
		outcome.Steps = append(outcome.Steps, stepOutcome)
		if stepError != nil {
			outcome.Duration = time.Since(targetStartedAt)
			runner.logTargetFailure(target.Name, stepError)
			return outcome, stepError
		}
	}

	outcome.Completed = true
	outcome.Duration = time.Since(targetStartedAt)
	if runner.humanReadableLogging {
		runner.logger.Info(fmt.Sprintf(humanTargetCompletedTemplateConstant, target.Name, outcome.Duration.Round(time.Millisecond)))
	} else {
		runner.logger.Info(targetCompletedMessageConstant,
			zap.String(targetFieldNameConstant, target.Name),
			zap.Duration(durationFieldNameConstant, outcome.Duration),
		)
	}
	return outcome, nil
}

func (runner *Runner) runStep(executionContext context.Context, targetName string, step Step, options RunnerOptions) (StepOutcome, error) {
	command := execshell.ShellCommand{
		Name: execshell.CommandName(step.Command),
		Details: execshell.CommandDetails{
			Arguments:        append([]string(nil), step.Arguments...),
			WorkingDirectory: options.WorkingDirectory,
		},
	}

	executionResult, executionError := runner.stepExecutor.Execute(executionContext, command)
	stepOutcome := StepOutcome{Step: step, ExitCode: executionResult.ExitCode, Duration: executionResult.Duration}
	if executionError == nil {
		stepOutcome.Started = true
		return stepOutcome, nil
	}

	if contextError := executionContext.Err(); contextError != nil {
		stepOutcome.Started = true
		return stepOutcome, fmt.Errorf(interruptedTemplateConstant, targetName, contextError)
	}

	var failedError execshell.CommandFailedError
	if errors.As(executionError, &failedError) {
		stepOutcome.Started = true
		stepOutcome.ExitCode = failedError.Result.ExitCode
		return stepOutcome, StepFailedError{
			TargetName: targetName,
			Step:       step,
			ExitCode:   failedError.Result.ExitCode,
			Cause:      executionError,
		}
	}

	return stepOutcome, StepStartError{TargetName: targetName, Step: step, Cause: executionError}
}

func (runner *Runner) finish(result ExecutionResult, startedAt time.Time, runError error) (ExecutionResult, error) {
	result.Duration = time.Since(startedAt)
	result.ExitCode = ExitCode(runError)
	return result, runError
}

func (runner *Runner) logPlan(requestedTarget string, plan []string) {
	if runner.humanReadableLogging {
		runner.logger.Debug(fmt.Sprintf(humanPlanTemplateConstant, requestedTarget, strings.Join(plan, humanPlanSeparatorConstant)))
		return
	}
	runner.logger.Debug(runPlannedMessageConstant,
		zap.String(targetFieldNameConstant, requestedTarget),
		zap.Strings(planFieldNameConstant, plan),
	)
}

func (runner *Runner) logSkippedStep(targetName string, step Step) {
	if runner.humanReadableLogging {
		runner.logger.Info(fmt.Sprintf(humanStepSkippedTemplateConstant, step))
		return
	}
	runner.logger.Info(stepSkippedMessageConstant,
		zap.String(targetFieldNameConstant, targetName),
		zap.String(stepFieldNameConstant, step.String()),
	)
}

func (runner *Runner) logTargetFailure(targetName string, failure error) {
	if runner.humanReadableLogging {
		runner.logger.Error(fmt.Sprintf(humanTargetFailedTemplateConstant, targetName))
		return
	}
	runner.logger.Error(targetFailedMessageConstant,
		zap.String(targetFieldNameConstant, targetName),
		zap.Error(failure),
	)
}

func (runner *Runner) withLogger(logger *zap.Logger) *Runner {
	scoped := *runner
	scoped.logger = logger
	return &scoped
}

// newRunID returns a lexically time-ordered identifier attached to every log entry of one run.
func newRunID(startedAt time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(startedAt.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(startedAt), entropy).String()
}
