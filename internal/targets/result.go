package targets

import (
	"time"
)

// StepOutcome records one step of a target. Started is false for steps reported
// by a dry run and for steps that could not be spawned.
type StepOutcome struct {
	Step     Step
	Started  bool
	ExitCode int
	Duration time.Duration
}

// TargetOutcome records the steps a target ran. Completed is true only when every
// step of the target succeeded.
type TargetOutcome struct {
	Name      string
	Steps     []StepOutcome
	Completed bool
	Duration  time.Duration
}

// ExecutionResult captures which targets ran, in what order, and how each step exited.
type ExecutionResult struct {
	RunID           string
	RequestedTarget string
	Plan            []string
	Targets         []TargetOutcome
	ExitCode        int
	Duration        time.Duration
	DryRun          bool
}

// Succeeded reports whether every planned target completed.
func (result ExecutionResult) Succeeded() bool {
	return result.ExitCode == ExitCodeSuccess && len(result.ExecutedTargetNames()) == len(result.Plan)
}

// ExecutedTargetNames lists completed targets in execution order.
func (result ExecutionResult) ExecutedTargetNames() []string {
	names := make([]string, 0, len(result.Targets))
	for _, outcome := range result.Targets {
		if outcome.Completed {
			names = append(names, outcome.Name)
		}
	}
	return names
}

// StartedStepCount counts steps whose process was spawned.
func (result ExecutionResult) StartedStepCount() int {
	count := 0
	for _, outcome := range result.Targets {
		for _, stepOutcome := range outcome.Steps {
			if stepOutcome.Started {
				count++
			}
		}
	}
	return count
}
