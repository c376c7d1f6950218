package targets_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/taskline/internal/execshell"
	"github.com/tyemirov/taskline/internal/targets"
)

const (
	localTargetNameConstant          = "local"
	lockTargetNameConstant           = "dependencies-lock"
	formatTargetNameConstant         = "code-format"
	lintTargetNameConstant           = "lint"
	lockCommandLineConstant          = "poetry lock --no-update"
	formatCommandLineConstant        = "ruff format ."
	autoFixCommandLineConstant       = "ruff check --fix ."
	lintCommandLineConstant          = "ruff check ."
	testRunnerFailureMessageConstant = "spawn failure"
)

type scriptedStepExecutor struct {
	exitCodes        map[string]int
	startErrors      map[string]error
	executedCommands []string
	executedDetails  []execshell.CommandDetails
}

func newScriptedStepExecutor() *scriptedStepExecutor {
	return &scriptedStepExecutor{
		exitCodes:   map[string]int{},
		startErrors: map[string]error{},
	}
}

func (executor *scriptedStepExecutor) Execute(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	commandLine := command.String()
	if startError, exists := executor.startErrors[commandLine]; exists {
		return execshell.ExecutionResult{}, execshell.CommandExecutionError{Command: command, Cause: startError}
	}
	executor.executedCommands = append(executor.executedCommands, commandLine)
	executor.executedDetails = append(executor.executedDetails, command.Details)

	result := execshell.ExecutionResult{ExitCode: executor.exitCodes[commandLine]}
	if result.ExitCode != 0 {
		return result, execshell.CommandFailedError{Command: command, Result: result}
	}
	return result, nil
}

func buildLocalRegistry(testInstance *testing.T) *targets.Registry {
	testInstance.Helper()
	registry := targets.NewRegistry()
	declarations := []targets.Target{
		{
			Name:          localTargetNameConstant,
			Prerequisites: []string{lockTargetNameConstant, formatTargetNameConstant, lintTargetNameConstant},
		},
		{
			Name:  lockTargetNameConstant,
			Steps: []targets.Step{targets.NewStep("poetry", "lock", "--no-update")},
		},
		{
			Name: formatTargetNameConstant,
			Steps: []targets.Step{
				targets.NewStep("ruff", "format", "."),
				targets.NewStep("ruff", "check", "--fix", "."),
			},
		},
		{
			Name:  lintTargetNameConstant,
			Steps: []targets.Step{targets.NewStep("ruff", "check", ".")},
		},
	}
	for _, declaration := range declarations {
		require.NoError(testInstance, registry.Register(declaration))
	}
	require.NoError(testInstance, registry.SetDefault(localTargetNameConstant))
	return registry
}

func targetNames(plan []targets.Target) []string {
	names := make([]string, 0, len(plan))
	for _, target := range plan {
		names = append(names, target.Name)
	}
	return names
}
