package taskrunner

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/taskline/internal/declaration"
	"github.com/tyemirov/taskline/internal/execshell"
	"github.com/tyemirov/taskline/internal/targets"
)

var (
	errOutputWriterMissing = errors.New("taskrunner output writer not configured")
	errErrorWriterMissing  = errors.New("taskrunner error writer not configured")
)

// RegistryProvider returns the target registry a run resolves against.
type RegistryProvider func() (*targets.Registry, error)

// DependenciesConfig captures providers required to build runner dependencies.
type DependenciesConfig struct {
	LoggerProvider               func() *zap.Logger
	HumanReadableLoggingProvider func() bool
	RegistryProvider             RegistryProvider
	CommandRunner                execshell.CommandRunner
	DisableSummary               bool
}

// DependenciesOptions allows per-command overrides when resolving runner dependencies.
// Output and Errors must resolve to writers, either directly or through Command.
type DependenciesOptions struct {
	Command *cobra.Command
	Input   io.Reader
	Output  io.Writer
	Errors  io.Writer
}

// Dependencies holds the collaborators an Executor needs.
type Dependencies struct {
	Logger               *zap.Logger
	Registry             *targets.Registry
	StepExecutor         targets.StepExecutor
	Output               io.Writer
	Errors               io.Writer
	HumanReadableLogging bool
	DisableSummary       bool
}

// BuildDependencies resolves the registry, the step executor, and the output streams.
func BuildDependencies(config DependenciesConfig, options DependenciesOptions) (Dependencies, error) {
	logger := resolveLogger(config.LoggerProvider)
	humanReadable := false
	if config.HumanReadableLoggingProvider != nil {
		humanReadable = config.HumanReadableLoggingProvider()
	}

	outputWriter := resolveWriter(options.Output, options.Command, true)
	if outputWriter == nil {
		return Dependencies{}, errOutputWriterMissing
	}
	errorWriter := resolveWriter(options.Errors, options.Command, false)
	if errorWriter == nil {
		return Dependencies{}, errErrorWriterMissing
	}

	registryProvider := config.RegistryProvider
	if registryProvider == nil {
		registryProvider = declaration.Default
	}
	registry, registryError := registryProvider()
	if registryError != nil {
		return Dependencies{}, fmt.Errorf("taskrunner.dependencies.registry: %w", registryError)
	}

	commandRunner := config.CommandRunner
	if commandRunner == nil {
		commandRunner = execshell.NewOSCommandRunner(resolveReader(options.Input, options.Command), outputWriter, errorWriter)
	}

	shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner, humanReadable)
	if executorError != nil {
		return Dependencies{}, fmt.Errorf("taskrunner.dependencies.shell_executor: %w", executorError)
	}

	return Dependencies{
		Logger:               logger,
		Registry:             registry,
		StepExecutor:         shellExecutor,
		Output:               outputWriter,
		Errors:               errorWriter,
		HumanReadableLogging: humanReadable,
		DisableSummary:       config.DisableSummary,
	}, nil
}

func resolveLogger(provider func() *zap.Logger) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// resolveWriter prefers the explicit writer, then the command's stream. Without
// either it returns nil so callers can report the missing collaborator.
func resolveWriter(provided io.Writer, command *cobra.Command, useStdout bool) io.Writer {
	if provided != nil {
		return provided
	}
	if command == nil {
		return nil
	}
	if useStdout {
		return command.OutOrStdout()
	}
	return command.ErrOrStderr()
}

func resolveReader(provided io.Reader, command *cobra.Command) io.Reader {
	if provided != nil {
		return provided
	}
	if command != nil {
		return command.InOrStdin()
	}
	return os.Stdin
}
