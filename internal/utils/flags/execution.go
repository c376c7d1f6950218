// Package flags provides helpers for binding standardized execution flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the dry-run flag purpose.
	DryRunFlagUsage = "Print the steps that would run without spawning any process"
	// WorkingDirectoryFlagName exposes the working directory flag name.
	WorkingDirectoryFlagName = "chdir"
	// WorkingDirectoryFlagShorthand provides the shorthand for the working directory flag.
	WorkingDirectoryFlagShorthand = "C"
	// WorkingDirectoryFlagUsage describes the working directory flag purpose.
	WorkingDirectoryFlagUsage = "Directory every step runs in (defaults to the current directory)"
)

// ExecutionDefaults describes default flag values shared across commands.
type ExecutionDefaults struct {
	DryRun           bool
	WorkingDirectory string
}

// ExecutionFlagDefinition captures a single flag's configuration.
type ExecutionFlagDefinition struct {
	Name      string
	Usage     string
	Shorthand string
	Enabled   bool
}

// ExecutionFlagDefinitions groups execution flag definitions.
type ExecutionFlagDefinitions struct {
	DryRun           ExecutionFlagDefinition
	WorkingDirectory ExecutionFlagDefinition
}

// DefaultExecutionFlagDefinitions enables both execution flags under their standard names.
func DefaultExecutionFlagDefinitions() ExecutionFlagDefinitions {
	return ExecutionFlagDefinitions{
		DryRun:           ExecutionFlagDefinition{Name: DryRunFlagName, Usage: DryRunFlagUsage, Enabled: true},
		WorkingDirectory: ExecutionFlagDefinition{Name: WorkingDirectoryFlagName, Usage: WorkingDirectoryFlagUsage, Shorthand: WorkingDirectoryFlagShorthand, Enabled: true},
	}
}

// BindExecutionFlags attaches standardized execution flags to the provided command using persistent scope.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionDefaults, definitions ExecutionFlagDefinitions) {
	if command == nil {
		return
	}

	persistentFlagSet := command.PersistentFlags()

	bindToggleFlag(persistentFlagSet, definitions.DryRun, defaults.DryRun)
	bindStringFlag(persistentFlagSet, definitions.WorkingDirectory, defaults.WorkingDirectory)
}

func bindToggleFlag(flagSet *pflag.FlagSet, definition ExecutionFlagDefinition, defaultValue bool) {
	if !definitionBindable(flagSet, definition) {
		return
	}
	flagSet.BoolP(definition.Name, definition.Shorthand, defaultValue, definition.Usage)
}

func bindStringFlag(flagSet *pflag.FlagSet, definition ExecutionFlagDefinition, defaultValue string) {
	if !definitionBindable(flagSet, definition) {
		return
	}
	flagSet.StringP(definition.Name, definition.Shorthand, defaultValue, definition.Usage)
}

func definitionBindable(flagSet *pflag.FlagSet, definition ExecutionFlagDefinition) bool {
	if flagSet == nil || !definition.Enabled || len(definition.Name) == 0 {
		return false
	}
	return flagSet.Lookup(definition.Name) == nil
}
