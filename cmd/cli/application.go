package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/tyemirov/taskline/internal/declaration"
	"github.com/tyemirov/taskline/internal/execshell"
	"github.com/tyemirov/taskline/internal/targets"
	"github.com/tyemirov/taskline/internal/utils"
	flagutils "github.com/tyemirov/taskline/internal/utils/flags"
	"github.com/tyemirov/taskline/internal/version"
	"github.com/tyemirov/taskline/pkg/taskrunner"
)

const (
	applicationNameConstant                                          = "taskline"
	applicationUseConstant                                           = applicationNameConstant + " [target]"
	applicationShortDescriptionConstant                              = "Run the project's development targets"
	applicationLongDescriptionConstant                               = "taskline runs a named target and every prerequisite it depends on, one step at a time, stopping at the first failing step. Without a target the default target runs."
	configFileFlagNameConstant                                       = "config"
	configFileFlagUsageConstant                                      = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                                         = "log-level"
	logLevelFlagUsageConstant                                        = "Override the configured log level (debug, info, warn, error)."
	logFormatFlagNameConstant                                        = "log-format"
	logFormatFlagUsageConstant                                       = "Override the configured log format (structured or console)."
	listFlagNameConstant                                             = "list"
	listFlagUsageConstant                                            = "List declared targets and exit."
	configurationInitializationFlagNameConstant                      = "init"
	configurationInitializationFlagUsageConstant                     = "Write the embedded default configuration to LOCAL (./config.yaml) or user ($HOME/.taskline/config.yaml)."
	configurationInitializationDefaultScopeConstant                  = "local"
	configurationInitializationForceFlagNameConstant                 = "force"
	configurationInitializationForceFlagUsageConstant                = "Overwrite an existing configuration file when initializing."
	configurationInitializationScopeLocalConstant                    = "local"
	configurationInitializationScopeUserConstant                     = "user"
	configurationInitializationUnsupportedScopeTemplateConstant      = "unsupported initialization scope %q"
	configurationInitializationWorkingDirectoryErrorTemplateConstant = "unable to determine working directory: %w"
	configurationInitializationHomeDirectoryErrorTemplateConstant    = "unable to determine user home directory: %w"
	configurationInitializationContentUnavailableErrorConstant       = "embedded configuration content is unavailable"
	configurationInitializationDirectoryErrorTemplateConstant        = "unable to ensure configuration directory %s: %w"
	configurationInitializationExistingFileTemplateConstant          = "configuration file already exists at %s (use --force to overwrite)"
	configurationInitializationExistingDirectoryTemplateConstant     = "configuration path %s is a directory"
	configurationInitializationDirectoryConflictTemplateConstant     = "configuration directory path %s is not a directory"
	configurationInitializationWriteErrorTemplateConstant            = "unable to write configuration file %s: %w"
	configurationInitializationSuccessMessageConstant                = "configuration file created"
	commonConfigurationKeyConstant                                   = "common"
	commonLogLevelConfigKeyConstant                                  = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant                                 = commonConfigurationKeyConstant + ".log_format"
	commonDryRunConfigKeyConstant                                    = commonConfigurationKeyConstant + ".dry_run"
	commonWorkingDirectoryConfigKeyConstant                          = commonConfigurationKeyConstant + ".working_directory"
	environmentPrefixConstant                                        = "TASKLINE"
	configurationNameConstant                                        = "config"
	configurationTypeConstant                                        = "yaml"
	configurationFileNameConstant                                    = configurationNameConstant + "." + configurationTypeConstant
	configurationDirectoryPermissionConstant                         = 0o755
	configurationFilePermissionConstant                              = 0o600
	configurationInitializedMessageConstant                          = "configuration initialized"
	configurationLogLevelFieldConstant                               = "log_level"
	configurationLogFormatFieldConstant                              = "log_format"
	configurationFileFieldConstant                                   = "config_file"
	xdgConfigHomeEnvironmentVariableConstant                         = "XDG_CONFIG_HOME"
	configurationLoadErrorTemplateConstant                           = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant                              = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant                                  = "unable to flush logger: %w"
	configurationInitializedConsoleTemplateConstant                  = "%s | log level=%s | log format=%s | config file=%s"
	runRequestedMessageConstant                                      = "target run requested"
	logFieldTargetConstant                                           = "target"
	logFieldDryRunConstant                                           = "dry_run"
	logFieldWorkingDirectoryConstant                                 = "working_directory"
	loggerNotInitializedMessageConstant                              = "logger not initialized"
	defaultConfigurationSearchPathConstant                           = "."
	applicationConfigurationDirectoryNameConstant                    = applicationNameConstant
	userConfigurationDirectoryNameConstant                           = ".taskline"
	configurationSearchPathEnvironmentVariableConstant               = "TASKLINE_CONFIG_SEARCH_PATH"
	usageErrorMessageConstant                                        = "invalid command line"
	applicationErrorMessageConstant                                  = "taskline failed"
	tooManyArgumentsTemplateConstant                                 = "accepts at most one target, received %d: %s"
	workingDirectoryInvalidTemplateConstant                          = "working directory %s is not usable: %w"
	workingDirectoryNotDirectoryTemplateConstant                     = "working directory %s is not a directory"
	listDefaultMarkerConstant                                        = " (default)"
	listDescriptionTemplateConstant                                  = "  %s"
	listPrerequisitesTemplateConstant                                = " [needs: %s]"
	listPrerequisiteSeparatorConstant                                = ", "
	versionFlagNameConstant                                          = "version"
	versionFlagUsageConstant                                         = "Print the application version and exit."
	versionOutputTemplateConstant                                    = "taskline version: %s\n"
)

type loggerOutputsFactory interface {
	CreateLoggerOutputs(utils.LogLevel, utils.LogFormat) (utils.LoggerOutputs, error)
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand                       *cobra.Command
	configurationLoader               *utils.ConfigurationLoader
	loggerFactory                     loggerOutputsFactory
	logger                            *zap.Logger
	consoleLogger                     *zap.Logger
	configuration                     ApplicationConfiguration
	configurationMetadata             utils.LoadedConfiguration
	configurationFilePath             string
	logLevelFlagValue                 string
	logFormatFlagValue                string
	listFlag                          bool
	versionFlag                       bool
	versionResolver                   func() string
	configurationInitializationScope  string
	configurationInitializationForced bool
	commandContextAccessor            utils.CommandContextAccessor
	registryProvider                  taskrunner.RegistryProvider
	commandRunner                     execshell.CommandRunner
	executorFactory                   taskrunner.Factory
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	application := &Application{
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		consoleLogger:          zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		registryProvider:       declaration.Default,
		versionResolver:        version.Detect,
	}

	application.configurationLoader = utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		application.resolveConfigurationSearchPaths(),
	)

	embeddedConfigurationData, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	application.configurationLoader.SetEmbeddedConfiguration(embeddedConfigurationData, embeddedConfigurationType)

	cobraCommand := &cobra.Command{
		Use:           applicationUseConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          validateTargetArguments,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.SetFlagErrorFunc(func(_ *cobra.Command, flagError error) error {
		return UsageError{Cause: flagError}
	})
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(
		&application.configurationInitializationScope,
		configurationInitializationFlagNameConstant,
		configurationInitializationDefaultScopeConstant,
		configurationInitializationFlagUsageConstant,
	)
	cobraCommand.PersistentFlags().BoolVar(
		&application.configurationInitializationForced,
		configurationInitializationForceFlagNameConstant,
		false,
		configurationInitializationForceFlagUsageConstant,
	)
	cobraCommand.Flags().BoolVar(&application.listFlag, listFlagNameConstant, false, listFlagUsageConstant)
	cobraCommand.Flags().BoolVar(&application.versionFlag, versionFlagNameConstant, false, versionFlagUsageConstant)

	flagutils.BindExecutionFlags(cobraCommand, flagutils.ExecutionDefaults{}, flagutils.DefaultExecutionFlagDefinitions())

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the root command against os.Args with a context cancelled on SIGINT or SIGTERM.
func (application *Application) Execute() error {
	executionContext, stopNotification := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopNotification()

	return application.ExecuteWithArguments(executionContext, os.Args[1:])
}

// ExecuteWithArguments runs the root command with explicit arguments and ensures logger flushing.
func (application *Application) ExecuteWithArguments(executionContext context.Context, arguments []string) error {
	normalizedArguments := normalizeInitializationScopeArguments(arguments)
	if normalizedArguments == nil {
		normalizedArguments = []string{}
	}
	application.rootCommand.SetArgs(normalizedArguments)

	executionError := application.rootCommand.ExecuteContext(executionContext)
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return ApplicationError{Cause: fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)}
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command.
func Execute() error {
	return NewApplication().Execute()
}

func validateTargetArguments(_ *cobra.Command, arguments []string) error {
	if len(arguments) > 1 {
		return UsageError{Cause: fmt.Errorf(tooManyArgumentsTemplateConstant, len(arguments), strings.Join(arguments, " "))}
	}
	return nil
}

func normalizeInitializationScopeArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalizedArguments := make([]string, 0, len(arguments))
	flagPrefix := "--" + configurationInitializationFlagNameConstant
	defaultAssignment := fmt.Sprintf("%s=%s", flagPrefix, configurationInitializationDefaultScopeConstant)

	for index := 0; index < len(arguments); index++ {
		currentArgument := arguments[index]

		if strings.HasPrefix(currentArgument, flagPrefix+"=") {
			if len(strings.TrimSpace(strings.TrimPrefix(currentArgument, flagPrefix+"="))) == 0 {
				normalizedArguments = append(normalizedArguments, defaultAssignment)
				continue
			}
			normalizedArguments = append(normalizedArguments, currentArgument)
			continue
		}

		if currentArgument == flagPrefix {
			nextIndex := index + 1
			if nextIndex >= len(arguments) || strings.HasPrefix(arguments[nextIndex], "-") {
				normalizedArguments = append(normalizedArguments, defaultAssignment)
				continue
			}
		}

		normalizedArguments = append(normalizedArguments, currentArgument)
	}

	return normalizedArguments
}

func (application *Application) resolveConfigurationSearchPaths() []string {
	overrideValue := strings.TrimSpace(os.Getenv(configurationSearchPathEnvironmentVariableConstant))
	if len(overrideValue) == 0 {
		return append([]string{defaultConfigurationSearchPathConstant}, application.resolveUserConfigurationDirectoryPaths()...)
	}

	overridePaths := strings.FieldsFunc(overrideValue, func(candidate rune) bool {
		return candidate == os.PathListSeparator
	})

	cleanedPaths := make([]string, 0, len(overridePaths))
	for _, pathCandidate := range overridePaths {
		trimmedCandidate := strings.TrimSpace(pathCandidate)
		if len(trimmedCandidate) == 0 {
			continue
		}
		cleanedPaths = append(cleanedPaths, trimmedCandidate)
	}

	if len(cleanedPaths) == 0 {
		return []string{defaultConfigurationSearchPathConstant}
	}

	return cleanedPaths
}

// resolveUserConfigurationDirectoryPaths lists $XDG_CONFIG_HOME/taskline, the
// platform user config directory, and $HOME/.taskline, without duplicates.
func (application *Application) resolveUserConfigurationDirectoryPaths() []string {
	userConfigurationDirectoryPaths := make([]string, 0, 3)

	appendConfigurationDirectory := func(baseDirectoryPath string, directoryName string) {
		trimmedBaseDirectoryPath := strings.TrimSpace(baseDirectoryPath)
		if len(trimmedBaseDirectoryPath) == 0 {
			return
		}

		candidateDirectoryPath := filepath.Join(trimmedBaseDirectoryPath, directoryName)
		for _, existingDirectoryPath := range userConfigurationDirectoryPaths {
			if existingDirectoryPath == candidateDirectoryPath {
				return
			}
		}

		userConfigurationDirectoryPaths = append(userConfigurationDirectoryPaths, candidateDirectoryPath)
	}

	appendConfigurationDirectory(os.Getenv(xdgConfigHomeEnvironmentVariableConstant), applicationConfigurationDirectoryNameConstant)

	if userConfigurationBaseDirectoryPath, userConfigurationDirectoryError := os.UserConfigDir(); userConfigurationDirectoryError == nil {
		appendConfigurationDirectory(userConfigurationBaseDirectoryPath, applicationConfigurationDirectoryNameConstant)
	}

	if userHomeDirectoryPath, userHomeDirectoryError := os.UserHomeDir(); userHomeDirectoryError == nil {
		appendConfigurationDirectory(userHomeDirectoryPath, userConfigurationDirectoryNameConstant)
	}

	return userConfigurationDirectoryPaths
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:         string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant:        string(utils.LogFormatConsole),
		commonDryRunConfigKeyConstant:           false,
		commonWorkingDirectoryConfigKeyConstant: "",
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return ApplicationError{Cause: fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)}
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return ApplicationError{Cause: fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)}
	}

	application.logger = loggerOutputs.DiagnosticLogger
	if application.logger == nil {
		application.logger = zap.NewNop()
	}

	application.consoleLogger = loggerOutputs.ConsoleLogger
	if application.consoleLogger == nil {
		application.consoleLogger = zap.NewNop()
	}

	application.logConfigurationInitialization()

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithExecutionFlags(updatedContext, application.resolveExecutionFlags(command))
		updatedContext = application.commandContextAccessor.WithLogLevel(updatedContext, application.configuration.Common.LogLevel)

		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

// InitializeForCommand prepares application state for the provided command name without executing command logic.
func (application *Application) InitializeForCommand(commandUse string) error {
	command := &cobra.Command{Use: commandUse}
	return application.initializeConfiguration(command)
}

// ConfigFileUsed returns the configuration file path used during initialization.
func (application *Application) ConfigFileUsed() string {
	return application.configurationMetadata.ConfigFileUsed
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) logConfigurationInitialization() {
	if !strings.EqualFold(strings.TrimSpace(application.configuration.Common.LogLevel), string(utils.LogLevelDebug)) {
		return
	}

	if application.humanReadableLoggingEnabled() {
		bannerMessage := fmt.Sprintf(
			configurationInitializedConsoleTemplateConstant,
			configurationInitializedMessageConstant,
			application.configuration.Common.LogLevel,
			application.configuration.Common.LogFormat,
			application.configurationMetadata.ConfigFileUsed,
		)
		application.consoleLogger.Debug(bannerMessage)
		return
	}

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)
}

// resolveExecutionFlags layers explicitly passed flags over the configured common values.
func (application *Application) resolveExecutionFlags(command *cobra.Command) utils.ExecutionFlags {
	commandFlags := flagutils.CollectExecutionFlags(command)
	resolvedFlags := utils.ExecutionFlags{
		DryRun:              application.configuration.Common.DryRun,
		WorkingDirectory:    strings.TrimSpace(application.configuration.Common.WorkingDirectory),
		DryRunSet:           commandFlags.DryRunSet,
		WorkingDirectorySet: commandFlags.WorkingDirectorySet,
	}
	if commandFlags.DryRunSet {
		resolvedFlags.DryRun = commandFlags.DryRun
	}
	if commandFlags.WorkingDirectorySet {
		resolvedFlags.WorkingDirectory = commandFlags.WorkingDirectory
	}
	return resolvedFlags
}

func (application *Application) handleConfigurationInitialization(command *cobra.Command) (bool, error) {
	if !application.persistentFlagChanged(command, configurationInitializationFlagNameConstant) {
		return false, nil
	}

	initializationScope := strings.TrimSpace(application.configurationInitializationScope)
	if len(initializationScope) == 0 {
		initializationScope = configurationInitializationDefaultScopeConstant
	}

	initializationPlan, planError := application.resolveConfigurationInitializationPlan(initializationScope)
	if planError != nil {
		return true, planError
	}

	configurationContent, _ := EmbeddedDefaultConfiguration()
	if len(configurationContent) == 0 {
		return true, ApplicationError{Cause: errors.New(configurationInitializationContentUnavailableErrorConstant)}
	}

	if writeError := application.writeConfigurationFile(initializationPlan, configurationContent); writeError != nil {
		return true, writeError
	}

	application.logger.Info(
		configurationInitializationSuccessMessageConstant,
		zap.String(configurationFileFieldConstant, initializationPlan.FilePath),
	)

	return true, nil
}

func (application *Application) resolveConfigurationInitializationPlan(initializationScope string) (configurationInitializationPlan, error) {
	switch strings.ToLower(strings.TrimSpace(initializationScope)) {
	case "", configurationInitializationScopeLocalConstant:
		workingDirectoryPath, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return configurationInitializationPlan{}, ApplicationError{Cause: fmt.Errorf(configurationInitializationWorkingDirectoryErrorTemplateConstant, workingDirectoryError)}
		}

		return configurationInitializationPlan{
			DirectoryPath: workingDirectoryPath,
			FilePath:      filepath.Join(workingDirectoryPath, configurationFileNameConstant),
		}, nil
	case configurationInitializationScopeUserConstant:
		userHomeDirectoryPath, userHomeDirectoryError := os.UserHomeDir()
		if userHomeDirectoryError != nil {
			return configurationInitializationPlan{}, ApplicationError{Cause: fmt.Errorf(configurationInitializationHomeDirectoryErrorTemplateConstant, userHomeDirectoryError)}
		}

		configurationDirectoryPath := filepath.Join(userHomeDirectoryPath, userConfigurationDirectoryNameConstant)

		return configurationInitializationPlan{
			DirectoryPath: configurationDirectoryPath,
			FilePath:      filepath.Join(configurationDirectoryPath, configurationFileNameConstant),
		}, nil
	default:
		return configurationInitializationPlan{}, UsageError{Cause: fmt.Errorf(configurationInitializationUnsupportedScopeTemplateConstant, strings.TrimSpace(initializationScope))}
	}
}

func (application *Application) writeConfigurationFile(initializationPlan configurationInitializationPlan, configurationContent []byte) error {
	directoryInfo, directoryStatError := os.Stat(initializationPlan.DirectoryPath)
	switch {
	case directoryStatError == nil:
		if !directoryInfo.IsDir() {
			return ApplicationError{Cause: fmt.Errorf(configurationInitializationDirectoryConflictTemplateConstant, initializationPlan.DirectoryPath)}
		}
	case errors.Is(directoryStatError, os.ErrNotExist):
		if createError := os.MkdirAll(initializationPlan.DirectoryPath, configurationDirectoryPermissionConstant); createError != nil {
			return ApplicationError{Cause: fmt.Errorf(configurationInitializationDirectoryErrorTemplateConstant, initializationPlan.DirectoryPath, createError)}
		}
	default:
		return ApplicationError{Cause: fmt.Errorf(configurationInitializationDirectoryErrorTemplateConstant, initializationPlan.DirectoryPath, directoryStatError)}
	}

	fileInfo, fileStatError := os.Stat(initializationPlan.FilePath)
	switch {
	case fileStatError == nil:
		if fileInfo.IsDir() {
			return ApplicationError{Cause: fmt.Errorf(configurationInitializationExistingDirectoryTemplateConstant, initializationPlan.FilePath)}
		}
		if !application.configurationInitializationForced {
			return UsageError{Cause: fmt.Errorf(configurationInitializationExistingFileTemplateConstant, initializationPlan.FilePath)}
		}
	case errors.Is(fileStatError, os.ErrNotExist):
	default:
		return ApplicationError{Cause: fmt.Errorf(configurationInitializationWriteErrorTemplateConstant, initializationPlan.FilePath, fileStatError)}
	}

	if writeError := os.WriteFile(initializationPlan.FilePath, configurationContent, configurationFilePermissionConstant); writeError != nil {
		return ApplicationError{Cause: fmt.Errorf(configurationInitializationWriteErrorTemplateConstant, initializationPlan.FilePath, writeError)}
	}

	return nil
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return ApplicationError{Cause: errors.New(loggerNotInitializedMessageConstant)}
	}

	if application.versionFlag {
		if _, writeError := fmt.Fprintf(command.OutOrStdout(), versionOutputTemplateConstant, application.versionResolver()); writeError != nil {
			return ApplicationError{Cause: writeError}
		}
		return nil
	}

	initializationHandled, initializationError := application.handleConfigurationInitialization(command)
	if initializationError != nil || initializationHandled {
		return initializationError
	}

	if application.listFlag {
		registry, registryError := application.registryProvider()
		if registryError != nil {
			return registryError
		}
		return printTargetList(command.OutOrStdout(), registry)
	}

	targetName := ""
	if len(arguments) > 0 {
		targetName = strings.TrimSpace(arguments[0])
	}

	executionFlags, _ := flagutils.ResolveExecutionFlags(command)
	if validationError := validateWorkingDirectory(executionFlags.WorkingDirectory); validationError != nil {
		return validationError
	}

	application.logger.Debug(
		runRequestedMessageConstant,
		zap.String(logFieldTargetConstant, targetName),
		zap.Bool(logFieldDryRunConstant, executionFlags.DryRun),
		zap.String(logFieldWorkingDirectoryConstant, executionFlags.WorkingDirectory),
	)

	dependencies, dependenciesError := taskrunner.BuildDependencies(
		taskrunner.DependenciesConfig{
			LoggerProvider:               func() *zap.Logger { return application.logger },
			HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
			RegistryProvider:             application.registryProvider,
			CommandRunner:                application.commandRunner,
		},
		taskrunner.DependenciesOptions{Command: command},
	)
	if dependenciesError != nil {
		return dependenciesError
	}

	executor, resolveError := taskrunner.Resolve(application.executorFactory, dependencies)
	if resolveError != nil {
		return ApplicationError{Cause: resolveError}
	}

	_, runError := executor.Run(command.Context(), targetName, targets.RunnerOptions{
		WorkingDirectory: executionFlags.WorkingDirectory,
		DryRun:           executionFlags.DryRun,
	})
	return runError
}

func validateWorkingDirectory(workingDirectory string) error {
	if len(workingDirectory) == 0 {
		return nil
	}
	directoryInfo, statError := os.Stat(workingDirectory)
	if statError != nil {
		return UsageError{Cause: fmt.Errorf(workingDirectoryInvalidTemplateConstant, workingDirectory, statError)}
	}
	if !directoryInfo.IsDir() {
		return UsageError{Cause: fmt.Errorf(workingDirectoryNotDirectoryTemplateConstant, workingDirectory)}
	}
	return nil
}

// printTargetList writes one line per declared target in declaration order.
func printTargetList(writer io.Writer, registry *targets.Registry) error {
	defaultTargetName := registry.DefaultTargetName()
	for _, targetName := range registry.Names() {
		target, _ := registry.Lookup(targetName)

		line := strings.Builder{}
		line.WriteString(target.Name)
		if target.Name == defaultTargetName {
			line.WriteString(listDefaultMarkerConstant)
		}
		if len(target.Description) > 0 {
			line.WriteString(fmt.Sprintf(listDescriptionTemplateConstant, target.Description))
		}
		if len(target.Prerequisites) > 0 {
			line.WriteString(fmt.Sprintf(listPrerequisitesTemplateConstant, strings.Join(target.Prerequisites, listPrerequisiteSeparatorConstant)))
		}

		if _, writeError := fmt.Fprintln(writer, line.String()); writeError != nil {
			return ApplicationError{Cause: writeError}
		}
	}
	return nil
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}

	if syncError := application.syncLoggerInstance(application.consoleLogger); syncError != nil {
		return syncError
	}

	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.EBADF):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
