package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/studentpub/internal/githubauth"
	"github.com/temirov/studentpub/internal/publisher"
	"github.com/temirov/studentpub/internal/utils"
)

const (
	applicationNameConstant                 = "studentpub"
	applicationShortDescriptionConstant     = "Publish numbered student project folders to GitHub with generated READMEs"
	applicationLongDescriptionConstant      = "studentpub scans a directory tree for numbered project folders, asks a completion model for a README, creates a GitHub repository and pushes each project, recording published folders in a ledger."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	environmentPrefixConstant               = "STUDENTPUB"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	defaultConfigurationSearchPathConstant  = "."
	userConfigurationDirectoryConstant      = "studentpub"
	commonLogLevelConfigKeyConstant         = "common.log_level"
	commonLogFormatConfigKeyConstant        = "common.log_format"
)

// ApplicationDependencies overrides the process-level collaborators used by commands.
// Zero values select the operating system defaults.
type ApplicationDependencies struct {
	EnvironmentLookup githubauth.EnvironmentLookup
	GitExecutor       publisher.GitExecutor
	LoggerOutput      io.Writer
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	dependencies          ApplicationDependencies
}

// NewApplication assembles a CLI application bound to the operating system environment.
func NewApplication() *Application {
	return NewApplicationWithDependencies(ApplicationDependencies{})
}

// NewApplicationWithDependencies assembles a CLI application with the provided collaborators.
func NewApplicationWithDependencies(dependencies ApplicationDependencies) *Application {
	if dependencies.EnvironmentLookup == nil {
		dependencies.EnvironmentLookup = os.LookupEnv
	}

	defaultConfiguration, _ := EmbeddedDefaultConfiguration()
	configurationLoader := utils.NewConfigurationLoader(utils.ConfigurationSource{
		FileName:          configurationNameConstant,
		Format:            configurationTypeConstant,
		EnvironmentPrefix: environmentPrefixConstant,
		SearchDirectories: configurationSearchPaths(),
		Defaults:          defaultConfiguration,
	})

	loggerFactory := utils.NewLoggerFactory()
	if dependencies.LoggerOutput != nil {
		loggerFactory = utils.NewLoggerFactoryWithWriter(dependencies.LoggerOutput)
	}

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       loggerFactory,
		logger:              zap.NewNop(),
		dependencies:        dependencies,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	publishBuilder := PublishCommandBuilder{
		LoggerProvider:        application.loggerProvider,
		ConfigurationProvider: application.configurationProvider,
		EnvironmentLookup:     dependencies.EnvironmentLookup,
		GitExecutor:           dependencies.GitExecutor,
	}
	cobraCommand.AddCommand(publishBuilder.Build())

	scanBuilder := ScanCommandBuilder{
		LoggerProvider:        application.loggerProvider,
		ConfigurationProvider: application.configurationProvider,
	}
	cobraCommand.AddCommand(scanBuilder.Build())

	application.rootCommand = cobraCommand

	return application
}

// Command exposes the root Cobra command.
func (application *Application) Command() *cobra.Command {
	return application.rootCommand
}

// Configuration returns the configuration resolved by the last command execution.
func (application *Application) Configuration() ApplicationConfiguration {
	return application.configuration
}

// Execute runs the command hierarchy until completion or until SIGINT/SIGTERM, then flushes the logger.
func (application *Application) Execute() error {
	signalContext, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	return application.ExecuteContext(signalContext)
}

// ExecuteContext runs the command hierarchy with the provided context and flushes the logger.
func (application *Application) ExecuteContext(executionContext context.Context) error {
	executionError := application.rootCommand.ExecuteContext(executionContext)
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) loggerProvider() *zap.Logger {
	return application.logger
}

func (application *Application) configurationProvider() ApplicationConfiguration {
	return application.configuration
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
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

func configurationSearchPaths() []string {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, userConfigurationDirectoryConstant))
	}
	return searchPaths
}
