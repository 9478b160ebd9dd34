package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/studentpub/internal/classifier"
	"github.com/temirov/studentpub/internal/filesystem"
	"github.com/temirov/studentpub/internal/pipeline"
	"github.com/temirov/studentpub/internal/scanner"
	pathutils "github.com/temirov/studentpub/internal/utils/path"
)

const (
	flagBaseDirectoryNameConstant        = "base-directory"
	flagBaseDirectoryDescriptionConstant = "Directory searched for numbered project folders"
	flagLedgerFileNameConstant           = "ledger-file"
	flagLedgerFileDescriptionConstant    = "File recording the folders already published"
	pathResolutionErrorTemplateConstant  = "unable to resolve %s %q: %w"
	baseDirectoryDescriptionConstant     = "base directory"
	ledgerFileDescriptionConstant        = "ledger file"
	unexpectedArgumentsTemplateConstant  = "%s does not accept positional arguments"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the resolved application configuration.
type ConfigurationProvider func() ApplicationConfiguration

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveConfiguration(provider ConfigurationProvider) ApplicationConfiguration {
	if provider == nil {
		return ApplicationConfiguration{}
	}
	return provider()
}

func rejectArguments(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return fmt.Errorf(unexpectedArgumentsTemplateConstant, command.Name())
	}
	return nil
}

func addLocationFlags(command *cobra.Command) {
	command.Flags().String(flagBaseDirectoryNameConstant, "", flagBaseDirectoryDescriptionConstant)
	command.Flags().String(flagLedgerFileNameConstant, "", flagLedgerFileDescriptionConstant)
}

// flagOrConfigured returns the trimmed flag value when the flag was set and the configured value otherwise.
func flagOrConfigured(command *cobra.Command, flagName string, configuredValue string) string {
	if command.Flags().Changed(flagName) {
		flagValue, _ := command.Flags().GetString(flagName)
		return strings.TrimSpace(flagValue)
	}
	return strings.TrimSpace(configuredValue)
}

func resolveRunOptions(command *cobra.Command, configuration ApplicationConfiguration) (pipeline.Options, error) {
	resolver := pathutils.NewResolver()

	baseDirectory, baseDirectoryError := resolver.Absolute(flagOrConfigured(command, flagBaseDirectoryNameConstant, configuration.Scan.BaseDirectory))
	if baseDirectoryError != nil {
		return pipeline.Options{}, fmt.Errorf(pathResolutionErrorTemplateConstant, baseDirectoryDescriptionConstant, configuration.Scan.BaseDirectory, baseDirectoryError)
	}

	ledgerFile, ledgerFileError := resolver.Absolute(flagOrConfigured(command, flagLedgerFileNameConstant, configuration.Scan.LedgerFile))
	if ledgerFileError != nil {
		return pipeline.Options{}, fmt.Errorf(pathResolutionErrorTemplateConstant, ledgerFileDescriptionConstant, configuration.Scan.LedgerFile, ledgerFileError)
	}

	return pipeline.Options{BaseDirectory: baseDirectory, LedgerFile: ledgerFile}, nil
}

func newDiscoveryDependencies(logger *zap.Logger, configuration ApplicationConfiguration) pipeline.Dependencies {
	return pipeline.Dependencies{
		Scanner: scanner.NewScanner(logger, scanner.Configuration{
			ExcludedMarkers:  configuration.Scan.ExcludedMarkers,
			SourceExtensions: configuration.Scan.SourceExtensions,
		}),
		Classifier: classifier.NewClassifier(logger, classifier.Configuration{
			SketchExtensions:        configuration.Classification.SketchExtensions,
			GeneralExtensions:       configuration.Classification.GeneralExtensions,
			DocumentationExtensions: configuration.Classification.DocumentationExtensions,
		}),
		FileSystem: filesystem.OSFileSystem{},
		Logger:     logger,
	}
}
