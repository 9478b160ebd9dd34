package cli

import (
	"github.com/spf13/cobra"

	"github.com/temirov/studentpub/internal/pipeline"
	"github.com/temirov/studentpub/internal/ui"
)

const (
	scanCommandUseConstant              = "scan"
	scanCommandShortDescriptionConstant = "List project folders awaiting publication"
	scanCommandLongDescriptionConstant  = "scan lists the numbered project folders that publish would process, with the code and document files selected for each. It makes no network calls and changes nothing on disk."
)

// ScanCommandBuilder assembles the scan preview command.
type ScanCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
}

// Build constructs the scan command.
func (builder *ScanCommandBuilder) Build() *cobra.Command {
	command := &cobra.Command{
		Use:   scanCommandUseConstant,
		Short: scanCommandShortDescriptionConstant,
		Long:  scanCommandLongDescriptionConstant,
		RunE:  builder.run,
	}
	addLocationFlags(command)
	return command
}

func (builder *ScanCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if argumentsError := rejectArguments(command, arguments); argumentsError != nil {
		return argumentsError
	}

	configuration := resolveConfiguration(builder.ConfigurationProvider)
	options, optionsError := resolveRunOptions(command, configuration)
	if optionsError != nil {
		return optionsError
	}

	runner, runnerError := pipeline.NewRunner(newDiscoveryDependencies(resolveLogger(builder.LoggerProvider), configuration))
	if runnerError != nil {
		return runnerError
	}

	candidates, previewError := runner.Preview(options)
	if previewError != nil {
		return previewError
	}

	return ui.NewSummaryRenderer(command.OutOrStdout()).RenderPreview(candidates)
}
