package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/studentpub/internal/completion"
	"github.com/temirov/studentpub/internal/execshell"
	"github.com/temirov/studentpub/internal/filesystem"
	"github.com/temirov/studentpub/internal/githubapi"
	"github.com/temirov/studentpub/internal/githubauth"
	"github.com/temirov/studentpub/internal/gitrepo"
	"github.com/temirov/studentpub/internal/pipeline"
	"github.com/temirov/studentpub/internal/publisher"
	"github.com/temirov/studentpub/internal/readme"
	"github.com/temirov/studentpub/internal/retry"
	"github.com/temirov/studentpub/internal/ui"
	"github.com/temirov/studentpub/internal/utils"
)

const (
	publishCommandUseConstant              = "publish"
	publishCommandShortDescriptionConstant = "Generate READMEs and publish pending project folders"
	publishCommandLongDescriptionConstant  = "publish generates a README for every pending numbered project folder, creates a GitHub repository named after the generated title, pushes the folder and records it in the ledger."
	flagOwnerNameConstant                  = "owner"
	flagOwnerDescriptionConstant           = "GitHub account owning the created repositories (defaults to the token's user)"
	flagModelNameConstant                  = "model"
	flagModelDescriptionConstant           = "Completion model used to write READMEs"
	githubTokenMissingMessageConstant      = "GitHub token not found; set GH_TOKEN, GITHUB_TOKEN or GITHUB_API_TOKEN"
	environmentFileErrorTemplateConstant   = "unable to load environment file: %w"
	remoteProtocolErrorTemplateConstant    = "invalid hosting.remote_protocol: %w"
	ownerResolutionErrorTemplateConstant   = "unable to resolve repository owner: %w"
	publishRunErrorTemplateConstant        = "publication run failed: %w"
	ownerResolvedLogMessageConstant        = "repository owner resolved from token"
	runStartedLogMessageConstant           = "publication run started"
	logFieldOwnerConstant                  = "owner"
	logFieldModelConstant                  = "model"
	logFieldBaseDirectoryConstant          = "base_directory"
	logFieldLedgerFileConstant             = "ledger_file"
)

// ErrGitHubTokenMissing indicates no GitHub token was found in the environment or the environment file.
var ErrGitHubTokenMissing = errors.New(githubTokenMissingMessageConstant)

// PublishCommandBuilder assembles the publish command.
type PublishCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	EnvironmentLookup     githubauth.EnvironmentLookup
	GitExecutor           publisher.GitExecutor
}

// Build constructs the publish command.
func (builder *PublishCommandBuilder) Build() *cobra.Command {
	command := &cobra.Command{
		Use:   publishCommandUseConstant,
		Short: publishCommandShortDescriptionConstant,
		Long:  publishCommandLongDescriptionConstant,
		RunE:  builder.run,
	}
	addLocationFlags(command)
	command.Flags().String(flagOwnerNameConstant, "", flagOwnerDescriptionConstant)
	command.Flags().String(flagModelNameConstant, "", flagModelDescriptionConstant)
	return command
}

func (builder *PublishCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if argumentsError := rejectArguments(command, arguments); argumentsError != nil {
		return argumentsError
	}

	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}

	logger := resolveLogger(builder.LoggerProvider)
	configuration := resolveConfiguration(builder.ConfigurationProvider)
	configuration.Hosting.Owner = flagOrConfigured(command, flagOwnerNameConstant, configuration.Hosting.Owner)
	configuration.Completion.Model = flagOrConfigured(command, flagModelNameConstant, configuration.Completion.Model)

	options, optionsError := resolveRunOptions(command, configuration)
	if optionsError != nil {
		return optionsError
	}

	runner, runnerError := builder.buildRunner(executionContext, logger, configuration)
	if runnerError != nil {
		return runnerError
	}

	logger.Info(runStartedLogMessageConstant,
		zap.String(logFieldBaseDirectoryConstant, options.BaseDirectory),
		zap.String(logFieldLedgerFileConstant, options.LedgerFile),
		zap.String(logFieldModelConstant, configuration.Completion.Model),
	)

	summary, runError := runner.Run(executionContext, options)
	if renderError := ui.NewSummaryRenderer(command.OutOrStdout()).RenderSummary(summary); renderError != nil && runError == nil {
		return renderError
	}
	if runError != nil {
		return fmt.Errorf(publishRunErrorTemplateConstant, runError)
	}
	return nil
}

func (builder *PublishCommandBuilder) buildRunner(executionContext context.Context, logger *zap.Logger, configuration ApplicationConfiguration) (*pipeline.Runner, error) {
	environmentLookup := builder.EnvironmentLookup
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}

	fileEnvironment, environmentError := utils.NewEnvironmentFileLoader().Load(configuration.Common.EnvFile)
	if environmentError != nil {
		return nil, fmt.Errorf(environmentFileErrorTemplateConstant, environmentError)
	}

	githubToken, tokenFound := githubauth.ResolveTokenWithLookup(environmentLookup, fileEnvironment)
	if !tokenFound {
		return nil, ErrGitHubTokenMissing
	}
	apiKey, _ := completion.ResolveAPIKeyWithLookup(environmentLookup, fileEnvironment)

	completionClient, completionError := completion.NewClient(completion.Configuration{
		BaseURL:           configuration.Completion.BaseURL,
		Model:             configuration.Completion.Model,
		APIKey:            apiKey,
		RequestsPerMinute: configuration.Completion.RequestsPerMinute,
		RequestTimeout:    configuration.Completion.RequestTimeout,
	}, logger)
	if completionError != nil {
		return nil, completionError
	}

	hostingClient, hostingError := githubapi.NewClient(nil, githubapi.Configuration{
		BaseURL:        configuration.Hosting.APIBaseURL,
		Token:          githubToken,
		RequestTimeout: configuration.Hosting.RequestTimeout,
	})
	if hostingError != nil {
		return nil, hostingError
	}

	owner, ownerError := resolveOwner(executionContext, logger, hostingClient, configuration.Hosting.Owner)
	if ownerError != nil {
		return nil, ownerError
	}

	remoteProtocol, protocolError := gitrepo.ParseRemoteProtocol(configuration.Hosting.RemoteProtocol)
	if protocolError != nil {
		return nil, fmt.Errorf(remoteProtocolErrorTemplateConstant, protocolError)
	}

	gitExecutor, executorError := builder.resolveGitExecutor(logger)
	if executorError != nil {
		return nil, executorError
	}

	generator, generatorError := readme.NewGenerator(readme.Dependencies{
		Completer:  completionClient,
		FileSystem: filesystem.OSFileSystem{},
		Retrier: retry.NewRetrier(retry.Policy{
			MaxAttempts:    configuration.Completion.MaxAttempts,
			InitialBackoff: configuration.Completion.InitialBackoff,
			MaxBackoff:     configuration.Completion.MaxBackoff,
		}, retry.ContextSleeper, logger),
		Logger:          logger,
		RefusalPrefixes: configuration.Completion.RefusalPrefixes,
	})
	if generatorError != nil {
		return nil, generatorError
	}

	projectPublisher, publisherError := publisher.NewPublisher(publisher.Dependencies{
		Creator:    hostingClient,
		Executor:   gitExecutor,
		FileSystem: filesystem.OSFileSystem{},
		Logger:     logger,
		Sleeper:    retry.ContextSleeper,
	}, publisher.Configuration{
		Owner:           owner,
		WebBaseURL:      configuration.Hosting.WebBaseURL,
		RemoteProtocol:  remoteProtocol,
		Private:         configuration.Hosting.Private,
		MaxNameAttempts: configuration.Hosting.MaxNameAttempts,
		CollisionSuffix: configuration.Hosting.CollisionSuffix,
		CommitMessage:   configuration.Publish.CommitMessage,
		Branch:          configuration.Publish.Branch,
		RemoteName:      configuration.Publish.RemoteName,
		MaxPushAttempts: configuration.Publish.MaxPushAttempts,
		PushBackoff:     configuration.Publish.PushBackoff,
	})
	if publisherError != nil {
		return nil, publisherError
	}

	runnerDependencies := newDiscoveryDependencies(logger, configuration)
	runnerDependencies.Generator = generator
	runnerDependencies.Publisher = projectPublisher
	return pipeline.NewRunner(runnerDependencies)
}

func (builder *PublishCommandBuilder) resolveGitExecutor(logger *zap.Logger) (publisher.GitExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
	}

	shellExecutor, creationError := execshell.NewShellExecutorWithObserver(logger, execshell.NewOSCommandRunner(), ui.NewConsoleCommandEventLogger(logger))
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

func resolveOwner(executionContext context.Context, logger *zap.Logger, hostingClient *githubapi.Client, configuredOwner string) (string, error) {
	if trimmedOwner := strings.TrimSpace(configuredOwner); len(trimmedOwner) > 0 {
		return trimmedOwner, nil
	}

	login, loginError := hostingClient.AuthenticatedUser(executionContext)
	if loginError != nil {
		return "", fmt.Errorf(ownerResolutionErrorTemplateConstant, loginError)
	}
	logger.Info(ownerResolvedLogMessageConstant, zap.String(logFieldOwnerConstant, login))
	return login, nil
}
