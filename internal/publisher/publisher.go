package publisher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/studentpub/internal/execshell"
	"github.com/temirov/studentpub/internal/filesystem"
	"github.com/temirov/studentpub/internal/githubapi"
	"github.com/temirov/studentpub/internal/gitrepo"
	"github.com/temirov/studentpub/internal/retry"
)

const (
	defaultWebBaseURLConstant                  = "https://github.com"
	defaultCommitMessageConstant               = "Initial commit"
	defaultBranchConstant                      = "main"
	defaultRemoteNameConstant                  = "origin"
	defaultCollisionSuffixConstant             = "-2"
	defaultMaxNameAttemptsConstant             = 3
	defaultMaxPushAttemptsConstant             = 3
	gitMetadataDirectoryNameConstant           = ".git"
	terminalPromptVariableConstant             = "GIT_TERMINAL_PROMPT"
	terminalPromptDisabledConstant             = "0"
	pushOperationTemplateConstant              = "git push of %s"
	createRepositoryErrorTemplateConstant      = "unable to create repository %s: %w"
	remoteURLErrorTemplateConstant             = "unable to build remote URL for %s: %w"
	wipeErrorTemplateConstant                  = "unable to remove %s: %w"
	pushAuthenticationTemplateConstant         = "%w: %v"
	repositoryCreatedLogMessageConstant        = "repository created"
	repositoryExistsLogMessageConstant         = "repository name already taken, trying suffixed name"
	repositoryRejectedLogMessageConstant       = "repository creation failed, continuing with push"
	remoteAddFailedLogMessageConstant          = "remote already configured, repointing it"
	gitMetadataRemovedLogMessageConstant       = "removed local git metadata"
	gitMetadataRemovalFailedLogMessageConstant = "unable to remove local git metadata"
	pushedLogMessageConstant                   = "project pushed"
	logFieldRepositoryConstant                 = "repository"
	logFieldStatusCodeConstant                 = "status_code"
	logFieldMessageConstant                    = "message"
	logFieldRemoteURLConstant                  = "remote_url"
	logFieldDirectoryConstant                  = "directory"
	logFieldAttemptsConstant                   = "attempts"
)

var pushAuthenticationMarkers = []string{
	"authentication failed",
	"could not read username",
	"could not read password",
	"permission denied",
	"invalid username or password",
	"returned error: 401",
	"returned error: 403",
}

// RepositoryCreator creates hosted repositories.
type RepositoryCreator interface {
	CreateRepository(executionContext context.Context, request githubapi.CreateRepositoryRequest) (githubapi.CreateRepositoryResult, error)
}

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Configuration controls repository naming and the local git sequence. Zero values select defaults.
type Configuration struct {
	Owner           string
	WebBaseURL      string
	RemoteProtocol  gitrepo.RemoteProtocol
	Private         bool
	MaxNameAttempts int
	CollisionSuffix string
	CommitMessage   string
	Branch          string
	RemoteName      string
	MaxPushAttempts int
	PushBackoff     time.Duration
}

// Dependencies wires the collaborators used by Publisher.
type Dependencies struct {
	Creator    RepositoryCreator
	Executor   GitExecutor
	FileSystem filesystem.FileSystem
	Logger     *zap.Logger
	Sleeper    retry.Sleeper
}

// Publication describes a successfully published project.
type Publication struct {
	RepositoryName string
	RemoteURL      string
	Created        bool
	NameAttempts   int
	PushAttempts   int
}

// Publisher creates a hosted repository for a project folder and pushes its contents.
type Publisher struct {
	creator       RepositoryCreator
	executor      GitExecutor
	fileSystem    filesystem.FileSystem
	logger        *zap.Logger
	configuration Configuration
	host          string
	pushRetrier   *retry.Retrier
}

// NewPublisher validates dependencies, applies configuration defaults and constructs a Publisher.
func NewPublisher(dependencies Dependencies, configuration Configuration) (*Publisher, error) {
	if dependencies.Creator == nil {
		return nil, ErrCreatorNotConfigured
	}
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	resolvedConfiguration := applyDefaults(configuration)
	host, hostError := gitrepo.HostFromWebBaseURL(resolvedConfiguration.WebBaseURL)
	if hostError != nil {
		return nil, hostError
	}
	remoteProtocol, protocolError := gitrepo.ParseRemoteProtocol(string(resolvedConfiguration.RemoteProtocol))
	if protocolError != nil {
		return nil, protocolError
	}
	resolvedConfiguration.RemoteProtocol = remoteProtocol

	pushPolicy := retry.Policy{
		MaxAttempts:    resolvedConfiguration.MaxPushAttempts,
		InitialBackoff: resolvedConfiguration.PushBackoff,
		MaxBackoff:     resolvedConfiguration.PushBackoff,
		Multiplier:     1,
	}

	return &Publisher{
		creator:       dependencies.Creator,
		executor:      dependencies.Executor,
		fileSystem:    dependencies.FileSystem,
		logger:        logger,
		configuration: resolvedConfiguration,
		host:          host,
		pushRetrier:   retry.NewRetrier(pushPolicy, dependencies.Sleeper, logger),
	}, nil
}

// Publish creates a repository named after title and pushes projectDirectory to it.
func (publisher *Publisher) Publish(executionContext context.Context, projectDirectory string, title string) (Publication, error) {
	repositoryName, sanitizeError := SanitizeRepositoryName(title)
	if sanitizeError != nil {
		return Publication{}, sanitizeError
	}

	creation, creationError := publisher.createRepository(executionContext, repositoryName)
	if creationError != nil {
		return Publication{}, creationError
	}

	owner := strings.TrimSpace(creation.owner)
	if len(owner) == 0 {
		owner = strings.TrimSpace(publisher.configuration.Owner)
	}
	if len(owner) == 0 {
		return Publication{}, ErrOwnerNotConfigured
	}

	remoteURL, remoteError := gitrepo.FormatRemoteURL(gitrepo.RemoteURL{
		Protocol:   publisher.configuration.RemoteProtocol,
		Host:       publisher.host,
		Owner:      owner,
		Repository: creation.name,
	})
	if remoteError != nil {
		return Publication{}, fmt.Errorf(remoteURLErrorTemplateConstant, creation.name, remoteError)
	}

	pushAttempts, pushError := publisher.pushWithRetry(executionContext, projectDirectory, creation.name, remoteURL)
	if pushError != nil {
		return Publication{}, pushError
	}

	publisher.logger.Info(pushedLogMessageConstant,
		zap.String(logFieldRepositoryConstant, creation.name),
		zap.String(logFieldRemoteURLConstant, remoteURL),
		zap.Int(logFieldAttemptsConstant, pushAttempts),
	)
	return Publication{
		RepositoryName: creation.name,
		RemoteURL:      remoteURL,
		Created:        creation.created,
		NameAttempts:   creation.attempts,
		PushAttempts:   pushAttempts,
	}, nil
}

type repositoryCreation struct {
	name     string
	owner    string
	created  bool
	attempts int
}

func (publisher *Publisher) createRepository(executionContext context.Context, repositoryName string) (repositoryCreation, error) {
	candidateName := repositoryName
	attemptedNames := make([]string, 0, publisher.configuration.MaxNameAttempts)

	for attempt := 1; attempt <= publisher.configuration.MaxNameAttempts; attempt++ {
		attemptedNames = append(attemptedNames, candidateName)
		result, creationError := publisher.creator.CreateRepository(executionContext, githubapi.CreateRepositoryRequest{
			Name:    candidateName,
			Private: publisher.configuration.Private,
		})
		if creationError != nil {
			return repositoryCreation{}, fmt.Errorf(createRepositoryErrorTemplateConstant, candidateName, creationError)
		}

		switch result.Status {
		case githubapi.CreationStatusCreated:
			createdName := candidateName
			if len(result.Repository.Name) > 0 {
				createdName = result.Repository.Name
			}
			publisher.logger.Info(repositoryCreatedLogMessageConstant, zap.String(logFieldRepositoryConstant, createdName))
			return repositoryCreation{name: createdName, owner: result.Repository.OwnerLogin, created: true, attempts: attempt}, nil
		case githubapi.CreationStatusNameTaken:
			publisher.logger.Warn(repositoryExistsLogMessageConstant,
				zap.String(logFieldRepositoryConstant, candidateName),
				zap.String(logFieldMessageConstant, result.Message),
			)
			candidateName += publisher.configuration.CollisionSuffix
		default:
			publisher.logger.Error(repositoryRejectedLogMessageConstant,
				zap.String(logFieldRepositoryConstant, candidateName),
				zap.Int(logFieldStatusCodeConstant, result.StatusCode),
				zap.String(logFieldMessageConstant, result.Message),
			)
			return repositoryCreation{name: candidateName, attempts: attempt}, nil
		}
	}

	return repositoryCreation{}, NameConflictError{AttemptedNames: attemptedNames}
}

func (publisher *Publisher) pushWithRetry(executionContext context.Context, projectDirectory string, repositoryName string, remoteURL string) (int, error) {
	ownsMetadata := !publisher.hasGitMetadata(projectDirectory)
	operationName := fmt.Sprintf(pushOperationTemplateConstant, repositoryName)
	attempts, runError := publisher.pushRetrier.Run(executionContext, operationName, func(attemptContext context.Context, attempt int) error {
		if attempt > 1 && !ownsMetadata {
			return publisher.pushBranch(attemptContext, projectDirectory)
		}
		if attempt > 1 {
			if wipeError := publisher.removeGitMetadata(projectDirectory); wipeError != nil {
				return retry.Permanent(wipeError)
			}
		}
		if prepareError := publisher.prepareLocalRepository(attemptContext, projectDirectory, remoteURL); prepareError != nil {
			return retry.Permanent(prepareError)
		}
		return publisher.pushBranch(attemptContext, projectDirectory)
	})
	if runError == nil {
		return attempts, nil
	}

	if contextError := executionContext.Err(); contextError != nil {
		return attempts, contextError
	}

	var failedPush pushFailure
	if errors.As(runError, &failedPush) && ownsMetadata {
		if wipeError := publisher.removeGitMetadata(projectDirectory); wipeError != nil {
			publisher.logger.Warn(gitMetadataRemovalFailedLogMessageConstant, zap.Error(wipeError))
		}
	}

	var exhaustedError retry.ExhaustedError
	if errors.As(runError, &exhaustedError) {
		return attempts, PushError{RepositoryName: repositoryName, Attempts: attempts, Cause: unwrapPushFailure(exhaustedError.Cause)}
	}
	return attempts, unwrapPushFailure(runError)
}

func (publisher *Publisher) prepareLocalRepository(executionContext context.Context, projectDirectory string, remoteURL string) error {
	configuration := publisher.configuration
	preparationSteps := [][]string{
		{"init"},
		{"add", "."},
		{"commit", "-m", configuration.CommitMessage},
	}
	for _, arguments := range preparationSteps {
		if _, stepError := publisher.git(executionContext, projectDirectory, arguments...); stepError != nil {
			return stepError
		}
	}

	if _, addError := publisher.git(executionContext, projectDirectory, "remote", "add", configuration.RemoteName, remoteURL); addError != nil {
		publisher.logger.Warn(remoteAddFailedLogMessageConstant,
			zap.String(logFieldDirectoryConstant, projectDirectory),
			zap.String(logFieldRemoteURLConstant, remoteURL),
			zap.Error(addError),
		)
		if _, setURLError := publisher.git(executionContext, projectDirectory, "remote", "set-url", configuration.RemoteName, remoteURL); setURLError != nil {
			return setURLError
		}
	}

	_, branchError := publisher.git(executionContext, projectDirectory, "branch", "-M", configuration.Branch)
	return branchError
}

// pushBranch marks every failure as a pushFailure so only push errors can trigger metadata removal.
func (publisher *Publisher) pushBranch(executionContext context.Context, projectDirectory string) error {
	configuration := publisher.configuration
	_, pushError := publisher.git(executionContext, projectDirectory, "push", "-u", configuration.RemoteName, configuration.Branch)
	if pushError == nil {
		return nil
	}
	if IsAuthenticationFailure(pushError) {
		return retry.Permanent(pushFailure{cause: fmt.Errorf(pushAuthenticationTemplateConstant, ErrPushAuthentication, pushError)})
	}
	return pushFailure{cause: pushError}
}

func (publisher *Publisher) git(executionContext context.Context, workingDirectory string, arguments ...string) (execshell.ExecutionResult, error) {
	return publisher.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     workingDirectory,
		EnvironmentVariables: map[string]string{terminalPromptVariableConstant: terminalPromptDisabledConstant},
	})
}

// hasGitMetadata treats any Stat outcome other than "does not exist" as present so an unreadable .git is never removed.
func (publisher *Publisher) hasGitMetadata(projectDirectory string) bool {
	_, statError := publisher.fileSystem.Stat(filepath.Join(projectDirectory, gitMetadataDirectoryNameConstant))
	return !errors.Is(statError, fs.ErrNotExist)
}

func (publisher *Publisher) removeGitMetadata(projectDirectory string) error {
	gitMetadataPath := filepath.Join(projectDirectory, gitMetadataDirectoryNameConstant)
	if removeError := publisher.fileSystem.RemoveAll(gitMetadataPath); removeError != nil {
		return fmt.Errorf(wipeErrorTemplateConstant, gitMetadataPath, removeError)
	}
	publisher.logger.Debug(gitMetadataRemovedLogMessageConstant, zap.String(logFieldDirectoryConstant, projectDirectory))
	return nil
}

// IsAuthenticationFailure reports whether a failed git command's output indicates rejected credentials.
func IsAuthenticationFailure(commandError error) bool {
	var failedError execshell.CommandFailedError
	if !errors.As(commandError, &failedError) {
		return false
	}
	standardError := strings.ToLower(failedError.Result.StandardError)
	for _, marker := range pushAuthenticationMarkers {
		if strings.Contains(standardError, marker) {
			return true
		}
	}
	return false
}

func applyDefaults(configuration Configuration) Configuration {
	if len(strings.TrimSpace(configuration.WebBaseURL)) == 0 {
		configuration.WebBaseURL = defaultWebBaseURLConstant
	}
	if configuration.MaxNameAttempts < 1 {
		configuration.MaxNameAttempts = defaultMaxNameAttemptsConstant
	}
	if len(configuration.CollisionSuffix) == 0 {
		configuration.CollisionSuffix = defaultCollisionSuffixConstant
	}
	if len(strings.TrimSpace(configuration.CommitMessage)) == 0 {
		configuration.CommitMessage = defaultCommitMessageConstant
	}
	if len(strings.TrimSpace(configuration.Branch)) == 0 {
		configuration.Branch = defaultBranchConstant
	}
	if len(strings.TrimSpace(configuration.RemoteName)) == 0 {
		configuration.RemoteName = defaultRemoteNameConstant
	}
	if configuration.MaxPushAttempts < 1 {
		configuration.MaxPushAttempts = defaultMaxPushAttemptsConstant
	}
	return configuration
}
