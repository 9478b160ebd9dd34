package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/studentpub/internal/filesystem"
	"github.com/temirov/studentpub/internal/githubapi"
	"github.com/temirov/studentpub/internal/ledger"
	"github.com/temirov/studentpub/internal/publisher"
	"github.com/temirov/studentpub/internal/readme"
)

const (
	readmeFileNameConstant              = "README.md"
	readmeFilePermissionsConstant       = 0o644
	projectDirectoryMissingMessage      = "project directory does not exist"
	scannerMissingMessageConstant       = "pipeline scanner not configured"
	classifierMissingMessageConstant    = "pipeline classifier not configured"
	generatorMissingMessageConstant     = "pipeline README generator not configured"
	publisherMissingMessageConstant     = "pipeline publisher not configured"
	fileSystemMissingMessageConstant    = "pipeline filesystem not configured"
	missingDirectoryTemplateConstant    = "%w: %s"
	ledgerLoadTemplateConstant          = "unable to load ledger: %w"
	scanTemplateConstant                = "unable to scan for projects: %w"
	ledgerAppendTemplateConstant        = "unable to record %s as published: %w"
	authenticationAbortTemplateConstant = "aborting run at %s: %w"
	classifyTemplateConstant            = "unable to classify %s: %w"
	removeReadmeTemplateConstant        = "unable to remove existing README in %s: %w"
	writeReadmeTemplateConstant         = "unable to write README in %s: %w"
	generatingLogTemplateConstant       = "[%d] generating README"
	processingLogMessageConstant        = "processing project"
	candidatesLogMessageConstant        = "projects pending publication"
	readmeDeletedLogMessageConstant     = "existing README.md deleted"
	readmeCreatedLogMessageConstant     = "README.md created"
	markedPublishedLogMessageConstant   = "project marked as pushed"
	projectFailedLogMessageConstant     = "project failed, continuing with next"
	logFieldProjectConstant             = "project"
	logFieldDirectoryConstant           = "directory"
	logFieldTitleConstant               = "title"
	logFieldCompletedConstant           = "completed"
	logFieldCandidatesConstant          = "candidates"
	logFieldPreviouslyPublishedConstant = "previously_published"
)

var (
	// ErrProjectDirectoryMissing indicates a scanned project directory disappeared before processing.
	ErrProjectDirectoryMissing = errors.New(projectDirectoryMissingMessage)
	// ErrScannerNotConfigured indicates the runner was constructed without a scanner.
	ErrScannerNotConfigured = errors.New(scannerMissingMessageConstant)
	// ErrClassifierNotConfigured indicates the runner was constructed without a classifier.
	ErrClassifierNotConfigured = errors.New(classifierMissingMessageConstant)
	// ErrGeneratorNotConfigured indicates the runner was constructed without a README generator.
	ErrGeneratorNotConfigured = errors.New(generatorMissingMessageConstant)
	// ErrPublisherNotConfigured indicates the runner was constructed without a publisher.
	ErrPublisherNotConfigured = errors.New(publisherMissingMessageConstant)
	// ErrFileSystemNotConfigured indicates the runner was constructed without a filesystem.
	ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)
)

// Dependencies wires the collaborators used by Runner.
type Dependencies struct {
	Scanner    ProjectScanner
	Classifier ProjectClassifier
	Generator  ReadmeGenerator
	Publisher  ProjectPublisher
	FileSystem filesystem.FileSystem
	Logger     *zap.Logger
}

// Runner drives scanning, README generation and publication for every pending project, one at a time.
type Runner struct {
	scanner    ProjectScanner
	classifier ProjectClassifier
	generator  ReadmeGenerator
	publisher  ProjectPublisher
	fileSystem filesystem.FileSystem
	logger     *zap.Logger
}

// NewRunner validates dependencies and constructs a Runner.
// Generator and Publisher may be omitted when only Preview is used.
func NewRunner(dependencies Dependencies) (*Runner, error) {
	switch {
	case dependencies.Scanner == nil:
		return nil, ErrScannerNotConfigured
	case dependencies.Classifier == nil:
		return nil, ErrClassifierNotConfigured
	case dependencies.FileSystem == nil:
		return nil, ErrFileSystemNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		scanner:    dependencies.Scanner,
		classifier: dependencies.Classifier,
		generator:  dependencies.Generator,
		publisher:  dependencies.Publisher,
		fileSystem: dependencies.FileSystem,
		logger:     logger,
	}, nil
}

// Run publishes every pending project under options.BaseDirectory and records each success in the ledger.
// Per-project failures are collected in the summary; authentication, ledger, scan and cancellation
// failures end the run and are returned alongside the partial summary.
func (runner *Runner) Run(executionContext context.Context, options Options) (Summary, error) {
	if runner.generator == nil {
		return Summary{}, ErrGeneratorNotConfigured
	}
	if runner.publisher == nil {
		return Summary{}, ErrPublisherNotConfigured
	}

	publishedLedger, loadError := ledger.Load(runner.fileSystem, options.LedgerFile)
	if loadError != nil {
		return Summary{}, fmt.Errorf(ledgerLoadTemplateConstant, loadError)
	}

	summary := Summary{PreviouslyPublished: publishedLedger.Size(), Completed: publishedLedger.Size()}

	projectDirectories, scanError := runner.scanner.Scan(options.BaseDirectory, publishedLedger)
	if scanError != nil {
		return summary, fmt.Errorf(scanTemplateConstant, scanError)
	}
	summary.Candidates = len(projectDirectories)
	runner.logger.Info(candidatesLogMessageConstant,
		zap.Int(logFieldCandidatesConstant, summary.Candidates),
		zap.Int(logFieldPreviouslyPublishedConstant, summary.PreviouslyPublished),
	)

	for _, projectDirectory := range projectDirectories {
		if contextError := executionContext.Err(); contextError != nil {
			return summary, contextError
		}

		publishedProject, processError := runner.processProject(executionContext, projectDirectory, summary.Completed)
		if processError != nil {
			if contextError := executionContext.Err(); contextError != nil {
				return summary, contextError
			}
			if isAuthenticationFailure(processError) {
				return summary, fmt.Errorf(authenticationAbortTemplateConstant, projectDirectory, processError)
			}
			runner.logger.Error(projectFailedLogMessageConstant,
				zap.String(logFieldDirectoryConstant, projectDirectory),
				zap.Error(processError),
			)
			summary.Failures = append(summary.Failures, ProjectFailure{Directory: projectDirectory, Err: processError})
			continue
		}

		if appendError := publishedLedger.Append(projectDirectory); appendError != nil {
			return summary, fmt.Errorf(ledgerAppendTemplateConstant, projectDirectory, appendError)
		}
		summary.Completed++
		summary.Published = append(summary.Published, publishedProject)
		runner.logger.Info(markedPublishedLogMessageConstant,
			zap.String(logFieldDirectoryConstant, projectDirectory),
			zap.Int(logFieldCompletedConstant, summary.Completed),
		)
	}

	return summary, nil
}

// Preview lists pending projects with their file selection without generating or publishing anything.
func (runner *Runner) Preview(options Options) ([]Candidate, error) {
	publishedLedger, loadError := ledger.Load(runner.fileSystem, options.LedgerFile)
	if loadError != nil {
		return nil, fmt.Errorf(ledgerLoadTemplateConstant, loadError)
	}

	projectDirectories, scanError := runner.scanner.Scan(options.BaseDirectory, publishedLedger)
	if scanError != nil {
		return nil, fmt.Errorf(scanTemplateConstant, scanError)
	}

	candidates := make([]Candidate, 0, len(projectDirectories))
	for _, projectDirectory := range projectDirectories {
		selection, classifyError := runner.classifier.ClassifyProject(projectDirectory)
		if classifyError != nil {
			return nil, fmt.Errorf(classifyTemplateConstant, projectDirectory, classifyError)
		}
		candidates = append(candidates, Candidate{Directory: projectDirectory, Selection: selection})
	}
	return candidates, nil
}

func (runner *Runner) processProject(executionContext context.Context, projectDirectory string, completedCount int) (PublishedProject, error) {
	project := Project{Directory: projectDirectory, OriginalName: filepath.Base(projectDirectory)}
	runner.logger.Info(processingLogMessageConstant, zap.String(logFieldDirectoryConstant, projectDirectory))

	if directoryError := runner.ensureDirectory(projectDirectory); directoryError != nil {
		return PublishedProject{}, directoryError
	}

	selection, classifyError := runner.classifier.ClassifyProject(projectDirectory)
	if classifyError != nil {
		return PublishedProject{}, fmt.Errorf(classifyTemplateConstant, projectDirectory, classifyError)
	}
	project.CodeFiles = selection.CodeFiles
	project.DocumentFiles = selection.DocumentFiles

	runner.logger.Info(fmt.Sprintf(generatingLogTemplateConstant, completedCount+1), zap.String(logFieldProjectConstant, project.OriginalName))
	generation, generationError := runner.generator.Generate(executionContext, readme.Request{
		ProjectName:   project.OriginalName,
		CodeFiles:     project.CodeFiles,
		DocumentFiles: project.DocumentFiles,
	})
	if generationError != nil {
		return PublishedProject{}, generationError
	}
	project.Title = generation.Title
	project.ReadmeContent = generation.Document.Body

	if writeError := runner.writeReadme(project); writeError != nil {
		return PublishedProject{}, writeError
	}

	publication, publishError := runner.publisher.Publish(executionContext, projectDirectory, project.Title)
	if publishError != nil {
		return PublishedProject{}, publishError
	}

	return PublishedProject{
		Directory:      projectDirectory,
		Title:          project.Title,
		RepositoryName: publication.RepositoryName,
		RemoteURL:      publication.RemoteURL,
	}, nil
}

func (runner *Runner) ensureDirectory(projectDirectory string) error {
	directoryInfo, statError := runner.fileSystem.Stat(projectDirectory)
	if statError != nil || !directoryInfo.IsDir() {
		return fmt.Errorf(missingDirectoryTemplateConstant, ErrProjectDirectoryMissing, projectDirectory)
	}
	return nil
}

func (runner *Runner) writeReadme(project Project) error {
	if directoryError := runner.ensureDirectory(project.Directory); directoryError != nil {
		return directoryError
	}

	readmePath := filepath.Join(project.Directory, readmeFileNameConstant)
	if _, statError := runner.fileSystem.Stat(readmePath); statError == nil {
		if removeError := runner.fileSystem.Remove(readmePath); removeError != nil {
			return fmt.Errorf(removeReadmeTemplateConstant, project.Directory, removeError)
		}
		runner.logger.Info(readmeDeletedLogMessageConstant, zap.String(logFieldProjectConstant, project.OriginalName))
	} else if !errors.Is(statError, fs.ErrNotExist) {
		return fmt.Errorf(removeReadmeTemplateConstant, project.Directory, statError)
	}

	if writeError := runner.fileSystem.WriteFile(readmePath, []byte(project.ReadmeContent), readmeFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(writeReadmeTemplateConstant, project.Directory, writeError)
	}
	runner.logger.Info(readmeCreatedLogMessageConstant,
		zap.String(logFieldProjectConstant, project.OriginalName),
		zap.String(logFieldTitleConstant, project.Title),
	)
	return nil
}

func isAuthenticationFailure(processError error) bool {
	return errors.Is(processError, readme.ErrAuthentication) ||
		errors.Is(processError, githubapi.ErrUnauthorized) ||
		errors.Is(processError, publisher.ErrPushAuthentication)
}
