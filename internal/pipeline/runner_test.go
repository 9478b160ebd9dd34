package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/studentpub/internal/classifier"
	"github.com/temirov/studentpub/internal/filesystem"
	"github.com/temirov/studentpub/internal/githubapi"
	"github.com/temirov/studentpub/internal/pipeline"
	"github.com/temirov/studentpub/internal/publisher"
	"github.com/temirov/studentpub/internal/readme"
	"github.com/temirov/studentpub/internal/scanner"
)

const (
	blinkProjectNameConstant     = "1. Blink"
	servoProjectNameConstant     = "2. Servo Sweep"
	ledgerFileNameConstant       = "pushed_folder.txt"
	readmeFileNameConstant       = "README.md"
	directoryPermissionsConstant = 0o755
	filePermissionsConstant      = 0o644
)

type stubGenerator struct {
	failures map[string]error
	requests []readme.Request
}

func (generator *stubGenerator) Generate(_ context.Context, request readme.Request) (readme.Result, error) {
	generator.requests = append(generator.requests, request)
	if failure, exists := generator.failures[request.ProjectName]; exists {
		return readme.Result{}, failure
	}
	title := readme.StripNumericPrefix(request.ProjectName)
	return readme.Result{Document: readme.Document{Title: title, Body: "# " + title + "\n"}, Title: title, Attempts: 1}, nil
}

type stubPublisher struct {
	failures     map[string]error
	publications []string
}

func (projectPublisher *stubPublisher) Publish(_ context.Context, projectDirectory string, title string) (publisher.Publication, error) {
	if failure, exists := projectPublisher.failures[filepath.Base(projectDirectory)]; exists {
		return publisher.Publication{}, failure
	}
	repositoryName, sanitizeError := publisher.SanitizeRepositoryName(title)
	if sanitizeError != nil {
		return publisher.Publication{}, sanitizeError
	}
	projectPublisher.publications = append(projectPublisher.publications, projectDirectory)
	return publisher.Publication{RepositoryName: repositoryName, RemoteURL: "https://github.com/student/" + repositoryName + ".git"}, nil
}

type staticScanner struct {
	projectDirectories []string
	failure            error
}

func (projectScanner staticScanner) Scan(string, scanner.PublishedProjects) ([]string, error) {
	return projectScanner.projectDirectories, projectScanner.failure
}

type runnerFixture struct {
	baseDirectory string
	ledgerPath    string
	generator     *stubGenerator
	publisher     *stubPublisher
	observedLogs  *observer.ObservedLogs
	runner        *pipeline.Runner
}

func writeFixtureFile(testInstance *testing.T, contents string, segments ...string) string {
	testInstance.Helper()
	filePath := filepath.Join(segments...)
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(filePath), directoryPermissionsConstant))
	require.NoError(testInstance, os.WriteFile(filePath, []byte(contents), filePermissionsConstant))
	return filePath
}

type ledgerAppendFailingFileSystem struct {
	filesystem.OSFileSystem
	appendFailure error
	appendCalls   int
}

func (fileSystem *ledgerAppendFailingFileSystem) AppendFile(string, []byte, os.FileMode) error {
	fileSystem.appendCalls++
	return fileSystem.appendFailure
}

func newRunnerFixture(testInstance *testing.T, projectScanner pipeline.ProjectScanner) runnerFixture {
	testInstance.Helper()
	return newRunnerFixtureWithFileSystem(testInstance, projectScanner, filesystem.OSFileSystem{})
}

func newRunnerFixtureWithFileSystem(testInstance *testing.T, projectScanner pipeline.ProjectScanner, fileSystem filesystem.FileSystem) runnerFixture {
	testInstance.Helper()
	baseDirectory := testInstance.TempDir()
	writeFixtureFile(testInstance, "void loop() {}", baseDirectory, blinkProjectNameConstant, "blink.ino")
	writeFixtureFile(testInstance, "import time", baseDirectory, servoProjectNameConstant, "sweep.py")
	writeFixtureFile(testInstance, "%PDF", baseDirectory, servoProjectNameConstant, "wiring.pdf")

	if projectScanner == nil {
		projectScanner = scanner.NewScanner(nil, scanner.Configuration{})
	}

	observedCore, observedLogs := observer.New(zapcore.InfoLevel)
	generator := &stubGenerator{}
	projectPublisher := &stubPublisher{}
	runner, runnerError := pipeline.NewRunner(pipeline.Dependencies{
		Scanner:    projectScanner,
		Classifier: classifier.NewClassifier(nil, classifier.Configuration{}),
		Generator:  generator,
		Publisher:  projectPublisher,
		FileSystem: fileSystem,
		Logger:     zap.New(observedCore),
	})
	require.NoError(testInstance, runnerError)

	return runnerFixture{
		baseDirectory: baseDirectory,
		ledgerPath:    filepath.Join(testInstance.TempDir(), ledgerFileNameConstant),
		generator:     generator,
		publisher:     projectPublisher,
		observedLogs:  observedLogs,
		runner:        runner,
	}
}

func (fixture runnerFixture) options() pipeline.Options {
	return pipeline.Options{BaseDirectory: fixture.baseDirectory, LedgerFile: fixture.ledgerPath}
}

func (fixture runnerFixture) projectPath(projectName string) string {
	return filepath.Join(fixture.baseDirectory, projectName)
}

func TestRunnerRunPublishesEveryProject(testInstance *testing.T) {
	fixture := newRunnerFixture(testInstance, nil)

	summary, runError := fixture.runner.Run(context.Background(), fixture.options())
	require.NoError(testInstance, runError)
	require.Equal(testInstance, 2, summary.Candidates)
	require.Equal(testInstance, 0, summary.PreviouslyPublished)
	require.Equal(testInstance, 2, summary.Completed)
	require.Empty(testInstance, summary.Failures)
	require.Equal(testInstance, []pipeline.PublishedProject{
		{Directory: fixture.projectPath(blinkProjectNameConstant), Title: "Blink", RepositoryName: "Blink", RemoteURL: "https://github.com/student/Blink.git"},
		{Directory: fixture.projectPath(servoProjectNameConstant), Title: "Servo Sweep", RepositoryName: "Servo-Sweep", RemoteURL: "https://github.com/student/Servo-Sweep.git"},
	}, summary.Published)

	require.Len(testInstance, fixture.generator.requests, 2)
	require.Equal(testInstance, []string{filepath.Join(fixture.projectPath(servoProjectNameConstant), "sweep.py")}, fixture.generator.requests[1].CodeFiles)
	require.Equal(testInstance, []string{filepath.Join(fixture.projectPath(servoProjectNameConstant), "wiring.pdf")}, fixture.generator.requests[1].DocumentFiles)

	readmeContents, readError := os.ReadFile(filepath.Join(fixture.projectPath(blinkProjectNameConstant), readmeFileNameConstant))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "# Blink\n", string(readmeContents))

	ledgerContents, ledgerError := os.ReadFile(fixture.ledgerPath)
	require.NoError(testInstance, ledgerError)
	require.Equal(testInstance, fixture.projectPath(blinkProjectNameConstant)+"\n"+fixture.projectPath(servoProjectNameConstant)+"\n", string(ledgerContents))

	require.Equal(testInstance, 1, fixture.observedLogs.FilterMessage("[1] generating README").Len())
	require.Equal(testInstance, 1, fixture.observedLogs.FilterMessage("[2] generating README").Len())
}

func TestRunnerRunIsIdempotent(testInstance *testing.T) {
	fixture := newRunnerFixture(testInstance, nil)

	_, firstRunError := fixture.runner.Run(context.Background(), fixture.options())
	require.NoError(testInstance, firstRunError)

	summary, secondRunError := fixture.runner.Run(context.Background(), fixture.options())
	require.NoError(testInstance, secondRunError)
	require.Equal(testInstance, 0, summary.Candidates)
	require.Equal(testInstance, 2, summary.PreviouslyPublished)
	require.Equal(testInstance, 2, summary.Completed)
	require.Len(testInstance, fixture.generator.requests, 2)
	require.Len(testInstance, fixture.publisher.publications, 2)
}

func TestRunnerRunCountsFromLedgerSize(testInstance *testing.T) {
	fixture := newRunnerFixture(testInstance, nil)
	require.NoError(testInstance, os.WriteFile(fixture.ledgerPath, []byte("/elsewhere/7. Old\n/elsewhere/8. Older\n"), filePermissionsConstant))

	summary, runError := fixture.runner.Run(context.Background(), fixture.options())
	require.NoError(testInstance, runError)
	require.Equal(testInstance, 2, summary.PreviouslyPublished)
	require.Equal(testInstance, 4, summary.Completed)
	require.Equal(testInstance, 1, fixture.observedLogs.FilterMessage("[3] generating README").Len())
	require.Equal(testInstance, 1, fixture.observedLogs.FilterMessage("[4] generating README").Len())
}

func TestRunnerRunStopsWhenLedgerAppendFails(testInstance *testing.T) {
	appendFailure := errors.New("disk full")
	fileSystem := &ledgerAppendFailingFileSystem{appendFailure: appendFailure}
	fixture := newRunnerFixtureWithFileSystem(testInstance, nil, fileSystem)

	summary, runError := fixture.runner.Run(context.Background(), fixture.options())
	require.ErrorIs(testInstance, runError, appendFailure)
	require.Contains(testInstance, runError.Error(), "unable to record "+fixture.projectPath(blinkProjectNameConstant)+" as published")

	require.Equal(testInstance, 1, fileSystem.appendCalls)
	require.Len(testInstance, fixture.generator.requests, 1)
	require.Equal(testInstance, []string{fixture.projectPath(blinkProjectNameConstant)}, fixture.publisher.publications)
	require.Equal(testInstance, 0, summary.Completed)
	require.Empty(testInstance, summary.Published)
	require.Empty(testInstance, summary.Failures)
	require.Zero(testInstance, fixture.observedLogs.FilterMessage("[2] generating README").Len())
}

func TestRunnerRunReplacesExistingReadme(testInstance *testing.T) {
	fixture := newRunnerFixture(testInstance, nil)
	readmePath := writeFixtureFile(testInstance, "stale", fixture.projectPath(blinkProjectNameConstant), readmeFileNameConstant)

	_, runError := fixture.runner.Run(context.Background(), fixture.options())
	require.NoError(testInstance, runError)

	readmeContents, readError := os.ReadFile(readmePath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "# Blink\n", string(readmeContents))
	require.Equal(testInstance, 1, fixture.observedLogs.FilterMessage("existing README.md deleted").Len())
}

func TestRunnerRunContinuesAfterProjectFailure(testInstance *testing.T) {
	fixture := newRunnerFixture(testInstance, nil)
	generationFailure := readme.GenerationError{ProjectName: blinkProjectNameConstant, Attempts: 5, Cause: errors.New("timeout")}
	fixture.generator.failures = map[string]error{blinkProjectNameConstant: generationFailure}

	summary, runError := fixture.runner.Run(context.Background(), fixture.options())
	require.NoError(testInstance, runError)
	require.Equal(testInstance, 1, summary.Completed)
	require.Len(testInstance, summary.Failures, 1)
	require.Equal(testInstance, fixture.projectPath(blinkProjectNameConstant), summary.Failures[0].Directory)
	require.ErrorAs(testInstance, summary.Failures[0].Err, &readme.GenerationError{})
	require.Equal(testInstance, []string{fixture.projectPath(servoProjectNameConstant)}, fixture.publisher.publications)

	ledgerContents, ledgerError := os.ReadFile(fixture.ledgerPath)
	require.NoError(testInstance, ledgerError)
	require.Equal(testInstance, fixture.projectPath(servoProjectNameConstant)+"\n", string(ledgerContents))
}

func TestRunnerRunAbortsOnAuthenticationFailure(testInstance *testing.T) {
	testCases := []struct {
		name      string
		configure func(fixture runnerFixture)
		target    error
	}{
		{
			name: "completion_credentials_rejected",
			configure: func(fixture runnerFixture) {
				fixture.generator.failures = map[string]error{
					blinkProjectNameConstant: readme.GenerationError{ProjectName: blinkProjectNameConstant, Attempts: 1, Permanent: true, Authentication: true, Cause: errors.New("401")},
				}
			},
			target: readme.ErrAuthentication,
		},
		{
			name: "hosting_token_rejected",
			configure: func(fixture runnerFixture) {
				fixture.publisher.failures = map[string]error{
					blinkProjectNameConstant: githubapi.OperationError{Operation: "CreateRepository", Cause: githubapi.ErrUnauthorized},
				}
			},
			target: githubapi.ErrUnauthorized,
		},
		{
			name: "push_credentials_rejected",
			configure: func(fixture runnerFixture) {
				fixture.publisher.failures = map[string]error{blinkProjectNameConstant: publisher.ErrPushAuthentication}
			},
			target: publisher.ErrPushAuthentication,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newRunnerFixture(testInstance, nil)
			testCase.configure(fixture)

			summary, runError := fixture.runner.Run(context.Background(), fixture.options())
			require.ErrorIs(testInstance, runError, testCase.target)
			require.Equal(testInstance, 0, summary.Completed)
			require.Empty(testInstance, fixture.publisher.publications)
			require.LessOrEqual(testInstance, len(fixture.generator.requests), 1)
		})
	}
}

func TestRunnerRunReportsMissingProjectDirectory(testInstance *testing.T) {
	missingDirectory := filepath.Join(testInstance.TempDir(), "9. Vanished")
	fixture := newRunnerFixture(testInstance, staticScanner{projectDirectories: []string{missingDirectory}})

	summary, runError := fixture.runner.Run(context.Background(), fixture.options())
	require.NoError(testInstance, runError)
	require.Len(testInstance, summary.Failures, 1)
	require.ErrorIs(testInstance, summary.Failures[0].Err, pipeline.ErrProjectDirectoryMissing)
	require.Empty(testInstance, fixture.generator.requests)
}

func TestRunnerRunReturnsScanFailure(testInstance *testing.T) {
	fixture := newRunnerFixture(testInstance, staticScanner{failure: scanner.ErrBaseDirectoryInvalid})

	_, runError := fixture.runner.Run(context.Background(), fixture.options())
	require.ErrorIs(testInstance, runError, scanner.ErrBaseDirectoryInvalid)
}

func TestRunnerRunStopsWhenContextCancelled(testInstance *testing.T) {
	fixture := newRunnerFixture(testInstance, nil)
	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	summary, runError := fixture.runner.Run(cancelledContext, fixture.options())
	require.ErrorIs(testInstance, runError, context.Canceled)
	require.Equal(testInstance, 2, summary.Candidates)
	require.Empty(testInstance, fixture.generator.requests)
}

func TestRunnerPreview(testInstance *testing.T) {
	fixture := newRunnerFixture(testInstance, nil)

	candidates, previewError := fixture.runner.Preview(fixture.options())
	require.NoError(testInstance, previewError)
	require.Len(testInstance, candidates, 2)
	require.Equal(testInstance, fixture.projectPath(blinkProjectNameConstant), candidates[0].Directory)
	require.Equal(testInstance, []string{filepath.Join(fixture.projectPath(blinkProjectNameConstant), "blink.ino")}, candidates[0].Selection.CodeFiles)
	require.Empty(testInstance, fixture.generator.requests)
	require.Empty(testInstance, fixture.publisher.publications)

	_, statError := os.Stat(fixture.ledgerPath)
	require.True(testInstance, errors.Is(statError, os.ErrNotExist))
}

func TestNewRunnerValidatesDependencies(testInstance *testing.T) {
	_, runnerError := pipeline.NewRunner(pipeline.Dependencies{})
	require.ErrorIs(testInstance, runnerError, pipeline.ErrScannerNotConfigured)

	_, classifierError := pipeline.NewRunner(pipeline.Dependencies{Scanner: staticScanner{}})
	require.ErrorIs(testInstance, classifierError, pipeline.ErrClassifierNotConfigured)
}

func TestRunnerRunRequiresGeneratorAndPublisher(testInstance *testing.T) {
	previewRunner, runnerError := pipeline.NewRunner(pipeline.Dependencies{
		Scanner:    staticScanner{},
		Classifier: classifier.NewClassifier(nil, classifier.Configuration{}),
		FileSystem: filesystem.OSFileSystem{},
	})
	require.NoError(testInstance, runnerError)

	_, runError := previewRunner.Run(context.Background(), pipeline.Options{})
	require.ErrorIs(testInstance, runError, pipeline.ErrGeneratorNotConfigured)

	candidates, previewError := previewRunner.Preview(pipeline.Options{LedgerFile: filepath.Join(testInstance.TempDir(), ledgerFileNameConstant)})
	require.NoError(testInstance, previewError)
	require.Empty(testInstance, candidates)
}
