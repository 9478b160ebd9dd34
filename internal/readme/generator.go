package readme

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/studentpub/internal/completion"
	"github.com/temirov/studentpub/internal/filesystem"
	"github.com/temirov/studentpub/internal/retry"
)

const (
	permanentFailureMessageConstant      = "README generation failed permanently"
	authenticationFailureMessageConstant = "completion API rejected the credentials"
	completerMissingMessageConstant      = "README generator completer not configured"
	fileSystemMissingMessageConstant     = "README generator filesystem not configured"
	retrierMissingMessageConstant        = "README generator retrier not configured"
	generationErrorTemplateConstant      = "README generation for %s failed after %d attempt(s): %v"
	generationOperationTemplateConstant  = "README generation for %s"
	headingMissingLogMessageConstant     = "completion response contained no heading"
	titleFallbackLogMessageConstant      = "using folder name as project title"
	generatedLogMessageConstant          = "README generated"
	logFieldProjectConstant              = "project"
	logFieldTitleConstant                = "title"
	logFieldAttemptsConstant             = "attempts"
)

var (
	// ErrPermanent marks generation failures that retrying cannot fix.
	ErrPermanent = errors.New(permanentFailureMessageConstant)
	// ErrAuthentication marks generation failures caused by rejected credentials.
	ErrAuthentication = errors.New(authenticationFailureMessageConstant)
	// ErrCompleterNotConfigured indicates the generator was constructed without a completer.
	ErrCompleterNotConfigured = errors.New(completerMissingMessageConstant)
	// ErrFileSystemNotConfigured indicates the generator was constructed without a filesystem.
	ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)
	// ErrRetrierNotConfigured indicates the generator was constructed without a retrier.
	ErrRetrierNotConfigured = errors.New(retrierMissingMessageConstant)
)

// GenerationError reports a README that could not be generated.
// It matches ErrPermanent and ErrAuthentication through errors.Is when applicable.
type GenerationError struct {
	ProjectName    string
	Attempts       int
	Permanent      bool
	Authentication bool
	Cause          error
}

// Error describes the failed generation.
func (generationError GenerationError) Error() string {
	return fmt.Sprintf(generationErrorTemplateConstant, generationError.ProjectName, generationError.Attempts, generationError.Cause)
}

// Unwrap exposes the final completion failure.
func (generationError GenerationError) Unwrap() error {
	return generationError.Cause
}

// Is reports whether the error belongs to the permanent or authentication classes.
func (generationError GenerationError) Is(target error) bool {
	switch target {
	case ErrPermanent:
		return generationError.Permanent || generationError.Authentication
	case ErrAuthentication:
		return generationError.Authentication
	default:
		return false
	}
}

// Request describes a project whose README should be generated.
type Request struct {
	ProjectName   string
	CodeFiles     []string
	DocumentFiles []string
}

// Result carries the generated README and the title derived from it.
type Result struct {
	Document Document
	Title    string
	Attempts int
}

// Dependencies wires the collaborators used by Generator.
type Dependencies struct {
	Completer       completion.Completer
	FileSystem      filesystem.FileSystem
	Retrier         *retry.Retrier
	Logger          *zap.Logger
	RefusalPrefixes []string
}

// Generator produces README documents through a completion API.
type Generator struct {
	completer       completion.Completer
	fileSystem      filesystem.FileSystem
	retrier         *retry.Retrier
	logger          *zap.Logger
	refusalPrefixes []string
}

// NewGenerator validates dependencies and constructs a Generator.
func NewGenerator(dependencies Dependencies) (*Generator, error) {
	if dependencies.Completer == nil {
		return nil, ErrCompleterNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if dependencies.Retrier == nil {
		return nil, ErrRetrierNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	refusalPrefixes := dependencies.RefusalPrefixes
	if refusalPrefixes == nil {
		refusalPrefixes = DefaultRefusalPrefixes
	}

	return &Generator{
		completer:       dependencies.Completer,
		fileSystem:      dependencies.FileSystem,
		retrier:         dependencies.Retrier,
		logger:          logger,
		refusalPrefixes: refusalPrefixes,
	}, nil
}

// Generate reads the project's code, asks the model for a README, and derives the project title.
func (generator *Generator) Generate(executionContext context.Context, request Request) (Result, error) {
	codeSections, readError := ReadCodeSections(generator.fileSystem, request.CodeFiles)
	if readError != nil {
		return Result{}, readError
	}
	prompt := BuildPrompt(request.ProjectName, request.DocumentFiles, codeSections)

	var rawResponse string
	attempts, runError := generator.retrier.Run(executionContext, fmt.Sprintf(generationOperationTemplateConstant, request.ProjectName), func(attemptContext context.Context, _ int) error {
		content, completeError := generator.completer.Complete(attemptContext, prompt)
		if completeError != nil {
			if completion.ClassifyError(completeError) != completion.FailureTransient {
				return retry.Permanent(completeError)
			}
			return completeError
		}
		rawResponse = content
		return nil
	})
	if runError != nil {
		if contextError := executionContext.Err(); contextError != nil {
			return Result{}, contextError
		}
		return Result{}, newGenerationError(request.ProjectName, attempts, runError)
	}

	document := ParseResponse(rawResponse)
	if len(document.Body) == 0 {
		generator.logger.Warn(headingMissingLogMessageConstant, zap.String(logFieldProjectConstant, request.ProjectName))
	}
	title := DeriveTitle(document, request.ProjectName, generator.refusalPrefixes)
	if title != strings.TrimSpace(document.Title) {
		generator.logger.Info(titleFallbackLogMessageConstant,
			zap.String(logFieldProjectConstant, request.ProjectName),
			zap.String(logFieldTitleConstant, title),
		)
	}

	generator.logger.Debug(generatedLogMessageConstant,
		zap.String(logFieldProjectConstant, request.ProjectName),
		zap.String(logFieldTitleConstant, title),
		zap.Int(logFieldAttemptsConstant, attempts),
	)
	return Result{Document: document, Title: title, Attempts: attempts}, nil
}

func newGenerationError(projectName string, attempts int, runError error) GenerationError {
	cause := runError
	var exhaustedError retry.ExhaustedError
	if errors.As(runError, &exhaustedError) {
		cause = exhaustedError.Cause
	}

	failureClass := completion.ClassifyError(cause)
	return GenerationError{
		ProjectName:    projectName,
		Attempts:       attempts,
		Permanent:      failureClass != completion.FailureTransient,
		Authentication: failureClass == completion.FailureAuthentication,
		Cause:          cause,
	}
}
