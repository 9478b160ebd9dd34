package pipeline

import (
	"context"

	"github.com/temirov/studentpub/internal/classifier"
	"github.com/temirov/studentpub/internal/publisher"
	"github.com/temirov/studentpub/internal/readme"
	"github.com/temirov/studentpub/internal/scanner"
)

// ProjectScanner discovers candidate project directories.
type ProjectScanner interface {
	Scan(baseDirectory string, publishedProjects scanner.PublishedProjects) ([]string, error)
}

// ProjectClassifier selects the files describing a project.
type ProjectClassifier interface {
	ClassifyProject(projectDirectory string) (classifier.Selection, error)
}

// ReadmeGenerator produces a README and title for a project.
type ReadmeGenerator interface {
	Generate(executionContext context.Context, request readme.Request) (readme.Result, error)
}

// ProjectPublisher pushes a project folder to a new hosted repository.
type ProjectPublisher interface {
	Publish(executionContext context.Context, projectDirectory string, title string) (publisher.Publication, error)
}

// Options configures a single run.
type Options struct {
	BaseDirectory string
	LedgerFile    string
}

// Project is a candidate folder moving through the pipeline.
type Project struct {
	Directory     string
	OriginalName  string
	CodeFiles     []string
	DocumentFiles []string
	Title         string
	ReadmeContent string
}

// PublishedProject records a project pushed during the run.
type PublishedProject struct {
	Directory      string
	Title          string
	RepositoryName string
	RemoteURL      string
}

// ProjectFailure records a project that could not be published; it stays unrecorded and is retried next run.
type ProjectFailure struct {
	Directory string
	Err       error
}

// Summary describes the outcome of a run.
type Summary struct {
	Candidates          int
	PreviouslyPublished int
	Completed           int
	Published           []PublishedProject
	Failures            []ProjectFailure
}

// Candidate is a pending project and the files that would describe it.
type Candidate struct {
	Directory string
	Selection classifier.Selection
}
