package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const (
	projectDirectoryPatternConstant      = `^\d+\.\s+.*`
	baseDirectoryInvalidMessageConstant  = "base directory is not a readable directory"
	baseDirectoryErrorTemplateConstant   = "%w: %s"
	resolveBaseDirectoryTemplateConstant = "unable to resolve base directory %s: %w"
	walkErrorTemplateConstant            = "unable to scan %s: %w"
	skippedDirectoryLogMessageConstant   = "skipping unreadable directory"
	candidateFoundLogMessageConstant     = "project candidate found"
	alreadyPublishedLogMessageConstant   = "project already published"
	scanCompletedLogMessageConstant      = "scan completed"
	logFieldPathConstant                 = "path"
	logFieldCandidateCountConstant       = "candidates"
	logFieldBaseDirectoryConstant        = "base_directory"
)

// DefaultExcludedMarkers lists the path fragments that disqualify a directory.
var DefaultExcludedMarkers = []string{"AIPoster"}

// DefaultSourceExtensions lists the file extensions that make a directory a project.
var DefaultSourceExtensions = []string{".c", ".cpp", ".ino", ".bas", ".py"}

// ErrBaseDirectoryInvalid indicates the base directory is missing or not a directory.
var ErrBaseDirectoryInvalid = errors.New(baseDirectoryInvalidMessageConstant)

var projectDirectoryPattern = regexp.MustCompile(projectDirectoryPatternConstant)

// PublishedProjects reports whether a project directory was already published.
type PublishedProjects interface {
	Contains(projectPath string) bool
}

// Configuration controls which directories qualify as projects.
type Configuration struct {
	ExcludedMarkers  []string
	SourceExtensions []string
}

// Scanner discovers unpublished project directories beneath a base directory.
type Scanner struct {
	logger           *zap.Logger
	excludedMarkers  []string
	sourceExtensions map[string]struct{}
}

// NewScanner constructs a Scanner. Empty configuration slices fall back to the defaults.
func NewScanner(logger *zap.Logger, configuration Configuration) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}

	excludedMarkers := nonEmptyValues(configuration.ExcludedMarkers)
	if configuration.ExcludedMarkers == nil {
		excludedMarkers = append([]string(nil), DefaultExcludedMarkers...)
	}

	sourceExtensions := configuration.SourceExtensions
	if len(nonEmptyValues(sourceExtensions)) == 0 {
		sourceExtensions = DefaultSourceExtensions
	}

	return &Scanner{
		logger:           logger,
		excludedMarkers:  excludedMarkers,
		sourceExtensions: normalizeExtensions(sourceExtensions),
	}
}

// IsProjectDirectoryName reports whether a directory name follows the "<number>. <title>" convention.
func IsProjectDirectoryName(directoryName string) bool {
	return projectDirectoryPattern.MatchString(directoryName)
}

// Scan walks baseDirectory in lexical order and returns the absolute paths of project directories
// that contain recognized source files and are not yet published.
func (scanner *Scanner) Scan(baseDirectory string, publishedProjects PublishedProjects) ([]string, error) {
	absoluteBaseDirectory, resolveError := filepath.Abs(baseDirectory)
	if resolveError != nil {
		return nil, fmt.Errorf(resolveBaseDirectoryTemplateConstant, baseDirectory, resolveError)
	}

	baseInfo, statError := os.Stat(absoluteBaseDirectory)
	if statError != nil || !baseInfo.IsDir() {
		return nil, fmt.Errorf(baseDirectoryErrorTemplateConstant, ErrBaseDirectoryInvalid, absoluteBaseDirectory)
	}

	var candidateDirectories []string
	directoriesWithSources := make(map[string]struct{})

	walkError := filepath.WalkDir(absoluteBaseDirectory, func(path string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			if path == absoluteBaseDirectory {
				return walkError
			}
			scanner.logger.Debug(skippedDirectoryLogMessageConstant, zap.String(logFieldPathConstant, path), zap.Error(walkError))
			if directoryEntry != nil && directoryEntry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if directoryEntry.IsDir() {
			if IsProjectDirectoryName(directoryEntry.Name()) && !scanner.isExcluded(path) {
				candidateDirectories = append(candidateDirectories, path)
			}
			return nil
		}

		if scanner.isSourceFile(directoryEntry.Name()) {
			markAncestors(directoriesWithSources, filepath.Dir(path), absoluteBaseDirectory)
		}
		return nil
	})
	if walkError != nil {
		return nil, fmt.Errorf(walkErrorTemplateConstant, absoluteBaseDirectory, walkError)
	}

	projects := make([]string, 0, len(candidateDirectories))
	for _, candidateDirectory := range candidateDirectories {
		if _, hasSources := directoriesWithSources[candidateDirectory]; !hasSources {
			continue
		}
		if publishedProjects != nil && publishedProjects.Contains(candidateDirectory) {
			scanner.logger.Debug(alreadyPublishedLogMessageConstant, zap.String(logFieldPathConstant, candidateDirectory))
			continue
		}
		scanner.logger.Debug(candidateFoundLogMessageConstant, zap.String(logFieldPathConstant, candidateDirectory))
		projects = append(projects, candidateDirectory)
	}

	scanner.logger.Info(scanCompletedLogMessageConstant,
		zap.String(logFieldBaseDirectoryConstant, absoluteBaseDirectory),
		zap.Int(logFieldCandidateCountConstant, len(projects)),
	)
	return projects, nil
}

func (scanner *Scanner) isExcluded(path string) bool {
	for _, marker := range scanner.excludedMarkers {
		if strings.Contains(path, marker) {
			return true
		}
	}
	return false
}

func (scanner *Scanner) isSourceFile(fileName string) bool {
	_, recognized := scanner.sourceExtensions[strings.ToLower(filepath.Ext(fileName))]
	return recognized
}

func markAncestors(directoriesWithSources map[string]struct{}, directory string, baseDirectory string) {
	for {
		if _, alreadyMarked := directoriesWithSources[directory]; alreadyMarked {
			return
		}
		directoriesWithSources[directory] = struct{}{}
		if directory == baseDirectory {
			return
		}
		parentDirectory := filepath.Dir(directory)
		if parentDirectory == directory {
			return
		}
		directory = parentDirectory
	}
}

func normalizeExtensions(extensions []string) map[string]struct{} {
	normalized := make(map[string]struct{}, len(extensions))
	for _, extension := range nonEmptyValues(extensions) {
		lowered := strings.ToLower(extension)
		if !strings.HasPrefix(lowered, ".") {
			lowered = "." + lowered
		}
		normalized[lowered] = struct{}{}
	}
	return normalized
}

func nonEmptyValues(values []string) []string {
	filtered := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if len(trimmed) > 0 {
			filtered = append(filtered, trimmed)
		}
	}
	return filtered
}
