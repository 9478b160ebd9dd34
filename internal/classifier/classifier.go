package classifier

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	collectErrorTemplateConstant    = "unable to collect files in %s: %w"
	sketchFoundLogMessageConstant   = "found sketch file"
	sourceFoundLogMessageConstant   = "found code file"
	documentFoundLogMessageConstant = "found PDF file"
	logFieldPathConstant            = "path"
	kindSketchSourceLabelConstant   = "sketch"
	kindGeneralSourceLabelConstant  = "source"
	kindDocumentationLabelConstant  = "documentation"
	kindOtherLabelConstant          = "other"
)

// Kind is the classification of a single file.
type Kind int

const (
	// KindOther marks files that do not take part in README generation.
	KindOther Kind = iota
	// KindSketchSource marks microcontroller sketch files.
	KindSketchSource
	// KindGeneralSource marks general-purpose source files.
	KindGeneralSource
	// KindDocumentation marks PDF documentation.
	KindDocumentation
)

// String returns a human-readable label for the kind.
func (kind Kind) String() string {
	switch kind {
	case KindSketchSource:
		return kindSketchSourceLabelConstant
	case KindGeneralSource:
		return kindGeneralSourceLabelConstant
	case KindDocumentation:
		return kindDocumentationLabelConstant
	default:
		return kindOtherLabelConstant
	}
}

// DefaultSketchExtensions lists the extensions classified as KindSketchSource.
var DefaultSketchExtensions = []string{".ino"}

// DefaultGeneralExtensions lists the extensions classified as KindGeneralSource.
var DefaultGeneralExtensions = []string{".c", ".cpp", ".bas", ".py"}

// DefaultDocumentationExtensions lists the extensions classified as KindDocumentation.
var DefaultDocumentationExtensions = []string{".pdf"}

// Configuration customizes the extension sets. Empty sets fall back to the defaults.
type Configuration struct {
	SketchExtensions        []string
	GeneralExtensions       []string
	DocumentationExtensions []string
}

// Buckets groups a project's files by kind in walk order.
type Buckets struct {
	SketchSources  []string
	GeneralSources []string
	Documents      []string
}

// Selection is the set of files handed to README generation.
type Selection struct {
	CodeFiles     []string
	DocumentFiles []string
}

// Classifier assigns kinds to files and selects the files that describe a project.
type Classifier struct {
	logger         *zap.Logger
	extensionKinds map[string]Kind
}

// NewClassifier constructs a Classifier.
func NewClassifier(logger *zap.Logger, configuration Configuration) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}

	extensionKinds := make(map[string]Kind)
	registerExtensions(extensionKinds, withDefault(configuration.DocumentationExtensions, DefaultDocumentationExtensions), KindDocumentation)
	registerExtensions(extensionKinds, withDefault(configuration.GeneralExtensions, DefaultGeneralExtensions), KindGeneralSource)
	registerExtensions(extensionKinds, withDefault(configuration.SketchExtensions, DefaultSketchExtensions), KindSketchSource)

	return &Classifier{logger: logger, extensionKinds: extensionKinds}
}

// Classify returns the kind of the file at path based on its extension.
func (classifier *Classifier) Classify(path string) Kind {
	kind, known := classifier.extensionKinds[strings.ToLower(filepath.Ext(path))]
	if !known {
		return KindOther
	}
	return kind
}

// Collect walks projectDirectory and buckets every classified file.
func (classifier *Classifier) Collect(projectDirectory string) (Buckets, error) {
	var buckets Buckets
	walkError := filepath.WalkDir(projectDirectory, func(path string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if directoryEntry.IsDir() {
			return nil
		}

		switch classifier.Classify(path) {
		case KindSketchSource:
			classifier.logger.Debug(sketchFoundLogMessageConstant, zap.String(logFieldPathConstant, path))
			buckets.SketchSources = append(buckets.SketchSources, path)
		case KindGeneralSource:
			classifier.logger.Debug(sourceFoundLogMessageConstant, zap.String(logFieldPathConstant, path))
			buckets.GeneralSources = append(buckets.GeneralSources, path)
		case KindDocumentation:
			classifier.logger.Debug(documentFoundLogMessageConstant, zap.String(logFieldPathConstant, path))
			buckets.Documents = append(buckets.Documents, path)
		}
		return nil
	})
	if walkError != nil {
		return Buckets{}, fmt.Errorf(collectErrorTemplateConstant, projectDirectory, walkError)
	}
	return buckets, nil
}

// ClassifyProject collects the project's files and applies SelectCodeFiles.
func (classifier *Classifier) ClassifyProject(projectDirectory string) (Selection, error) {
	buckets, collectError := classifier.Collect(projectDirectory)
	if collectError != nil {
		return Selection{}, collectError
	}
	return Selection{
		CodeFiles:     SelectCodeFiles(buckets),
		DocumentFiles: append([]string(nil), buckets.Documents...),
	}, nil
}

// SelectCodeFiles prefers sketch sources exclusively and otherwise returns the general sources.
func SelectCodeFiles(buckets Buckets) []string {
	if len(buckets.SketchSources) > 0 {
		return append([]string(nil), buckets.SketchSources...)
	}
	return append([]string(nil), buckets.GeneralSources...)
}

func registerExtensions(extensionKinds map[string]Kind, extensions []string, kind Kind) {
	for _, extension := range extensions {
		normalized := strings.ToLower(strings.TrimSpace(extension))
		if len(normalized) == 0 {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		extensionKinds[normalized] = kind
	}
}

func withDefault(configured []string, defaults []string) []string {
	for _, value := range configured {
		if len(strings.TrimSpace(value)) > 0 {
			return configured
		}
	}
	return defaults
}
