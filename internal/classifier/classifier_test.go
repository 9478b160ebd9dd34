package classifier_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/studentpub/internal/classifier"
)

const (
	sketchFileNameConstant       = "blink.ino"
	helperFileNameConstant       = "helper.cpp"
	scriptFileNameConstant       = "plot.py"
	documentFileNameConstant     = "report.pdf"
	imageFileNameConstant        = "wiring.png"
	directoryPermissionsConstant = 0o755
	filePermissionsConstant      = 0o644
)

func writeProjectFile(testInstance *testing.T, segments ...string) string {
	testInstance.Helper()
	filePath := filepath.Join(segments...)
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(filePath), directoryPermissionsConstant))
	require.NoError(testInstance, os.WriteFile(filePath, []byte("content"), filePermissionsConstant))
	return filePath
}

func TestClassify(testInstance *testing.T) {
	fileClassifier := classifier.NewClassifier(nil, classifier.Configuration{})

	testCases := map[string]classifier.Kind{
		"sketch.ino":     classifier.KindSketchSource,
		"SKETCH.INO":     classifier.KindSketchSource,
		"main.c":         classifier.KindGeneralSource,
		"driver.cpp":     classifier.KindGeneralSource,
		"legacy.bas":     classifier.KindGeneralSource,
		"analysis.py":    classifier.KindGeneralSource,
		"report.pdf":     classifier.KindDocumentation,
		"wiring.png":     classifier.KindOther,
		"Makefile":       classifier.KindOther,
		"archive.tar.gz": classifier.KindOther,
	}

	for fileName, expectedKind := range testCases {
		require.Equal(testInstance, expectedKind, fileClassifier.Classify(fileName), fileName)
	}
}

func TestSelectCodeFilesPrecedence(testInstance *testing.T) {
	testCases := []struct {
		name          string
		buckets       classifier.Buckets
		expectedFiles []string
	}{
		{
			name:          "sketch_only",
			buckets:       classifier.Buckets{SketchSources: []string{"a.ino"}},
			expectedFiles: []string{"a.ino"},
		},
		{
			name:          "sketch_wins_over_general",
			buckets:       classifier.Buckets{SketchSources: []string{"a.ino"}, GeneralSources: []string{"b.cpp", "c.py"}},
			expectedFiles: []string{"a.ino"},
		},
		{
			name:          "general_when_no_sketch",
			buckets:       classifier.Buckets{GeneralSources: []string{"b.cpp", "c.py"}, Documents: []string{"d.pdf"}},
			expectedFiles: []string{"b.cpp", "c.py"},
		},
		{
			name:    "no_sources",
			buckets: classifier.Buckets{Documents: []string{"d.pdf"}},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			selectedFiles := classifier.SelectCodeFiles(testCase.buckets)
			if len(testCase.expectedFiles) == 0 {
				require.Empty(testInstance, selectedFiles)
				return
			}
			require.Equal(testInstance, testCase.expectedFiles, selectedFiles)
		})
	}
}

func TestClassifyProjectReturnsDocumentsUnconditionally(testInstance *testing.T) {
	projectDirectory := testInstance.TempDir()
	sketchPath := writeProjectFile(testInstance, projectDirectory, sketchFileNameConstant)
	writeProjectFile(testInstance, projectDirectory, "lib", helperFileNameConstant)
	writeProjectFile(testInstance, projectDirectory, scriptFileNameConstant)
	documentPath := writeProjectFile(testInstance, projectDirectory, "docs", documentFileNameConstant)
	writeProjectFile(testInstance, projectDirectory, imageFileNameConstant)

	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	fileClassifier := classifier.NewClassifier(zap.New(observedCore), classifier.Configuration{})

	selection, classifyError := fileClassifier.ClassifyProject(projectDirectory)
	require.NoError(testInstance, classifyError)
	require.Equal(testInstance, []string{sketchPath}, selection.CodeFiles)
	require.Equal(testInstance, []string{documentPath}, selection.DocumentFiles)
	require.Equal(testInstance, 1, observedLogs.FilterMessage("found sketch file").Len())
	require.Equal(testInstance, 2, observedLogs.FilterMessage("found code file").Len())
	require.Equal(testInstance, 1, observedLogs.FilterMessage("found PDF file").Len())
}

func TestClassifyProjectFallsBackToGeneralSources(testInstance *testing.T) {
	projectDirectory := testInstance.TempDir()
	helperPath := writeProjectFile(testInstance, projectDirectory, "lib", helperFileNameConstant)
	scriptPath := writeProjectFile(testInstance, projectDirectory, scriptFileNameConstant)

	selection, classifyError := classifier.NewClassifier(nil, classifier.Configuration{}).ClassifyProject(projectDirectory)
	require.NoError(testInstance, classifyError)
	require.Equal(testInstance, []string{helperPath, scriptPath}, selection.CodeFiles)
	require.Empty(testInstance, selection.DocumentFiles)
}

func TestClassifierHonoursCustomExtensions(testInstance *testing.T) {
	fileClassifier := classifier.NewClassifier(nil, classifier.Configuration{
		SketchExtensions:        []string{"pde"},
		GeneralExtensions:       []string{".rs"},
		DocumentationExtensions: []string{".md"},
	})

	require.Equal(testInstance, classifier.KindSketchSource, fileClassifier.Classify("old.pde"))
	require.Equal(testInstance, classifier.KindGeneralSource, fileClassifier.Classify("main.rs"))
	require.Equal(testInstance, classifier.KindDocumentation, fileClassifier.Classify("notes.md"))
	require.Equal(testInstance, classifier.KindOther, fileClassifier.Classify("blink.ino"))
}

func TestCollectMissingDirectory(testInstance *testing.T) {
	_, collectError := classifier.NewClassifier(nil, classifier.Configuration{}).Collect(filepath.Join(testInstance.TempDir(), "missing"))
	require.Error(testInstance, collectError)
	require.ErrorIs(testInstance, collectError, os.ErrNotExist)
}
