package ui_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/studentpub/internal/classifier"
	"github.com/temirov/studentpub/internal/pipeline"
	"github.com/temirov/studentpub/internal/ui"
)

const (
	blinkDirectoryConstant = "/projects/1. Blink"
	servoDirectoryConstant = "/projects/2. Servo"
	escapeSequenceConstant = "\x1b["
)

func TestSummaryRendererRenderSummary(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	renderer := ui.NewSummaryRenderer(outputBuffer)

	renderError := renderer.RenderSummary(pipeline.Summary{
		Candidates:          2,
		PreviouslyPublished: 3,
		Completed:           4,
		Published: []pipeline.PublishedProject{
			{Directory: blinkDirectoryConstant, Title: "Blink", RepositoryName: "Blink", RemoteURL: "https://github.com/student/Blink.git"},
		},
		Failures: []pipeline.ProjectFailure{
			{Directory: servoDirectoryConstant, Err: errors.New("push rejected")},
		},
	})
	require.NoError(testInstance, renderError)

	output := outputBuffer.String()
	require.NotContains(testInstance, output, escapeSequenceConstant)
	require.Contains(testInstance, output, "Publication summary")
	require.Contains(testInstance, output, "  candidates: 2")
	require.Contains(testInstance, output, "  previously published: 3")
	require.Contains(testInstance, output, "  completed: 4")
	require.Contains(testInstance, output, "✓ Blink → https://github.com/student/Blink.git")
	require.Contains(testInstance, output, "✗ /projects/2. Servo: push rejected")
}

func TestSummaryRendererRenderPreview(testInstance *testing.T) {
	testCases := []struct {
		name             string
		candidates       []pipeline.Candidate
		expectedContents []string
	}{
		{
			name:             "no_candidates",
			expectedContents: []string{"Pending projects: 0"},
		},
		{
			name: "candidate_with_files",
			candidates: []pipeline.Candidate{
				{
					Directory: blinkDirectoryConstant,
					Selection: classifier.Selection{
						CodeFiles:     []string{blinkDirectoryConstant + "/blink.ino", blinkDirectoryConstant + "/extra/helper.ino"},
						DocumentFiles: []string{blinkDirectoryConstant + "/wiring.pdf"},
					},
				},
			},
			expectedContents: []string{
				"Pending projects: 1",
				"• /projects/1. Blink",
				"    code: blink.ino, helper.ino",
				"    documents: wiring.pdf",
			},
		},
		{
			name:       "candidate_without_documents",
			candidates: []pipeline.Candidate{{Directory: servoDirectoryConstant, Selection: classifier.Selection{CodeFiles: []string{servoDirectoryConstant + "/sweep.py"}}}},
			expectedContents: []string{
				"    code: sweep.py",
				"    documents: none",
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			outputBuffer := &bytes.Buffer{}
			require.NoError(testInstance, ui.NewSummaryRenderer(outputBuffer).RenderPreview(testCase.candidates))
			for _, expectedContent := range testCase.expectedContents {
				require.Contains(testInstance, outputBuffer.String(), expectedContent)
			}
		})
	}
}
