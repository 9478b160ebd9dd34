package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/temirov/studentpub/internal/pipeline"
)

const (
	summaryHeaderConstant             = "Publication summary"
	previewHeaderTemplateConstant     = "Pending projects: %d"
	candidatesLineTemplateConstant    = "candidates: %d"
	previouslyLineTemplateConstant    = "previously published: %d"
	completedLineTemplateConstant     = "completed: %d"
	publishedLineTemplateConstant     = "%s %s %s %s"
	failureLineTemplateConstant       = "%s %s: %v"
	candidateLineTemplateConstant     = "%s %s"
	codeFilesLineTemplateConstant     = "code: %s"
	documentFilesLineTemplateConstant = "documents: %s"
	noFilesPlaceholderConstant        = "none"
	fileNameSeparatorConstant         = ", "
	passSymbolConstant                = "✓"
	failSymbolConstant                = "✗"
	arrowSymbolConstant               = "→"
	bulletSymbolConstant              = "•"
	detailIndentConstant              = 2
	nestedDetailIndentConstant        = 4
	headerColorConstant               = "69"
	successColorConstant              = "2"
	errorColorConstant                = "9"
	detailColorConstant               = "250"
)

// SummaryRenderer prints run summaries and previews for console users.
type SummaryRenderer struct {
	writer       io.Writer
	headerStyle  lipgloss.Style
	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	detailStyle  lipgloss.Style
}

// NewSummaryRenderer binds styles to the writer so color output follows the writer's terminal capabilities.
func NewSummaryRenderer(writer io.Writer) *SummaryRenderer {
	renderer := lipgloss.NewRenderer(writer)
	return &SummaryRenderer{
		writer:       writer,
		headerStyle:  renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(headerColorConstant)),
		successStyle: renderer.NewStyle().Foreground(lipgloss.Color(successColorConstant)),
		errorStyle:   renderer.NewStyle().Foreground(lipgloss.Color(errorColorConstant)),
		detailStyle:  renderer.NewStyle().Foreground(lipgloss.Color(detailColorConstant)),
	}
}

// RenderSummary prints the outcome of a publication run.
func (summaryRenderer *SummaryRenderer) RenderSummary(summary pipeline.Summary) error {
	lines := []string{
		summaryRenderer.headerStyle.Render(summaryHeaderConstant),
		summaryRenderer.indented(detailIndentConstant, fmt.Sprintf(candidatesLineTemplateConstant, summary.Candidates)),
		summaryRenderer.indented(detailIndentConstant, fmt.Sprintf(previouslyLineTemplateConstant, summary.PreviouslyPublished)),
		summaryRenderer.indented(detailIndentConstant, fmt.Sprintf(completedLineTemplateConstant, summary.Completed)),
	}

	for _, publishedProject := range summary.Published {
		lines = append(lines, summaryRenderer.successStyle.Render(fmt.Sprintf(publishedLineTemplateConstant,
			passSymbolConstant,
			publishedProject.Title,
			arrowSymbolConstant,
			publishedProject.RemoteURL,
		)))
	}

	for _, failure := range summary.Failures {
		lines = append(lines, summaryRenderer.errorStyle.Render(fmt.Sprintf(failureLineTemplateConstant,
			failSymbolConstant,
			failure.Directory,
			failure.Err,
		)))
	}

	return summaryRenderer.write(lines)
}

// RenderPreview prints the projects a run would publish together with their selected files.
func (summaryRenderer *SummaryRenderer) RenderPreview(candidates []pipeline.Candidate) error {
	lines := []string{summaryRenderer.headerStyle.Render(fmt.Sprintf(previewHeaderTemplateConstant, len(candidates)))}
	for _, candidate := range candidates {
		lines = append(lines,
			fmt.Sprintf(candidateLineTemplateConstant, bulletSymbolConstant, candidate.Directory),
			summaryRenderer.indented(nestedDetailIndentConstant, fmt.Sprintf(codeFilesLineTemplateConstant, joinBaseNames(candidate.Selection.CodeFiles))),
			summaryRenderer.indented(nestedDetailIndentConstant, fmt.Sprintf(documentFilesLineTemplateConstant, joinBaseNames(candidate.Selection.DocumentFiles))),
		)
	}
	return summaryRenderer.write(lines)
}

func (summaryRenderer *SummaryRenderer) indented(width int, text string) string {
	return summaryRenderer.detailStyle.PaddingLeft(width).Render(text)
}

func (summaryRenderer *SummaryRenderer) write(lines []string) error {
	_, writeError := io.WriteString(summaryRenderer.writer, strings.Join(lines, "\n")+"\n")
	return writeError
}

func joinBaseNames(filePaths []string) string {
	if len(filePaths) == 0 {
		return noFilesPlaceholderConstant
	}
	baseNames := make([]string, 0, len(filePaths))
	for _, filePath := range filePaths {
		baseNames = append(baseNames, filepath.Base(filePath))
	}
	return strings.Join(baseNames, fileNameSeparatorConstant)
}
