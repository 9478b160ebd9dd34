package readme

import (
	"regexp"
	"strings"
)

const (
	headingMarkerConstant        = "# "
	lineBreakConstant            = "\n"
	markdownFenceOpeningConstant = "```markdown\n"
	markdownFenceClosingConstant = "```"
	titleTrimCharactersConstant  = "# "
	trailingWhitespaceConstant   = " \t\r\n"
	numericPrefixPatternConstant = `^\d+\.\s*`
)

// DefaultRefusalPrefixes lists response openings that indicate the model answered conversationally
// instead of producing a title.
var DefaultRefusalPrefixes = []string{"Okay", "Sure", "Certainly", "I'm sorry", "I cannot", "As an AI"}

var numericPrefixPattern = regexp.MustCompile(numericPrefixPatternConstant)

// Document is the README extracted from a model response.
type Document struct {
	Title string
	Body  string
}

// ParseResponse extracts the README starting at the first level-one heading.
// A response without a heading yields an empty Document.
func ParseResponse(rawResponse string) Document {
	headingIndex := findHeading(rawResponse)
	if headingIndex < 0 {
		return Document{}
	}

	body := strings.ReplaceAll(rawResponse[headingIndex:], markdownFenceOpeningConstant, "")
	if strings.Contains(rawResponse, markdownFenceOpeningConstant) {
		trimmedBody := strings.TrimRight(body, trailingWhitespaceConstant)
		if strings.HasSuffix(trimmedBody, markdownFenceClosingConstant) {
			body = strings.TrimRight(strings.TrimSuffix(trimmedBody, markdownFenceClosingConstant), trailingWhitespaceConstant) + lineBreakConstant
		}
	}

	firstLine, _, _ := strings.Cut(body, lineBreakConstant)
	return Document{
		Title: strings.TrimSpace(strings.Trim(firstLine, titleTrimCharactersConstant)),
		Body:  body,
	}
}

// DeriveTitle returns the document title unless it is blank or starts with a refusal prefix,
// in which case the original folder name without its numeric prefix is used.
func DeriveTitle(document Document, originalName string, refusalPrefixes []string) string {
	title := strings.TrimSpace(document.Title)
	if len(title) == 0 || hasRefusalPrefix(title, refusalPrefixes) {
		return StripNumericPrefix(originalName)
	}
	return title
}

// StripNumericPrefix removes a leading "<number>." marker and the whitespace after it.
func StripNumericPrefix(originalName string) string {
	return numericPrefixPattern.ReplaceAllString(originalName, "")
}

func findHeading(rawResponse string) int {
	if strings.HasPrefix(rawResponse, headingMarkerConstant) {
		return 0
	}
	if lineStartIndex := strings.Index(rawResponse, lineBreakConstant+headingMarkerConstant); lineStartIndex >= 0 {
		return lineStartIndex + len(lineBreakConstant)
	}
	return strings.Index(rawResponse, headingMarkerConstant)
}

func hasRefusalPrefix(title string, refusalPrefixes []string) bool {
	for _, refusalPrefix := range refusalPrefixes {
		if len(refusalPrefix) > 0 && strings.HasPrefix(title, refusalPrefix) {
			return true
		}
	}
	return false
}
