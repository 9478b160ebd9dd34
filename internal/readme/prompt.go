package readme

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/temirov/studentpub/internal/filesystem"
)

const (
	codeSectionTemplateConstant         = "### %s\n\n%s...\n\n"
	documentNameSeparatorConstant       = ","
	readCodeFileErrorTemplateConstant   = "unable to read code file %s: %w"
	decodeCodeFileErrorTemplateConstant = "unable to decode code file %s: %w"
)

const promptTemplateConstant = `Generate a project documentation README file for a project named '%s'.
The project may contain one or more C, C++, Arduino or Proton Basic source files.
Provide a meaningful project title of at most 50 characters and a detailed description of the project.
Do not include contribution or license information in the README.
If possible, include a pin map in the README.
Add a note that any diagram may not be accurate.
Reply with the README content only, without commentary about the request.
List of PDF files: %s
Here are the code snippets:
%s`

var invalidUTF8Remover = runes.Remove(runes.Predicate(func(candidate rune) bool {
	return candidate == utf8.RuneError
}))

// DecodeLossy converts raw bytes to text, dropping byte sequences that are not valid UTF-8.
func DecodeLossy(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, _, transformError := transform.Bytes(invalidUTF8Remover, raw)
	if transformError != nil {
		return "", transformError
	}
	return string(decoded), nil
}

// FormatCodeSection renders a single source file under a heading named after its base name.
func FormatCodeSection(filePath string, content string) string {
	return fmt.Sprintf(codeSectionTemplateConstant, filepath.Base(filePath), content)
}

// ReadCodeSections reads every code file in full and concatenates their formatted sections.
func ReadCodeSections(fileSystem filesystem.FileSystem, codeFiles []string) (string, error) {
	var builder strings.Builder
	for _, codeFile := range codeFiles {
		raw, readError := fileSystem.ReadFile(codeFile)
		if readError != nil {
			return "", fmt.Errorf(readCodeFileErrorTemplateConstant, codeFile, readError)
		}
		content, decodeError := DecodeLossy(raw)
		if decodeError != nil {
			return "", fmt.Errorf(decodeCodeFileErrorTemplateConstant, codeFile, decodeError)
		}
		builder.WriteString(FormatCodeSection(codeFile, content))
	}
	return builder.String(), nil
}

// BuildPrompt assembles the README request for a project.
func BuildPrompt(projectName string, documentFiles []string, codeSections string) string {
	documentNames := make([]string, 0, len(documentFiles))
	for _, documentFile := range documentFiles {
		documentNames = append(documentNames, filepath.Base(documentFile))
	}
	return fmt.Sprintf(promptTemplateConstant, projectName, strings.Join(documentNames, documentNameSeparatorConstant), codeSections)
}
