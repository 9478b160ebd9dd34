package publisher

import (
	"regexp"
	"strings"
)

const (
	maximumRepositoryNameLengthConstant = 50
	spaceConstant                       = " "
	dashConstant                        = "-"
	disallowedCharactersPatternConstant = `[^\p{L}\p{N}_-]`
)

var disallowedCharactersPattern = regexp.MustCompile(disallowedCharactersPatternConstant)

// SanitizeRepositoryName converts a project title into a repository name: spaces become dashes,
// anything other than letters, digits, underscores and dashes is removed, and the result is
// truncated to 50 characters.
func SanitizeRepositoryName(title string) (string, error) {
	dashed := strings.ReplaceAll(title, spaceConstant, dashConstant)
	sanitized := disallowedCharactersPattern.ReplaceAllString(dashed, "")
	if nameRunes := []rune(sanitized); len(nameRunes) > maximumRepositoryNameLengthConstant {
		sanitized = string(nameRunes[:maximumRepositoryNameLengthConstant])
	}
	if len(sanitized) == 0 {
		return "", ErrEmptyRepositoryName
	}
	return sanitized, nil
}
