package githubauth

import (
	"os"
	"strings"
)

// Environment variable names used by GitHub authentication helpers.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

var tokenPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// EnvironmentLookup mirrors os.LookupEnv.
type EnvironmentLookup func(key string) (string, bool)

// ResolveToken returns the first non-empty GitHub token from the process environment,
// falling back to fileEnvironment (typically loaded from a .env file).
func ResolveToken(fileEnvironment map[string]string) (string, bool) {
	return ResolveTokenWithLookup(os.LookupEnv, fileEnvironment)
}

// ResolveTokenWithLookup is ResolveToken with an injectable process environment.
func ResolveTokenWithLookup(lookup EnvironmentLookup, fileEnvironment map[string]string) (string, bool) {
	return FirstNonEmpty(lookup, fileEnvironment, tokenPreference...)
}

// FirstNonEmpty returns the first non-blank value among keys, consulting lookup before fileEnvironment.
func FirstNonEmpty(lookup EnvironmentLookup, fileEnvironment map[string]string, keys ...string) (string, bool) {
	if lookup != nil {
		for _, key := range keys {
			if value, exists := lookup(key); exists {
				if trimmedValue := strings.TrimSpace(value); len(trimmedValue) > 0 {
					return trimmedValue, true
				}
			}
		}
	}
	for _, key := range keys {
		if trimmedValue := strings.TrimSpace(fileEnvironment[key]); len(trimmedValue) > 0 {
			return trimmedValue, true
		}
	}
	return "", false
}
