package completion

import (
	"os"

	"github.com/temirov/studentpub/internal/githubauth"
)

var apiKeyPreference = []string{
	EnvOpenAIAPIKey,
	EnvOpenRouterAPIKey,
}

// ResolveAPIKey returns the first non-empty completion API key from the process environment,
// falling back to fileEnvironment.
func ResolveAPIKey(fileEnvironment map[string]string) (string, bool) {
	return ResolveAPIKeyWithLookup(os.LookupEnv, fileEnvironment)
}

// ResolveAPIKeyWithLookup is ResolveAPIKey with an injectable process environment.
func ResolveAPIKeyWithLookup(lookup githubauth.EnvironmentLookup, fileEnvironment map[string]string) (string, bool) {
	return githubauth.FirstNonEmpty(lookup, fileEnvironment, apiKeyPreference...)
}
