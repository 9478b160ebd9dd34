package githubauth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/studentpub/internal/githubauth"
)

func TestResolveTokenWithLookup(testInstance *testing.T) {
	testCases := []struct {
		name            string
		processValues   map[string]string
		fileValues      map[string]string
		expectedToken   string
		expectedPresent bool
	}{
		{
			name:            "process_environment_wins",
			processValues:   map[string]string{githubauth.EnvGitHubToken: "process-token"},
			fileValues:      map[string]string{githubauth.EnvGitHubToken: "file-token"},
			expectedToken:   "process-token",
			expectedPresent: true,
		},
		{
			name:            "gh_token_preferred",
			processValues:   map[string]string{githubauth.EnvGitHubToken: "github-token", githubauth.EnvGitHubCLIToken: "gh-token"},
			expectedToken:   "gh-token",
			expectedPresent: true,
		},
		{
			name:            "blank_process_value_falls_back_to_file",
			processValues:   map[string]string{githubauth.EnvGitHubToken: "   "},
			fileValues:      map[string]string{githubauth.EnvGitHubAPIToken: " file-token "},
			expectedToken:   "file-token",
			expectedPresent: true,
		},
		{
			name: "missing",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			lookup := func(key string) (string, bool) {
				value, exists := testCase.processValues[key]
				return value, exists
			}
			token, present := githubauth.ResolveTokenWithLookup(lookup, testCase.fileValues)
			require.Equal(testInstance, testCase.expectedPresent, present)
			require.Equal(testInstance, testCase.expectedToken, token)
		})
	}
}
