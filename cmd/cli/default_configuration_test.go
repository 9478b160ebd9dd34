package cli_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/studentpub/cmd/cli"
)

func TestEmbeddedDefaultConfigurationIsValidYAML(testInstance *testing.T) {
	configurationContent, configurationType := cli.EmbeddedDefaultConfiguration()
	require.Equal(testInstance, "yaml", configurationType)

	var document map[string]map[string]any
	require.NoError(testInstance, yaml.Unmarshal(configurationContent, &document))

	expectedKeys := map[string][]string{
		"common":         {"log_level", "log_format", "env_file"},
		"scan":           {"base_directory", "ledger_file", "excluded_markers", "source_extensions"},
		"classification": {"sketch_extensions", "general_extensions", "documentation_extensions"},
		"completion":     {"base_url", "model", "requests_per_minute", "request_timeout", "max_attempts", "initial_backoff", "max_backoff", "refusal_prefixes"},
		"hosting":        {"api_base_url", "web_base_url", "owner", "remote_protocol", "private", "request_timeout", "max_name_attempts", "collision_suffix"},
		"publish":        {"commit_message", "branch", "remote_name", "max_push_attempts", "push_backoff"},
	}
	require.Len(testInstance, document, len(expectedKeys))
	for sectionName, sectionKeys := range expectedKeys {
		section, sectionExists := document[sectionName]
		require.True(testInstance, sectionExists, sectionName)
		for _, sectionKey := range sectionKeys {
			require.Contains(testInstance, section, sectionKey, sectionName)
		}
	}
}

func TestEmbeddedDefaultConfigurationReturnsCopy(testInstance *testing.T) {
	firstContent, _ := cli.EmbeddedDefaultConfiguration()
	firstContent[0] = '#'

	secondContent, _ := cli.EmbeddedDefaultConfiguration()
	require.NotEqual(testInstance, byte('#'), secondContent[0])
}
