package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/studentpub/internal/utils/path"
)

const testHomeDirectoryConstant = "/home/student"

func TestResolverExpandHome(testInstance *testing.T) {
	resolver := pathutils.NewResolverWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})

	testCases := []struct {
		name         string
		input        string
		expectedPath string
	}{
		{name: "bare_tilde", input: "~", expectedPath: testHomeDirectoryConstant},
		{name: "tilde_prefix", input: "~/Projects/Student", expectedPath: filepath.Join(testHomeDirectoryConstant, "Projects", "Student")},
		{name: "absolute_path", input: "/srv/projects", expectedPath: "/srv/projects"},
		{name: "relative_path", input: "projects", expectedPath: "projects"},
		{name: "tilde_user", input: "~other/projects", expectedPath: "~other/projects"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedPath, resolver.ExpandHome(testCase.input))
		})
	}
}

func TestResolverAbsoluteIgnoresProviderFailure(testInstance *testing.T) {
	resolver := pathutils.NewResolverWithProvider(func() (string, error) {
		return "", errors.New("no home")
	})

	resolvedPath, resolveError := resolver.Absolute("  /srv/projects/../student  ")
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, "/srv/student", resolvedPath)
}
