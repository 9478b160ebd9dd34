package execshell_test

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/studentpub/internal/execshell"
)

func TestOSCommandRunnerReportsExitCodes(testInstance *testing.T) {
	if _, lookupError := exec.LookPath("git"); lookupError != nil {
		testInstance.Skip("git executable not available")
	}

	runner := execshell.NewOSCommandRunner()
	workingDirectory := testInstance.TempDir()

	successResult, successError := runner.Run(context.Background(), execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{"--version"}, WorkingDirectory: workingDirectory},
	})
	require.NoError(testInstance, successError)
	require.Equal(testInstance, 0, successResult.ExitCode)
	require.Contains(testInstance, successResult.StandardOutput, "git version")

	failureResult, failureError := runner.Run(context.Background(), execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:            []string{"rev-parse", "--is-inside-work-tree"},
			WorkingDirectory:     workingDirectory,
			EnvironmentVariables: map[string]string{"GIT_CEILING_DIRECTORIES": workingDirectory},
		},
	})
	require.NoError(testInstance, failureError)
	require.NotEqual(testInstance, 0, failureResult.ExitCode)
	require.NotEmpty(testInstance, failureResult.StandardError)
}

func TestOSCommandRunnerHonorsCancellation(testInstance *testing.T) {
	if _, lookupError := exec.LookPath("git"); lookupError != nil {
		testInstance.Skip("git executable not available")
	}

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	_, runError := execshell.NewOSCommandRunner().Run(cancelledContext, execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{"--version"}},
	})
	require.ErrorIs(testInstance, runError, context.Canceled)
}
