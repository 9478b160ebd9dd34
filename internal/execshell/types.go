package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	commandFailedTemplateConstant             = "%s exited with code %d"
	commandFailedWithOutputTemplateConstant   = "%s exited with code %d: %s"
	commandExecutionFailedTemplateConstant    = "%s could not be executed: %v"
)

// CommandName identifies an executable supported by the shell executor.
type CommandName string

// CommandGit identifies the git executable.
const CommandGit CommandName = CommandName("git")

// CommandDetails describes arguments and process settings for a command invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand combines a CommandName with specific invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

var (
	// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
)

// CommandFailedError reports a command that ran but exited with a non-zero code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failing command and its standard error output.
func (failedError CommandFailedError) Error() string {
	standardError := strings.TrimSpace(failedError.Result.StandardError)
	commandLabel := describeCommand(failedError.Command)
	if len(standardError) == 0 {
		return fmt.Sprintf(commandFailedTemplateConstant, commandLabel, failedError.Result.ExitCode)
	}
	return fmt.Sprintf(commandFailedWithOutputTemplateConstant, commandLabel, failedError.Result.ExitCode, standardError)
}

// CommandExecutionError reports a command that could not be started or was interrupted.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionFailedTemplateConstant, describeCommand(executionError.Command), executionError.Cause)
}

// Unwrap exposes the underlying cause.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

func describeCommand(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	commandParts = append(commandParts, command.Details.Arguments...)
	return strings.Join(commandParts, " ")
}
