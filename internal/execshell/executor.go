package execshell

import (
	"context"

	"go.uber.org/zap"
)

const (
	commandStartedLogMessageConstant   = "command started"
	commandCompletedLogMessageConstant = "command completed"
	commandFailedLogMessageConstant    = "command failed"
	commandErrorLogMessageConstant     = "command execution error"
	logFieldCommandConstant            = "command"
	logFieldArgumentsConstant          = "arguments"
	logFieldWorkingDirectoryConstant   = "working_directory"
	logFieldExitCodeConstant           = "exit_code"
	logFieldStandardErrorConstant      = "stderr"
)

// ShellExecutor runs external commands through a CommandRunner with structured logging.
type ShellExecutor struct {
	logger   *zap.Logger
	runner   CommandRunner
	observer CommandEventObserver
}

// NewShellExecutor constructs a ShellExecutor from the provided logger and runner.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner) (*ShellExecutor, error) {
	return NewShellExecutorWithObserver(logger, runner, nil)
}

// NewShellExecutorWithObserver constructs a ShellExecutor that also notifies observer about command lifecycle events.
func NewShellExecutorWithObserver(logger *zap.Logger, runner CommandRunner, observer CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	if observer == nil {
		observer = noopCommandEventObserver{}
	}
	return &ShellExecutor{logger: logger, runner: runner, observer: observer}, nil
}

// Execute runs the provided command. A non-zero exit code yields CommandFailedError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandFields := []zap.Field{
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	}

	executor.logger.Debug(commandStartedLogMessageConstant, commandFields...)
	executor.observer.CommandStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.logger.Warn(commandErrorLogMessageConstant, append(commandFields, zap.Error(runError))...)
		executor.observer.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.observer.CommandCompleted(command, executionResult)

	if executionResult.ExitCode != 0 {
		executor.logger.Warn(
			commandFailedLogMessageConstant,
			append(commandFields,
				zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
				zap.String(logFieldStandardErrorConstant, executionResult.StandardError),
			)...,
		)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Debug(commandCompletedLogMessageConstant, commandFields...)
	return executionResult, nil
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}
