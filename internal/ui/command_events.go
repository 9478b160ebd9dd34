package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/studentpub/internal/execshell"
)

const (
	commandStartedMessageTemplateConstant          = "%s: running %s"
	commandCompletedMessageTemplateConstant        = "%s: %s done"
	commandFailedExitCodeMessageTemplateConstant   = "%s: %s exited with code %d"
	commandExecutionFailureMessageTemplateConstant = "%s: %s could not run: %s"
	commandArgumentsJoinSeparatorConstant          = " "
	standardErrorSuffixTemplateConstant            = " (%s)"
	unknownFailureMessageConstant                  = "unknown error"
	unknownProjectLabelConstant                    = "-"
	lineBreakConstant                              = "\n"
	logFieldDirectoryConstant                      = "directory"
)

// CommandEventFormatter builds short messages naming the project folder and the git command.
type CommandEventFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandEventFormatter) BuildStartedMessage(command execshell.ShellCommand) string {
	return fmt.Sprintf(commandStartedMessageTemplateConstant, formatter.projectLabel(command), formatter.commandLabel(command))
}

// BuildSuccessMessage formats the message describing a command that exited with code zero.
func (formatter CommandEventFormatter) BuildSuccessMessage(command execshell.ShellCommand) string {
	return fmt.Sprintf(commandCompletedMessageTemplateConstant, formatter.projectLabel(command), formatter.commandLabel(command))
}

// BuildFailureMessage formats the message describing a command that exited with a non-zero code.
// Only the last non-empty line of standard error is included.
func (formatter CommandEventFormatter) BuildFailureMessage(command execshell.ShellCommand, result execshell.ExecutionResult) string {
	baseMessage := fmt.Sprintf(commandFailedExitCodeMessageTemplateConstant, formatter.projectLabel(command), formatter.commandLabel(command), result.ExitCode)
	lastLine := lastNonEmptyLine(result.StandardError)
	if len(lastLine) == 0 {
		return baseMessage
	}
	return baseMessage + fmt.Sprintf(standardErrorSuffixTemplateConstant, lastLine)
}

// BuildExecutionFailureMessage formats the message describing a command that could not be run.
func (formatter CommandEventFormatter) BuildExecutionFailureMessage(command execshell.ShellCommand, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(commandExecutionFailureMessageTemplateConstant, formatter.projectLabel(command), formatter.commandLabel(command), failureMessage)
}

func (formatter CommandEventFormatter) commandLabel(command execshell.ShellCommand) string {
	commandParts := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
}

func (formatter CommandEventFormatter) projectLabel(command execshell.ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return unknownProjectLabelConstant
	}
	return filepath.Base(trimmedWorkingDirectory)
}

func lastNonEmptyLine(text string) string {
	lines := strings.Split(strings.TrimSpace(text), lineBreakConstant)
	for index := len(lines) - 1; index >= 0; index-- {
		if trimmedLine := strings.TrimSpace(lines[index]); len(trimmedLine) > 0 {
			return trimmedLine
		}
	}
	return ""
}

// ConsoleCommandEventLogger reports git progress for each project through a human-readable zap logger.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter CommandEventFormatter
}

// NewConsoleCommandEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger, formatter: CommandEventFormatter{}}
}

// CommandStarted implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(command), directoryField(command))
}

// CommandCompleted implements execshell.CommandEventObserver. Non-zero exits are reported as warnings.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	if result.ExitCode == 0 {
		eventLogger.logger.Info(eventLogger.formatter.BuildSuccessMessage(command), directoryField(command))
		return
	}
	eventLogger.logger.Warn(eventLogger.formatter.BuildFailureMessage(command, result), directoryField(command))
}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure), directoryField(command))
}

func directoryField(command execshell.ShellCommand) zap.Field {
	return zap.String(logFieldDirectoryConstant, command.Details.WorkingDirectory)
}
