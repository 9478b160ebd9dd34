// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with zap logging and lifecycle
// observers, OSCommandRunner performs the actual os/exec invocation, and the
// typed CommandFailedError and CommandExecutionError values let callers
// inspect exit codes and standard error of failed git commands.
package execshell
