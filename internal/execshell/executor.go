package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	gitCommandNameConstant                   = "git"
	loggerNotConfiguredMessageConstant       = "logger not configured"
	commandRunnerNotConfiguredMessage        = "command runner not configured"
	commandFailedTemplateConstant            = "command '%s %s' failed with exit code %d: %s"
	commandExecutionFailedTemplateConstant   = "command '%s %s' could not be executed: %v"
	commandTimedOutTemplateConstant          = "command '%s %s' timed out after %s"
	commandStartedLogMessageConstant         = "shell command started"
	commandCompletedLogMessageConstant       = "shell command completed"
	commandFailureLogMessageConstant         = "shell command failed"
	logFieldCommandNameConstant              = "command"
	logFieldCommandArgumentsConstant         = "arguments"
	logFieldWorkingDirectoryConstant         = "working_directory"
	logFieldExitCodeConstant                 = "exit_code"
	commandArgumentsJoinSeparatorConstant    = " "
	commandTimeoutSuggestionSuffixedConstant = "; consider raising the configured command timeout"
)

// ErrLoggerNotConfigured indicates executor construction without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates executor construction without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessage)

// CommandName identifies the external executable being invoked.
type CommandName string

// CommandGit names the git executable, the only external tool devsync drives.
const CommandGit CommandName = CommandName(gitCommandNameConstant)

// CommandDetails describes a single external tool invocation.
type CommandDetails struct {
	Arguments        []string
	WorkingDirectory string
	Timeout          time.Duration
}

// ShellCommand pairs a command name with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outcome of a finished command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner abstracts process execution so tests can substitute fakes.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that exited with a non-zero status.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failing command line together with captured stderr.
func (failure CommandFailedError) Error() string {
	return fmt.Sprintf(
		commandFailedTemplateConstant,
		failure.Command.Name,
		strings.Join(failure.Command.Details.Arguments, commandArgumentsJoinSeparatorConstant),
		failure.Result.ExitCode,
		strings.TrimSpace(failure.Result.StandardError),
	)
}

// CommandExecutionError reports a command that never produced an exit status.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the invocation failure.
func (failure CommandExecutionError) Error() string {
	if errors.Is(failure.Cause, context.DeadlineExceeded) {
		return fmt.Sprintf(
			commandTimedOutTemplateConstant,
			failure.Command.Name,
			strings.Join(failure.Command.Details.Arguments, commandArgumentsJoinSeparatorConstant),
			failure.Command.Details.Timeout,
		) + commandTimeoutSuggestionSuffixedConstant
	}
	return fmt.Sprintf(
		commandExecutionFailedTemplateConstant,
		failure.Command.Name,
		strings.Join(failure.Command.Details.Arguments, commandArgumentsJoinSeparatorConstant),
		failure.Cause,
	)
}

// Unwrap exposes the underlying execution failure.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// ShellExecutor runs external commands through a CommandRunner, logging
// lifecycle events and notifying registered observers.
type ShellExecutor struct {
	logger    *zap.Logger
	runner    CommandRunner
	observers []CommandEventObserver
}

// NewShellExecutor validates collaborators and assembles an executor.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, observers ...CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	return &ShellExecutor{logger: logger, runner: runner, observers: observers}, nil
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// execute applies the configured timeout, runs the command, and translates
// non-zero exits into CommandFailedError values. The spawned process is killed
// when the timeout expires.
func (executor *ShellExecutor) execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}

	if command.Details.Timeout > 0 {
		timeoutContext, cancelTimeout := context.WithTimeout(executionContext, command.Details.Timeout)
		defer cancelTimeout()
		executionContext = timeoutContext
	}

	executor.logger.Debug(
		commandStartedLogMessageConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldCommandArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)
	for _, observer := range executor.observers {
		observer.CommandStarted(command)
	}

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		if contextError := executionContext.Err(); contextError != nil {
			runError = contextError
		}
		executionFailure := CommandExecutionError{Command: command, Cause: runError}
		executor.logger.Debug(
			commandFailureLogMessageConstant,
			zap.String(logFieldCommandNameConstant, string(command.Name)),
			zap.Error(executionFailure),
		)
		for _, observer := range executor.observers {
			observer.CommandExecutionFailed(command, executionFailure)
		}
		return ExecutionResult{}, executionFailure
	}

	executor.logger.Debug(
		commandCompletedLogMessageConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
	)
	for _, observer := range executor.observers {
		observer.CommandCompleted(command, executionResult)
	}

	if executionResult.ExitCode != 0 {
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	return executionResult, nil
}
