package gitrepo

import (
	"context"
	"errors"
	"time"

	"github.com/temirov/devsync/internal/clierrors"
	"github.com/temirov/devsync/internal/execshell"
)

const (
	gitCommandSuggestionConstant = "Check the git command syntax and repository state"
)

// GitExecutor exposes the subset of shell execution used by repository managers.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// managerBase carries the collaborators every porcelain manager needs.
type managerBase struct {
	executor         GitExecutor
	workingDirectory string
	commandTimeout   time.Duration
}

func (base managerBase) runGit(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	return base.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: base.workingDirectory,
		Timeout:          base.commandTimeout,
	})
}

// isExitFailure reports whether the error describes a non-zero exit rather
// than a failure to run the tool at all. Existence probes rely on this
// distinction: a non-zero exit means "not found", anything else is an error.
func isExitFailure(executionError error) bool {
	commandFailure := execshell.CommandFailedError{}
	return errors.As(executionError, &commandFailure)
}

// wrapGitError converts an executor failure into the categorized taxonomy.
func wrapGitError(executionError error) *clierrors.CategorizedError {
	return clierrors.NewGitOperationError(executionError.Error(), gitCommandSuggestionConstant).WithCause(executionError)
}
