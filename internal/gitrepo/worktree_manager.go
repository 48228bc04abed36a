package gitrepo

import (
	"context"
	"time"
)

const (
	commitSubcommandConstant  = "commit"
	commitMessageFlagConstant = "-m"
	stageAllPathSpecConstant  = "."
)

// WorktreeManager stages paths and records commits on the current branch.
type WorktreeManager struct {
	managerBase
}

// NewWorktreeManager constructs a worktree manager bound to a working directory.
func NewWorktreeManager(executor GitExecutor, workingDirectory string, commandTimeout time.Duration) *WorktreeManager {
	return &WorktreeManager{managerBase{executor: executor, workingDirectory: workingDirectory, commandTimeout: commandTimeout}}
}

// StagePath stages the given path, including deletions beneath it.
func (manager *WorktreeManager) StagePath(executionContext context.Context, path string) error {
	if len(path) == 0 {
		path = stageAllPathSpecConstant
	}
	if _, executionError := manager.runGit(executionContext, addSubcommandConstant, path); executionError != nil {
		return wrapGitError(executionError)
	}
	return nil
}

// Commit records a commit with the supplied message.
func (manager *WorktreeManager) Commit(executionContext context.Context, commitMessage string) error {
	if _, executionError := manager.runGit(executionContext, commitSubcommandConstant, commitMessageFlagConstant, commitMessage); executionError != nil {
		return wrapGitError(executionError)
	}
	return nil
}
