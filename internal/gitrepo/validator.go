package gitrepo

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/temirov/devsync/internal/clierrors"
)

const (
	gitMetadataDirectoryNameConstant = ".git"
	revParseSubcommandConstant       = "rev-parse"
	gitDirectoryFlagConstant         = "--git-dir"
	headReferenceConstant            = "HEAD"
	showRefSubcommandConstant        = "show-ref"
	showRefVerifyFlagConstant        = "--verify"
	branchReferencePrefixConstant    = "refs/heads/"
	remoteSubcommandConstant         = "remote"
	remoteGetURLSubcommandConstant   = "get-url"
)

// RepositoryValidator performs precondition checks before workflows mutate
// repository state.
type RepositoryValidator struct {
	managerBase
}

// NewRepositoryValidator constructs a validator bound to a working directory.
func NewRepositoryValidator(executor GitExecutor, workingDirectory string, commandTimeout time.Duration) *RepositoryValidator {
	return &RepositoryValidator{managerBase{executor: executor, workingDirectory: workingDirectory, commandTimeout: commandTimeout}}
}

// ValidateRepository fails unless repository metadata exists on disk and git
// itself recognizes the directory. Both checks run so a stray .git file or a
// corrupted object store is caught either way.
func (validator *RepositoryValidator) ValidateRepository(executionContext context.Context) error {
	metadataPath := filepath.Join(validator.workingDirectory, gitMetadataDirectoryNameConstant)
	if _, statError := os.Stat(metadataPath); statError != nil {
		return clierrors.NotGitRepository()
	}

	_, executionError := validator.runGit(executionContext, revParseSubcommandConstant, gitDirectoryFlagConstant)
	if executionError != nil {
		if isExitFailure(executionError) {
			return clierrors.NotGitRepository()
		}
		return wrapGitError(executionError)
	}

	return nil
}

// ValidateHasCommits fails when the head commit cannot be resolved, which
// indicates an empty repository.
func (validator *RepositoryValidator) ValidateHasCommits(executionContext context.Context) error {
	_, executionError := validator.runGit(executionContext, revParseSubcommandConstant, headReferenceConstant)
	if executionError != nil {
		if isExitFailure(executionError) {
			return clierrors.NoCommitsFound()
		}
		return wrapGitError(executionError)
	}

	return nil
}

// RemoteExists probes whether the named remote is configured.
func (validator *RepositoryValidator) RemoteExists(executionContext context.Context, remoteName string) (bool, error) {
	_, executionError := validator.runGit(executionContext, remoteSubcommandConstant, remoteGetURLSubcommandConstant, remoteName)
	if executionError != nil {
		if isExitFailure(executionError) {
			return false, nil
		}
		return false, wrapGitError(executionError)
	}

	return true, nil
}

// BranchExists probes whether the named local branch exists.
func (validator *RepositoryValidator) BranchExists(executionContext context.Context, branchName string) (bool, error) {
	_, executionError := validator.runGit(executionContext, showRefSubcommandConstant, showRefVerifyFlagConstant, branchReferencePrefixConstant+branchName)
	if executionError != nil {
		if isExitFailure(executionError) {
			return false, nil
		}
		return false, wrapGitError(executionError)
	}

	return true, nil
}
