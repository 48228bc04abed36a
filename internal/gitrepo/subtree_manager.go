package gitrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/temirov/devsync/internal/clierrors"
)

const (
	subtreeSubcommandConstant            = "subtree"
	subtreeSplitSubcommandConstant       = "split"
	subtreeAddSubcommandConstant         = "add"
	subtreeMergeSubcommandConstant       = "merge"
	subtreePullSubcommandConstant        = "pull"
	subtreePrefixFlagTemplateConstant    = "--prefix=%s"
	subtreeSquashFlagConstant            = "--squash"
	subtreeBranchFlagConstant            = "-b"
	addSubcommandConstant                = "add"
	subtreeRemoveFailureTemplateConstant = "Failed to remove subtree directory '%s': %v"
	subtreeRemoveFailureSuggestion       = "Check file permissions and ensure the directory is not in use"
)

// SubtreeManager implements split, add, merge, pull, and remove operations
// over the tracked subtree prefix.
type SubtreeManager struct {
	managerBase
}

// NewSubtreeManager constructs a subtree manager bound to a working directory.
func NewSubtreeManager(executor GitExecutor, workingDirectory string, commandTimeout time.Duration) *SubtreeManager {
	return &SubtreeManager{managerBase{executor: executor, workingDirectory: workingDirectory, commandTimeout: commandTimeout}}
}

// SplitSubtree extracts the history under prefix into a new branch.
func (manager *SubtreeManager) SplitSubtree(executionContext context.Context, prefix string, newBranch string) error {
	prefixArgument := fmt.Sprintf(subtreePrefixFlagTemplateConstant, prefix)
	if _, executionError := manager.runGit(executionContext, subtreeSubcommandConstant, subtreeSplitSubcommandConstant, prefixArgument, subtreeBranchFlagConstant, newBranch); executionError != nil {
		return wrapGitError(executionError)
	}
	return nil
}

// AddSubtree grafts an external branch's tree at prefix, squashed into one
// commit when requested.
func (manager *SubtreeManager) AddSubtree(executionContext context.Context, prefix string, branchName string, squash bool) error {
	prefixArgument := fmt.Sprintf(subtreePrefixFlagTemplateConstant, prefix)
	commandArguments := []string{subtreeSubcommandConstant, subtreeAddSubcommandConstant, prefixArgument}
	if squash {
		commandArguments = append(commandArguments, subtreeSquashFlagConstant)
	}
	commandArguments = append(commandArguments, branchName)

	if _, executionError := manager.runGit(executionContext, commandArguments...); executionError != nil {
		return wrapGitError(executionError)
	}
	return nil
}

// MergeSubtree merges the branch into the existing prefix as one squashed
// commit.
func (manager *SubtreeManager) MergeSubtree(executionContext context.Context, prefix string, branchName string) error {
	prefixArgument := fmt.Sprintf(subtreePrefixFlagTemplateConstant, prefix)
	if _, executionError := manager.runGit(executionContext, subtreeSubcommandConstant, subtreeMergeSubcommandConstant, prefixArgument, subtreeSquashFlagConstant, branchName); executionError != nil {
		return wrapGitError(executionError)
	}
	return nil
}

// PullSubtree pulls the latest squashed state of a branch into the existing
// prefix.
func (manager *SubtreeManager) PullSubtree(executionContext context.Context, prefix string, branchName string) error {
	prefixArgument := fmt.Sprintf(subtreePrefixFlagTemplateConstant, prefix)
	if _, executionError := manager.runGit(executionContext, subtreeSubcommandConstant, subtreePullSubcommandConstant, prefixArgument, subtreeSquashFlagConstant, branchName); executionError != nil {
		return wrapGitError(executionError)
	}
	return nil
}

// RemoveSubtree deletes the prefix directory recursively and stages the
// deletion. Git has no native primitive for this, so the removal happens on
// the filesystem; the caller commits separately. Missing prefixes are a
// no-op success.
func (manager *SubtreeManager) RemoveSubtree(executionContext context.Context, prefix string) error {
	subtreePath := filepath.Join(manager.workingDirectory, prefix)
	if _, statError := os.Stat(subtreePath); statError != nil {
		if os.IsNotExist(statError) {
			return nil
		}
		return clierrors.NewFileSystemError(
			fmt.Sprintf(subtreeRemoveFailureTemplateConstant, prefix, statError),
			subtreeRemoveFailureSuggestion,
		).WithCause(statError)
	}

	if removeError := os.RemoveAll(subtreePath); removeError != nil {
		return clierrors.NewFileSystemError(
			fmt.Sprintf(subtreeRemoveFailureTemplateConstant, prefix, removeError),
			subtreeRemoveFailureSuggestion,
		).WithCause(removeError)
	}

	if _, executionError := manager.runGit(executionContext, addSubcommandConstant, prefix); executionError != nil {
		return wrapGitError(executionError)
	}

	return nil
}
