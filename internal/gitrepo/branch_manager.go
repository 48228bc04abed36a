package gitrepo

import (
	"context"
	"strings"
	"time"
)

const (
	branchSubcommandConstant       = "branch"
	branchForceFlagConstant        = "-f"
	branchForceDeleteFlagConstant  = "-D"
	branchVerboseFlagConstant      = "-vv"
	checkoutSubcommandConstant     = "checkout"
	resetSubcommandConstant        = "reset"
	resetHardFlagConstant          = "--hard"
	currentBranchMarkerConstant    = "*"
	upstreamOpeningBracketConstant = "["
	upstreamClosingBracketConstant = "]"
)

// Branch describes one local branch parsed from a verbose listing.
type Branch struct {
	Name      string
	IsCurrent bool
	Upstream  string
}

// BranchManager implements create, checkout, delete, reset, and list
// operations over local branches.
type BranchManager struct {
	managerBase
}

// NewBranchManager constructs a branch manager bound to a working directory.
func NewBranchManager(executor GitExecutor, workingDirectory string, commandTimeout time.Duration) *BranchManager {
	return &BranchManager{managerBase{executor: executor, workingDirectory: workingDirectory, commandTimeout: commandTimeout}}
}

// CreateBranch creates the branch at the given source, failing when the
// branch already exists.
func (manager *BranchManager) CreateBranch(executionContext context.Context, branchName string, sourceReference string) error {
	if _, executionError := manager.runGit(executionContext, branchSubcommandConstant, branchName, sourceReference); executionError != nil {
		return wrapGitError(executionError)
	}
	return nil
}

// ForceCreateBranch unconditionally rewrites the branch to point at the
// source reference.
func (manager *BranchManager) ForceCreateBranch(executionContext context.Context, branchName string, sourceReference string) error {
	if _, executionError := manager.runGit(executionContext, branchSubcommandConstant, branchForceFlagConstant, branchName, sourceReference); executionError != nil {
		return wrapGitError(executionError)
	}
	return nil
}

// CheckoutBranch switches the working tree to the named branch.
func (manager *BranchManager) CheckoutBranch(executionContext context.Context, branchName string) error {
	if _, executionError := manager.runGit(executionContext, checkoutSubcommandConstant, branchName); executionError != nil {
		return wrapGitError(executionError)
	}
	return nil
}

// DeleteBranch force-deletes the named branch.
func (manager *BranchManager) DeleteBranch(executionContext context.Context, branchName string) error {
	if _, executionError := manager.runGit(executionContext, branchSubcommandConstant, branchForceDeleteFlagConstant, branchName); executionError != nil {
		return wrapGitError(executionError)
	}
	return nil
}

// ResetHard discards local state on the current branch and moves it to the
// given reference.
func (manager *BranchManager) ResetHard(executionContext context.Context, targetReference string) error {
	if _, executionError := manager.runGit(executionContext, resetSubcommandConstant, resetHardFlagConstant, targetReference); executionError != nil {
		return wrapGitError(executionError)
	}
	return nil
}

// ListBranches parses `git branch -vv` into Branch records, detecting the
// current-branch marker and the optional bracketed upstream annotation.
func (manager *BranchManager) ListBranches(executionContext context.Context) ([]Branch, error) {
	executionResult, executionError := manager.runGit(executionContext, branchSubcommandConstant, branchVerboseFlagConstant)
	if executionError != nil {
		return nil, wrapGitError(executionError)
	}

	var branches []Branch
	for _, outputLine := range strings.Split(executionResult.StandardOutput, "\n") {
		trimmedLine := strings.TrimSpace(outputLine)
		if len(trimmedLine) == 0 {
			continue
		}

		isCurrent := strings.HasPrefix(trimmedLine, currentBranchMarkerConstant)
		if isCurrent {
			trimmedLine = strings.TrimSpace(strings.TrimPrefix(trimmedLine, currentBranchMarkerConstant))
		}

		lineFields := strings.Fields(trimmedLine)
		if len(lineFields) == 0 {
			continue
		}

		upstream := ""
		if openingIndex := strings.Index(trimmedLine, upstreamOpeningBracketConstant); openingIndex >= 0 {
			if closingIndex := strings.Index(trimmedLine, upstreamClosingBracketConstant); closingIndex > openingIndex {
				upstream = trimmedLine[openingIndex+1 : closingIndex]
			}
		}

		branches = append(branches, Branch{Name: lineFields[0], IsCurrent: isCurrent, Upstream: upstream})
	}

	return branches, nil
}
