package syncer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/devsync/internal/clierrors"
	"github.com/temirov/devsync/internal/customize"
	"github.com/temirov/devsync/internal/gitrepo"
	"github.com/temirov/devsync/internal/ui"
)

const (
	executorNotConfiguredMessageConstant = "git executor not configured"

	overwritePromptConstant = "Warning: .devcontainer directory already exists.\n" +
		"This will overwrite existing devcontainer configurations.\n" +
		"Continue? (y/N): "
	promptReadFailureTemplateConstant = "Failed to read user input: %v"
	promptReadFailureSuggestion       = "Try running the command again"

	initCommitMessageConstant   = "Strip firewall configurations from devcontainer"
	updateCommitMessageConstant = "Strip firewall configurations from updated devcontainer"
	removeCommitMessageConstant = "Remove devcontainer configuration"

	stepAddRemoteDescriptionConstant        = "Adding Claude Code remote"
	stepFetchDescriptionConstant            = "Fetching from Claude Code repository"
	stepCreateTrackingDescriptionConstant   = "Creating tracking branch"
	stepCheckoutTrackingDescription         = "Switching to tracking branch"
	stepSplitDescriptionConstant            = "Extracting devcontainer subtree"
	stepCheckoutBaseDescriptionConstant     = "Returning to base branch"
	stepAddSubtreeDescriptionConstant       = "Adding devcontainer files"
	stepMergeSubtreeDescriptionConstant     = "Merging updated devcontainer files"
	stepBackupDescriptionConstant           = "Creating backup of existing devcontainer configuration"
	stepResetTrackingDescriptionConstant    = "Updating tracking branch"
	stepStripFirewallDescriptionConstant    = "Stripping firewall configurations"
	stepRemoveRemoteDescriptionConstant     = "Removing Claude remote"
	stepDeleteTrackingDescriptionConstant   = "Deleting tracking branch"
	stepDeleteExtractionDescriptionConstant = "Cleaning up subtree branches"
	stepRemoveSubtreeDescriptionConstant    = "Removing devcontainer directory"

	backupWarningTemplateConstant        = "Backup failed, continuing without backup: %v"
	stripFailureWarningTemplateConstant  = "Firewall stripping failed: %v"
	commitFailureWarningTemplateConstant = "Failed to commit firewall customizations: %v"
	noStripChangesWarningMessageConstant = "No firewall configurations found to strip"
	backupCreatedLogMessageConstant      = "backup created"
	workflowCompletedLogMessageConstant  = "workflow completed"
	logFieldWorkflowNameConstant         = "workflow"
	logFieldBackupPathConstant           = "backup_path"
	initializeWorkflowNameConstant       = "initialize"
	updateWorkflowNameConstant           = "update"
	removeWorkflowNameConstant           = "remove"
)

// InitializeOptions configures the initialize workflow.
type InitializeOptions struct {
	StripFirewall bool
}

// UpdateOptions configures the update workflow. Force is accepted for command
// line compatibility and currently changes nothing: update has no
// confirmation to skip.
type UpdateOptions struct {
	Backup        bool
	Force         bool
	StripFirewall bool
}

// RemoveOptions configures the remove workflow.
type RemoveOptions struct {
	KeepFiles bool
}

// Service runs the synchronization workflows against one working directory.
type Service struct {
	logger           *zap.Logger
	configuration    Configuration
	workingDirectory string
	validator        *gitrepo.RepositoryValidator
	remoteManager    *gitrepo.RemoteManager
	branchManager    *gitrepo.BranchManager
	subtreeManager   *gitrepo.SubtreeManager
	worktreeManager  *gitrepo.WorktreeManager
	customizer       *customize.Service
	prompter         ui.ConfirmationPrompter
	reporter         ui.StepReporter
}

// NewService wires the workflow service from a git executor and its
// collaborators. A nil prompter defaults to an interactive stdin prompter and
// a nil reporter discards progress.
func NewService(logger *zap.Logger, executor gitrepo.GitExecutor, workingDirectory string, configuration Configuration, prompter ui.ConfirmationPrompter, reporter ui.StepReporter) (*Service, error) {
	if executor == nil {
		return nil, errors.New(executorNotConfiguredMessageConstant)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if prompter == nil {
		prompter = ui.NewIOConfirmationPrompter(os.Stdin, os.Stdout)
	}
	if reporter == nil {
		reporter = ui.NoopStepReporter{}
	}

	sanitizedConfiguration := configuration.sanitize()
	commandTimeout := sanitizedConfiguration.CommandTimeout
	worktreeManager := gitrepo.NewWorktreeManager(executor, workingDirectory, commandTimeout)

	return &Service{
		logger:           logger,
		configuration:    sanitizedConfiguration,
		workingDirectory: workingDirectory,
		validator:        gitrepo.NewRepositoryValidator(executor, workingDirectory, commandTimeout),
		remoteManager:    gitrepo.NewRemoteManager(executor, workingDirectory, commandTimeout),
		branchManager:    gitrepo.NewBranchManager(executor, workingDirectory, commandTimeout),
		subtreeManager:   gitrepo.NewSubtreeManager(executor, workingDirectory, commandTimeout),
		worktreeManager:  worktreeManager,
		customizer:       customize.NewService(logger, worktreeManager),
		prompter:         prompter,
		reporter:         reporter,
	}, nil
}

// Initialize establishes the subtree integration: it validates the repository,
// asks before overwriting an existing prefix, wires the upstream remote and
// tracking branch, and grafts the extracted subtree onto the base branch.
func (service *Service) Initialize(executionContext context.Context, options InitializeOptions) error {
	if validationError := service.validator.ValidateRepository(executionContext); validationError != nil {
		return validationError
	}
	if validationError := service.validator.ValidateHasCommits(executionContext); validationError != nil {
		return validationError
	}

	if confirmationError := service.confirmOverwrite(); confirmationError != nil {
		return confirmationError
	}

	if stepError := service.runRequiredStep(stepAddRemoteDescriptionConstant, func() error {
		return service.remoteManager.AddRemote(executionContext, UpstreamRemoteNameConstant, UpstreamRemoteURLConstant)
	}); stepError != nil {
		return stepError
	}

	if stepError := service.runRequiredStep(stepFetchDescriptionConstant, func() error {
		return service.remoteManager.FetchRemote(executionContext, UpstreamRemoteNameConstant)
	}); stepError != nil {
		return stepError
	}

	if stepError := service.runRequiredStep(stepCreateTrackingDescriptionConstant, func() error {
		return service.branchManager.ForceCreateBranch(executionContext, TrackingBranchNameConstant, UpstreamBranchReferenceConstant)
	}); stepError != nil {
		return stepError
	}

	if stepError := service.runRequiredStep(stepCheckoutTrackingDescription, func() error {
		return service.branchManager.CheckoutBranch(executionContext, TrackingBranchNameConstant)
	}); stepError != nil {
		return stepError
	}

	if stepError := service.runRequiredStep(stepSplitDescriptionConstant, func() error {
		return service.subtreeManager.SplitSubtree(executionContext, SubtreePrefixConstant, ExtractionBranchNameConstant)
	}); stepError != nil {
		return stepError
	}

	if stepError := service.runRequiredStep(stepCheckoutBaseDescriptionConstant, func() error {
		return service.branchManager.CheckoutBranch(executionContext, service.configuration.BaseBranch)
	}); stepError != nil {
		return stepError
	}

	if stepError := service.runRequiredStep(stepAddSubtreeDescriptionConstant, func() error {
		return service.subtreeManager.AddSubtree(executionContext, SubtreePrefixConstant, ExtractionBranchNameConstant, true)
	}); stepError != nil {
		return stepError
	}

	if options.StripFirewall {
		service.stripFirewall(executionContext, initCommitMessageConstant)
	}

	service.logger.Info(workflowCompletedLogMessageConstant, zap.String(logFieldWorkflowNameConstant, initializeWorkflowNameConstant))
	return nil
}

// Update pulls the latest upstream state into the existing subtree. Backup
// and firewall stripping are optional steps whose failures downgrade to
// warnings.
func (service *Service) Update(executionContext context.Context, options UpdateOptions) error {
	if validationError := service.validator.ValidateRepository(executionContext); validationError != nil {
		return validationError
	}

	if options.Backup {
		service.reporter.StepStarted(stepBackupDescriptionConstant)
		backupPath, backupError := BackupDevcontainer(service.workingDirectory, SubtreePrefixConstant)
		if backupError != nil {
			service.reporter.Warning(fmt.Sprintf(backupWarningTemplateConstant, backupError))
		} else {
			service.reporter.StepCompleted(stepBackupDescriptionConstant)
			service.logger.Info(backupCreatedLogMessageConstant, zap.String(logFieldBackupPathConstant, backupPath))
		}
	}

	if stepError := service.runRequiredStep(stepFetchDescriptionConstant, func() error {
		return service.remoteManager.FetchRemote(executionContext, UpstreamRemoteNameConstant)
	}); stepError != nil {
		return stepError
	}

	if stepError := service.runRequiredStep(stepResetTrackingDescriptionConstant, func() error {
		if checkoutError := service.branchManager.CheckoutBranch(executionContext, TrackingBranchNameConstant); checkoutError != nil {
			return checkoutError
		}
		return service.branchManager.ResetHard(executionContext, UpstreamBranchReferenceConstant)
	}); stepError != nil {
		return stepError
	}

	if stepError := service.runRequiredStep(stepSplitDescriptionConstant, func() error {
		return service.subtreeManager.SplitSubtree(executionContext, SubtreePrefixConstant, UpdatedExtractionBranchConstant)
	}); stepError != nil {
		return stepError
	}

	if stepError := service.runRequiredStep(stepCheckoutBaseDescriptionConstant, func() error {
		return service.branchManager.CheckoutBranch(executionContext, service.configuration.BaseBranch)
	}); stepError != nil {
		return stepError
	}

	if stepError := service.runRequiredStep(stepMergeSubtreeDescriptionConstant, func() error {
		return service.subtreeManager.MergeSubtree(executionContext, SubtreePrefixConstant, UpdatedExtractionBranchConstant)
	}); stepError != nil {
		return stepError
	}

	if options.StripFirewall {
		service.stripFirewall(executionContext, updateCommitMessageConstant)
	}

	service.logger.Info(workflowCompletedLogMessageConstant, zap.String(logFieldWorkflowNameConstant, updateWorkflowNameConstant))
	return nil
}

// Remove tears the integration down: the remote and tracking branch must
// exist and fail the workflow when absent, extraction branches are deleted
// best effort, and the prefix directory is removed and committed unless the
// caller keeps the files.
func (service *Service) Remove(executionContext context.Context, options RemoveOptions) error {
	if validationError := service.validator.ValidateRepository(executionContext); validationError != nil {
		return validationError
	}

	if stepError := service.runRequiredStep(stepRemoveRemoteDescriptionConstant, func() error {
		return service.remoteManager.RemoveRemote(executionContext, UpstreamRemoteNameConstant)
	}); stepError != nil {
		return stepError
	}

	if stepError := service.runRequiredStep(stepDeleteTrackingDescriptionConstant, func() error {
		return service.branchManager.DeleteBranch(executionContext, TrackingBranchNameConstant)
	}); stepError != nil {
		return stepError
	}

	service.reporter.StepStarted(stepDeleteExtractionDescriptionConstant)
	_ = service.branchManager.DeleteBranch(executionContext, ExtractionBranchNameConstant)
	_ = service.branchManager.DeleteBranch(executionContext, UpdatedExtractionBranchConstant)
	service.reporter.StepCompleted(stepDeleteExtractionDescriptionConstant)

	if !options.KeepFiles {
		if stepError := service.runRequiredStep(stepRemoveSubtreeDescriptionConstant, func() error {
			if removeError := service.subtreeManager.RemoveSubtree(executionContext, SubtreePrefixConstant); removeError != nil {
				return removeError
			}
			return service.worktreeManager.Commit(executionContext, removeCommitMessageConstant)
		}); stepError != nil {
			return stepError
		}
	}

	service.logger.Info(workflowCompletedLogMessageConstant, zap.String(logFieldWorkflowNameConstant, removeWorkflowNameConstant))
	return nil
}

// confirmOverwrite prompts before touching an existing prefix directory. A
// declined prompt cancels the workflow before any mutation.
func (service *Service) confirmOverwrite() error {
	prefixPath := filepath.Join(service.workingDirectory, SubtreePrefixConstant)
	if _, statError := os.Stat(prefixPath); statError != nil {
		return nil
	}

	confirmed, promptError := service.prompter.Confirm(overwritePromptConstant)
	if promptError != nil {
		return clierrors.NewFileSystemError(
			fmt.Sprintf(promptReadFailureTemplateConstant, promptError),
			promptReadFailureSuggestion,
		).WithCause(promptError)
	}
	if !confirmed {
		return clierrors.OperationCancelled()
	}
	return nil
}

// stripFirewall runs the optional customization step. Stripping and commit
// failures are reported as warnings so a completed sync never fails on
// customization.
func (service *Service) stripFirewall(executionContext context.Context, commitMessage string) {
	service.reporter.StepStarted(stepStripFirewallDescriptionConstant)

	devcontainerPath := filepath.Join(service.workingDirectory, SubtreePrefixConstant)
	removalResult, stripError := service.customizer.StripFirewallFeatures(devcontainerPath)
	if stripError != nil {
		service.reporter.Warning(fmt.Sprintf(stripFailureWarningTemplateConstant, stripError))
		return
	}

	for _, warningMessage := range removalResult.Warnings {
		service.reporter.Warning(warningMessage)
	}

	if !removalResult.HasChanges() {
		service.reporter.Warning(noStripChangesWarningMessageConstant)
		return
	}

	if commitError := service.customizer.CommitCustomizations(executionContext, SubtreePrefixConstant, removalResult.ChangeSummaries(), commitMessage); commitError != nil {
		service.reporter.Warning(fmt.Sprintf(commitFailureWarningTemplateConstant, commitError))
		return
	}

	service.reporter.StepCompleted(stepStripFirewallDescriptionConstant)
}

// runRequiredStep reports progress around a step whose failure aborts the
// workflow.
func (service *Service) runRequiredStep(stepDescription string, step func() error) error {
	service.reporter.StepStarted(stepDescription)
	if stepError := step(); stepError != nil {
		service.reporter.StepFailed(stepDescription, stepError)
		return stepError
	}
	service.reporter.StepCompleted(stepDescription)
	return nil
}
