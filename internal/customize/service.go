package customize

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/devsync/internal/gitrepo"
)

const (
	manifestFileNameConstant            = "devcontainer.json"
	dockerfileFileNameConstant          = "Dockerfile"
	manifestMissingWarningConstant      = "devcontainer.json not found"
	dockerfileMissingWarningConstant    = "Dockerfile not found"
	noScriptsWarningConstant            = "No firewall scripts were found to remove"
	noDockerfileChangesWarningConstant  = "No firewall configurations found in Dockerfile"
	noManifestChangesWarningConstant    = "No firewall configurations found in devcontainer.json"
	commitChangesHeaderConstant         = "Changes made:"
	commitChangeItemPrefixConstant      = "- "
	strippingStartedLogMessageConstant  = "firewall stripping started"
	strippingFinishedLogMessageConstant = "firewall stripping finished"
	logFieldDevcontainerPathConstant    = "devcontainer_path"
	logFieldFilesModifiedConstant       = "files_modified"
	logFieldFilesRemovedConstant        = "files_removed"
	logFieldWarningsConstant            = "warnings"
)

// Service orchestrates firewall stripping over a devcontainer directory and
// commits the outcome through the repository worktree.
type Service struct {
	logger          *zap.Logger
	worktreeManager *gitrepo.WorktreeManager
}

// NewService constructs a customization service. A nil logger falls back to a
// nop logger so callers without logging configured still work.
func NewService(logger *zap.Logger, worktreeManager *gitrepo.WorktreeManager) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, worktreeManager: worktreeManager}
}

// StripFirewallFeatures removes firewall scripts, manifest entries, and
// Dockerfile provisioning under devcontainerPath, then folds validation
// warnings into the merged result. Missing files downgrade to warnings; only
// filesystem and parse failures abort the run.
func (service *Service) StripFirewallFeatures(devcontainerPath string) (FirewallRemovalResult, error) {
	service.logger.Debug(strippingStartedLogMessageConstant, zap.String(logFieldDevcontainerPathConstant, devcontainerPath))

	var mergedResult FirewallRemovalResult

	scriptRemoval, scriptError := RemoveFirewallScripts(devcontainerPath)
	if scriptError != nil {
		return FirewallRemovalResult{}, scriptError
	}
	mergedResult.FilesRemoved = append(mergedResult.FilesRemoved, scriptRemoval.RemovedPaths...)

	manifestPath := filepath.Join(devcontainerPath, manifestFileNameConstant)
	if _, statError := os.Stat(manifestPath); statError == nil {
		manifestStrip, manifestError := StripManifestFirewall(manifestPath)
		if manifestError != nil {
			return FirewallRemovalResult{}, manifestError
		}
		if len(manifestStrip.Changes) > 0 {
			mergedResult.FilesModified = append(mergedResult.FilesModified, manifestPath)
			mergedResult.ManifestChanges = append(mergedResult.ManifestChanges, manifestStrip.Changes...)
		}
	} else {
		mergedResult.Warnings = append(mergedResult.Warnings, manifestMissingWarningConstant)
	}

	dockerfilePath := filepath.Join(devcontainerPath, dockerfileFileNameConstant)
	if _, statError := os.Stat(dockerfilePath); statError == nil {
		dockerfileStrip, dockerfileError := StripDockerfileFirewall(dockerfilePath)
		if dockerfileError != nil {
			return FirewallRemovalResult{}, dockerfileError
		}
		if len(dockerfileStrip.Changes) > 0 {
			mergedResult.FilesModified = append(mergedResult.FilesModified, dockerfilePath)
			mergedResult.DockerfileChanges = append(mergedResult.DockerfileChanges, dockerfileStrip.Changes...)
		}
	} else {
		mergedResult.Warnings = append(mergedResult.Warnings, dockerfileMissingWarningConstant)
	}

	mergedResult.Warnings = append(mergedResult.Warnings, ValidateFirewallRemoval(mergedResult)...)

	service.logger.Debug(strippingFinishedLogMessageConstant,
		zap.Int(logFieldFilesModifiedConstant, len(mergedResult.FilesModified)),
		zap.Int(logFieldFilesRemovedConstant, len(mergedResult.FilesRemoved)),
		zap.Int(logFieldWarningsConstant, len(mergedResult.Warnings)),
	)

	return mergedResult, nil
}

// ValidateFirewallRemoval reports a warning for every stripping category that
// produced no changes, so callers can tell users what was not found without
// failing the run.
func ValidateFirewallRemoval(removalResult FirewallRemovalResult) []string {
	var validationWarnings []string
	if len(removalResult.FilesRemoved) == 0 {
		validationWarnings = append(validationWarnings, noScriptsWarningConstant)
	}
	if len(removalResult.DockerfileChanges) == 0 {
		validationWarnings = append(validationWarnings, noDockerfileChangesWarningConstant)
	}
	if len(removalResult.ManifestChanges) == 0 {
		validationWarnings = append(validationWarnings, noManifestChangesWarningConstant)
	}
	return validationWarnings
}

// CommitCustomizations stages the subtree prefix and commits with the summary
// message followed by an itemized list of changes.
func (service *Service) CommitCustomizations(executionContext context.Context, subtreePrefix string, changeSummaries []string, commitMessage string) error {
	if stageError := service.worktreeManager.StagePath(executionContext, subtreePrefix); stageError != nil {
		return stageError
	}
	return service.worktreeManager.Commit(executionContext, buildCommitMessage(commitMessage, changeSummaries))
}

func buildCommitMessage(commitMessage string, changeSummaries []string) string {
	if len(changeSummaries) == 0 {
		return commitMessage
	}

	var messageBuilder strings.Builder
	messageBuilder.WriteString(commitMessage)
	messageBuilder.WriteString("\n\n")
	messageBuilder.WriteString(commitChangesHeaderConstant)
	for _, changeSummary := range changeSummaries {
		messageBuilder.WriteString("\n")
		messageBuilder.WriteString(commitChangeItemPrefixConstant)
		messageBuilder.WriteString(changeSummary)
	}
	return messageBuilder.String()
}
