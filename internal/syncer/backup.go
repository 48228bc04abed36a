package syncer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/temirov/devsync/internal/clierrors"
)

const (
	backupSuffixConstant               = ".backup"
	backupMissingSourceMessageConstant = "No .devcontainer directory found to backup"
	backupMissingSourceSuggestion      = "Run 'devsync init' first to create devcontainer configuration"
	backupReplaceFailureTemplate       = "Failed to remove existing backup directory: %v"
	backupCopyFailureTemplateConstant  = "Failed to copy devcontainer directory to backup: %v"
	backupFileSystemSuggestionConstant = "Check file permissions and available disk space"
)

// BackupDevcontainer copies the subtree prefix to a sibling `<prefix>.backup`
// directory, replacing any previous backup. It returns the backup path and
// fails when the prefix does not exist.
func BackupDevcontainer(workingDirectory string, subtreePrefix string) (string, error) {
	sourcePath := filepath.Join(workingDirectory, subtreePrefix)
	backupPath := sourcePath + backupSuffixConstant

	if _, statError := os.Stat(sourcePath); statError != nil {
		return "", clierrors.NewFileSystemError(backupMissingSourceMessageConstant, backupMissingSourceSuggestion).WithCause(statError)
	}

	if _, statError := os.Stat(backupPath); statError == nil {
		if removeError := os.RemoveAll(backupPath); removeError != nil {
			return "", clierrors.NewFileSystemError(
				fmt.Sprintf(backupReplaceFailureTemplate, removeError),
				backupFileSystemSuggestionConstant,
			).WithCause(removeError)
		}
	}

	if copyError := os.CopyFS(backupPath, os.DirFS(sourcePath)); copyError != nil {
		return "", clierrors.NewFileSystemError(
			fmt.Sprintf(backupCopyFailureTemplateConstant, copyError),
			backupFileSystemSuggestionConstant,
		).WithCause(copyError)
	}

	return backupPath, nil
}
