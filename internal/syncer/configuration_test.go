package syncer_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/devsync/internal/clierrors"
	"github.com/temirov/devsync/internal/syncer"
)

const (
	configurationSectionKeyConstant = "tools.sync"
	nestedFileRelativePathConstant  = "scripts/setup.sh"
)

func TestDefaultConfiguration(testInstance *testing.T) {
	configuration := syncer.DefaultConfiguration()
	require.Equal(testInstance, "master", configuration.BaseBranch)
	require.Equal(testInstance, 30*time.Second, configuration.CommandTimeout)
	require.False(testInstance, configuration.StripFirewall)
	require.False(testInstance, configuration.Backup)
}

func TestDefaultConfigurationValuesKeyedUnderSection(testInstance *testing.T) {
	defaultValues := syncer.DefaultConfigurationValues(configurationSectionKeyConstant)

	require.Equal(testInstance, "master", defaultValues["tools.sync.base_branch"])
	require.Equal(testInstance, "30s", defaultValues["tools.sync.command_timeout"])
	require.Equal(testInstance, false, defaultValues["tools.sync.strip_firewall"])
	require.Equal(testInstance, false, defaultValues["tools.sync.backup"])
}

func TestBackupDevcontainerCopiesDirectoryTree(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()
	sourcePath := filepath.Join(workingDirectory, syncer.SubtreePrefixConstant)
	require.NoError(testInstance, os.MkdirAll(filepath.Join(sourcePath, filepath.Dir(nestedFileRelativePathConstant)), 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(sourcePath, "devcontainer.json"), []byte("{}"), 0o644))
	require.NoError(testInstance, os.WriteFile(filepath.Join(sourcePath, nestedFileRelativePathConstant), []byte("#!/bin/bash\n"), 0o755))

	backupPath, backupError := syncer.BackupDevcontainer(workingDirectory, syncer.SubtreePrefixConstant)
	require.NoError(testInstance, backupError)
	require.Equal(testInstance, sourcePath+".backup", backupPath)
	require.FileExists(testInstance, filepath.Join(backupPath, "devcontainer.json"))
	require.FileExists(testInstance, filepath.Join(backupPath, nestedFileRelativePathConstant))
}

func TestBackupDevcontainerReplacesPreviousBackup(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()
	sourcePath := filepath.Join(workingDirectory, syncer.SubtreePrefixConstant)
	require.NoError(testInstance, os.Mkdir(sourcePath, 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(sourcePath, "devcontainer.json"), []byte("{}"), 0o644))

	previousBackupPath := sourcePath + ".backup"
	require.NoError(testInstance, os.Mkdir(previousBackupPath, 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(previousBackupPath, "stale.txt"), []byte("stale"), 0o644))

	backupPath, backupError := syncer.BackupDevcontainer(workingDirectory, syncer.SubtreePrefixConstant)
	require.NoError(testInstance, backupError)
	require.NoFileExists(testInstance, filepath.Join(backupPath, "stale.txt"))
	require.FileExists(testInstance, filepath.Join(backupPath, "devcontainer.json"))
}

func TestBackupDevcontainerFailsWithoutSource(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()

	_, backupError := syncer.BackupDevcontainer(workingDirectory, syncer.SubtreePrefixConstant)
	require.Error(testInstance, backupError)

	var categorizedError *clierrors.CategorizedError
	require.ErrorAs(testInstance, backupError, &categorizedError)
	require.Equal(testInstance, clierrors.CategoryFileSystem, categorizedError.Category)
	require.Contains(testInstance, backupError.Error(), "No .devcontainer directory found")
}
