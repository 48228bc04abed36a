package customize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/devsync/internal/clierrors"
)

const (
	shellScriptExtensionConstant        = ".sh"
	scriptReadFailureTemplateConstant   = "Failed to read script %s: %v"
	scriptRemoveFailureTemplateConstant = "Failed to remove firewall script %s: %v"
	scriptDirectoryFailureTemplate      = "Failed to scan devcontainer directory %s: %v"
	scriptFileSystemSuggestionConstant  = "Check file permissions and try again"
)

var canonicalFirewallScriptNames = []string{
	"init-firewall.sh",
	"firewall.sh",
	"iptables.sh",
}

// DetectFirewallScripts lists the firewall scripts under devcontainerPath.
// Canonical script names qualify by name alone; every other shell script
// qualifies when its content matches at least one firewall pattern.
func DetectFirewallScripts(devcontainerPath string) ([]string, error) {
	var detectedScripts []string
	detectedNames := map[string]struct{}{}

	for _, canonicalName := range canonicalFirewallScriptNames {
		canonicalPath := filepath.Join(devcontainerPath, canonicalName)
		if _, statError := os.Stat(canonicalPath); statError == nil {
			detectedScripts = append(detectedScripts, canonicalPath)
			detectedNames[canonicalName] = struct{}{}
		}
	}

	directoryEntries, readDirError := os.ReadDir(devcontainerPath)
	if readDirError != nil {
		return nil, clierrors.NewFileSystemError(
			fmt.Sprintf(scriptDirectoryFailureTemplate, devcontainerPath, readDirError),
			scriptFileSystemSuggestionConstant,
		).WithCause(readDirError)
	}

	for _, directoryEntry := range directoryEntries {
		if directoryEntry.IsDir() || !strings.HasSuffix(directoryEntry.Name(), shellScriptExtensionConstant) {
			continue
		}
		if _, alreadyDetected := detectedNames[directoryEntry.Name()]; alreadyDetected {
			continue
		}

		scriptPath := filepath.Join(devcontainerPath, directoryEntry.Name())
		scriptContent, readError := os.ReadFile(scriptPath)
		if readError != nil {
			return nil, clierrors.NewFileSystemError(
				fmt.Sprintf(scriptReadFailureTemplateConstant, scriptPath, readError),
				scriptFileSystemSuggestionConstant,
			).WithCause(readError)
		}

		if len(MatchFirewallPatterns(string(scriptContent))) > 0 {
			detectedScripts = append(detectedScripts, scriptPath)
		}
	}

	return detectedScripts, nil
}

// RemoveFirewallScripts deletes every detected firewall script and reports the
// removed paths.
func RemoveFirewallScripts(devcontainerPath string) (ScriptRemoval, error) {
	detectedScripts, detectionError := DetectFirewallScripts(devcontainerPath)
	if detectionError != nil {
		return ScriptRemoval{}, detectionError
	}

	var removedPaths []string
	for _, scriptPath := range detectedScripts {
		if removeError := os.Remove(scriptPath); removeError != nil {
			return ScriptRemoval{}, clierrors.NewFileSystemError(
				fmt.Sprintf(scriptRemoveFailureTemplateConstant, scriptPath, removeError),
				scriptFileSystemSuggestionConstant,
			).WithCause(removeError)
		}
		removedPaths = append(removedPaths, scriptPath)
	}

	return ScriptRemoval{RemovedPaths: removedPaths}, nil
}
