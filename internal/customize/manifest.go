package customize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/temirov/devsync/internal/clierrors"
)

const (
	runArgumentsKeyConstant           = "runArgs"
	postStartCommandKeyConstant       = "postStartCommand"
	waitForKeyConstant                = "waitFor"
	firewallValueFragmentConstant     = "firewall"
	netAdminCapabilityMarkerConstant  = "--cap-add=NET_ADMIN"
	netRawCapabilityMarkerConstant    = "--cap-add=NET_RAW"
	manifestIndentConstant            = "  "
	manifestReadFailureTemplate       = "Failed to read devcontainer.json: %v"
	manifestWriteFailureTemplate      = "Failed to write modified devcontainer.json: %v"
	manifestInvalidJSONTemplate       = "Invalid JSON in devcontainer.json: %v"
	manifestInvalidJSONSuggestion     = "Fix JSON syntax errors in devcontainer.json"
	manifestFileSystemSuggestion      = "Check file permissions and available disk space"
	capabilitiesRemovedChangeConstant = "Removed NET_ADMIN and NET_RAW capabilities from runArgs"
	postStartRemovedChangeConstant    = "Removed postStartCommand referencing firewall"
	waitForRemovedChangeConstant      = "Removed waitFor since postStartCommand was removed"
)

// StripManifestFirewall removes firewall configuration from the
// devcontainer.json at manifestPath: runArgs entries carrying the NET_ADMIN or
// NET_RAW capability, a postStartCommand referencing the firewall, and a
// waitFor left dangling once that postStartCommand is gone. The file is
// rewritten only when at least one change was made; every other field keeps
// its value.
func StripManifestFirewall(manifestPath string) (ManifestStrip, error) {
	manifestContent, readError := os.ReadFile(manifestPath)
	if readError != nil {
		return ManifestStrip{}, clierrors.NewFileSystemError(
			fmt.Sprintf(manifestReadFailureTemplate, readError),
			manifestFileSystemSuggestion,
		).WithCause(readError)
	}

	// UseNumber keeps integers beyond float64 precision intact across the rewrite.
	manifestDecoder := json.NewDecoder(bytes.NewReader(manifestContent))
	manifestDecoder.UseNumber()

	var manifestDocument map[string]any
	if decodeError := manifestDecoder.Decode(&manifestDocument); decodeError != nil {
		return ManifestStrip{}, clierrors.NewRepositoryError(
			fmt.Sprintf(manifestInvalidJSONTemplate, decodeError),
			manifestInvalidJSONSuggestion,
		).WithCause(decodeError)
	}

	var manifestChanges []string

	if runArguments, hasRunArguments := manifestDocument[runArgumentsKeyConstant].([]any); hasRunArguments {
		retainedArguments := make([]any, 0, len(runArguments))
		for _, runArgument := range runArguments {
			if argumentText, isText := runArgument.(string); isText && containsCapabilityMarker(argumentText) {
				continue
			}
			retainedArguments = append(retainedArguments, runArgument)
		}
		if len(retainedArguments) < len(runArguments) {
			manifestDocument[runArgumentsKeyConstant] = retainedArguments
			manifestChanges = append(manifestChanges, capabilitiesRemovedChangeConstant)
		}
	}

	if postStartCommand, hasPostStart := manifestDocument[postStartCommandKeyConstant].(string); hasPostStart {
		if strings.Contains(postStartCommand, firewallValueFragmentConstant) {
			delete(manifestDocument, postStartCommandKeyConstant)
			manifestChanges = append(manifestChanges, postStartRemovedChangeConstant)
		}
	}

	if waitForValue, hasWaitFor := manifestDocument[waitForKeyConstant].(string); hasWaitFor {
		_, postStartStillPresent := manifestDocument[postStartCommandKeyConstant]
		if waitForValue == postStartCommandKeyConstant && !postStartStillPresent {
			delete(manifestDocument, waitForKeyConstant)
			manifestChanges = append(manifestChanges, waitForRemovedChangeConstant)
		}
	}

	if len(manifestChanges) == 0 {
		return ManifestStrip{}, nil
	}

	modifiedContent, marshalError := json.MarshalIndent(manifestDocument, "", manifestIndentConstant)
	if marshalError != nil {
		return ManifestStrip{}, clierrors.NewRepositoryError(
			fmt.Sprintf("Failed to serialize modified JSON: %v", marshalError),
			"This is likely a bug in the JSON modification logic",
		).WithCause(marshalError)
	}

	if writeError := os.WriteFile(manifestPath, modifiedContent, 0o644); writeError != nil {
		return ManifestStrip{}, clierrors.NewFileSystemError(
			fmt.Sprintf(manifestWriteFailureTemplate, writeError),
			manifestFileSystemSuggestion,
		).WithCause(writeError)
	}

	return ManifestStrip{Changes: manifestChanges}, nil
}

func containsCapabilityMarker(argumentText string) bool {
	return strings.Contains(argumentText, netAdminCapabilityMarkerConstant) ||
		strings.Contains(argumentText, netRawCapabilityMarkerConstant)
}
