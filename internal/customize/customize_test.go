package customize_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/devsync/internal/customize"
	"github.com/temirov/devsync/internal/execshell"
	"github.com/temirov/devsync/internal/gitrepo"
)

const (
	manifestFixtureWithFirewall = `{
  "name": "Test Container",
  "runArgs": [
    "--cap-add=NET_ADMIN",
    "--cap-add=NET_RAW",
    "--privileged"
  ],
  "postStartCommand": "sudo /usr/local/bin/init-firewall.sh",
  "waitFor": "postStartCommand",
  "customizations": {
    "vscode": {
      "extensions": ["ms-vscode.vscode-typescript-next"]
    }
  }
}`
	manifestFixtureWithoutFirewall = `{
  "name": "Test Container",
  "image": "node:18",
  "customizations": {
    "vscode": {
      "extensions": ["ms-vscode.vscode-typescript-next"]
    }
  }
}`
	dockerfileFixtureWithFirewall = `FROM node:20

# Install basic development tools and iptables/ipset
RUN apt-get update && apt-get install -y --no-install-recommends \
  less \
  git \
  iptables \
  ipset \
  iproute2 \
  dnsutils \
  aggregate \
  jq \
  && apt-get clean

# Copy and set up firewall script
COPY init-firewall.sh /usr/local/bin/
USER root
RUN chmod +x /usr/local/bin/init-firewall.sh && \
  echo "node ALL=(root) NOPASSWD: /usr/local/bin/init-firewall.sh" > /etc/sudoers.d/node-firewall
USER node

ENV NPM_CONFIG_PREFIX=/usr/local/share/npm-global
`
	dockerfileFixtureWithoutFirewall = `FROM node:18

RUN apt-get update && apt-get install -y \
  git \
  curl \
  vim \
  && apt-get clean

USER node
WORKDIR /app
`
)

func writeTestFile(testInstance *testing.T, directory string, fileName string, content string) string {
	testInstance.Helper()
	filePath := filepath.Join(directory, fileName)
	require.NoError(testInstance, os.WriteFile(filePath, []byte(content), 0o644))
	return filePath
}

func TestDetectFirewallScripts(testInstance *testing.T) {
	testCases := []struct {
		name          string
		scriptName    string
		scriptContent string
		expectedCount int
	}{
		{
			name:          "canonical_name_detected",
			scriptName:    "init-firewall.sh",
			scriptContent: "#!/bin/bash\niptables -F\n",
			expectedCount: 1,
		},
		{
			name:          "content_match_detected",
			scriptName:    "setup.sh",
			scriptContent: "#!/bin/bash\necho 'Setting up iptables'\niptables -A INPUT -j DROP\n",
			expectedCount: 1,
		},
		{
			name:          "clean_script_ignored",
			scriptName:    "setup.sh",
			scriptContent: "#!/bin/bash\necho 'Hello world'\n",
			expectedCount: 0,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			devcontainerPath := testInstance.TempDir()
			scriptPath := writeTestFile(testInstance, devcontainerPath, testCase.scriptName, testCase.scriptContent)

			detectedScripts, detectionError := customize.DetectFirewallScripts(devcontainerPath)
			require.NoError(testInstance, detectionError)
			require.Len(testInstance, detectedScripts, testCase.expectedCount)
			if testCase.expectedCount > 0 {
				require.Equal(testInstance, scriptPath, detectedScripts[0])
			}
		})
	}
}

func TestDetectFirewallScriptsAvoidsDuplicateForCanonicalMatch(testInstance *testing.T) {
	devcontainerPath := testInstance.TempDir()
	writeTestFile(testInstance, devcontainerPath, "firewall.sh", "#!/bin/bash\niptables -F\n")

	detectedScripts, detectionError := customize.DetectFirewallScripts(devcontainerPath)
	require.NoError(testInstance, detectionError)
	require.Len(testInstance, detectedScripts, 1)
}

func TestStripManifestFirewall(testInstance *testing.T) {
	devcontainerPath := testInstance.TempDir()
	manifestPath := writeTestFile(testInstance, devcontainerPath, "devcontainer.json", manifestFixtureWithFirewall)

	manifestStrip, stripError := customize.StripManifestFirewall(manifestPath)
	require.NoError(testInstance, stripError)
	require.Len(testInstance, manifestStrip.Changes, 3)

	modifiedContent, readError := os.ReadFile(manifestPath)
	require.NoError(testInstance, readError)

	var modifiedManifest map[string]any
	require.NoError(testInstance, json.Unmarshal(modifiedContent, &modifiedManifest))

	runArguments, hasRunArguments := modifiedManifest["runArgs"].([]any)
	require.True(testInstance, hasRunArguments)
	require.Equal(testInstance, []any{"--privileged"}, runArguments)

	require.NotContains(testInstance, modifiedManifest, "postStartCommand")
	require.NotContains(testInstance, modifiedManifest, "waitFor")
	require.Contains(testInstance, modifiedManifest, "name")
	require.Contains(testInstance, modifiedManifest, "customizations")
}

func TestStripManifestFirewallWithoutFirewallLeavesFileUntouched(testInstance *testing.T) {
	devcontainerPath := testInstance.TempDir()
	manifestPath := writeTestFile(testInstance, devcontainerPath, "devcontainer.json", manifestFixtureWithoutFirewall)

	manifestStrip, stripError := customize.StripManifestFirewall(manifestPath)
	require.NoError(testInstance, stripError)
	require.Empty(testInstance, manifestStrip.Changes)

	finalContent, readError := os.ReadFile(manifestPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, manifestFixtureWithoutFirewall, string(finalContent))
}

func TestStripManifestFirewallRejectsMalformedJSON(testInstance *testing.T) {
	devcontainerPath := testInstance.TempDir()
	manifestPath := writeTestFile(testInstance, devcontainerPath, "devcontainer.json", "{ invalid json }")

	_, stripError := customize.StripManifestFirewall(manifestPath)
	require.Error(testInstance, stripError)
	require.Contains(testInstance, stripError.Error(), "Invalid JSON")
}

func TestStripManifestFirewallPreservesUnrelatedCapabilities(testInstance *testing.T) {
	devcontainerPath := testInstance.TempDir()
	manifestContent := `{
  "name": "Test",
  "runArgs": ["--privileged", "--cap-add=NET_ADMIN", "--cap-add=SYS_ADMIN", "--cap-add=NET_RAW"]
}`
	manifestPath := writeTestFile(testInstance, devcontainerPath, "devcontainer.json", manifestContent)

	manifestStrip, stripError := customize.StripManifestFirewall(manifestPath)
	require.NoError(testInstance, stripError)
	require.Len(testInstance, manifestStrip.Changes, 1)

	modifiedContent, readError := os.ReadFile(manifestPath)
	require.NoError(testInstance, readError)

	var modifiedManifest map[string]any
	require.NoError(testInstance, json.Unmarshal(modifiedContent, &modifiedManifest))
	require.Equal(testInstance, []any{"--privileged", "--cap-add=SYS_ADMIN"}, modifiedManifest["runArgs"])
}

func TestStripManifestFirewallKeepsWaitForWhenPostStartSurvives(testInstance *testing.T) {
	devcontainerPath := testInstance.TempDir()
	manifestContent := `{
  "name": "Test",
  "postStartCommand": "npm ci",
  "waitFor": "postStartCommand"
}`
	manifestPath := writeTestFile(testInstance, devcontainerPath, "devcontainer.json", manifestContent)

	manifestStrip, stripError := customize.StripManifestFirewall(manifestPath)
	require.NoError(testInstance, stripError)
	require.Empty(testInstance, manifestStrip.Changes)
}

func TestStripManifestFirewallPreservesLargeIntegerValues(testInstance *testing.T) {
	devcontainerPath := testInstance.TempDir()
	manifestContent := `{
  "name": "Test",
  "hostRequirements": {
    "memoryBytes": 9007199254740993
  },
  "runArgs": ["--cap-add=NET_ADMIN"]
}`
	manifestPath := writeTestFile(testInstance, devcontainerPath, "devcontainer.json", manifestContent)

	manifestStrip, stripError := customize.StripManifestFirewall(manifestPath)
	require.NoError(testInstance, stripError)
	require.Len(testInstance, manifestStrip.Changes, 1)

	modifiedContent, readError := os.ReadFile(manifestPath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(modifiedContent), "9007199254740993")
}

func TestStripManifestFirewallIsIdempotent(testInstance *testing.T) {
	devcontainerPath := testInstance.TempDir()
	manifestPath := writeTestFile(testInstance, devcontainerPath, "devcontainer.json", manifestFixtureWithFirewall)

	_, firstError := customize.StripManifestFirewall(manifestPath)
	require.NoError(testInstance, firstError)

	secondStrip, secondError := customize.StripManifestFirewall(manifestPath)
	require.NoError(testInstance, secondError)
	require.Empty(testInstance, secondStrip.Changes)
}

func TestStripDockerfileFirewall(testInstance *testing.T) {
	devcontainerPath := testInstance.TempDir()
	dockerfilePath := writeTestFile(testInstance, devcontainerPath, "Dockerfile", dockerfileFixtureWithFirewall)

	dockerfileStrip, stripError := customize.StripDockerfileFirewall(dockerfilePath)
	require.NoError(testInstance, stripError)
	require.Contains(testInstance, dockerfileStrip.Changes, "Removed firewall setup section")
	require.Contains(testInstance, dockerfileStrip.Changes, "Removed firewall packages from apt install")

	modifiedContent, readError := os.ReadFile(dockerfilePath)
	require.NoError(testInstance, readError)
	modifiedText := string(modifiedContent)

	for _, packageName := range []string{"iptables", "ipset", "iproute2", "dnsutils", "aggregate"} {
		for _, contentLine := range strings.Split(modifiedText, "\n") {
			if strings.HasPrefix(contentLine, "#") {
				continue
			}
			require.NotContains(testInstance, strings.Fields(contentLine), packageName)
		}
	}

	require.NotContains(testInstance, modifiedText, "# Copy and set up firewall script")
	require.NotContains(testInstance, modifiedText, "COPY init-firewall.sh")
	require.NotContains(testInstance, modifiedText, "sudoers.d/node-firewall")

	require.Contains(testInstance, modifiedText, "FROM node:20")
	require.Contains(testInstance, modifiedText, "less")
	require.Contains(testInstance, modifiedText, "git")
	require.Contains(testInstance, modifiedText, "jq")
	require.Contains(testInstance, modifiedText, "NPM_CONFIG_PREFIX")
}

func TestStripDockerfileFirewallWithoutFirewallLeavesFileUntouched(testInstance *testing.T) {
	devcontainerPath := testInstance.TempDir()
	dockerfilePath := writeTestFile(testInstance, devcontainerPath, "Dockerfile", dockerfileFixtureWithoutFirewall)

	dockerfileStrip, stripError := customize.StripDockerfileFirewall(dockerfilePath)
	require.NoError(testInstance, stripError)
	require.Empty(testInstance, dockerfileStrip.Changes)

	finalContent, readError := os.ReadFile(dockerfilePath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, dockerfileFixtureWithoutFirewall, string(finalContent))
}

func TestStripDockerfileFirewallSingleLineInstall(testInstance *testing.T) {
	devcontainerPath := testInstance.TempDir()
	dockerfilePath := writeTestFile(testInstance, devcontainerPath, "Dockerfile",
		"FROM node:20\nRUN apt-get install -y git iptables curl\nUSER node\n")

	dockerfileStrip, stripError := customize.StripDockerfileFirewall(dockerfilePath)
	require.NoError(testInstance, stripError)
	require.Equal(testInstance, []string{"Removed firewall packages from apt install"}, dockerfileStrip.Changes)

	modifiedContent, readError := os.ReadFile(dockerfilePath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(modifiedContent), "RUN apt-get install -y git curl")
	require.Contains(testInstance, string(modifiedContent), "USER node")
}

func TestStripDockerfileFirewallSectionWithoutPackages(testInstance *testing.T) {
	devcontainerPath := testInstance.TempDir()
	dockerfileContent := `FROM node:20
RUN apt-get update && apt-get install -y git vim

# Copy and set up firewall script
COPY init-firewall.sh /usr/local/bin/
USER root
RUN chmod +x /usr/local/bin/init-firewall.sh
USER node
`
	dockerfilePath := writeTestFile(testInstance, devcontainerPath, "Dockerfile", dockerfileContent)

	dockerfileStrip, stripError := customize.StripDockerfileFirewall(dockerfilePath)
	require.NoError(testInstance, stripError)
	require.Equal(testInstance, []string{"Removed firewall setup section"}, dockerfileStrip.Changes)

	modifiedContent, readError := os.ReadFile(dockerfilePath)
	require.NoError(testInstance, readError)
	require.NotContains(testInstance, string(modifiedContent), "# Copy and set up firewall script")
	require.NotContains(testInstance, string(modifiedContent), "COPY init-firewall.sh")
	require.Contains(testInstance, string(modifiedContent), "FROM node:20")
	require.Contains(testInstance, string(modifiedContent), "git vim")
}

func TestStripDockerfileFirewallIsIdempotent(testInstance *testing.T) {
	devcontainerPath := testInstance.TempDir()
	dockerfilePath := writeTestFile(testInstance, devcontainerPath, "Dockerfile", dockerfileFixtureWithFirewall)

	_, firstError := customize.StripDockerfileFirewall(dockerfilePath)
	require.NoError(testInstance, firstError)

	secondStrip, secondError := customize.StripDockerfileFirewall(dockerfilePath)
	require.NoError(testInstance, secondError)
	require.Empty(testInstance, secondStrip.Changes)
}

func TestMatchFirewallPatterns(testInstance *testing.T) {
	testCases := []struct {
		name            string
		content         string
		expectedMatches int
	}{
		{name: "package_install_line", content: "RUN apt-get install iptables ipset", expectedMatches: 2},
		{name: "clean_install_line", content: "RUN apt-get install git vim", expectedMatches: 0},
		{name: "capability_arguments", content: `["--cap-add=NET_ADMIN", "--cap-add=NET_RAW"]`, expectedMatches: 2},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			patternMatches := customize.MatchFirewallPatterns(testCase.content)
			require.Len(testInstance, patternMatches, testCase.expectedMatches)
		})
	}
}

func TestValidateFirewallRemoval(testInstance *testing.T) {
	emptyResult := customize.FirewallRemovalResult{}
	emptyWarnings := customize.ValidateFirewallRemoval(emptyResult)
	require.Len(testInstance, emptyWarnings, 3)
	require.Contains(testInstance, emptyWarnings, "No firewall scripts were found to remove")
	require.Contains(testInstance, emptyWarnings, "No firewall configurations found in Dockerfile")
	require.Contains(testInstance, emptyWarnings, "No firewall configurations found in devcontainer.json")

	fullResult := customize.FirewallRemovalResult{
		FilesRemoved:      []string{"init-firewall.sh"},
		DockerfileChanges: []string{"Removed firewall packages from apt install"},
		ManifestChanges:   []string{"Removed NET_ADMIN and NET_RAW capabilities from runArgs"},
	}
	require.Empty(testInstance, customize.ValidateFirewallRemoval(fullResult))
}

func TestServiceStripFirewallFeatures(testInstance *testing.T) {
	devcontainerPath := testInstance.TempDir()
	writeTestFile(testInstance, devcontainerPath, "devcontainer.json", manifestFixtureWithFirewall)
	writeTestFile(testInstance, devcontainerPath, "Dockerfile", dockerfileFixtureWithFirewall)
	scriptPath := writeTestFile(testInstance, devcontainerPath, "init-firewall.sh", "#!/bin/bash\niptables -F\n")

	service := customize.NewService(zap.NewNop(), nil)
	removalResult, stripError := service.StripFirewallFeatures(devcontainerPath)
	require.NoError(testInstance, stripError)

	require.True(testInstance, removalResult.HasChanges())
	require.False(testInstance, removalResult.HasWarnings())
	require.Equal(testInstance, []string{scriptPath}, removalResult.FilesRemoved)
	require.Len(testInstance, removalResult.FilesModified, 2)
	require.NoFileExists(testInstance, scriptPath)
}

func TestServiceStripFirewallFeaturesWarnsWhenNothingFound(testInstance *testing.T) {
	devcontainerPath := testInstance.TempDir()
	writeTestFile(testInstance, devcontainerPath, "devcontainer.json", manifestFixtureWithoutFirewall)
	writeTestFile(testInstance, devcontainerPath, "Dockerfile", dockerfileFixtureWithoutFirewall)

	service := customize.NewService(nil, nil)
	removalResult, stripError := service.StripFirewallFeatures(devcontainerPath)
	require.NoError(testInstance, stripError)

	require.False(testInstance, removalResult.HasChanges())
	require.True(testInstance, removalResult.HasWarnings())
	require.Len(testInstance, removalResult.Warnings, 3)
}

func TestServiceStripFirewallFeaturesWarnsOnMissingFiles(testInstance *testing.T) {
	devcontainerPath := testInstance.TempDir()

	service := customize.NewService(nil, nil)
	removalResult, stripError := service.StripFirewallFeatures(devcontainerPath)
	require.NoError(testInstance, stripError)

	require.Contains(testInstance, removalResult.Warnings, "devcontainer.json not found")
	require.Contains(testInstance, removalResult.Warnings, "Dockerfile not found")
}

type recordingGitExecutor struct {
	recordedArguments [][]string
}

func (executor *recordingGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedArguments = append(executor.recordedArguments, append([]string{}, details.Arguments...))
	return execshell.ExecutionResult{}, nil
}

func TestServiceCommitCustomizations(testInstance *testing.T) {
	executor := &recordingGitExecutor{}
	worktreeManager := gitrepo.NewWorktreeManager(executor, ".", 30*time.Second)
	service := customize.NewService(zap.NewNop(), worktreeManager)

	changeSummaries := []string{
		"Removed firewall script init-firewall.sh",
		"Removed firewall setup section",
	}
	commitError := service.CommitCustomizations(context.Background(), ".devcontainer", changeSummaries, "Strip firewall configurations from devcontainer")
	require.NoError(testInstance, commitError)

	require.Len(testInstance, executor.recordedArguments, 2)
	require.Equal(testInstance, []string{"add", ".devcontainer"}, executor.recordedArguments[0])

	expectedMessage := "Strip firewall configurations from devcontainer\n\nChanges made:\n- Removed firewall script init-firewall.sh\n- Removed firewall setup section"
	require.Equal(testInstance, []string{"commit", "-m", expectedMessage}, executor.recordedArguments[1])
}

func TestFirewallRemovalResultChangeSummaries(testInstance *testing.T) {
	removalResult := customize.FirewallRemovalResult{
		FilesRemoved:      []string{"init-firewall.sh"},
		ManifestChanges:   []string{"Removed postStartCommand referencing firewall"},
		DockerfileChanges: []string{"Removed firewall setup section"},
	}

	changeSummaries := removalResult.ChangeSummaries()
	require.Equal(testInstance, []string{
		"Removed firewall script init-firewall.sh",
		"Removed postStartCommand referencing firewall",
		"Removed firewall setup section",
	}, changeSummaries)
}

func TestFirewallRemovalResultHasWarnings(testInstance *testing.T) {
	require.False(testInstance, customize.FirewallRemovalResult{}.HasWarnings())
	require.True(testInstance, customize.FirewallRemovalResult{
		Warnings: []string{"Dockerfile not found"},
	}.HasWarnings())
	require.True(testInstance, customize.FirewallRemovalResult{
		PatternsNotFound: []string{"init-firewall\\.sh"},
	}.HasWarnings())
}
