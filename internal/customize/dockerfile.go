package customize

import (
	"fmt"
	"os"
	"strings"

	"github.com/temirov/devsync/internal/clierrors"
)

const (
	firewallSectionMarkerConstant   = "# Copy and set up firewall script"
	firewallSectionSentinelConstant = "USER node"
	aptGetInstallFragmentConstant   = "apt-get install"
	aptInstallFragmentConstant      = "apt install"
	lineContinuationMarkerConstant  = `\`
	dockerfileReadFailureTemplate   = "Failed to read Dockerfile: %v"
	dockerfileWriteFailureTemplate  = "Failed to write modified Dockerfile: %v"
	dockerfileFileSystemSuggestion  = "Check file permissions and available disk space"
	firewallSectionRemovedChange    = "Removed firewall setup section"
	firewallPackagesRemovedChange   = "Removed firewall packages from apt install"
)

var firewallPackageNames = []string{"iptables", "ipset", "iproute2", "dnsutils", "aggregate"}

// dockerfileScanState drives the line-by-line pass over a Dockerfile.
type dockerfileScanState int

const (
	scanStateNormal dockerfileScanState = iota
	scanStateFirewallSection
	scanStatePackageInstall
)

// StripDockerfileFirewall removes firewall provisioning from the Dockerfile at
// dockerfilePath. The firewall setup section runs from the marker comment
// through the trimmed sentinel line, inclusive. Package-install invocations
// span lines joined by trailing backslash continuations; firewall packages
// are removed token by token so names embedded in longer words survive. The
// file is rewritten only when at least one change was made.
func StripDockerfileFirewall(dockerfilePath string) (DockerfileStrip, error) {
	dockerfileContent, readError := os.ReadFile(dockerfilePath)
	if readError != nil {
		return DockerfileStrip{}, clierrors.NewFileSystemError(
			fmt.Sprintf(dockerfileReadFailureTemplate, readError),
			dockerfileFileSystemSuggestion,
		).WithCause(readError)
	}

	contentLines := strings.Split(string(dockerfileContent), "\n")
	retainedLines := make([]string, 0, len(contentLines))
	var dockerfileChanges []string
	sectionRemoved := false
	packagesRemoved := false
	scanState := scanStateNormal

	for _, contentLine := range contentLines {
		switch scanState {
		case scanStateFirewallSection:
			if strings.TrimSpace(contentLine) == firewallSectionSentinelConstant {
				scanState = scanStateNormal
			}
			continue

		case scanStatePackageInstall:
			strippedLine, lineChanged := removeFirewallPackageTokens(contentLine)
			packagesRemoved = packagesRemoved || lineChanged
			if !strings.HasSuffix(strings.TrimRight(contentLine, " \t"), lineContinuationMarkerConstant) {
				scanState = scanStateNormal
			}
			if keepLine, keptLine := retainStrippedLine(strippedLine, lineChanged, contentLine); keepLine {
				retainedLines = append(retainedLines, keptLine)
			}
			continue
		}

		if strings.Contains(contentLine, firewallSectionMarkerConstant) {
			scanState = scanStateFirewallSection
			sectionRemoved = true
			continue
		}

		if strings.Contains(contentLine, aptGetInstallFragmentConstant) || strings.Contains(contentLine, aptInstallFragmentConstant) {
			strippedLine, lineChanged := removeFirewallPackageTokens(contentLine)
			packagesRemoved = packagesRemoved || lineChanged
			if strings.HasSuffix(strings.TrimRight(contentLine, " \t"), lineContinuationMarkerConstant) {
				scanState = scanStatePackageInstall
			}
			if keepLine, keptLine := retainStrippedLine(strippedLine, lineChanged, contentLine); keepLine {
				retainedLines = append(retainedLines, keptLine)
			}
			continue
		}

		retainedLines = append(retainedLines, contentLine)
	}

	if sectionRemoved {
		dockerfileChanges = append(dockerfileChanges, firewallSectionRemovedChange)
	}
	if packagesRemoved {
		dockerfileChanges = append(dockerfileChanges, firewallPackagesRemovedChange)
	}

	if len(dockerfileChanges) == 0 {
		return DockerfileStrip{}, nil
	}

	modifiedContent := strings.Join(retainedLines, "\n")
	if writeError := os.WriteFile(dockerfilePath, []byte(modifiedContent), 0o644); writeError != nil {
		return DockerfileStrip{}, clierrors.NewFileSystemError(
			fmt.Sprintf(dockerfileWriteFailureTemplate, writeError),
			dockerfileFileSystemSuggestion,
		).WithCause(writeError)
	}

	return DockerfileStrip{Changes: dockerfileChanges}, nil
}

// removeFirewallPackageTokens drops firewall package names from the line using
// whitespace tokenization. Continuation markers stay in place, and the
// original indentation is preserved when tokens were removed.
func removeFirewallPackageTokens(contentLine string) (string, bool) {
	lineTokens := strings.Fields(contentLine)
	retainedTokens := make([]string, 0, len(lineTokens))
	tokenRemoved := false

	for _, lineToken := range lineTokens {
		if isFirewallPackageToken(lineToken) {
			tokenRemoved = true
			continue
		}
		retainedTokens = append(retainedTokens, lineToken)
	}

	if !tokenRemoved {
		return contentLine, false
	}

	leadingWhitespace := contentLine[:len(contentLine)-len(strings.TrimLeft(contentLine, " \t"))]
	return leadingWhitespace + strings.Join(retainedTokens, " "), true
}

func isFirewallPackageToken(lineToken string) bool {
	for _, packageName := range firewallPackageNames {
		if lineToken == packageName {
			return true
		}
	}
	return false
}

// retainStrippedLine decides whether a package-install line survives the pass.
// A line reduced to nothing, or to a lone continuation marker, is dropped
// entirely since the previous line's continuation already bridges to the next.
func retainStrippedLine(strippedLine string, lineChanged bool, originalLine string) (bool, string) {
	if !lineChanged {
		return true, originalLine
	}
	trimmedRemainder := strings.TrimSpace(strippedLine)
	if len(trimmedRemainder) == 0 || trimmedRemainder == lineContinuationMarkerConstant {
		return false, ""
	}
	return true, strippedLine
}
