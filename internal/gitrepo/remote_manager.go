package gitrepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/temirov/devsync/internal/clierrors"
)

const (
	remoteAddSubcommandConstant          = "add"
	remoteRemoveSubcommandConstant       = "remove"
	remoteVerboseFlagConstant            = "-v"
	fetchSubcommandConstant              = "fetch"
	remoteAddFailedTemplateConstant      = "Failed to add remote '%s' with URL '%s'"
	remoteAddFailedSuggestionConstant    = "Check that the remote name is valid and the URL is accessible"
	remoteMissingTemplateConstant        = "Remote '%s' does not exist"
	remoteRemoveMissingSuggestion        = "Use 'git remote -v' to list existing remotes"
	remoteFetchMissingSuggestion         = "Add the remote first using 'git remote add'"
	fetchConnectivityTemplateConstant    = "Failed to fetch remote '%s': %s"
	fetchConnectivitySuggestionConstant  = "Check your network connection and that the remote URL is reachable"
	unresolvableHostStderrFragment       = "Could not resolve host"
	unreachableNetworkStderrFragment     = "unable to access"
	connectionTimedOutStderrFragmentText = "Connection timed out"
)

// Remote describes one configured remote, unique by name.
type Remote struct {
	Name string
	URL  string
}

// RemoteManager implements add, remove, fetch, and list operations over
// configured remotes.
type RemoteManager struct {
	managerBase
}

// NewRemoteManager constructs a remote manager bound to a working directory.
func NewRemoteManager(executor GitExecutor, workingDirectory string, commandTimeout time.Duration) *RemoteManager {
	return &RemoteManager{managerBase{executor: executor, workingDirectory: workingDirectory, commandTimeout: commandTimeout}}
}

// AddRemote registers the remote and re-queries its URL as verification,
// defending against silent no-ops.
func (manager *RemoteManager) AddRemote(executionContext context.Context, remoteName string, remoteURL string) error {
	if _, executionError := manager.runGit(executionContext, remoteSubcommandConstant, remoteAddSubcommandConstant, remoteName, remoteURL); executionError != nil {
		return wrapGitError(executionError)
	}

	if _, verificationError := manager.runGit(executionContext, remoteSubcommandConstant, remoteGetURLSubcommandConstant, remoteName); verificationError != nil {
		return clierrors.NewGitOperationError(
			fmt.Sprintf(remoteAddFailedTemplateConstant, remoteName, remoteURL),
			remoteAddFailedSuggestionConstant,
		).WithCause(verificationError)
	}

	return nil
}

// RemoveRemote deletes the remote, failing with a clear message when it is
// not configured.
func (manager *RemoteManager) RemoveRemote(executionContext context.Context, remoteName string) error {
	if _, probeError := manager.runGit(executionContext, remoteSubcommandConstant, remoteGetURLSubcommandConstant, remoteName); probeError != nil {
		return clierrors.NewGitOperationError(
			fmt.Sprintf(remoteMissingTemplateConstant, remoteName),
			remoteRemoveMissingSuggestion,
		).WithCause(probeError)
	}

	if _, executionError := manager.runGit(executionContext, remoteSubcommandConstant, remoteRemoveSubcommandConstant, remoteName); executionError != nil {
		return wrapGitError(executionError)
	}

	return nil
}

// FetchRemote downloads the latest refs from the remote, failing with a clear
// message when it is not configured. Connectivity failures are surfaced as
// network errors rather than generic git failures.
func (manager *RemoteManager) FetchRemote(executionContext context.Context, remoteName string) error {
	if _, probeError := manager.runGit(executionContext, remoteSubcommandConstant, remoteGetURLSubcommandConstant, remoteName); probeError != nil {
		return clierrors.NewGitOperationError(
			fmt.Sprintf(remoteMissingTemplateConstant, remoteName),
			remoteFetchMissingSuggestion,
		).WithCause(probeError)
	}

	if _, executionError := manager.runGit(executionContext, fetchSubcommandConstant, remoteName); executionError != nil {
		if isConnectivityFailure(executionError) {
			return clierrors.NewNetworkError(
				fmt.Sprintf(fetchConnectivityTemplateConstant, remoteName, executionError),
				fetchConnectivitySuggestionConstant,
			).WithCause(executionError)
		}
		return wrapGitError(executionError)
	}

	return nil
}

// ListRemotes parses `git remote -v` output, de-duplicating by name since the
// listing repeats each remote for its fetch and push URLs.
func (manager *RemoteManager) ListRemotes(executionContext context.Context) ([]Remote, error) {
	executionResult, executionError := manager.runGit(executionContext, remoteSubcommandConstant, remoteVerboseFlagConstant)
	if executionError != nil {
		return nil, wrapGitError(executionError)
	}

	var remotes []Remote
	seenNames := map[string]struct{}{}
	for _, outputLine := range strings.Split(executionResult.StandardOutput, "\n") {
		lineFields := strings.Fields(outputLine)
		if len(lineFields) < 2 {
			continue
		}

		remoteName := lineFields[0]
		if _, alreadySeen := seenNames[remoteName]; alreadySeen {
			continue
		}
		seenNames[remoteName] = struct{}{}
		remotes = append(remotes, Remote{Name: remoteName, URL: lineFields[1]})
	}

	return remotes, nil
}

func isConnectivityFailure(executionError error) bool {
	failureText := executionError.Error()
	connectivityFragments := []string{
		unresolvableHostStderrFragment,
		unreachableNetworkStderrFragment,
		connectionTimedOutStderrFragmentText,
	}
	for _, connectivityFragment := range connectivityFragments {
		if strings.Contains(failureText, connectivityFragment) {
			return true
		}
	}
	return false
}
