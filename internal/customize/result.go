package customize

// ScriptRemoval reports the outcome of deleting firewall scripts from a
// devcontainer directory.
type ScriptRemoval struct {
	RemovedPaths []string
}

// ManifestStrip reports the outcome of editing devcontainer.json.
type ManifestStrip struct {
	Changes []string
}

// DockerfileStrip reports the outcome of editing the Dockerfile.
type DockerfileStrip struct {
	Changes []string
}

// FirewallRemovalResult aggregates the outcomes of one stripping run. The
// per-file operations each return their own partial report; the service merges
// them here so a partial failure never leaves a half-populated result behind.
type FirewallRemovalResult struct {
	FilesModified     []string
	FilesRemoved      []string
	DockerfileChanges []string
	ManifestChanges   []string
	Warnings          []string
	PatternsNotFound  []string
}

// HasChanges reports whether any file was modified or removed.
func (result FirewallRemovalResult) HasChanges() bool {
	return len(result.FilesModified) > 0 || len(result.FilesRemoved) > 0
}

// HasWarnings reports whether the run produced warnings or recorded patterns
// it expected but never matched.
func (result FirewallRemovalResult) HasWarnings() bool {
	return len(result.Warnings) > 0 || len(result.PatternsNotFound) > 0
}

// ChangeSummaries flattens every recorded change into one list, suitable for
// the itemized body of a customization commit.
func (result FirewallRemovalResult) ChangeSummaries() []string {
	var changeSummaries []string
	for _, removedPath := range result.FilesRemoved {
		changeSummaries = append(changeSummaries, "Removed firewall script "+removedPath)
	}
	changeSummaries = append(changeSummaries, result.ManifestChanges...)
	changeSummaries = append(changeSummaries, result.DockerfileChanges...)
	return changeSummaries
}
