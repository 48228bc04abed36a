// Package gitrepo contains typed operations over the git porcelain surface.
//
// It exposes RepositoryValidator for precondition checks plus RemoteManager,
// BranchManager, SubtreeManager, and WorktreeManager, all driving a single
// narrow GitExecutor seam so tests can substitute fakes.
package gitrepo
