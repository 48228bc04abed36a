// Package syncer implements the devcontainer synchronization workflows:
// initializing the subtree from the upstream Claude Code repository, pulling
// updates into it, and removing the integration again. Workflows run as
// ordered sequences of git steps where required steps abort on failure and
// optional steps degrade to warnings.
package syncer
