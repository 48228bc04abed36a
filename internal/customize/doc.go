// Package customize strips firewall provisioning from a synced devcontainer
// directory. Detection is pattern based rather than tied to exact upstream
// file contents, so the stripping keeps working across upstream reformatting
// and degrades to warnings when expected patterns are absent.
package customize
