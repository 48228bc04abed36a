// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging and enforced timeouts via ShellExecutor,
// exposes OSCommandRunner for default process execution, and defines the
// abstractions devsync uses to run git in a testable manner.
package execshell
