// Package clierrors defines the categorized error taxonomy shared by devsync
// commands. Every error carries a message plus an actionable suggestion, and
// its category determines the process exit code.
package clierrors
