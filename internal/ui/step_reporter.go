package ui

import (
	"fmt"
	"io"
)

const (
	stepStartedTemplateConstant   = "==> %s\n"
	stepCompletedTemplateConstant = "    %s\n"
	stepFailedTemplateConstant    = "!!  %s: %v\n"
	stepWarningTemplateConstant   = "Warning: %s\n"
)

// StepReporter receives workflow progress notifications. Workflows report
// through this interface instead of printing directly so tests can capture
// progress and alternative frontends can render it differently.
type StepReporter interface {
	// StepStarted announces that a named workflow step is beginning.
	StepStarted(stepDescription string)
	// StepCompleted announces that a named workflow step finished successfully.
	StepCompleted(stepDescription string)
	// StepFailed announces that a named workflow step failed.
	StepFailed(stepDescription string, failure error)
	// Warning surfaces a non-fatal condition the user should know about.
	Warning(warningMessage string)
}

// ConsoleStepReporter renders workflow progress to a writer. Start and
// completion lines appear only in verbose mode; failures and warnings always
// print.
type ConsoleStepReporter struct {
	writer  io.Writer
	verbose bool
}

// NewConsoleStepReporter constructs a reporter writing to the provided writer.
func NewConsoleStepReporter(writer io.Writer, verbose bool) *ConsoleStepReporter {
	return &ConsoleStepReporter{writer: writer, verbose: verbose}
}

// StepStarted implements StepReporter.
func (reporter *ConsoleStepReporter) StepStarted(stepDescription string) {
	if reporter.verbose {
		fmt.Fprintf(reporter.writer, stepStartedTemplateConstant, stepDescription)
	}
}

// StepCompleted implements StepReporter.
func (reporter *ConsoleStepReporter) StepCompleted(stepDescription string) {
	if reporter.verbose {
		fmt.Fprintf(reporter.writer, stepCompletedTemplateConstant, stepDescription)
	}
}

// StepFailed implements StepReporter.
func (reporter *ConsoleStepReporter) StepFailed(stepDescription string, failure error) {
	fmt.Fprintf(reporter.writer, stepFailedTemplateConstant, stepDescription, failure)
}

// Warning implements StepReporter.
func (reporter *ConsoleStepReporter) Warning(warningMessage string) {
	fmt.Fprintf(reporter.writer, stepWarningTemplateConstant, warningMessage)
}

// NoopStepReporter discards all progress notifications.
type NoopStepReporter struct{}

// StepStarted implements StepReporter for the no-op reporter.
func (NoopStepReporter) StepStarted(string) {}

// StepCompleted implements StepReporter for the no-op reporter.
func (NoopStepReporter) StepCompleted(string) {}

// StepFailed implements StepReporter for the no-op reporter.
func (NoopStepReporter) StepFailed(string, error) {}

// Warning implements StepReporter for the no-op reporter.
func (NoopStepReporter) Warning(string) {}
