package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/temirov/devsync/cmd/cli"
	"github.com/temirov/devsync/internal/clierrors"
)

const (
	errorOutputTemplateConstant      = "%v\n"
	suggestionOutputTemplateConstant = "Suggestion: %s\n"
	genericFailureExitCodeConstant   = 1
)

// main executes the devsync command-line application and maps categorized
// failures to their documented exit codes.
func main() {
	application := cli.NewApplication()
	executionError := application.Execute()
	if executionError == nil {
		return
	}

	fmt.Fprintf(os.Stderr, errorOutputTemplateConstant, executionError)

	var categorizedError *clierrors.CategorizedError
	if errors.As(executionError, &categorizedError) {
		if application.VerboseEnabled() && categorizedError.Suggestion != "" {
			fmt.Fprintf(os.Stderr, suggestionOutputTemplateConstant, categorizedError.Suggestion)
		}
		os.Exit(categorizedError.ExitCode())
	}

	os.Exit(genericFailureExitCodeConstant)
}
