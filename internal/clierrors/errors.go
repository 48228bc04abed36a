package clierrors

import "fmt"

const (
	repositoryCategoryLabelConstant   = "Repository error"
	networkCategoryLabelConstant      = "Network error"
	gitOperationCategoryLabelConstant = "Git operation error"
	fileSystemCategoryLabelConstant   = "File system error"
	categorizedErrorTemplateConstant  = "%s: %s"

	repositoryExitCodeConstant   = 1
	networkExitCodeConstant      = 2
	gitOperationExitCodeConstant = 3
	fileSystemExitCodeConstant   = 4
	genericFailureExitCode       = 1

	notGitRepositoryMessageConstant    = "Current directory is not a git repository"
	notGitRepositorySuggestionConstant = "Run this command from within a git repository or initialize one with 'git init'"
	noCommitsMessageConstant           = "Git repository has no commits found"
	noCommitsSuggestionConstant        = "Make at least one commit before running this command"
	cancelledMessageConstant           = "Operation cancelled by user"
	cancelledSuggestionConstant        = "Use --force flag to skip confirmation or backup existing files first"
)

// Category classifies a CLI failure and determines the process exit code.
type Category int

// Supported error categories.
const (
	CategoryRepository Category = iota
	CategoryNetwork
	CategoryGitOperation
	CategoryFileSystem
)

var categoryLabels = map[Category]string{
	CategoryRepository:   repositoryCategoryLabelConstant,
	CategoryNetwork:      networkCategoryLabelConstant,
	CategoryGitOperation: gitOperationCategoryLabelConstant,
	CategoryFileSystem:   fileSystemCategoryLabelConstant,
}

var categoryExitCodes = map[Category]int{
	CategoryRepository:   repositoryExitCodeConstant,
	CategoryNetwork:      networkExitCodeConstant,
	CategoryGitOperation: gitOperationExitCodeConstant,
	CategoryFileSystem:   fileSystemExitCodeConstant,
}

// CategorizedError carries the failure category, a human-readable message, and an actionable suggestion.
type CategorizedError struct {
	Category   Category
	Message    string
	Suggestion string
	Cause      error
}

// Error renders the category label alongside the failure message.
func (categorizedError *CategorizedError) Error() string {
	return fmt.Sprintf(categorizedErrorTemplateConstant, categoryLabels[categorizedError.Category], categorizedError.Message)
}

// Unwrap exposes the underlying cause for errors.Is and errors.As chains.
func (categorizedError *CategorizedError) Unwrap() error {
	return categorizedError.Cause
}

// ExitCode maps the category to the documented process exit code.
func (categorizedError *CategorizedError) ExitCode() int {
	exitCode, exitCodeKnown := categoryExitCodes[categorizedError.Category]
	if !exitCodeKnown {
		return genericFailureExitCode
	}
	return exitCode
}

// NewRepositoryError constructs a repository precondition or state error.
func NewRepositoryError(message string, suggestion string) *CategorizedError {
	return &CategorizedError{Category: CategoryRepository, Message: message, Suggestion: suggestion}
}

// NewNetworkError constructs a connectivity failure error.
func NewNetworkError(message string, suggestion string) *CategorizedError {
	return &CategorizedError{Category: CategoryNetwork, Message: message, Suggestion: suggestion}
}

// NewGitOperationError constructs an error describing a failed git invocation.
func NewGitOperationError(message string, suggestion string) *CategorizedError {
	return &CategorizedError{Category: CategoryGitOperation, Message: message, Suggestion: suggestion}
}

// NewFileSystemError constructs a local input/output error.
func NewFileSystemError(message string, suggestion string) *CategorizedError {
	return &CategorizedError{Category: CategoryFileSystem, Message: message, Suggestion: suggestion}
}

// WithCause attaches an underlying error while keeping category, message, and suggestion intact.
func (categorizedError *CategorizedError) WithCause(cause error) *CategorizedError {
	categorizedError.Cause = cause
	return categorizedError
}

// NotGitRepository reports that the working directory is not a git repository.
func NotGitRepository() *CategorizedError {
	return NewRepositoryError(notGitRepositoryMessageConstant, notGitRepositorySuggestionConstant)
}

// NoCommitsFound reports that the repository head cannot be resolved.
func NoCommitsFound() *CategorizedError {
	return NewRepositoryError(noCommitsMessageConstant, noCommitsSuggestionConstant)
}

// OperationCancelled reports that the user declined a confirmation prompt.
func OperationCancelled() *CategorizedError {
	return NewRepositoryError(cancelledMessageConstant, cancelledSuggestionConstant)
}
