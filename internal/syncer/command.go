package syncer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/devsync/internal/execshell"
	"github.com/temirov/devsync/internal/gitrepo"
	"github.com/temirov/devsync/internal/ui"
	"github.com/temirov/devsync/internal/utils"
)

const (
	initCommandUseConstant              = "init"
	initCommandShortDescriptionConstant = "Initialize devcontainer sync from the Claude Code repository"
	initCommandLongDescriptionConstant  = "init adds the upstream remote, extracts the .devcontainer subtree, and grafts it onto the base branch."

	updateCommandUseConstant              = "update"
	updateCommandShortDescriptionConstant = "Update the devcontainer subtree from upstream"
	updateCommandLongDescriptionConstant  = "update fetches the latest upstream state and merges it into the existing .devcontainer subtree."

	removeCommandUseConstant              = "remove"
	removeCommandShortDescriptionConstant = "Remove the devcontainer sync integration"
	removeCommandLongDescriptionConstant  = "remove deletes the upstream remote, the tracking branches, and optionally the .devcontainer directory."

	flagStripFirewallNameConstant        = "strip-firewall"
	flagStripFirewallDescriptionConstant = "Remove firewall configurations from the synced devcontainer"
	flagBackupNameConstant               = "backup"
	flagBackupDescriptionConstant        = "Back up the existing .devcontainer directory before updating"
	flagForceNameConstant                = "force"
	flagForceDescriptionConstant         = "Proceed without interactive confirmation"
	flagKeepFilesNameConstant            = "keep-files"
	flagKeepFilesDescriptionConstant     = "Keep the .devcontainer directory on disk"

	initExecutionErrorTemplateConstant   = "devcontainer initialization failed: %w"
	updateExecutionErrorTemplateConstant = "devcontainer update failed: %w"
	removeExecutionErrorTemplateConstant = "devcontainer removal failed: %w"
	unexpectedArgumentsMessageConstant   = "command does not accept positional arguments"

	configurationSourceLogMessageConstant = "using configuration file"
	logFieldConfigurationFileConstant     = "configuration_file"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// VerboseProvider reports whether verbose console output was requested.
type VerboseProvider func() bool

// CommandBuilder assembles the sync subcommands. Collaborators left nil are
// replaced with OS-backed implementations, so tests can inject fakes while
// the wired CLI stays terse.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	VerboseProvider       VerboseProvider
	ConfigurationProvider func() Configuration
	Executor              gitrepo.GitExecutor
	Prompter              ui.ConfirmationPrompter
	Reporter              ui.StepReporter
	WorkingDirectory      string
}

// BuildInitCommand constructs the init command.
func (builder *CommandBuilder) BuildInitCommand() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   initCommandUseConstant,
		Short: initCommandShortDescriptionConstant,
		Long:  initCommandLongDescriptionConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			if len(arguments) > 0 {
				return errUnexpectedArguments
			}

			builder.logConfigurationSource(command.Context())

			stripFirewall, _ := command.Flags().GetBool(flagStripFirewallNameConstant)
			service, serviceError := builder.resolveService()
			if serviceError != nil {
				return serviceError
			}

			if executionError := service.Initialize(command.Context(), InitializeOptions{StripFirewall: stripFirewall}); executionError != nil {
				return fmt.Errorf(initExecutionErrorTemplateConstant, executionError)
			}
			return nil
		},
	}

	command.Flags().Bool(flagStripFirewallNameConstant, builder.resolveConfiguration().StripFirewall, flagStripFirewallDescriptionConstant)
	return command, nil
}

// BuildUpdateCommand constructs the update command.
func (builder *CommandBuilder) BuildUpdateCommand() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   updateCommandUseConstant,
		Short: updateCommandShortDescriptionConstant,
		Long:  updateCommandLongDescriptionConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			if len(arguments) > 0 {
				return errUnexpectedArguments
			}

			builder.logConfigurationSource(command.Context())

			backupRequested, _ := command.Flags().GetBool(flagBackupNameConstant)
			forceRequested, _ := command.Flags().GetBool(flagForceNameConstant)
			stripFirewall, _ := command.Flags().GetBool(flagStripFirewallNameConstant)

			service, serviceError := builder.resolveService()
			if serviceError != nil {
				return serviceError
			}

			updateOptions := UpdateOptions{Backup: backupRequested, Force: forceRequested, StripFirewall: stripFirewall}
			if executionError := service.Update(command.Context(), updateOptions); executionError != nil {
				return fmt.Errorf(updateExecutionErrorTemplateConstant, executionError)
			}
			return nil
		},
	}

	configuration := builder.resolveConfiguration()
	command.Flags().Bool(flagBackupNameConstant, configuration.Backup, flagBackupDescriptionConstant)
	command.Flags().Bool(flagForceNameConstant, false, flagForceDescriptionConstant)
	command.Flags().Bool(flagStripFirewallNameConstant, configuration.StripFirewall, flagStripFirewallDescriptionConstant)
	return command, nil
}

// BuildRemoveCommand constructs the remove command.
func (builder *CommandBuilder) BuildRemoveCommand() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   removeCommandUseConstant,
		Short: removeCommandShortDescriptionConstant,
		Long:  removeCommandLongDescriptionConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			if len(arguments) > 0 {
				return errUnexpectedArguments
			}

			builder.logConfigurationSource(command.Context())

			keepFiles, _ := command.Flags().GetBool(flagKeepFilesNameConstant)
			service, serviceError := builder.resolveService()
			if serviceError != nil {
				return serviceError
			}

			if executionError := service.Remove(command.Context(), RemoveOptions{KeepFiles: keepFiles}); executionError != nil {
				return fmt.Errorf(removeExecutionErrorTemplateConstant, executionError)
			}
			return nil
		},
	}

	command.Flags().Bool(flagKeepFilesNameConstant, false, flagKeepFilesDescriptionConstant)
	return command, nil
}

// logConfigurationSource records which configuration file produced the
// settings a workflow runs with. The path travels in the command context,
// placed there by the application during configuration initialization.
func (builder *CommandBuilder) logConfigurationSource(executionContext context.Context) {
	configurationFilePath, configurationFileAvailable := utils.NewCommandContextAccessor().ConfigurationFilePath(executionContext)
	if !configurationFileAvailable || len(configurationFilePath) == 0 {
		return
	}
	builder.resolveLogger().Debug(
		configurationSourceLogMessageConstant,
		zap.String(logFieldConfigurationFileConstant, configurationFilePath),
	)
}

func (builder *CommandBuilder) resolveService() (*Service, error) {
	logger := builder.resolveLogger()

	executor := builder.Executor
	if executor == nil {
		var observers []execshell.CommandEventObserver
		if builder.verboseEnabled() {
			observers = append(observers, ui.NewConsoleCommandEventLogger(logger))
		}
		shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), observers...)
		if executorError != nil {
			return nil, executorError
		}
		executor = shellExecutor
	}

	workingDirectory := builder.WorkingDirectory
	if len(workingDirectory) == 0 {
		resolvedDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return nil, workingDirectoryError
		}
		workingDirectory = resolvedDirectory
	}

	reporter := builder.Reporter
	if reporter == nil {
		reporter = ui.NewConsoleStepReporter(os.Stdout, builder.verboseEnabled())
	}

	return NewService(logger, executor, workingDirectory, builder.resolveConfiguration(), builder.Prompter, reporter)
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	if logger := builder.LoggerProvider(); logger != nil {
		return logger
	}
	return zap.NewNop()
}

func (builder *CommandBuilder) verboseEnabled() bool {
	if builder.VerboseProvider == nil {
		return false
	}
	return builder.VerboseProvider()
}
