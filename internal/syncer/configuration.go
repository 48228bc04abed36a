package syncer

import (
	"strings"
	"time"
)

// Upstream coordinates are fixed: the tool tracks one well-known repository.
const (
	UpstreamRemoteNameConstant      = "claude"
	UpstreamRemoteURLConstant       = "https://github.com/anthropics/claude-code.git"
	UpstreamBranchReferenceConstant = "claude/main"
	TrackingBranchNameConstant      = "claude-main"
	ExtractionBranchNameConstant    = "devcontainer"
	UpdatedExtractionBranchConstant = "devcontainer-updated"
	SubtreePrefixConstant           = ".devcontainer"
)

const (
	defaultBaseBranchNameConstant       = "master"
	defaultCommandTimeoutConstant       = 30 * time.Second
	baseBranchConfigurationKeyConstant  = "base_branch"
	timeoutConfigurationKeyConstant     = "command_timeout"
	stripConfigurationKeyConstant       = "strip_firewall"
	backupConfigurationKeyConstant      = "backup"
	configurationKeySeparatorConstant   = "."
	defaultCommandTimeoutStringConstant = "30s"
)

// Configuration captures the configurable knobs of the sync workflows. The
// upstream remote and branch are deliberately not configurable.
type Configuration struct {
	BaseBranch     string        `mapstructure:"base_branch"`
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
	StripFirewall  bool          `mapstructure:"strip_firewall"`
	Backup         bool          `mapstructure:"backup"`
}

// DefaultConfiguration provides baseline values for the sync workflows.
func DefaultConfiguration() Configuration {
	return Configuration{
		BaseBranch:     defaultBaseBranchNameConstant,
		CommandTimeout: defaultCommandTimeoutConstant,
	}
}

// DefaultConfigurationValues exposes the workflow defaults keyed under the
// provided configuration section for registration with the configuration
// loader.
func DefaultConfigurationValues(configurationKey string) map[string]any {
	return map[string]any{
		configurationKey + configurationKeySeparatorConstant + baseBranchConfigurationKeyConstant: defaultBaseBranchNameConstant,
		configurationKey + configurationKeySeparatorConstant + timeoutConfigurationKeyConstant:    defaultCommandTimeoutStringConstant,
		configurationKey + configurationKeySeparatorConstant + stripConfigurationKeyConstant:      false,
		configurationKey + configurationKeySeparatorConstant + backupConfigurationKeyConstant:     false,
	}
}

// sanitize trims branch configuration and applies defaults to empty values.
func (configuration Configuration) sanitize() Configuration {
	sanitized := configuration
	sanitized.BaseBranch = strings.TrimSpace(configuration.BaseBranch)
	if len(sanitized.BaseBranch) == 0 {
		sanitized.BaseBranch = defaultBaseBranchNameConstant
	}
	if sanitized.CommandTimeout <= 0 {
		sanitized.CommandTimeout = defaultCommandTimeoutConstant
	}
	return sanitized
}
