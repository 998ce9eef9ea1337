package prcreate

import "strings"

// CommandConfiguration captures configuration values for the create-pr command.
type CommandConfiguration struct {
	RemoteName string `mapstructure:"remote"`
}

// DefaultCommandConfiguration provides baseline configuration values for create-pr.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{RemoteName: defaultRemoteNameConstant}
}

// DefaultConfigurationValues exposes the create-pr defaults keyed under the
// supplied configuration prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + ".remote": defaultRemoteNameConstant,
	}
}

// Sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	return sanitized
}
