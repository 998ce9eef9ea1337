package backport

import "strings"

const defaultRemoteNameConstant = "origin"

// CommandConfiguration captures the create-prs settings sourced from the
// configuration file or environment.
type CommandConfiguration struct {
	RemoteName  string   `mapstructure:"remote"`
	Targets     []string `mapstructure:"targets"`
	TargetsFile string   `mapstructure:"targets_file"`
}

// DefaultCommandConfiguration returns the baseline create-prs settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{RemoteName: defaultRemoteNameConstant}
}

// DefaultConfigurationValues exposes the create-prs defaults keyed under the
// supplied configuration prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + ".remote": defaultRemoteNameConstant,
	}
}

// Sanitize trims whitespace and fills defaulted fields.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := CommandConfiguration{
		RemoteName:  strings.TrimSpace(configuration.RemoteName),
		Targets:     configuration.Targets,
		TargetsFile: strings.TrimSpace(configuration.TargetsFile),
	}
	if len(sanitized.RemoteName) == 0 {
		sanitized.RemoteName = defaultRemoteNameConstant
	}
	return sanitized
}
