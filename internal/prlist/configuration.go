package prlist

const defaultResultLimitConstant = 50

// CommandConfiguration captures the pull-requests settings sourced from the
// configuration file or environment.
type CommandConfiguration struct {
	ResultLimit int `mapstructure:"limit"`
}

// DefaultCommandConfiguration returns the baseline listing settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{ResultLimit: defaultResultLimitConstant}
}

// DefaultConfigurationValues exposes the listing defaults keyed under the
// supplied configuration prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + ".limit": defaultResultLimitConstant,
	}
}

// Sanitize fills defaulted fields.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	if sanitized.ResultLimit <= 0 {
		sanitized.ResultLimit = defaultResultLimitConstant
	}
	return sanitized
}
