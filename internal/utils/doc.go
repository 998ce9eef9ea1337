// Package utils bundles shared infrastructure for the prflow CLI.
//
// It provides ConfigurationLoader for Viper-backed configuration resolution,
// LoggerFactory for constructing zap loggers, and CommandContextAccessor for
// passing request-scoped values through cobra command contexts.
package utils
