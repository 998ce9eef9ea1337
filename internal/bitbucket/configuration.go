package bitbucket

import (
	"errors"
	"strings"
)

const (
	missingBaseURLMessageConstant        = "server base URL is not configured"
	missingProjectKeyMessageConstant     = "project key is not configured"
	missingRepositorySlugMessageConstant = "repository slug is not configured"
	missingUsernameMessageConstant       = "username is not configured"
)

// Validation errors for server configuration.
var (
	ErrMissingBaseURL        = errors.New(missingBaseURLMessageConstant)
	ErrMissingProjectKey     = errors.New(missingProjectKeyMessageConstant)
	ErrMissingRepositorySlug = errors.New(missingRepositorySlugMessageConstant)
	ErrMissingUsername       = errors.New(missingUsernameMessageConstant)
)

// ServerConfiguration captures the Bitbucket Server connection settings.
type ServerConfiguration struct {
	BaseURL        string `mapstructure:"base_url"`
	ProjectKey     string `mapstructure:"project_key"`
	RepositorySlug string `mapstructure:"repository_slug"`
	Username       string `mapstructure:"username"`
	Token          string `mapstructure:"token"`
}

// Sanitize trims whitespace from every configuration value.
func (configuration ServerConfiguration) Sanitize() ServerConfiguration {
	sanitized := configuration
	sanitized.BaseURL = strings.TrimRight(strings.TrimSpace(configuration.BaseURL), "/")
	sanitized.ProjectKey = strings.TrimSpace(configuration.ProjectKey)
	sanitized.RepositorySlug = strings.TrimSpace(configuration.RepositorySlug)
	sanitized.Username = strings.TrimSpace(configuration.Username)
	sanitized.Token = strings.TrimSpace(configuration.Token)
	return sanitized
}

// Validate reports the first missing required connection setting.
func (configuration ServerConfiguration) Validate() error {
	if len(configuration.BaseURL) == 0 {
		return ErrMissingBaseURL
	}
	if len(configuration.ProjectKey) == 0 {
		return ErrMissingProjectKey
	}
	if len(configuration.RepositorySlug) == 0 {
		return ErrMissingRepositorySlug
	}
	if len(configuration.Username) == 0 {
		return ErrMissingUsername
	}
	return nil
}
