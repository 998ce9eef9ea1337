package bitbucket

import "net/http"

// NewAuthenticatedClient resolves credentials for the provided configuration,
// prompting through secretReader when no token is configured, and returns a
// ready Client. A nil secretReader selects the interactive terminal prompt.
func NewAuthenticatedClient(configuration ServerConfiguration, secretReader SecretReader) (*Client, error) {
	if secretReader == nil {
		secretReader = NewTerminalSecretReader()
	}

	sanitizedConfiguration := configuration.Sanitize()
	if validationError := sanitizedConfiguration.Validate(); validationError != nil {
		return nil, validationError
	}

	credentialsResolver, resolverError := NewCredentialsResolver(secretReader)
	if resolverError != nil {
		return nil, resolverError
	}

	resolvedCredentials, credentialsError := credentialsResolver.Resolve(sanitizedConfiguration)
	if credentialsError != nil {
		return nil, credentialsError
	}

	return NewClient(sanitizedConfiguration, resolvedCredentials, http.DefaultClient)
}
