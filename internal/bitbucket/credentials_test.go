package bitbucket_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/prflow/internal/bitbucket"
)

type stubSecretReader struct {
	secret          string
	readError       error
	recordedPrompts []string
}

func (reader *stubSecretReader) ReadSecret(prompt string) (string, error) {
	reader.recordedPrompts = append(reader.recordedPrompts, prompt)
	return reader.secret, reader.readError
}

func TestCredentialsResolverPrefersConfiguredToken(testInstance *testing.T) {
	secretReader := &stubSecretReader{}
	resolver, resolverError := bitbucket.NewCredentialsResolver(secretReader)
	require.NoError(testInstance, resolverError)

	configuration := bitbucket.ServerConfiguration{
		Username: testUsernameConstant,
		Token:    testTokenConstant,
	}

	credentials, resolveError := resolver.Resolve(configuration)
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, bitbucket.AuthenticationSchemeBearer, credentials.Scheme)
	require.Equal(testInstance, testTokenConstant, credentials.Secret)
	require.Empty(testInstance, secretReader.recordedPrompts)
}

func TestCredentialsResolverPromptsWhenTokenAbsent(testInstance *testing.T) {
	secretReader := &stubSecretReader{secret: testPasswordConstant}
	resolver, resolverError := bitbucket.NewCredentialsResolver(secretReader)
	require.NoError(testInstance, resolverError)

	configuration := bitbucket.ServerConfiguration{Username: testUsernameConstant}

	credentials, resolveError := resolver.Resolve(configuration)
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, bitbucket.AuthenticationSchemeBasic, credentials.Scheme)
	require.Equal(testInstance, testPasswordConstant, credentials.Secret)
	require.Len(testInstance, secretReader.recordedPrompts, 1)
	require.Contains(testInstance, secretReader.recordedPrompts[0], testUsernameConstant)
}

func TestCredentialsResolverRejectsEmptyPrompt(testInstance *testing.T) {
	resolver, resolverError := bitbucket.NewCredentialsResolver(&stubSecretReader{secret: "  "})
	require.NoError(testInstance, resolverError)

	_, resolveError := resolver.Resolve(bitbucket.ServerConfiguration{Username: testUsernameConstant})
	require.ErrorIs(testInstance, resolveError, bitbucket.ErrEmptySecret)
}

func TestCredentialsResolverPropagatesReadErrors(testInstance *testing.T) {
	readFailure := errors.New("terminal unavailable")
	resolver, resolverError := bitbucket.NewCredentialsResolver(&stubSecretReader{readError: readFailure})
	require.NoError(testInstance, resolverError)

	_, resolveError := resolver.Resolve(bitbucket.ServerConfiguration{Username: testUsernameConstant})
	require.ErrorIs(testInstance, resolveError, readFailure)
}

func TestNewCredentialsResolverRequiresSecretReader(testInstance *testing.T) {
	resolver, resolverError := bitbucket.NewCredentialsResolver(nil)
	require.Nil(testInstance, resolver)
	require.ErrorIs(testInstance, resolverError, bitbucket.ErrSecretReaderNotConfigured)
}
