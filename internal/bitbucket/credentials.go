package bitbucket

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	passwordPromptTemplateConstant           = "Password for %s: "
	promptNewlineConstant                    = "\n"
	emptySecretMessageConstant               = "no token configured and the prompted password was empty"
	secretReaderNotConfiguredMessageConstant = "secret reader not configured"
)

// AuthenticationScheme selects how credentials are attached to requests.
type AuthenticationScheme string

// Supported authentication schemes.
const (
	AuthenticationSchemeBasic  AuthenticationScheme = AuthenticationScheme("basic")
	AuthenticationSchemeBearer AuthenticationScheme = AuthenticationScheme("bearer")
)

// Sentinel errors for credential resolution.
var (
	ErrEmptySecret               = errors.New(emptySecretMessageConstant)
	ErrSecretReaderNotConfigured = errors.New(secretReaderNotConfiguredMessageConstant)
)

// Credentials carries the resolved authentication material.
//
// The Secret field is never logged or serialized by any prflow component; it
// lives only for the duration of the invocation.
type Credentials struct {
	Username string
	Secret   string
	Scheme   AuthenticationScheme
}

// SecretReader acquires a secret value from the operator.
type SecretReader interface {
	ReadSecret(prompt string) (string, error)
}

// TerminalSecretReader prompts on the controlling terminal with echo disabled.
type TerminalSecretReader struct{}

// NewTerminalSecretReader constructs a TerminalSecretReader.
func NewTerminalSecretReader() *TerminalSecretReader {
	return &TerminalSecretReader{}
}

// ReadSecret writes the prompt to standard error and reads a line without echoing it.
func (reader *TerminalSecretReader) ReadSecret(prompt string) (string, error) {
	if _, writeError := fmt.Fprint(os.Stderr, prompt); writeError != nil {
		return "", writeError
	}

	secretBytes, readError := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprint(os.Stderr, promptNewlineConstant)
	if readError != nil {
		return "", readError
	}

	return string(secretBytes), nil
}

// CredentialsResolver produces Credentials from configuration, prompting for a
// password only when no token is configured.
type CredentialsResolver struct {
	secretReader SecretReader
}

// NewCredentialsResolver constructs a resolver around the provided secret reader.
func NewCredentialsResolver(secretReader SecretReader) (*CredentialsResolver, error) {
	if secretReader == nil {
		return nil, ErrSecretReaderNotConfigured
	}
	return &CredentialsResolver{secretReader: secretReader}, nil
}

// Resolve returns bearer credentials when a token is configured and otherwise
// prompts for the user's password to form HTTP Basic credentials.
func (resolver *CredentialsResolver) Resolve(configuration ServerConfiguration) (Credentials, error) {
	if len(configuration.Token) > 0 {
		return Credentials{
			Username: configuration.Username,
			Secret:   configuration.Token,
			Scheme:   AuthenticationSchemeBearer,
		}, nil
	}

	promptText := fmt.Sprintf(passwordPromptTemplateConstant, configuration.Username)
	secretValue, readError := resolver.secretReader.ReadSecret(promptText)
	if readError != nil {
		return Credentials{}, readError
	}

	if len(strings.TrimSpace(secretValue)) == 0 {
		return Credentials{}, ErrEmptySecret
	}

	return Credentials{
		Username: configuration.Username,
		Secret:   secretValue,
		Scheme:   AuthenticationSchemeBasic,
	}, nil
}
