package prlist

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/prflow/internal/bitbucket"
)

const (
	commandUseName          = "pull-requests"
	commandShortDescription = "List your open pull requests with approval state"
	commandLongDescription  = "pull-requests shows the open pull requests authored by the configured user, one per line, with an approved or pending marker reflecting reviewer approval of the current revision."
	commandExampleText      = "prflow pull-requests"
	commandErrorTemplate    = "pull request listing failed: %w"
)

var commandAliases = []string{"pr", "prs"}

// CommandBuilder assembles the Cobra command for pull-request listing.
type CommandBuilder struct {
	LoggerProvider              func() *zap.Logger
	ConfigurationProvider       func() CommandConfiguration
	ServerConfigurationProvider func() bitbucket.ServerConfiguration
	Lister                      PullRequestLister
	SecretReader                bitbucket.SecretReader
}

// Build constructs the pull-requests command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseName,
		Aliases: commandAliases,
		Short:   commandShortDescription,
		Long:    commandLongDescription,
		Example: commandExampleText,
		Args:    cobra.NoArgs,
		RunE:    builder.run,
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	logger := builder.resolveLogger()

	lister, listerError := builder.resolveLister()
	if listerError != nil {
		return listerError
	}

	service, serviceError := NewService(ServiceDependencies{Logger: logger, Lister: lister})
	if serviceError != nil {
		return serviceError
	}

	listingError := service.List(command.Context(), command.OutOrStdout(), builder.resolveConfiguration().ResultLimit)
	if listingError != nil {
		return fmt.Errorf(commandErrorTemplate, listingError)
	}

	return nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
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

func (builder *CommandBuilder) resolveLister() (PullRequestLister, error) {
	if builder.Lister != nil {
		return builder.Lister, nil
	}

	serverConfiguration := bitbucket.ServerConfiguration{}
	if builder.ServerConfigurationProvider != nil {
		serverConfiguration = builder.ServerConfigurationProvider()
	}

	client, clientError := bitbucket.NewAuthenticatedClient(serverConfiguration, builder.SecretReader)
	if clientError != nil {
		return nil, clientError
	}

	return client, nil
}
