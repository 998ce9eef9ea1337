package prmerge

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/prflow/internal/bitbucket"
)

const (
	commandUseName           = "merge <pull-request-id>"
	commandAlias             = "m"
	commandShortDescription  = "Merge a pull request after a mergeability check"
	commandLongDescription   = "merge verifies the pull request is mergeable, asks for confirmation, and merges it. The confirmation defaults to yes; press enter to proceed."
	commandExampleText       = "prflow merge 42"
	commandErrorTemplate     = "merge failed: %w"
	invalidIdentifierMessage = "pull request identifier must be a positive integer, got %q"
	identifierArgumentCount  = 1
)

// CommandBuilder assembles the Cobra command for merging a pull request.
type CommandBuilder struct {
	LoggerProvider              func() *zap.Logger
	ServerConfigurationProvider func() bitbucket.ServerConfiguration
	Client                      MergeClient
	Prompter                    ConfirmationPrompter
	SecretReader                bitbucket.SecretReader
}

// Build constructs the merge command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseName,
		Aliases: []string{commandAlias},
		Short:   commandShortDescription,
		Long:    commandLongDescription,
		Example: commandExampleText,
		Args:    cobra.ExactArgs(identifierArgumentCount),
		RunE:    builder.run,
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	pullRequestID, parseError := strconv.Atoi(arguments[0])
	if parseError != nil || pullRequestID <= 0 {
		return fmt.Errorf(invalidIdentifierMessage, arguments[0])
	}

	logger := builder.resolveLogger()

	client, clientError := builder.resolveClient()
	if clientError != nil {
		return clientError
	}

	prompter := builder.Prompter
	if prompter == nil {
		prompter = NewIOConfirmationPrompter(command.InOrStdin(), command.OutOrStdout())
	}

	service, serviceError := NewService(ServiceDependencies{
		Logger:   logger,
		Client:   client,
		Prompter: prompter,
	})
	if serviceError != nil {
		return serviceError
	}

	mergeError := service.Merge(command.Context(), command.OutOrStdout(), pullRequestID)
	if mergeError != nil {
		return fmt.Errorf(commandErrorTemplate, mergeError)
	}

	return nil
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

func (builder *CommandBuilder) resolveClient() (MergeClient, error) {
	if builder.Client != nil {
		return builder.Client, nil
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
