package prcreate

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/prflow/internal/bitbucket"
	"github.com/temirov/prflow/internal/execshell"
	"github.com/temirov/prflow/internal/gitrepo"
)

const (
	commandUseName           = "create-pr [topic-branch] <merge-branch>"
	commandAlias             = "c"
	commandShortDescription  = "Create a pull request from a topic branch"
	commandLongDescription   = "create-pr pushes the topic branch (default: the currently checked-out branch) and opens a pull request targeting the merge branch. The title is derived from the branch name and the description from the latest commit message."
	commandExampleText       = "prflow create-pr feature/JIRA-123-fix-the-widget main"
	commandErrorTemplate     = "pull request creation failed: %w"
	createdOutputTemplate    = "Created pull request #%d: %s\n"
	singleArgumentCount      = 1
	topicAndMergeArgumentLen = 2
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the Cobra command for pull-request creation.
type CommandBuilder struct {
	LoggerProvider              LoggerProvider
	ConfigurationProvider       func() CommandConfiguration
	ServerConfigurationProvider func() bitbucket.ServerConfiguration
	GitExecutor                 gitrepo.GitExecutor
	PullRequestCreator          PullRequestCreator
	SecretReader                bitbucket.SecretReader
}

// Build constructs the create-pr command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseName,
		Aliases: []string{commandAlias},
		Short:   commandShortDescription,
		Long:    commandLongDescription,
		Example: commandExampleText,
		Args:    cobra.RangeArgs(singleArgumentCount, topicAndMergeArgumentLen),
		RunE:    builder.run,
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options := parseBranchArguments(arguments)

	logger := resolveLogger(builder.LoggerProvider)

	repositoryManager, repositoryError := resolveRepositoryManager(builder.GitExecutor, logger)
	if repositoryError != nil {
		return repositoryError
	}

	pullRequestCreator, creatorError := builder.resolveCreator()
	if creatorError != nil {
		return creatorError
	}

	service, serviceError := NewService(ServiceDependencies{
		Logger:     logger,
		Repository: repositoryManager,
		Creator:    pullRequestCreator,
		RemoteName: builder.resolveConfiguration().RemoteName,
	})
	if serviceError != nil {
		return serviceError
	}

	creationResult, creationError := service.Create(command.Context(), options)
	if creationError != nil {
		return fmt.Errorf(commandErrorTemplate, creationError)
	}

	fmt.Fprintf(command.OutOrStdout(), createdOutputTemplate, creationResult.ID, creationResult.Title)

	return nil
}

// parseBranchArguments maps positional arguments onto creation options: a
// single argument names the merge branch, two arguments name the topic branch
// and the merge branch in that order.
func parseBranchArguments(arguments []string) Options {
	if len(arguments) == singleArgumentCount {
		return Options{MergeBranch: arguments[0]}
	}
	return Options{TopicBranch: arguments[0], MergeBranch: arguments[1]}
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveCreator() (PullRequestCreator, error) {
	if builder.PullRequestCreator != nil {
		return builder.PullRequestCreator, nil
	}

	serverConfiguration := bitbucket.ServerConfiguration{}
	if builder.ServerConfigurationProvider != nil {
		serverConfiguration = builder.ServerConfigurationProvider()
	}

	return bitbucket.NewAuthenticatedClient(serverConfiguration, builder.SecretReader)
}

func resolveLogger(loggerProvider LoggerProvider) *zap.Logger {
	if loggerProvider == nil {
		return zap.NewNop()
	}

	logger := loggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func resolveRepositoryManager(gitExecutor gitrepo.GitExecutor, logger *zap.Logger) (*gitrepo.RepositoryManager, error) {
	if gitExecutor == nil {
		shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
		if executorError != nil {
			return nil, executorError
		}
		gitExecutor = shellExecutor
	}

	return gitrepo.NewRepositoryManager(gitExecutor)
}
