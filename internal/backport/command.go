package backport

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/prflow/internal/bitbucket"
	"github.com/temirov/prflow/internal/execshell"
	"github.com/temirov/prflow/internal/gitrepo"
	"github.com/temirov/prflow/internal/prcreate"
)

const (
	commandUseName          = "create-prs [topic-branch] <merge-branch> [target-branches...]"
	commandAlias            = "cs"
	commandShortDescription = "Backport a topic branch onto several target branches"
	commandLongDescription  = "create-prs cherry-picks the commits unique to the topic branch (default: the currently checked-out branch) onto each target branch, pushing one backport branch and opening one pull request per target. Targets come from the command line, the configured target list, or the configured targets file, in that order."
	commandExampleText      = "prflow create-prs feature/JIRA-1-fix main release-1 release-2"
	commandErrorTemplate    = "backport workflow failed: %w"
	createdOutputTemplate   = "Created pull request #%d: %s -> %s\n"
	mergeBranchOnlyArgCount = 1
)

// CommandBuilder assembles the Cobra command for the backport workflow.
type CommandBuilder struct {
	LoggerProvider              prcreate.LoggerProvider
	ConfigurationProvider       func() CommandConfiguration
	ServerConfigurationProvider func() bitbucket.ServerConfiguration
	GitExecutor                 gitrepo.GitExecutor
	Publisher                   PullRequestPublisher
	SecretReader                bitbucket.SecretReader
}

// Build constructs the create-prs command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseName,
		Aliases: []string{commandAlias},
		Short:   commandShortDescription,
		Long:    commandLongDescription,
		Example: commandExampleText,
		Args:    cobra.MinimumNArgs(mergeBranchOnlyArgCount),
		RunE:    builder.run,
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	logger := resolveLogger(builder.LoggerProvider)

	repositoryManager, repositoryError := resolveRepositoryManager(builder.GitExecutor, logger)
	if repositoryError != nil {
		return repositoryError
	}

	specification, specificationError := builder.buildSpecification(command, arguments, configuration, repositoryManager)
	if specificationError != nil {
		return specificationError
	}

	publisher, publisherError := builder.resolvePublisher(logger, repositoryManager, configuration)
	if publisherError != nil {
		return publisherError
	}

	service, serviceError := NewService(ServiceDependencies{
		Logger:     logger,
		Repository: repositoryManager,
		Publisher:  publisher,
	})
	if serviceError != nil {
		return serviceError
	}

	targetResults, workflowError := service.Run(command.Context(), specification)
	if workflowError != nil {
		return fmt.Errorf(commandErrorTemplate, workflowError)
	}

	for _, targetResult := range targetResults {
		fmt.Fprintf(command.OutOrStdout(), createdOutputTemplate, targetResult.PullRequestID, targetResult.BackportBranch, targetResult.TargetBranch)
	}

	return nil
}

// buildSpecification maps positional arguments onto the workflow specification:
// a single argument names the merge branch, further arguments name the topic
// branch, the merge branch, and any explicit target branches in that order.
func (builder *CommandBuilder) buildSpecification(command *cobra.Command, arguments []string, configuration CommandConfiguration, repositoryManager *gitrepo.RepositoryManager) (Specification, error) {
	specification := Specification{}
	explicitTargets := []string{}

	if len(arguments) == mergeBranchOnlyArgCount {
		specification.BaseBranch = arguments[0]
	} else {
		specification.TopicBranch = arguments[0]
		specification.BaseBranch = arguments[1]
		explicitTargets = arguments[2:]
	}

	if len(strings.TrimSpace(specification.TopicBranch)) == 0 {
		currentBranch, branchError := repositoryManager.CurrentBranch(command.Context())
		if branchError != nil {
			return Specification{}, branchError
		}
		specification.TopicBranch = currentBranch
	}

	resolvedTargets, targetsError := ResolveTargets(explicitTargets, configuration.Targets, configuration.TargetsFile)
	if targetsError != nil {
		return Specification{}, targetsError
	}
	specification.Targets = resolvedTargets

	return specification, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

// resolvePublisher wires the shared repository manager into a pull-request
// creation service so each backport branch is pushed and submitted the same
// way create-pr does it.
func (builder *CommandBuilder) resolvePublisher(logger *zap.Logger, repositoryManager *gitrepo.RepositoryManager, configuration CommandConfiguration) (PullRequestPublisher, error) {
	if builder.Publisher != nil {
		return builder.Publisher, nil
	}

	serverConfiguration := bitbucket.ServerConfiguration{}
	if builder.ServerConfigurationProvider != nil {
		serverConfiguration = builder.ServerConfigurationProvider()
	}

	client, clientError := bitbucket.NewAuthenticatedClient(serverConfiguration, builder.SecretReader)
	if clientError != nil {
		return nil, clientError
	}

	creationService, creationServiceError := prcreate.NewService(prcreate.ServiceDependencies{
		Logger:     logger,
		Repository: repositoryManager,
		Creator:    client,
		RemoteName: configuration.RemoteName,
	})
	if creationServiceError != nil {
		return nil, creationServiceError
	}

	return creationService, nil
}

func resolveLogger(loggerProvider prcreate.LoggerProvider) *zap.Logger {
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
