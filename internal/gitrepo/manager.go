package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/prflow/internal/execshell"
)

const (
	gitRevParseSubcommandConstant          = "rev-parse"
	gitAbbrevRefFlagConstant               = "--abbrev-ref"
	gitHeadReferenceConstant               = "HEAD"
	gitCheckoutSubcommandConstant          = "checkout"
	gitCheckoutNewBranchFlagConstant       = "-b"
	gitPushSubcommandConstant              = "push"
	gitRevListSubcommandConstant           = "rev-list"
	gitRevListReverseFlagConstant          = "--reverse"
	gitCherryPickSubcommandConstant        = "cherry-pick"
	gitCherryPickRecordOriginFlagConstant  = "-x"
	gitLogSubcommandConstant               = "log"
	gitLogSingleCommitFlagConstant         = "-1"
	gitLogFullMessageFormatFlagConstant    = "--format=%B"
	commitRangeTemplateConstant            = "%s..%s"
	executorNotConfiguredMessageConstant   = "git executor not configured"
	requiredValueMessageConstant           = "value required"
	invalidInputErrorTemplateConstant      = "%s: %s"
	operationErrorTemplateConstant         = "%s operation failed: %s"
	branchNameFieldConstant                = "branch_name"
	baseBranchFieldConstant                = "base_branch"
	topicBranchFieldConstant               = "topic_branch"
	remoteNameFieldConstant                = "remote_name"
	commitIdentifiersFieldConstant         = "commit_identifiers"
	currentBranchOperationNameConstant     = OperationName("CurrentBranch")
	checkoutBranchOperationNameConstant    = OperationName("CheckoutBranch")
	createBranchOperationNameConstant      = OperationName("CreateBranch")
	pushBranchOperationNameConstant        = OperationName("PushBranch")
	commitRangeOperationNameConstant       = OperationName("CommitRange")
	cherryPickOperationNameConstant        = OperationName("CherryPickCommits")
	lastCommitMessageOperationNameConstant = OperationName("LastCommitMessage")
)

// OperationName describes a named repository operation supported by the manager.
type OperationName string

// GitExecutor is the minimal interface required from execshell.ShellExecutor.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ErrExecutorNotConfigured indicates the manager was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for repository operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// RepositoryManager performs Git operations against a local repository clone.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager around the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// CurrentBranch reports the branch currently checked out in the working tree.
func (manager *RepositoryManager) CurrentBranch(executionContext context.Context) (string, error) {
	commandDetails := execshell.CommandDetails{
		Arguments: []string{gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant},
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return "", OperationError{Operation: currentBranchOperationNameConstant, Cause: executionError}
	}

	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// CheckoutBranch switches the working tree to the named branch.
func (manager *RepositoryManager) CheckoutBranch(executionContext context.Context, branchName string) error {
	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedBranchName) == 0 {
		return InvalidInputError{FieldName: branchNameFieldConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{gitCheckoutSubcommandConstant, trimmedBranchName},
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: checkoutBranchOperationNameConstant, Cause: executionError}
	}

	return nil
}

// CreateBranch creates a local branch based at the provided start point and checks it out.
func (manager *RepositoryManager) CreateBranch(executionContext context.Context, branchName string, startPoint string) error {
	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedBranchName) == 0 {
		return InvalidInputError{FieldName: branchNameFieldConstant, Message: requiredValueMessageConstant}
	}

	trimmedStartPoint := strings.TrimSpace(startPoint)
	if len(trimmedStartPoint) == 0 {
		return InvalidInputError{FieldName: baseBranchFieldConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{gitCheckoutSubcommandConstant, gitCheckoutNewBranchFlagConstant, trimmedBranchName, trimmedStartPoint},
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: createBranchOperationNameConstant, Cause: executionError}
	}

	return nil
}

// PushBranch publishes the named branch to the provided remote.
func (manager *RepositoryManager) PushBranch(executionContext context.Context, remoteName string, branchName string) error {
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		return InvalidInputError{FieldName: remoteNameFieldConstant, Message: requiredValueMessageConstant}
	}

	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedBranchName) == 0 {
		return InvalidInputError{FieldName: branchNameFieldConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{gitPushSubcommandConstant, trimmedRemoteName, trimmedBranchName},
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: pushBranchOperationNameConstant, Cause: executionError}
	}

	return nil
}

// CommitRange lists the commits reachable from the topic branch but not the base
// branch, ordered oldest first so they can be replayed without dependency conflicts.
func (manager *RepositoryManager) CommitRange(executionContext context.Context, baseBranch string, topicBranch string) ([]string, error) {
	trimmedBaseBranch := strings.TrimSpace(baseBranch)
	if len(trimmedBaseBranch) == 0 {
		return nil, InvalidInputError{FieldName: baseBranchFieldConstant, Message: requiredValueMessageConstant}
	}

	trimmedTopicBranch := strings.TrimSpace(topicBranch)
	if len(trimmedTopicBranch) == 0 {
		return nil, InvalidInputError{FieldName: topicBranchFieldConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			gitRevListSubcommandConstant,
			gitRevListReverseFlagConstant,
			fmt.Sprintf(commitRangeTemplateConstant, trimmedBaseBranch, trimmedTopicBranch),
		},
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return nil, OperationError{Operation: commitRangeOperationNameConstant, Cause: executionError}
	}

	outputLines := strings.Split(executionResult.StandardOutput, "\n")
	commitIdentifiers := make([]string, 0, len(outputLines))
	for _, outputLine := range outputLines {
		trimmedLine := strings.TrimSpace(outputLine)
		if len(trimmedLine) == 0 {
			continue
		}
		commitIdentifiers = append(commitIdentifiers, trimmedLine)
	}

	return commitIdentifiers, nil
}

// CherryPickCommits replays the provided commits, in the given order, onto the
// currently checked-out branch. The -x flag records the original commit
// identifier in each replayed commit message.
func (manager *RepositoryManager) CherryPickCommits(executionContext context.Context, commitIdentifiers []string) error {
	if len(commitIdentifiers) == 0 {
		return InvalidInputError{FieldName: commitIdentifiersFieldConstant, Message: requiredValueMessageConstant}
	}

	commandArguments := []string{gitCherryPickSubcommandConstant, gitCherryPickRecordOriginFlagConstant}
	commandArguments = append(commandArguments, commitIdentifiers...)

	commandDetails := execshell.CommandDetails{Arguments: commandArguments}

	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: cherryPickOperationNameConstant, Cause: executionError}
	}

	return nil
}

// LastCommitMessage returns the full message body of the most recent commit on the named branch.
func (manager *RepositoryManager) LastCommitMessage(executionContext context.Context, branchName string) (string, error) {
	trimmedBranchName := strings.TrimSpace(branchName)
	if len(trimmedBranchName) == 0 {
		return "", InvalidInputError{FieldName: branchNameFieldConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{gitLogSubcommandConstant, gitLogSingleCommitFlagConstant, gitLogFullMessageFormatFlagConstant, trimmedBranchName},
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return "", OperationError{Operation: lastCommitMessageOperationNameConstant, Cause: executionError}
	}

	return strings.TrimRight(executionResult.StandardOutput, "\n"), nil
}
