package prmerge

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/prflow/internal/bitbucket"
)

const (
	loggerMissingMessageConstant       = "logger not configured"
	clientMissingMessageConstant       = "merge client not configured"
	prompterMissingMessageConstant     = "confirmation prompter not configured"
	notMergeableTemplateConstant       = "pull request #%d is not mergeable"
	confirmationPromptTemplateConstant = "Merge %q? [Y/n] "
	abortedMessageConstant             = "merge aborted\n"
	mergedOutputTemplateConstant       = "Pull request #%d merged: %s\n"
	mergeCompletedMessageConstant      = "pull request merged"
	logFieldPullRequestIDConstant      = "pull_request_id"
	logFieldVersionConstant            = "version"
	logFieldStateConstant              = "state"
)

// Sentinel errors for service construction.
var (
	ErrLoggerMissing   = errors.New(loggerMissingMessageConstant)
	ErrClientMissing   = errors.New(clientMissingMessageConstant)
	ErrPrompterMissing = errors.New(prompterMissingMessageConstant)
)

// NotMergeableError reports a pull request the server refuses to merge.
type NotMergeableError struct {
	PullRequestID int
}

// Error describes the refused merge.
func (notMergeable NotMergeableError) Error() string {
	return fmt.Sprintf(notMergeableTemplateConstant, notMergeable.PullRequestID)
}

// MergeClient is the subset of the server client required by the merge flow.
type MergeClient interface {
	GetPullRequest(executionContext context.Context, pullRequestID int) (bitbucket.PullRequestDetails, error)
	GetMergeStatus(executionContext context.Context, pullRequestID int) (bitbucket.MergeStatus, error)
	MergePullRequest(executionContext context.Context, pullRequestID int, version int) (bitbucket.MergeResult, error)
}

// ServiceDependencies collects the collaborators for the merge service.
type ServiceDependencies struct {
	Logger   *zap.Logger
	Client   MergeClient
	Prompter ConfirmationPrompter
}

// Service merges a single pull request after a mergeability check and an
// interactive confirmation.
type Service struct {
	logger   *zap.Logger
	client   MergeClient
	prompter ConfirmationPrompter
}

// NewService validates dependencies and constructs the merge service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Logger == nil {
		return nil, ErrLoggerMissing
	}
	if dependencies.Client == nil {
		return nil, ErrClientMissing
	}
	if dependencies.Prompter == nil {
		return nil, ErrPrompterMissing
	}

	return &Service{
		logger:   dependencies.Logger,
		client:   dependencies.Client,
		prompter: dependencies.Prompter,
	}, nil
}

// Merge verifies the pull request is mergeable, asks the operator to confirm
// by title, and merges with the version token fetched in this invocation so a
// concurrent update surfaces as a conflict instead of a silent overwrite. A
// declined confirmation is a normal outcome, not an error.
func (service *Service) Merge(executionContext context.Context, outputWriter io.Writer, pullRequestID int) error {
	pullRequestDetails, detailsError := service.client.GetPullRequest(executionContext, pullRequestID)
	if detailsError != nil {
		return detailsError
	}

	mergeStatus, statusError := service.client.GetMergeStatus(executionContext, pullRequestID)
	if statusError != nil {
		return statusError
	}
	if !mergeStatus.CanMerge {
		return NotMergeableError{PullRequestID: pullRequestID}
	}

	confirmed, confirmationError := service.prompter.Confirm(fmt.Sprintf(confirmationPromptTemplateConstant, pullRequestDetails.Title))
	if confirmationError != nil {
		return confirmationError
	}
	if !confirmed {
		_, writeError := fmt.Fprint(outputWriter, abortedMessageConstant)
		return writeError
	}

	mergeResult, mergeError := service.client.MergePullRequest(executionContext, pullRequestID, pullRequestDetails.Version)
	if mergeError != nil {
		return mergeError
	}

	service.logger.Info(
		mergeCompletedMessageConstant,
		zap.Int(logFieldPullRequestIDConstant, pullRequestID),
		zap.Int(logFieldVersionConstant, pullRequestDetails.Version),
		zap.String(logFieldStateConstant, mergeResult.State),
	)

	_, writeError := fmt.Fprintf(outputWriter, mergedOutputTemplateConstant, pullRequestID, mergeResult.State)
	return writeError
}
