package backport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/prflow/internal/prcreate"
)

const (
	loggerMissingMessageConstant       = "logger not configured"
	repositoryMissingMessageConstant   = "repository manager not configured"
	publisherMissingMessageConstant    = "pull request publisher not configured"
	baseEqualsTopicMessageConstant     = "base branch and topic branch are identical"
	noTargetsMessageConstant           = "no backport target branches resolved"
	topicBranchMissingMessageConstant  = "topic branch is required"
	emptyCommitRangeMessageConstant    = "no commits to backport between base and topic branch"
	targetFailureTemplateConstant      = "backport of %s onto %s failed during %s: %s"
	backportBranchNameTemplateConstant = "%s-%s"
	workflowStartedMessageConstant     = "backport workflow started"
	targetCompletedMessageConstant     = "backport target completed"
	workingTreeRestoreFailedMessage    = "failed to restore topic branch checkout"
	logFieldTopicBranchConstant        = "topic_branch"
	logFieldBaseBranchConstant         = "base_branch"
	logFieldTargetBranchConstant       = "target_branch"
	logFieldTargetCountConstant        = "target_count"
	logFieldCommitCountConstant        = "commit_count"
	logFieldPullRequestIDConstant      = "pull_request_id"
)

// WorkflowStage identifies the step of the per-target state machine that was executing.
type WorkflowStage string

// Per-target workflow stages, in execution order.
const (
	StageCheckoutSource    WorkflowStage = WorkflowStage("checkout-source")
	StageBranch            WorkflowStage = WorkflowStage("branch")
	StageCherryPick        WorkflowStage = WorkflowStage("cherry-pick")
	StageSubmitPullRequest WorkflowStage = WorkflowStage("submit-pr")
)

// Sentinel errors for service construction and specification validation.
var (
	ErrLoggerMissing     = errors.New(loggerMissingMessageConstant)
	ErrRepositoryMissing = errors.New(repositoryMissingMessageConstant)
	ErrPublisherMissing  = errors.New(publisherMissingMessageConstant)
	ErrBaseEqualsTopic   = errors.New(baseEqualsTopicMessageConstant)
	ErrNoTargets         = errors.New(noTargetsMessageConstant)
	ErrTopicMissing      = errors.New(topicBranchMissingMessageConstant)
	ErrEmptyCommitRange  = errors.New(emptyCommitRangeMessageConstant)
)

// TargetFailureError reports which target branch and stage a backport aborted in.
//
// A failed cherry-pick is not rolled back: the working tree is left mid
// cherry-pick on the partially built backport branch for the operator to
// resolve manually, with only the topic branch checkout restored.
type TargetFailureError struct {
	TargetBranch   string
	BackportBranch string
	Stage          WorkflowStage
	Cause          error
}

// Error describes the aborted target.
func (failure TargetFailureError) Error() string {
	return fmt.Sprintf(targetFailureTemplateConstant, failure.BackportBranch, failure.TargetBranch, failure.Stage, failure.Cause)
}

// Unwrap exposes the underlying cause.
func (failure TargetFailureError) Unwrap() error {
	return failure.Cause
}

// GitRepository is the subset of gitrepo.RepositoryManager required by the orchestrator.
type GitRepository interface {
	CheckoutBranch(executionContext context.Context, branchName string) error
	CreateBranch(executionContext context.Context, branchName string, startPoint string) error
	CommitRange(executionContext context.Context, baseBranch string, topicBranch string) ([]string, error)
	CherryPickCommits(executionContext context.Context, commitIdentifiers []string) error
}

// PullRequestPublisher submits one pull request for a source/target branch pair.
type PullRequestPublisher interface {
	Create(executionContext context.Context, options prcreate.Options) (prcreate.Result, error)
}

// Specification describes one backport workflow invocation.
type Specification struct {
	TopicBranch string
	BaseBranch  string
	Targets     []string
}

// TargetResult reports one successfully backported target branch.
type TargetResult struct {
	TargetBranch   string
	BackportBranch string
	PullRequestID  int
}

// ServiceDependencies collects the collaborators for the orchestrator.
type ServiceDependencies struct {
	Logger     *zap.Logger
	Repository GitRepository
	Publisher  PullRequestPublisher
}

// Service replays a topic branch's unique commits onto each target branch and
// opens one pull request per target.
type Service struct {
	logger     *zap.Logger
	repository GitRepository
	publisher  PullRequestPublisher
}

// NewService validates dependencies and constructs the orchestrator.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Logger == nil {
		return nil, ErrLoggerMissing
	}
	if dependencies.Repository == nil {
		return nil, ErrRepositoryMissing
	}
	if dependencies.Publisher == nil {
		return nil, ErrPublisherMissing
	}

	return &Service{
		logger:     dependencies.Logger,
		repository: dependencies.Repository,
		publisher:  dependencies.Publisher,
	}, nil
}

// Run executes the backport workflow described by the specification.
//
// The commit range is computed once, from base..topic, and replayed
// identically onto every target in order. The first failing target aborts the
// whole workflow; remaining targets are never attempted. Whether the workflow
// succeeds or aborts, the topic branch is checked out again before Run
// returns.
func (service *Service) Run(executionContext context.Context, specification Specification) ([]TargetResult, error) {
	validatedSpecification, validationError := service.validate(specification)
	if validationError != nil {
		return nil, validationError
	}

	commitIdentifiers, rangeError := service.repository.CommitRange(executionContext, validatedSpecification.BaseBranch, validatedSpecification.TopicBranch)
	if rangeError != nil {
		return nil, rangeError
	}
	if len(commitIdentifiers) == 0 {
		return nil, ErrEmptyCommitRange
	}

	service.logger.Info(
		workflowStartedMessageConstant,
		zap.String(logFieldTopicBranchConstant, validatedSpecification.TopicBranch),
		zap.String(logFieldBaseBranchConstant, validatedSpecification.BaseBranch),
		zap.Int(logFieldTargetCountConstant, len(validatedSpecification.Targets)),
		zap.Int(logFieldCommitCountConstant, len(commitIdentifiers)),
	)

	targetResults := make([]TargetResult, 0, len(validatedSpecification.Targets))

	defer func() {
		if restoreError := service.repository.CheckoutBranch(executionContext, validatedSpecification.TopicBranch); restoreError != nil {
			service.logger.Warn(
				workingTreeRestoreFailedMessage,
				zap.String(logFieldTopicBranchConstant, validatedSpecification.TopicBranch),
				zap.Error(restoreError),
			)
		}
	}()

	for _, targetBranch := range validatedSpecification.Targets {
		targetResult, targetError := service.backportTarget(executionContext, validatedSpecification, commitIdentifiers, targetBranch)
		if targetError != nil {
			return targetResults, targetError
		}

		targetResults = append(targetResults, targetResult)

		service.logger.Info(
			targetCompletedMessageConstant,
			zap.String(logFieldTargetBranchConstant, targetBranch),
			zap.Int(logFieldPullRequestIDConstant, targetResult.PullRequestID),
		)
	}

	return targetResults, nil
}

func (service *Service) validate(specification Specification) (Specification, error) {
	validated := Specification{
		TopicBranch: strings.TrimSpace(specification.TopicBranch),
		BaseBranch:  strings.TrimSpace(specification.BaseBranch),
		Targets:     specification.Targets,
	}

	if len(validated.TopicBranch) == 0 {
		return Specification{}, ErrTopicMissing
	}
	if len(validated.BaseBranch) == 0 {
		return Specification{}, prcreate.ErrMergeBranchMissing
	}
	if validated.BaseBranch == validated.TopicBranch {
		return Specification{}, ErrBaseEqualsTopic
	}
	if len(validated.Targets) == 0 {
		return Specification{}, ErrNoTargets
	}

	return validated, nil
}

func (service *Service) backportTarget(executionContext context.Context, specification Specification, commitIdentifiers []string, targetBranch string) (TargetResult, error) {
	backportBranch := fmt.Sprintf(backportBranchNameTemplateConstant, specification.TopicBranch, targetBranch)

	if checkoutError := service.repository.CheckoutBranch(executionContext, specification.TopicBranch); checkoutError != nil {
		return TargetResult{}, TargetFailureError{TargetBranch: targetBranch, BackportBranch: backportBranch, Stage: StageCheckoutSource, Cause: checkoutError}
	}

	if branchError := service.repository.CreateBranch(executionContext, backportBranch, targetBranch); branchError != nil {
		return TargetResult{}, TargetFailureError{TargetBranch: targetBranch, BackportBranch: backportBranch, Stage: StageBranch, Cause: branchError}
	}

	if cherryPickError := service.repository.CherryPickCommits(executionContext, commitIdentifiers); cherryPickError != nil {
		return TargetResult{}, TargetFailureError{TargetBranch: targetBranch, BackportBranch: backportBranch, Stage: StageCherryPick, Cause: cherryPickError}
	}

	publishResult, publishError := service.publisher.Create(executionContext, prcreate.Options{
		TopicBranch: backportBranch,
		MergeBranch: targetBranch,
	})
	if publishError != nil {
		return TargetResult{}, TargetFailureError{TargetBranch: targetBranch, BackportBranch: backportBranch, Stage: StageSubmitPullRequest, Cause: publishError}
	}

	return TargetResult{
		TargetBranch:   targetBranch,
		BackportBranch: backportBranch,
		PullRequestID:  publishResult.ID,
	}, nil
}
