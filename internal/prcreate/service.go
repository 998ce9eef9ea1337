package prcreate

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/prflow/internal/bitbucket"
	"github.com/temirov/prflow/internal/branchname"
)

const (
	loggerMissingMessageConstant      = "logger not configured"
	repositoryMissingMessageConstant  = "repository manager not configured"
	creatorMissingMessageConstant     = "pull request creator not configured"
	mergeBranchMissingMessageConstant = "no merge-branch supplied"
	identicalBranchesMessageConstant  = "topic branch and merge branch are identical"
	defaultRemoteNameConstant         = "origin"
	pullRequestCreatedMessageConstant = "pull request created"
	logFieldPullRequestIDConstant     = "pull_request_id"
	logFieldSourceBranchConstant      = "source_branch"
	logFieldTargetBranchConstant      = "target_branch"
)

// Sentinel errors for service construction and option validation.
var (
	ErrLoggerMissing      = errors.New(loggerMissingMessageConstant)
	ErrRepositoryMissing  = errors.New(repositoryMissingMessageConstant)
	ErrCreatorMissing     = errors.New(creatorMissingMessageConstant)
	ErrMergeBranchMissing = errors.New(mergeBranchMissingMessageConstant)
	ErrIdenticalBranches  = errors.New(identicalBranchesMessageConstant)
)

// GitRepository is the subset of gitrepo.RepositoryManager required by the creator.
type GitRepository interface {
	CurrentBranch(executionContext context.Context) (string, error)
	PushBranch(executionContext context.Context, remoteName string, branchName string) error
	LastCommitMessage(executionContext context.Context, branchName string) (string, error)
}

// PullRequestCreator is the subset of bitbucket.Client required by the creator.
type PullRequestCreator interface {
	CreatePullRequest(executionContext context.Context, draft bitbucket.PullRequestDraft) (int, error)
}

// ServiceDependencies collects the collaborators for the creation service.
type ServiceDependencies struct {
	Logger     *zap.Logger
	Repository GitRepository
	Creator    PullRequestCreator
	RemoteName string
}

// Options configures a single pull-request creation.
type Options struct {
	TopicBranch string
	MergeBranch string
}

// Result reports the created pull request.
type Result struct {
	ID           int
	Title        string
	SourceBranch string
	TargetBranch string
}

// Service pushes a topic branch and opens one pull request for it.
//
// Creation is deliberately not idempotent: running it twice with identical
// arguments produces two distinct pull requests on the server.
type Service struct {
	logger     *zap.Logger
	repository GitRepository
	creator    PullRequestCreator
	remoteName string
}

// NewService validates dependencies and constructs the creation service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Logger == nil {
		return nil, ErrLoggerMissing
	}
	if dependencies.Repository == nil {
		return nil, ErrRepositoryMissing
	}
	if dependencies.Creator == nil {
		return nil, ErrCreatorMissing
	}

	remoteName := strings.TrimSpace(dependencies.RemoteName)
	if len(remoteName) == 0 {
		remoteName = defaultRemoteNameConstant
	}

	return &Service{
		logger:     dependencies.Logger,
		repository: dependencies.Repository,
		creator:    dependencies.Creator,
		remoteName: remoteName,
	}, nil
}

// Create pushes the topic branch and submits a pull request targeting the
// merge branch. The push happens first because the server rejects a pull
// request whose source ref does not exist remotely. A creation failure after a
// successful push leaves the pushed branch behind; it is not cleaned up.
func (service *Service) Create(executionContext context.Context, options Options) (Result, error) {
	mergeBranch := strings.TrimSpace(options.MergeBranch)
	if len(mergeBranch) == 0 {
		return Result{}, ErrMergeBranchMissing
	}

	topicBranch := strings.TrimSpace(options.TopicBranch)
	if len(topicBranch) == 0 {
		currentBranch, currentBranchError := service.repository.CurrentBranch(executionContext)
		if currentBranchError != nil {
			return Result{}, currentBranchError
		}
		topicBranch = currentBranch
	}

	if topicBranch == mergeBranch {
		return Result{}, ErrIdenticalBranches
	}

	if pushError := service.repository.PushBranch(executionContext, service.remoteName, topicBranch); pushError != nil {
		return Result{}, pushError
	}

	commitMessage, messageError := service.repository.LastCommitMessage(executionContext, topicBranch)
	if messageError != nil {
		return Result{}, messageError
	}

	pullRequestDraft := bitbucket.PullRequestDraft{
		Title:        branchname.PullRequestTitle(topicBranch),
		Description:  commitMessage,
		SourceBranch: topicBranch,
		TargetBranch: mergeBranch,
	}

	pullRequestID, creationError := service.creator.CreatePullRequest(executionContext, pullRequestDraft)
	if creationError != nil {
		return Result{}, creationError
	}

	service.logger.Info(
		pullRequestCreatedMessageConstant,
		zap.Int(logFieldPullRequestIDConstant, pullRequestID),
		zap.String(logFieldSourceBranchConstant, topicBranch),
		zap.String(logFieldTargetBranchConstant, mergeBranch),
	)

	return Result{
		ID:           pullRequestID,
		Title:        pullRequestDraft.Title,
		SourceBranch: topicBranch,
		TargetBranch: mergeBranch,
	}, nil
}
