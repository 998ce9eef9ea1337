package prlist

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/prflow/internal/bitbucket"
)

const (
	loggerMissingMessageConstant = "logger not configured"
	listerMissingMessageConstant = "pull request lister not configured"
	approvedMarkerConstant       = "approved"
	pendingMarkerConstant        = "pending"
	listingRowTemplateConstant   = "#%d\t[%s]\t%s\n"
	emptyListingMessageConstant  = "No open pull requests.\n"
	listingLoggedMessageConstant = "pull request listing fetched"
	logFieldResultCountConstant  = "result_count"
)

// Sentinel errors for service construction.
var (
	ErrLoggerMissing = errors.New(loggerMissingMessageConstant)
	ErrListerMissing = errors.New(listerMissingMessageConstant)
)

// PullRequestLister fetches the authenticated user's open pull requests.
type PullRequestLister interface {
	ListPullRequests(executionContext context.Context, resultLimit int) ([]bitbucket.PullRequestSummary, error)
}

// ServiceDependencies collects the collaborators for the listing service.
type ServiceDependencies struct {
	Logger *zap.Logger
	Lister PullRequestLister
}

// Service renders the user's open pull requests one row per request.
type Service struct {
	logger *zap.Logger
	lister PullRequestLister
}

// NewService validates dependencies and constructs the listing service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Logger == nil {
		return nil, ErrLoggerMissing
	}
	if dependencies.Lister == nil {
		return nil, ErrListerMissing
	}

	return &Service{logger: dependencies.Logger, lister: dependencies.Lister}, nil
}

// List fetches up to resultLimit open pull requests authored by the
// configured user and writes one line per request to the writer: the numeric
// identifier, an approval marker, and the title. An approved marker means at
// least one reviewer approved the current revision.
func (service *Service) List(executionContext context.Context, outputWriter io.Writer, resultLimit int) error {
	pullRequests, listError := service.lister.ListPullRequests(executionContext, resultLimit)
	if listError != nil {
		return listError
	}

	service.logger.Info(listingLoggedMessageConstant, zap.Int(logFieldResultCountConstant, len(pullRequests)))

	if len(pullRequests) == 0 {
		_, writeError := fmt.Fprint(outputWriter, emptyListingMessageConstant)
		return writeError
	}

	for _, pullRequest := range pullRequests {
		approvalMarker := pendingMarkerConstant
		if pullRequest.Approved {
			approvalMarker = approvedMarkerConstant
		}
		if _, writeError := fmt.Fprintf(outputWriter, listingRowTemplateConstant, pullRequest.ID, approvalMarker, pullRequest.Title); writeError != nil {
			return writeError
		}
	}

	return nil
}
