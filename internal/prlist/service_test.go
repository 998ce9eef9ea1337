package prlist_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/prflow/internal/bitbucket"
	"github.com/temirov/prflow/internal/prlist"
)

type stubLister struct {
	summaries      []bitbucket.PullRequestSummary
	listError      error
	requestedLimit int
}

func (lister *stubLister) ListPullRequests(_ context.Context, resultLimit int) ([]bitbucket.PullRequestSummary, error) {
	lister.requestedLimit = resultLimit
	return lister.summaries, lister.listError
}

func newTestService(testInstance *testing.T, lister *stubLister) *prlist.Service {
	testInstance.Helper()

	service, serviceError := prlist.NewService(prlist.ServiceDependencies{Logger: zap.NewNop(), Lister: lister})
	require.NoError(testInstance, serviceError)

	return service
}

func TestListRendersOneRowPerPullRequest(testInstance *testing.T) {
	lister := &stubLister{summaries: []bitbucket.PullRequestSummary{
		{ID: 41, Title: "JIRA-7: harden retries", Approved: true},
		{ID: 42, Title: "JIRA-9: drop legacy flag", Approved: false},
	}}
	service := newTestService(testInstance, lister)

	outputBuffer := &bytes.Buffer{}
	require.NoError(testInstance, service.List(context.Background(), outputBuffer, 25))

	require.Equal(testInstance, 25, lister.requestedLimit)
	require.Equal(testInstance, "#41\t[approved]\tJIRA-7: harden retries\n#42\t[pending]\tJIRA-9: drop legacy flag\n", outputBuffer.String())
}

func TestListReportsEmptyResult(testInstance *testing.T) {
	service := newTestService(testInstance, &stubLister{})

	outputBuffer := &bytes.Buffer{}
	require.NoError(testInstance, service.List(context.Background(), outputBuffer, 10))
	require.Equal(testInstance, "No open pull requests.\n", outputBuffer.String())
}

func TestListPropagatesListerFailure(testInstance *testing.T) {
	listError := errors.New("server returned 500")
	service := newTestService(testInstance, &stubLister{listError: listError})

	outputBuffer := &bytes.Buffer{}
	require.ErrorIs(testInstance, service.List(context.Background(), outputBuffer, 10), listError)
	require.Empty(testInstance, outputBuffer.String())
}

func TestCommandUsesConfiguredLimit(testInstance *testing.T) {
	lister := &stubLister{summaries: []bitbucket.PullRequestSummary{{ID: 7, Title: "JIRA-1: tidy"}}}
	builder := prlist.CommandBuilder{
		ConfigurationProvider: func() prlist.CommandConfiguration {
			return prlist.CommandConfiguration{ResultLimit: 5}
		},
		Lister: lister,
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	command.SetArgs(nil)
	command.SetContext(context.Background())

	require.NoError(testInstance, command.Execute())
	require.Equal(testInstance, 5, lister.requestedLimit)
	require.Contains(testInstance, outputBuffer.String(), "#7\t[pending]\tJIRA-1: tidy")
}
