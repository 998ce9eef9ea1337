package bitbucket

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

const (
	pullRequestsEndpointTemplateConstant     = "%s/rest/api/1.0/projects/%s/repos/%s/pull-requests"
	pullRequestEndpointTemplateConstant      = pullRequestsEndpointTemplateConstant + "/%d"
	mergeEndpointTemplateConstant            = pullRequestEndpointTemplateConstant + "/merge"
	branchReferenceTemplateConstant          = "refs/heads/%s"
	contentTypeHeaderNameConstant            = "Content-Type"
	contentTypeJSONValueConstant             = "application/json; charset=utf-8"
	authorizationHeaderNameConstant          = "Authorization"
	bearerAuthorizationTemplateConstant      = "Bearer %s"
	stateQueryParameterConstant              = "state"
	openStateValueConstant                   = "OPEN"
	roleQueryParameterConstant               = "role"
	authorRoleValueConstant                  = "AUTHOR"
	usernameQueryParameterConstant           = "username.1"
	limitQueryParameterConstant              = "limit"
	versionQueryParameterConstant            = "version"
	operationErrorTemplateConstant           = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant    = "%s response decoding failed: %s"
	payloadEncodingErrorTemplateConstant     = "%s payload encoding failed: %s"
	unexpectedStatusTemplateConstant         = "%s returned unexpected status %d: %s"
	defaultPullRequestLimitConstant          = 50
	createPullRequestOperationNameConstant   = OperationName("CreatePullRequest")
	listPullRequestsOperationNameConstant    = OperationName("ListPullRequests")
	getPullRequestOperationNameConstant      = OperationName("GetPullRequest")
	getMergeStatusOperationNameConstant      = OperationName("GetMergeStatus")
	mergePullRequestOperationNameConstant    = OperationName("MergePullRequest")
	configurationNotValidatedMessageConstant = "bitbucket client configuration invalid"
)

// OperationName describes a named Bitbucket API workflow supported by the client.
type OperationName string

// PullRequestDraft describes a pull request to be created.
type PullRequestDraft struct {
	Title        string
	Description  string
	SourceBranch string
	TargetBranch string
}

// PullRequestSummary is one row of a pull-request listing.
type PullRequestSummary struct {
	ID       int
	Title    string
	Author   string
	Approved bool
}

// PullRequestDetails carries the fields required by the merge flow.
type PullRequestDetails struct {
	ID      int
	Title   string
	Version int
}

// MergeStatus reports server-computed mergeability.
type MergeStatus struct {
	CanMerge bool
}

// MergeResult carries the pull-request state returned by a merge call.
type MergeResult struct {
	State string
}

// OperationError wraps transport-level failures for Bitbucket operations.
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

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// PayloadEncodingError indicates JSON encoding issues.
type PayloadEncodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the encoding failure.
func (encodingError PayloadEncodingError) Error() string {
	return fmt.Sprintf(payloadEncodingErrorTemplateConstant, encodingError.Operation, encodingError.Cause)
}

// Unwrap exposes the underlying error.
func (encodingError PayloadEncodingError) Unwrap() error {
	return encodingError.Cause
}

// UnexpectedStatusError surfaces a non-success HTTP response verbatim.
type UnexpectedStatusError struct {
	Operation  OperationName
	StatusCode int
	Body       string
}

// Error describes the unexpected response.
func (statusError UnexpectedStatusError) Error() string {
	return fmt.Sprintf(unexpectedStatusTemplateConstant, statusError.Operation, statusError.StatusCode, strings.TrimSpace(statusError.Body))
}

// ErrConfigurationInvalid indicates client construction with invalid configuration.
var ErrConfigurationInvalid = errors.New(configurationNotValidatedMessageConstant)

// Wire representations of the Bitbucket Server REST payloads.
type wireProject struct {
	Key string `json:"key,omitempty"`
}

type wireRepository struct {
	Slug    string      `json:"slug,omitempty"`
	Project wireProject `json:"project"`
}

type wireBranchRef struct {
	ID         string         `json:"id,omitempty"`
	Repository wireRepository `json:"repository"`
}

type wirePullRequest struct {
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	State       string        `json:"state,omitempty"`
	Open        bool          `json:"open"`
	Closed      bool          `json:"closed"`
	FromRef     *wireBranchRef `json:"fromRef,omitempty"`
	ToRef       *wireBranchRef `json:"toRef,omitempty"`
	Locked      bool          `json:"locked"`
}

// Client issues authenticated requests against the Bitbucket Server REST API.
type Client struct {
	configuration ServerConfiguration
	credentials   Credentials
	httpClient    *http.Client
}

// NewClient validates the configuration and returns a ready Client. A nil
// httpClient selects http.DefaultClient.
func NewClient(configuration ServerConfiguration, credentials Credentials, httpClient *http.Client) (*Client, error) {
	sanitizedConfiguration := configuration.Sanitize()
	if validationError := sanitizedConfiguration.Validate(); validationError != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigurationInvalid, validationError)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		configuration: sanitizedConfiguration,
		credentials:   credentials,
		httpClient:    httpClient,
	}, nil
}

// CreatePullRequest submits a pull-request draft and returns the server-assigned identifier.
func (client *Client) CreatePullRequest(executionContext context.Context, draft PullRequestDraft) (int, error) {
	repositoryReference := wireRepository{
		Slug:    client.configuration.RepositorySlug,
		Project: wireProject{Key: client.configuration.ProjectKey},
	}

	payload := wirePullRequest{
		Title:       draft.Title,
		Description: draft.Description,
		State:       openStateValueConstant,
		Open:        true,
		Closed:      false,
		FromRef: &wireBranchRef{
			ID:         fmt.Sprintf(branchReferenceTemplateConstant, draft.SourceBranch),
			Repository: repositoryReference,
		},
		ToRef: &wireBranchRef{
			ID:         fmt.Sprintf(branchReferenceTemplateConstant, draft.TargetBranch),
			Repository: repositoryReference,
		},
	}

	payloadBytes, encodingError := json.Marshal(&payload)
	if encodingError != nil {
		return 0, PayloadEncodingError{Operation: createPullRequestOperationNameConstant, Cause: encodingError}
	}

	responseBody, requestError := client.sendRequest(
		executionContext,
		createPullRequestOperationNameConstant,
		http.MethodPost,
		client.pullRequestsEndpoint(),
		payloadBytes,
		http.StatusCreated,
	)
	if requestError != nil {
		return 0, requestError
	}

	var response struct {
		ID int `json:"id"`
	}
	if decodingError := json.Unmarshal(responseBody, &response); decodingError != nil {
		return 0, ResponseDecodingError{Operation: createPullRequestOperationNameConstant, Cause: decodingError}
	}

	return response.ID, nil
}

// ListPullRequests returns open pull requests authored by the configured user,
// preserving the server's ordering, up to resultLimit entries.
func (client *Client) ListPullRequests(executionContext context.Context, resultLimit int) ([]PullRequestSummary, error) {
	if resultLimit <= 0 {
		resultLimit = defaultPullRequestLimitConstant
	}

	queryParameters := url.Values{}
	queryParameters.Set(stateQueryParameterConstant, openStateValueConstant)
	queryParameters.Set(roleQueryParameterConstant, authorRoleValueConstant)
	queryParameters.Set(usernameQueryParameterConstant, client.configuration.Username)
	queryParameters.Set(limitQueryParameterConstant, strconv.Itoa(resultLimit))

	listEndpoint := client.pullRequestsEndpoint() + "?" + queryParameters.Encode()

	responseBody, requestError := client.sendRequest(
		executionContext,
		listPullRequestsOperationNameConstant,
		http.MethodGet,
		listEndpoint,
		nil,
		http.StatusOK,
	)
	if requestError != nil {
		return nil, requestError
	}

	var response struct {
		Values []struct {
			ID     int    `json:"id"`
			Title  string `json:"title"`
			Author struct {
				User struct {
					Name string `json:"name"`
				} `json:"user"`
			} `json:"author"`
			Reviewers []struct {
				Approved bool `json:"approved"`
			} `json:"reviewers"`
		} `json:"values"`
	}
	if decodingError := json.Unmarshal(responseBody, &response); decodingError != nil {
		return nil, ResponseDecodingError{Operation: listPullRequestsOperationNameConstant, Cause: decodingError}
	}

	pullRequestSummaries := make([]PullRequestSummary, 0, len(response.Values))
	for _, pullRequestEntry := range response.Values {
		// Server-side role filtering is authoritative; the author comparison is a
		// backstop for servers that ignore the username parameter.
		if pullRequestEntry.Author.User.Name != client.configuration.Username {
			continue
		}

		approvedByAnyReviewer := false
		for _, reviewerEntry := range pullRequestEntry.Reviewers {
			if reviewerEntry.Approved {
				approvedByAnyReviewer = true
				break
			}
		}

		pullRequestSummaries = append(pullRequestSummaries, PullRequestSummary{
			ID:       pullRequestEntry.ID,
			Title:    pullRequestEntry.Title,
			Author:   pullRequestEntry.Author.User.Name,
			Approved: approvedByAnyReviewer,
		})
	}

	return pullRequestSummaries, nil
}

// GetPullRequest fetches the title and optimistic-concurrency version for a pull request.
func (client *Client) GetPullRequest(executionContext context.Context, pullRequestID int) (PullRequestDetails, error) {
	responseBody, requestError := client.sendRequest(
		executionContext,
		getPullRequestOperationNameConstant,
		http.MethodGet,
		client.pullRequestEndpoint(pullRequestID),
		nil,
		http.StatusOK,
	)
	if requestError != nil {
		return PullRequestDetails{}, requestError
	}

	var response struct {
		ID      int    `json:"id"`
		Title   string `json:"title"`
		Version int    `json:"version"`
	}
	if decodingError := json.Unmarshal(responseBody, &response); decodingError != nil {
		return PullRequestDetails{}, ResponseDecodingError{Operation: getPullRequestOperationNameConstant, Cause: decodingError}
	}

	return PullRequestDetails{ID: response.ID, Title: response.Title, Version: response.Version}, nil
}

// GetMergeStatus reports whether the server currently considers the pull request mergeable.
func (client *Client) GetMergeStatus(executionContext context.Context, pullRequestID int) (MergeStatus, error) {
	responseBody, requestError := client.sendRequest(
		executionContext,
		getMergeStatusOperationNameConstant,
		http.MethodGet,
		client.mergeEndpoint(pullRequestID),
		nil,
		http.StatusOK,
	)
	if requestError != nil {
		return MergeStatus{}, requestError
	}

	var response struct {
		CanMerge bool `json:"canMerge"`
	}
	if decodingError := json.Unmarshal(responseBody, &response); decodingError != nil {
		return MergeStatus{}, ResponseDecodingError{Operation: getMergeStatusOperationNameConstant, Cause: decodingError}
	}

	return MergeStatus{CanMerge: response.CanMerge}, nil
}

// MergePullRequest merges the pull request using the supplied version token.
// A stale version is rejected by the server and surfaced verbatim, never retried.
func (client *Client) MergePullRequest(executionContext context.Context, pullRequestID int, version int) (MergeResult, error) {
	mergeEndpoint := client.mergeEndpoint(pullRequestID) + "?" + versionQueryParameterConstant + "=" + strconv.Itoa(version)

	responseBody, requestError := client.sendRequest(
		executionContext,
		mergePullRequestOperationNameConstant,
		http.MethodPost,
		mergeEndpoint,
		nil,
		http.StatusOK,
	)
	if requestError != nil {
		return MergeResult{}, requestError
	}

	var response struct {
		State string `json:"state"`
	}
	if decodingError := json.Unmarshal(responseBody, &response); decodingError != nil {
		return MergeResult{}, ResponseDecodingError{Operation: mergePullRequestOperationNameConstant, Cause: decodingError}
	}

	return MergeResult{State: response.State}, nil
}

func (client *Client) pullRequestsEndpoint() string {
	return fmt.Sprintf(
		pullRequestsEndpointTemplateConstant,
		client.configuration.BaseURL,
		client.configuration.ProjectKey,
		client.configuration.RepositorySlug,
	)
}

func (client *Client) pullRequestEndpoint(pullRequestID int) string {
	return fmt.Sprintf(
		pullRequestEndpointTemplateConstant,
		client.configuration.BaseURL,
		client.configuration.ProjectKey,
		client.configuration.RepositorySlug,
		pullRequestID,
	)
}

func (client *Client) mergeEndpoint(pullRequestID int) string {
	return fmt.Sprintf(
		mergeEndpointTemplateConstant,
		client.configuration.BaseURL,
		client.configuration.ProjectKey,
		client.configuration.RepositorySlug,
		pullRequestID,
	)
}

func (client *Client) sendRequest(executionContext context.Context, operation OperationName, method string, endpoint string, payload []byte, expectedStatus int) ([]byte, error) {
	var requestBody io.Reader
	if len(payload) > 0 {
		requestBody = bytes.NewBuffer(payload)
	}

	request, requestError := http.NewRequestWithContext(executionContext, method, endpoint, requestBody)
	if requestError != nil {
		return nil, OperationError{Operation: operation, Cause: requestError}
	}

	if len(payload) > 0 {
		request.Header.Set(contentTypeHeaderNameConstant, contentTypeJSONValueConstant)
	}

	client.applyAuthentication(request)

	response, sendError := client.httpClient.Do(request)
	if sendError != nil {
		return nil, OperationError{Operation: operation, Cause: sendError}
	}
	defer response.Body.Close()

	responseBody, readError := io.ReadAll(response.Body)
	if readError != nil {
		return nil, OperationError{Operation: operation, Cause: readError}
	}

	if response.StatusCode != expectedStatus {
		return nil, UnexpectedStatusError{Operation: operation, StatusCode: response.StatusCode, Body: string(responseBody)}
	}

	return responseBody, nil
}

func (client *Client) applyAuthentication(request *http.Request) {
	switch client.credentials.Scheme {
	case AuthenticationSchemeBearer:
		request.Header.Set(authorizationHeaderNameConstant, fmt.Sprintf(bearerAuthorizationTemplateConstant, client.credentials.Secret))
	default:
		request.SetBasicAuth(client.credentials.Username, client.credentials.Secret)
	}
}
