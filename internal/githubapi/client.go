package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v68/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/temirov/gpr/internal/pullrequest"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com/"

	membersPageSizeConstant            = 100
	trailingSlashConstant              = "/"
	errorDetailSeparatorConstant       = "; "
	tokenMissingMessageConstant        = "github api token is empty"
	repositoryMissingMessageConstant   = "repository owner and name are required"
	organizationMissingMessageConstant = "organization is required"
	invalidBaseURLTemplateConstant     = "invalid github api base url %q: %w"
	listMembersFailureTemplateConstant = "failed to list members of %s: %w"
	reviewerRequestFailedMessage       = "Pull request opened but requesting reviewers failed"
	logFieldPullRequestURLConstant     = "pull_request_url"
	logFieldReviewersConstant          = "reviewers"
)

var (
	// ErrTokenMissing indicates the client was constructed without a token.
	ErrTokenMissing = errors.New(tokenMissingMessageConstant)
	// ErrRepositoryMissing indicates the client was constructed without owner and repository.
	ErrRepositoryMissing = errors.New(repositoryMissingMessageConstant)
	// ErrOrganizationMissing indicates an empty organization was requested.
	ErrOrganizationMissing = errors.New(organizationMissingMessageConstant)
)

// Repository identifies the repository pull requests are opened in.
type Repository struct {
	Owner string
	Name  string
}

// Option configures a Client.
type Option func(*clientSettings)

type clientSettings struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// WithBaseURL points the client at a GitHub Enterprise or test endpoint.
func WithBaseURL(baseURL string) Option {
	return func(settings *clientSettings) {
		settings.baseURL = baseURL
	}
}

// WithHTTPClient sets the base HTTP client wrapped by the oauth2 transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(settings *clientSettings) {
		settings.httpClient = httpClient
	}
}

// WithLogger sets the logger used for advisory messages.
func WithLogger(logger *zap.Logger) Option {
	return func(settings *clientSettings) {
		settings.logger = logger
	}
}

// Client wraps go-github for the operations gpr needs.
type Client struct {
	githubClient *github.Client
	repository   Repository
	logger       *zap.Logger
}

// NewClient constructs an authenticated Client for repository.
func NewClient(token string, repository Repository, options ...Option) (*Client, error) {
	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) == 0 {
		return nil, ErrTokenMissing
	}
	if len(strings.TrimSpace(repository.Owner)) == 0 || len(strings.TrimSpace(repository.Name)) == 0 {
		return nil, ErrRepositoryMissing
	}

	settings := clientSettings{baseURL: DefaultBaseURL, httpClient: http.DefaultClient, logger: zap.NewNop()}
	for _, option := range options {
		option(&settings)
	}

	baseContext := context.WithValue(context.Background(), oauth2.HTTPClient, settings.httpClient)
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: trimmedToken})
	githubClient := github.NewClient(oauth2.NewClient(baseContext, tokenSource))

	if settings.baseURL != DefaultBaseURL {
		baseURL := settings.baseURL
		if !strings.HasSuffix(baseURL, trailingSlashConstant) {
			baseURL += trailingSlashConstant
		}
		parsedURL, parseError := url.Parse(baseURL)
		if parseError != nil {
			return nil, fmt.Errorf(invalidBaseURLTemplateConstant, settings.baseURL, parseError)
		}
		githubClient.BaseURL = parsedURL
	}

	return &Client{githubClient: githubClient, repository: repository, logger: settings.logger}, nil
}

// CreatePullRequest opens the pull request and then requests reviewers. A failed reviewer request is logged,
// since the pull request already exists.
func (client *Client) CreatePullRequest(executionContext context.Context, request pullrequest.Request) (string, error) {
	created, _, createError := client.githubClient.PullRequests.Create(executionContext, client.repository.Owner, client.repository.Name, &github.NewPullRequest{
		Title: github.Ptr(request.Title),
		Head:  github.Ptr(request.Head),
		Base:  github.Ptr(request.Base),
		Body:  github.Ptr(request.Body),
	})
	if createError != nil {
		return "", pullrequest.CreationError{StandardError: describeAPIError(createError), Cause: createError}
	}

	pullRequestURL := created.GetHTMLURL()
	if len(request.Reviewers) > 0 {
		_, _, reviewerError := client.githubClient.PullRequests.RequestReviewers(executionContext, client.repository.Owner, client.repository.Name, created.GetNumber(), github.ReviewersRequest{Reviewers: request.Reviewers})
		if reviewerError != nil {
			client.logger.Warn(reviewerRequestFailedMessage,
				zap.String(logFieldPullRequestURLConstant, pullRequestURL),
				zap.Strings(logFieldReviewersConstant, request.Reviewers),
				zap.Error(reviewerError),
			)
		}
	}
	return pullRequestURL, nil
}

// ListOrganizationMembers returns every member login of organization.
func (client *Client) ListOrganizationMembers(executionContext context.Context, organization string) ([]string, error) {
	trimmedOrganization := strings.TrimSpace(organization)
	if len(trimmedOrganization) == 0 {
		return nil, ErrOrganizationMissing
	}

	listOptions := &github.ListMembersOptions{ListOptions: github.ListOptions{PerPage: membersPageSizeConstant}}
	logins := make([]string, 0)
	for {
		members, response, listError := client.githubClient.Organizations.ListMembers(executionContext, trimmedOrganization, listOptions)
		if listError != nil {
			return nil, fmt.Errorf(listMembersFailureTemplateConstant, trimmedOrganization, listError)
		}
		for _, member := range members {
			logins = append(logins, member.GetLogin())
		}
		if response.NextPage == 0 {
			break
		}
		listOptions.Page = response.NextPage
	}
	return logins, nil
}

func describeAPIError(apiError error) string {
	var errorResponse *github.ErrorResponse
	if !errors.As(apiError, &errorResponse) {
		return apiError.Error()
	}
	details := make([]string, 0, len(errorResponse.Errors)+1)
	if len(errorResponse.Message) > 0 {
		details = append(details, errorResponse.Message)
	}
	for _, detail := range errorResponse.Errors {
		if len(detail.Message) > 0 {
			details = append(details, detail.Message)
		}
	}
	if len(details) == 0 {
		return apiError.Error()
	}
	return strings.Join(details, errorDetailSeparatorConstant)
}
