package githubcli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/gpr/internal/execshell"
	"github.com/temirov/gpr/internal/pullrequest"
)

const (
	pullRequestSubcommandConstant           = "pr"
	createSubcommandConstant                = "create"
	apiSubcommandConstant                   = "api"
	titleFlagConstant                       = "--title"
	bodyFlagConstant                        = "--body"
	baseFlagConstant                        = "--base"
	reviewerFlagConstant                    = "--reviewer"
	paginateFlagConstant                    = "--paginate"
	jqFlagConstant                          = "--jq"
	memberLoginExpressionConstant           = ".[].login"
	organizationMembersEndpointTemplate     = "orgs/%s/members"
	reviewerSeparatorConstant               = ","
	titleFieldNameConstant                  = "title"
	baseFieldNameConstant                   = "base"
	organizationFieldNameConstant           = "organization"
	requiredValueMessageConstant            = "value required"
	executorNotConfiguredMessageConstant    = "github cli executor not configured"
	emptyURLMessageConstant                 = "gh printed no pull request url"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	createPullRequestOperationNameConstant  = OperationName("CreatePullRequest")
	listMembersOperationNameConstant        = OperationName("ListOrganizationMembers")
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor GitHubCommandExecutor
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrEmptyPullRequestURL indicates gh succeeded without printing the new pull request's URL.
	ErrEmptyPullRequestURL = errors.New(emptyURLMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// CreatePullRequest runs gh pr create and returns the printed URL. Any standard error output is a failure
// reported as a pullrequest.CreationError carrying the text verbatim.
func (client *Client) CreatePullRequest(executionContext context.Context, request pullrequest.Request) (string, error) {
	if len(strings.TrimSpace(request.Title)) == 0 {
		return "", InvalidInputError{FieldName: titleFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(request.Base)) == 0 {
		return "", InvalidInputError{FieldName: baseFieldNameConstant, Message: requiredValueMessageConstant}
	}

	arguments := []string{
		pullRequestSubcommandConstant,
		createSubcommandConstant,
		titleFlagConstant,
		request.Title,
		bodyFlagConstant,
		request.Body,
		baseFlagConstant,
		request.Base,
	}
	if len(request.Reviewers) > 0 {
		arguments = append(arguments, reviewerFlagConstant, strings.Join(request.Reviewers, reviewerSeparatorConstant))
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{
		Arguments:           arguments,
		StandardErrorPolicy: execshell.StandardErrorPolicyFail,
	})
	if executionError != nil {
		return "", pullrequest.CreationError{StandardError: extractStandardError(executionError), Cause: OperationError{Operation: createPullRequestOperationNameConstant, Cause: executionError}}
	}

	pullRequestURL := strings.TrimSpace(executionResult.StandardOutput)
	if len(pullRequestURL) == 0 {
		return "", pullrequest.CreationError{Cause: OperationError{Operation: createPullRequestOperationNameConstant, Cause: ErrEmptyPullRequestURL}}
	}
	return pullRequestURL, nil
}

// ListOrganizationMembers returns the logins of every member of organization across all pages.
func (client *Client) ListOrganizationMembers(executionContext context.Context, organization string) ([]string, error) {
	trimmedOrganization := strings.TrimSpace(organization)
	if len(trimmedOrganization) == 0 {
		return nil, InvalidInputError{FieldName: organizationFieldNameConstant, Message: requiredValueMessageConstant}
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{
		Arguments: []string{
			apiSubcommandConstant,
			paginateFlagConstant,
			fmt.Sprintf(organizationMembersEndpointTemplate, trimmedOrganization),
			jqFlagConstant,
			memberLoginExpressionConstant,
		},
		StandardErrorPolicy: execshell.StandardErrorPolicyWarn,
	})
	if executionError != nil {
		return nil, OperationError{Operation: listMembersOperationNameConstant, Cause: executionError}
	}
	return strings.Fields(executionResult.StandardOutput), nil
}

func extractStandardError(executionError error) string {
	var failedError execshell.CommandFailedError
	if errors.As(executionError, &failedError) {
		return failedError.Result.StandardError
	}
	return ""
}
