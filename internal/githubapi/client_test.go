package githubapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gpr/internal/githubapi"
	"github.com/temirov/gpr/internal/pullrequest"
)

const (
	testTokenConstant = "ghp_test"
	testOwnerConstant = "acme"
	testNameConstant  = "widgets"
)

type recordedRequest struct {
	method        string
	path          string
	authorization string
	body          map[string]interface{}
}

func newGitHubServer(testInstance *testing.T, handler func(request recordedRequest, responseWriter http.ResponseWriter)) (*httptest.Server, *[]recordedRequest) {
	testInstance.Helper()
	recorded := make([]recordedRequest, 0)
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		entry := recordedRequest{method: request.Method, path: request.URL.RequestURI(), authorization: request.Header.Get("Authorization")}
		payload, _ := io.ReadAll(request.Body)
		if len(payload) > 0 {
			_ = json.Unmarshal(payload, &entry.body)
		}
		recorded = append(recorded, entry)
		responseWriter.Header().Set("Content-Type", "application/json")
		handler(entry, responseWriter)
	}))
	testInstance.Cleanup(server.Close)
	return server, &recorded
}

func newClient(testInstance *testing.T, server *httptest.Server, logger *zap.Logger) *githubapi.Client {
	testInstance.Helper()
	client, creationError := githubapi.NewClient(testTokenConstant, githubapi.Repository{Owner: testOwnerConstant, Name: testNameConstant},
		githubapi.WithBaseURL(server.URL),
		githubapi.WithLogger(logger),
	)
	require.NoError(testInstance, creationError)
	return client
}

func TestNewClientValidation(testInstance *testing.T) {
	_, tokenError := githubapi.NewClient(" ", githubapi.Repository{Owner: testOwnerConstant, Name: testNameConstant})
	require.ErrorIs(testInstance, tokenError, githubapi.ErrTokenMissing)

	_, repositoryError := githubapi.NewClient(testTokenConstant, githubapi.Repository{Owner: testOwnerConstant})
	require.ErrorIs(testInstance, repositoryError, githubapi.ErrRepositoryMissing)
}

func TestCreatePullRequestRequestsReviewers(testInstance *testing.T) {
	server, recorded := newGitHubServer(testInstance, func(request recordedRequest, responseWriter http.ResponseWriter) {
		switch request.path {
		case "/repos/acme/widgets/pulls":
			responseWriter.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(responseWriter, `{"number":7,"html_url":"https://github.com/acme/widgets/pull/7"}`)
		case "/repos/acme/widgets/pulls/7/requested_reviewers":
			responseWriter.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(responseWriter, `{"number":7}`)
		default:
			responseWriter.WriteHeader(http.StatusNotFound)
		}
	})

	pullRequestURL, createError := newClient(testInstance, server, zap.NewNop()).CreatePullRequest(context.Background(), pullrequest.Request{
		Title:     "[DIT-123] Login form",
		Body:      "## Overview",
		Base:      "main",
		Head:      "feature/dit-123",
		Reviewers: []string{"alice", "bob"},
	})
	require.NoError(testInstance, createError)
	require.Equal(testInstance, "https://github.com/acme/widgets/pull/7", pullRequestURL)

	require.Len(testInstance, *recorded, 2)
	creation := (*recorded)[0]
	require.Equal(testInstance, http.MethodPost, creation.method)
	require.Equal(testInstance, "Bearer "+testTokenConstant, creation.authorization)
	require.Equal(testInstance, "main", creation.body["base"])
	require.Equal(testInstance, "feature/dit-123", creation.body["head"])
	require.Equal(testInstance, []interface{}{"alice", "bob"}, (*recorded)[1].body["reviewers"])
}

func TestCreatePullRequestReportsAPIMessage(testInstance *testing.T) {
	server, recorded := newGitHubServer(testInstance, func(_ recordedRequest, responseWriter http.ResponseWriter) {
		responseWriter.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(responseWriter, `{"message":"Validation Failed","errors":[{"resource":"PullRequest","code":"custom","message":"A pull request already exists for acme:feature."}]}`)
	})

	pullRequestURL, createError := newClient(testInstance, server, zap.NewNop()).CreatePullRequest(context.Background(), pullrequest.Request{
		Title:     "Title",
		Base:      "main",
		Head:      "feature",
		Reviewers: []string{"alice"},
	})
	var creationError pullrequest.CreationError
	require.ErrorAs(testInstance, createError, &creationError)
	require.Equal(testInstance, "Validation Failed; A pull request already exists for acme:feature.", creationError.StandardError)
	require.Empty(testInstance, pullRequestURL)
	require.Len(testInstance, *recorded, 1)
}

func TestCreatePullRequestReviewerFailureIsAdvisory(testInstance *testing.T) {
	server, _ := newGitHubServer(testInstance, func(request recordedRequest, responseWriter http.ResponseWriter) {
		if request.path == "/repos/acme/widgets/pulls" {
			responseWriter.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(responseWriter, `{"number":8,"html_url":"https://github.com/acme/widgets/pull/8"}`)
			return
		}
		responseWriter.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(responseWriter, `{"message":"Reviews may only be requested from collaborators."}`)
	})
	core, logs := observer.New(zapcore.DebugLevel)

	pullRequestURL, createError := newClient(testInstance, server, zap.New(core)).CreatePullRequest(context.Background(), pullrequest.Request{
		Title: "Title", Base: "main", Head: "feature", Reviewers: []string{"outsider"},
	})
	require.NoError(testInstance, createError)
	require.Equal(testInstance, "https://github.com/acme/widgets/pull/8", pullRequestURL)
	require.Equal(testInstance, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestListOrganizationMembersFollowsPagination(testInstance *testing.T) {
	var server *httptest.Server
	server, recorded := newGitHubServer(testInstance, func(request recordedRequest, responseWriter http.ResponseWriter) {
		if request.path == "/orgs/acme/members?per_page=100" {
			responseWriter.Header().Set("Link", fmt.Sprintf(`<%s/orgs/acme/members?page=2&per_page=100>; rel="next"`, server.URL))
			_, _ = io.WriteString(responseWriter, `[{"login":"alice"},{"login":"bob"}]`)
			return
		}
		_, _ = io.WriteString(responseWriter, `[{"login":"carol"}]`)
	})

	members, listError := newClient(testInstance, server, zap.NewNop()).ListOrganizationMembers(context.Background(), testOwnerConstant)
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []string{"alice", "bob", "carol"}, members)
	require.Len(testInstance, *recorded, 2)
}

func TestListOrganizationMembersRequiresOrganization(testInstance *testing.T) {
	server, recorded := newGitHubServer(testInstance, func(recordedRequest, http.ResponseWriter) {})
	_, listError := newClient(testInstance, server, zap.NewNop()).ListOrganizationMembers(context.Background(), "")
	require.ErrorIs(testInstance, listError, githubapi.ErrOrganizationMissing)
	require.Empty(testInstance, *recorded)
}
