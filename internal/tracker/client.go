package tracker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	graphql "github.com/cli/shurcooL-graphql"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	// DefaultEndpoint is Linear's public GraphQL endpoint.
	DefaultEndpoint = "https://api.linear.app/graphql"
	// DefaultTimeout bounds a single ticket lookup.
	DefaultTimeout = 30 * time.Second

	bearerTokenTypeConstant          = "Bearer"
	issueIdentifierVariableConstant  = "id"
	credentialMissingMessageConstant = "issue tracker credential is not set"
	contactFailureMessageConstant    = "failed to contact issue tracker"
	parseFailureMessageConstant      = "failed to parse issue tracker response"
	issueMissingMessageConstant      = "issue %s not found in response"
	statusCodeTemplateConstant       = "unexpected status %d"
	errorWithCauseTemplateConstant   = "%s: %v"
	fetchingTicketMessageConstant    = "Fetching ticket"
	fetchedTicketMessageConstant     = "Fetched ticket"
	logFieldTicketConstant           = "ticket"
	logFieldEndpointConstant         = "endpoint"
)

// ErrCredentialMissing indicates no API key was available, so no request was attempted.
var ErrCredentialMissing = errors.New(credentialMissingMessageConstant)

// ContactError reports a transport failure or a non-2xx response.
type ContactError struct {
	StatusCode int
	Cause      error
}

// Error describes the failure.
func (contactError ContactError) Error() string {
	return fmt.Sprintf(errorWithCauseTemplateConstant, contactFailureMessageConstant, contactError.Cause)
}

// Unwrap exposes the underlying failure.
func (contactError ContactError) Unwrap() error {
	return contactError.Cause
}

// ParseError reports a response that could not be decoded into a ticket.
type ParseError struct {
	Cause error
}

// Error describes the failure.
func (parseError ParseError) Error() string {
	return fmt.Sprintf(errorWithCauseTemplateConstant, parseFailureMessageConstant, parseError.Cause)
}

// Unwrap exposes the underlying failure.
func (parseError ParseError) Unwrap() error {
	return parseError.Cause
}

// Ticket is the subset of issue metadata used to draft a pull request.
type Ticket struct {
	URL         string
	Title       string
	Description string
}

// ClientConfiguration configures the ticket client.
type ClientConfiguration struct {
	Endpoint   string
	Credential string
	Timeout    time.Duration
	// HTTPClient is the base client requests are sent through; nil uses http.DefaultClient.
	HTTPClient *http.Client
}

// Client queries Linear for ticket metadata.
type Client struct {
	logger     *zap.Logger
	endpoint   string
	credential string
	timeout    time.Duration
	baseClient *http.Client
}

type issueQuery struct {
	Issue struct {
		Title       string
		Description *string
		URL         string `graphql:"url"`
	} `graphql:"issue(id: $id)"`
}

// NewClient constructs a Client; an empty credential is reported when a ticket is fetched.
func NewClient(logger *zap.Logger, configuration ClientConfiguration) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	endpoint := strings.TrimSpace(configuration.Endpoint)
	if len(endpoint) == 0 {
		endpoint = DefaultEndpoint
	}
	timeout := configuration.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	baseClient := configuration.HTTPClient
	if baseClient == nil {
		baseClient = http.DefaultClient
	}
	return &Client{
		logger:     logger,
		endpoint:   endpoint,
		credential: strings.TrimSpace(configuration.Credential),
		timeout:    timeout,
		baseClient: baseClient,
	}
}

// FetchTicket loads the ticket named by reference. An absent reference returns no ticket without a request.
func (client *Client) FetchTicket(executionContext context.Context, reference string, present bool) (Ticket, bool, error) {
	if !present {
		return Ticket{}, false, nil
	}
	if len(client.credential) == 0 {
		return Ticket{}, false, ErrCredentialMissing
	}

	requestContext, cancel := context.WithTimeout(executionContext, client.timeout)
	defer cancel()

	recorder := &statusRecordingTransport{}
	graphQLClient := graphql.NewClient(client.endpoint, client.authenticatedHTTPClient(requestContext, recorder))

	client.logger.Debug(fetchingTicketMessageConstant, zap.String(logFieldTicketConstant, reference), zap.String(logFieldEndpointConstant, client.endpoint))

	var query issueQuery
	variables := map[string]interface{}{
		issueIdentifierVariableConstant: graphql.String(reference),
	}
	if queryError := graphQLClient.Query(requestContext, &query, variables); queryError != nil {
		return Ticket{}, false, recorder.classify(queryError)
	}
	if statusError := recorder.statusError(); statusError != nil {
		return Ticket{}, false, statusError
	}
	if len(query.Issue.URL) == 0 && len(query.Issue.Title) == 0 {
		return Ticket{}, false, ParseError{Cause: fmt.Errorf(issueMissingMessageConstant, reference)}
	}

	ticket := Ticket{
		URL:         query.Issue.URL,
		Title:       query.Issue.Title,
		Description: normalizeDescription(query.Issue.Description),
	}
	client.logger.Debug(fetchedTicketMessageConstant, zap.String(logFieldTicketConstant, reference))
	return ticket, true, nil
}

func (client *Client) authenticatedHTTPClient(requestContext context.Context, recorder *statusRecordingTransport) *http.Client {
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: client.credential, TokenType: bearerTokenTypeConstant})
	baseContext := context.WithValue(requestContext, oauth2.HTTPClient, client.baseClient)
	authenticated := oauth2.NewClient(baseContext, tokenSource)
	recorder.base = authenticated.Transport
	return &http.Client{Transport: recorder}
}

func normalizeDescription(description *string) string {
	if description == nil {
		return ""
	}
	return *description
}

// statusRecordingTransport remembers the outcome of the last round trip so query failures can be classified.
type statusRecordingTransport struct {
	base           http.RoundTripper
	statusCode     int
	transportError error
}

func (transport *statusRecordingTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	response, roundTripError := transport.base.RoundTrip(request)
	if roundTripError != nil {
		transport.transportError = roundTripError
		return nil, roundTripError
	}
	transport.statusCode = response.StatusCode
	return response, nil
}

func (transport *statusRecordingTransport) statusError() error {
	if transport.statusCode != 0 && (transport.statusCode < http.StatusOK || transport.statusCode >= http.StatusMultipleChoices) {
		return ContactError{StatusCode: transport.statusCode, Cause: fmt.Errorf(statusCodeTemplateConstant, transport.statusCode)}
	}
	return nil
}

func (transport *statusRecordingTransport) classify(queryError error) error {
	if transport.transportError != nil {
		return ContactError{Cause: queryError}
	}
	if transport.statusCode == 0 {
		return ContactError{Cause: queryError}
	}
	if statusError := transport.statusError(); statusError != nil {
		return ContactError{StatusCode: transport.statusCode, Cause: queryError}
	}
	return ParseError{Cause: queryError}
}
