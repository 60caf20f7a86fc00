package opener

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gpr/internal/gitrepo"
	"github.com/temirov/gpr/internal/pullrequest"
	"github.com/temirov/gpr/internal/reviewers"
	"github.com/temirov/gpr/internal/tracker"
)

const (
	branchResolverMissingMessageConstant = "branch resolver not configured"
	referenceMatcherMissingMessage       = "ticket reference matcher not configured"
	ticketFetcherMissingMessageConstant  = "ticket fetcher not configured"
	draftEditorMissingMessageConstant    = "draft editor not configured"
	forgeMissingMessageConstant          = "forge not configured"
	emptyTitleMessageConstant            = "pull request title is empty after editing"
	publishErrorTemplateConstant         = "branch %s was pushed but the pull request was not created: %v"
	currentBranchFailureTemplate         = "failed to resolve current branch: %w"
	targetBranchFailureTemplate          = "failed to resolve target branch: %w"
	ticketFailureTemplate                = "failed to load ticket %s: %w"
	titleEditFailureTemplate             = "failed to edit pull request title: %w"
	bodyEditFailureTemplate              = "failed to edit pull request body: %w"
	reviewerFailureTemplate              = "failed to choose reviewers: %w"
	confirmationFailureTemplate          = "failed to confirm pull request: %w"
	pushFailureTemplate                  = "failed to push %s: %w"
	defaultRemoteNameConstant            = "origin"
	noCommitsMessageConstant             = "No commits between branches; nothing to open"
	noTicketMessageConstant              = "No ticket reference found in branch name"
	ticketLinkedMessageConstant          = "Linked ticket"
	declinedMessageConstant              = "Pull request declined; nothing was pushed"
	createdMessageConstant               = "Pull request opened"
	logFieldCurrentBranchConstant        = "current_branch"
	logFieldTargetBranchConstant         = "target_branch"
	logFieldTicketConstant               = "ticket"
	logFieldCommitCountConstant          = "commit_count"
	logFieldURLConstant                  = "url"
)

var (
	// ErrBranchResolverNotConfigured indicates the service has no branch resolver.
	ErrBranchResolverNotConfigured = errors.New(branchResolverMissingMessageConstant)
	// ErrReferenceMatcherNotConfigured indicates the service has no ticket reference matcher.
	ErrReferenceMatcherNotConfigured = errors.New(referenceMatcherMissingMessage)
	// ErrTicketFetcherNotConfigured indicates the service has no ticket fetcher.
	ErrTicketFetcherNotConfigured = errors.New(ticketFetcherMissingMessageConstant)
	// ErrDraftEditorNotConfigured indicates the service has no editor.
	ErrDraftEditorNotConfigured = errors.New(draftEditorMissingMessageConstant)
	// ErrForgeNotConfigured indicates the service has no forge backend.
	ErrForgeNotConfigured = errors.New(forgeMissingMessageConstant)
	// ErrEmptyTitle indicates the edited title was blank, so nothing was pushed.
	ErrEmptyTitle = errors.New(emptyTitleMessageConstant)
)

// Outcome enumerates how a successful run ended.
type Outcome int

// Outcome enumerations.
const (
	// OutcomeNoCommits means the current branch has no commits beyond the target.
	OutcomeNoCommits Outcome = iota
	// OutcomeDeclined means the user declined the confirmation prompt.
	OutcomeDeclined
	// OutcomeCreated means the pull request was opened.
	OutcomeCreated
)

// BranchResolver answers branch and commit questions and pushes branches.
type BranchResolver interface {
	EnsureRepository(executionContext context.Context) error
	CurrentBranch(executionContext context.Context) (string, error)
	TargetBranch(executionContext context.Context, arguments []string, configuredDefault string) (string, error)
	CommitsBetween(executionContext context.Context, branches gitrepo.BranchPair) ([]gitrepo.Commit, error)
	PushBranch(executionContext context.Context, remoteName string, branchName string) error
}

// ReferenceMatcher extracts a ticket reference from a branch name.
type ReferenceMatcher interface {
	Extract(branchName string) (string, bool)
}

// TicketFetcher loads ticket metadata.
type TicketFetcher interface {
	FetchTicket(executionContext context.Context, reference string, present bool) (tracker.Ticket, bool, error)
}

// DraftEditor lets the user edit a draft and returns it without its instruction line.
type DraftEditor interface {
	Edit(executionContext context.Context, initial string) (string, error)
}

// ReviewerSelector chooses reviewers.
type ReviewerSelector interface {
	Select(executionContext context.Context) (reviewers.Selection, error)
}

// Summary is what the user confirms before anything is pushed.
type Summary struct {
	Base      string
	Head      string
	Title     string
	Reviewers []string
}

// Confirmer asks the user to approve the pull request.
type Confirmer interface {
	Confirm(executionContext context.Context, summary Summary) (bool, error)
}

// Forge opens pull requests and returns their URL.
type Forge interface {
	CreatePullRequest(executionContext context.Context, request pullrequest.Request) (string, error)
}

// PublishError reports a pull request creation failure after the branch was pushed. The push is not rolled back.
type PublishError struct {
	Branch       string
	BranchPushed bool
	Cause        error
}

// Error describes the partial failure.
func (publishError PublishError) Error() string {
	return fmt.Sprintf(publishErrorTemplateConstant, publishError.Branch, publishError.Cause)
}

// Unwrap exposes the forge failure.
func (publishError PublishError) Unwrap() error {
	return publishError.Cause
}

// ServiceDependencies enumerates collaborators required by the service. Reviewers and Confirmer are optional.
type ServiceDependencies struct {
	Logger     *zap.Logger
	Branches   BranchResolver
	References ReferenceMatcher
	Tickets    TicketFetcher
	Editor     DraftEditor
	Reviewers  ReviewerSelector
	Confirmer  Confirmer
	Forge      Forge
}

// Options configure a single run.
type Options struct {
	Arguments        []string
	DefaultTarget    string
	RemoteName       string
	SkipReviewers    bool
	SkipConfirmation bool
}

// Result captures the outcome of a run.
type Result struct {
	Outcome   Outcome
	Branches  gitrepo.BranchPair
	Commits   []gitrepo.Commit
	Reference string
	Draft     pullrequest.Draft
	Reviewers reviewers.Selection
	URL       string
}

// Service opens pull requests from the current branch.
type Service struct {
	logger       *zap.Logger
	dependencies ServiceDependencies
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	switch {
	case dependencies.Branches == nil:
		return nil, ErrBranchResolverNotConfigured
	case dependencies.References == nil:
		return nil, ErrReferenceMatcherNotConfigured
	case dependencies.Tickets == nil:
		return nil, ErrTicketFetcherNotConfigured
	case dependencies.Editor == nil:
		return nil, ErrDraftEditorNotConfigured
	case dependencies.Forge == nil:
		return nil, ErrForgeNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, dependencies: dependencies}, nil
}

// Open runs the pipeline. Empty commit ranges and declined confirmations end successfully with the matching Outcome.
func (service *Service) Open(executionContext context.Context, options Options) (Result, error) {
	branches, resolveError := service.resolveBranches(executionContext, options)
	if resolveError != nil {
		return Result{}, resolveError
	}
	result := Result{Branches: branches}

	commits, commitsError := service.dependencies.Branches.CommitsBetween(executionContext, branches)
	if commitsError != nil {
		return Result{}, commitsError
	}
	if len(commits) == 0 {
		service.logger.Info(noCommitsMessageConstant, zap.String(logFieldCurrentBranchConstant, branches.Current), zap.String(logFieldTargetBranchConstant, branches.Target))
		result.Outcome = OutcomeNoCommits
		return result, nil
	}
	result.Commits = commits

	reference, referencePresent := service.dependencies.References.Extract(branches.Current)
	ticket, ticketPresent, ticketError := service.dependencies.Tickets.FetchTicket(executionContext, reference, referencePresent)
	if ticketError != nil {
		return Result{}, fmt.Errorf(ticketFailureTemplate, reference, ticketError)
	}
	if ticketPresent {
		result.Reference = reference
		service.logger.Info(ticketLinkedMessageConstant, zap.String(logFieldTicketConstant, reference))
	} else {
		service.logger.Info(noTicketMessageConstant, zap.String(logFieldCurrentBranchConstant, branches.Current))
	}

	draft, editError := service.editDraft(executionContext, pullrequest.Compose(commits, ticket, reference, ticketPresent))
	if editError != nil {
		return Result{}, editError
	}
	result.Draft = draft

	if !options.SkipReviewers && service.dependencies.Reviewers != nil {
		selection, selectError := service.dependencies.Reviewers.Select(executionContext)
		if selectError != nil {
			return Result{}, fmt.Errorf(reviewerFailureTemplate, selectError)
		}
		result.Reviewers = selection
	}

	if !options.SkipConfirmation && service.dependencies.Confirmer != nil {
		confirmed, confirmError := service.dependencies.Confirmer.Confirm(executionContext, Summary{
			Base:      branches.Target,
			Head:      branches.Current,
			Title:     draft.Title,
			Reviewers: result.Reviewers.Reviewers,
		})
		if confirmError != nil {
			return Result{}, fmt.Errorf(confirmationFailureTemplate, confirmError)
		}
		if !confirmed {
			service.logger.Info(declinedMessageConstant)
			result.Outcome = OutcomeDeclined
			return result, nil
		}
	}

	pullRequestURL, publishError := service.publish(executionContext, options, branches, draft, result.Reviewers.Reviewers)
	if publishError != nil {
		return Result{}, publishError
	}
	service.logger.Info(createdMessageConstant, zap.String(logFieldURLConstant, pullRequestURL))
	result.URL = pullRequestURL
	result.Outcome = OutcomeCreated
	return result, nil
}

func (service *Service) resolveBranches(executionContext context.Context, options Options) (gitrepo.BranchPair, error) {
	if repositoryError := service.dependencies.Branches.EnsureRepository(executionContext); repositoryError != nil {
		return gitrepo.BranchPair{}, repositoryError
	}
	currentBranch, currentError := service.dependencies.Branches.CurrentBranch(executionContext)
	if currentError != nil {
		return gitrepo.BranchPair{}, fmt.Errorf(currentBranchFailureTemplate, currentError)
	}
	targetBranch, targetError := service.dependencies.Branches.TargetBranch(executionContext, options.Arguments, options.DefaultTarget)
	if targetError != nil {
		return gitrepo.BranchPair{}, fmt.Errorf(targetBranchFailureTemplate, targetError)
	}
	return gitrepo.BranchPair{Current: currentBranch, Target: targetBranch}, nil
}

func (service *Service) editDraft(executionContext context.Context, template pullrequest.Draft) (pullrequest.Draft, error) {
	editedTitle, titleError := service.dependencies.Editor.Edit(executionContext, template.Title)
	if titleError != nil {
		return pullrequest.Draft{}, fmt.Errorf(titleEditFailureTemplate, titleError)
	}
	trimmedTitle := strings.TrimSpace(editedTitle)
	if len(trimmedTitle) == 0 {
		return pullrequest.Draft{}, ErrEmptyTitle
	}

	editedBody, bodyError := service.dependencies.Editor.Edit(executionContext, template.Body)
	if bodyError != nil {
		return pullrequest.Draft{}, fmt.Errorf(bodyEditFailureTemplate, bodyError)
	}
	return pullrequest.Draft{Title: trimmedTitle, Body: editedBody}, nil
}

func (service *Service) publish(executionContext context.Context, options Options, branches gitrepo.BranchPair, draft pullrequest.Draft, chosenReviewers []string) (string, error) {
	remoteName := strings.TrimSpace(options.RemoteName)
	if len(remoteName) == 0 {
		remoteName = defaultRemoteNameConstant
	}
	if pushError := service.dependencies.Branches.PushBranch(executionContext, remoteName, branches.Current); pushError != nil {
		return "", fmt.Errorf(pushFailureTemplate, branches.Current, pushError)
	}

	pullRequestURL, createError := service.dependencies.Forge.CreatePullRequest(executionContext, pullrequest.Request{
		Title:     draft.Title,
		Body:      draft.Body,
		Base:      branches.Target,
		Head:      branches.Current,
		Reviewers: chosenReviewers,
	})
	if createError != nil {
		return "", PublishError{Branch: branches.Current, BranchPushed: true, Cause: createError}
	}
	return pullRequestURL, nil
}
