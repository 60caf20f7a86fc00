package reviewers

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
)

const (
	reviewerSeparatorConstant          = ","
	listerMissingMessageConstant       = "member lister not configured"
	pickerMissingMessageConstant       = "reviewer picker not configured"
	organizationMissingMessageConstant = "organization could not be determined"
	listFailureTemplateConstant        = "failed to list members of %s: %w"
	pickFailureTemplateConstant        = "failed to select reviewers: %w"
	noCandidatesMessageConstant        = "No reviewer candidates found"
	selectionCancelledMessageConstant  = "Reviewer selection cancelled"
	logFieldOrganizationConstant       = "organization"
)

var (
	// ErrMemberListerNotConfigured indicates the selector has no member source.
	ErrMemberListerNotConfigured = errors.New(listerMissingMessageConstant)
	// ErrPickerNotConfigured indicates the selector has no picker.
	ErrPickerNotConfigured = errors.New(pickerMissingMessageConstant)
	// ErrOrganizationMissing indicates no organization was configured or inferred.
	ErrOrganizationMissing = errors.New(organizationMissingMessageConstant)
	// ErrSelectionCancelled is returned by pickers when the user aborts.
	ErrSelectionCancelled = errors.New(selectionCancelledMessageConstant)
)

// MemberLister lists the logins of an organization's members.
type MemberLister interface {
	ListOrganizationMembers(executionContext context.Context, organization string) ([]string, error)
}

// Picker asks the user to choose from candidates. It returns ErrSelectionCancelled when the user aborts.
type Picker interface {
	PickReviewers(executionContext context.Context, candidates []string) ([]string, error)
}

// Selection is the outcome of reviewer selection.
type Selection struct {
	Reviewers    []string
	Cancelled    bool
	NoCandidates bool
}

// Argument joins the reviewers with commas for the forge.
func (selection Selection) Argument() string {
	return strings.Join(selection.Reviewers, reviewerSeparatorConstant)
}

// Selector lists candidates and hands them to a picker.
type Selector struct {
	logger       *zap.Logger
	lister       MemberLister
	picker       Picker
	organization string
}

// NewSelector constructs a Selector for organization.
func NewSelector(logger *zap.Logger, lister MemberLister, picker Picker, organization string) (*Selector, error) {
	if lister == nil {
		return nil, ErrMemberListerNotConfigured
	}
	if picker == nil {
		return nil, ErrPickerNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{logger: logger, lister: lister, picker: picker, organization: strings.TrimSpace(organization)}, nil
}

// Candidates lists member logins without blanks or duplicates, preserving order.
func (selector *Selector) Candidates(executionContext context.Context) ([]string, error) {
	if len(selector.organization) == 0 {
		return nil, ErrOrganizationMissing
	}
	members, listError := selector.lister.ListOrganizationMembers(executionContext, selector.organization)
	if listError != nil {
		return nil, fmt.Errorf(listFailureTemplateConstant, selector.organization, listError)
	}

	candidates := make([]string, 0, len(members))
	for _, member := range members {
		trimmedMember := strings.TrimSpace(member)
		if len(trimmedMember) == 0 || slices.Contains(candidates, trimmedMember) {
			continue
		}
		candidates = append(candidates, trimmedMember)
	}
	return candidates, nil
}

// Select lists candidates and runs the picker. Empty candidate lists and cancellation are reported in the Selection, not as errors.
func (selector *Selector) Select(executionContext context.Context) (Selection, error) {
	candidates, candidatesError := selector.Candidates(executionContext)
	if candidatesError != nil {
		return Selection{}, candidatesError
	}
	if len(candidates) == 0 {
		selector.logger.Warn(noCandidatesMessageConstant, zap.String(logFieldOrganizationConstant, selector.organization))
		return Selection{NoCandidates: true}, nil
	}

	chosen, pickError := selector.picker.PickReviewers(executionContext, candidates)
	if errors.Is(pickError, ErrSelectionCancelled) {
		selector.logger.Info(selectionCancelledMessageConstant)
		return Selection{Cancelled: true}, nil
	}
	if pickError != nil {
		return Selection{}, fmt.Errorf(pickFailureTemplateConstant, pickError)
	}
	return Selection{Reviewers: chosen}, nil
}
