package ui

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"

	"github.com/temirov/gpr/internal/reviewers"
)

const (
	reviewerPickerTitleConstant       = "Reviewers"
	reviewerPickerDescriptionConstant = "Space toggles a reviewer, enter confirms. Esc skips reviewers."
	reviewerPickerHeightConstant      = 12
)

// FormRunner runs a huh form until it is submitted or aborted.
type FormRunner func(executionContext context.Context, form *huh.Form) error

// HuhReviewerPicker implements reviewers.Picker with a huh multi-select that starts with nothing selected.
type HuhReviewerPicker struct {
	runForm FormRunner
}

// NewHuhReviewerPicker constructs a picker; a nil runner uses the form's own terminal loop.
func NewHuhReviewerPicker(runner FormRunner) *HuhReviewerPicker {
	if runner == nil {
		runner = func(executionContext context.Context, form *huh.Form) error {
			return form.RunWithContext(executionContext)
		}
	}
	return &HuhReviewerPicker{runForm: runner}
}

// PickReviewers shows candidates and returns the chosen logins in candidate order.
func (picker *HuhReviewerPicker) PickReviewers(executionContext context.Context, candidates []string) ([]string, error) {
	selected := make([]string, 0)
	options := huh.NewOptions(candidates...)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title(reviewerPickerTitleConstant).
				Description(reviewerPickerDescriptionConstant).
				Options(options...).
				Height(reviewerPickerHeightConstant).
				Value(&selected),
		),
	)

	if runError := picker.runForm(executionContext, form); runError != nil {
		if errors.Is(runError, huh.ErrUserAborted) {
			return nil, reviewers.ErrSelectionCancelled
		}
		return nil, runError
	}
	return orderByCandidates(candidates, selected), nil
}

func orderByCandidates(candidates []string, selected []string) []string {
	chosen := make(map[string]struct{}, len(selected))
	for _, login := range selected {
		chosen[login] = struct{}{}
	}
	ordered := make([]string, 0, len(selected))
	for _, candidate := range candidates {
		if _, isChosen := chosen[candidate]; isChosen {
			ordered = append(ordered, candidate)
		}
	}
	return ordered
}
