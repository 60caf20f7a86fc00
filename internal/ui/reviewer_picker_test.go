package ui_test

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/require"

	"github.com/temirov/gpr/internal/reviewers"
	"github.com/temirov/gpr/internal/ui"
)

func TestHuhReviewerPickerErrorMapping(testInstance *testing.T) {
	terminalFailure := errors.New("could not open a new TTY")
	testCases := []struct {
		name          string
		runError      error
		expectedError error
	}{
		{name: "submitted_without_selection"},
		{name: "aborted", runError: huh.ErrUserAborted, expectedError: reviewers.ErrSelectionCancelled},
		{name: "terminal_failure", runError: terminalFailure, expectedError: terminalFailure},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			var receivedForm *huh.Form
			picker := ui.NewHuhReviewerPicker(func(_ context.Context, form *huh.Form) error {
				receivedForm = form
				return testCase.runError
			})

			chosen, pickError := picker.PickReviewers(context.Background(), []string{"alice", "bob"})
			require.NotNil(subTest, receivedForm)
			if testCase.expectedError != nil {
				require.ErrorIs(subTest, pickError, testCase.expectedError)
				require.Nil(subTest, chosen)
				return
			}
			require.NoError(subTest, pickError)
			require.Empty(subTest, chosen)
		})
	}
}
