package ui_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/manifoldco/promptui"
	"github.com/stretchr/testify/require"

	"github.com/temirov/gpr/internal/opener"
	"github.com/temirov/gpr/internal/ui"
)

func TestFormatSummary(testInstance *testing.T) {
	summary := ui.FormatSummary(opener.Summary{
		Base:      "main",
		Head:      "feature/dit-123",
		Title:     "[DIT-123] Login form\nignored second line",
		Reviewers: []string{"alice", "bob"},
	})
	require.Equal(testInstance, "Base:      main\nHead:      feature/dit-123\nTitle:     [DIT-123] Login form\nReviewers: alice, bob\n", summary)

	require.Contains(testInstance, ui.FormatSummary(opener.Summary{Base: "main", Head: "x"}), "Reviewers: (none)")
}

func TestFormatSummaryTruncatesWideTitles(testInstance *testing.T) {
	summary := ui.FormatSummary(opener.Summary{Title: strings.Repeat("界", 60)})
	titleLine := strings.Split(summary, "\n")[2]
	require.True(testInstance, strings.HasSuffix(titleLine, "…"))
	require.Less(testInstance, len([]rune(titleLine)), 60)
}

func TestPromptUIConfirmer(testInstance *testing.T) {
	promptFailure := errors.New("terminal unavailable")
	testCases := []struct {
		name           string
		promptError    error
		expectedAnswer bool
		expectedError  error
	}{
		{name: "accepted", expectedAnswer: true},
		{name: "declined", promptError: promptui.ErrAbort},
		{name: "interrupted", promptError: promptui.ErrInterrupt},
		{name: "failure", promptError: promptFailure, expectedError: promptFailure},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			var output bytes.Buffer
			var receivedPrompt promptui.Prompt
			confirmer := ui.NewPromptUIConfirmer(&output, func(prompt promptui.Prompt) (string, error) {
				receivedPrompt = prompt
				return "", testCase.promptError
			})

			answer, confirmError := confirmer.Confirm(context.Background(), opener.Summary{Base: "main", Head: "feature", Title: "Title"})
			require.True(subTest, receivedPrompt.IsConfirm)
			require.Contains(subTest, output.String(), "Head:      feature")
			require.Equal(subTest, testCase.expectedAnswer, answer)
			if testCase.expectedError != nil {
				require.ErrorIs(subTest, confirmError, testCase.expectedError)
				return
			}
			require.NoError(subTest, confirmError)
		})
	}
}
