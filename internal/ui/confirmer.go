package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/mattn/go-runewidth"

	"github.com/temirov/gpr/internal/opener"
)

const (
	confirmationLabelConstant     = "Push the branch and open this pull request"
	summaryTemplateConstant       = "Base:      %s\nHead:      %s\nTitle:     %s\nReviewers: %s\n"
	noReviewersLabelConstant      = "(none)"
	reviewerJoinSeparatorConstant = ", "
	titleDisplayWidthConstant     = 72
	titleTruncationTailConstant   = "…"
	titleLineSeparatorConstant    = "\n"
	summaryWriteFailureTemplate   = "failed to display pull request summary: %w"
	confirmationFailureTemplate   = "confirmation prompt failed: %w"
)

// PromptRunner runs a promptui prompt.
type PromptRunner func(prompt promptui.Prompt) (string, error)

// PromptUIConfirmer implements opener.Confirmer with a yes/no promptui prompt.
type PromptUIConfirmer struct {
	output    io.Writer
	runPrompt PromptRunner
}

// NewPromptUIConfirmer constructs a confirmer writing its summary to output; a nil runner runs the prompt on the terminal.
func NewPromptUIConfirmer(output io.Writer, runner PromptRunner) *PromptUIConfirmer {
	if runner == nil {
		runner = func(prompt promptui.Prompt) (string, error) {
			return prompt.Run()
		}
	}
	return &PromptUIConfirmer{output: output, runPrompt: runner}
}

// Confirm prints the summary and asks for confirmation. Answering no or interrupting the prompt declines.
func (confirmer *PromptUIConfirmer) Confirm(_ context.Context, summary opener.Summary) (bool, error) {
	if confirmer.output != nil {
		if _, writeError := io.WriteString(confirmer.output, FormatSummary(summary)); writeError != nil {
			return false, fmt.Errorf(summaryWriteFailureTemplate, writeError)
		}
	}

	_, promptError := confirmer.runPrompt(promptui.Prompt{Label: confirmationLabelConstant, IsConfirm: true})
	switch {
	case promptError == nil:
		return true, nil
	case errors.Is(promptError, promptui.ErrAbort), errors.Is(promptError, promptui.ErrInterrupt), errors.Is(promptError, promptui.ErrEOF):
		return false, nil
	default:
		return false, fmt.Errorf(confirmationFailureTemplate, promptError)
	}
}

// FormatSummary renders the base, head, first title line truncated to the terminal-friendly width, and reviewers.
func FormatSummary(summary opener.Summary) string {
	titleLine, _, _ := strings.Cut(summary.Title, titleLineSeparatorConstant)
	displayTitle := runewidth.Truncate(strings.TrimSpace(titleLine), titleDisplayWidthConstant, titleTruncationTailConstant)

	reviewerLabel := noReviewersLabelConstant
	if len(summary.Reviewers) > 0 {
		reviewerLabel = strings.Join(summary.Reviewers, reviewerJoinSeparatorConstant)
	}
	return fmt.Sprintf(summaryTemplateConstant, summary.Base, summary.Head, displayTitle, reviewerLabel)
}
