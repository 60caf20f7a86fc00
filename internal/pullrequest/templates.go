package pullrequest

import (
	"fmt"
	"strings"

	"github.com/temirov/gpr/internal/gitrepo"
	"github.com/temirov/gpr/internal/tracker"
)

const (
	// TitleInstructionLine heads the title draft and is removed after editing.
	TitleInstructionLine = "<!--- The title of your pull request. Save and close this file to continue. --->"
	// BodyInstructionLine heads the body draft and is removed after editing.
	BodyInstructionLine = "<!--- The body of your pull request. Save and close this file to continue. --->"

	overviewItemTemplateConstant = "- %s"
	contextTemplateConstant      = "%s\n\n%s"
	titleTemplateConstant        = "%s\n[%s] %s"
	bodyTemplateConstant         = "%s\n## Overview\n%s\n\n## Context\n%s\n\n## Screenshots\n\n## Test Plan\n\n"
	lineSeparatorConstant        = "\n"
)

// Draft is the title and body of a pull request.
type Draft struct {
	Title string
	Body  string
}

// Overview lists each commit message as a bullet, oldest first.
func Overview(commits []gitrepo.Commit) string {
	items := make([]string, 0, len(commits))
	for _, commit := range commits {
		items = append(items, fmt.Sprintf(overviewItemTemplateConstant, commit.Message))
	}
	return strings.Join(items, lineSeparatorConstant)
}

// Context renders the ticket URL and description separated by a blank line.
func Context(ticket tracker.Ticket, present bool) string {
	if !present {
		return ""
	}
	return fmt.Sprintf(contextTemplateConstant, ticket.URL, ticket.Description)
}

// Title renders the title draft. Without a ticket only the instruction line is produced.
func Title(ticket tracker.Ticket, reference string, present bool) string {
	if !present {
		return TitleInstructionLine + lineSeparatorConstant
	}
	return fmt.Sprintf(titleTemplateConstant, TitleInstructionLine, reference, ticket.Title)
}

// Body renders the body draft with overview, context, screenshots, and test plan sections.
func Body(overview string, context string) string {
	return fmt.Sprintf(bodyTemplateConstant, BodyInstructionLine, overview, context)
}

// StripInstructionLine removes everything through the first newline; text without a newline becomes empty.
func StripInstructionLine(text string) string {
	_, remainder, found := strings.Cut(text, lineSeparatorConstant)
	if !found {
		return ""
	}
	return remainder
}

// Compose builds both drafts from the commits and the optional ticket.
func Compose(commits []gitrepo.Commit, ticket tracker.Ticket, reference string, present bool) Draft {
	return Draft{
		Title: Title(ticket, reference, present),
		Body:  Body(Overview(commits), Context(ticket, present)),
	}
}
