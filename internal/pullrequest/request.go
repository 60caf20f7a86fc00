package pullrequest

import (
	"fmt"
	"strings"
)

const (
	creationErrorTemplateConstant      = "failed to create PR: %s"
	creationErrorWithoutOutputTemplate = "failed to create PR: %v"
)

// Request describes the pull request a forge should open.
type Request struct {
	Title     string
	Body      string
	Base      string
	Head      string
	Reviewers []string
}

// CreationError reports a forge refusal. StandardError holds the forge's message verbatim.
type CreationError struct {
	StandardError string
	Cause         error
}

// Error describes the failure, preferring the forge's own message.
func (creationError CreationError) Error() string {
	if trimmed := strings.TrimSpace(creationError.StandardError); len(trimmed) > 0 {
		return fmt.Sprintf(creationErrorTemplateConstant, trimmed)
	}
	return fmt.Sprintf(creationErrorWithoutOutputTemplate, creationError.Cause)
}

// Unwrap exposes the underlying failure.
func (creationError CreationError) Unwrap() error {
	return creationError.Cause
}
