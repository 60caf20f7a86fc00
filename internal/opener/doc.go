// Package opener drives the pull request pipeline.
//
// Service resolves the branches, stops early when there is nothing to
// propose, links the ticket named in the branch, drafts and edits the title
// and body, chooses reviewers, confirms, pushes, and opens the pull request.
// Every stage runs once and in order; a failure after the push is reported as
// a PublishError so callers know the branch is already on the remote.
package opener
