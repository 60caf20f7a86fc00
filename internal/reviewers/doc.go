// Package reviewers chooses pull request reviewers from the organization's members.
package reviewers
