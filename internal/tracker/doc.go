// Package tracker links a branch to an issue-tracker ticket.
//
// ReferenceMatcher extracts a ticket identifier such as DIT-123 from a branch
// name. Client fetches the ticket title, description, and URL from Linear's
// GraphQL API with a single request.
package tracker
