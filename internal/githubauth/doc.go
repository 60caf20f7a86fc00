// Package githubauth resolves the GitHub token used by the API forge backend.
package githubauth
