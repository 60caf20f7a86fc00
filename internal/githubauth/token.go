package githubauth

import (
	"errors"
	"strings"
)

// Environment variable names consulted for a GitHub token, in priority order.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"

	tokenMissingMessageConstant = "GitHub token not found in GH_TOKEN, GITHUB_TOKEN, or GITHUB_API_TOKEN"
)

// ErrTokenMissing indicates none of the token variables held a value.
var ErrTokenMissing = errors.New(tokenMissingMessageConstant)

var tokenPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// EnvironmentLookup reads a variable from an injected environment.
type EnvironmentLookup interface {
	Value(name string) string
}

// ResolveToken returns the first non-blank token among GH_TOKEN, GITHUB_TOKEN, and GITHUB_API_TOKEN.
func ResolveToken(environment EnvironmentLookup) (string, error) {
	if environment == nil {
		return "", ErrTokenMissing
	}
	for _, key := range tokenPreference {
		if value := strings.TrimSpace(environment.Value(key)); len(value) > 0 {
			return value, nil
		}
	}
	return "", ErrTokenMissing
}
