// Package githubapi opens pull requests and lists organization members through the GitHub REST API.
//
// It is the alternative to the gh-based backend for environments where only a
// token is available. Authentication uses an oauth2 static token source.
package githubapi
