// Package gitrepo resolves the branches and commits a pull request is built from.
//
// Resolver wraps git through execshell to identify the current branch, infer the
// target branch, list the commits unique to the current branch, and push the
// branch upstream. ParseRemoteURL extracts the owner and repository from a
// remote URL when the forge cannot infer them.
package gitrepo
