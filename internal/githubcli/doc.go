// Package githubcli opens pull requests and lists organization members through the GitHub CLI.
//
// Every invocation goes through execshell so tests can substitute a recording
// executor for gh.
package githubcli
