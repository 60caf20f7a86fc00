package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	httpsProtocolPrefixConstant         = "https://"
	httpProtocolPrefixConstant          = "http://"
	sshUserDelimiterConstant            = "@"
	sshPathDelimiterConstant            = ":"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	requiredValueMessageConstant        = "remote url must not be empty"
	invalidRemoteURLMessageConstant     = "remote url does not name an owner and repository"
)

// RemoteURL is the owner and repository a remote points at.
type RemoteURL struct {
	Host       string
	Owner      string
	Repository string
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseRemoteURL understands scp-style (git@host:owner/repo.git), ssh:// and http(s):// remotes.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	for _, prefix := range []string{httpsProtocolPrefixConstant, httpProtocolPrefixConstant, sshProtocolPrefixConstant} {
		if strings.HasPrefix(trimmedRemote, prefix) {
			return parseHierarchicalRemote(trimmedRemote, strings.TrimPrefix(trimmedRemote, prefix))
		}
	}

	userSplitIndex := strings.Index(trimmedRemote, sshUserDelimiterConstant)
	hostAndPath := trimmedRemote[userSplitIndex+1:]
	pathSplitIndex := strings.Index(hostAndPath, sshPathDelimiterConstant)
	if pathSplitIndex <= 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
	return buildRemoteURL(remote, hostAndPath[:pathSplitIndex], hostAndPath[pathSplitIndex+1:])
}

func parseHierarchicalRemote(original string, withoutScheme string) (RemoteURL, error) {
	slashIndex := strings.Index(withoutScheme, pathSeparatorConstant)
	if slashIndex <= 0 {
		return RemoteURL{}, RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}
	authority := withoutScheme[:slashIndex]
	if userSplitIndex := strings.LastIndex(authority, sshUserDelimiterConstant); userSplitIndex >= 0 {
		authority = authority[userSplitIndex+1:]
	}
	if portIndex := strings.Index(authority, sshPathDelimiterConstant); portIndex >= 0 {
		authority = authority[:portIndex]
	}
	return buildRemoteURL(original, authority, withoutScheme[slashIndex+1:])
}

func buildRemoteURL(original string, host string, path string) (RemoteURL, error) {
	segments := strings.Split(strings.Trim(path, pathSeparatorConstant), pathSeparatorConstant)
	if len(segments) != 2 {
		return RemoteURL{}, RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}
	owner := segments[0]
	repository := strings.TrimSuffix(segments[1], gitSuffixConstant)
	if len(host) == 0 || len(owner) == 0 || len(repository) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}
	return RemoteURL{Host: host, Owner: owner, Repository: repository}, nil
}
