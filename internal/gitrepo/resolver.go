package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/temirov/gpr/internal/execshell"
)

const (
	gitRevParseSubcommandConstant        = "rev-parse"
	gitIsInsideWorkTreeFlagConstant      = "--is-inside-work-tree"
	gitAbbrevRefFlagConstant             = "--abbrev-ref"
	gitHeadReferenceConstant             = "HEAD"
	gitBranchSubcommandConstant          = "branch"
	gitLogSubcommandConstant             = "log"
	gitOneLineFlagConstant               = "--oneline"
	gitNoDecorateFlagConstant            = "--no-decorate"
	gitPushSubcommandConstant            = "push"
	gitSetUpstreamFlagConstant           = "--set-upstream"
	gitRemoteSubcommandConstant          = "remote"
	gitGetURLSubcommandConstant          = "get-url"
	revisionRangeTemplateConstant        = "%s..%s"
	currentBranchMarkerConstant          = "* "
	lineSeparatorConstant                = "\n"
	carriageReturnConstant               = "\r"
	mainBranchNameConstant               = "main"
	masterBranchNameConstant             = "master"
	defaultRemoteNameConstant            = "origin"
	commitLinePatternConstant            = `^(?P<hash>\w+) (?P<message>.+)$`
	executorMissingMessageConstant       = "git executor not configured"
	defaultBranchNotFoundMessageConstant = "failed to determine default branch: neither main nor master exists locally"
	detachedHeadMessageConstant          = "current branch cannot be determined from a detached HEAD"
	branchNameRequiredMessageConstant    = "branch name must be provided"
	notRepositoryTemplateConstant        = "not inside a git repository: %w"
	currentBranchFailureTemplateConstant = "failed to resolve current branch: %w"
	branchListFailureTemplateConstant    = "failed to list local branches: %w"
	commitLogFailureTemplateConstant     = "failed to list commits between %s and %s: %w"
	pushFailureTemplateConstant          = "failed to push %s to %s: %w"
	remoteURLFailureTemplateConstant     = "failed to read %s remote url: %w"
	commitParseErrorTemplateConstant     = "unable to parse commit line %q"
)

var (
	// ErrGitExecutorNotConfigured indicates the resolver was constructed without an executor.
	ErrGitExecutorNotConfigured = errors.New(executorMissingMessageConstant)
	// ErrDefaultBranchNotFound indicates neither main nor master exists locally.
	ErrDefaultBranchNotFound = errors.New(defaultBranchNotFoundMessageConstant)
	// ErrDetachedHead indicates HEAD does not point at a branch.
	ErrDetachedHead = errors.New(detachedHeadMessageConstant)
	// ErrBranchNameRequired indicates an empty branch name was supplied.
	ErrBranchNameRequired = errors.New(branchNameRequiredMessageConstant)
)

var commitLinePattern = regexp.MustCompile(commitLinePatternConstant)

// defaultBranchPriority lists the inferred target branches in priority order.
var defaultBranchPriority = []string{mainBranchNameConstant, masterBranchNameConstant}

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Commit is a single entry of the one-line commit log.
type Commit struct {
	Hash    string
	Message string
}

// BranchPair holds the branch a pull request is opened from and the branch it targets.
type BranchPair struct {
	Current string
	Target  string
}

// CommitParseError reports a commit log line that does not match `<hash> <message>`.
type CommitParseError struct {
	Line string
}

// Error describes the parse failure.
func (parseError CommitParseError) Error() string {
	return fmt.Sprintf(commitParseErrorTemplateConstant, parseError.Line)
}

// Resolver answers branch and commit questions about the repository in the working directory.
type Resolver struct {
	executor         GitExecutor
	workingDirectory string
}

// NewResolver constructs a Resolver operating in workingDirectory; an empty value uses the process working directory.
func NewResolver(executor GitExecutor, workingDirectory string) (*Resolver, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &Resolver{executor: executor, workingDirectory: workingDirectory}, nil
}

// EnsureRepository verifies git is available and the working directory is inside a work tree.
func (resolver *Resolver) EnsureRepository(executionContext context.Context) error {
	_, executionError := resolver.run(executionContext, execshell.StandardErrorPolicyFail, gitRevParseSubcommandConstant, gitIsInsideWorkTreeFlagConstant)
	if executionError != nil {
		return fmt.Errorf(notRepositoryTemplateConstant, executionError)
	}
	return nil
}

// CurrentBranch resolves the symbolic HEAD reference.
func (resolver *Resolver) CurrentBranch(executionContext context.Context) (string, error) {
	executionResult, executionError := resolver.run(executionContext, execshell.StandardErrorPolicyFail, gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant)
	if executionError != nil {
		return "", fmt.Errorf(currentBranchFailureTemplateConstant, executionError)
	}

	branchName := strings.TrimSpace(executionResult.StandardOutput)
	if branchName == gitHeadReferenceConstant || len(branchName) == 0 {
		return "", ErrDetachedHead
	}
	return branchName, nil
}

// TargetBranch returns the first positional argument, the configured default, or the inferred default branch, in that order.
func (resolver *Resolver) TargetBranch(executionContext context.Context, arguments []string, configuredDefault string) (string, error) {
	if len(arguments) > 0 {
		if argumentBranch := strings.TrimSpace(arguments[0]); len(argumentBranch) > 0 {
			return argumentBranch, nil
		}
	}

	if trimmedDefault := strings.TrimSpace(configuredDefault); len(trimmedDefault) > 0 {
		return trimmedDefault, nil
	}

	return resolver.DefaultBranch(executionContext)
}

// DefaultBranch scans the local branch listing for main, then master.
func (resolver *Resolver) DefaultBranch(executionContext context.Context) (string, error) {
	branches, listError := resolver.LocalBranches(executionContext)
	if listError != nil {
		return "", listError
	}

	for _, candidate := range defaultBranchPriority {
		if slices.Contains(branches, candidate) {
			return candidate, nil
		}
	}
	return "", ErrDefaultBranchNotFound
}

// LocalBranches lists local branch names with the current-branch marker and whitespace removed.
func (resolver *Resolver) LocalBranches(executionContext context.Context) ([]string, error) {
	executionResult, executionError := resolver.run(executionContext, execshell.StandardErrorPolicyFail, gitBranchSubcommandConstant)
	if executionError != nil {
		return nil, fmt.Errorf(branchListFailureTemplateConstant, executionError)
	}

	branches := make([]string, 0)
	for _, line := range strings.Split(executionResult.StandardOutput, lineSeparatorConstant) {
		branchName := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), currentBranchMarkerConstant))
		if len(branchName) == 0 {
			continue
		}
		branches = append(branches, branchName)
	}
	return branches, nil
}

// CommitsBetween lists commits reachable from Current but not Target, oldest first.
func (resolver *Resolver) CommitsBetween(executionContext context.Context, branches BranchPair) ([]Commit, error) {
	currentBranch := strings.TrimSpace(branches.Current)
	targetBranch := strings.TrimSpace(branches.Target)
	if len(currentBranch) == 0 || len(targetBranch) == 0 {
		return nil, ErrBranchNameRequired
	}

	revisionRange := fmt.Sprintf(revisionRangeTemplateConstant, targetBranch, currentBranch)
	executionResult, executionError := resolver.run(executionContext, execshell.StandardErrorPolicyFail, gitLogSubcommandConstant, gitOneLineFlagConstant, gitNoDecorateFlagConstant, revisionRange)
	if executionError != nil {
		return nil, fmt.Errorf(commitLogFailureTemplateConstant, targetBranch, currentBranch, executionError)
	}

	return ParseCommitLog(executionResult.StandardOutput)
}

// ParseCommitLog converts newest-first one-line log output into chronologically ordered commits.
func ParseCommitLog(logOutput string) ([]Commit, error) {
	lines := strings.Split(logOutput, lineSeparatorConstant)
	commits := make([]Commit, 0, len(lines))
	for lineIndex := len(lines) - 1; lineIndex >= 0; lineIndex-- {
		line := strings.TrimSuffix(lines[lineIndex], carriageReturnConstant)
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}

		commit, parseError := parseCommitLine(line)
		if parseError != nil {
			return nil, parseError
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

func parseCommitLine(line string) (Commit, error) {
	matches := commitLinePattern.FindStringSubmatch(line)
	if matches == nil {
		return Commit{}, CommitParseError{Line: line}
	}
	return Commit{
		Hash:    matches[commitLinePattern.SubexpIndex("hash")],
		Message: matches[commitLinePattern.SubexpIndex("message")],
	}, nil
}

// PushBranch pushes branchName to remoteName and sets upstream tracking; standard error output is advisory.
func (resolver *Resolver) PushBranch(executionContext context.Context, remoteName string, branchName string) error {
	trimmedBranch := strings.TrimSpace(branchName)
	if len(trimmedBranch) == 0 {
		return ErrBranchNameRequired
	}
	resolvedRemote := resolveRemoteName(remoteName)

	_, executionError := resolver.run(executionContext, execshell.StandardErrorPolicyWarn, gitPushSubcommandConstant, gitSetUpstreamFlagConstant, resolvedRemote, trimmedBranch)
	if executionError != nil {
		return fmt.Errorf(pushFailureTemplateConstant, trimmedBranch, resolvedRemote, executionError)
	}
	return nil
}

// RemoteRepository reads the URL of remoteName and parses its owner and repository.
func (resolver *Resolver) RemoteRepository(executionContext context.Context, remoteName string) (RemoteURL, error) {
	resolvedRemote := resolveRemoteName(remoteName)
	executionResult, executionError := resolver.run(executionContext, execshell.StandardErrorPolicyFail, gitRemoteSubcommandConstant, gitGetURLSubcommandConstant, resolvedRemote)
	if executionError != nil {
		return RemoteURL{}, fmt.Errorf(remoteURLFailureTemplateConstant, resolvedRemote, executionError)
	}
	return ParseRemoteURL(executionResult.StandardOutput)
}

func (resolver *Resolver) run(executionContext context.Context, policy execshell.StandardErrorPolicy, arguments ...string) (execshell.ExecutionResult, error) {
	return resolver.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:           arguments,
		WorkingDirectory:    resolver.workingDirectory,
		StandardErrorPolicy: policy,
	})
}

func resolveRemoteName(remoteName string) string {
	trimmedRemote := strings.TrimSpace(remoteName)
	if len(trimmedRemote) == 0 {
		return defaultRemoteNameConstant
	}
	return trimmedRemote
}
