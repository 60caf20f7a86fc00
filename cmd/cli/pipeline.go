package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cli/go-gh/v2/pkg/repository"
	"go.uber.org/zap"

	"github.com/temirov/gpr/internal/editor"
	"github.com/temirov/gpr/internal/environment"
	"github.com/temirov/gpr/internal/execshell"
	"github.com/temirov/gpr/internal/githubapi"
	"github.com/temirov/gpr/internal/githubauth"
	"github.com/temirov/gpr/internal/githubcli"
	"github.com/temirov/gpr/internal/gitrepo"
	"github.com/temirov/gpr/internal/opener"
	"github.com/temirov/gpr/internal/reviewers"
	"github.com/temirov/gpr/internal/tracker"
	"github.com/temirov/gpr/internal/ui"
)

const (
	unsupportedForgeTemplateConstant      = "unsupported forge backend %q (expected cli or api)"
	executorCreationFailureTemplate       = "unable to create command executor: %w"
	resolverCreationFailureTemplate       = "unable to create branch resolver: %w"
	matcherCreationFailureTemplate        = "invalid ticket reference configuration: %w"
	editorCreationFailureTemplate         = "unable to configure editor: %w"
	forgeCreationFailureTemplate          = "unable to configure %s forge: %w"
	selectorCreationFailureTemplate       = "unable to configure reviewer selection: %w"
	serviceCreationFailureTemplate        = "unable to assemble pull request pipeline: %w"
	repositoryResolutionFailureTemplate   = "unable to determine the GitHub repository: %w"
	repositoryInferenceFallbackMessage    = "Falling back to remote url for repository detection"
	organizationUnresolvedMessageConstant = "Unable to infer organization for reviewer selection"
	logFieldRemoteConstant                = "remote"
	logFieldBackendConstant               = "backend"
	logFieldOrganizationConstant          = "organization"
	forgeSelectedMessageConstant          = "Forge selected"
	reviewerOrganizationSelectedMessage   = "Reviewer organization resolved"
	trackerCredentialMissingMessage       = "Tracker credential variable is not set"
	logFieldCredentialVariableConstant    = "variable"
)

// pipelineRunner runs the pull request pipeline once.
type pipelineRunner interface {
	Open(executionContext context.Context, options opener.Options) (opener.Result, error)
}

// currentRepositoryFunc reports the GitHub repository of the working directory.
type currentRepositoryFunc func() (repository.Repository, error)

// remoteRepositoryReader reads the repository a git remote points at.
type remoteRepositoryReader interface {
	RemoteRepository(executionContext context.Context, remoteName string) (gitrepo.RemoteURL, error)
}

// forgeClient opens pull requests and lists organization members.
type forgeClient interface {
	opener.Forge
	reviewers.MemberLister
}

type pipelineSettings struct {
	logger            *zap.Logger
	configuration     ApplicationConfiguration
	environment       environment.Snapshot
	workingDirectory  string
	humanReadable     bool
	output            io.Writer
	currentRepository currentRepositoryFunc
}

type pipelineBuilder func(executionContext context.Context, settings pipelineSettings) (pipelineRunner, error)

// UnsupportedForgeError reports a forge backend other than cli or api.
type UnsupportedForgeError struct {
	Backend string
}

// Error describes the unsupported backend.
func (forgeError UnsupportedForgeError) Error() string {
	return fmt.Sprintf(unsupportedForgeTemplateConstant, forgeError.Backend)
}

func buildPipeline(executionContext context.Context, settings pipelineSettings) (pipelineRunner, error) {
	logger := settings.logger
	configuration := settings.configuration

	executorOptions := make([]execshell.ShellExecutorOption, 0, 1)
	if settings.humanReadable {
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(logger)))
	}

	commandExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), executorOptions...)
	if executorError != nil {
		return nil, fmt.Errorf(executorCreationFailureTemplate, executorError)
	}
	interactiveExecutor, interactiveError := execshell.NewShellExecutor(logger, execshell.NewInteractiveCommandRunner(), executorOptions...)
	if interactiveError != nil {
		return nil, fmt.Errorf(executorCreationFailureTemplate, interactiveError)
	}

	branchResolver, resolverError := gitrepo.NewResolver(commandExecutor, settings.workingDirectory)
	if resolverError != nil {
		return nil, fmt.Errorf(resolverCreationFailureTemplate, resolverError)
	}

	referenceMatcher, matcherError := tracker.NewReferenceMatcher(tracker.MatcherConfiguration{
		Prefixes:      configuration.Tracker.Prefixes,
		MinimumDigits: configuration.Tracker.MinimumDigits,
		MaximumDigits: configuration.Tracker.MaximumDigits,
	})
	if matcherError != nil {
		return nil, fmt.Errorf(matcherCreationFailureTemplate, matcherError)
	}

	credentialVariable := strings.TrimSpace(configuration.Tracker.TokenVariable)
	credential := settings.environment.Value(credentialVariable)
	if len(strings.TrimSpace(credential)) == 0 {
		logger.Debug(trackerCredentialMissingMessage, zap.String(logFieldCredentialVariableConstant, credentialVariable))
	}
	ticketClient := tracker.NewClient(logger, tracker.ClientConfiguration{
		Endpoint:   configuration.Tracker.Endpoint,
		Credential: credential,
		Timeout:    configuration.Tracker.Timeout,
	})

	draftEditor, editorError := editor.New(interactiveExecutor, editor.ResolveCommand(configuration.PR.Editor, settings.environment))
	if editorError != nil {
		return nil, fmt.Errorf(editorCreationFailureTemplate, editorError)
	}

	forge, forgeError := buildForge(executionContext, settings, commandExecutor, branchResolver)
	if forgeError != nil {
		return nil, forgeError
	}

	dependencies := opener.ServiceDependencies{
		Logger:     logger,
		Branches:   branchResolver,
		References: referenceMatcher,
		Tickets:    ticketClient,
		Editor:     draftEditor,
		Forge:      forge,
	}

	if !configuration.PR.SkipReviewers {
		organization := resolveOrganization(executionContext, logger, configuration, settings.currentRepository, branchResolver)
		selector, selectorError := reviewers.NewSelector(logger, forge, ui.NewHuhReviewerPicker(nil), organization)
		if selectorError != nil {
			return nil, fmt.Errorf(selectorCreationFailureTemplate, selectorError)
		}
		dependencies.Reviewers = selector
	}

	if !configuration.PR.SkipConfirmation {
		dependencies.Confirmer = ui.NewPromptUIConfirmer(settings.output, nil)
	}

	service, serviceError := opener.NewService(dependencies)
	if serviceError != nil {
		return nil, fmt.Errorf(serviceCreationFailureTemplate, serviceError)
	}
	return service, nil
}

func buildForge(executionContext context.Context, settings pipelineSettings, commandExecutor githubcli.GitHubCommandExecutor, remotes remoteRepositoryReader) (forgeClient, error) {
	backend := strings.ToLower(strings.TrimSpace(settings.configuration.Forge.Backend))
	settings.logger.Debug(forgeSelectedMessageConstant, zap.String(logFieldBackendConstant, backend))

	switch backend {
	case forgeBackendCLIConstant, "":
		client, clientError := githubcli.NewClient(commandExecutor)
		if clientError != nil {
			return nil, fmt.Errorf(forgeCreationFailureTemplate, forgeBackendCLIConstant, clientError)
		}
		return client, nil
	case forgeBackendAPIConstant:
		token, tokenError := githubauth.ResolveToken(settings.environment)
		if tokenError != nil {
			return nil, fmt.Errorf(forgeCreationFailureTemplate, forgeBackendAPIConstant, tokenError)
		}
		coordinates, coordinatesError := resolveRepository(executionContext, settings.logger, settings.currentRepository, remotes, settings.configuration.PR.Remote)
		if coordinatesError != nil {
			return nil, coordinatesError
		}
		client, clientError := githubapi.NewClient(token, coordinates, githubapi.WithLogger(settings.logger))
		if clientError != nil {
			return nil, fmt.Errorf(forgeCreationFailureTemplate, forgeBackendAPIConstant, clientError)
		}
		return client, nil
	default:
		return nil, UnsupportedForgeError{Backend: settings.configuration.Forge.Backend}
	}
}

// resolveRepository asks gh's repository detection first and falls back to parsing the push remote.
func resolveRepository(executionContext context.Context, logger *zap.Logger, current currentRepositoryFunc, remotes remoteRepositoryReader, remoteName string) (githubapi.Repository, error) {
	if current != nil {
		detected, detectionError := current()
		if detectionError == nil && len(detected.Owner) > 0 && len(detected.Name) > 0 {
			return githubapi.Repository{Owner: detected.Owner, Name: detected.Name}, nil
		}
		logger.Debug(repositoryInferenceFallbackMessage, zap.String(logFieldRemoteConstant, remoteName), zap.Error(detectionError))
	}

	remote, remoteError := remotes.RemoteRepository(executionContext, remoteName)
	if remoteError != nil {
		return githubapi.Repository{}, fmt.Errorf(repositoryResolutionFailureTemplate, remoteError)
	}
	return githubapi.Repository{Owner: remote.Owner, Name: remote.Repository}, nil
}

// resolveOrganization prefers the configured organization, then the repository owner.
// An empty result is reported by the reviewer selector when it runs.
func resolveOrganization(executionContext context.Context, logger *zap.Logger, configuration ApplicationConfiguration, current currentRepositoryFunc, remotes remoteRepositoryReader) string {
	if configured := strings.TrimSpace(configuration.Forge.Organization); len(configured) > 0 {
		return configured
	}

	coordinates, resolveError := resolveRepository(executionContext, logger, current, remotes, configuration.PR.Remote)
	if resolveError != nil {
		logger.Warn(organizationUnresolvedMessageConstant, zap.Error(resolveError))
		return ""
	}

	logger.Debug(reviewerOrganizationSelectedMessage, zap.String(logFieldOrganizationConstant, coordinates.Owner))
	return coordinates.Owner
}
