package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cli/go-gh/v2/pkg/repository"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/gpr/internal/environment"
	"github.com/temirov/gpr/internal/gitrepo"
	"github.com/temirov/gpr/internal/opener"
	"github.com/temirov/gpr/internal/pullrequest"
)

const (
	testPullRequestURLConstant    = "https://github.com/acme/widgets/pull/7"
	testConfigurationFileConstant = "config.yaml"
	testQuietLogLevelArgument     = "--log-level=error"
	testStructuredFormatArgument  = "--log-format=structured"
)

type stubPipeline struct {
	result  opener.Result
	err     error
	options opener.Options
	calls   int
}

func (pipeline *stubPipeline) Open(_ context.Context, options opener.Options) (opener.Result, error) {
	pipeline.calls++
	pipeline.options = options
	return pipeline.result, pipeline.err
}

type applicationFixture struct {
	application *Application
	pipeline    *stubPipeline
	settings    *pipelineSettings
	output      *bytes.Buffer
}

func newApplicationFixture(t *testing.T, pipeline *stubPipeline, environmentValues map[string]string) applicationFixture {
	t.Helper()

	capturedSettings := &pipelineSettings{}
	application := NewApplication()
	application.environmentLoader = func(string) (environment.Snapshot, error) {
		return environment.NewSnapshot(environmentValues), nil
	}
	application.workingDirectory = func() (string, error) {
		return t.TempDir(), nil
	}
	application.currentRepository = func() (repository.Repository, error) {
		return repository.Repository{Host: "github.com", Owner: "acme", Name: "widgets"}, nil
	}
	application.buildPipeline = func(_ context.Context, settings pipelineSettings) (pipelineRunner, error) {
		*capturedSettings = settings
		return pipeline, nil
	}

	output := &bytes.Buffer{}
	application.SetOutput(output, &bytes.Buffer{})

	return applicationFixture{application: application, pipeline: pipeline, settings: capturedSettings, output: output}
}

func (fixture applicationFixture) run(arguments ...string) error {
	fixture.application.SetArguments(append([]string{testQuietLogLevelArgument, testStructuredFormatArgument}, arguments...))
	return fixture.application.Execute()
}

func TestApplicationPrintsOutcome(t *testing.T) {
	testCases := []struct {
		name           string
		result         opener.Result
		expectedOutput string
	}{
		{
			name:           "created",
			result:         opener.Result{Outcome: opener.OutcomeCreated, URL: testPullRequestURLConstant},
			expectedOutput: testPullRequestURLConstant + "\n",
		},
		{
			name: "no_commits",
			result: opener.Result{
				Outcome:  opener.OutcomeNoCommits,
				Branches: gitrepo.BranchPair{Current: "feature/DIT-123-login", Target: "main"},
			},
			expectedOutput: "No commits between main and feature/DIT-123-login; nothing to open.\n",
		},
		{
			name:           "declined",
			result:         opener.Result{Outcome: opener.OutcomeDeclined},
			expectedOutput: "Pull request not created.\n",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			fixture := newApplicationFixture(t, &stubPipeline{result: testCase.result}, nil)
			require.NoError(t, fixture.run())
			require.Equal(t, testCase.expectedOutput, fixture.output.String())
			require.Equal(t, 1, fixture.pipeline.calls)
		})
	}
}

func TestApplicationFlagsOverrideConfiguration(t *testing.T) {
	fixture := newApplicationFixture(t, &stubPipeline{result: opener.Result{Outcome: opener.OutcomeCreated, URL: testPullRequestURLConstant}}, nil)

	require.NoError(t, fixture.run("develop", "-y", "--no-reviewers", "--remote", "upstream", "--forge", "api"))

	require.Equal(t, opener.Options{
		Arguments:        []string{"develop"},
		RemoteName:       "upstream",
		SkipReviewers:    true,
		SkipConfirmation: true,
	}, fixture.pipeline.options)
	require.Equal(t, "api", fixture.settings.configuration.Forge.Backend)
	require.False(t, fixture.settings.humanReadable)
	require.NotNil(t, fixture.settings.currentRepository)
}

func TestApplicationDefaultsFromEmbeddedConfiguration(t *testing.T) {
	fixture := newApplicationFixture(t, &stubPipeline{result: opener.Result{Outcome: opener.OutcomeDeclined}}, nil)

	require.NoError(t, fixture.run())

	configuration := fixture.application.Configuration()
	require.Equal(t, "origin", configuration.PR.Remote)
	require.Equal(t, "cli", configuration.Forge.Backend)
	require.Equal(t, "https://api.linear.app/graphql", configuration.Tracker.Endpoint)
	require.Equal(t, "LINEAR_API_KEY", configuration.Tracker.TokenVariable)
	require.Equal(t, 3, configuration.Tracker.MinimumDigits)
	require.Equal(t, 5, configuration.Tracker.MaximumDigits)
	require.Equal(t, 30*time.Second, configuration.Tracker.Timeout)
	require.Empty(t, fixture.pipeline.options.Arguments)
	require.Equal(t, "origin", fixture.pipeline.options.RemoteName)
	require.False(t, fixture.pipeline.options.SkipConfirmation)
	require.False(t, fixture.pipeline.options.SkipReviewers)
}

func TestApplicationConfigurationFileAndEnvironment(t *testing.T) {
	configurationPath := filepath.Join(t.TempDir(), testConfigurationFileConstant)
	configurationContent := "pr:\n  default_target: develop\n  skip_reviewers: true\ntracker:\n  timeout: 5s\n"
	require.NoError(t, os.WriteFile(configurationPath, []byte(configurationContent), 0o600))

	t.Setenv("GPR_TRACKER_PREFIXES", "DIT,OPS")
	t.Setenv("GPR_PR_REMOTE", "fork")

	fixture := newApplicationFixture(t, &stubPipeline{result: opener.Result{Outcome: opener.OutcomeDeclined}}, nil)
	require.NoError(t, fixture.run("--config", configurationPath))

	configuration := fixture.application.Configuration()
	require.Equal(t, "develop", configuration.PR.DefaultTarget)
	require.True(t, configuration.PR.SkipReviewers)
	require.Equal(t, 5*time.Second, configuration.Tracker.Timeout)
	require.Equal(t, []string{"DIT", "OPS"}, configuration.Tracker.Prefixes)
	require.Equal(t, "fork", fixture.pipeline.options.RemoteName)
	require.Equal(t, "develop", fixture.pipeline.options.DefaultTarget)
}

func TestApplicationPassesEnvironmentToPipeline(t *testing.T) {
	fixture := newApplicationFixture(t, &stubPipeline{result: opener.Result{Outcome: opener.OutcomeDeclined}}, map[string]string{"LINEAR_API_KEY": "lin_api_123"})

	require.NoError(t, fixture.run())
	require.Equal(t, "lin_api_123", fixture.settings.environment.Value("LINEAR_API_KEY"))
}

func TestApplicationReportsForgeMessageAfterPush(t *testing.T) {
	creationError := pullrequest.CreationError{StandardError: "a pull request for branch \"feature/DIT-123\" already exists", Cause: errors.New("exit status 1")}
	pipeline := &stubPipeline{err: opener.PublishError{Branch: "feature/DIT-123", BranchPushed: true, Cause: creationError}}
	fixture := newApplicationFixture(t, pipeline, nil)

	runError := fixture.run()
	require.Error(t, runError)
	require.Equal(t, "failed to create PR: a pull request for branch \"feature/DIT-123\" already exists", runError.Error())
	require.Empty(t, fixture.output.String())
}

func TestApplicationPropagatesPipelineFailures(t *testing.T) {
	testCases := []struct {
		name          string
		buildError    error
		openError     error
		expectedError error
	}{
		{name: "build_failure", buildError: UnsupportedForgeError{Backend: "gitlab"}, expectedError: UnsupportedForgeError{Backend: "gitlab"}},
		{name: "open_failure", openError: opener.ErrEmptyTitle, expectedError: opener.ErrEmptyTitle},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			fixture := newApplicationFixture(t, &stubPipeline{err: testCase.openError}, nil)
			if testCase.buildError != nil {
				fixture.application.buildPipeline = func(context.Context, pipelineSettings) (pipelineRunner, error) {
					return nil, testCase.buildError
				}
			}

			runError := fixture.run()
			require.ErrorIs(t, runError, testCase.expectedError)
		})
	}
}

func TestApplicationRejectsExtraArguments(t *testing.T) {
	fixture := newApplicationFixture(t, &stubPipeline{}, nil)

	require.Error(t, fixture.run("develop", "main"))
	require.Zero(t, fixture.pipeline.calls)
}

func TestApplicationRejectsInvalidLogLevel(t *testing.T) {
	fixture := newApplicationFixture(t, &stubPipeline{}, nil)
	fixture.application.SetArguments([]string{"--log-level=verbose"})

	executionError := fixture.application.Execute()
	require.Error(t, executionError)
	require.Contains(t, executionError.Error(), "unsupported log level")
	require.Zero(t, fixture.pipeline.calls)
}

func TestConfigurationCommandPrintsEffectiveConfiguration(t *testing.T) {
	fixture := newApplicationFixture(t, &stubPipeline{}, nil)

	require.NoError(t, fixture.run("config", "--forge", "api"))
	require.Zero(t, fixture.pipeline.calls)

	printed := fixture.output.String()
	require.True(t, strings.HasPrefix(printed, "# source: embedded defaults\n"))

	var decoded struct {
		Forge struct {
			Backend string `yaml:"backend"`
		} `yaml:"forge"`
		Tracker struct {
			Prefixes []string `yaml:"prefixes"`
			Timeout  string   `yaml:"timeout"`
		} `yaml:"tracker"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(printed), &decoded))
	require.Equal(t, "api", decoded.Forge.Backend)
	require.Equal(t, "30s", decoded.Tracker.Timeout)
	require.Empty(t, decoded.Tracker.Prefixes)
}
