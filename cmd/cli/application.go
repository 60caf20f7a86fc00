package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/cli/go-gh/v2/pkg/repository"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/gpr/internal/environment"
	"github.com/temirov/gpr/internal/opener"
	"github.com/temirov/gpr/internal/pullrequest"
	"github.com/temirov/gpr/internal/utils"
	"github.com/temirov/gpr/internal/version"
)

const (
	applicationNameConstant                 = "gpr"
	applicationUseConstant                  = applicationNameConstant + " [target-branch]"
	applicationShortDescriptionConstant     = "Open a pull request for the current branch"
	applicationLongDescriptionConstant      = "gpr drafts a pull request from the commits on the current branch and the Linear ticket named in the branch, lets you edit the title and body, picks reviewers, pushes the branch, and opens the pull request."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	assumeYesFlagNameConstant               = "yes"
	assumeYesFlagShorthandConstant          = "y"
	assumeYesFlagUsageConstant              = "Open the pull request without asking for confirmation."
	noReviewersFlagNameConstant             = "no-reviewers"
	noReviewersFlagUsageConstant            = "Skip reviewer selection."
	remoteFlagNameConstant                  = "remote"
	remoteFlagUsageConstant                 = "Remote the branch is pushed to."
	forgeFlagNameConstant                   = "forge"
	forgeFlagUsageConstant                  = "Pull request backend (cli or api)."
	versionFlagNameConstant                 = "version"
	versionFlagUsageConstant                = "Print the gpr version and exit."
	argumentTerminatorConstant              = "--"
	versionFlagArgumentConstant             = "--" + versionFlagNameConstant
	versionOutputTemplateConstant           = applicationNameConstant + " version: %s\n"
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	pullRequestRemoteConfigKey              = "pr.remote"
	forgeBackendConfigKeyConstant           = "forge.backend"
	defaultRemoteNameConstant               = "origin"
	environmentPrefixConstant               = "GPR"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	environmentLoadErrorTemplateConstant    = "unable to read environment: %w"
	workingDirectoryErrorTemplateConstant   = "unable to determine working directory: %w"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	defaultConfigurationSearchPathConstant  = "."
	noCommitsOutputTemplateConstant         = "No commits between %s and %s; nothing to open.\n"
	declinedOutputConstant                  = "Pull request not created.\n"
	createdOutputTemplateConstant           = "%s\n"
	branchPushedMessageConstant             = "Branch was pushed but the pull request was not created"
	logFieldBranchConstant                  = "branch"
)

// Application wires the Cobra root command, configuration loader, structured logger, and pull request pipeline.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	remoteFlagValue       string
	forgeFlagValue        string
	assumeYesFlagValue    bool
	noReviewersFlagValue  bool
	versionFlagValue      bool
	arguments             []string
	versionResolver       func(context.Context) string
	exitFunction          func(int)
	environmentLoader     func(dotEnvPath string) (environment.Snapshot, error)
	workingDirectory      func() (string, error)
	currentRepository     currentRepositoryFunc
	buildPipeline         pipelineBuilder
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	embeddedConfiguration, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	configurationLoader.SetEmbeddedConfiguration(embeddedConfiguration, embeddedConfigurationType)

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
		versionResolver:     version.Resolve,
		exitFunction:        os.Exit,
		environmentLoader:   environment.Load,
		workingDirectory:    os.Getwd,
		currentRepository:   repository.Current,
		buildPipeline:       buildPipeline,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationUseConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runOpen(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	persistentFlags := cobraCommand.PersistentFlags()
	persistentFlags.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	persistentFlags.StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	persistentFlags.StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	persistentFlags.StringVar(&application.remoteFlagValue, remoteFlagNameConstant, "", remoteFlagUsageConstant)
	persistentFlags.StringVar(&application.forgeFlagValue, forgeFlagNameConstant, "", forgeFlagUsageConstant)

	localFlags := cobraCommand.Flags()
	localFlags.BoolVarP(&application.assumeYesFlagValue, assumeYesFlagNameConstant, assumeYesFlagShorthandConstant, false, assumeYesFlagUsageConstant)
	localFlags.BoolVar(&application.noReviewersFlagValue, noReviewersFlagNameConstant, false, noReviewersFlagUsageConstant)
	localFlags.BoolVar(&application.versionFlagValue, versionFlagNameConstant, false, versionFlagUsageConstant)

	cobraCommand.AddCommand(newConfigurationCommand(application))

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing. The version flag is handled
// before configuration is loaded so it works with a broken configuration file.
func (application *Application) Execute() error {
	arguments := application.commandArguments()
	if requestsVersion(arguments) {
		fmt.Fprintf(os.Stdout, versionOutputTemplateConstant, application.versionResolver(application.rootCommand.Context()))
		application.exitFunction(0)
		return nil
	}

	application.rootCommand.SetArgs(arguments)
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// SetArguments replaces the process arguments used by Execute.
func (application *Application) SetArguments(arguments []string) {
	application.arguments = append([]string{}, arguments...)
}

// SetOutput redirects the command's standard output and standard error.
func (application *Application) SetOutput(standardOutput io.Writer, standardError io.Writer) {
	application.rootCommand.SetOut(standardOutput)
	application.rootCommand.SetErr(standardError)
}

// Configuration returns the configuration resolved by the last run.
func (application *Application) Configuration() ApplicationConfiguration {
	return application.configuration
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) commandArguments() []string {
	if application.arguments != nil {
		return application.arguments
	}
	if len(os.Args) < 2 {
		return []string{}
	}
	return os.Args[1:]
}

func requestsVersion(arguments []string) bool {
	for _, argument := range arguments {
		if argument == argumentTerminatorConstant {
			return false
		}
		if argument == versionFlagArgumentConstant {
			return true
		}
	}
	return false
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultConfigurationValues(), &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration
	application.applyFlagOverrides(command)

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) applyFlagOverrides(command *cobra.Command) {
	if application.flagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.flagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}
	if application.flagChanged(command, remoteFlagNameConstant) {
		application.configuration.PR.Remote = application.remoteFlagValue
	}
	if application.flagChanged(command, forgeFlagNameConstant) {
		application.configuration.Forge.Backend = application.forgeFlagValue
	}
	if application.flagChanged(command, assumeYesFlagNameConstant) {
		application.configuration.PR.SkipConfirmation = application.assumeYesFlagValue
	}
	if application.flagChanged(command, noReviewersFlagNameConstant) {
		application.configuration.PR.SkipReviewers = application.noReviewersFlagValue
	}
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runOpen(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	executionContext := command.Context()

	snapshot, environmentError := application.environmentLoader(environment.DefaultDotEnvFile)
	if environmentError != nil {
		return fmt.Errorf(environmentLoadErrorTemplateConstant, environmentError)
	}

	workingDirectory, workingDirectoryError := application.workingDirectory()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}

	pipeline, buildError := application.buildPipeline(executionContext, pipelineSettings{
		logger:            application.logger,
		configuration:     application.configuration,
		environment:       snapshot,
		workingDirectory:  workingDirectory,
		humanReadable:     application.humanReadableLoggingEnabled(),
		output:            command.OutOrStdout(),
		currentRepository: application.currentRepository,
	})
	if buildError != nil {
		return buildError
	}

	result, openError := pipeline.Open(executionContext, opener.Options{
		Arguments:        arguments,
		DefaultTarget:    application.configuration.PR.DefaultTarget,
		RemoteName:       application.configuration.PR.Remote,
		SkipReviewers:    application.configuration.PR.SkipReviewers,
		SkipConfirmation: application.configuration.PR.SkipConfirmation,
	})
	if openError != nil {
		return application.describeOpenFailure(openError)
	}

	output := command.OutOrStdout()
	switch result.Outcome {
	case opener.OutcomeNoCommits:
		fmt.Fprintf(output, noCommitsOutputTemplateConstant, result.Branches.Target, result.Branches.Current)
	case opener.OutcomeDeclined:
		fmt.Fprint(output, declinedOutputConstant)
	case opener.OutcomeCreated:
		fmt.Fprintf(output, createdOutputTemplateConstant, result.URL)
	}
	return nil
}

// describeOpenFailure surfaces the forge's own message when the pull request could not be created after the push.
func (application *Application) describeOpenFailure(openError error) error {
	var publishError opener.PublishError
	if !errors.As(openError, &publishError) {
		return openError
	}

	application.logger.Warn(branchPushedMessageConstant, zap.String(logFieldBranchConstant, publishError.Branch))

	var creationError pullrequest.CreationError
	if errors.As(publishError, &creationError) {
		return creationError
	}
	return publishError
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) flagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.Flags(),
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags(), rootCommand.Flags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
