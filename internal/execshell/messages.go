package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
	messageStageStandardError
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	genericStandardErrorTemplateConstant    = "%s reported%s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitRevParseSubcommandNameConstant = "rev-parse"
	gitWorkTreeFlagConstant           = "--is-inside-work-tree"
	gitAbbrevRefFlagConstant          = "--abbrev-ref"
	gitBranchSubcommandNameConstant   = "branch"
	gitLogSubcommandNameConstant      = "log"
	gitPushSubcommandNameConstant     = "push"
	gitSetUpstreamFlagConstant        = "--set-upstream"
	gitOneLineFlagConstant            = "--oneline"
	flagPrefixConstant                = "-"
)

const (
	gitWorkTreeStartTemplateConstant            = "Checking that the working directory is a Git repository"
	gitWorkTreeSuccessTemplateConstant          = "Working directory is a Git repository"
	gitWorkTreeFailureTemplateConstant          = "Working directory is not a Git repository (exit code %d%s)"
	gitWorkTreeExecutionFailureTemplateConstant = "Could not verify Git repository: %s"
	gitCurrentBranchStartTemplateConstant       = "Identifying current branch"
	gitCurrentBranchSuccessTemplateConstant     = "Identified current branch"
	gitCurrentBranchFailureTemplateConstant     = "Failed to identify current branch (exit code %d%s)"
	gitCurrentBranchExecutionFailureTemplate    = "Unable to identify current branch: %s"
	gitBranchListStartTemplateConstant          = "Listing local branches"
	gitBranchListSuccessTemplateConstant        = "Listed local branches"
	gitBranchListFailureTemplateConstant        = "Failed to list local branches (exit code %d%s)"
	gitBranchListExecutionFailureTemplate       = "Unable to list local branches: %s"
	gitLogStartTemplateConstant                 = "Collecting commits in %s"
	gitLogSuccessTemplateConstant               = "Collected commits in %s"
	gitLogFailureTemplateConstant               = "Failed to collect commits in %s (exit code %d%s)"
	gitLogExecutionFailureTemplateConstant      = "Unable to collect commits in %s: %s"
	gitPushStartTemplateConstant                = "Pushing %s to %s"
	gitPushSuccessTemplateConstant              = "Pushed %s to %s"
	gitPushFailureTemplateConstant              = "Failed to push %s to %s (exit code %d%s)"
	gitPushExecutionFailureTemplateConstant     = "Unable to push %s to %s: %s"
	gitPushStandardErrorTemplateConstant        = "Push of %s to %s reported%s"
)

const (
	githubPullRequestSubcommandNameConstant = "pr"
	githubCreateSubcommandNameConstant      = "create"
	githubAPICommandNameConstant            = "api"
	githubBaseFlagConstant                  = "--base"
	githubOrganizationEndpointPrefix        = "orgs/"
	githubMembersEndpointSuffix             = "/members"
)

const (
	githubPullRequestCreateStartTemplateConstant            = "Opening pull request against %s"
	githubPullRequestCreateSuccessTemplateConstant          = "Opened pull request against %s"
	githubPullRequestCreateFailureTemplateConstant          = "Failed to open pull request against %s (exit code %d%s)"
	githubPullRequestCreateExecutionFailureTemplateConstant = "Unable to open pull request against %s: %s"
	githubMembersStartTemplateConstant                      = "Listing members of %s"
	githubMembersSuccessTemplateConstant                    = "Listed members of %s"
	githubMembersFailureTemplateConstant                    = "Failed to list members of %s (exit code %d%s)"
	githubMembersExecutionFailureTemplateConstant           = "Unable to list members of %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a failed command.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing a command that could not be started.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

// BuildStandardErrorMessage formats the message describing advisory standard error output.
func (formatter CommandMessageFormatter) BuildStandardErrorMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageStandardError)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		if message := formatter.describeGitMessage(command, result, failure, stage); len(message) > 0 {
			return message
		}
	case CommandGitHub:
		if message := formatter.describeGitHubMessage(command, result, failure, stage); len(message) > 0 {
			return message
		}
	}
	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return emptyStringConstant
	}

	switch arguments[0] {
	case gitRevParseSubcommandNameConstant:
		return formatter.describeGitRevParseMessage(arguments, result, failure, stage)
	case gitBranchSubcommandNameConstant:
		if len(arguments) == 1 {
			return formatter.selectMessage(stage, result, failure,
				gitBranchListStartTemplateConstant,
				gitBranchListSuccessTemplateConstant,
				gitBranchListFailureTemplateConstant,
				gitBranchListExecutionFailureTemplate,
			)
		}
	case gitLogSubcommandNameConstant:
		return formatter.describeGitLogMessage(arguments, result, failure, stage)
	case gitPushSubcommandNameConstant:
		return formatter.describeGitPushMessage(arguments, result, failure, stage)
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) describeGitRevParseMessage(arguments []string, result ExecutionResult, failure error, stage messageStage) string {
	switch {
	case containsArgument(arguments, gitWorkTreeFlagConstant):
		return formatter.selectMessage(stage, result, failure,
			gitWorkTreeStartTemplateConstant,
			gitWorkTreeSuccessTemplateConstant,
			gitWorkTreeFailureTemplateConstant,
			gitWorkTreeExecutionFailureTemplateConstant,
		)
	case containsArgument(arguments, gitAbbrevRefFlagConstant):
		return formatter.selectMessage(stage, result, failure,
			gitCurrentBranchStartTemplateConstant,
			gitCurrentBranchSuccessTemplateConstant,
			gitCurrentBranchFailureTemplateConstant,
			gitCurrentBranchExecutionFailureTemplate,
		)
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) describeGitLogMessage(arguments []string, result ExecutionResult, failure error, stage messageStage) string {
	if !containsArgument(arguments, gitOneLineFlagConstant) {
		return emptyStringConstant
	}
	revisionRange := formatter.ensureValue(formatter.extractLastNonFlagArgument(arguments[1:]))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitLogStartTemplateConstant, revisionRange)
	case messageStageSuccess:
		return fmt.Sprintf(gitLogSuccessTemplateConstant, revisionRange)
	case messageStageFailure:
		return fmt.Sprintf(gitLogFailureTemplateConstant, revisionRange, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitLogExecutionFailureTemplateConstant, revisionRange, formatter.describeFailure(failure))
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) describeGitPushMessage(arguments []string, result ExecutionResult, failure error, stage messageStage) string {
	remoteName, branchName := formatter.extractRemoteAndBranch(arguments[1:])
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitPushStartTemplateConstant, branchName, remoteName)
	case messageStageSuccess:
		return fmt.Sprintf(gitPushSuccessTemplateConstant, branchName, remoteName)
	case messageStageFailure:
		return fmt.Sprintf(gitPushFailureTemplateConstant, branchName, remoteName, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitPushExecutionFailureTemplateConstant, branchName, remoteName, formatter.describeFailure(failure))
	case messageStageStandardError:
		return fmt.Sprintf(gitPushStandardErrorTemplateConstant, branchName, remoteName, formatter.formatStandardErrorSuffix(result.StandardError))
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) < 2 {
		return emptyStringConstant
	}

	if arguments[0] == githubPullRequestSubcommandNameConstant && arguments[1] == githubCreateSubcommandNameConstant {
		baseBranch := formatter.ensureValue(findFlagValue(arguments, githubBaseFlagConstant))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubPullRequestCreateStartTemplateConstant, baseBranch)
		case messageStageSuccess:
			return fmt.Sprintf(githubPullRequestCreateSuccessTemplateConstant, baseBranch)
		case messageStageFailure:
			return fmt.Sprintf(githubPullRequestCreateFailureTemplateConstant, baseBranch, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(githubPullRequestCreateExecutionFailureTemplateConstant, baseBranch, formatter.describeFailure(failure))
		}
		return emptyStringConstant
	}

	if arguments[0] == githubAPICommandNameConstant {
		endpoint := formatter.extractOrganizationEndpoint(arguments[1:])
		if len(endpoint) == 0 {
			return emptyStringConstant
		}
		organization := formatter.ensureValue(strings.TrimSuffix(strings.TrimPrefix(endpoint, githubOrganizationEndpointPrefix), githubMembersEndpointSuffix))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubMembersStartTemplateConstant, organization)
		case messageStageSuccess:
			return fmt.Sprintf(githubMembersSuccessTemplateConstant, organization)
		case messageStageFailure:
			return fmt.Sprintf(githubMembersFailureTemplateConstant, organization, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(githubMembersExecutionFailureTemplateConstant, organization, formatter.describeFailure(failure))
		}
	}

	return emptyStringConstant
}

func (formatter CommandMessageFormatter) selectMessage(stage messageStage, result ExecutionResult, failure error, startTemplate string, successTemplate string, failureTemplate string, executionFailureTemplate string) string {
	switch stage {
	case messageStageStart:
		return startTemplate
	case messageStageSuccess:
		return successTemplate
	case messageStageFailure:
		return fmt.Sprintf(failureTemplate, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(executionFailureTemplate, formatter.describeFailure(failure))
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageStandardError:
		return fmt.Sprintf(genericStandardErrorTemplateConstant, commandLabel, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmedValue
}

func (formatter CommandMessageFormatter) extractLastNonFlagArgument(arguments []string) string {
	for argumentIndex := len(arguments) - 1; argumentIndex >= 0; argumentIndex-- {
		if !strings.HasPrefix(arguments[argumentIndex], flagPrefixConstant) {
			return arguments[argumentIndex]
		}
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) extractOrganizationEndpoint(arguments []string) string {
	for _, argument := range arguments {
		if strings.HasPrefix(argument, githubOrganizationEndpointPrefix) && strings.HasSuffix(argument, githubMembersEndpointSuffix) {
			return argument
		}
	}
	return emptyStringConstant
}

// extractRemoteAndBranch reads `push [--set-upstream] <remote> <branch>`.
func (formatter CommandMessageFormatter) extractRemoteAndBranch(arguments []string) (string, string) {
	positional := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		if argument == gitSetUpstreamFlagConstant || strings.HasPrefix(argument, flagPrefixConstant) {
			continue
		}
		positional = append(positional, argument)
	}
	remoteName := emptyStringConstant
	branchName := emptyStringConstant
	if len(positional) > 0 {
		remoteName = positional[0]
	}
	if len(positional) > 1 {
		branchName = positional[1]
	}
	return formatter.ensureValue(remoteName), formatter.ensureValue(branchName)
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if argument == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for argumentIndex := 0; argumentIndex < len(arguments)-1; argumentIndex++ {
		if arguments[argumentIndex] == flag {
			return arguments[argumentIndex+1]
		}
	}
	return emptyStringConstant
}
