package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

const (
	environmentAssignmentSeparatorConstant = "="
	environmentAssignmentTemplateConstant  = "%s%s%s"
)

// OSCommandRunner executes commands using the operating system facilities and captures their output.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes the supplied command using os/exec.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := buildExecutable(executionContext, command)

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer

	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	return collectResult(executable.Run(), standardOutputBuffer.String(), standardErrorBuffer.String())
}

// InteractiveCommandRunner executes commands attached to the terminal so the user can interact with them.
type InteractiveCommandRunner struct {
	input  io.Reader
	output io.Writer
	errors io.Writer
}

// NewInteractiveCommandRunner constructs a runner wired to the process standard streams.
func NewInteractiveCommandRunner() *InteractiveCommandRunner {
	return &InteractiveCommandRunner{input: os.Stdin, output: os.Stdout, errors: os.Stderr}
}

// Run executes the command with standard streams passed through; only the exit code is captured.
func (runner *InteractiveCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := buildExecutable(executionContext, command)
	executable.Stdin = runner.input
	executable.Stdout = runner.output
	executable.Stderr = runner.errors

	return collectResult(executable.Run(), "", "")
}

func buildExecutable(executionContext context.Context, command ShellCommand) *exec.Cmd {
	commandArguments := append([]string{}, command.Details.Arguments...)
	executable := exec.CommandContext(executionContext, string(command.Name), commandArguments...)

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}

	if len(command.Details.EnvironmentVariables) > 0 {
		mergedEnvironment := append([]string{}, os.Environ()...)
		for environmentKey, environmentValue := range command.Details.EnvironmentVariables {
			mergedEnvironment = append(mergedEnvironment, fmt.Sprintf(environmentAssignmentTemplateConstant, environmentKey, environmentAssignmentSeparatorConstant, environmentValue))
		}
		executable.Env = mergedEnvironment
	}

	return executable
}

func collectResult(runError error, standardOutput string, standardError string) (ExecutionResult, error) {
	if runError != nil {
		exitError := &exec.ExitError{}
		if errors.As(runError, &exitError) {
			return ExecutionResult{
				StandardOutput: standardOutput,
				StandardError:  standardError,
				ExitCode:       exitError.ExitCode(),
			}, nil
		}
		return ExecutionResult{}, runError
	}

	return ExecutionResult{
		StandardOutput: standardOutput,
		StandardError:  standardError,
		ExitCode:       0,
	}, nil
}
