package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/temirov/gpr/internal/execshell"
	"github.com/temirov/gpr/internal/pullrequest"
)

const (
	// VisualEnvironmentVariable names the preferred full-screen editor.
	VisualEnvironmentVariable = "VISUAL"
	// EditorEnvironmentVariable names the fallback editor.
	EditorEnvironmentVariable = "EDITOR"
	// DefaultEditorCommand is used when neither configuration nor environment name an editor.
	DefaultEditorCommand = "vi"

	temporaryFilePatternConstant   = "gpr-*.md"
	executorMissingMessageConstant = "editor command executor not configured"
	commandMissingMessageConstant  = "editor command is empty"
	editErrorTemplateConstant      = "%s: %v"
	createStageConstant            = "failed to create edit buffer"
	writeStageConstant             = "failed to seed edit buffer"
	launchStageConstant            = "failed to run editor"
	readStageConstant              = "failed to read edited buffer"
)

var (
	// ErrExecutorNotConfigured indicates the editor was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)
	// ErrCommandMissing indicates the resolved editor command is empty.
	ErrCommandMissing = errors.New(commandMissingMessageConstant)
)

// EditError reports a failure to prepare, launch, or read back the editor buffer.
type EditError struct {
	Stage string
	Cause error
}

// Error describes the failure.
func (editError EditError) Error() string {
	return fmt.Sprintf(editErrorTemplateConstant, editError.Stage, editError.Cause)
}

// Unwrap exposes the underlying failure.
func (editError EditError) Unwrap() error {
	return editError.Cause
}

// CommandExecutor runs an arbitrary command.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// EnvironmentLookup reads a variable from an injected environment.
type EnvironmentLookup interface {
	Value(name string) string
}

// ResolveCommand picks the configured editor, then VISUAL, then EDITOR, then vi, and splits it into arguments.
func ResolveCommand(configured string, environment EnvironmentLookup) []string {
	candidates := []string{configured}
	if environment != nil {
		candidates = append(candidates, environment.Value(VisualEnvironmentVariable), environment.Value(EditorEnvironmentVariable))
	}
	for _, candidate := range candidates {
		if fields := strings.Fields(candidate); len(fields) > 0 {
			return fields
		}
	}
	return []string{DefaultEditorCommand}
}

// Editor runs an editor command against a temporary file.
type Editor struct {
	executor           CommandExecutor
	command            []string
	temporaryDirectory string
}

// Option customizes an Editor.
type Option func(*Editor)

// WithTemporaryDirectory places edit buffers in directory instead of the system default.
func WithTemporaryDirectory(directory string) Option {
	return func(editor *Editor) {
		editor.temporaryDirectory = directory
	}
}

// New constructs an Editor; command is typically the result of ResolveCommand.
func New(executor CommandExecutor, command []string, options ...Option) (*Editor, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if len(command) == 0 || len(strings.TrimSpace(command[0])) == 0 {
		return nil, ErrCommandMissing
	}
	editor := &Editor{executor: executor, command: append([]string{}, command...)}
	for _, option := range options {
		option(editor)
	}
	return editor, nil
}

// Edit seeds a temporary file with initial, waits for the editor to exit, and returns the contents without the first line.
func (editor *Editor) Edit(executionContext context.Context, initial string) (string, error) {
	buffer, createError := os.CreateTemp(editor.temporaryDirectory, temporaryFilePatternConstant)
	if createError != nil {
		return "", EditError{Stage: createStageConstant, Cause: createError}
	}
	bufferPath := buffer.Name()
	defer os.Remove(bufferPath)

	if _, writeError := buffer.WriteString(initial); writeError != nil {
		_ = buffer.Close()
		return "", EditError{Stage: writeStageConstant, Cause: writeError}
	}
	if closeError := buffer.Close(); closeError != nil {
		return "", EditError{Stage: writeStageConstant, Cause: closeError}
	}

	arguments := append(append([]string{}, editor.command[1:]...), bufferPath)
	command := execshell.ShellCommand{
		Name:    execshell.CommandName(editor.command[0]),
		Details: execshell.CommandDetails{Arguments: arguments},
	}
	if _, executionError := editor.executor.Execute(executionContext, command); executionError != nil {
		return "", EditError{Stage: launchStageConstant, Cause: executionError}
	}

	contents, readError := os.ReadFile(bufferPath)
	if readError != nil {
		return "", EditError{Stage: readStageConstant, Cause: readError}
	}
	return pullrequest.StripInstructionLine(string(contents)), nil
}
