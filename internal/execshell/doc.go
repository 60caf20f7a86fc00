// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging and standard error policies via ShellExecutor,
// exposes OSCommandRunner for captured process execution and
// InteractiveCommandRunner for terminal-attached programs such as editors, and
// defines the abstractions gpr uses to run git and gh in a testable manner.
package execshell
