// Package cli builds the gpr command: it loads layered configuration, creates the logger,
// wires the git, tracker, editor, reviewer, and forge collaborators, and runs the pull request pipeline.
package cli
