// Package ui holds the terminal-facing pieces of gpr.
//
// ConsoleCommandEventLogger turns git and gh lifecycle events into short
// progress lines, HuhReviewerPicker offers organization members in a
// multi-select, and PromptUIConfirmer shows the pull request summary before
// anything is pushed.
package ui
