// Package editor hands a draft to the user's text editor and reads back the result.
package editor
