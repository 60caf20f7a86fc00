// Package pullrequest renders the title and body drafts presented in the editor.
package pullrequest
