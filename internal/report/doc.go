// Package report renders what an edit session changed: unified diffs for
// text files and a one-line notice for binary content.
package report
