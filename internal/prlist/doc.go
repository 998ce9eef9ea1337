// Package prlist implements the pull-requests command: a table of the
// invoking user's open pull requests together with their approval state.
package prlist
