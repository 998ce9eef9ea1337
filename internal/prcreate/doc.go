// Package prcreate implements the create-pr command: pushing a topic branch
// and opening a pull request for it against a merge branch.
package prcreate
