// Package gitrepo contains helpers for interrogating and manipulating Git repositories.
//
// It exposes RepositoryManager for branch, commit-range, cherry-pick, and push
// operations against a local clone, expressed over a narrow GitExecutor
// interface so callers can substitute fakes in tests.
package gitrepo
