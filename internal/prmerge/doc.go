// Package prmerge implements the merge command: verifying a pull request is
// mergeable, confirming with the operator, and merging it with the version
// token fetched during the same invocation.
package prmerge
