// Package backport implements the create-prs command: replaying a topic
// branch's unique commits onto a set of target branches and opening one pull
// request per target.
//
// The orchestrator drives a strictly sequential per-target workflow over the
// shared working tree: check out the topic branch, create the backport branch,
// cherry-pick the precomputed commit range, submit the pull request. Any
// failure aborts the remaining targets and the topic branch is checked out
// again before returning.
package backport
