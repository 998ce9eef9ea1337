package backport

import (
	"fmt"
	"os"
	"strings"
)

const (
	targetsFileCommentPrefixConstant = "#"
	targetsFileReadErrorTemplate     = "unable to read targets file %s: %w"
)

// ResolveTargets determines the backport target branches for one invocation.
//
// Precedence: explicit command-line targets win, then the configured target
// list, then the configured targets file. Resolution failures and an empty
// outcome are both reported as errors so the workflow never runs against an
// accidental empty set.
func ResolveTargets(explicitTargets []string, configuredTargets []string, targetsFilePath string) ([]string, error) {
	if resolved := normalizeTargets(explicitTargets); len(resolved) > 0 {
		return resolved, nil
	}

	if resolved := normalizeTargets(configuredTargets); len(resolved) > 0 {
		return resolved, nil
	}

	trimmedPath := strings.TrimSpace(targetsFilePath)
	if len(trimmedPath) > 0 {
		fileTargets, readError := readTargetsFile(trimmedPath)
		if readError != nil {
			return nil, readError
		}
		if len(fileTargets) > 0 {
			return fileTargets, nil
		}
	}

	return nil, ErrNoTargets
}

// readTargetsFile parses a newline-separated branch list. Blank lines and
// lines starting with "#" are skipped.
func readTargetsFile(filePath string) ([]string, error) {
	fileContents, readError := os.ReadFile(filePath)
	if readError != nil {
		return nil, fmt.Errorf(targetsFileReadErrorTemplate, filePath, readError)
	}

	return normalizeTargets(strings.Split(string(fileContents), "\n")), nil
}

func normalizeTargets(candidates []string) []string {
	normalized := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		trimmedCandidate := strings.TrimSpace(candidate)
		if len(trimmedCandidate) == 0 {
			continue
		}
		if strings.HasPrefix(trimmedCandidate, targetsFileCommentPrefixConstant) {
			continue
		}
		normalized = append(normalized, trimmedCandidate)
	}
	return normalized
}
