package backport_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/prflow/internal/backport"
)

func writeTargetsFile(testInstance *testing.T, contents string) string {
	testInstance.Helper()

	filePath := filepath.Join(testInstance.TempDir(), "targets")
	require.NoError(testInstance, os.WriteFile(filePath, []byte(contents), 0o600))

	return filePath
}

func TestResolveTargetsPrecedence(testInstance *testing.T) {
	targetsFilePath := writeTargetsFile(testInstance, "release-3\nrelease-4\n")

	testCases := []struct {
		name              string
		explicitTargets   []string
		configuredTargets []string
		targetsFilePath   string
		expectedTargets   []string
	}{
		{
			name:              "explicit_targets_win",
			explicitTargets:   []string{"release-1"},
			configuredTargets: []string{"release-2"},
			targetsFilePath:   targetsFilePath,
			expectedTargets:   []string{"release-1"},
		},
		{
			name:              "configured_targets_beat_file",
			configuredTargets: []string{"release-2"},
			targetsFilePath:   targetsFilePath,
			expectedTargets:   []string{"release-2"},
		},
		{
			name:            "file_targets_used_last",
			targetsFilePath: targetsFilePath,
			expectedTargets: []string{"release-3", "release-4"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			resolvedTargets, resolutionError := backport.ResolveTargets(testCase.explicitTargets, testCase.configuredTargets, testCase.targetsFilePath)
			require.NoError(testInstance, resolutionError)
			require.Equal(testInstance, testCase.expectedTargets, resolvedTargets)
		})
	}
}

func TestResolveTargetsSkipsCommentsAndBlankLines(testInstance *testing.T) {
	targetsFilePath := writeTargetsFile(testInstance, "# maintained release lines\nrelease-1\n\n  release-2  \n# retired: release-0\n")

	resolvedTargets, resolutionError := backport.ResolveTargets(nil, nil, targetsFilePath)
	require.NoError(testInstance, resolutionError)
	require.Equal(testInstance, []string{"release-1", "release-2"}, resolvedTargets)
}

func TestResolveTargetsReportsEmptyOutcome(testInstance *testing.T) {
	_, resolutionError := backport.ResolveTargets(nil, nil, "")
	require.ErrorIs(testInstance, resolutionError, backport.ErrNoTargets)
}

func TestResolveTargetsReportsUnreadableFile(testInstance *testing.T) {
	missingPath := filepath.Join(testInstance.TempDir(), "absent")

	_, resolutionError := backport.ResolveTargets(nil, nil, missingPath)
	require.Error(testInstance, resolutionError)
	require.NotErrorIs(testInstance, resolutionError, backport.ErrNoTargets)
}

func TestResolveTargetsTreatsEmptyFileAsNoTargets(testInstance *testing.T) {
	targetsFilePath := writeTargetsFile(testInstance, "# nothing maintained right now\n")

	_, resolutionError := backport.ResolveTargets(nil, nil, targetsFilePath)
	require.ErrorIs(testInstance, resolutionError, backport.ErrNoTargets)
}
