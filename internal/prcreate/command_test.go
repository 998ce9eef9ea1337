package prcreate_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/prflow/internal/execshell"
	"github.com/temirov/prflow/internal/prcreate"
)

type scriptedGitExecutor struct {
	outputsByPrefix map[string]string
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	if len(details.Arguments) > 0 {
		if output, exists := executor.outputsByPrefix[details.Arguments[0]]; exists {
			return execshell.ExecutionResult{StandardOutput: output}, nil
		}
	}
	return execshell.ExecutionResult{}, nil
}

func TestCommandMapsArgumentsAndPrintsResult(testInstance *testing.T) {
	testCases := []struct {
		name                string
		arguments           []string
		expectedSource      string
		expectedDestination string
	}{
		{
			name:                "merge_branch_only",
			arguments:           []string{testMergeBranchConstant},
			expectedSource:      testTopicBranchConstant,
			expectedDestination: testMergeBranchConstant,
		},
		{
			name:                "topic_and_merge_branch",
			arguments:           []string{"feature/JIRA-9-other", testMergeBranchConstant},
			expectedSource:      "feature/JIRA-9-other",
			expectedDestination: testMergeBranchConstant,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			creator := &recordingCreator{}
			builder := prcreate.CommandBuilder{
				GitExecutor: &scriptedGitExecutor{outputsByPrefix: map[string]string{
					"rev-parse": testTopicBranchConstant + "\n",
					"log":       testCommitMessageConstant + "\n",
				}},
				PullRequestCreator: creator,
			}

			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)

			outputBuffer := &bytes.Buffer{}
			command.SetOut(outputBuffer)
			command.SetErr(outputBuffer)
			command.SetArgs(testCase.arguments)
			command.SetContext(context.Background())

			require.NoError(testInstance, command.Execute())

			require.Len(testInstance, creator.submittedDrafts, 1)
			require.Equal(testInstance, testCase.expectedSource, creator.submittedDrafts[0].SourceBranch)
			require.Equal(testInstance, testCase.expectedDestination, creator.submittedDrafts[0].TargetBranch)
			require.Contains(testInstance, outputBuffer.String(), "Created pull request #1")
		})
	}
}

func TestCommandRejectsMissingArguments(testInstance *testing.T) {
	builder := prcreate.CommandBuilder{PullRequestCreator: &recordingCreator{}}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetArgs(nil)
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})

	require.Error(testInstance, command.Execute())
}
