package backport_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/prflow/internal/backport"
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

func newScriptedGitExecutor() *scriptedGitExecutor {
	return &scriptedGitExecutor{outputsByPrefix: map[string]string{
		"rev-parse": testTopicBranchConstant + "\n",
		"rev-list":  testFirstCommitConstant + "\n" + testSecondCommitConstant + "\n",
	}}
}

func TestCommandMapsArgumentsOntoWorkflow(testInstance *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		configuration   backport.CommandConfiguration
		expectedTargets []string
	}{
		{
			name:            "explicit_targets",
			arguments:       []string{testTopicBranchConstant, testBaseBranchConstant, testFirstTargetConstant, testSecondTargetConstant},
			expectedTargets: []string{testFirstTargetConstant, testSecondTargetConstant},
		},
		{
			name:            "configured_targets",
			arguments:       []string{testTopicBranchConstant, testBaseBranchConstant},
			configuration:   backport.CommandConfiguration{Targets: []string{testFirstTargetConstant}},
			expectedTargets: []string{testFirstTargetConstant},
		},
		{
			name:            "topic_defaults_to_current_branch",
			arguments:       []string{testBaseBranchConstant},
			configuration:   backport.CommandConfiguration{Targets: []string{testFirstTargetConstant}},
			expectedTargets: []string{testFirstTargetConstant},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			publisher := &recordingPublisher{}
			configuration := testCase.configuration
			builder := backport.CommandBuilder{
				ConfigurationProvider: func() backport.CommandConfiguration {
					return configuration
				},
				GitExecutor: newScriptedGitExecutor(),
				Publisher:   publisher,
			}

			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)

			outputBuffer := &bytes.Buffer{}
			command.SetOut(outputBuffer)
			command.SetErr(outputBuffer)
			command.SetArgs(testCase.arguments)
			command.SetContext(context.Background())

			require.NoError(testInstance, command.Execute())

			require.Len(testInstance, publisher.publishedOptions, len(testCase.expectedTargets))
			for optionIndex, expectedTarget := range testCase.expectedTargets {
				expectedOptions := prcreate.Options{
					TopicBranch: testTopicBranchConstant + "-" + expectedTarget,
					MergeBranch: expectedTarget,
				}
				require.Equal(testInstance, expectedOptions, publisher.publishedOptions[optionIndex])
				require.Contains(testInstance, outputBuffer.String(), expectedOptions.TopicBranch+" -> "+expectedTarget)
			}
		})
	}
}

func TestCommandFailsWithoutResolvedTargets(testInstance *testing.T) {
	builder := backport.CommandBuilder{
		GitExecutor: newScriptedGitExecutor(),
		Publisher:   &recordingPublisher{},
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{testTopicBranchConstant, testBaseBranchConstant})
	command.SetContext(context.Background())

	require.ErrorIs(testInstance, command.Execute(), backport.ErrNoTargets)
}
