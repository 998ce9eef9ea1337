package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/prflow/cmd/cli"
)

const testConfigurationFileNameConstant = "config.yaml"

var expectedCommandNames = []string{
	"create-pr",
	"create-prs",
	"pull-requests",
	"merge",
}

func executeApplication(testInstance *testing.T, arguments ...string) (string, error) {
	testInstance.Helper()

	application := cli.NewApplication()

	outputBuffer := &bytes.Buffer{}
	rootCommand := application.RootCommand()
	rootCommand.SetOut(outputBuffer)
	rootCommand.SetErr(outputBuffer)
	rootCommand.SetArgs(arguments)
	rootCommand.SetContext(context.Background())

	executionError := application.Execute()

	return outputBuffer.String(), executionError
}

func TestApplicationRegistersAllCommands(testInstance *testing.T) {
	application := cli.NewApplication()

	registeredNames := map[string]bool{}
	for _, registeredCommand := range application.RootCommand().Commands() {
		registeredNames[registeredCommand.Name()] = true
	}

	for _, expectedName := range expectedCommandNames {
		require.True(testInstance, registeredNames[expectedName], expectedName)
	}
}

func TestApplicationShowsHelpWithoutArguments(testInstance *testing.T) {
	commandOutput, executionError := executeApplication(testInstance)
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, commandOutput, "Usage:")
	for _, expectedName := range expectedCommandNames {
		require.Contains(testInstance, commandOutput, expectedName)
	}
}

func TestApplicationAcceptsHelpVerbAndAlias(testInstance *testing.T) {
	for _, helpVerb := range []string{"help", "h"} {
		testInstance.Run(helpVerb, func(testInstance *testing.T) {
			commandOutput, executionError := executeApplication(testInstance, helpVerb)
			require.NoError(testInstance, executionError)
			require.Contains(testInstance, commandOutput, "Usage:")
		})
	}
}

func TestApplicationHelpAliasDescribesSubcommand(testInstance *testing.T) {
	commandOutput, executionError := executeApplication(testInstance, "h", "merge")
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, commandOutput, "merge <pull-request-id>")
}

func TestApplicationLoadsConfigurationFile(testInstance *testing.T) {
	configurationDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(configurationDirectory, testConfigurationFileNameConstant)
	configurationContents := "common:\n  log_level: error\n  log_format: console\nserver:\n  base_url: https://bitbucket.example.com\n  project_key: OPS\n  repository_slug: widget\n  username: reviewer\n"
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(configurationContents), 0o600))

	commandOutput, executionError := executeApplication(testInstance, "--config", configurationFilePath)
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, commandOutput, "Usage:")
}

func TestApplicationRejectsInvalidLogFormat(testInstance *testing.T) {
	_, executionError := executeApplication(testInstance, "--log-format", "binary")
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "unable to create logger")
}
