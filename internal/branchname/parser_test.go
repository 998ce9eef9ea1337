package branchname_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/prflow/internal/branchname"
)

func TestParse(testInstance *testing.T) {
	testCases := []struct {
		name            string
		branchName      string
		expectedTicket  string
		expectedSubject string
	}{
		{
			name:            "standard_topic_branch",
			branchName:      "feature/JIRA-123-fix-the-widget",
			expectedTicket:  "JIRA-123",
			expectedSubject: "fix the widget",
		},
		{
			name:            "nested_path_prefix",
			branchName:      "a/b/TICKET-123-some-words",
			expectedTicket:  "TICKET-123",
			expectedSubject: "some words",
		},
		{
			name:            "no_path_prefix",
			branchName:      "JIRA-7-single",
			expectedTicket:  "JIRA-7",
			expectedSubject: "single",
		},
		{
			name:            "ticket_without_subject",
			branchName:      "bugfix/JIRA-9",
			expectedTicket:  "JIRA-9",
			expectedSubject: "",
		},
		{
			name:            "no_dash_structure",
			branchName:      "main",
			expectedTicket:  "main",
			expectedSubject: "",
		},
		{
			name:            "empty_branch_name",
			branchName:      "",
			expectedTicket:  "",
			expectedSubject: "",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			components := branchname.Parse(testCase.branchName)
			require.Equal(testInstance, testCase.expectedTicket, components.Ticket)
			require.Equal(testInstance, testCase.expectedSubject, components.Subject)
		})
	}
}

func TestPullRequestTitle(testInstance *testing.T) {
	testCases := []struct {
		name          string
		branchName    string
		expectedTitle string
	}{
		{
			name:          "ticket_and_subject",
			branchName:    "feature/JIRA-123-fix-the-widget",
			expectedTitle: "JIRA-123: fix the widget",
		},
		{
			name:          "malformed_name_degrades",
			branchName:    "main",
			expectedTitle: "main",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedTitle, branchname.PullRequestTitle(testCase.branchName))
		})
	}
}
