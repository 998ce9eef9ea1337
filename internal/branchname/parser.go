package branchname

import (
	"fmt"
	"strings"
)

const (
	pathSeparatorConstant       = "/"
	dashSeparatorConstant       = "-"
	wordSeparatorConstant       = " "
	ticketFieldCountConstant    = 2
	titleTemplateConstant       = "%s: %s"
	titleWithoutSubjectConstant = "%s"
)

// Components holds the ticket reference and human-readable subject derived from a branch name.
type Components struct {
	Ticket  string
	Subject string
}

// Parse splits a topic branch name of the form
// <prefix>/<TICKET>-<NUM>-<subject-words-with-dashes> into its components.
//
// Everything up to and including the last path separator is stripped; the
// first two dash-delimited fields form the ticket reference and the remaining
// fields, dashes replaced by spaces, form the subject. Malformed names degrade
// into a best-effort result rather than failing.
func Parse(branchName string) Components {
	strippedName := branchName
	if separatorIndex := strings.LastIndex(branchName, pathSeparatorConstant); separatorIndex >= 0 {
		strippedName = branchName[separatorIndex+len(pathSeparatorConstant):]
	}

	dashFields := strings.Split(strippedName, dashSeparatorConstant)
	if len(dashFields) <= ticketFieldCountConstant {
		return Components{Ticket: strippedName}
	}

	ticketReference := strings.Join(dashFields[:ticketFieldCountConstant], dashSeparatorConstant)
	subjectText := strings.Join(dashFields[ticketFieldCountConstant:], wordSeparatorConstant)

	return Components{Ticket: ticketReference, Subject: subjectText}
}

// PullRequestTitle renders the display title "<ticket>: <subject>" for a branch name.
func PullRequestTitle(branchName string) string {
	components := Parse(branchName)
	if len(components.Subject) == 0 {
		return fmt.Sprintf(titleWithoutSubjectConstant, components.Ticket)
	}
	return fmt.Sprintf(titleTemplateConstant, components.Ticket, components.Subject)
}
