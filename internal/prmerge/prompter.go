package prmerge

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	affirmativeShortAnswerConstant = "y"
	affirmativeLongAnswerConstant  = "yes"
)

// ConfirmationPrompter asks the operator a yes/no question.
type ConfirmationPrompter interface {
	Confirm(prompt string) (bool, error)
}

// IOConfirmationPrompter reads confirmations line by line from a reader.
//
// An empty answer counts as consent: merging is the expected outcome of the
// command, so only an explicit non-affirmative answer declines.
type IOConfirmationPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewIOConfirmationPrompter builds a prompter over the given streams.
func NewIOConfirmationPrompter(inputReader io.Reader, outputWriter io.Writer) *IOConfirmationPrompter {
	return &IOConfirmationPrompter{reader: bufio.NewReader(inputReader), writer: outputWriter}
}

// Confirm writes the prompt and interprets the next input line. Blank, "y",
// and "yes" answers (case-insensitive) consent; anything else declines.
func (prompter *IOConfirmationPrompter) Confirm(prompt string) (bool, error) {
	if _, writeError := fmt.Fprint(prompter.writer, prompt); writeError != nil {
		return false, writeError
	}

	answerLine, readError := prompter.reader.ReadString('\n')
	if readError != nil && readError != io.EOF {
		return false, readError
	}

	normalizedAnswer := strings.ToLower(strings.TrimSpace(answerLine))
	switch normalizedAnswer {
	case "", affirmativeShortAnswerConstant, affirmativeLongAnswerConstant:
		return true, nil
	default:
		return false, nil
	}
}
