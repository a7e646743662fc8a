// Package setup drives the interactive configuration of a plugin.
package setup

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
)

// Question describes one prompt.
type Question struct {
	Type    string // only "input" is supported
	Name    string // key of the answer
	Message string
	Default string
}

// Answers maps Question.Name to what the user typed.
type Answers map[string]string

// Prompter asks a single question.
type Prompter interface {
	Prompt(ctx context.Context, q Question) (string, error)
}

// Flow runs a plugin's setup and returns its answers.
type Flow func(ctx context.Context, p Prompter) (Answers, error)

// Error is returned when a flow is aborted or cannot collect an answer.
type Error struct {
	Question string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("setup aborted at %q: %v", e.Question, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Ask returns a Flow that asks questions in order. Answers are stored
// exactly as the prompter returned them.
func Ask(questions ...Question) Flow {
	return func(ctx context.Context, p Prompter) (Answers, error) {
		answers := make(Answers, len(questions))
		for _, q := range questions {
			if err := ctx.Err(); err != nil {
				return nil, &Error{Question: q.Name, Err: err}
			}
			a, err := p.Prompt(ctx, q)
			if err != nil {
				return nil, &Error{Question: q.Name, Err: err}
			}
			answers[q.Name] = a
		}
		return answers, nil
	}
}

// ErrInterrupted is returned by TerminalPrompter when the user presses Ctrl-C.
var ErrInterrupted = errors.New("interrupted")

// readLine shows one text prompt. onInterrupt is called instead of exiting
// the process when the prompt is interrupted.
var readLine = func(q Question, onInterrupt func()) (string, error) {
	input := pterm.DefaultInteractiveTextInput.
		WithDefaultText(q.Message).
		WithOnInterruptFunc(onInterrupt)
	if q.Default != "" {
		input = input.WithDefaultValue(q.Default)
	}
	return input.Show()
}

// TerminalPrompter reads answers from the terminal.
type TerminalPrompter struct{}

func (TerminalPrompter) Prompt(_ context.Context, q Question) (string, error) {
	if q.Type != "" && q.Type != "input" {
		return "", errors.Newf("unsupported question type %q", q.Type)
	}

	interrupted := false
	answer, err := readLine(q, func() { interrupted = true })
	if interrupted {
		return "", ErrInterrupted
	}
	return answer, err
}
