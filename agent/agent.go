// Package agent implements an assistant answering questions about a trade
// book with a Gemini model. The model reads the book through functions served
// by a Library.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// Agent is the AI assistant that handles the chat session.
type Agent struct {
	w       io.Writer
	r       *bufio.Reader
	Analyst *Expert
	// Print writes an answer, markdown formatted, to w.
	Print func(w io.Writer, answer string)
}

// New creates an Agent talking with analyst, writing its output to w and
// reading user input from r.
func New(w io.Writer, r io.Reader, analyst *Expert) *Agent {
	return &Agent{
		w:       w,
		r:       bufio.NewReader(r),
		Analyst: analyst,
		Print:   func(w io.Writer, answer string) { fmt.Fprintln(w, answer) },
	}
}

const prompt = "assist> "

// Run starts the interactive session. The prompts are asked first, as if
// typed by the user. The session ends on "bye" or at the end of the input.
func (a *Agent) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if a.Analyst.chat == nil {
		if err := a.Analyst.Start(ctx, client); err != nil {
			return err
		}
	}

	fmt.Fprintln(a.w, "Welcome to the tradebook assistant. Type 'bye' to exit.")

	for {
		fmt.Fprint(a.w, prompt)
		var input string

		// Flush prompts from the list and then ask for the user.
		if len(prompts) > 0 {
			input, prompts = prompts[0], prompts[1:]
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			fmt.Fprintln(a.w, input)
		} else {
			var err error
			input, err = a.r.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
		}

		input = strings.TrimSpace(input)
		switch input {
		case "":
			continue
		case "bye":
			return nil
		}

		content, err := a.Analyst.Ask(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		a.Print(a.w, Text(content))
	}
}

// Once asks a single question and returns the answer.
func (a *Agent) Once(ctx context.Context, client *genai.Client, question string) (string, error) {
	if a.Analyst.chat == nil {
		if err := a.Analyst.Start(ctx, client); err != nil {
			return "", err
		}
	}
	content, err := a.Analyst.Ask(ctx, &genai.Part{Text: question})
	if err != nil {
		return "", err
	}
	return Text(content), nil
}
