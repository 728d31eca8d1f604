package tui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/codereader/readerctl/internal/api"
	"github.com/codereader/readerctl/internal/flow"
)

// Prompter reads human decisions from an input stream, line by line.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter creates a Prompter reading from in and echoing prompts to
// out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// ReadLine prints the prompt and reads one trimmed line. Returns io.EOF
// when the input stream ends.
func (p *Prompter) ReadLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// ReadResponse collects a human decision for the given interaction
// request. For user_feedback requests it offers accept/reject/refine/
// finish; for everything else it reads free text (empty input
// acknowledges finish prompts).
func (p *Prompter) ReadResponse(req *flow.Interaction) (flow.Response, error) {
	if req.Kind != api.ActionUserFeedback {
		if req.Kind == api.ActionFinish {
			if _, err := p.ReadLine("Press enter to close out the run: "); err != nil {
				return flow.Response{}, err
			}
			return flow.Response{Kind: flow.ResponseContinue}, nil
		}
		text, err := p.ReadLine("> ")
		if err != nil {
			return flow.Response{}, err
		}
		return flow.Response{Kind: flow.ResponseText, Text: text}, nil
	}

	for {
		choice, err := p.ReadLine("[a]ccept / [r]eject / re[f]ine / [d]one: ")
		if err != nil {
			return flow.Response{}, err
		}

		switch strings.ToLower(choice) {
		case "a", "accept", "":
			return flow.Response{
				Kind:     flow.ResponseFeedback,
				Feedback: api.UserFeedbackData{Action: api.FeedbackAccept},
			}, nil

		case "r", "reject":
			reason, err := p.ReadLine("Reason: ")
			if err != nil {
				return flow.Response{}, err
			}
			return flow.Response{
				Kind:     flow.ResponseFeedback,
				Feedback: api.UserFeedbackData{Action: api.FeedbackReject, Reason: reason},
			}, nil

		case "f", "refine":
			understanding, err := p.ReadLine("Your understanding: ")
			if err != nil {
				return flow.Response{}, err
			}
			nextFile, err := p.ReadLine("Next file (optional): ")
			if err != nil {
				return flow.Response{}, err
			}
			return flow.Response{
				Kind: flow.ResponseFeedback,
				Feedback: api.UserFeedbackData{
					Action:            api.FeedbackRefine,
					UserUnderstanding: understanding,
					NextFile:          nextFile,
				},
			}, nil

		case "d", "done", "finish":
			return flow.Response{
				Kind:     flow.ResponseFeedback,
				Feedback: api.UserFeedbackData{Action: api.FeedbackFinish},
			}, nil

		default:
			fmt.Fprintf(p.out, "Unknown choice %q\n", choice)
		}
	}
}
