package flow

import (
	"fmt"

	"github.com/codereader/readerctl/internal/api"
)

// Interaction is a pending request for human input. At most one exists per
// run; it is cleared the instant a response is sent.
type Interaction struct {
	// Kind is the backend call-to-action that produced this request.
	Kind string

	// Prompt is the message shown to the user.
	Prompt string

	// Understanding, FileName and NextFile are set for user_feedback
	// requests: the analysis under review, the file it belongs to, and the
	// backend's suggestion for what to analyze next.
	Understanding string
	FileName      string
	NextFile      *api.NextFile

	// Result is set for finish requests.
	Result *Result
}

// FileUnderstanding pairs a filename with its analysis summary.
type FileUnderstanding struct {
	Filename      string `json:"filename"`
	Understanding string `json:"understanding"`
}

// Result is the aggregate outcome of a finished run.
type Result struct {
	FileUnderstandings []FileUnderstanding `json:"fileUnderstandings"`
	ReducedOutput      string              `json:"reducedOutput"`
}

// Static prompts for interaction requests.
const (
	improveInputPrompt = "Try making the main goal more specific, or name the areas of the codebase you care about most."
	finishPrompt       = "Analysis complete. All selected files have been processed."
)

// deriveState carries the prior-tick discriminators that event derivation
// compares against. Only these fields matter; snapshots are never diffed
// structurally.
type deriveState struct {
	lastCallToAction string
	lastMessage      string
}

// events is the outcome of applying one snapshot: zero or more new log
// messages, at most one new interaction request, and a terminal signal.
type events struct {
	messages    []string
	interaction *Interaction
	terminal    bool
}

// deriveEvents turns a fresh snapshot into UI-facing events. It is a pure
// function of the previous discriminators and the new snapshot.
func deriveEvents(prev deriveState, snap *api.StatusSnapshot) events {
	var ev events
	if snap == nil {
		return ev
	}

	if snap.CurrentFile != nil && snap.CurrentFile.Name != "" {
		msg := fmt.Sprintf("Analyzing %s", snap.CurrentFile.Name)
		// Suppress consecutive duplicates only.
		if msg != prev.lastMessage {
			ev.messages = append(ev.messages, msg)
			prev.lastMessage = msg
		}
	}

	// A repeated identical call-to-action produces no new interaction; the
	// comparison is kind-only.
	if snap.CallToAction != "" && snap.CallToAction != prev.lastCallToAction {
		switch snap.CallToAction {
		case api.ActionImproveBasicInput:
			ev.messages = append(ev.messages, "The analyzer needs more input to continue.")
			ev.interaction = &Interaction{
				Kind:   api.ActionImproveBasicInput,
				Prompt: improveInputPrompt,
			}

		case api.ActionUserFeedback:
			req := &Interaction{
				Kind:   api.ActionUserFeedback,
				Prompt: "Review the analysis and accept, reject, or refine it.",
			}
			if snap.CurrentFile != nil {
				req.FileName = snap.CurrentFile.Name
				if snap.CurrentFile.Analysis != nil {
					req.Understanding = snap.CurrentFile.Analysis.Understanding
				}
			}
			req.NextFile = snap.NextFile
			ev.messages = append(ev.messages, fmt.Sprintf("Review requested for %s", req.FileName))
			ev.interaction = req

		case api.ActionFinish:
			ev.messages = append(ev.messages, "Analysis complete.")
			ev.interaction = &Interaction{
				Kind:   api.ActionFinish,
				Prompt: finishPrompt,
				Result: aggregateResult(snap),
			}
			ev.terminal = true
		}
	}

	// Completion stops polling even when no finish call-to-action was ever
	// observed.
	if snap.Completed {
		ev.terminal = true
	}

	return ev
}

// aggregateResult collects every file with a non-empty understanding plus
// the reduced output text.
func aggregateResult(snap *api.StatusSnapshot) *Result {
	res := &Result{ReducedOutput: snap.ReducedOutput}
	if snap.Basic == nil {
		return res
	}
	for _, f := range snap.Basic.Files {
		if f.Understanding == "" {
			continue
		}
		res.FileUnderstandings = append(res.FileUnderstandings, FileUnderstanding{
			Filename:      f.Path,
			Understanding: f.Understanding,
		})
	}
	return res
}
