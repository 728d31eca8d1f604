package flow

import (
	"context"
	"fmt"

	"github.com/codereader/readerctl/internal/api"
)

// ResponseKind discriminates the human response variants.
type ResponseKind int

const (
	// ResponseContinue acknowledges a finish/complete prompt.
	ResponseContinue ResponseKind = iota
	// ResponseFeedback carries an accept/reject/refine/finish decision on
	// the current file's analysis.
	ResponseFeedback
	// ResponseText is a free-text answer keyed by the outstanding request
	// kind.
	ResponseText
)

// Response is a human decision to forward to the backend.
type Response struct {
	Kind     ResponseKind
	Feedback api.UserFeedbackData // Kind == ResponseFeedback
	Text     string               // Kind == ResponseText
}

// defaultAcceptReason is sent when an accept carries no caller-supplied
// reason.
const defaultAcceptReason = "User approved the analysis"

// buildInput translates a human response into a typed backend input.
// pendingKind is the kind of the outstanding interaction request.
func buildInput(pendingKind string, resp Response) (api.UserInput, error) {
	switch resp.Kind {
	case ResponseContinue:
		return api.UserInput{InputType: api.ActionFinish}, nil

	case ResponseFeedback:
		fb := resp.Feedback
		switch fb.Action {
		case api.FeedbackAccept:
			if fb.Reason == "" {
				fb.Reason = defaultAcceptReason
			}
		case api.FeedbackReject, api.FeedbackFinish:
		case api.FeedbackRefine:
			if fb.UserUnderstanding == "" {
				return api.UserInput{}, fmt.Errorf("refine requires an understanding")
			}
		default:
			return api.UserInput{}, fmt.Errorf("unknown feedback action: %q", fb.Action)
		}
		if fb.Action != api.FeedbackRefine {
			// userUnderstanding is refine-only.
			fb.UserUnderstanding = ""
		}
		return api.UserInput{InputType: api.ActionUserFeedback, InputData: fb}, nil

	case ResponseText:
		// A finish request sends an empty payload regardless of text.
		if pendingKind == api.ActionFinish {
			return api.UserInput{InputType: api.ActionFinish}, nil
		}
		return api.UserInput{
			InputType: pendingKind,
			InputData: api.TextResponseData{Response: resp.Text},
		}, nil

	default:
		return api.UserInput{}, fmt.Errorf("unknown response kind: %d", resp.Kind)
	}
}

// Respond translates a human decision into a typed backend input, sends
// it, and resumes or stops polling depending on the input type. It
// requires an active run and an outstanding interaction request. On send
// failure the pending request is kept so the user can retry.
func (s *Session) Respond(ctx context.Context, resp Response) error {
	s.mu.Lock()
	if s.runID == "" {
		s.mu.Unlock()
		return ErrNoActiveFlow
	}
	if s.pending == nil {
		s.mu.Unlock()
		return ErrNoActiveRequest
	}
	pendingKind := s.pending.Kind
	runID := s.runID
	s.mu.Unlock()

	input, err := buildInput(pendingKind, resp)
	if err != nil {
		return err
	}

	sendErr := s.gw.SendInput(ctx, runID, input)

	s.mu.Lock()
	defer s.mu.Unlock()
	if sendErr != nil {
		s.appendMessageLocked(fmt.Sprintf("Failed to send response: %v", sendErr))
		s.notifyLocked()
		return fmt.Errorf("failed to send response: %w", sendErr)
	}

	s.pending = nil
	s.appendMessageLocked("Response sent to analyzer.")

	// A finished run never polls again; anything else resumes polling so
	// flow state stays fresh.
	if input.InputType == api.ActionFinish {
		s.stopPollingLocked()
		s.phase = PhaseCompleted
	} else {
		s.phase = PhasePolling
		s.startPollingLocked(runID)
	}
	s.notifyLocked()
	return nil
}
