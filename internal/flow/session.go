package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/codereader/readerctl/internal/api"
	"github.com/codereader/readerctl/internal/logging"
)

// Phase is the lifecycle phase of a Session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseStarting
	PhasePolling
	PhaseAwaitingInput
	PhaseCompleted
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseStarting:
		return "starting"
	case PhasePolling:
		return "polling"
	case PhaseAwaitingInput:
		return "awaiting-input"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// DefaultPollInterval is the period between status fetches.
const DefaultPollInterval = 5 * time.Second

// Sentinel errors returned by Respond.
var (
	ErrNoActiveFlow    = errors.New("no active flow")
	ErrNoActiveRequest = errors.New("no pending interaction request")
)

// Session is the client-side state machine for one analysis run. At most
// one polling session is active at a time; Start, Resume, Respond, Reset
// and Close are safe to call from any goroutine.
type Session struct {
	gw       api.Gateway
	log      *logging.Logger
	interval time.Duration
	updates  chan struct{}

	mu               sync.Mutex
	phase            Phase
	runID            string
	snapshot         *api.StatusSnapshot
	messages         []string
	pending          *Interaction
	lastCallToAction string

	polling  bool
	inFlight bool
	pollGen  uint64
	stopCh   chan struct{}
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithInterval overrides the poll period.
func WithInterval(interval time.Duration) SessionOption {
	return func(s *Session) {
		s.interval = interval
	}
}

// WithLogger sets the logger used for poll diagnostics.
func WithLogger(log *logging.Logger) SessionOption {
	return func(s *Session) {
		s.log = log
	}
}

// NewSession creates an idle Session backed by the given gateway.
func NewSession(gw api.Gateway, opts ...SessionOption) *Session {
	s := &Session{
		gw:       gw,
		log:      logging.Default(),
		interval: DefaultPollInterval,
		updates:  make(chan struct{}, 1),
		phase:    PhaseIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Updates returns a channel that receives a signal whenever session state
// changes. Signals are coalesced; consumers re-read the full state. The
// channel is never closed, not even by Close; consumers select on their
// own context to terminate.
func (s *Session) Updates() <-chan struct{} {
	return s.updates
}

// Start begins a new analysis run. It fails if a run is already active.
// On success the message log is seeded with a confirmation and polling
// begins with an immediate first fetch.
func (s *Session) Start(ctx context.Context, cfg api.AnalysisConfig) (string, error) {
	s.mu.Lock()
	if s.phase != PhaseIdle || s.runID != "" || s.polling {
		s.mu.Unlock()
		return "", fmt.Errorf("a run is already active; reset first")
	}
	s.phase = PhaseStarting
	s.notifyLocked()
	s.mu.Unlock()

	runID, err := s.gw.StartAnalysis(ctx, cfg)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.phase = PhaseIdle
		s.appendMessageLocked(fmt.Sprintf("Failed to start analysis: %v", err))
		return "", fmt.Errorf("failed to start analysis: %w", err)
	}

	s.runID = runID
	s.appendMessageLocked(fmt.Sprintf("Analysis started for %s (run %s)", cfg.RepoName, runID))
	s.phase = PhasePolling
	s.startPollingLocked(runID)
	s.notifyLocked()
	return runID, nil
}

// Resume re-enters polling for a previously started run without a
// starting phase. A completed session stays completed; watching a new
// run requires a Reset first.
func (s *Session) Resume(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.polling || s.phase == PhaseCompleted {
		return
	}
	s.runID = runID
	s.phase = PhasePolling
	s.appendMessageLocked(fmt.Sprintf("Resumed run %s", runID))
	s.startPollingLocked(runID)
	s.notifyLocked()
}

// StopPolling cancels the repeating poll. Idempotent; safe to call when
// already stopped. The run itself keeps going server-side.
func (s *Session) StopPolling() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopPollingLocked()
}

// Reset returns the session to the idle state: no run id, no snapshot,
// empty message log, no pending interaction. Idempotent.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopPollingLocked()
	s.phase = PhaseIdle
	s.runID = ""
	s.snapshot = nil
	s.messages = nil
	s.pending = nil
	s.lastCallToAction = ""
	s.notifyLocked()
}

// Close tears the session down. It takes the same stop path as an
// explicit StopPolling.
func (s *Session) Close() {
	s.StopPolling()
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// RunID returns the active run id, or "" when no run is active.
func (s *Session) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// Polling reports whether a polling session is active.
func (s *Session) Polling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polling
}

// Messages returns a copy of the message log.
func (s *Session) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

// Snapshot returns the most recent status snapshot, or nil.
func (s *Session) Snapshot() *api.StatusSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Pending returns the outstanding interaction request, or nil.
func (s *Session) Pending() *Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// startPollingLocked begins the repeating poll for runID. Calling it while
// already polling is a no-op. The first fetch is immediate.
func (s *Session) startPollingLocked(runID string) {
	if s.polling {
		return
	}
	s.polling = true
	s.inFlight = false
	s.pollGen++
	s.stopCh = make(chan struct{})
	go s.pollLoop(runID, s.pollGen, s.stopCh)
}

// stopPollingLocked cancels the poll timer and clears the polling flags.
// Bumping the generation invalidates any in-flight tick, so its late
// response is discarded.
func (s *Session) stopPollingLocked() {
	if !s.polling {
		return
	}
	s.polling = false
	s.inFlight = false
	s.pollGen++
	close(s.stopCh)
	s.stopCh = nil
}

// alive reports whether the polling session identified by gen is still
// current. Callers must hold the mutex.
func (s *Session) aliveLocked(gen uint64) bool {
	return s.polling && gen == s.pollGen
}

// pollLoop fetches the status snapshot immediately and then on every
// interval tick until stopped.
func (s *Session) pollLoop(runID string, gen uint64, stop <-chan struct{}) {
	s.tick(runID, gen)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick(runID, gen)
		}
	}
}

// tick performs one status fetch. If the previous fetch is still
// outstanding the tick is skipped entirely; the fetch is never queued.
func (s *Session) tick(runID string, gen uint64) {
	s.mu.Lock()
	if !s.aliveLocked(gen) {
		s.mu.Unlock()
		return
	}
	if s.inFlight {
		s.log.Debug("poll tick skipped, request in flight", "run", runID)
		s.mu.Unlock()
		return
	}
	s.inFlight = true
	s.mu.Unlock()

	snap, err := s.gw.FlowStatus(context.Background(), runID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.aliveLocked(gen) {
		// Stopped while the request was in flight; discard the result.
		return
	}
	s.inFlight = false

	if err != nil {
		s.handlePollErrorLocked(err)
		return
	}
	s.applySnapshotLocked(snap)
	s.notifyLocked()
}

// handlePollErrorLocked applies the polling error policy: not-found is
// terminal, everything else logs and continues on the next natural tick.
func (s *Session) handlePollErrorLocked(err error) {
	if isNotFound(err) {
		s.appendMessageLocked("Flow not found. The run may have expired or been deleted.")
		s.runID = ""
		s.snapshot = nil
		s.pending = nil
		s.stopPollingLocked()
		s.phase = PhaseIdle
		s.notifyLocked()
		return
	}
	s.log.Warn("status poll failed", "error", err)
	s.appendMessageLocked(fmt.Sprintf("Status check failed: %v", err))
	s.notifyLocked()
}

// applySnapshotLocked replaces the snapshot wholesale and folds the
// derived events into session state.
func (s *Session) applySnapshotLocked(snap *api.StatusSnapshot) {
	if snap == nil {
		// Run exists but has not published shared state yet.
		return
	}

	ev := deriveEvents(deriveState{
		lastCallToAction: s.lastCallToAction,
		lastMessage:      s.lastMessageLocked(),
	}, snap)

	s.snapshot = snap
	s.lastCallToAction = snap.CallToAction
	for _, msg := range ev.messages {
		s.appendMessageLocked(msg)
	}
	if ev.interaction != nil {
		s.pending = ev.interaction
		s.phase = PhaseAwaitingInput
	}
	if ev.terminal {
		s.stopPollingLocked()
		s.phase = PhaseCompleted
	}
}

func (s *Session) lastMessageLocked() string {
	if len(s.messages) == 0 {
		return ""
	}
	return s.messages[len(s.messages)-1]
}

func (s *Session) appendMessageLocked(msg string) {
	s.messages = append(s.messages, msg)
}

// notifyLocked signals the updates channel without blocking.
func (s *Session) notifyLocked() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// isNotFound matches the backend's distinguishable not-found error, either
// as the api sentinel or by message for gateways that cannot wrap it.
func isNotFound(err error) bool {
	if errors.Is(err, api.ErrFlowNotFound) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "flow not found")
}
