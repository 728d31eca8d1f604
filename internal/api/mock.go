package api

import (
	"context"
	"sync"
)

// MockGateway implements Gateway for testing. It gives fine-grained control
// over per-call results and records every call for assertions. Exported so
// flow and cli tests can share it.
type MockGateway struct {
	mu sync.Mutex

	// StartAnalysis control. startFunc takes precedence when set.
	startRunID string
	startErr   error
	startFunc  func(ctx context.Context, cfg AnalysisConfig) (string, error)

	// FlowStatus control: snapshots are returned in order, the last one
	// repeating. statusFunc takes precedence when set.
	snapshots  []*StatusSnapshot
	statusIdx  int
	statusErr  error
	statusFunc func(ctx context.Context, runID string) (*StatusSnapshot, error)

	// SendInput control
	sendErr error

	// ListFlows / DeleteFlow control
	flows     []FlowListItem
	listErr   error
	deleteErr error

	// Tracking
	startCalls  []AnalysisConfig
	statusCalls []string
	sendCalls   []MockSendCall
	listCalls   int
	deleteCalls []string
}

// MockSendCall records one SendInput call.
type MockSendCall struct {
	RunID string
	Input UserInput
}

// NewMockGateway creates a MockGateway that starts runs as "run-1" and
// returns nil snapshots until configured otherwise.
func NewMockGateway() *MockGateway {
	return &MockGateway{startRunID: "run-1"}
}

// SetStartResult configures the StartAnalysis response.
func (m *MockGateway) SetStartResult(runID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startRunID = runID
	m.startErr = err
}

// SetStartFunc installs a custom StartAnalysis handler. Useful for
// blocking the start call to exercise in-progress guards.
func (m *MockGateway) SetStartFunc(fn func(ctx context.Context, cfg AnalysisConfig) (string, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startFunc = fn
}

// SetSnapshots configures the sequence of FlowStatus responses. The last
// snapshot repeats once the sequence is exhausted.
func (m *MockGateway) SetSnapshots(snaps ...*StatusSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = snaps
	m.statusIdx = 0
}

// SetStatusError makes every FlowStatus call fail with err until cleared.
func (m *MockGateway) SetStatusError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusErr = err
}

// SetStatusFunc installs a custom FlowStatus handler. Useful for delaying
// responses to exercise the in-flight guard.
func (m *MockGateway) SetStatusFunc(fn func(ctx context.Context, runID string) (*StatusSnapshot, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusFunc = fn
}

// SetSendError makes every SendInput call fail with err until cleared.
func (m *MockGateway) SetSendError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// SetDeleteError makes every DeleteFlow call fail with err until cleared.
func (m *MockGateway) SetDeleteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteErr = err
}

// SetFlows configures the ListFlows response.
func (m *MockGateway) SetFlows(flows []FlowListItem, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flows = flows
	m.listErr = err
}

// StartAnalysis records the call and returns the configured run id.
func (m *MockGateway) StartAnalysis(ctx context.Context, cfg AnalysisConfig) (string, error) {
	m.mu.Lock()
	m.startCalls = append(m.startCalls, cfg)
	fn := m.startFunc
	if fn != nil {
		m.mu.Unlock()
		return fn(ctx, cfg)
	}
	defer m.mu.Unlock()

	if m.startErr != nil {
		return "", m.startErr
	}
	return m.startRunID, nil
}

// FlowStatus records the call and returns the next configured snapshot.
func (m *MockGateway) FlowStatus(ctx context.Context, runID string) (*StatusSnapshot, error) {
	m.mu.Lock()
	m.statusCalls = append(m.statusCalls, runID)
	fn := m.statusFunc
	if fn != nil {
		m.mu.Unlock()
		return fn(ctx, runID)
	}
	defer m.mu.Unlock()

	if m.statusErr != nil {
		return nil, m.statusErr
	}
	if len(m.snapshots) == 0 {
		return nil, nil
	}
	snap := m.snapshots[m.statusIdx]
	if m.statusIdx < len(m.snapshots)-1 {
		m.statusIdx++
	}
	return snap, nil
}

// SendInput records the call and returns the configured error.
func (m *MockGateway) SendInput(ctx context.Context, runID string, input UserInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendCalls = append(m.sendCalls, MockSendCall{RunID: runID, Input: input})
	return m.sendErr
}

// ListFlows records the call and returns the configured flows.
func (m *MockGateway) ListFlows(ctx context.Context) ([]FlowListItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.flows, nil
}

// DeleteFlow records the call and returns the configured error.
func (m *MockGateway) DeleteFlow(ctx context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls = append(m.deleteCalls, runID)
	return m.deleteErr
}

// StartCalls returns the recorded StartAnalysis configs.
func (m *MockGateway) StartCalls() []AnalysisConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]AnalysisConfig(nil), m.startCalls...)
}

// StatusCalls returns the run ids of recorded FlowStatus calls.
func (m *MockGateway) StatusCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.statusCalls...)
}

// SendCalls returns the recorded SendInput calls.
func (m *MockGateway) SendCalls() []MockSendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockSendCall(nil), m.sendCalls...)
}

// DeleteCalls returns the run ids of recorded DeleteFlow calls.
func (m *MockGateway) DeleteCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleteCalls...)
}
