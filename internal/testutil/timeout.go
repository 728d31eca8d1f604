package testutil

import (
	"context"
	"testing"
	"time"
)

// Default timeouts for tests that wait on polling sessions.
const (
	// DefaultWaitTimeout bounds how long a test waits for a session to
	// reach an expected state.
	DefaultWaitTimeout = 5 * time.Second

	// DefaultWaitTick is the poll interval for Eventually-style waits.
	DefaultWaitTick = 5 * time.Millisecond

	// DefaultTestBuffer is subtracted from the test deadline to leave
	// time for cleanup before the test times out.
	DefaultTestBuffer = 10 * time.Second
)

// ContextWithTestDeadline creates a context that respects the test's
// deadline, minus a cleanup buffer. If the test has no deadline, it falls
// back to the provided fallback duration.
func ContextWithTestDeadline(t *testing.T, fallback time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()

	if deadline, ok := t.Deadline(); ok {
		adjusted := deadline.Add(-DefaultTestBuffer)
		if time.Until(adjusted) > 0 {
			return context.WithDeadline(context.Background(), adjusted)
		}
	}
	return context.WithTimeout(context.Background(), fallback)
}
