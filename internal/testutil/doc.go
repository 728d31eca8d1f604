// Package testutil provides shared test utilities for readerctl.
//
// # Fixtures
//
// The fixtures.go file provides sample backend data:
//
//   - SampleFiles(), SampleBasic() - a small file selection and run config
//   - SnapshotAnalyzing(name) - analyzer working, no call to action
//   - SnapshotReview(name, understanding) - feedback requested on a file
//   - SnapshotFinish(understandings, reduced) - finish call to action
//   - SnapshotCompleted() - terminal snapshot
//   - SampleHistory() - decision history entries
//
// # Timeouts
//
// The timeout.go file provides deadline helpers:
//
//   - ContextWithTestDeadline(t, fallback) - context bounded by the test
//     deadline minus a cleanup buffer
//   - DefaultWaitTimeout, DefaultWaitTick - bounds for Eventually-style
//     waits on polling sessions
package testutil
