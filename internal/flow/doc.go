// Package flow owns the client side of one analysis run: the session
// state machine, the repeating status poll, derivation of user-facing
// events from status snapshots, and translation of human decisions into
// typed backend inputs.
//
// A Session is the only mutable shared state. All fields are guarded by a
// single mutex; the polling goroutine and the responder mutate polling
// flags exclusively through startPollingLocked/stopPollingLocked. A
// generation counter makes stop terminal: a poll response that arrives
// after its session was stopped is discarded without observable effect.
package flow
