package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codereader/readerctl/internal/api"
	"github.com/codereader/readerctl/internal/flow"
	"github.com/codereader/readerctl/internal/state"
	"github.com/codereader/readerctl/internal/testutil"
	"github.com/codereader/readerctl/internal/tui"
)

func newWatchSession(gw api.Gateway) *flow.Session {
	return flow.NewSession(gw, flow.WithInterval(5*time.Millisecond))
}

func TestWatchRunReviewThenComplete(t *testing.T) {
	gw := api.NewMockGateway()
	gw.SetSnapshots(
		testutil.SnapshotReview("src/a.ts", "Defines the widget model."),
		testutil.SnapshotCompleted(),
	)

	store := state.NewStore(t.TempDir())
	require.NoError(t, store.SaveRun(&state.Run{
		RunID:     "run-1",
		RepoName:  "widgets",
		StartedAt: time.Now(),
	}))

	session := newWatchSession(gw)
	defer session.Close()
	session.Resume("run-1")

	var out bytes.Buffer
	prompter := tui.NewPrompter(strings.NewReader("a\n"), &out)

	err := watchRun(context.Background(), session, store, &out, prompter)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Review: src/a.ts")
	assert.Contains(t, text, "Response sent to analyzer.")
	assert.Contains(t, text, "Analysis complete.")

	// The accept reached the backend.
	calls := gw.SendCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, api.ActionUserFeedback, calls[0].Input.InputType)

	// The local record was marked completed.
	run, err := store.GetRun("run-1")
	require.NoError(t, err)
	assert.True(t, run.Completed)
}

func TestWatchRunFinishAcknowledged(t *testing.T) {
	gw := api.NewMockGateway()
	gw.SetSnapshots(testutil.SnapshotFinish(map[string]string{
		"src/a.ts": "Defines the widget model.",
	}, "The repo is a widget catalog."))

	store := state.NewStore(t.TempDir())
	session := newWatchSession(gw)
	defer session.Close()
	session.Resume("run-1")

	var out bytes.Buffer
	prompter := tui.NewPrompter(strings.NewReader("\n"), &out)

	err := watchRun(context.Background(), session, store, &out, prompter)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "The repo is a widget catalog.")

	calls := gw.SendCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, api.ActionFinish, calls[0].Input.InputType)
}

func TestWatchRunFlowDisappears(t *testing.T) {
	gw := api.NewMockGateway()
	gw.SetStatusError(api.ErrFlowNotFound)

	store := state.NewStore(t.TempDir())
	session := newWatchSession(gw)
	defer session.Close()
	session.Resume("run-1")

	var out bytes.Buffer
	prompter := tui.NewPrompter(strings.NewReader(""), &out)

	err := watchRun(context.Background(), session, store, &out, prompter)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no longer available")
	assert.Contains(t, out.String(), "Flow not found.")
}

func TestWatchRunDetachOnEOF(t *testing.T) {
	gw := api.NewMockGateway()
	gw.SetSnapshots(testutil.SnapshotReview("src/a.ts", "Defines the widget model."))

	store := state.NewStore(t.TempDir())
	session := newWatchSession(gw)
	defer session.Close()
	session.Resume("run-1")

	var out bytes.Buffer
	// Input stream ends before the user answers the review.
	prompter := tui.NewPrompter(strings.NewReader(""), &out)

	err := watchRun(context.Background(), session, store, &out, prompter)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Detached.")
	assert.Empty(t, gw.SendCalls())
}

func TestAttachCommandNoLocalRuns(t *testing.T) {
	withTestFactories(t, api.NewMockGateway(), nil)

	err := runAttachCmd(attachCmd, nil)
	assert.ErrorContains(t, err, "no unfinished runs")
}
