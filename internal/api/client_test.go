package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartAnalysis(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotCfg AnalysisConfig
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/analysis", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotCfg))
		json.NewEncoder(w).Encode(map[string]string{"runId": "run-77"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithAuthToken("secret"))
	runID, err := c.StartAnalysis(context.Background(), AnalysisConfig{
		RepoName: "widgets",
		MainGoal: "Understand the data layer",
		Files:    []FileRecord{{Path: "a.ts", Type: FileTypeFile, Status: FileStatusPending}},
	})

	require.NoError(t, err)
	assert.Equal(t, "run-77", runID)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "widgets", gotCfg.RepoName)
	require.Len(t, gotCfg.Files, 1)
}

func TestStartAnalysisEmptyRunID(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).StartAnalysis(context.Background(), AnalysisConfig{})
	assert.ErrorContains(t, err, "empty run id")
}

func TestFlowStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/flows/run-1/status", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"shared": map[string]any{
				"completed":    false,
				"callToAction": ActionUserFeedback,
				"currentFile": map[string]any{
					"name":     "src/a.ts",
					"analysis": map[string]any{"understanding": "Defines the widget model."},
				},
			},
		})
	}))
	defer srv.Close()

	snap, err := NewClient(srv.URL).FlowStatus(context.Background(), "run-1")

	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, ActionUserFeedback, snap.CallToAction)
	require.NotNil(t, snap.CurrentFile)
	assert.Equal(t, "src/a.ts", snap.CurrentFile.Name)
	require.NotNil(t, snap.CurrentFile.Analysis)
	assert.Equal(t, "Defines the widget model.", snap.CurrentFile.Analysis.Understanding)
}

func TestFlowStatusNullShared(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"shared": null}`))
	}))
	defer srv.Close()

	snap, err := NewClient(srv.URL).FlowStatus(context.Background(), "run-1")

	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestFlowStatusNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "flow not found"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FlowStatus(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrFlowNotFound)
}

func TestFlowStatusServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "checkpoint unavailable"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FlowStatus(context.Background(), "run-1")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrFlowNotFound)
	assert.ErrorContains(t, err, "checkpoint unavailable")
}

func TestSendInput(t *testing.T) {
	t.Parallel()

	var got struct {
		InputID   string           `json:"inputId"`
		InputType string           `json:"inputType"`
		InputData UserFeedbackData `json:"inputData"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/flows/run-1/input", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	err := NewClient(srv.URL).SendInput(context.Background(), "run-1", UserInput{
		InputType: ActionUserFeedback,
		InputData: UserFeedbackData{Action: FeedbackAccept, Reason: "looks right"},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, got.InputID, "each send must carry a dedup id")
	assert.Equal(t, ActionUserFeedback, got.InputType)
	assert.Equal(t, FeedbackAccept, got.InputData.Action)
}

func TestListFlows(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/flows", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"flows": []map[string]any{
				{"runId": "run-1", "completed": false, "basic": map[string]any{"repoName": "widgets"}},
				{"runId": "run-2", "completed": true},
			},
		})
	}))
	defer srv.Close()

	flows, err := NewClient(srv.URL).ListFlows(context.Background())

	require.NoError(t, err)
	require.Len(t, flows, 2)
	assert.Equal(t, "run-1", flows[0].RunID)
	require.NotNil(t, flows[0].Basic)
	assert.Equal(t, "widgets", flows[0].Basic.RepoName)
	assert.True(t, flows[1].Completed)
}

func TestDeleteFlow(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/flows/run-1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
	}))
	defer srv.Close()

	err := NewClient(srv.URL).DeleteFlow(context.Background(), "run-1")
	require.NoError(t, err)
}

func TestBaseURLTrailingSlash(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/flows", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"flows": []any{}})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL + "/").ListFlows(context.Background())
	require.NoError(t, err)
}
