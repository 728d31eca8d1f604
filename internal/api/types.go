// Package api provides the typed client for the code-reader analysis
// backend. The core flow logic depends only on the Gateway interface and
// the wire shapes defined here; transport mechanics stay in this package.
package api

import "context"

// File status values for FileRecord.Status.
const (
	FileStatusPending = "pending"
	FileStatusIgnored = "ignored"
	FileStatusDone    = "done"
)

// File type values for FileRecord.Type.
const (
	FileTypeFile      = "file"
	FileTypeDirectory = "directory"
)

// Call-to-action kinds emitted by the backend when it needs human input.
const (
	ActionImproveBasicInput = "improve_basic_input"
	ActionUserFeedback      = "user_feedback"
	ActionFinish            = "finish"
)

// FileRecord mirrors one entry of the backend's file selection list.
// Understanding is only populated once Status is "done".
type FileRecord struct {
	Path          string `json:"path"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	Understanding string `json:"understanding,omitempty"`
}

// Basic holds the run configuration as the backend tracks it.
type Basic struct {
	Files         []FileRecord `json:"files"`
	GithubURL     string       `json:"githubUrl,omitempty"`
	GithubRef     string       `json:"githubRef,omitempty"`
	RepoName      string       `json:"repoName"`
	MainGoal      string       `json:"mainGoal"`
	SpecificAreas string       `json:"specificAreas,omitempty"`
}

// FileAnalysis is the backend's summary of one analyzed file.
type FileAnalysis struct {
	Understanding string `json:"understanding"`
}

// CurrentFile identifies the file the backend is working on, with its
// analysis once available.
type CurrentFile struct {
	Name     string        `json:"name"`
	Analysis *FileAnalysis `json:"analysis,omitempty"`
}

// NextFile is the backend's suggestion for the file to analyze next.
type NextFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// HistoryEntry is one record of the backend-ordered analysis log. Entries
// are append-only; the client never mutates them.
type HistoryEntry struct {
	FilePath       string `json:"filePath"`
	Timestamp      int64  `json:"timestamp"`
	FeedbackAction string `json:"feedbackAction,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// StatusSnapshot is the full poll payload. Each successful poll replaces
// the previous snapshot wholesale; there is no client-side merge.
type StatusSnapshot struct {
	Completed     bool           `json:"completed"`
	CallToAction  string         `json:"callToAction,omitempty"`
	CurrentFile   *CurrentFile   `json:"currentFile,omitempty"`
	NextFile      *NextFile      `json:"nextFile,omitempty"`
	Basic         *Basic         `json:"basic,omitempty"`
	ReducedOutput string         `json:"reducedOutput,omitempty"`
	History       []HistoryEntry `json:"history,omitempty"`
}

// FlowListItem is the summary shape returned by ListFlows.
type FlowListItem struct {
	RunID     string `json:"runId"`
	Basic     *Basic `json:"basic,omitempty"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"createdAt"`
}

// AnalysisConfig is the payload for starting a run.
type AnalysisConfig struct {
	GithubURL     string       `json:"githubUrl"`
	GithubRef     string       `json:"githubRef"`
	RepoName      string       `json:"repoName"`
	MainGoal      string       `json:"mainGoal"`
	SpecificAreas string       `json:"specificAreas,omitempty"`
	Files         []FileRecord `json:"files"`
}

// Feedback action values for UserFeedbackData.Action.
const (
	FeedbackAccept = "accept"
	FeedbackReject = "reject"
	FeedbackRefine = "refine"
	FeedbackFinish = "finish"
)

// UserFeedbackData is the payload for a user_feedback input.
type UserFeedbackData struct {
	Action            string `json:"action"`
	Reason            string `json:"reason,omitempty"`
	NextFile          string `json:"nextFile,omitempty"`
	UserUnderstanding string `json:"userUnderstanding,omitempty"`
}

// TextResponseData is the payload for a free-text input.
type TextResponseData struct {
	Response string `json:"response"`
}

// UserInput is a typed human response forwarded to the backend. InputData
// is a UserFeedbackData, a TextResponseData, or nil for a finish input.
type UserInput struct {
	InputType string `json:"inputType"`
	InputData any    `json:"inputData,omitempty"`
}

// Gateway is the backend contract consumed by the flow package. Both the
// HTTP client and the test mock implement it.
type Gateway interface {
	// StartAnalysis creates a new backend-tracked run and returns its id.
	StartAnalysis(ctx context.Context, cfg AnalysisConfig) (string, error)

	// FlowStatus fetches the current status snapshot for a run. It returns
	// ErrFlowNotFound when the run id is unknown or expired, and a nil
	// snapshot when the backend has not produced shared state yet.
	FlowStatus(ctx context.Context, runID string) (*StatusSnapshot, error)

	// SendInput forwards a typed human response to a run.
	SendInput(ctx context.Context, runID string, input UserInput) error

	// ListFlows returns summaries of all backend-tracked runs.
	ListFlows(ctx context.Context) ([]FlowListItem, error)

	// DeleteFlow removes a backend-tracked run.
	DeleteFlow(ctx context.Context, runID string) error
}
