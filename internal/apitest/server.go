// Package apitest provides an in-memory reader backend that speaks the
// real wire contract. It backs cmd/reader-mock and the client tests:
// each status poll advances a scripted analysis one step, so a full
// start / review / finish exchange can run without a real analyzer.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codereader/readerctl/internal/api"
)

// Server simulates the analysis backend.
type Server struct {
	mu    sync.Mutex
	flows map[string]*flowState
}

type flowState struct {
	basic     api.Basic
	createdAt time.Time
	queue     []int // indexes into basic.Files still to analyze
	pos       int
	analyzed  bool // current file has a pending review request
	finishing bool
	completed bool
	history   []api.HistoryEntry
	reduced   string
}

// NewServer creates an empty mock backend.
func NewServer() *Server {
	return &Server{flows: make(map[string]*flowState)}
}

// Handler returns the HTTP surface of the mock backend.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analysis", s.handleStart)
	mux.HandleFunc("GET /api/flows", s.handleList)
	mux.HandleFunc("GET /api/flows/{id}/status", s.handleStatus)
	mux.HandleFunc("POST /api/flows/{id}/input", s.handleInput)
	mux.HandleFunc("DELETE /api/flows/{id}", s.handleDelete)
	return mux
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var cfg api.AnalysisConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if cfg.RepoName == "" || len(cfg.Files) == 0 {
		writeError(w, http.StatusBadRequest, "repoName and files are required")
		return
	}

	fs := &flowState{
		createdAt: time.Now(),
		basic: api.Basic{
			Files:         cfg.Files,
			GithubURL:     cfg.GithubURL,
			GithubRef:     cfg.GithubRef,
			RepoName:      cfg.RepoName,
			MainGoal:      cfg.MainGoal,
			SpecificAreas: cfg.SpecificAreas,
		},
	}
	for i, f := range cfg.Files {
		if f.Type == api.FileTypeFile && f.Status == api.FileStatusPending {
			fs.queue = append(fs.queue, i)
		}
	}

	runID := uuid.NewString()
	s.mu.Lock()
	s.flows[runID] = fs
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"runId": runID})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := make([]api.FlowListItem, 0, len(s.flows))
	for id, fs := range s.flows {
		items = append(items, api.FlowListItem{
			RunID:     id,
			Basic:     &fs.basic,
			Completed: fs.completed,
			CreatedAt: fs.createdAt.UTC().Format(time.RFC3339),
		})
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"flows": items})
}

// handleStatus advances the scripted analysis one step and reports the
// resulting snapshot. Each file takes two polls: one working, one asking
// for review.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fs, ok := s.flows[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "flow not found")
		return
	}

	snap := &api.StatusSnapshot{
		Completed:     fs.completed,
		Basic:         &fs.basic,
		ReducedOutput: fs.reduced,
		History:       fs.history,
	}

	switch {
	case fs.completed:
		// Terminal; nothing more to report.

	case fs.finishing:
		snap.CallToAction = api.ActionFinish

	case fs.pos >= len(fs.queue):
		fs.finishing = true
		snap.CallToAction = api.ActionFinish

	default:
		file := &fs.basic.Files[fs.queue[fs.pos]]
		snap.CurrentFile = &api.CurrentFile{Name: file.Path}
		if fs.analyzed {
			snap.CallToAction = api.ActionUserFeedback
			snap.CurrentFile.Analysis = &api.FileAnalysis{
				Understanding: analysisFor(file.Path),
			}
			if fs.pos+1 < len(fs.queue) {
				snap.NextFile = &api.NextFile{
					Name:   fs.basic.Files[fs.queue[fs.pos+1]].Path,
					Reason: "next unvisited file in the selection",
				}
			}
		} else {
			fs.analyzed = true
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"shared": snap})
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var input struct {
		InputID   string          `json:"inputId"`
		InputType string          `json:"inputType"`
		InputData json.RawMessage `json:"inputData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fs, ok := s.flows[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "flow not found")
		return
	}

	switch input.InputType {
	case "finish":
		fs.completed = true
		fs.finishing = false
		fs.reduced = fmt.Sprintf("Analyzed %d files of %s.", fs.pos, fs.basic.RepoName)

	case "user_feedback":
		var fb api.UserFeedbackData
		if err := json.Unmarshal(input.InputData, &fb); err != nil {
			writeError(w, http.StatusBadRequest, "invalid feedback payload")
			return
		}
		if err := fs.applyFeedback(fb); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

	case "improve_basic_input":
		var tr api.TextResponseData
		if err := json.Unmarshal(input.InputData, &tr); err != nil {
			writeError(w, http.StatusBadRequest, "invalid text payload")
			return
		}
		if tr.Response != "" {
			fs.basic.MainGoal = tr.Response
		}

	default:
		writeError(w, http.StatusBadRequest, "unknown input type")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (fs *flowState) applyFeedback(fb api.UserFeedbackData) error {
	if fs.pos >= len(fs.queue) {
		return fmt.Errorf("no file awaiting feedback")
	}
	file := &fs.basic.Files[fs.queue[fs.pos]]

	entry := api.HistoryEntry{
		FilePath:       file.Path,
		FeedbackAction: fb.Action,
		Timestamp:      time.Now().UnixMilli(),
		Reason:         fb.Reason,
	}

	switch fb.Action {
	case api.FeedbackAccept:
		file.Status = api.FileStatusDone
		file.Understanding = analysisFor(file.Path)
		fs.pos++
		fs.analyzed = false

	case api.FeedbackRefine:
		file.Status = api.FileStatusDone
		file.Understanding = fb.UserUnderstanding
		fs.pos++
		fs.analyzed = false

	case api.FeedbackReject:
		fs.analyzed = false

	case api.FeedbackFinish:
		fs.finishing = true

	default:
		return fmt.Errorf("unknown feedback action %q", fb.Action)
	}

	fs.history = append(fs.history, entry)
	return nil
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	_, ok := s.flows[id]
	delete(s.flows, id)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "flow not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func analysisFor(path string) string {
	return fmt.Sprintf("The file %s defines part of the repository's behavior.", path)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
