// Package tui renders analysis run state as plain terminal text: the
// message log, the file selection tree, the analysis history, and pending
// interaction prompts. It owns no state; callers pass snapshots in.
package tui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/codereader/readerctl/internal/api"
	"github.com/codereader/readerctl/internal/flow"
)

// statusMarkers map file status to the marker shown in the tree view.
var statusMarkers = map[string]string{
	api.FileStatusPending: " ",
	api.FileStatusIgnored: "-",
	api.FileStatusDone:    "x",
}

// WriteMessages writes message log entries starting at offset from, one
// per line. Returns the new offset.
func WriteMessages(w io.Writer, messages []string, from int) int {
	if from < 0 || from > len(messages) {
		from = 0
	}
	for _, msg := range messages[from:] {
		fmt.Fprintf(w, "  %s\n", msg)
	}
	return len(messages)
}

// WriteTree writes the file selection as an indented tree with per-file
// status markers.
func WriteTree(w io.Writer, files []api.FileRecord) {
	sorted := append([]api.FileRecord(nil), files...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	for _, f := range sorted {
		depth := strings.Count(f.Path, "/")
		name := f.Path
		if idx := strings.LastIndex(f.Path, "/"); idx >= 0 {
			name = f.Path[idx+1:]
		}
		indent := strings.Repeat("  ", depth)

		if f.Type == api.FileTypeDirectory {
			fmt.Fprintf(w, "      %s%s/\n", indent, name)
			continue
		}
		marker, ok := statusMarkers[f.Status]
		if !ok {
			marker = "?"
		}
		fmt.Fprintf(w, "  [%s] %s%s\n", marker, indent, name)
	}
}

// WriteHistory writes the analysis history sorted by timestamp.
func WriteHistory(w io.Writer, entries []api.HistoryEntry) {
	sorted := append([]api.HistoryEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })

	for _, e := range sorted {
		ts := time.UnixMilli(e.Timestamp).Format("15:04:05")
		if e.FeedbackAction != "" {
			fmt.Fprintf(w, "  %s  %-8s %s\n", ts, e.FeedbackAction, e.FilePath)
		} else {
			fmt.Fprintf(w, "  %s  %s\n", ts, e.FilePath)
		}
	}
}

// WriteFlows writes flow summaries as an aligned table.
func WriteFlows(w io.Writer, flows []api.FlowListItem) {
	if len(flows) == 0 {
		fmt.Fprintln(w, "No flows found.")
		return
	}

	idWidth := len("RUN")
	repoWidth := len("REPO")
	for _, f := range flows {
		if len(f.RunID) > idWidth {
			idWidth = len(f.RunID)
		}
		if f.Basic != nil && len(f.Basic.RepoName) > repoWidth {
			repoWidth = len(f.Basic.RepoName)
		}
	}

	fmt.Fprintf(w, "%-*s  %-*s  %-9s  %s\n", idWidth, "RUN", repoWidth, "REPO", "STATE", "CREATED")
	for _, f := range flows {
		repo := ""
		if f.Basic != nil {
			repo = f.Basic.RepoName
		}
		stateLabel := "running"
		if f.Completed {
			stateLabel = "completed"
		}
		fmt.Fprintf(w, "%-*s  %-*s  %-9s  %s\n", idWidth, f.RunID, repoWidth, repo, stateLabel, f.CreatedAt)
	}
}

// WriteInteraction writes a pending interaction prompt with its context.
func WriteInteraction(w io.Writer, req *flow.Interaction) {
	if req == nil {
		return
	}

	fmt.Fprintln(w)
	switch req.Kind {
	case api.ActionUserFeedback:
		if req.FileName != "" {
			fmt.Fprintf(w, "── Review: %s ──\n", req.FileName)
		} else {
			fmt.Fprintln(w, "── Review ──")
		}
		if req.Understanding != "" {
			fmt.Fprintln(w, indent(req.Understanding, "  "))
		}
		if req.NextFile != nil {
			fmt.Fprintf(w, "  next: %s (%s)\n", req.NextFile.Name, req.NextFile.Reason)
		}
		fmt.Fprintf(w, "%s\n", req.Prompt)
	case api.ActionFinish:
		fmt.Fprintf(w, "%s\n", req.Prompt)
		WriteResult(w, req.Result)
	default:
		fmt.Fprintf(w, "%s\n", req.Prompt)
	}
}

// WriteResult writes the aggregated outcome of a finished run.
func WriteResult(w io.Writer, res *flow.Result) {
	if res == nil {
		return
	}
	for _, fu := range res.FileUnderstandings {
		fmt.Fprintf(w, "\n%s\n%s\n", fu.Filename, indent(fu.Understanding, "  "))
	}
	if res.ReducedOutput != "" {
		fmt.Fprintf(w, "\nSummary\n-------\n%s\n", res.ReducedOutput)
	}
}

// WriteSnapshot writes a one-shot status view: progress counts, tree,
// history, and the reduced output when completed.
func WriteSnapshot(w io.Writer, runID string, snap *api.StatusSnapshot) {
	fmt.Fprintf(w, "Run %s\n", runID)
	if snap == nil {
		fmt.Fprintln(w, "No status published yet.")
		return
	}

	if snap.Basic != nil {
		done, total := countFiles(snap.Basic.Files)
		fmt.Fprintf(w, "Repo:  %s\n", snap.Basic.RepoName)
		fmt.Fprintf(w, "Goal:  %s\n", snap.Basic.MainGoal)
		fmt.Fprintf(w, "Files: %d/%d analyzed\n", done, total)
	}
	if snap.CurrentFile != nil && snap.CurrentFile.Name != "" {
		fmt.Fprintf(w, "Analyzing: %s\n", snap.CurrentFile.Name)
	}
	if snap.CallToAction != "" {
		fmt.Fprintf(w, "Waiting on input: %s\n", snap.CallToAction)
	}

	if snap.Basic != nil && len(snap.Basic.Files) > 0 {
		fmt.Fprintln(w, "\nFiles")
		WriteTree(w, snap.Basic.Files)
	}
	if len(snap.History) > 0 {
		fmt.Fprintln(w, "\nHistory")
		WriteHistory(w, snap.History)
	}
	if snap.Completed && snap.ReducedOutput != "" {
		fmt.Fprintf(w, "\nSummary\n-------\n%s\n", snap.ReducedOutput)
	}
}

func countFiles(files []api.FileRecord) (done, total int) {
	for _, f := range files {
		if f.Type != api.FileTypeFile || f.Status == api.FileStatusIgnored {
			continue
		}
		total++
		if f.Status == api.FileStatusDone {
			done++
		}
	}
	return done, total
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
