package testutil

import "github.com/codereader/readerctl/internal/api"

// SampleGoal is the main goal used by fixture snapshots.
const SampleGoal = "Understand the data layer"

// SampleFiles returns a small file selection for testing.
// Returns a new slice each time to prevent test interference.
func SampleFiles() []api.FileRecord {
	return []api.FileRecord{
		{Path: "src", Type: api.FileTypeDirectory, Status: api.FileStatusPending},
		{Path: "src/a.ts", Type: api.FileTypeFile, Status: api.FileStatusPending},
		{Path: "src/b.ts", Type: api.FileTypeFile, Status: api.FileStatusPending},
		{Path: "README.md", Type: api.FileTypeFile, Status: api.FileStatusIgnored},
	}
}

// SampleBasic returns run configuration state wrapping SampleFiles.
func SampleBasic() *api.Basic {
	return &api.Basic{
		Files:     SampleFiles(),
		GithubURL: "https://github.com/acme/widgets",
		GithubRef: "main",
		RepoName:  "widgets",
		MainGoal:  SampleGoal,
	}
}

// SnapshotAnalyzing returns a snapshot with the analyzer working on the
// named file and no call to action.
func SnapshotAnalyzing(name string) *api.StatusSnapshot {
	return &api.StatusSnapshot{
		Basic:       SampleBasic(),
		CurrentFile: &api.CurrentFile{Name: name},
	}
}

// SnapshotReview returns a snapshot asking for feedback on the named
// file's analysis.
func SnapshotReview(name, understanding string) *api.StatusSnapshot {
	snap := SnapshotAnalyzing(name)
	snap.CallToAction = api.ActionUserFeedback
	snap.CurrentFile.Analysis = &api.FileAnalysis{Understanding: understanding}
	return snap
}

// SnapshotFinish returns a snapshot with the finish call to action. The
// analyzed files carry the given understandings keyed by path.
func SnapshotFinish(understandings map[string]string, reduced string) *api.StatusSnapshot {
	basic := SampleBasic()
	for i, f := range basic.Files {
		if u, ok := understandings[f.Path]; ok {
			basic.Files[i].Status = api.FileStatusDone
			basic.Files[i].Understanding = u
		}
	}
	return &api.StatusSnapshot{
		Basic:         basic,
		CallToAction:  api.ActionFinish,
		ReducedOutput: reduced,
	}
}

// SnapshotCompleted returns a terminal snapshot with no call to action.
func SnapshotCompleted() *api.StatusSnapshot {
	return &api.StatusSnapshot{
		Basic:     SampleBasic(),
		Completed: true,
	}
}

// SampleHistory returns decision history entries for testing.
func SampleHistory() []api.HistoryEntry {
	return []api.HistoryEntry{
		{FilePath: "src/a.ts", FeedbackAction: api.FeedbackAccept, Timestamp: 1700000060000},
		{FilePath: "src/b.ts", FeedbackAction: api.FeedbackReject, Timestamp: 1700000120000, Reason: "too shallow"},
	}
}
