// Package state persists local bookkeeping about analysis runs under
// .readerctl/runs/. The backend owns the runs themselves; this store only
// remembers which ones were started from here so attach and resume work
// without arguments.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store handles local run storage operations.
type Store struct {
	basePath string
}

// NewStore creates a Store rooted at basePath; runs are stored in
// .readerctl/runs/.
func NewStore(basePath string) *Store {
	return &Store{basePath: basePath}
}

func (s *Store) runsDir() string {
	return filepath.Join(s.basePath, ".readerctl", "runs")
}

func (s *Store) runPath(runID string) string {
	return filepath.Join(s.runsDir(), sanitizeRunID(runID)+".yaml")
}

// sanitizeRunID converts a run id to a safe file name.
func sanitizeRunID(runID string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '-'
		}
		return r
	}, runID)
}

// SaveRun writes the run record, creating the runs directory as needed.
func (s *Store) SaveRun(run *Run) error {
	if run.RunID == "" {
		return fmt.Errorf("run id is empty")
	}
	if err := os.MkdirAll(s.runsDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create runs directory: %w", err)
	}

	data, err := yaml.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	if err := os.WriteFile(s.runPath(run.RunID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write run file: %w", err)
	}
	return nil
}

// GetRun reads one run record.
func (s *Store) GetRun(runID string) (*Run, error) {
	data, err := os.ReadFile(s.runPath(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run not found: %s", runID)
		}
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}

	var run Run
	if err := yaml.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to parse run file: %w", err)
	}
	return &run, nil
}

// ListRuns enumerates all local run records, most recently started first.
func (s *Store) ListRuns() ([]*Run, error) {
	entries, err := os.ReadDir(s.runsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return []*Run{}, nil
		}
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	var runs []*Run
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.runsDir(), entry.Name()))
		if err != nil {
			continue
		}
		var run Run
		if err := yaml.Unmarshal(data, &run); err != nil {
			continue // Skip invalid run files
		}
		runs = append(runs, &run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return runs, nil
}

// LatestRun returns the most recently started incomplete run, or nil when
// none exists.
func (s *Store) LatestRun() (*Run, error) {
	runs, err := s.ListRuns()
	if err != nil {
		return nil, err
	}
	for _, run := range runs {
		if !run.Completed {
			return run, nil
		}
	}
	return nil, nil
}

// UpdateRun applies updateFn to a stored run record and writes it back.
func (s *Store) UpdateRun(runID string, updateFn func(*Run)) error {
	run, err := s.GetRun(runID)
	if err != nil {
		return err
	}
	updateFn(run)
	return s.SaveRun(run)
}

// DeleteRun removes the local record for a run. Missing records are not
// an error.
func (s *Store) DeleteRun(runID string) error {
	if err := os.Remove(s.runPath(runID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete run file: %w", err)
	}
	return nil
}
