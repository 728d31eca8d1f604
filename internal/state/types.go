package state

import "time"

// Run is the local record of one analysis run, written when a run starts
// so attach/resume can find it without asking the backend.
type Run struct {
	RunID     string    `yaml:"run_id"`
	RepoName  string    `yaml:"repo_name"`
	GithubURL string    `yaml:"github_url"`
	GithubRef string    `yaml:"github_ref"`
	MainGoal  string    `yaml:"main_goal"`
	StartedAt time.Time `yaml:"started_at"`
	Completed bool      `yaml:"completed"`
}
