package githubfs

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// SearchOptions filters a filename search.
type SearchOptions struct {
	// Extension restricts matches to paths with this suffix, leading dot
	// included (".go").
	Extension string
	// MaxResults bounds the result count. Zero means 100.
	MaxResults int
	// IncludeContent fetches each match's content. Files that fail to
	// read are returned without content.
	IncludeContent bool
}

// SearchResult is one filename match, best matches first.
type SearchResult struct {
	Path    string
	Name    string
	Score   float64
	Content string
}

// SearchFiles matches the query against file names and paths in the
// repository tree, scored by relevance.
func (c *Client) SearchFiles(ctx context.Context, owner, repo, ref, query string, opts SearchOptions) ([]SearchResult, error) {
	if opts.Extension != "" && !strings.HasPrefix(opts.Extension, ".") {
		return nil, fmt.Errorf("extension must start with '.': %s", opts.Extension)
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 100
	}

	tree, err := c.RepoTree(ctx, owner, repo, ref)
	if err != nil {
		return nil, err
	}

	queryLower := strings.ToLower(query)
	var results []SearchResult
	for _, entry := range tree.Entries {
		if entry.Type != EntryTypeFile {
			continue
		}
		if opts.Extension != "" && !strings.HasSuffix(entry.Path, opts.Extension) {
			continue
		}
		name := entry.Path
		if idx := strings.LastIndex(entry.Path, "/"); idx >= 0 {
			name = entry.Path[idx+1:]
		}
		if !strings.Contains(strings.ToLower(entry.Path), queryLower) &&
			!strings.Contains(strings.ToLower(name), queryLower) {
			continue
		}

		res := SearchResult{
			Path:  entry.Path,
			Name:  name,
			Score: relevanceScore(entry.Path, name, query),
		}
		if opts.IncludeContent {
			if content, err := c.ReadFile(ctx, owner, repo, entry.Path, ref); err == nil {
				res.Content = content
			}
		}
		results = append(results, res)
		if len(results) >= maxResults {
			break
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}

// commonExtensions get a small relevance bonus.
var commonExtensions = []string{".py", ".ts", ".js", ".md", ".json", ".tsx", ".jsx", ".go"}

// relevanceScore ranks a match: exact filename beats prefix beats
// substring beats path-only, shallow paths beat deep ones.
func relevanceScore(path, name, query string) float64 {
	ql := strings.ToLower(query)
	nl := strings.ToLower(name)
	pl := strings.ToLower(path)

	var score float64
	switch {
	case nl == ql:
		score += 100
	case strings.HasPrefix(nl, ql):
		score += 80
	case strings.Contains(nl, ql):
		score += 60
	case strings.Contains(pl, ql):
		score += 40
	}

	depth := strings.Count(path, "/")
	if bonus := 20 - depth; bonus > 0 {
		score += float64(bonus)
	}

	for _, ext := range commonExtensions {
		if strings.HasSuffix(name, ext) {
			score += 5
			break
		}
	}
	return score
}
