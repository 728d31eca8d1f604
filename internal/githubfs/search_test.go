package githubfs

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchClient(t *testing.T) *Client {
	t.Helper()
	return newGithubStub(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/git/trees/") {
			w.Write([]byte(`{"tree": [
				{"path": "src", "type": "tree"},
				{"path": "src/auth.ts", "type": "blob"},
				{"path": "src/auth/session.ts", "type": "blob"},
				{"path": "src/deep/nested/auth_helpers.ts", "type": "blob"},
				{"path": "docs/authentication.md", "type": "blob"},
				{"path": "auth.ts", "type": "blob"},
				{"path": "Makefile", "type": "blob"}
			]}`))
			return
		}
		w.Write([]byte(`{"type": "file", "encoding": "base64", "content": "` +
			base64.StdEncoding.EncodeToString([]byte("contents")) + `"}`))
	})
}

func TestSearchFilesRanking(t *testing.T) {
	t.Parallel()

	c := searchClient(t)
	results, err := c.SearchFiles(context.Background(), "acme", "widgets", "main", "auth.ts", SearchOptions{})

	require.NoError(t, err)
	require.NotEmpty(t, results)
	// Exact filename match at the repository root wins.
	assert.Equal(t, "auth.ts", results[0].Path)
	// The same filename deeper in the tree ranks below it.
	assert.Equal(t, "src/auth.ts", results[1].Path)
}

func TestSearchFilesSubstringAndPathMatches(t *testing.T) {
	t.Parallel()

	c := searchClient(t)
	results, err := c.SearchFiles(context.Background(), "acme", "widgets", "main", "auth", SearchOptions{})

	require.NoError(t, err)

	paths := make([]string, len(results))
	for i, r := range results {
		paths[i] = r.Path
	}
	assert.Contains(t, paths, "docs/authentication.md")
	assert.Contains(t, paths, "src/auth/session.ts")
	assert.NotContains(t, paths, "Makefile")
	assert.NotContains(t, paths, "src", "directories never match")
}

func TestSearchFilesExtensionFilter(t *testing.T) {
	t.Parallel()

	c := searchClient(t)
	results, err := c.SearchFiles(context.Background(), "acme", "widgets", "main", "auth", SearchOptions{Extension: ".md"})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "docs/authentication.md", results[0].Path)
	assert.Equal(t, "authentication.md", results[0].Name)
}

func TestSearchFilesExtensionMustHaveDot(t *testing.T) {
	t.Parallel()

	c := searchClient(t)
	_, err := c.SearchFiles(context.Background(), "acme", "widgets", "main", "auth", SearchOptions{Extension: "md"})
	assert.ErrorContains(t, err, "extension must start with '.'")
}

func TestSearchFilesMaxResults(t *testing.T) {
	t.Parallel()

	c := searchClient(t)
	results, err := c.SearchFiles(context.Background(), "acme", "widgets", "main", "auth", SearchOptions{MaxResults: 2})

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchFilesIncludeContent(t *testing.T) {
	t.Parallel()

	c := searchClient(t)
	results, err := c.SearchFiles(context.Background(), "acme", "widgets", "main", "auth.ts", SearchOptions{
		MaxResults:     1,
		IncludeContent: true,
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "contents", results[0].Content)
}

func TestRelevanceScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		fileName string
		query    string
		expected float64
	}{
		{
			name:     "exact name at root",
			path:     "auth.ts",
			fileName: "auth.ts",
			query:    "auth.ts",
			expected: 100 + 20 + 5,
		},
		{
			name:     "prefix match one level deep",
			path:     "src/auth_helpers.ts",
			fileName: "auth_helpers.ts",
			query:    "auth",
			expected: 80 + 19 + 5,
		},
		{
			name:     "name substring",
			path:     "src/user_auth.ts",
			fileName: "user_auth.ts",
			query:    "auth",
			expected: 60 + 19 + 5,
		},
		{
			name:     "path-only match",
			path:     "auth/index.ts",
			fileName: "index.ts",
			query:    "auth",
			expected: 40 + 19 + 5,
		},
		{
			name:     "uncommon extension gets no bonus",
			path:     "auth.rs",
			fileName: "auth.rs",
			query:    "auth.rs",
			expected: 100 + 20,
		},
		{
			name:     "case insensitive",
			path:     "AUTH.TS",
			fileName: "AUTH.TS",
			query:    "auth.ts",
			expected: 100 + 20, // uppercase extension misses the bonus
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, relevanceScore(tt.path, tt.fileName, tt.query))
		})
	}
}
