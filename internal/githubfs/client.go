// Package githubfs is a read-only mirror of a GitHub repository: tree
// listing, file content, and filename search over the GitHub REST API.
// Responses are cached in an expiring LRU so interactive browsing does not
// hammer the API.
package githubfs

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Entry types in a Tree.
const (
	EntryTypeFile      = "file"
	EntryTypeDirectory = "directory"
)

// TreeEntry is one path in a repository tree.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// Tree is the recursive listing of a repository at a ref.
type Tree struct {
	Name    string      `json:"name"`
	Entries []TreeEntry `json:"tree"`
}

// Client reads repository content through the GitHub REST API.
type Client struct {
	apiURL     string
	token      string
	httpClient *http.Client
	maxRetries int

	treeCache *expirable.LRU[string, *Tree]
	fileCache *expirable.LRU[string, string]
}

// Options configures a Client. Zero values fall back to GitHub defaults.
type Options struct {
	APIURL       string
	Token        string
	Timeout      time.Duration
	MaxRetries   int
	CacheEntries int
	CacheTTL     time.Duration
}

// NewClient creates a GitHub mirror client.
func NewClient(opts Options) *Client {
	if opts.APIURL == "" {
		opts.APIURL = "https://api.github.com"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.CacheEntries <= 0 {
		opts.CacheEntries = 256
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	return &Client{
		apiURL:     strings.TrimSuffix(opts.APIURL, "/"),
		token:      opts.Token,
		httpClient: &http.Client{Timeout: opts.Timeout},
		maxRetries: opts.MaxRetries,
		treeCache:  expirable.NewLRU[string, *Tree](opts.CacheEntries, nil, opts.CacheTTL),
		fileCache:  expirable.NewLRU[string, string](opts.CacheEntries, nil, opts.CacheTTL),
	}
}

// ParseRepoURL extracts owner and repo from a github.com repository URL.
func ParseRepoURL(raw string) (owner, repo string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid github url: %s", raw)
	}
	if u.Host != "github.com" && u.Host != "www.github.com" {
		return "", "", fmt.Errorf("invalid github url: %s", raw)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid github path: %s", raw)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// treeResponse is the git trees API payload.
type treeResponse struct {
	Tree []struct {
		Path string `json:"path"`
		Type string `json:"type"`
	} `json:"tree"`
	Truncated bool `json:"truncated"`
}

// RepoTree fetches the recursive tree of a repository at a ref.
func (c *Client) RepoTree(ctx context.Context, owner, repo, ref string) (*Tree, error) {
	key := owner + "/" + repo + "@" + ref
	if tree, ok := c.treeCache.Get(key); ok {
		return tree, nil
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1", c.apiURL, owner, repo, url.PathEscape(ref))
	var resp treeResponse
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch tree for %s: %w", key, err)
	}

	tree := &Tree{Name: repo}
	for _, item := range resp.Tree {
		entryType := EntryTypeFile
		if item.Type == "tree" {
			entryType = EntryTypeDirectory
		}
		tree.Entries = append(tree.Entries, TreeEntry{Path: item.Path, Type: entryType})
	}

	c.treeCache.Add(key, tree)
	return tree, nil
}

// contentsResponse is the contents API payload.
type contentsResponse struct {
	Type     string `json:"type"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

// ReadFile fetches and decodes one file's content at a ref.
func (c *Client) ReadFile(ctx context.Context, owner, repo, path, ref string) (string, error) {
	key := owner + "/" + repo + "@" + ref + ":" + path
	if content, ok := c.fileCache.Get(key); ok {
		return content, nil
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s", c.apiURL, owner, repo, path, url.QueryEscape(ref))
	var resp contentsResponse
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	if resp.Type != "file" {
		return "", fmt.Errorf("path %s is not a file, got type %s", path, resp.Type)
	}
	if resp.Encoding != "base64" {
		return "", fmt.Errorf("unsupported encoding for %s: %s", path, resp.Encoding)
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", path, err)
	}

	content := string(decoded)
	c.fileCache.Add(key, content)
	return content, nil
}

// get performs one GET with auth, retrying transient failures.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		retryable, err := c.getOnce(ctx, endpoint, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return lastErr
}

func (c *Client) getOnce(ctx context.Context, endpoint string, out any) (retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, fmt.Errorf("not found")
	case resp.StatusCode >= 500:
		return true, fmt.Errorf("server returned status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to parse response: %w", err)
	}
	return false, nil
}
