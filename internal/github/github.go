package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const defaultAPIURL = "https://api.github.com"

// ErrNoToken is returned by NewClient when GITHUB_TOKEN is unset.
var ErrNoToken = errors.New("GITHUB_TOKEN environment variable is not set")

// Client provides access to the GitHub REST API.
type Client struct {
	token   string
	apiURL  string
	httpCli *http.Client
}

// NewClient creates a new GitHub client. Requires GITHUB_TOKEN env var.
func NewClient() (*Client, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, ErrNoToken
	}

	apiURL := os.Getenv("GITHUB_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	apiURL = strings.TrimRight(apiURL, "/")

	return &Client{
		token:   token,
		apiURL:  apiURL,
		httpCli: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Comment is an issue comment on a pull request.
type Comment struct {
	ID      int64  `json:"id"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

// ListComments fetches the first page of issue comments on a pull request.
func (c *Client) ListComments(ctx context.Context, owner, repo string, prNumber int) ([]Comment, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments?per_page=100", c.apiURL, owner, repo, prNumber)

	body, status, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("PR #%d not found in %s/%s", prNumber, owner, repo)
	}
	if err := statusError(status, body); err != nil {
		return nil, err
	}

	var comments []Comment
	if err := json.Unmarshal(body, &comments); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return comments, nil
}

// PostComment creates a new comment on a pull request.
func (c *Client) PostComment(ctx context.Context, owner, repo string, prNumber int, text string) (*Comment, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments", c.apiURL, owner, repo, prNumber)
	return c.sendComment(ctx, http.MethodPost, url, text)
}

// UpdateComment replaces the body of an existing comment.
func (c *Client) UpdateComment(ctx context.Context, owner, repo string, id int64, text string) (*Comment, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/issues/comments/%d", c.apiURL, owner, repo, id)
	return c.sendComment(ctx, http.MethodPatch, url, text)
}

// UpsertComment updates the first comment containing marker, or posts a new
// one when none exists.
func (c *Client) UpsertComment(ctx context.Context, owner, repo string, prNumber int, marker, text string) (*Comment, error) {
	if marker != "" {
		existing, err := c.ListComments(ctx, owner, repo, prNumber)
		if err != nil {
			return nil, err
		}
		for _, cm := range existing {
			if strings.Contains(cm.Body, marker) {
				return c.UpdateComment(ctx, owner, repo, cm.ID, text)
			}
		}
	}
	return c.PostComment(ctx, owner, repo, prNumber, text)
}

func (c *Client) sendComment(ctx context.Context, method, url, text string) (*Comment, error) {
	payload, err := json.Marshal(map[string]string{"body": text})
	if err != nil {
		return nil, fmt.Errorf("marshaling comment: %w", err)
	}

	body, status, err := c.do(ctx, method, url, payload)
	if err != nil {
		return nil, fmt.Errorf("posting comment: %w", err)
	}
	if status == http.StatusUnprocessableEntity {
		return nil, fmt.Errorf("GitHub rejected comment (422): %s", string(body))
	}
	if err := statusError(status, body); err != nil {
		return nil, err
	}

	var cm Comment
	if err := json.Unmarshal(body, &cm); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return &cm, nil
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte) ([]byte, int, error) {
	var r io.Reader
	if payload != nil {
		r = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reading response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func statusError(status int, body []byte) error {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return fmt.Errorf("authentication failed: %s", string(body))
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("GitHub API error (status %d): %s", status, string(body))
	}
	return nil
}

var (
	httpsRemoteRe = regexp.MustCompile(`https?://[^/]+/([^/]+)/([^/.\s]+)`)
	sshRemoteRe   = regexp.MustCompile(`[^@]+@[^:]+:([^/]+)/([^/.\s]+)`)
)

// DetectRepo parses owner/repo from the origin remote of the repository in dir.
func DetectRepo(dir string) (owner, repo string, err error) {
	cmd := exec.Command("git", "remote", "get-url", "origin")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", "", fmt.Errorf("cannot detect repo: git remote get-url origin failed: %w", err)
	}
	return ParseRemoteURL(strings.TrimSpace(string(out)))
}

// ParseRemoteURL extracts owner/repo from a git remote URL.
func ParseRemoteURL(url string) (owner, repo string, err error) {
	url = strings.TrimSuffix(url, ".git")

	if m := httpsRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	if m := sshRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	return "", "", fmt.Errorf("cannot parse owner/repo from remote URL: %s", url)
}
