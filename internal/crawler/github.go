// Package crawler fetches configured repositories, runs them through the
// splitting pipeline and indexes the result, re-crawling only when the
// remote has new commits.
package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adriankh/reposage/internal/core"
	"github.com/adriankh/reposage/internal/models"
)

const githubAPIURL = "https://api.github.com/repos/"

// GitHubClient is a minimal wrapper around GitHub's REST API v3, just the
// endpoints the crawl decision needs.
type GitHubClient struct {
	http  *http.Client
	token string
}

// NewGitHubClient returns a ready-to-use client. token may be empty, but
// unauthenticated calls hit very low rate limits.
func NewGitHubClient(token string) *GitHubClient {
	return &GitHubClient{
		http:  &http.Client{Timeout: 20 * time.Second},
		token: token,
	}
}

// ownerRepo pulls the owner and repository name out of a GitHub URL like
// https://github.com/owner/repo.
func ownerRepo(repoURL string) (string, string, error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid repository URL %q: %w", repoURL, err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GitHub repository URL %q", repoURL)
	}
	return parts[0], parts[1], nil
}

// RepoInfo fetches the repository metadata, including its default branch.
func (c *GitHubClient) RepoInfo(ctx context.Context, repoURL string) (*models.RemoteRepoInfo, error) {
	owner, repo, err := ownerRepo(repoURL)
	if err != nil {
		return nil, err
	}

	var info models.RemoteRepoInfo
	u := githubAPIURL + url.PathEscape(owner) + "/" + url.PathEscape(repo)
	if err := c.get(ctx, u, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// LastCommitTS returns the unix timestamp of the newest commit on branch.
func (c *GitHubClient) LastCommitTS(ctx context.Context, repoURL, branch string) (int64, error) {
	owner, repo, err := ownerRepo(repoURL)
	if err != nil {
		return 0, err
	}

	var payload struct {
		Commit struct {
			Author struct {
				Date string `json:"date"`
			} `json:"author"`
		} `json:"commit"`
	}
	u := githubAPIURL + url.PathEscape(owner) + "/" + url.PathEscape(repo) +
		"/commits/" + url.PathEscape(branch)
	if err := c.get(ctx, u, &payload); err != nil {
		return 0, err
	}

	ts, err := time.Parse(time.RFC3339, payload.Commit.Author.Date)
	if err != nil {
		return 0, fmt.Errorf("parse commit date %q: %w", payload.Commit.Author.Date, err)
	}
	return ts.Unix(), nil
}

func (c *GitHubClient) get(ctx context.Context, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &core.RemoteServiceError{Service: "github", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return &core.RemoteServiceError{
			Service: "github",
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("unexpected status %s for %s", resp.Status, u),
		}
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
