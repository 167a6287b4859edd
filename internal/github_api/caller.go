// Package githubapi is the read-only GitHub REST client of the finder. It searches
// repositories and fetches a repository's issues, contributors and README, narrowing every
// payload into the model types. Calls are throttled by a per-second limiter and carry the
// caller's context so an abandoned page cancels its requests.
package githubapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/thep200/oss-finder/cfg"
	"github.com/thep200/oss-finder/internal/limiter"
	"github.com/thep200/oss-finder/internal/model"
	"github.com/thep200/oss-finder/pkg/log"
)

var (
	ErrNotFound    = errors.New("github: not found")
	ErrRateLimited = errors.New("github: rate limit exceeded")
)

// RateLimitError carries the reset time reported by GitHub.
type RateLimitError struct {
	Reset time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github: rate limit exceeded, resets at %s", e.Reset.Format(time.RFC3339))
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// IssueFilter narrows ListIssues.
type IssueFilter struct {
	Labels  []string
	State   string
	PerPage int
}

type Caller struct {
	Logger      log.Logger
	Config      *cfg.Config
	baseURL     string
	httpClient  *http.Client
	rateLimiter *limiter.RateLimiter
}

func NewCaller(logger log.Logger, config *cfg.Config) *Caller {
	return &Caller{
		Logger:      logger,
		Config:      config,
		baseURL:     strings.TrimRight(config.GithubApi.BaseUrl, "/"),
		httpClient:  &http.Client{Timeout: time.Duration(config.GithubApi.TimeoutSec) * time.Second},
		rateLimiter: limiter.NewRateLimiter(config.GithubApi.RequestsPerSecond),
	}
}

// HandleRateLimit turns an exhausted-quota response into a RateLimitError.
func (c *Caller) HandleRateLimit(ctx context.Context, resp *http.Response) error {
	rateRemaining := resp.Header.Get("X-RateLimit-Remaining")
	limited := (resp.StatusCode == http.StatusForbidden && rateRemaining == "0") ||
		resp.StatusCode == http.StatusTooManyRequests
	if !limited {
		return nil
	}

	resetTime := time.Now().Add(time.Duration(c.Config.GithubApi.RateLimitResetMin) * time.Minute)
	if resetUnix, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		if t := time.Unix(resetUnix, 0); t.After(time.Now()) {
			resetTime = t
		}
	}

	c.Logger.Warn(ctx, "GitHub rate limit hit, resets at %s", resetTime.Format(time.RFC3339))
	return &RateLimitError{Reset: resetTime}
}

func (c *Caller) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	throttle := time.Duration(c.Config.GithubApi.ThrottleDelay) * time.Millisecond
	if err := c.rateLimiter.Wait(ctx, throttle); err != nil {
		return err
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	c.Logger.Debug(ctx, "Calling GitHub API: %s", fullURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.Config.GithubApi.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.Config.GithubApi.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.Logger.Debug(ctx, "Rate limit remaining: %s", resp.Header.Get("X-RateLimit-Remaining"))

	if err := c.HandleRateLimit(ctx, resp); err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	// Contributors of an empty repository come back as 204.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("github %s: unexpected status %s: %s", path, resp.Status, apiErr.Message)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func repoPath(owner, repo string) string {
	return "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(repo)
}

// SearchRepositories runs a repository search sorted by stars.
func (c *Caller) SearchRepositories(ctx context.Context, query string, page, perPage int) ([]model.Project, int, error) {
	if perPage <= 0 || perPage > 100 {
		perPage = 30
	}
	if page <= 0 {
		page = 1
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "stars")
	params.Set("order", "desc")
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))

	var raw SearchResponse
	if err := c.get(ctx, "/search/repositories", params, &raw); err != nil {
		return nil, 0, err
	}

	if page*perPage > 1000 {
		c.Logger.Warn(ctx, "GitHub API only provides access to the first 1,000 search results")
	}

	markGoodFirstIssues := strings.Contains(query, "good-first-issues:")
	projects := make([]model.Project, 0, len(raw.Items))
	for _, item := range raw.Items {
		p := ToProject(item)
		if markGoodFirstIssues {
			p.HasGoodFirstIssues = true
		}
		projects = append(projects, p)
	}

	c.Logger.Info(ctx, "Total repositories found: %d, page: %d, items received: %d",
		raw.TotalCount, page, len(projects))
	return projects, raw.TotalCount, nil
}

func (c *Caller) GetRepository(ctx context.Context, owner, repo string) (model.Project, error) {
	var raw RepositoryResponse
	if err := c.get(ctx, repoPath(owner, repo), nil, &raw); err != nil {
		return model.Project{}, err
	}
	return ToProject(raw), nil
}

func (c *Caller) ListIssues(ctx context.Context, owner, repo string, filter IssueFilter) ([]model.Issue, error) {
	params := url.Values{}
	state := filter.State
	if state == "" {
		state = "open"
	}
	params.Set("state", state)
	if len(filter.Labels) > 0 {
		params.Set("labels", strings.Join(filter.Labels, ","))
	}
	perPage := filter.PerPage
	if perPage <= 0 || perPage > 100 {
		perPage = 30
	}
	params.Set("per_page", strconv.Itoa(perPage))

	var raw []IssueResponse
	if err := c.get(ctx, repoPath(owner, repo)+"/issues", params, &raw); err != nil {
		return nil, err
	}

	issues := make([]model.Issue, 0, len(raw))
	for _, r := range raw {
		if issue, ok := ToIssue(r); ok {
			issues = append(issues, issue)
		}
	}
	return issues, nil
}

func (c *Caller) ListContributors(ctx context.Context, owner, repo string, perPage int) ([]model.Contributor, error) {
	if perPage <= 0 || perPage > 100 {
		perPage = 30
	}
	params := url.Values{}
	params.Set("per_page", strconv.Itoa(perPage))

	var raw []ContributorResponse
	if err := c.get(ctx, repoPath(owner, repo)+"/contributors", params, &raw); err != nil {
		return nil, err
	}

	contributors := make([]model.Contributor, 0, len(raw))
	for _, r := range raw {
		if r.Type == "Bot" {
			continue
		}
		contributors = append(contributors, ToContributor(r))
	}
	return contributors, nil
}

// GetReadme returns the decoded README markdown.
func (c *Caller) GetReadme(ctx context.Context, owner, repo string) (string, error) {
	var raw ReadmeResponse
	if err := c.get(ctx, repoPath(owner, repo)+"/readme", nil, &raw); err != nil {
		return "", err
	}
	if raw.Encoding != "base64" {
		return raw.Content, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(raw.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("decode readme: %w", err)
	}
	return string(decoded), nil
}
