// DTOs for the GitHub REST responses the finder reads. Anything not listed is discarded.

package githubapi

import "time"

type Owner struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
}

type License struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	SpdxID string `json:"spdx_id"`
}

type RepositoryResponse struct {
	Id              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Owner           Owner     `json:"owner"`
	Description     *string   `json:"description"`
	Language        *string   `json:"language"`
	Topics          []string  `json:"topics"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	OpenIssuesCount int       `json:"open_issues_count"`
	HtmlUrl         string    `json:"html_url"`
	License         *License  `json:"license"`
	Archived        bool      `json:"archived"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	PushedAt        time.Time `json:"pushed_at"`
}

type SearchResponse struct {
	TotalCount        int                  `json:"total_count"`
	IncompleteResults bool                 `json:"incomplete_results"`
	Items             []RepositoryResponse `json:"items"`
}

type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type IssueResponse struct {
	Id          int64     `json:"id"`
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	HtmlUrl     string    `json:"html_url"`
	State       string    `json:"state"`
	Labels      []Label   `json:"labels"`
	Comments    int       `json:"comments"`
	User        Owner     `json:"user"`
	CreatedAt   time.Time `json:"created_at"`
	PullRequest *struct {
		Url string `json:"url"`
	} `json:"pull_request,omitempty"`
}

type ContributorResponse struct {
	Login         string `json:"login"`
	Id            int64  `json:"id"`
	AvatarUrl     string `json:"avatar_url"`
	HtmlUrl       string `json:"html_url"`
	Contributions int    `json:"contributions"`
	Type          string `json:"type"`
}

type ReadmeResponse struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	HtmlUrl  string `json:"html_url"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}
