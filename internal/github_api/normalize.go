package githubapi

import (
	"strings"

	"github.com/thep200/oss-finder/internal/model"
)

// ToProject narrows a repository payload into model.Project and validates it once.
func ToProject(r RepositoryResponse) model.Project {
	p := model.Project{
		ID:         r.Id,
		FullName:   r.FullName,
		Owner:      r.Owner.Login,
		Name:       r.Name,
		Topics:     r.Topics,
		Stars:      r.StargazersCount,
		Forks:      r.ForksCount,
		OpenIssues: r.OpenIssuesCount,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		URL:        r.HtmlUrl,
		Archived:   r.Archived,
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Language != nil {
		p.Language = *r.Language
	}
	if r.License != nil {
		p.License = r.License.Name
		if p.License == "" {
			p.License = r.License.SpdxID
		}
	}
	// pushed_at tracks code activity; updated_at also moves on stars
	if r.PushedAt.After(p.UpdatedAt) {
		p.UpdatedAt = r.PushedAt
	}
	return p.Normalize()
}

// ToIssue returns false for pull requests, which the issues endpoint also lists.
func ToIssue(r IssueResponse) (model.Issue, bool) {
	if r.PullRequest != nil {
		return model.Issue{}, false
	}
	issue := model.Issue{
		ID:        r.Id,
		Number:    r.Number,
		Title:     strings.TrimSpace(r.Title),
		URL:       r.HtmlUrl,
		State:     r.State,
		Labels:    make([]string, 0, len(r.Labels)),
		Comments:  r.Comments,
		Author:    r.User.Login,
		CreatedAt: r.CreatedAt,
	}
	for _, l := range r.Labels {
		issue.Labels = append(issue.Labels, l.Name)
		if model.IsGoodFirstIssueLabel(l.Name) {
			issue.IsGoodFirstIssue = true
		}
	}
	return issue, true
}

func ToContributor(r ContributorResponse) model.Contributor {
	return model.Contributor{
		Login:         r.Login,
		ID:            r.Id,
		AvatarURL:     r.AvatarUrl,
		URL:           r.HtmlUrl,
		Contributions: r.Contributions,
	}
}
