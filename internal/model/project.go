package model

import (
	"sort"
	"strings"
	"time"
)

// Project is a normalized snapshot of a GitHub repository. Construct it through Normalize
// so Topics is never nil and the timestamps are populated.
type Project struct {
	ID                 int64     `json:"id" yaml:"id"`
	FullName           string    `json:"fullName" yaml:"full_name"`
	Owner              string    `json:"owner" yaml:"owner"`
	Name               string    `json:"name" yaml:"name"`
	Description        string    `json:"description" yaml:"description"`
	Language           string    `json:"language" yaml:"language"`
	Topics             []string  `json:"topics" yaml:"topics"`
	Stars              int       `json:"stars" yaml:"stars"`
	Forks              int       `json:"forks" yaml:"forks"`
	OpenIssues         int       `json:"openIssues" yaml:"open_issues"`
	UpdatedAt          time.Time `json:"updatedAt" yaml:"updated_at"`
	CreatedAt          time.Time `json:"createdAt" yaml:"created_at"`
	License            string    `json:"license" yaml:"license"`
	URL                string    `json:"url" yaml:"url"`
	HasGoodFirstIssues bool      `json:"hasGoodFirstIssues" yaml:"has_good_first_issues"`
	Archived           bool      `json:"archived" yaml:"archived"`
}

// Normalize fills defaults once so scorers can rely on non-empty invariants.
func (p Project) Normalize() Project {
	if p.FullName == "" && p.Owner != "" && p.Name != "" {
		p.FullName = p.Owner + "/" + p.Name
	}
	if p.Owner == "" || p.Name == "" {
		owner, name := SplitFullName(p.FullName)
		if p.Owner == "" {
			p.Owner = owner
		}
		if p.Name == "" {
			p.Name = name
		}
	}
	if p.URL == "" && p.FullName != "" {
		p.URL = "https://github.com/" + p.FullName
	}
	p.Description = TruncateString(strings.TrimSpace(p.Description), 1000)
	p.Language = strings.TrimSpace(p.Language)
	p.Topics = NormalizeTopics(p.Topics)
	if p.Stars < 0 {
		p.Stars = 0
	}
	if p.Forks < 0 {
		p.Forks = 0
	}
	if p.OpenIssues < 0 {
		p.OpenIssues = 0
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	if !p.HasGoodFirstIssues {
		for _, t := range p.Topics {
			if t == "good-first-issue" || t == "good-first-issues" || t == "hacktoberfest" {
				p.HasGoodFirstIssues = true
				break
			}
		}
	}
	return p
}

// Popularity is the raw stars + 2*forks measure used by several rankers.
func (p Project) Popularity() int {
	return p.Stars + 2*p.Forks
}

// HasTopic reports whether the project carries topic t (case-insensitive).
func (p Project) HasTopic(t string) bool {
	t = strings.ToLower(t)
	for _, topic := range p.Topics {
		if topic == t {
			return true
		}
	}
	return false
}

// NormalizeTopics lower-cases, trims, deduplicates and sorts topics. Never returns nil.
func NormalizeTopics(topics []string) []string {
	seen := make(map[string]struct{}, len(topics))
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// SplitFullName splits "owner/name". A value without a slash yields an empty owner.
func SplitFullName(fullName string) (string, string) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "", fullName
}

// Issue is a GitHub issue narrowed to what the finder shows. Pull requests never become Issues.
type Issue struct {
	ID               int64     `json:"id"`
	Number           int       `json:"number"`
	Title            string    `json:"title"`
	URL              string    `json:"url"`
	State            string    `json:"state"`
	Labels           []string  `json:"labels"`
	Comments         int       `json:"comments"`
	Author           string    `json:"author"`
	CreatedAt        time.Time `json:"createdAt"`
	IsGoodFirstIssue bool      `json:"isGoodFirstIssue"`
}

// GoodFirstIssueLabels are the label spellings treated as beginner friendly.
var GoodFirstIssueLabels = []string{"good first issue", "good-first-issue", "beginner", "easy", "first-timers-only", "starter"}

// IsGoodFirstIssueLabel matches a label against GoodFirstIssueLabels.
func IsGoodFirstIssueLabel(label string) bool {
	label = strings.ToLower(strings.TrimSpace(label))
	for _, l := range GoodFirstIssueLabels {
		if label == l {
			return true
		}
	}
	return false
}

type Contributor struct {
	Login         string `json:"login"`
	ID            int64  `json:"id"`
	AvatarURL     string `json:"avatarUrl"`
	URL           string `json:"url"`
	Contributions int    `json:"contributions"`
}

// ProjectDetail is everything the project page needs. Parts that failed to load are empty
// and named in Partial.
type ProjectDetail struct {
	Project         Project       `json:"project"`
	Issues          []Issue       `json:"issues"`
	GoodFirstIssues []Issue       `json:"goodFirstIssues"`
	Contributors    []Contributor `json:"contributors"`
	Readme          string        `json:"readme"`
	Partial         []string      `json:"partial,omitempty"`
}
