package model

import "time"

type SubmissionTags struct {
	GoodFirstIssues   bool `json:"goodFirstIssues"`
	Documentation     bool `json:"documentation"`
	ActiveMaintainers bool `json:"activeMaintainers"`
	BeginnerFriendly  bool `json:"beginnerFriendly"`
	Hacktoberfest     bool `json:"hacktoberfest"`
}

// Count is the number of tags set.
func (t SubmissionTags) Count() int {
	n := 0
	for _, v := range []bool{t.GoodFirstIssues, t.Documentation, t.ActiveMaintainers, t.BeginnerFriendly, t.Hacktoberfest} {
		if v {
			n++
		}
	}
	return n
}

type SubmissionRequest struct {
	RepoURL         string         `json:"repoUrl"`
	Description     string         `json:"description"`
	Reason          string         `json:"reason"`
	RichDescription string         `json:"richDescription"`
	Tags            SubmissionTags `json:"tags"`
	Screenshots     []string       `json:"screenshots"`
	SubmittedBy     string         `json:"submittedBy,omitempty"`
}

type SubmissionStatus string

const (
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionPending  SubmissionStatus = "pending"
)

type SubmissionResponse struct {
	Success           bool             `json:"success"`
	SubmissionID      string           `json:"submissionId"`
	Status            SubmissionStatus `json:"status"`
	VerificationScore int              `json:"verificationScore"`
	Message           string           `json:"message"`
}

// Submission is what gets persisted.
type Submission struct {
	ID                string            `json:"id"`
	Request           SubmissionRequest `json:"request"`
	Project           *Project          `json:"project,omitempty"`
	Status            SubmissionStatus  `json:"status"`
	VerificationScore int               `json:"verificationScore"`
	Checks            []string          `json:"checks"`
	SubmittedAt       time.Time         `json:"submittedAt"`
}
