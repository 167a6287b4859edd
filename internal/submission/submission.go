// Package submission accepts community project submissions, verifies them against
// GitHub and auto-approves the ones that score well enough.
package submission

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/thep200/oss-finder/internal/model"
	"github.com/thep200/oss-finder/internal/store"
	"github.com/thep200/oss-finder/pkg/log"
)

const (
	// ApprovalThreshold is the verification score at which a submission is approved.
	ApprovalThreshold = 70

	minTextLength  = 20
	minStars       = 10
	recentActivity = 90
)

var (
	ErrInvalidRequest = errors.New("submission: invalid request")
	ErrInvalidRepoURL = fmt.Errorf("%w: repository url", ErrInvalidRequest)
	ErrNotFound       = errors.New("submission: not found")
)

// RepoLookup resolves a repository; the catalog implements it.
type RepoLookup interface {
	Project(ctx context.Context, owner, repo string) (model.Project, error)
}

type Service struct {
	Logger log.Logger
	lookup RepoLookup
	store  store.Store
	now    func() time.Time
	newID  func() string
}

func NewService(logger log.Logger, lookup RepoLookup, st store.Store) *Service {
	return &Service{
		Logger: logger,
		lookup: lookup,
		store:  st,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// ParseRepoURL extracts owner and repo from a github.com URL.
func ParseRepoURL(raw string) (string, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", fmt.Errorf("%w is required", ErrInvalidRepoURL)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidRepoURL, err)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if host != "github.com" || (u.Scheme != "https" && u.Scheme != "http") {
		return "", "", fmt.Errorf("%w must point to github.com", ErrInvalidRepoURL)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w must be https://github.com/<owner>/<repo>", ErrInvalidRepoURL)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// Validate checks the fields a submission cannot go without.
func Validate(req model.SubmissionRequest) error {
	if _, _, err := ParseRepoURL(req.RepoURL); err != nil {
		return err
	}
	if strings.TrimSpace(req.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return fmt.Errorf("%w: reason is required", ErrInvalidRequest)
	}
	return nil
}

// Verify scores a submission 0-100. p is nil when the repository could not be found.
func Verify(req model.SubmissionRequest, p *model.Project, now time.Time) (int, []string) {
	score := 0
	var checks []string
	check := func(ok bool, points int, name string) {
		if ok {
			score += points
			checks = append(checks, name)
		}
	}

	_, _, urlErr := ParseRepoURL(req.RepoURL)
	check(urlErr == nil, 20, "valid_url")
	check(p != nil, 20, "repository_exists")
	check(utf8.RuneCountInString(strings.TrimSpace(req.Description)) >= minTextLength, 10, "description")
	check(utf8.RuneCountInString(strings.TrimSpace(req.Reason)) >= minTextLength, 10, "reason")
	if p != nil {
		check(p.License != "", 10, "license")
		check(!p.UpdatedAt.IsZero() && model.DaysBetween(p.UpdatedAt, now) <= recentActivity, 10, "recent_activity")
		check(p.Stars >= minStars, 10, "stars")
	}
	check(req.Tags.Count() > 0, 5, "tags")
	check(len(req.Screenshots) > 0, 5, "screenshots")

	if checks == nil {
		checks = []string{}
	}
	return score, checks
}

// Submit validates, verifies and stores a submission.
func (s *Service) Submit(ctx context.Context, req model.SubmissionRequest) (model.SubmissionResponse, error) {
	if err := Validate(req); err != nil {
		return model.SubmissionResponse{Success: false, Message: err.Error()}, err
	}
	owner, repo, _ := ParseRepoURL(req.RepoURL)

	var project *model.Project
	p, err := s.lookup.Project(ctx, owner, repo)
	switch {
	case err == nil:
		project = &p
	case ctx.Err() != nil:
		return model.SubmissionResponse{}, ctx.Err()
	default:
		s.Logger.Warn(ctx, "[SUBMISSION] Could not verify %s/%s: %v", owner, repo, err)
	}

	score, checks := Verify(req, project, s.now())
	status := model.SubmissionPending
	message := "Thanks! Your submission is queued for manual review."
	if score >= ApprovalThreshold {
		status = model.SubmissionApproved
		message = "Thanks! Your submission passed verification and was approved."
	}

	sub := model.Submission{
		ID:                s.newID(),
		Request:           req,
		Project:           project,
		Status:            status,
		VerificationScore: score,
		Checks:            checks,
		SubmittedAt:       s.now(),
	}
	if _, err := store.PutJSON(ctx, s.store, store.NamespaceSubmissions, sub.ID, sub, 0); err != nil {
		return model.SubmissionResponse{}, fmt.Errorf("store submission %s: %w", sub.ID, err)
	}
	s.Logger.Info(ctx, "[SUBMISSION] %s for %s/%s scored %d (%s)", sub.ID, owner, repo, score, status)

	return model.SubmissionResponse{
		Success:           true,
		SubmissionID:      sub.ID,
		Status:            status,
		VerificationScore: score,
		Message:           message,
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (model.Submission, error) {
	var sub model.Submission
	_, err := store.GetJSON(ctx, s.store, store.NamespaceSubmissions, id, &sub)
	if errors.Is(err, store.ErrNotFound) {
		return model.Submission{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Submission{}, err
	}
	return sub, nil
}
