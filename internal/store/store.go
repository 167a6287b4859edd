// Package store is the durable per-user key-value port. Values are JSON documents addressed
// by (namespace, key); the namespace is a user id or one of the system namespaces below.
// Every write bumps a revision so read-modify-write callers can detect a concurrent writer
// instead of silently overwriting it.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrConflict = errors.New("store: revision conflict")
	ErrCorrupt  = errors.New("store: corrupt value")
)

// AnyRevision makes Put overwrite unconditionally (last write wins).
const AnyRevision int64 = -1

// System namespaces.
const (
	NamespaceCatalog     = "_catalog"
	NamespaceAnalytics   = "_analytics"
	NamespaceSubmissions = "_submissions"
)

// Record kinds stored under a user namespace.
const (
	KeyPreferences   = "user_preferences"
	KeyAchievements  = "user_achievements"
	KeySearchHistory = "search_history"
	KeyUserAnalytics = "analytics_user"
)

// ProjectAnalyticsKey is the analytics counter key for a project.
func ProjectAnalyticsKey(projectID int64) string {
	return fmt.Sprintf("analytics_data_popularity_%d", projectID)
}

type Entry struct {
	Value     []byte
	Revision  int64
	UpdatedAt time.Time
}

// Store is implemented by the memory, sqlite and mysql backends. Put with expectedRevision 0
// creates a new entry and fails with ErrConflict if one exists; a positive revision must
// match the stored one.
type Store interface {
	Get(ctx context.Context, namespace, key string) (Entry, error)
	Put(ctx context.Context, namespace, key string, value []byte, expectedRevision int64) (int64, error)
	Delete(ctx context.Context, namespace, key string) error
	Keys(ctx context.Context, namespace string) ([]string, error)
	Close() error
}

// GetJSON decodes the entry into out and returns its revision.
func GetJSON(ctx context.Context, s Store, namespace, key string, out interface{}) (int64, error) {
	entry, err := s.Get(ctx, namespace, key)
	if err != nil {
		return 0, err
	}
	if err := json.Unmarshal(entry.Value, out); err != nil {
		return entry.Revision, fmt.Errorf("%s/%s: %w: %v", namespace, key, ErrCorrupt, err)
	}
	return entry.Revision, nil
}

// PutJSON encodes v and writes it with the given revision precondition.
func PutJSON(ctx context.Context, s Store, namespace, key string, v interface{}, expectedRevision int64) (int64, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encode %s/%s: %w", namespace, key, err)
	}
	return s.Put(ctx, namespace, key, data, expectedRevision)
}

// checkRevision applies the Put precondition given the current revision (0 when absent).
func checkRevision(current, expected int64) error {
	if expected == AnyRevision {
		return nil
	}
	if current != expected {
		return fmt.Errorf("%w: have %d, expected %d", ErrConflict, current, expected)
	}
	return nil
}
