package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thep200/oss-finder/pkg/db"
)

type sample struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	handle, err := db.OpenSqliteInMemory()
	require.NoError(t, err)
	sqlite, err := NewSqlite(handle)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}
}

func TestStore_Contract(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Get(ctx, "u1", KeyPreferences)
			assert.ErrorIs(t, err, ErrNotFound)

			rev, err := PutJSON(ctx, s, "u1", KeyPreferences, sample{Name: "a", Items: []string{"x"}}, 0)
			require.NoError(t, err)
			assert.Equal(t, int64(1), rev)

			var got sample
			rev, err = GetJSON(ctx, s, "u1", KeyPreferences, &got)
			require.NoError(t, err)
			assert.Equal(t, int64(1), rev)
			assert.Equal(t, sample{Name: "a", Items: []string{"x"}}, got)

			// creating again conflicts
			_, err = PutJSON(ctx, s, "u1", KeyPreferences, sample{Name: "b"}, 0)
			assert.ErrorIs(t, err, ErrConflict)

			// stale revision conflicts, current revision wins
			rev, err = PutJSON(ctx, s, "u1", KeyPreferences, sample{Name: "b"}, 1)
			require.NoError(t, err)
			assert.Equal(t, int64(2), rev)
			_, err = PutJSON(ctx, s, "u1", KeyPreferences, sample{Name: "c"}, 1)
			assert.ErrorIs(t, err, ErrConflict)

			// AnyRevision is last-write-wins
			rev, err = PutJSON(ctx, s, "u1", KeyPreferences, sample{Name: "d"}, AnyRevision)
			require.NoError(t, err)
			assert.Equal(t, int64(3), rev)

			_, err = PutJSON(ctx, s, "u1", KeyAchievements, sample{}, AnyRevision)
			require.NoError(t, err)
			keys, err := s.Keys(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, []string{KeyAchievements, KeyPreferences}, keys)

			require.NoError(t, s.Delete(ctx, "u1", KeyAchievements))
			_, err = s.Get(ctx, "u1", KeyAchievements)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestGetJSON_Corrupt(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	_, err := s.Put(ctx, "u1", KeyPreferences, []byte("{not json"), AnyRevision)
	require.NoError(t, err)

	var got sample
	_, err = GetJSON(ctx, s, "u1", KeyPreferences, &got)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	_, err := PutJSON(ctx, s, "u1", KeyPreferences, sample{Name: "one"}, AnyRevision)
	require.NoError(t, err)

	_, err = s.Get(ctx, "u2", KeyPreferences)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "analytics_data_popularity_42", ProjectAnalyticsKey(42))
}

// racingStore writes behind the caller's back before the first Put so it hits a conflict.
type racingStore struct {
	Store
	raced bool
}

func (r *racingStore) Put(ctx context.Context, namespace, key string, value []byte, expected int64) (int64, error) {
	if !r.raced {
		r.raced = true
		if _, err := PutJSON(ctx, r.Store, namespace, key, sample{Name: "other", Items: []string{"z"}}, AnyRevision); err != nil {
			return 0, err
		}
	}
	return r.Store.Put(ctx, namespace, key, value, expected)
}

func TestUpdateJSON_RetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	s := &racingStore{Store: NewMemory()}
	calls := 0

	got, err := UpdateJSON(ctx, s, "u1", KeyAchievements, func() sample { return sample{} }, func(v *sample) error {
		calls++
		v.Items = append(v.Items, "mine")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "other", got.Name)
	assert.Equal(t, []string{"z", "mine"}, got.Items)

	var stored sample
	_, err = GetJSON(ctx, s, "u1", KeyAchievements, &stored)
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestUpdateJSON_CorruptStartsFresh(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	_, err := s.Put(ctx, "u1", KeyAchievements, []byte("{broken"), AnyRevision)
	require.NoError(t, err)

	got, err := UpdateJSON(ctx, s, "u1", KeyAchievements, func() sample { return sample{Name: "default"} }, func(v *sample) error {
		v.Items = []string{"a"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, sample{Name: "default", Items: []string{"a"}}, got)
}
