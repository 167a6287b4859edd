package store

import (
	"context"
	"errors"
	"fmt"
)

// MaxUpdateAttempts bounds the retries of UpdateJSON under write contention.
const MaxUpdateAttempts = 5

// UpdateJSON is a read-modify-write of (namespace, key). A missing or corrupt value starts
// from init(). The write is conditional on the revision that was read; on ErrConflict the
// whole cycle is repeated with fresh state. A fn error aborts without writing.
func UpdateJSON[T any](ctx context.Context, s Store, namespace, key string, init func() T, fn func(*T) error) (T, error) {
	var zero T
	for attempt := 0; attempt < MaxUpdateAttempts; attempt++ {
		value := init()
		revision, err := GetJSON(ctx, s, namespace, key, &value)
		switch {
		case err == nil:
		case errors.Is(err, ErrNotFound):
			revision = 0
		case errors.Is(err, ErrCorrupt):
			value = init()
		default:
			return zero, err
		}

		if err := fn(&value); err != nil {
			return zero, err
		}

		_, err = PutJSON(ctx, s, namespace, key, value, revision)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, ErrConflict) {
			return zero, err
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
	}
	return zero, fmt.Errorf("update %s/%s: %w after %d attempts", namespace, key, ErrConflict, MaxUpdateAttempts)
}
