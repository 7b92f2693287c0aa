package storage

import (
	"context"
	"sync"
)

// ObjectDeleter is the single storage primitive post handlers depend on.
type ObjectDeleter interface {
	DeleteObject(ctx context.Context, key string) error
}

// DeleteBatch deletes the given keys concurrently and waits for the
// whole batch. Deletion is best-effort: failures are collected and
// returned, never retried, and must not fail the caller's request.
func DeleteBatch(ctx context.Context, d ObjectDeleter, keys []string) []error {
	if len(keys) == 0 {
		return nil
	}

	errs := make([]error, len(keys))
	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			errs[i] = d.DeleteObject(ctx, key)
		}(i, key)
	}
	wg.Wait()

	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	return failed
}
