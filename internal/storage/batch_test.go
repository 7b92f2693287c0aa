package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeDeleter struct {
	mu      sync.Mutex
	deleted []string
	fail    map[string]bool
}

func (f *fakeDeleter) DeleteObject(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[key] {
		return errors.New("delete failed: " + key)
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func TestDeleteBatch(t *testing.T) {
	f := &fakeDeleter{}
	errs := DeleteBatch(context.Background(), f, []string{"a", "b", "c"})
	assert.Empty(t, errs)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, f.deleted)
}

func TestDeleteBatchPartialFailure(t *testing.T) {
	// 일부 실패해도 나머지는 전부 시도한다
	f := &fakeDeleter{fail: map[string]bool{"b": true}}
	errs := DeleteBatch(context.Background(), f, []string{"a", "b", "c"})
	assert.Len(t, errs, 1)
	assert.ElementsMatch(t, []string{"a", "c"}, f.deleted)
}

func TestDeleteBatchEmpty(t *testing.T) {
	assert.Nil(t, DeleteBatch(context.Background(), &fakeDeleter{}, nil))
}
