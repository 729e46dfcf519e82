package memory

import (
	"context"
	"sync"

	"github.com/vsinha/fcrecon/pkg/domain/repositories"
)

type memoEntry struct {
	kind    string
	payload []byte
}

// MemoRepository provides in-memory storage of derived datasets
type MemoRepository struct {
	mu      sync.RWMutex
	entries map[string]memoEntry
}

// NewMemoRepository creates a new in-memory memo repository
func NewMemoRepository() *MemoRepository {
	return &MemoRepository{entries: make(map[string]memoEntry)}
}

// Verify interface compliance
var _ repositories.MemoRepository = (*MemoRepository)(nil)

// GetDataset returns a copy of the payload stored under key
func (r *MemoRepository) GetDataset(_ context.Context, key string) ([]byte, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), entry.payload...), true, nil
}

// PutDataset stores a copy of payload under key, replacing any previous value
func (r *MemoRepository) PutDataset(_ context.Context, key, kind string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[key] = memoEntry{kind: kind, payload: append([]byte(nil), payload...)}
	return nil
}

// Count returns the number of stored datasets of the given kind, or of all
// kinds when kind is empty
func (r *MemoRepository) Count(kind string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if kind == "" {
		return len(r.entries)
	}
	n := 0
	for _, entry := range r.entries {
		if entry.kind == kind {
			n++
		}
	}
	return n
}
