package storage

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepository keeps blobs in process memory. Used for ephemeral runs and
// tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{blobs: make(map[string]Blob)}
}

func (r *MemoryRepository) Get(_ context.Context, key string) (Blob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	blob, ok := r.blobs[key]
	if !ok {
		return Blob{}, ErrNotFound
	}
	return copyBlob(blob), nil
}

func (r *MemoryRepository) Put(_ context.Context, in Blob) error {
	if strings.TrimSpace(in.Key) == "" {
		return errors.New("storage: blob key is required")
	}
	if in.UpdatedAt.IsZero() {
		in.UpdatedAt = time.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blobs[in.Key] = copyBlob(in)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blobs[key]; !ok {
		return ErrNotFound
	}
	delete(r.blobs, key)
	return nil
}

func (r *MemoryRepository) List(_ context.Context, filter BlobListFilter) ([]Blob, error) {
	r.mu.RLock()
	out := make([]Blob, 0, len(r.blobs))
	for key, blob := range r.blobs {
		if strings.HasPrefix(key, filter.Prefix) {
			out = append(out, copyBlob(blob))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []Blob{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func copyBlob(in Blob) Blob {
	out := in
	out.Value = append([]byte(nil), in.Value...)
	return out
}
