package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

// Repository is a key-value blob store. Put replaces any existing value.
type Repository interface {
	Get(ctx context.Context, key string) (Blob, error)
	Put(ctx context.Context, in Blob) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, filter BlobListFilter) ([]Blob, error)
}
