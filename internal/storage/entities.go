package storage

import "time"

// Blob is an opaque value stored under a key. The task store keeps its JSON
// documents here.
type Blob struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

type BlobListFilter struct {
	Prefix string
	Limit  int
	Offset int
}
