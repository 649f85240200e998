// Package storage keeps the binary PDF objects next to the extracted text
// held in the document table.
package storage

import (
	"context"
	"errors"
)

var ErrInvalidKey = errors.New("invalid object key")

// BlobStore persists uploaded binaries. Put returns a URL that references the
// stored object.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
