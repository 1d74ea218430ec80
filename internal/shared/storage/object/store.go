package object

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrExists is returned when a write-once key is already taken.
	ErrExists = errors.New("object already exists")
	// ErrInvalidKey is returned for keys that would escape the store namespace.
	ErrInvalidKey = errors.New("invalid storage key")
)

// ObjectStore defines the contract for write-once binary objects with public read URLs.
type ObjectStore interface {
	Put(ctx context.Context, storageKey string, contentType string, r io.Reader) (sizeBytes int64, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	PublicURL(storageKey string) string
}
