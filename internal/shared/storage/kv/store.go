package kv

import (
	"context"
	"errors"
)

// ErrInvalidKey is returned for keys that cannot name a slot.
var ErrInvalidKey = errors.New("invalid key")

// Store is a durable key/value slot store. Get reports ok=false for an absent key.
// Delete of an absent key succeeds.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
