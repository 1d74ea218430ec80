package profiles

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("profile not found")
	ErrInvalidInput = errors.New("invalid profile")
)

type Repo interface {
	Upsert(ctx context.Context, profile Profile) (Profile, error)
	GetByID(ctx context.Context, userID string) (Profile, error)
}
