package meals

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("meal not found")
	ErrInvalidInput = errors.New("invalid meal input")
)

// Repo defines persistence operations for meal history.
type Repo interface {
	// Create stores the meal and returns the id assigned by the store.
	Create(ctx context.Context, meal Meal) (string, error)
	GetByID(ctx context.Context, userID, mealID string) (Meal, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Meal, error)
	Delete(ctx context.Context, userID, mealID string) error
}
