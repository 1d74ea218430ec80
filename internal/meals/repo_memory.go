package meals

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Meal // userID -> meals
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]Meal)}
}

func (r *MemoryRepo) Create(ctx context.Context, meal Meal) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	meal.ID = uuid.NewString()
	if meal.CreatedAt.IsZero() {
		meal.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[meal.UserID] = append(r.data[meal.UserID], meal)
	return meal.ID, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, mealID string) (Meal, error) {
	if err := ctx.Err(); err != nil {
		return Meal{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.data[userID] {
		if m.ID == mealID {
			return m, nil
		}
	}
	return Meal{}, ErrNotFound
}

// ListByUser returns meals newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Meal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	meals := make([]Meal, len(r.data[userID]))
	copy(meals, r.data[userID])
	r.mu.RUnlock()

	if offset >= len(meals) {
		return []Meal{}, nil
	}
	// Stable so equal timestamps keep reverse insertion order.
	for i, j := 0, len(meals)-1; i < j; i, j = i+1, j-1 {
		meals[i], meals[j] = meals[j], meals[i]
	}
	sort.SliceStable(meals, func(i, j int) bool {
		return meals[i].CreatedAt.After(meals[j].CreatedAt)
	})

	end := len(meals)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return meals[offset:end], nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, mealID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	meals := r.data[userID]
	for i := range meals {
		if meals[i].ID == mealID {
			r.data[userID] = append(meals[:i:i], meals[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
