package meals

import (
	"time"

	"nutrisnap-backend/internal/nutrition"
)

// Meal is one persisted analysis of a meal photo.
type Meal struct {
	ID        string
	UserID    string
	ImageURL  string
	Analysis  nutrition.Analysis
	CreatedAt time.Time
}
