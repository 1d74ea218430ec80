package meals

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nutrisnap-backend/internal/nutrition"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, user_id, image_url, analysis, created_at`

// Create inserts a meal. The flattened columns serve queries; analysis keeps the full document.
func (r *PGRepo) Create(ctx context.Context, meal Meal) (string, error) {
	const query = `
INSERT INTO meal_history (
    user_id,
    image_url,
    meal_name,
    calories,
    protein,
    carbs,
    fat,
    fiber,
    sugar,
    sodium,
    confidence_score,
    health_score,
    rationale,
    analysis,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING id`

	payload, err := json.Marshal(meal.Analysis)
	if err != nil {
		return "", fmt.Errorf("encode analysis: %w", err)
	}
	createdAt := meal.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	a := meal.Analysis
	var id string
	err = r.DB.QueryRowContext(
		ctx,
		query,
		meal.UserID,
		nullableString(meal.ImageURL),
		a.MealName,
		a.Calories,
		a.Protein,
		a.Carbs,
		a.Fat,
		a.Fiber,
		a.Sugar,
		a.Sodium,
		a.ConfidenceScore,
		a.HealthScore,
		nullableString(a.Rationale),
		payload,
		createdAt,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID, mealID string) (Meal, error) {
	query := `
SELECT ` + selectColumns + `
FROM meal_history
WHERE user_id = $1 AND id::text = $2
LIMIT 1`
	meal, err := scanMeal(r.DB.QueryRowContext(ctx, query, userID, mealID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Meal{}, ErrNotFound
		}
		return Meal{}, err
	}
	return meal, nil
}

// ListByUser lists meals ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Meal, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `
SELECT ` + selectColumns + `
FROM meal_history
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meals := make([]Meal, 0, limit)
	for rows.Next() {
		meal, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		meals = append(meals, meal)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return meals, nil
}

func (r *PGRepo) Delete(ctx context.Context, userID, mealID string) error {
	const query = `DELETE FROM meal_history WHERE user_id = $1 AND id::text = $2`
	res, err := r.DB.ExecContext(ctx, query, userID, mealID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeal(row rowScanner) (Meal, error) {
	var meal Meal
	var imageURL sql.NullString
	var raw []byte
	if err := row.Scan(&meal.ID, &meal.UserID, &imageURL, &raw, &meal.CreatedAt); err != nil {
		return Meal{}, err
	}
	if imageURL.Valid {
		meal.ImageURL = imageURL.String
	}
	var a nutrition.Analysis
	if err := json.Unmarshal(raw, &a); err != nil {
		return Meal{}, fmt.Errorf("decode analysis for meal %s: %w", meal.ID, err)
	}
	meal.Analysis = a
	return meal, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
