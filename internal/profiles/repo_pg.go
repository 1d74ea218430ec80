package profiles

import (
	"context"
	"database/sql"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

const profileColumns = `id, full_name, age, gender, height_cm, weight_kg, dietary_preferences, created_at, updated_at`

func (r *PGRepo) Upsert(ctx context.Context, profile Profile) (Profile, error) {
	const query = `
INSERT INTO profiles (id, full_name, age, gender, height_cm, weight_kg, dietary_preferences, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
ON CONFLICT (id) DO UPDATE SET
  full_name = EXCLUDED.full_name,
  age = EXCLUDED.age,
  gender = EXCLUDED.gender,
  height_cm = EXCLUDED.height_cm,
  weight_kg = EXCLUDED.weight_kg,
  dietary_preferences = EXCLUDED.dietary_preferences,
  updated_at = now()
RETURNING ` + profileColumns
	row := r.DB.QueryRowContext(ctx, query,
		profile.ID,
		profile.FullName,
		profile.Age,
		profile.Gender,
		profile.HeightCM,
		profile.WeightKG,
		profile.DietaryPreferences,
	)
	return scanProfile(row)
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (Profile, error) {
	query := `
SELECT ` + profileColumns + `
FROM profiles
WHERE id = $1
LIMIT 1`
	profile, err := scanProfile(r.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return profile, nil
}

func scanProfile(row *sql.Row) (Profile, error) {
	var p Profile
	var fullName, gender, prefs sql.NullString
	var age sql.NullInt64
	var height, weight sql.NullFloat64
	err := row.Scan(
		&p.ID,
		&fullName,
		&age,
		&gender,
		&height,
		&weight,
		&prefs,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return Profile{}, err
	}
	if fullName.Valid {
		p.FullName = &fullName.String
	}
	if age.Valid {
		v := int(age.Int64)
		p.Age = &v
	}
	if gender.Valid {
		p.Gender = &gender.String
	}
	if height.Valid {
		p.HeightCM = &height.Float64
	}
	if weight.Valid {
		p.WeightKG = &weight.Float64
	}
	if prefs.Valid {
		p.DietaryPreferences = &prefs.String
	}
	return p, nil
}
