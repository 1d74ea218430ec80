package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const maxAge = 150

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	if s == nil || s.Repo == nil {
		return Profile{}, errors.New("profiles service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return Profile{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID)
}

// Upsert validates and stores the caller's profile. Blank strings are stored as unset.
func (s *Service) Upsert(ctx context.Context, profile Profile) (Profile, error) {
	if s == nil || s.Repo == nil {
		return Profile{}, errors.New("profiles service not configured")
	}
	if strings.TrimSpace(profile.ID) == "" {
		return Profile{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	profile.FullName = trimmed(profile.FullName)
	profile.Gender = trimmed(profile.Gender)
	profile.DietaryPreferences = trimmed(profile.DietaryPreferences)
	if err := Validate(profile); err != nil {
		return Profile{}, err
	}
	return s.Repo.Upsert(ctx, profile)
}

// Validate checks value ranges of the optional fields that are set.
func Validate(p Profile) error {
	if p.Age != nil && (*p.Age < 0 || *p.Age > maxAge) {
		return fmt.Errorf("%w: age must be between 0 and %d", ErrInvalidInput, maxAge)
	}
	if p.HeightCM != nil && *p.HeightCM <= 0 {
		return fmt.Errorf("%w: heightCm must be positive", ErrInvalidInput)
	}
	if p.WeightKG != nil && *p.WeightKG <= 0 {
		return fmt.Errorf("%w: weightKg must be positive", ErrInvalidInput)
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
