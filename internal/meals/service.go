package meals

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service exposes meal history to the HTTP layer.
type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Meal, error) {
	if err := s.ready(userID); err != nil {
		return nil, err
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) Get(ctx context.Context, userID, mealID string) (Meal, error) {
	if err := s.ready(userID); err != nil {
		return Meal{}, err
	}
	if strings.TrimSpace(mealID) == "" {
		return Meal{}, fmt.Errorf("%w: meal id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID, mealID)
}

func (s *Service) Delete(ctx context.Context, userID, mealID string) error {
	if err := s.ready(userID); err != nil {
		return err
	}
	if strings.TrimSpace(mealID) == "" {
		return fmt.Errorf("%w: meal id is required", ErrInvalidInput)
	}
	return s.Repo.Delete(ctx, userID, mealID)
}

func (s *Service) ready(userID string) error {
	if s == nil || s.Repo == nil {
		return errors.New("meals service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return nil
}
