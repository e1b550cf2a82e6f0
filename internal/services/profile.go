package services

import (
	"context"
	"errors"

	"github.com/jobseeker-app/apiserver/internal/store"
	"github.com/jobseeker-app/apiserver/types"
)

const defaultCurrency = "USD"

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (types.Profile, error)
	Create(ctx context.Context, profile types.Profile) (types.Profile, error)
	Update(ctx context.Context, profile types.Profile) (types.Profile, error)
}

// ProfileService encapsulates profile use-cases.
type ProfileService struct {
	repo ProfileRepository
}

func NewProfileService(repo ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

func (s *ProfileService) GetByUserID(ctx context.Context, userID string) (types.Profile, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// Create stores the account's only profile.
func (s *ProfileService) Create(ctx context.Context, userID string, profile types.Profile) (types.Profile, error) {
	if existing, err := s.repo.GetByUserID(ctx, userID); err == nil {
		return types.Profile{}, &ConflictError{Message: "profile already exists", ExistingID: existing.ID}
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.Profile{}, err
	}

	profile.UserID = userID
	if profile.SalaryCurrency == "" {
		profile.SalaryCurrency = defaultCurrency
	}
	created, err := s.repo.Create(ctx, profile)
	if errors.Is(err, store.ErrConflict) {
		return types.Profile{}, &ConflictError{Message: "profile already exists"}
	}
	return created, err
}

// Update replaces the profile identified by profileID. A profile owned by
// another account is reported as not found.
func (s *ProfileService) Update(ctx context.Context, userID, profileID string, profile types.Profile) (types.Profile, error) {
	profile.ID = profileID
	profile.UserID = userID
	if profile.SalaryCurrency == "" {
		profile.SalaryCurrency = defaultCurrency
	}
	return s.repo.Update(ctx, profile)
}
