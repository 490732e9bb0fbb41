package services

import (
	"context"

	"apotek/internal/models"
	"apotek/internal/repositories"
)

// UserService manages the caller's own profile.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile returns the user without the password hash.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

// UpdateProfile applies patch field by field; only the fields it sets are
// written.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, patch models.UserPatch) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if changed := patch.Apply(user); len(changed) > 0 {
		if err := s.userRepo.UpdateColumns(ctx, user, changed); err != nil {
			return nil, err
		}
	}
	user.Password = ""
	return user, nil
}
