package service

import (
	"context"

	"github.com/authkit/auth-api/internal/core/domain"
	"github.com/authkit/auth-api/internal/core/ports"
)

// UserService serves profile reads for authenticated callers.
type UserService struct {
	repo ports.UserRepository
}

func NewUserService(repo ports.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Profile returns domain.ErrUserNotFound when the token outlived its account.
func (s *UserService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.WithoutPassword(), nil
}
