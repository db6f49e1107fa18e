package usecase

import (
	"context"
	"log/slog"
	"math"

	"giftstore/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type CreateUserRequest struct {
	Username string
	Email    string
	Password string
	Role     domain.RoleType
}

// CreateUser registers an account with an explicit role. It does not log
// the new user in.
func (s *AuthService) CreateUser(ctx context.Context, req CreateUserRequest) (domain.User, error) {
	role := req.Role
	if role == "" {
		role = domain.RoleUser
	}
	user, err := s.register(ctx, req.Username, req.Email, req.Password, role)
	if err != nil {
		return domain.User{}, err
	}
	s.Logger.InfoContext(ctx, "user created", slog.Any("user", user))
	return user, nil
}

func (s *AuthService) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return s.Users.FindByID(ctx, id)
}

func (s *AuthService) ListUsers(ctx context.Context, page, size int) ([]domain.User, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	// past any addressable offset
	if page > math.MaxInt/size {
		return []domain.User{}, nil
	}
	return s.Users.List(ctx, page*size, size)
}
