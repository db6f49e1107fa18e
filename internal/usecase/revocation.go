package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"giftstore/internal/domain"
)

type RevocationManager struct {
	Tokens TokenStore
	Users  UserRepository
}

func NewRevocationManager(tokens TokenStore, users UserRepository) *RevocationManager {
	return &RevocationManager{Tokens: tokens, Users: users}
}

// Revoke flags a single token. Other sessions of the same user are left
// untouched.
func (m *RevocationManager) Revoke(ctx context.Context, value string) error {
	if m == nil || m.Tokens == nil {
		return errors.New("token store is required")
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return domain.ErrTokenNotFound
	}
	return m.Tokens.Revoke(ctx, value)
}

// RevokeRefreshTokens invalidates every refresh token issued to the user so
// far. Refresh tokens are not stored, so this moves the user's token version.
func (m *RevocationManager) RevokeRefreshTokens(ctx context.Context, userID int64) error {
	if m == nil || m.Users == nil {
		return errors.New("user repository is required")
	}
	if userID == 0 {
		return domain.ErrInvalidArgument
	}
	if _, err := m.Users.BumpTokenVersion(ctx, userID); err != nil {
		return fmt.Errorf("bump token version: %w", err)
	}
	return nil
}

// RevokeAllForUser ends every session of the user: stored access tokens are
// flagged and outstanding refresh tokens stop working.
func (m *RevocationManager) RevokeAllForUser(ctx context.Context, userID int64) (int, error) {
	if m == nil || m.Tokens == nil {
		return 0, errors.New("token store is required")
	}
	if userID == 0 {
		return 0, domain.ErrInvalidArgument
	}
	if err := m.RevokeRefreshTokens(ctx, userID); err != nil {
		return 0, err
	}
	return m.Tokens.RevokeAllForUser(ctx, userID)
}
