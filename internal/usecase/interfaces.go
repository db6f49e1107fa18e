package usecase

import (
	"context"
	"time"

	"giftstore/internal/domain"
)

type Clock func() time.Time

// UserRepository loads users with their Role and the Role's Authorities
// populated on every lookup; callers never trigger lazy loads.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	FindByID(ctx context.Context, id int64) (domain.User, error)
	List(ctx context.Context, offset, limit int) ([]domain.User, error)
	// Create returns domain.ErrUserExists when the username or email is taken.
	Create(ctx context.Context, user domain.User) (domain.User, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	// BumpTokenVersion increments the user's token version and returns the
	// new value.
	BumpTokenVersion(ctx context.Context, userID int64) (int64, error)
}

type RoleRepository interface {
	FindByPermission(ctx context.Context, permission domain.RoleType) (domain.Role, error)
}

// TokenStore persists issued access tokens. Every mutation touches exactly
// one record (or one user's records) in a single atomic statement.
type TokenStore interface {
	Save(ctx context.Context, token domain.Token) (domain.Token, error)
	FindByValue(ctx context.Context, value string) (domain.Token, error)
	FindActiveForUser(ctx context.Context, userID int64) ([]domain.Token, error)
	Revoke(ctx context.Context, value string) error
	RevokeAllForUser(ctx context.Context, userID int64) (int, error)
	MarkExpired(ctx context.Context, value string) error
}

type TokenSigner interface {
	Sign(claims domain.TokenClaims) (string, error)
	// Parse verifies the signature and returns the embedded claims without
	// judging their time window.
	Parse(raw string) (domain.TokenClaims, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}
