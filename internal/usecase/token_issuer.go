package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"giftstore/internal/domain"

	"github.com/google/uuid"
)

type TokenIssuer struct {
	Signer     TokenSigner
	Tokens     TokenStore
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Clock      Clock
}

func NewTokenIssuer(signer TokenSigner, tokens TokenStore, accessTTL, refreshTTL time.Duration, clock Clock) *TokenIssuer {
	return &TokenIssuer{
		Signer:     signer,
		Tokens:     tokens,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
		Clock:      clock,
	}
}

// Issue mints an access/refresh pair for user. Only the access token is
// recorded in the token store.
func (i *TokenIssuer) Issue(ctx context.Context, user domain.User) (domain.TokenPair, error) {
	access, err := i.IssueAccess(ctx, user)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := i.sign(user, domain.TokenKindRefresh, access.IssuedAt, i.RefreshTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{
		UserID:       user.ID,
		Username:     user.Username,
		AccessToken:  access.Value,
		RefreshToken: refresh,
		ExpiresAt:    access.ExpiresAt(),
	}, nil
}

// IssueAccess mints and persists a single access token.
func (i *TokenIssuer) IssueAccess(ctx context.Context, user domain.User) (domain.Token, error) {
	if i == nil || i.Signer == nil || i.Tokens == nil {
		return domain.Token{}, errors.New("token issuer is not configured")
	}
	if user.ID == 0 || user.Username == "" {
		return domain.Token{}, fmt.Errorf("issue token: %w", domain.ErrInvalidArgument)
	}
	if i.AccessTTL <= 0 {
		return domain.Token{}, errors.New("access token ttl must be positive")
	}
	now := i.now()
	value, err := i.sign(user, domain.TokenKindAccess, now, i.AccessTTL)
	if err != nil {
		return domain.Token{}, err
	}
	saved, err := i.Tokens.Save(ctx, domain.Token{
		Type:     domain.TokenTypeBearer,
		Value:    value,
		TTL:      i.AccessTTL,
		IssuedAt: now,
		UserID:   user.ID,
	})
	if err != nil {
		return domain.Token{}, fmt.Errorf("save token: %w", err)
	}
	return saved, nil
}

func (i *TokenIssuer) sign(user domain.User, kind domain.TokenKind, issuedAt time.Time, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("%s token ttl must be positive", kind)
	}
	value, err := i.Signer.Sign(domain.TokenClaims{
		ID:        uuid.NewString(),
		Subject:   user.Username,
		Kind:      kind,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(ttl),
		Version:   user.TokenVersion,
	})
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return value, nil
}

func (i *TokenIssuer) now() time.Time {
	if i.Clock == nil {
		return time.Now().UTC()
	}
	return i.Clock().UTC()
}
