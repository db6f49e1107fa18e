package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"giftstore/internal/domain"
)

// TokenValidator decides whether a presented bearer token grants access
// right now. Ordinary rejections come back as an anonymous context with a
// nil error; an error means a collaborator failed.
type TokenValidator struct {
	Signer TokenSigner
	Tokens TokenStore
	Users  UserRepository
	Clock  Clock
}

func NewTokenValidator(signer TokenSigner, tokens TokenStore, users UserRepository, clock Clock) *TokenValidator {
	return &TokenValidator{Signer: signer, Tokens: tokens, Users: users, Clock: clock}
}

func (v *TokenValidator) Validate(ctx context.Context, raw string) (domain.SecurityContext, error) {
	if v == nil || v.Signer == nil || v.Tokens == nil || v.Users == nil {
		return domain.Anonymous(domain.FailureNone), errors.New("token validator is not configured")
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Anonymous(domain.FailureNoCredentials), nil
	}

	claims, err := v.Signer.Parse(raw)
	if err != nil {
		return domain.Anonymous(domain.FailureTokenMalformed), nil
	}
	now := v.now()
	if !now.Before(claims.ExpiresAt) {
		return domain.Anonymous(domain.FailureTokenExpiredByClaim), nil
	}

	token, err := v.Tokens.FindByValue(ctx, raw)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return domain.Anonymous(domain.FailureTokenUnknown), nil
		}
		return domain.Anonymous(domain.FailureNone), err
	}
	switch token.State(now) {
	case domain.TokenRevoked:
		return domain.Anonymous(domain.FailureTokenRevoked), nil
	case domain.TokenExpired:
		if !token.Expired {
			if err := v.Tokens.MarkExpired(ctx, raw); err != nil && !errors.Is(err, domain.ErrTokenNotFound) {
				return domain.Anonymous(domain.FailureTokenExpired), err
			}
		}
		return domain.Anonymous(domain.FailureTokenExpired), nil
	}

	user, err := v.Users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Anonymous(domain.FailurePrincipalNotFound), nil
		}
		return domain.Anonymous(domain.FailureNone), err
	}
	if user.ID != token.UserID {
		return domain.Anonymous(domain.FailureTokenUnknown), nil
	}
	return domain.Authenticated(user, ResolveAuthorities(user.Role), token), nil
}

func (v *TokenValidator) now() time.Time {
	if v.Clock == nil {
		return time.Now().UTC()
	}
	return v.Clock().UTC()
}
