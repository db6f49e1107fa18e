package usecase

import (
	"context"
	"errors"
	"sync"

	"giftstore/internal/domain"
)

const dummyPassword = "giftstore-timing-equalizer"

// fallbackHash is a well-formed bcrypt hash (cost 10) compared against when
// the hasher cannot produce a placeholder of its own.
const fallbackHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type CredentialValidator struct {
	Users  UserRepository
	Hasher PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

func NewCredentialValidator(users UserRepository, hasher PasswordHasher) *CredentialValidator {
	return &CredentialValidator{Users: users, Hasher: hasher}
}

// Validate checks username and password. Unknown users still pay for one
// hash comparison so both failure paths take the same time.
func (v *CredentialValidator) Validate(ctx context.Context, username, password string) (domain.User, error) {
	if v == nil || v.Users == nil || v.Hasher == nil {
		return domain.User{}, errors.New("credential validator is not configured")
	}
	user, err := v.Users.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return domain.User{}, err
		}
		v.Hasher.Verify(v.placeholderHash(), password)
		return domain.User{}, domain.ErrAuthenticationFailed
	}
	if !v.Hasher.Verify(user.PasswordHash, password) {
		return domain.User{}, domain.ErrAuthenticationFailed
	}
	return user, nil
}

func (v *CredentialValidator) placeholderHash() string {
	v.dummyOnce.Do(func() {
		hash, err := v.Hasher.Hash(dummyPassword)
		if err != nil || hash == "" {
			hash = fallbackHash
		}
		v.dummyHash = hash
	})
	return v.dummyHash
}
