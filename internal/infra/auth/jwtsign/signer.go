package jwtsign

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"giftstore/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeyBytes is the shortest HMAC key accepted for HS256.
const MinKeyBytes = 32

type Claims struct {
	Kind    string `json:"typ"`
	Version int64  `json:"ver,omitempty"`
	jwt.RegisteredClaims
}

type Signer struct {
	key []byte
}

func New(key []byte) (*Signer, error) {
	if len(key) < MinKeyBytes {
		return nil, fmt.Errorf("jwt signing key must be at least %d bytes, got %d", MinKeyBytes, len(key))
	}
	cp := make([]byte, len(key))
	copy(cp, key)
	return &Signer{key: cp}, nil
}

// NewFromBase64 decodes a standard base64 signing secret.
func NewFromBase64(secret string) (*Signer, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("jwt signing key is required")
	}
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("decode jwt signing key: %w", err)
	}
	return New(key)
}

func (s *Signer) Sign(c domain.TokenClaims) (string, error) {
	if c.Subject == "" {
		return "", errors.New("subject is required")
	}
	claims := Claims{
		Kind:    string(c.Kind),
		Version: c.Version,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        c.ID,
			Subject:   c.Subject,
			IssuedAt:  jwt.NewNumericDate(c.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.key)
}

// Parse checks the HS256 signature only. Time-based checks are left to the
// caller so they run against its own clock.
func (s *Signer) Parse(raw string) (domain.TokenClaims, error) {
	t, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return domain.TokenClaims{}, fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return domain.TokenClaims{}, domain.ErrTokenMalformed
	}
	if c.Subject == "" || c.ExpiresAt == nil || c.IssuedAt == nil {
		return domain.TokenClaims{}, fmt.Errorf("%w: missing sub, iat or exp", domain.ErrTokenMalformed)
	}
	return domain.TokenClaims{
		ID:        c.ID,
		Subject:   c.Subject,
		Kind:      domain.TokenKind(c.Kind),
		IssuedAt:  c.IssuedAt.Time,
		ExpiresAt: c.ExpiresAt.Time,
		Version:   c.Version,
	}, nil
}
