package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"giftstore/internal/domain"
)

// Limiter is a RateLimiter that can also forget a key.
type Limiter interface {
	domain.RateLimiter
	Reset(ctx context.Context, key string) error
}

// LoginThrottle counts credential attempts per client address and username.
// Usernames are hashed before they become limiter keys.
type LoginThrottle struct {
	Limiter Limiter
	Limit   int
	Window  time.Duration
}

func NewLoginThrottle(limiter Limiter, limit int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{Limiter: limiter, Limit: limit, Window: window}
}

func (t *LoginThrottle) Allow(ctx context.Context, clientIP, username string) (domain.RateLimitDecision, error) {
	if t == nil || t.Limiter == nil || t.Limit <= 0 {
		return domain.RateLimitDecision{Allowed: true}, nil
	}
	return t.Limiter.Allow(ctx, LoginKey(clientIP, username), t.Limit, t.Window)
}

// Succeeded clears the attempt counter after a successful login.
func (t *LoginThrottle) Succeeded(ctx context.Context, clientIP, username string) error {
	if t == nil || t.Limiter == nil {
		return nil
	}
	return t.Limiter.Reset(ctx, LoginKey(clientIP, username))
}

func LoginKey(clientIP, username string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(username))))
	return "login:" + clientIP + ":" + hex.EncodeToString(sum[:8])
}
