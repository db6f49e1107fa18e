package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"giftstore/internal/domain"
	"giftstore/internal/infra/memstore"
)

// tableSigner hands out opaque values and remembers the claims behind them.
type tableSigner struct {
	mu     sync.Mutex
	claims map[string]domain.TokenClaims
	n      int
}

func newTableSigner() *tableSigner {
	return &tableSigner{claims: make(map[string]domain.TokenClaims)}
}

func (s *tableSigner) Sign(c domain.TokenClaims) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	value := fmt.Sprintf("%s-%d-%s", c.Kind, s.n, c.Subject)
	s.claims[value] = c
	return value, nil
}

func (s *tableSigner) Parse(raw string) (domain.TokenClaims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[raw]
	if !ok {
		return domain.TokenClaims{}, domain.ErrTokenMalformed
	}
	return c, nil
}

type plainHasher struct {
	mu       sync.Mutex
	verifies int
}

func (h *plainHasher) Hash(password string) (string, error) {
	return "plain:" + password, nil
}

func (h *plainHasher) Verify(hash, password string) bool {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return hash == "plain:"+password
}

func (h *plainHasher) verifyCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.verifies
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// brokenTokens fails every call.
type brokenTokens struct{}

var errStoreDown = errors.New("store down")

func (brokenTokens) Save(context.Context, domain.Token) (domain.Token, error) {
	return domain.Token{}, errStoreDown
}
func (brokenTokens) FindByValue(context.Context, string) (domain.Token, error) {
	return domain.Token{}, errStoreDown
}
func (brokenTokens) FindActiveForUser(context.Context, int64) ([]domain.Token, error) {
	return nil, errStoreDown
}
func (brokenTokens) Revoke(context.Context, string) error { return errStoreDown }
func (brokenTokens) RevokeAllForUser(context.Context, int64) (int, error) {
	return 0, errStoreDown
}
func (brokenTokens) MarkExpired(context.Context, string) error { return errStoreDown }

type fixture struct {
	store  *memstore.Store
	signer *tableSigner
	hasher *plainHasher
	clock  *testClock
	svc    *AuthService
}

func newFixture() *fixture {
	clock := newTestClock()
	store := memstore.New(clock.Now)
	signer := newTableSigner()
	hasher := &plainHasher{}
	svc := NewAuthService(AuthServiceDeps{
		Users:      store,
		Roles:      store,
		Tokens:     store,
		Hasher:     hasher,
		Signer:     signer,
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
		Clock:      clock.Now,
	})
	return &fixture{store: store, signer: signer, hasher: hasher, clock: clock, svc: svc}
}

func (f *fixture) user(t *testing.T, name string, role domain.RoleType) domain.User {
	t.Helper()
	u, err := f.svc.CreateUser(context.Background(), CreateUserRequest{
		Username: name,
		Email:    name + "@example.com",
		Password: name + "-pw",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func (f *fixture) validator() *TokenValidator {
	return NewTokenValidator(f.signer, f.store, f.store, f.clock.Now)
}
