// Package memstore keeps users, roles and issued tokens in process memory.
// It backs tests and the server's no-db mode.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"giftstore/internal/domain"
)

type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	roles map[domain.RoleType]domain.Role

	users       map[int64]domain.User
	userByName  map[string]int64
	userByEmail map[string]int64
	nextUserID  int64

	tokens      map[string]domain.Token
	nextTokenID int64
}

// New returns a store seeded with the GUEST, USER and ADMIN roles.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	s := &Store{
		now:         now,
		roles:       make(map[domain.RoleType]domain.Role),
		users:       make(map[int64]domain.User),
		userByName:  make(map[string]int64),
		userByEmail: make(map[string]int64),
		tokens:      make(map[string]domain.Token),
	}
	for i, permission := range []domain.RoleType{domain.RoleGuest, domain.RoleUser, domain.RoleAdmin} {
		s.roles[permission] = domain.Role{
			ID:          int64(i + 1),
			Permission:  permission,
			Authorities: domain.DefaultAuthorities(permission),
		}
	}
	return s
}

// ---------- Roles ----------

func (s *Store) FindByPermission(_ context.Context, permission domain.RoleType) (domain.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.roles[permission]
	if !ok {
		return domain.Role{}, domain.ErrRoleNotFound
	}
	return copyRole(role), nil
}

// SetRoleAuthorities replaces the authorities granted by a role. Existing
// users see the change on their next lookup.
func (s *Store) SetRoleAuthorities(permission domain.RoleType, authorities []domain.Authority) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles[permission]
	if !ok {
		return domain.ErrRoleNotFound
	}
	role.Authorities = slices.Clone(authorities)
	s.roles[permission] = role
	return nil
}

// ---------- Users ----------

func (s *Store) Create(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roles[user.Role.Permission]; !ok {
		return domain.User{}, domain.ErrRoleNotFound
	}
	if _, ok := s.userByName[user.Username]; ok {
		return domain.User{}, domain.ErrUserExists
	}
	if _, ok := s.userByEmail[user.Email]; ok {
		return domain.User{}, domain.ErrUserExists
	}
	s.nextUserID++
	user.ID = s.nextUserID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now().UTC()
	}
	// only the permission is kept; authorities are resolved from the role table on read
	user.Role = domain.Role{Permission: user.Role.Permission}
	s.users[user.ID] = user
	s.userByName[user.Username] = user.ID
	s.userByEmail[user.Email] = user.ID
	return s.hydrate(user), nil
}

func (s *Store) FindByUsername(_ context.Context, username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.userByName[username]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return s.hydrate(s.users[id]), nil
}

func (s *Store) FindByID(_ context.Context, id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return s.hydrate(user), nil
}

func (s *Store) List(_ context.Context, offset, limit int) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	if offset < 0 {
		offset = 0
	}
	if offset >= len(ids) {
		return []domain.User{}, nil
	}
	ids = ids[offset:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	out := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.hydrate(s.users[id]))
	}
	return out, nil
}

func (s *Store) UpdatePassword(_ context.Context, userID int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	s.users[userID] = user
	return nil
}

func (s *Store) BumpTokenVersion(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return 0, domain.ErrUserNotFound
	}
	user.TokenVersion++
	s.users[userID] = user
	return user.TokenVersion, nil
}

// DeleteUser removes the user record but leaves its tokens in place.
func (s *Store) DeleteUser(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(s.users, userID)
	delete(s.userByName, user.Username)
	delete(s.userByEmail, user.Email)
	return nil
}

func (s *Store) hydrate(user domain.User) domain.User {
	user.Role = copyRole(s.roles[user.Role.Permission])
	return user
}

func copyRole(role domain.Role) domain.Role {
	role.Authorities = slices.Clone(role.Authorities)
	return role
}

// ---------- Tokens ----------

func (s *Store) Save(_ context.Context, token domain.Token) (domain.Token, error) {
	if token.Value == "" {
		return domain.Token{}, fmt.Errorf("token value is required: %w", domain.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.tokens[token.Value]; ok && existing.ID != token.ID {
		return domain.Token{}, fmt.Errorf("token value already stored: %w", domain.ErrInvalidArgument)
	}
	if token.ID == 0 {
		s.nextTokenID++
		token.ID = s.nextTokenID
	}
	s.tokens[token.Value] = token
	return token, nil
}

func (s *Store) FindByValue(_ context.Context, value string) (domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[value]
	if !ok {
		return domain.Token{}, domain.ErrTokenNotFound
	}
	return token, nil
}

func (s *Store) FindActiveForUser(_ context.Context, userID int64) ([]domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Token{}
	for _, token := range s.tokens {
		if token.UserID == userID && !token.Revoked && !token.Expired {
			out = append(out, token)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].IssuedAt.Equal(out[j].IssuedAt) {
			return out[i].IssuedAt.Before(out[j].IssuedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Revoke marks a token revoked and expired.
func (s *Store) Revoke(_ context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[value]
	if !ok {
		return domain.ErrTokenNotFound
	}
	token.Revoked = true
	token.Expired = true
	s.tokens[value] = token
	return nil
}

func (s *Store) RevokeAllForUser(_ context.Context, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for value, token := range s.tokens {
		if token.UserID != userID || token.Revoked {
			continue
		}
		token.Revoked = true
		token.Expired = true
		s.tokens[value] = token
		n++
	}
	return n, nil
}

func (s *Store) MarkExpired(_ context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[value]
	if !ok {
		return domain.ErrTokenNotFound
	}
	token.Expired = true
	s.tokens[value] = token
	return nil
}
