package domain

import (
	"log/slog"
	"time"
)

type RoleType string

const (
	RoleGuest RoleType = "GUEST"
	RoleUser  RoleType = "USER"
	RoleAdmin RoleType = "ADMIN"
)

func (r RoleType) Valid() bool {
	switch r {
	case RoleGuest, RoleUser, RoleAdmin:
		return true
	}
	return false
}

// Authority is a fine-grained permission attached to a role.
type Authority string

const (
	AuthorityAdminCreate Authority = "admin:create"
	AuthorityAdminRead   Authority = "admin:read"
	AuthorityAdminUpdate Authority = "admin:update"
	AuthorityAdminDelete Authority = "admin:delete"
	AuthorityUserRead    Authority = "user:read"
	AuthorityUserCreate  Authority = "user:create"
	AuthorityGuestRead   Authority = "guest:read"
)

// DefaultAuthorities is the authority set each role is seeded with.
func DefaultAuthorities(role RoleType) []Authority {
	switch role {
	case RoleGuest:
		return []Authority{AuthorityGuestRead}
	case RoleUser:
		return []Authority{AuthorityUserCreate, AuthorityUserRead}
	case RoleAdmin:
		return []Authority{AuthorityAdminCreate, AuthorityAdminRead, AuthorityAdminUpdate, AuthorityAdminDelete}
	}
	return nil
}

type Role struct {
	ID          int64
	Permission  RoleType
	Authorities []Authority
}

// User is a registered principal. PasswordHash is opaque and must never be
// logged or serialized into a response.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	// TokenVersion is bumped whenever every session of the user is ended.
	// Refresh tokens signed under an older version are refused.
	TokenVersion int64
}

func (u User) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("id", u.ID),
		slog.String("username", u.Username),
		slog.String("role", string(u.Role.Permission)),
	)
}
