package domain

import "time"

type TokenType string

const TokenTypeBearer TokenType = "BEARER"

type TokenState string

const (
	TokenActive  TokenState = "ACTIVE"
	TokenRevoked TokenState = "REVOKED"
	TokenExpired TokenState = "EXPIRED"
)

// Token is the persisted record of one issued access token. UserID never
// changes once the token is saved.
type Token struct {
	ID       int64
	Type     TokenType
	Value    string
	TTL      time.Duration
	IssuedAt time.Time
	Revoked  bool
	Expired  bool
	UserID   int64
}

func (t Token) ExpiresAt() time.Time {
	return t.IssuedAt.Add(t.TTL)
}

// State reports the lifecycle state at now. Revoked wins over Expired and
// both are terminal.
func (t Token) State(now time.Time) TokenState {
	if t.Revoked {
		return TokenRevoked
	}
	if t.Expired || !now.Before(t.ExpiresAt()) {
		return TokenExpired
	}
	return TokenActive
}

type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenClaims are the signed claims embedded in an issued token.
type TokenClaims struct {
	ID        string
	Subject   string
	Kind      TokenKind
	IssuedAt  time.Time
	ExpiresAt time.Time
	Version   int64
}

type TokenPair struct {
	UserID       int64
	Username     string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}
