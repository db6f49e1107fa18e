package db

import (
	"errors"
	"time"

	"giftstore/internal/domain"
)

var errDBUnavailable = errors.New("db unavailable")

func roleFromModel(m RoleModel) domain.Role {
	authorities := make([]domain.Authority, 0, len(m.Authorities))
	for _, a := range m.Authorities {
		authorities = append(authorities, domain.Authority(a.Authority))
	}
	return domain.Role{
		ID:          m.ID,
		Permission:  domain.RoleType(m.Permission),
		Authorities: authorities,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.Password,
		Role:         roleFromModel(m.Role),
		CreatedAt:    m.CreatedAt.UTC(),
		TokenVersion: m.TokenVersion,
	}
}

func tokenFromModel(m TokenModel) domain.Token {
	return domain.Token{
		ID:       m.ID,
		Type:     domain.TokenType(m.TokenType),
		Value:    m.AccessToken,
		TTL:      time.Duration(m.AccessTokenTTL) * time.Millisecond,
		IssuedAt: m.IssuedAt.UTC(),
		Revoked:  m.Revoked,
		Expired:  m.Expired,
		UserID:   m.UserID,
	}
}

func tokenToModel(t domain.Token) TokenModel {
	tokenType := string(t.Type)
	if tokenType == "" {
		tokenType = string(domain.TokenTypeBearer)
	}
	return TokenModel{
		ID:             t.ID,
		TokenType:      tokenType,
		AccessToken:    t.Value,
		AccessTokenTTL: t.TTL.Milliseconds(),
		IssuedAt:       t.IssuedAt.UTC(),
		Revoked:        t.Revoked,
		Expired:        t.Expired,
		UserID:         t.UserID,
	}
}
