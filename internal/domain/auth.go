package domain

import (
	"context"
	"slices"
)

type AuthStatus int

const (
	AuthAnonymous AuthStatus = iota
	AuthAuthenticated
)

// SecurityContext is the per-request authentication outcome. It is a value
// carried on the request; there is no process-wide holder.
type SecurityContext struct {
	Status      AuthStatus
	Principal   User
	Authorities []string
	Token       Token
	Reason      AuthFailure
}

func Authenticated(principal User, authorities []string, token Token) SecurityContext {
	return SecurityContext{
		Status:      AuthAuthenticated,
		Principal:   principal,
		Authorities: authorities,
		Token:       token,
	}
}

func Anonymous(reason AuthFailure) SecurityContext {
	return SecurityContext{Status: AuthAnonymous, Reason: reason}
}

func (s SecurityContext) IsAuthenticated() bool {
	return s.Status == AuthAuthenticated
}

func (s SecurityContext) HasAuthority(authority string) bool {
	if !s.IsAuthenticated() {
		return false
	}
	return slices.Contains(s.Authorities, authority)
}

type securityContextKey struct{}

func WithSecurityContext(ctx context.Context, sc SecurityContext) context.Context {
	return context.WithValue(ctx, securityContextKey{}, sc)
}

// SecurityContextFrom returns the context attached to ctx, or an anonymous
// one when none was attached.
func SecurityContextFrom(ctx context.Context) SecurityContext {
	if ctx == nil {
		return Anonymous(FailureNoCredentials)
	}
	sc, ok := ctx.Value(securityContextKey{}).(SecurityContext)
	if !ok {
		return Anonymous(FailureNoCredentials)
	}
	return sc
}
