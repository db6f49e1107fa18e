package domain

import "errors"

var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrUserExists           = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrRoleNotFound         = errors.New("role not found")
	ErrTokenNotFound        = errors.New("token not found")
	ErrTokenMalformed       = errors.New("token malformed")
)

// AuthFailure names why a presented bearer token did not authenticate.
// These never reach the client; they only end up in logs.
type AuthFailure string

const (
	FailureNone                AuthFailure = ""
	FailureNoCredentials       AuthFailure = "NO_CREDENTIALS"
	FailureTokenMalformed      AuthFailure = "TOKEN_MALFORMED"
	FailureTokenExpiredByClaim AuthFailure = "TOKEN_EXPIRED_BY_CLAIM"
	FailureTokenUnknown        AuthFailure = "TOKEN_UNKNOWN"
	FailureTokenRevoked        AuthFailure = "TOKEN_REVOKED"
	FailureTokenExpired        AuthFailure = "TOKEN_EXPIRED"
	FailurePrincipalNotFound   AuthFailure = "PRINCIPAL_NOT_FOUND"
)
