package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"giftstore/internal/domain"
)

type AuthService struct {
	Users       UserRepository
	Roles       RoleRepository
	Tokens      TokenStore
	Hasher      PasswordHasher
	Signer      TokenSigner
	Credentials *CredentialValidator
	Issuer      *TokenIssuer
	Revocations *RevocationManager
	Clock       Clock
	Logger      *slog.Logger
}

type AuthServiceDeps struct {
	Users      UserRepository
	Roles      RoleRepository
	Tokens     TokenStore
	Hasher     PasswordHasher
	Signer     TokenSigner
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Clock      Clock
	Logger     *slog.Logger
}

func NewAuthService(deps AuthServiceDeps) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		Users:       deps.Users,
		Roles:       deps.Roles,
		Tokens:      deps.Tokens,
		Hasher:      deps.Hasher,
		Signer:      deps.Signer,
		Credentials: NewCredentialValidator(deps.Users, deps.Hasher),
		Issuer:      NewTokenIssuer(deps.Signer, deps.Tokens, deps.AccessTTL, deps.RefreshTTL, deps.Clock),
		Revocations: NewRevocationManager(deps.Tokens, deps.Users),
		Clock:       deps.Clock,
		Logger:      logger,
	}
}

type SignupRequest struct {
	Username string
	Email    string
	Password string
}

// Signup registers a USER-role account and logs it in.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (domain.TokenPair, error) {
	user, err := s.register(ctx, req.Username, req.Email, req.Password, domain.RoleUser)
	if err != nil {
		return domain.TokenPair{}, err
	}
	s.Logger.InfoContext(ctx, "user signed up", slog.Any("user", user))
	return s.Issuer.Issue(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, username, password string) (domain.TokenPair, error) {
	user, err := s.Credentials.Validate(ctx, strings.TrimSpace(username), password)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return s.Issuer.Issue(ctx, user)
}

// Authenticate is a login that first revokes every live session of the user.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (domain.TokenPair, error) {
	user, err := s.Credentials.Validate(ctx, strings.TrimSpace(username), password)
	if err != nil {
		return domain.TokenPair{}, err
	}
	revoked, err := s.Revocations.RevokeAllForUser(ctx, user.ID)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("revoke sessions: %w", err)
	}
	s.Logger.InfoContext(ctx, "sessions revoked before authenticate", slog.Any("user", user), slog.Int("revoked", revoked))
	// reload so the new pair carries the bumped token version
	user, err = s.Users.FindByID(ctx, user.ID)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return s.Issuer.Issue(ctx, user)
}

// Refresh mints a new access token from a refresh token. The refresh token
// itself is returned unchanged. Refresh tokens issued before the user's
// sessions were last ended are refused.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	if s.Signer == nil {
		return domain.TokenPair{}, errors.New("token signer is required")
	}
	refreshToken = strings.TrimSpace(refreshToken)
	claims, err := s.Signer.Parse(refreshToken)
	if err != nil || claims.Kind != domain.TokenKindRefresh {
		return domain.TokenPair{}, domain.ErrUnauthorized
	}
	if !s.now().Before(claims.ExpiresAt) {
		return domain.TokenPair{}, domain.ErrUnauthorized
	}
	user, err := s.Users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.TokenPair{}, domain.ErrUnauthorized
		}
		return domain.TokenPair{}, err
	}
	if claims.Version != user.TokenVersion {
		return domain.TokenPair{}, domain.ErrUnauthorized
	}
	access, err := s.Issuer.IssueAccess(ctx, user)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{
		UserID:       user.ID,
		Username:     user.Username,
		AccessToken:  access.Value,
		RefreshToken: refreshToken,
		ExpiresAt:    access.ExpiresAt(),
	}, nil
}

// Logout revokes the token that authenticated sc and every outstanding
// refresh token of the user. Other stored access tokens stay valid.
func (s *AuthService) Logout(ctx context.Context, sc domain.SecurityContext) error {
	if !sc.IsAuthenticated() {
		return domain.ErrUnauthorized
	}
	if err := s.Revocations.Revoke(ctx, sc.Token.Value); err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return domain.ErrUnauthorized
		}
		return err
	}
	if err := s.Revocations.RevokeRefreshTokens(ctx, sc.Principal.ID); err != nil {
		return err
	}
	s.Logger.InfoContext(ctx, "user logged out", slog.Any("user", sc.Principal), slog.Int64("token_id", sc.Token.ID))
	return nil
}

// Sessions lists the caller's live access tokens.
func (s *AuthService) Sessions(ctx context.Context, sc domain.SecurityContext) ([]domain.Token, error) {
	if !sc.IsAuthenticated() {
		return nil, domain.ErrUnauthorized
	}
	return s.Tokens.FindActiveForUser(ctx, sc.Principal.ID)
}

// ChangePassword stores a new hash and revokes every token of the user.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, newPassword string) (int, error) {
	if err := validatePassword(newPassword); err != nil {
		return 0, err
	}
	if _, err := s.Users.FindByID(ctx, userID); err != nil {
		return 0, err
	}
	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	if err := s.Users.UpdatePassword(ctx, userID, hash); err != nil {
		return 0, err
	}
	revoked, err := s.Revocations.RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke sessions: %w", err)
	}
	s.Logger.InfoContext(ctx, "password changed", slog.Int64("user_id", userID), slog.Int("revoked", revoked))
	return revoked, nil
}

func (s *AuthService) register(ctx context.Context, username, email, password string, permission domain.RoleType) (domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return domain.User{}, fmt.Errorf("username is required: %w", domain.ErrInvalidArgument)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, fmt.Errorf("email is invalid: %w", domain.ErrInvalidArgument)
	}
	if err := validatePassword(password); err != nil {
		return domain.User{}, err
	}
	if !permission.Valid() {
		return domain.User{}, fmt.Errorf("unknown role %q: %w", permission, domain.ErrInvalidArgument)
	}
	role, err := s.Roles.FindByPermission(ctx, permission)
	if err != nil {
		return domain.User{}, err
	}
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	return s.Users.Create(ctx, domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now(),
	})
}

func (s *AuthService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock().UTC()
}

func validatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password is required: %w", domain.ErrInvalidArgument)
	}
	// bcrypt ignores everything past 72 bytes.
	if len(password) > 72 {
		return fmt.Errorf("password is longer than 72 bytes: %w", domain.ErrInvalidArgument)
	}
	return nil
}
