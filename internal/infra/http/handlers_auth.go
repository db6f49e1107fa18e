package http

import (
	"log/slog"
	"net/http"
	"time"

	"giftstore/internal/domain"
	"giftstore/internal/usecase"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type signupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type sessionResponse struct {
	ID        int64     `json:"id"`
	TokenType string    `json:"token_type"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Current   bool      `json:"current"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "username and password are required")
		return
	}
	if !s.allowLogin(c, req.Username) {
		return
	}
	pair, err := s.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	s.loginSucceeded(c, req.Username)
	c.JSON(http.StatusOK, buildTokenResponse(pair))
}

func (s *Server) handleTokenAuthenticate(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "username and password are required")
		return
	}
	if !s.allowLogin(c, req.Username) {
		return
	}
	pair, err := s.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	s.loginSucceeded(c, req.Username)
	c.JSON(http.StatusOK, buildTokenResponse(pair))
}

func (s *Server) handleSignup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "username, email and password are required")
		return
	}
	pair, err := s.auth.Signup(c.Request.Context(), usecase.SignupRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildTokenResponse(pair))
}

func (s *Server) handleLogout(c *gin.Context) {
	if err := s.auth.Logout(c.Request.Context(), getSecurityContext(c)); err != nil {
		writeError(c, err)
		return
	}
	setSecurityContext(c, domain.Anonymous(domain.FailureNone))
	c.String(http.StatusOK, "Logout successful")
}

func (s *Server) handleTokenRefresh(c *gin.Context) {
	raw := extractBearerToken(c.GetHeader("Authorization"))
	if raw == "" {
		writeErrorCode(c, http.StatusUnauthorized, "refresh token required")
		return
	}
	pair, err := s.auth.Refresh(c.Request.Context(), raw)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildTokenResponse(pair))
}

func (s *Server) handleSessions(c *gin.Context) {
	sc := getSecurityContext(c)
	tokens, err := s.auth.Sessions(c.Request.Context(), sc)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]sessionResponse, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, sessionResponse{
			ID:        t.ID,
			TokenType: string(t.Type),
			IssuedAt:  t.IssuedAt,
			ExpiresAt: t.ExpiresAt(),
			Current:   t.ID == sc.Token.ID,
		})
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

func (s *Server) allowLogin(c *gin.Context, username string) bool {
	if s.throttle == nil {
		return true
	}
	decision, err := s.throttle.Allow(c.Request.Context(), c.ClientIP(), username)
	if err != nil {
		s.logger.WarnContext(c.Request.Context(), "login rate limiter unavailable", slog.String("error", err.Error()))
		if s.limiterFailClosed {
			writeErrorCode(c, http.StatusTooManyRequests, "rate limiter unavailable")
			return false
		}
		return true
	}
	writeRateLimitHeaders(c, decision)
	if !decision.Allowed {
		writeErrorCode(c, http.StatusTooManyRequests, "too many login attempts")
		return false
	}
	return true
}

func (s *Server) loginSucceeded(c *gin.Context, username string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.Succeeded(c.Request.Context(), c.ClientIP(), username); err != nil {
		s.logger.WarnContext(c.Request.Context(), "reset login rate limit", slog.String("error", err.Error()))
	}
}

func buildTokenResponse(pair domain.TokenPair) tokenResponse {
	return tokenResponse{
		ID:           pair.UserID,
		Username:     pair.Username,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	}
}
