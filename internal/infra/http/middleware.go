package http

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"giftstore/internal/domain"

	"github.com/gin-gonic/gin"
)

// authenticate resolves the bearer token into a security context. Ordinary
// token failures leave the request anonymous; only store failures abort.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractBearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			setSecurityContext(c, domain.Anonymous(domain.FailureNoCredentials))
			c.Next()
			return
		}
		sc, err := s.validator.Validate(c.Request.Context(), raw)
		if err != nil {
			s.logger.ErrorContext(c.Request.Context(), "token validation failed", slog.String("error", err.Error()))
			writeErrorCode(c, http.StatusInternalServerError, "internal error")
			return
		}
		if !sc.IsAuthenticated() {
			s.logger.DebugContext(c.Request.Context(), "bearer token rejected", slog.String("reason", string(sc.Reason)))
		}
		setSecurityContext(c, sc)
		c.Next()
	}
}

func (s *Server) authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		sc := getSecurityContext(c)
		decision := s.policy.Decide(c.Request.Method, c.Request.URL.Path, sc)
		c.Set(policyRuleKey, decision.Rule)
		if err := decision.Err(); err != nil {
			writeError(c, err)
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		sc := getSecurityContext(c)
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.Bool("authenticated", sc.IsAuthenticated()),
		}
		if sc.IsAuthenticated() {
			attrs = append(attrs, slog.Int64("user_id", sc.Principal.ID))
		} else if sc.Reason != domain.FailureNone {
			attrs = append(attrs, slog.String("auth_reason", string(sc.Reason)))
		}
		if rule, ok := c.Get(policyRuleKey); ok {
			attrs = append(attrs, slog.Any("policy_rule", rule))
		}
		s.logger.LogAttrs(c.Request.Context(), slog.LevelInfo, "http request", attrs...)
	}
}

// cors answers preflight requests from allow-listed origins and decorates
// their actual responses.
func (s *Server) cors() gin.HandlerFunc {
	allowed := s.cfg.CORSAllowedOrigins
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || !originAllowed(allowed, origin) {
			c.Next()
			return
		}
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Expose-Headers", "Authorization")
		h.Add("Vary", "Origin")
		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", strings.Join(corsMethods, ", "))
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			h.Set("Access-Control-Max-Age", strconv.Itoa(int(time.Hour.Seconds())))
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

var corsMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

func originAllowed(allowed []string, origin string) bool {
	return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
}
