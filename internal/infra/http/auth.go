package http

import (
	"strings"

	"giftstore/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	securityContextKey = "securityContext"
	policyRuleKey      = "policyRule"
)

func extractBearerToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(value), "bearer ") {
		return ""
	}
	return strings.TrimSpace(value[len("bearer "):])
}

// setSecurityContext attaches sc to both the gin context and the request
// context so handlers and downstream code see the same value.
func setSecurityContext(c *gin.Context, sc domain.SecurityContext) {
	c.Set(securityContextKey, sc)
	c.Request = c.Request.WithContext(domain.WithSecurityContext(c.Request.Context(), sc))
}

func getSecurityContext(c *gin.Context) domain.SecurityContext {
	raw, ok := c.Get(securityContextKey)
	if !ok {
		return domain.Anonymous(domain.FailureNoCredentials)
	}
	sc, ok := raw.(domain.SecurityContext)
	if !ok {
		return domain.Anonymous(domain.FailureNoCredentials)
	}
	return sc
}
