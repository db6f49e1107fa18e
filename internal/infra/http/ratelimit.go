package http

import (
	"strconv"
	"time"

	"giftstore/internal/domain"

	"github.com/gin-gonic/gin"
)

func writeRateLimitHeaders(c *gin.Context, decision domain.RateLimitDecision) {
	if decision.Limit <= 0 {
		return
	}
	c.Header("RateLimit-Limit", strconv.Itoa(decision.Limit))
	c.Header("RateLimit-Remaining", strconv.Itoa(max(decision.Remaining, 0)))
	if decision.ResetAt.IsZero() {
		return
	}
	c.Header("RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
	if !decision.Allowed {
		retryAfter := max(int64(time.Until(decision.ResetAt).Seconds()), 0)
		c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
	}
}
