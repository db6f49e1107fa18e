package http

import (
	"errors"
	"net/http"
	"strings"

	"giftstore/internal/domain"
	"giftstore/internal/infra/auth/policy"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	StatusCode   string `json:"statusCode"`
	ErrorMessage string `json:"errorMessage"`
}

// statusName renders a status the way the storefront clients expect,
// e.g. 401 -> UNAUTHORIZED, 429 -> TOO_MANY_REQUESTS.
func statusName(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}

func writeErrorCode(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorResponse{
		StatusCode:   statusName(status),
		ErrorMessage: message,
	})
}

func writeError(c *gin.Context, err error) {
	if _, ok := policy.IsAuthzError(err); ok {
		writeErrorCode(c, http.StatusForbidden, "Access is denied")
		return
	}
	switch {
	case errors.Is(err, domain.ErrAuthenticationFailed):
		writeErrorCode(c, http.StatusUnauthorized, "Bad credentials")
	case errors.Is(err, domain.ErrUnauthorized):
		writeErrorCode(c, http.StatusUnauthorized, "Full authentication is required to access this resource")
	case errors.Is(err, domain.ErrForbidden):
		writeErrorCode(c, http.StatusForbidden, "Access is denied")
	case errors.Is(err, domain.ErrUserExists):
		writeErrorCode(c, http.StatusBadRequest, "User with this username or email already exists")
	case errors.Is(err, domain.ErrInvalidArgument):
		writeErrorCode(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		writeErrorCode(c, http.StatusNotFound, "User not found")
	case errors.Is(err, domain.ErrRoleNotFound):
		writeErrorCode(c, http.StatusBadRequest, "Role not found")
	default:
		writeErrorCode(c, http.StatusInternalServerError, "internal error")
	}
}
