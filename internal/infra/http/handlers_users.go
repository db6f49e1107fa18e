package http

import (
	"net/http"
	"strconv"
	"time"

	"giftstore/internal/domain"
	"giftstore/internal/usecase"

	"github.com/gin-gonic/gin"
)

type userResponse struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Authorities []string  `json:"authorities"`
	CreatedAt   time.Time `json:"created_at"`
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type changePasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleListUsers(c *gin.Context) {
	page, err := queryInt(c, "page", 0)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "page must be an integer")
		return
	}
	size, err := queryInt(c, "size", 0)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "size must be an integer")
		return
	}
	users, err := s.auth.ListUsers(c.Request.Context(), page, size)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, buildUserResponse(u))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

func (s *Server) handleGetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := s.auth.GetUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildUserResponse(user))
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "username, email and password are required")
		return
	}
	user, err := s.auth.CreateUser(c.Request.Context(), usecase.CreateUserRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.RoleType(req.Role),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, buildUserResponse(user))
}

func (s *Server) handleChangePassword(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "password is required")
		return
	}
	revoked, err := s.auth.ChangePassword(c.Request.Context(), id, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revoked_tokens": revoked})
}

func (s *Server) handleNoRoute(c *gin.Context) {
	writeErrorCode(c, http.StatusNotFound, "resource not found")
}

func buildUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        string(u.Role.Permission),
		Authorities: usecase.ResolveAuthorities(u.Role),
		CreatedAt:   u.CreatedAt,
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeErrorCode(c, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
