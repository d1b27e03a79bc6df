package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dentix/api/internal/ids"
	"dentix/api/internal/middleware"
	"dentix/api/internal/models"
	"dentix/api/internal/repository"
	"dentix/api/internal/security"
)

type adminCreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
}

type adminUpdateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"`
	Role     string `json:"role" binding:"required"`
}

type adminUserResponse struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName"`
	Roles       []string `json:"roles"`
}

func (h HandlerSet) AdminCreateUser(c *gin.Context) {
	var req adminCreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_role"})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := h.users.FindByEmail(c.Request.Context(), email); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email_already_registered"})
		return
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		h.log.Error().Err(err).Msg("admin create user lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create_failed"})
		return
	}

	passwordHash, err := security.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create_failed"})
		return
	}

	user := models.User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  email,
	}

	if err := h.users.Create(c.Request.Context(), user); err != nil {
		h.log.Error().Err(err).Msg("admin create user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create_failed"})
		return
	}
	if err := h.roles.Assign(c.Request.Context(), user.ID, req.Role); err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("assign role failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "user created",
		"userId":  user.ID,
		"email":   user.Email,
		"role":    req.Role,
	})
}

func (h HandlerSet) AdminListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}

	resp := make([]adminUserResponse, 0, len(users))
	for _, user := range users {
		roles, err := h.roles.ListByUser(c.Request.Context(), user.ID)
		if err != nil {
			h.log.Error().Err(err).Str("user_id", user.ID).Msg("list roles failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
			return
		}
		resp = append(resp, adminUserResponse{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			Roles:       roles,
		})
	}

	c.JSON(http.StatusOK, gin.H{"users": resp})
}

func (h HandlerSet) AdminGetUser(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("get user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed"})
		return
	}

	roles, err := h.roles.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("list roles failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed"})
		return
	}

	c.JSON(http.StatusOK, adminUserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Roles:       roles,
	})
}

func (h HandlerSet) AdminUpdateUser(c *gin.Context) {
	var req adminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_role"})
		return
	}

	id := c.Param("id")
	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("get user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email != user.Email {
		if existing, err := h.users.FindByEmail(c.Request.Context(), email); err == nil && existing.ID != user.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email_already_registered"})
			return
		} else if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			h.log.Error().Err(err).Msg("email lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
			return
		}
	}

	if err := h.users.UpdateProfile(c.Request.Context(), id, email, user.DisplayName); err != nil {
		h.log.Error().Err(err).Str("user_id", id).Msg("update profile failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
		return
	}

	if req.Password != "" {
		passwordHash, err := security.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
			return
		}
		if err := h.users.UpdatePassword(c.Request.Context(), id, passwordHash); err != nil {
			h.log.Error().Err(err).Str("user_id", id).Msg("update password failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
			return
		}
	}

	if err := h.roles.Replace(c.Request.Context(), id, req.Role); err != nil {
		h.log.Error().Err(err).Str("user_id", id).Msg("replace role failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user updated"})
}

func (h HandlerSet) AdminDeleteUser(c *gin.Context) {
	id := c.Param("id")

	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if claims.Subject == id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot_delete_own_account"})
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
			return
		}
		h.log.Error().Err(err).Str("user_id", id).Msg("delete user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
