package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/bilgisen/khabar/internal/apperr"
	"github.com/bilgisen/khabar/internal/middleware"
	"github.com/bilgisen/khabar/internal/models"
)

type createUserRequest struct {
	Username string      `json:"username" validate:"required,min=3,max=50"`
	Email    string      `json:"email" validate:"required,email,max=255"`
	Password string      `json:"password" validate:"required,min=8,max=72"`
	Role     models.Role `json:"role" validate:"required,oneof=manager editor limited_editor subtitle_editor viewer"`
	IsActive *bool       `json:"isActive"`
}

type updateUserRequest struct {
	Username *string      `json:"username" validate:"omitempty,min=3,max=50"`
	Email    *string      `json:"email" validate:"omitempty,email,max=255"`
	Password *string      `json:"password" validate:"omitempty,min=8,max=72"`
	Role     *models.Role `json:"role" validate:"omitempty,oneof=manager editor limited_editor subtitle_editor viewer"`
	IsActive *bool        `json:"isActive"`
}

// ListUsers handles GET /api/admin/users
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	f, err := parseList(c)
	if err != nil {
		return err
	}
	page, err := h.store.ListAccounts(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// GetUser handles GET /api/admin/users/:id
func (h *Handlers) GetUser(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	acc, err := h.store.GetAccount(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(acc)
}

// CreateUser handles POST /api/admin/users
func (h *Handlers) CreateUser(c *fiber.Ctx) error {
	req, err := middleware.ParseBody[createUserRequest](c)
	if err != nil {
		return err
	}
	hash, err := h.auth.HashPassword(c.UserContext(), req.Password)
	if err != nil {
		return err
	}
	acc := &models.Account{
		Username:     strings.TrimSpace(req.Username),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     lo.FromPtrOr(req.IsActive, true),
	}
	if err := h.store.CreateAccount(c.UserContext(), acc); err != nil {
		return err
	}
	h.log.Info().Uint("account_id", acc.ID).Str("role", string(acc.Role)).Msg("Account created")
	return c.Status(fiber.StatusCreated).JSON(acc)
}

// UpdateUser handles PUT /api/admin/users/:id
func (h *Handlers) UpdateUser(c *fiber.Ctx) error {
	me, err := h.account(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	req, err := middleware.ParseBody[updateUserRequest](c)
	if err != nil {
		return err
	}
	if id == me.ID {
		if req.IsActive != nil && !*req.IsActive {
			return apperr.Validation("You cannot deactivate your own account")
		}
		if req.Role != nil && *req.Role != me.Role {
			return apperr.Validation("You cannot change your own role")
		}
	}

	changes := map[string]any{}
	if req.Username != nil {
		changes["username"] = strings.TrimSpace(*req.Username)
	}
	set(changes, "email", req.Email)
	set(changes, "role", req.Role)
	set(changes, "is_active", req.IsActive)
	if req.Password != nil {
		hash, err := h.auth.HashPassword(c.UserContext(), *req.Password)
		if err != nil {
			return err
		}
		changes["password_hash"] = hash
	}

	acc, err := h.store.UpdateAccount(c.UserContext(), id, changes)
	if err != nil {
		return err
	}
	return c.JSON(acc)
}

// DeleteUser handles DELETE /api/admin/users/:id
func (h *Handlers) DeleteUser(c *fiber.Ctx) error {
	me, err := h.account(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if id == me.ID {
		return apperr.Validation("You cannot delete your own account")
	}
	if err := h.store.DeleteAccount(c.UserContext(), id); err != nil {
		return err
	}
	return message(c, "User deleted")
}
