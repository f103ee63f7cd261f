package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/khabar/internal/apperr"
	"github.com/bilgisen/khabar/internal/middleware"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// Login handles POST /api/admin/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	req, err := middleware.ParseBody[loginRequest](c)
	if err != nil {
		return err
	}

	res, err := h.auth.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(res)
}

// Logout handles POST /api/admin/logout. Tokens are stateless; logging out
// drops the cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return message(c, "Logged out")
}

// GetProfile handles GET /api/admin/profile
func (h *Handlers) GetProfile(c *fiber.Ctx) error {
	acc, err := h.account(c)
	if err != nil {
		return err
	}
	return c.JSON(acc)
}

type profileRequest struct {
	Username        *string `json:"username" validate:"omitempty,min=3,max=50"`
	CurrentPassword string  `json:"currentPassword" validate:"required_with=NewPassword"`
	NewPassword     *string `json:"newPassword" validate:"omitempty,min=8,max=72"`
}

// UpdateProfile handles PUT /api/admin/profile: own username and password.
func (h *Handlers) UpdateProfile(c *fiber.Ctx) error {
	acc, err := h.account(c)
	if err != nil {
		return err
	}
	req, err := middleware.ParseBody[profileRequest](c)
	if err != nil {
		return err
	}

	changes := map[string]any{}
	set(changes, "username", req.Username)
	if req.NewPassword != nil {
		if err := h.auth.CheckPassword(c.UserContext(), acc, req.CurrentPassword); err != nil {
			if apperr.Is(err, apperr.KindInvalidCredentials) {
				return apperr.Validation("Current password is incorrect")
			}
			return err
		}
		hash, err := h.auth.HashPassword(c.UserContext(), *req.NewPassword)
		if err != nil {
			return err
		}
		changes["password_hash"] = hash
	}

	updated, err := h.store.UpdateAccount(c.UserContext(), acc.ID, changes)
	if err != nil {
		return err
	}
	return c.JSON(updated)
}
