package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/khabar/internal/apperr"
	"github.com/bilgisen/khabar/internal/auth"
	"github.com/bilgisen/khabar/internal/models"
)

const (
	// CookieName is the session cookie set at login.
	CookieName = "admin_token"

	accountKey = "account"
)

// Authorizer resolves a session token to an account allowed to perform op.
type Authorizer interface {
	AuthorizeOp(ctx context.Context, token string, op auth.Operation) (*models.Account, error)
}

// AuthConfig defines the config for the auth middleware
type AuthConfig struct {
	// Next skips the middleware when it returns true.
	Next func(c *fiber.Ctx) bool

	// Authorizer checks the token. Required.
	Authorizer Authorizer

	// Operation is looked up in the permission table. Required.
	Operation auth.Operation

	// Cookie is the cookie read when no Authorization header is sent.
	// Optional. Default: "admin_token"
	Cookie string
}

// NewAuth creates a middleware that admits only accounts allowed to
// perform cfg.Operation. The account is stored in the request locals.
func NewAuth(cfg AuthConfig) fiber.Handler {
	if cfg.Cookie == "" {
		cfg.Cookie = CookieName
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		acc, err := cfg.Authorizer.AuthorizeOp(c.UserContext(), tokenFrom(c, cfg.Cookie), cfg.Operation)
		if err != nil {
			return err
		}
		c.Locals(accountKey, acc)
		return c.Next()
	}
}

// Require is NewAuth for a single operation.
func Require(a Authorizer, op auth.Operation) fiber.Handler {
	return NewAuth(AuthConfig{Authorizer: a, Operation: op})
}

func tokenFrom(c *fiber.Ctx, cookie string) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return ""
	}
	return c.Cookies(cookie)
}

// CurrentAccount returns the account admitted by the auth middleware.
func CurrentAccount(c *fiber.Ctx) (*models.Account, error) {
	acc, ok := c.Locals(accountKey).(*models.Account)
	if !ok || acc == nil {
		return nil, apperr.InvalidToken(nil)
	}
	return acc, nil
}
