package api

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/bilgisen/khabar/internal/logger"
	"github.com/bilgisen/khabar/internal/middleware"
)

// bodyOverhead leaves room for multipart framing on top of the largest file.
const bodyOverhead = 1 << 20

// NewApp builds the Fiber application with middleware and routes.
func NewApp(d Deps) *fiber.App {
	cfg := d.Config
	log := logger.Component("server")

	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.HTTPTimeout,
		WriteTimeout:          cfg.HTTPTimeout,
		IdleTimeout:           120 * time.Second,
		BodyLimit:             int(max(cfg.MaxVideoSize, cfg.MaxImageSize)) + bodyOverhead,
		ErrorHandler:          middleware.ErrorHandler,
		DisableStartupMessage: true,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	if cfg.CookieSecret != "" {
		if key, err := base64.StdEncoding.DecodeString(cfg.CookieSecret); err != nil || len(key) != 32 {
			log.Warn().Msg("COOKIE_SECRET is not a base64 32-byte key, cookies stay unencrypted")
		} else {
			app.Use(encryptcookie.New(encryptcookie.Config{Key: cfg.CookieSecret}))
		}
	}

	if d.UploadDir != "" {
		app.Static("/uploads", d.UploadDir, fiber.Static{MaxAge: 86400})
	}

	SetupRoutes(app, NewHandlers(d))
	return app
}

// corsConfig allows credentials only for an explicit origin list.
func corsConfig(origins string) cors.Config {
	origins = strings.TrimSpace(origins)
	c := cors.Config{
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}
	if origins == "" || origins == "*" {
		c.AllowOrigins = "*"
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
