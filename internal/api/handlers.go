// Package api exposes the public site API and the admin CMS API.
package api

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/bilgisen/khabar/internal/apperr"
	"github.com/bilgisen/khabar/internal/auth"
	"github.com/bilgisen/khabar/internal/config"
	"github.com/bilgisen/khabar/internal/feed"
	"github.com/bilgisen/khabar/internal/logger"
	"github.com/bilgisen/khabar/internal/media"
	"github.com/bilgisen/khabar/internal/middleware"
	"github.com/bilgisen/khabar/internal/models"
	"github.com/bilgisen/khabar/internal/storage"
)

// SourceScheduler is told when an RSS source changes so its polling job can
// be re-registered.
type SourceScheduler interface {
	Refresh(ctx context.Context, sourceID uint) error
}

// Deps are the services the handlers work with. Scheduler may be nil.
type Deps struct {
	Config    *config.Config
	Store     *storage.Store
	Auth      *auth.Service
	Syncer    *feed.Syncer
	Scheduler SourceScheduler
	Uploader  *media.Uploader

	// UploadDir is served at /uploads when files are stored locally.
	UploadDir string
}

type Handlers struct {
	cfg       *config.Config
	store     *storage.Store
	auth      *auth.Service
	syncer    *feed.Syncer
	scheduler SourceScheduler
	uploader  *media.Uploader
	log       *zerolog.Logger
	started   time.Time
}

func NewHandlers(d Deps) *Handlers {
	return &Handlers{
		cfg:       d.Config,
		store:     d.Store,
		auth:      d.Auth,
		syncer:    d.Syncer,
		scheduler: d.Scheduler,
		uploader:  d.Uploader,
		log:       logger.Component("api"),
		started:   time.Now(),
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	status, db := fiber.StatusOK, "ok"
	if err := h.store.Ping(c.UserContext()); err != nil {
		h.log.Error().Err(err).Msg("Database ping failed")
		status, db = fiber.StatusServiceUnavailable, "unavailable"
	}
	return c.Status(status).JSON(fiber.Map{
		"status":   lo.Ternary(status == fiber.StatusOK, "ok", "degraded"),
		"database": db,
		"uptime":   time.Since(h.started).Round(time.Second).String(),
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}

func idParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid id")
	}
	return uint(id), nil
}

func message(c *fiber.Ctx, msg string) error {
	return c.JSON(fiber.Map{"message": msg})
}

// listQuery is the shared query string of admin list endpoints.
type listQuery struct {
	Limit      int    `query:"limit" validate:"min=0"`
	Offset     int    `query:"offset" validate:"min=0"`
	Search     string `query:"search" validate:"max=200"`
	Status     string `query:"status" validate:"omitempty,oneof=draft scheduled published"`
	CategoryID uint   `query:"categoryId"`
	Active     string `query:"active" validate:"omitempty,oneof=true false"`
	Imported   string `query:"imported" validate:"omitempty,oneof=true false"`
	Position   string `query:"position" validate:"omitempty,oneof=sidebar header footer content"`
	Visibility string `query:"visibility" validate:"omitempty,oneof=public private unlisted"`
}

func parseList(c *fiber.Ctx) (storage.ListFilter, error) {
	q, err := middleware.ParseQuery[listQuery](c)
	if err != nil {
		return storage.ListFilter{}, err
	}
	f := storage.ListFilter{
		Limit:      q.Limit,
		Offset:     q.Offset,
		Search:     q.Search,
		Status:     q.Status,
		Active:     boolPtr(q.Active),
		Imported:   boolPtr(q.Imported),
		Position:   q.Position,
		Visibility: q.Visibility,
	}
	if q.CategoryID > 0 {
		id := q.CategoryID
		f.CategoryID = &id
	}
	return f, nil
}

func boolPtr(s string) *bool {
	if s == "" {
		return nil
	}
	b := s == "true"
	return &b
}

// set copies an optional request field into a column update map.
func set[T any](changes map[string]any, column string, v *T) {
	if v != nil {
		changes[column] = *v
	}
}

func (h *Handlers) account(c *fiber.Ctx) (*models.Account, error) {
	return middleware.CurrentAccount(c)
}
