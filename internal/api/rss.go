package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/bilgisen/khabar/internal/feed"
	"github.com/bilgisen/khabar/internal/middleware"
	"github.com/bilgisen/khabar/internal/models"
)

type rssSourceRequest struct {
	Name           string          `json:"name" validate:"required,max=200"`
	URL            string          `json:"url" validate:"required,url,max=1000"`
	Category       string          `json:"category" validate:"max=100"`
	IsActive       *bool           `json:"isActive"`
	AutoImport     bool            `json:"autoImport"`
	ImportInterval int             `json:"importInterval" validate:"omitempty,min=5,max=1440"`
	Priority       models.Priority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

type updateRssSourceRequest struct {
	Name           *string          `json:"name" validate:"omitempty,min=1,max=200"`
	URL            *string          `json:"url" validate:"omitempty,url,max=1000"`
	Category       *string          `json:"category" validate:"omitempty,max=100"`
	IsActive       *bool            `json:"isActive"`
	AutoImport     *bool            `json:"autoImport"`
	ImportInterval *int             `json:"importInterval" validate:"omitempty,min=5,max=1440"`
	Priority       *models.Priority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

// rssSourceView adds the derived sync health to a source.
type rssSourceView struct {
	models.RssSource
	Health models.SourceHealth `json:"health"`
}

func sourceView(src models.RssSource, now time.Time) rssSourceView {
	return rssSourceView{RssSource: src, Health: src.Health(now)}
}

// refreshSchedule re-registers the polling job of a source. Failures are
// logged; the source change itself already succeeded.
func (h *Handlers) refreshSchedule(ctx context.Context, id uint) {
	if h.scheduler == nil {
		return
	}
	if err := h.scheduler.Refresh(ctx, id); err != nil {
		h.log.Warn().Err(err).Uint("source_id", id).Msg("Failed to refresh source schedule")
	}
}

// ListRssSources handles GET /api/admin/rss-sources
func (h *Handlers) ListRssSources(c *fiber.Ctx) error {
	f, err := parseList(c)
	if err != nil {
		return err
	}
	page, err := h.store.ListRssSources(c.UserContext(), f)
	if err != nil {
		return err
	}
	now := time.Now()
	return c.JSON(fiber.Map{
		"items": lo.Map(page.Items, func(s models.RssSource, _ int) rssSourceView {
			return sourceView(s, now)
		}),
		"total":  page.Total,
		"limit":  page.Limit,
		"offset": page.Offset,
	})
}

// GetRssSource handles GET /api/admin/rss-sources/:id
func (h *Handlers) GetRssSource(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	src, err := h.store.GetRssSource(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(sourceView(*src, time.Now()))
}

// CreateRssSource handles POST /api/admin/rss-sources
func (h *Handlers) CreateRssSource(c *fiber.Ctx) error {
	req, err := middleware.ParseBody[rssSourceRequest](c)
	if err != nil {
		return err
	}
	src := &models.RssSource{
		Name:           req.Name,
		URL:            req.URL,
		Category:       req.Category,
		IsActive:       lo.FromPtrOr(req.IsActive, true),
		AutoImport:     req.AutoImport,
		ImportInterval: lo.Ternary(req.ImportInterval == 0, 60, req.ImportInterval),
		Priority:       req.Priority,
	}
	if err := h.store.CreateRssSource(c.UserContext(), src); err != nil {
		return err
	}
	h.refreshSchedule(c.UserContext(), src.ID)
	return c.Status(fiber.StatusCreated).JSON(sourceView(*src, time.Now()))
}

// UpdateRssSource handles PUT /api/admin/rss-sources/:id
func (h *Handlers) UpdateRssSource(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	req, err := middleware.ParseBody[updateRssSourceRequest](c)
	if err != nil {
		return err
	}
	changes := map[string]any{}
	set(changes, "name", req.Name)
	set(changes, "url", req.URL)
	set(changes, "category", req.Category)
	set(changes, "is_active", req.IsActive)
	set(changes, "auto_import", req.AutoImport)
	set(changes, "import_interval", req.ImportInterval)
	set(changes, "priority", req.Priority)

	src, err := h.store.UpdateRssSource(c.UserContext(), id, changes)
	if err != nil {
		return err
	}
	h.refreshSchedule(c.UserContext(), id)
	return c.JSON(sourceView(*src, time.Now()))
}

// DeleteRssSource handles DELETE /api/admin/rss-sources/:id
func (h *Handlers) DeleteRssSource(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.store.DeleteRssSource(c.UserContext(), id); err != nil {
		return err
	}
	h.refreshSchedule(c.UserContext(), id)
	return message(c, "RSS source deleted")
}

// SyncRssSource handles POST /api/admin/rss-sources/:id/sync
func (h *Handlers) SyncRssSource(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	res, err := h.syncer.SyncSource(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// SyncAllRssSources handles POST /api/admin/rss-sources/sync-all
func (h *Handlers) SyncAllRssSources(c *fiber.Ctx) error {
	results, err := h.syncer.SyncAll(c.UserContext())
	if err != nil {
		return err
	}
	failed := lo.CountBy(results, func(r feed.SyncResult) bool { return r.Error != "" })
	return c.JSON(fiber.Map{
		"results":       results,
		"sources":       len(results),
		"failed":        failed,
		"importedCount": lo.SumBy(results, func(r feed.SyncResult) int { return r.ImportedCount }),
	})
}

// ListRssItems handles GET /api/admin/rss-sources/:id/items
func (h *Handlers) ListRssItems(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if _, err := h.store.GetRssSource(c.UserContext(), id); err != nil {
		return err
	}
	f, err := parseList(c)
	if err != nil {
		return err
	}
	page, err := h.store.ListRssItems(c.UserContext(), id, f)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// ImportRssItem handles POST /api/admin/rss-items/:id/import
func (h *Handlers) ImportRssItem(c *fiber.Ctx) error {
	acc, err := h.account(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	a, err := h.syncer.Promote(c.UserContext(), id, acc)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}
