package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/khabar/internal/models"
	"github.com/bilgisen/khabar/internal/storage"
)

// Public list endpoints never fail the page: on error they log and answer
// with an empty list.
func (h *Handlers) degrade(c *fiber.Ctx, what string, err error) error {
	h.log.Error().Err(err).Str("list", what).Msg("Public list failed")
	return c.JSON([]any{})
}

// GetCategories handles GET /api/categories
func (h *Handlers) GetCategories(c *fiber.Ctx) error {
	cats, err := h.store.ListCategories(c.UserContext())
	if err != nil {
		return h.degrade(c, "categories", err)
	}
	return c.JSON(cats)
}

// GetArticles handles GET /api/articles
func (h *Handlers) GetArticles(c *fiber.Ctx) error {
	f := storage.ListFilter{
		Limit:  c.QueryInt("limit"),
		Offset: c.QueryInt("offset"),
		Search: c.Query("search"),
	}
	if id := c.QueryInt("categoryId"); id > 0 {
		cid := uint(id)
		f.CategoryID = &cid
	}
	page, err := h.store.ListPublishedArticles(c.UserContext(), f)
	if err != nil {
		return h.degrade(c, "articles", err)
	}
	return c.JSON(page.Items)
}

// GetArticle handles GET /api/articles/:id
func (h *Handlers) GetArticle(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	a, err := h.store.GetPublishedArticle(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(a)
}

// GetTrendingArticles handles GET /api/trending-articles
func (h *Handlers) GetTrendingArticles(c *fiber.Ctx) error {
	items, err := h.store.ListTrendingArticles(c.UserContext(), c.QueryInt("limit", 10))
	if err != nil {
		return h.degrade(c, "trending", err)
	}
	return c.JSON(items)
}

// GetBreakingNews handles GET /api/breaking-news
func (h *Handlers) GetBreakingNews(c *fiber.Ctx) error {
	items, err := h.store.ListVisibleBreakingNews(c.UserContext())
	if err != nil {
		return h.degrade(c, "breaking-news", err)
	}
	return c.JSON(items)
}

// GetLiveStreams handles GET /api/live-streams
func (h *Handlers) GetLiveStreams(c *fiber.Ctx) error {
	items, err := h.store.ListActiveLiveStreams(c.UserContext())
	if err != nil {
		return h.degrade(c, "live-streams", err)
	}
	return c.JSON(items)
}

// GetAdvertisements handles GET /api/advertisements
func (h *Handlers) GetAdvertisements(c *fiber.Ctx) error {
	items, err := h.store.ListActiveAdvertisements(c.UserContext(), c.Query("position"))
	if err != nil {
		return h.degrade(c, "advertisements", err)
	}
	return c.JSON(items)
}

// GetVideos handles GET /api/videos
func (h *Handlers) GetVideos(c *fiber.Ctx) error {
	page, err := h.store.ListVideos(c.UserContext(), storage.ListFilter{
		Visibility: string(models.VisibilityPublic),
		Limit:      c.QueryInt("limit"),
		Offset:     c.QueryInt("offset"),
	})
	if err != nil {
		return h.degrade(c, "videos", err)
	}
	return c.JSON(page.Items)
}
