package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/bilgisen/khabar/internal/middleware"
	"github.com/bilgisen/khabar/internal/models"
)

// Categories

type categoryRequest struct {
	Title     string `json:"title" validate:"required,max=100"`
	TitleHi   string `json:"titleHi" validate:"max=100"`
	Slug      string `json:"slug" validate:"max=120"`
	Icon      string `json:"icon" validate:"max=100"`
	Color     string `json:"color" validate:"omitempty,max=30"`
	SortOrder int    `json:"sortOrder"`
}

type updateCategoryRequest struct {
	Title     *string `json:"title" validate:"omitempty,min=1,max=100"`
	TitleHi   *string `json:"titleHi" validate:"omitempty,max=100"`
	Slug      *string `json:"slug" validate:"omitempty,min=1,max=120"`
	Icon      *string `json:"icon" validate:"omitempty,max=100"`
	Color     *string `json:"color" validate:"omitempty,max=30"`
	SortOrder *int    `json:"sortOrder"`
}

func (h *Handlers) ListAdminCategories(c *fiber.Ctx) error {
	cats, err := h.store.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(cats)
}

func (h *Handlers) GetCategory(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	cat, err := h.store.GetCategory(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(cat)
}

func (h *Handlers) CreateCategory(c *fiber.Ctx) error {
	req, err := middleware.ParseBody[categoryRequest](c)
	if err != nil {
		return err
	}
	cat := &models.Category{
		Title:     req.Title,
		TitleHi:   req.TitleHi,
		Slug:      req.Slug,
		Icon:      req.Icon,
		Color:     req.Color,
		SortOrder: req.SortOrder,
	}
	if err := h.store.CreateCategory(c.UserContext(), cat); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(cat)
}

func (h *Handlers) UpdateCategory(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	req, err := middleware.ParseBody[updateCategoryRequest](c)
	if err != nil {
		return err
	}
	changes := map[string]any{}
	set(changes, "title", req.Title)
	set(changes, "title_hi", req.TitleHi)
	set(changes, "slug", req.Slug)
	set(changes, "icon", req.Icon)
	set(changes, "color", req.Color)
	set(changes, "sort_order", req.SortOrder)

	cat, err := h.store.UpdateCategory(c.UserContext(), id, changes)
	if err != nil {
		return err
	}
	return c.JSON(cat)
}

func (h *Handlers) DeleteCategory(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.store.DeleteCategory(c.UserContext(), id); err != nil {
		return err
	}
	return message(c, "Category deleted")
}

// Breaking news

type breakingRequest struct {
	Title     string          `json:"title" validate:"required,max=300"`
	TitleHi   string          `json:"titleHi" validate:"max=300"`
	Content   string          `json:"content" validate:"max=2000"`
	Priority  models.Priority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	IsActive  *bool           `json:"isActive"`
	ExpiresAt *time.Time      `json:"expiresAt"`
}

type updateBreakingRequest struct {
	Title     *string          `json:"title" validate:"omitempty,min=1,max=300"`
	TitleHi   *string          `json:"titleHi" validate:"omitempty,max=300"`
	Content   *string          `json:"content" validate:"omitempty,max=2000"`
	Priority  *models.Priority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	IsActive  *bool            `json:"isActive"`
	ExpiresAt *time.Time       `json:"expiresAt"`
}

func (h *Handlers) ListAdminBreakingNews(c *fiber.Ctx) error {
	f, err := parseList(c)
	if err != nil {
		return err
	}
	page, err := h.store.ListBreakingNews(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handlers) GetBreakingNewsItem(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	b, err := h.store.GetBreakingNews(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(b)
}

func (h *Handlers) CreateBreakingNews(c *fiber.Ctx) error {
	req, err := middleware.ParseBody[breakingRequest](c)
	if err != nil {
		return err
	}
	b := &models.BreakingNewsItem{
		Title:     req.Title,
		TitleHi:   req.TitleHi,
		Content:   req.Content,
		Priority:  req.Priority,
		IsActive:  lo.FromPtrOr(req.IsActive, true),
		ExpiresAt: req.ExpiresAt,
	}
	if err := h.store.CreateBreakingNews(c.UserContext(), b); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(b)
}

func (h *Handlers) UpdateBreakingNews(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	req, err := middleware.ParseBody[updateBreakingRequest](c)
	if err != nil {
		return err
	}
	changes := map[string]any{}
	set(changes, "title", req.Title)
	set(changes, "title_hi", req.TitleHi)
	set(changes, "content", req.Content)
	set(changes, "priority", req.Priority)
	set(changes, "is_active", req.IsActive)
	set(changes, "expires_at", req.ExpiresAt)

	b, err := h.store.UpdateBreakingNews(c.UserContext(), id, changes)
	if err != nil {
		return err
	}
	return c.JSON(b)
}

func (h *Handlers) DeleteBreakingNews(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.store.DeleteBreakingNews(c.UserContext(), id); err != nil {
		return err
	}
	return message(c, "Breaking news deleted")
}

// Videos

type videoRequest struct {
	Title        string            `json:"title" validate:"required,max=300"`
	TitleHi      string            `json:"titleHi" validate:"max=300"`
	Description  string            `json:"description"`
	VideoURL     string            `json:"videoUrl" validate:"required,max=1000"`
	ThumbnailURL string            `json:"thumbnailUrl" validate:"max=1000"`
	Duration     string            `json:"duration" validate:"max=20"`
	Category     string            `json:"category" validate:"max=100"`
	Tags         []string          `json:"tags" validate:"max=20,dive,max=50"`
	Visibility   models.Visibility `json:"visibility" validate:"omitempty,oneof=public private unlisted"`
	IsVertical   bool              `json:"isVertical"`
	Quality      string            `json:"quality" validate:"max=20"`
}

type updateVideoRequest struct {
	Title        *string            `json:"title" validate:"omitempty,min=1,max=300"`
	TitleHi      *string            `json:"titleHi" validate:"omitempty,max=300"`
	Description  *string            `json:"description"`
	VideoURL     *string            `json:"videoUrl" validate:"omitempty,min=1,max=1000"`
	ThumbnailURL *string            `json:"thumbnailUrl" validate:"omitempty,max=1000"`
	Duration     *string            `json:"duration" validate:"omitempty,max=20"`
	Category     *string            `json:"category" validate:"omitempty,max=100"`
	Tags         *[]string          `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	Visibility   *models.Visibility `json:"visibility" validate:"omitempty,oneof=public private unlisted"`
	IsVertical   *bool              `json:"isVertical"`
	Quality      *string            `json:"quality" validate:"omitempty,max=20"`
}

func (h *Handlers) ListAdminVideos(c *fiber.Ctx) error {
	f, err := parseList(c)
	if err != nil {
		return err
	}
	page, err := h.store.ListVideos(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handlers) GetVideo(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	v, err := h.store.GetVideo(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(v)
}

func (h *Handlers) CreateVideo(c *fiber.Ctx) error {
	req, err := middleware.ParseBody[videoRequest](c)
	if err != nil {
		return err
	}
	v := &models.Video{
		Title:        req.Title,
		TitleHi:      req.TitleHi,
		Description:  req.Description,
		VideoURL:     req.VideoURL,
		ThumbnailURL: req.ThumbnailURL,
		Duration:     req.Duration,
		Category:     req.Category,
		Tags:         models.StringSlice(req.Tags),
		Visibility:   req.Visibility,
		IsVertical:   req.IsVertical,
		Quality:      req.Quality,
	}
	if err := h.store.CreateVideo(c.UserContext(), v); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(v)
}

func (h *Handlers) UpdateVideo(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	req, err := middleware.ParseBody[updateVideoRequest](c)
	if err != nil {
		return err
	}
	changes := map[string]any{}
	set(changes, "title", req.Title)
	set(changes, "title_hi", req.TitleHi)
	set(changes, "description", req.Description)
	set(changes, "video_url", req.VideoURL)
	set(changes, "thumbnail_url", req.ThumbnailURL)
	set(changes, "duration", req.Duration)
	set(changes, "category", req.Category)
	set(changes, "visibility", req.Visibility)
	set(changes, "is_vertical", req.IsVertical)
	set(changes, "quality", req.Quality)
	if req.Tags != nil {
		changes["tags"] = models.StringSlice(*req.Tags)
	}

	v, err := h.store.UpdateVideo(c.UserContext(), id, changes)
	if err != nil {
		return err
	}
	return c.JSON(v)
}

func (h *Handlers) DeleteVideo(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.store.DeleteVideo(c.UserContext(), id); err != nil {
		return err
	}
	return message(c, "Video deleted")
}

// Live streams

type liveStreamRequest struct {
	Name         string            `json:"name" validate:"required,max=200"`
	NameHi       string            `json:"nameHi" validate:"max=200"`
	Description  string            `json:"description"`
	StreamURL    string            `json:"streamUrl" validate:"required,max=1000"`
	ThumbnailURL string            `json:"thumbnailUrl" validate:"max=1000"`
	StreamType   models.StreamType `json:"streamType" validate:"omitempty,oneof=hls youtube custom"`
	Category     string            `json:"category" validate:"max=100"`
	Quality      string            `json:"quality" validate:"max=20"`
	IsActive     *bool             `json:"isActive"`
	ViewerCount  int               `json:"viewerCount" validate:"min=0"`
	SortOrder    int               `json:"sortOrder"`
}

type updateLiveStreamRequest struct {
	Name         *string            `json:"name" validate:"omitempty,min=1,max=200"`
	NameHi       *string            `json:"nameHi" validate:"omitempty,max=200"`
	Description  *string            `json:"description"`
	StreamURL    *string            `json:"streamUrl" validate:"omitempty,min=1,max=1000"`
	ThumbnailURL *string            `json:"thumbnailUrl" validate:"omitempty,max=1000"`
	StreamType   *models.StreamType `json:"streamType" validate:"omitempty,oneof=hls youtube custom"`
	Category     *string            `json:"category" validate:"omitempty,max=100"`
	Quality      *string            `json:"quality" validate:"omitempty,max=20"`
	IsActive     *bool              `json:"isActive"`
	ViewerCount  *int               `json:"viewerCount" validate:"omitempty,min=0"`
	SortOrder    *int               `json:"sortOrder"`
}

func (h *Handlers) ListAdminLiveStreams(c *fiber.Ctx) error {
	f, err := parseList(c)
	if err != nil {
		return err
	}
	page, err := h.store.ListLiveStreams(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handlers) GetLiveStream(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	l, err := h.store.GetLiveStream(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(l)
}

func (h *Handlers) CreateLiveStream(c *fiber.Ctx) error {
	req, err := middleware.ParseBody[liveStreamRequest](c)
	if err != nil {
		return err
	}
	l := &models.LiveStream{
		Name:         req.Name,
		NameHi:       req.NameHi,
		Description:  req.Description,
		StreamURL:    req.StreamURL,
		ThumbnailURL: req.ThumbnailURL,
		StreamType:   lo.Ternary(req.StreamType == "", models.StreamHLS, req.StreamType),
		Category:     req.Category,
		Quality:      lo.Ternary(req.Quality == "", "720p", req.Quality),
		IsActive:     lo.FromPtrOr(req.IsActive, true),
		ViewerCount:  req.ViewerCount,
		SortOrder:    req.SortOrder,
	}
	if err := h.store.CreateLiveStream(c.UserContext(), l); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(l)
}

func (h *Handlers) UpdateLiveStream(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	req, err := middleware.ParseBody[updateLiveStreamRequest](c)
	if err != nil {
		return err
	}
	changes := map[string]any{}
	set(changes, "name", req.Name)
	set(changes, "name_hi", req.NameHi)
	set(changes, "description", req.Description)
	set(changes, "stream_url", req.StreamURL)
	set(changes, "thumbnail_url", req.ThumbnailURL)
	set(changes, "stream_type", req.StreamType)
	set(changes, "category", req.Category)
	set(changes, "quality", req.Quality)
	set(changes, "is_active", req.IsActive)
	set(changes, "viewer_count", req.ViewerCount)
	set(changes, "sort_order", req.SortOrder)

	l, err := h.store.UpdateLiveStream(c.UserContext(), id, changes)
	if err != nil {
		return err
	}
	return c.JSON(l)
}

func (h *Handlers) DeleteLiveStream(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.store.DeleteLiveStream(c.UserContext(), id); err != nil {
		return err
	}
	return message(c, "Live stream deleted")
}

// Advertisements

type adRequest struct {
	Title    string            `json:"title" validate:"required,max=200"`
	ImageURL string            `json:"imageUrl" validate:"required,max=1000"`
	LinkURL  string            `json:"linkUrl" validate:"omitempty,url,max=1000"`
	Position models.AdPosition `json:"position" validate:"required,oneof=sidebar header footer content"`
	Width    int               `json:"width" validate:"min=0,max=4000"`
	Height   int               `json:"height" validate:"min=0,max=4000"`
	IsActive *bool             `json:"isActive"`
}

type updateAdRequest struct {
	Title    *string            `json:"title" validate:"omitempty,min=1,max=200"`
	ImageURL *string            `json:"imageUrl" validate:"omitempty,min=1,max=1000"`
	LinkURL  *string            `json:"linkUrl" validate:"omitempty,max=1000"`
	Position *models.AdPosition `json:"position" validate:"omitempty,oneof=sidebar header footer content"`
	Width    *int               `json:"width" validate:"omitempty,min=0,max=4000"`
	Height   *int               `json:"height" validate:"omitempty,min=0,max=4000"`
	IsActive *bool              `json:"isActive"`
}

func (h *Handlers) ListAdminAdvertisements(c *fiber.Ctx) error {
	f, err := parseList(c)
	if err != nil {
		return err
	}
	page, err := h.store.ListAdvertisements(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handlers) GetAdvertisement(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	ad, err := h.store.GetAdvertisement(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(ad)
}

func (h *Handlers) CreateAdvertisement(c *fiber.Ctx) error {
	req, err := middleware.ParseBody[adRequest](c)
	if err != nil {
		return err
	}
	ad := &models.Advertisement{
		Title:    req.Title,
		ImageURL: req.ImageURL,
		LinkURL:  req.LinkURL,
		Position: req.Position,
		Width:    req.Width,
		Height:   req.Height,
		IsActive: lo.FromPtrOr(req.IsActive, true),
	}
	if err := h.store.CreateAdvertisement(c.UserContext(), ad); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(ad)
}

func (h *Handlers) UpdateAdvertisement(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	req, err := middleware.ParseBody[updateAdRequest](c)
	if err != nil {
		return err
	}
	changes := map[string]any{}
	set(changes, "title", req.Title)
	set(changes, "image_url", req.ImageURL)
	set(changes, "link_url", req.LinkURL)
	set(changes, "position", req.Position)
	set(changes, "width", req.Width)
	set(changes, "height", req.Height)
	set(changes, "is_active", req.IsActive)

	ad, err := h.store.UpdateAdvertisement(c.UserContext(), id, changes)
	if err != nil {
		return err
	}
	return c.JSON(ad)
}

func (h *Handlers) DeleteAdvertisement(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.store.DeleteAdvertisement(c.UserContext(), id); err != nil {
		return err
	}
	return message(c, "Advertisement deleted")
}
