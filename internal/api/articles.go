package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/khabar/internal/apperr"
	"github.com/bilgisen/khabar/internal/auth"
	"github.com/bilgisen/khabar/internal/middleware"
	"github.com/bilgisen/khabar/internal/models"
	"github.com/bilgisen/khabar/internal/storage"
)

type createArticleRequest struct {
	Title       string               `json:"title" validate:"required,max=300"`
	TitleHi     string               `json:"titleHi" validate:"max=300"`
	Content     string               `json:"content" validate:"required"`
	ContentHi   string               `json:"contentHi"`
	Excerpt     string               `json:"excerpt" validate:"max=1000"`
	ExcerptHi   string               `json:"excerptHi" validate:"max=1000"`
	CategoryID  *uint                `json:"categoryId"`
	AuthorName  string               `json:"authorName" validate:"max=120"`
	ImageURL    string               `json:"imageUrl" validate:"omitempty,max=1000"`
	Tags        []string             `json:"tags" validate:"max=20,dive,max=50"`
	IsBreaking  bool                 `json:"isBreaking"`
	IsTrending  bool                 `json:"isTrending"`
	Status      models.ArticleStatus `json:"status" validate:"omitempty,oneof=draft scheduled published"`
	ScheduledAt *time.Time           `json:"scheduledAt"`
	ChangeNote  string               `json:"changeNote" validate:"max=300"`
}

type updateArticleRequest struct {
	Title       *string               `json:"title" validate:"omitempty,min=1,max=300"`
	TitleHi     *string               `json:"titleHi" validate:"omitempty,max=300"`
	Content     *string               `json:"content" validate:"omitempty,min=1"`
	ContentHi   *string               `json:"contentHi"`
	Excerpt     *string               `json:"excerpt" validate:"omitempty,max=1000"`
	ExcerptHi   *string               `json:"excerptHi" validate:"omitempty,max=1000"`
	CategoryID  *uint                 `json:"categoryId"`
	AuthorName  *string               `json:"authorName" validate:"omitempty,max=120"`
	ImageURL    *string               `json:"imageUrl" validate:"omitempty,max=1000"`
	Tags        *[]string             `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	IsBreaking  *bool                 `json:"isBreaking"`
	IsTrending  *bool                 `json:"isTrending"`
	Status      *models.ArticleStatus `json:"status" validate:"omitempty,oneof=draft scheduled published"`
	ScheduledAt *time.Time            `json:"scheduledAt"`
	ChangeNote  string                `json:"changeNote" validate:"max=300"`
}

type scheduleRequest struct {
	ScheduledAt time.Time `json:"scheduledAt" validate:"required"`
}

// canSetStatus keeps roles without the publish permission from publishing
// or scheduling through a plain edit.
func canSetStatus(acc *models.Account, status models.ArticleStatus) error {
	if status == models.StatusDraft || status == "" {
		return nil
	}
	if !auth.Allowed(auth.OpArticlesPublish, acc.Role) {
		return apperr.Forbidden()
	}
	return nil
}

func (h *Handlers) checkCategory(ctx context.Context, id *uint) error {
	if id == nil || *id == 0 {
		return nil
	}
	if _, err := h.store.GetCategory(ctx, *id); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.Validation("Category does not exist")
		}
		return err
	}
	return nil
}

// ListArticles handles GET /api/admin/articles
func (h *Handlers) ListArticles(c *fiber.Ctx) error {
	f, err := parseList(c)
	if err != nil {
		return err
	}
	page, err := h.store.ListArticles(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// GetAdminArticle handles GET /api/admin/articles/:id
func (h *Handlers) GetAdminArticle(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	a, err := h.store.GetArticle(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(a)
}

// CreateArticle handles POST /api/admin/articles
func (h *Handlers) CreateArticle(c *fiber.Ctx) error {
	acc, err := h.account(c)
	if err != nil {
		return err
	}
	req, err := middleware.ParseBody[createArticleRequest](c)
	if err != nil {
		return err
	}
	if err := canSetStatus(acc, req.Status); err != nil {
		return err
	}
	if err := h.checkCategory(c.UserContext(), req.CategoryID); err != nil {
		return err
	}

	a := &models.Article{
		Title:       req.Title,
		TitleHi:     req.TitleHi,
		Content:     req.Content,
		ContentHi:   req.ContentHi,
		Excerpt:     req.Excerpt,
		ExcerptHi:   req.ExcerptHi,
		CategoryID:  req.CategoryID,
		AuthorName:  req.AuthorName,
		ImageURL:    req.ImageURL,
		Tags:        models.StringSlice(req.Tags),
		IsBreaking:  req.IsBreaking,
		IsTrending:  req.IsTrending,
		Status:      req.Status,
		ScheduledAt: req.ScheduledAt,
	}
	if a.AuthorName == "" {
		a.AuthorName = acc.Username
	}
	if a.CategoryID != nil && *a.CategoryID == 0 {
		a.CategoryID = nil
	}

	if err := h.store.CreateArticle(c.UserContext(), a, req.ChangeNote, &acc.ID); err != nil {
		return err
	}
	created, err := h.store.GetArticle(c.UserContext(), a.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateArticle handles PUT /api/admin/articles/:id
func (h *Handlers) UpdateArticle(c *fiber.Ctx) error {
	acc, err := h.account(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	req, err := middleware.ParseBody[updateArticleRequest](c)
	if err != nil {
		return err
	}
	if req.Status != nil {
		if err := canSetStatus(acc, *req.Status); err != nil {
			return err
		}
	}
	if req.ScheduledAt != nil && !auth.Allowed(auth.OpArticlesPublish, acc.Role) {
		return apperr.Forbidden()
	}
	if err := h.checkCategory(c.UserContext(), req.CategoryID); err != nil {
		return err
	}

	fields := map[string]any{}
	set(fields, "title", req.Title)
	set(fields, "title_hi", req.TitleHi)
	set(fields, "content", req.Content)
	set(fields, "content_hi", req.ContentHi)
	set(fields, "excerpt", req.Excerpt)
	set(fields, "excerpt_hi", req.ExcerptHi)
	set(fields, "author_name", req.AuthorName)
	set(fields, "image_url", req.ImageURL)
	set(fields, "is_breaking", req.IsBreaking)
	set(fields, "is_trending", req.IsTrending)
	if req.Tags != nil {
		fields["tags"] = models.StringSlice(*req.Tags)
	}
	if req.CategoryID != nil {
		if *req.CategoryID == 0 {
			fields["category_id"] = nil
		} else {
			fields["category_id"] = *req.CategoryID
		}
	}

	a, err := h.store.UpdateArticle(c.UserContext(), id, storage.ArticleUpdate{
		Fields:      fields,
		Status:      req.Status,
		ScheduledAt: req.ScheduledAt,
		ChangeNote:  req.ChangeNote,
		AuthorID:    &acc.ID,
	})
	if err != nil {
		return err
	}
	return c.JSON(a)
}

// PublishArticle handles POST /api/admin/articles/:id/publish
func (h *Handlers) PublishArticle(c *fiber.Ctx) error {
	acc, err := h.account(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	a, err := h.store.PublishArticle(c.UserContext(), id, &acc.ID)
	if err != nil {
		return err
	}
	return c.JSON(a)
}

// ScheduleArticle handles POST /api/admin/articles/:id/schedule
func (h *Handlers) ScheduleArticle(c *fiber.Ctx) error {
	acc, err := h.account(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	req, err := middleware.ParseBody[scheduleRequest](c)
	if err != nil {
		return err
	}
	a, err := h.store.ScheduleArticle(c.UserContext(), id, req.ScheduledAt, &acc.ID)
	if err != nil {
		return err
	}
	return c.JSON(a)
}

// DeleteArticle handles DELETE /api/admin/articles/:id
func (h *Handlers) DeleteArticle(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.store.DeleteArticle(c.UserContext(), id); err != nil {
		return err
	}
	return message(c, "Article deleted")
}

// ListArticleVersions handles GET /api/admin/articles/:id/versions
func (h *Handlers) ListArticleVersions(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if _, err := h.store.GetArticle(c.UserContext(), id); err != nil {
		return err
	}
	versions, err := h.store.ListVersions(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(versions)
}
