package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bilgisen/khabar/internal/apperr"
	"github.com/bilgisen/khabar/internal/models"
	"github.com/bilgisen/khabar/internal/utils"
)

const categoryLabel = "Category"

// CreateCategory derives the slug from the title when none is given and
// rejects slugs that are already taken.
func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	if c.Slug == "" {
		c.Slug = utils.Slugify(c.Title)
	} else {
		c.Slug = utils.Slugify(c.Slug)
	}
	if c.Slug == "" {
		return apperr.Validation("Category title must contain letters or digits")
	}
	if err := s.ensureSlugFree(ctx, c.Slug, 0); err != nil {
		return err
	}
	if err := create(ctx, s.db, c, categoryLabel); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return slugTaken()
		}
		return err
	}
	return nil
}

func slugTaken() error {
	return apperr.Conflict("A category with this slug already exists")
}

func (s *Store) ensureSlugFree(ctx context.Context, slug string, exceptID uint) error {
	var existing models.Category
	err := s.db.WithContext(ctx).Where("slug = ? AND id <> ?", slug, exceptID).First(&existing).Error
	switch {
	case err == nil:
		return slugTaken()
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return translate(err, categoryLabel)
	}
}

func (s *Store) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	return get[models.Category](ctx, s.db, id, categoryLabel)
}

// ListCategories returns every category; the set is small enough not to page.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := s.db.WithContext(ctx).Order("sort_order ASC, title ASC").Find(&out).Error; err != nil {
		return nil, translate(err, categoryLabel)
	}
	return out, nil
}

// UpdateCategory keeps the existing slug unless a new one is given explicitly.
func (s *Store) UpdateCategory(ctx context.Context, id uint, changes map[string]any) (*models.Category, error) {
	if raw, ok := changes["slug"].(string); ok {
		slug := utils.Slugify(raw)
		if slug == "" {
			return nil, apperr.Validation("Slug must contain letters or digits")
		}
		if err := s.ensureSlugFree(ctx, slug, id); err != nil {
			return nil, err
		}
		changes["slug"] = slug
	}
	c, err := update[models.Category](ctx, s.db, id, changes, categoryLabel)
	if apperr.Is(err, apperr.KindConflict) {
		return nil, slugTaken()
	}
	return c, err
}

// DeleteCategory is a hard delete. Articles keep the dangling category id.
func (s *Store) DeleteCategory(ctx context.Context, id uint) error {
	return remove[models.Category](ctx, s.db, id, categoryLabel)
}
