package storage

import (
	"context"
	"slices"

	"github.com/bilgisen/khabar/internal/models"
)

const breakingLabel = "Breaking news item"

func (s *Store) CreateBreakingNews(ctx context.Context, b *models.BreakingNewsItem) error {
	if b.Priority == "" {
		b.Priority = models.PriorityMedium
	}
	return create(ctx, s.db, b, breakingLabel)
}

func (s *Store) GetBreakingNews(ctx context.Context, id uint) (*models.BreakingNewsItem, error) {
	return get[models.BreakingNewsItem](ctx, s.db, id, breakingLabel)
}

func (s *Store) UpdateBreakingNews(ctx context.Context, id uint, changes map[string]any) (*models.BreakingNewsItem, error) {
	return update[models.BreakingNewsItem](ctx, s.db, id, changes, breakingLabel)
}

func (s *Store) DeleteBreakingNews(ctx context.Context, id uint) error {
	return remove[models.BreakingNewsItem](ctx, s.db, id, breakingLabel)
}

func (s *Store) ListBreakingNews(ctx context.Context, f ListFilter) (*Page[models.BreakingNewsItem], error) {
	f = f.normalized()
	q := s.db.Model(&models.BreakingNewsItem{})
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	q = searchTitles(q, f.Search, "title", "title_hi")
	return list[models.BreakingNewsItem](ctx, q, f, "created_at DESC, id DESC", breakingLabel)
}

// ListVisibleBreakingNews returns the public ticker: active, unexpired
// items ordered by priority, then newest first.
func (s *Store) ListVisibleBreakingNews(ctx context.Context) ([]models.BreakingNewsItem, error) {
	now := s.now()
	var items []models.BreakingNewsItem
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Find(&items).Error
	if err != nil {
		return nil, translate(err, breakingLabel)
	}

	visible := slices.DeleteFunc(items, func(b models.BreakingNewsItem) bool { return !b.Visible(now) })
	slices.SortStableFunc(visible, func(a, b models.BreakingNewsItem) int {
		if d := b.Priority.Rank() - a.Priority.Rank(); d != 0 {
			return d
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return visible, nil
}
