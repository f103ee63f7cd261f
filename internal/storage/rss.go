package storage

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bilgisen/khabar/internal/apperr"
	"github.com/bilgisen/khabar/internal/models"
)

const (
	sourceLabel = "RSS source"
	itemLabel   = "RSS item"
)

func (s *Store) CreateRssSource(ctx context.Context, src *models.RssSource) error {
	src.URL = strings.TrimSpace(src.URL)
	if src.Priority == "" {
		src.Priority = models.PriorityMedium
	}
	if err := create(ctx, s.db, src, sourceLabel); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return apperr.Conflict("An RSS source with this URL already exists")
		}
		return err
	}
	return nil
}

func (s *Store) GetRssSource(ctx context.Context, id uint) (*models.RssSource, error) {
	return get[models.RssSource](ctx, s.db, id, sourceLabel)
}

func (s *Store) UpdateRssSource(ctx context.Context, id uint, changes map[string]any) (*models.RssSource, error) {
	src, err := update[models.RssSource](ctx, s.db, id, changes, sourceLabel)
	if apperr.Is(err, apperr.KindConflict) {
		return nil, apperr.Conflict("An RSS source with this URL already exists")
	}
	return src, err
}

// DeleteRssSource removes the source. Staged items are kept so promoted
// articles still trace back to their feed entry.
func (s *Store) DeleteRssSource(ctx context.Context, id uint) error {
	return remove[models.RssSource](ctx, s.db, id, sourceLabel)
}

func (s *Store) ListRssSources(ctx context.Context, f ListFilter) (*Page[models.RssSource], error) {
	f = f.normalized()
	q := s.db.Model(&models.RssSource{})
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	q = searchTitles(q, f.Search, "name", "url")
	return list[models.RssSource](ctx, q, f, "id ASC", sourceLabel)
}

// ListActiveRssSources returns every active source; autoImportOnly narrows
// it to the ones the scheduler polls.
func (s *Store) ListActiveRssSources(ctx context.Context, autoImportOnly bool) ([]models.RssSource, error) {
	q := s.db.WithContext(ctx).Where("is_active = ?", true)
	if autoImportOnly {
		q = q.Where("auto_import = ?", true)
	}
	var out []models.RssSource
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, translate(err, sourceLabel)
	}
	return out, nil
}

// StageItems inserts feed entries that were not seen before for the source
// and returns the ones actually inserted. Uniqueness on (source_id, guid)
// makes a repeated entry a no-op.
func (s *Store) StageItems(ctx context.Context, sourceID uint, items []models.RssItem) ([]models.RssItem, error) {
	var staged []models.RssItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range items {
			item := items[i]
			item.ID = 0
			item.SourceID = sourceID
			item.IsImported = false
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&item)
			if res.Error != nil {
				return translate(res.Error, itemLabel)
			}
			if res.RowsAffected > 0 {
				staged = append(staged, item)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return staged, nil
}

// RecordSyncSuccess stamps the sync time and adds the newly staged count.
func (s *Store) RecordSyncSuccess(ctx context.Context, sourceID uint, staged int) error {
	err := s.db.WithContext(ctx).Model(&models.RssSource{}).Where("id = ?", sourceID).
		Updates(map[string]any{
			"last_sync_at":      s.now(),
			"last_error":        "",
			"articles_imported": gorm.Expr("articles_imported + ?", staged),
		}).Error
	return translate(err, sourceLabel)
}

// RecordSyncFailure keeps the failure message for the admin panel. The last
// successful sync time is left untouched so the source can turn stale.
func (s *Store) RecordSyncFailure(ctx context.Context, sourceID uint, msg string) error {
	err := s.db.WithContext(ctx).Model(&models.RssSource{}).Where("id = ?", sourceID).
		Update("last_error", msg).Error
	return translate(err, sourceLabel)
}

func (s *Store) GetRssItem(ctx context.Context, id uint) (*models.RssItem, error) {
	return get[models.RssItem](ctx, s.db, id, itemLabel)
}

func (s *Store) ListRssItems(ctx context.Context, sourceID uint, f ListFilter) (*Page[models.RssItem], error) {
	f = f.normalized()
	q := s.db.Model(&models.RssItem{}).Where("source_id = ?", sourceID)
	if f.Imported != nil {
		q = q.Where("is_imported = ?", *f.Imported)
	}
	q = searchTitles(q, f.Search, "title")
	return list[models.RssItem](ctx, q, f, "published_at DESC, id DESC", itemLabel)
}

// PromoteItem turns a staged entry into a draft article in one transaction:
// the article, its first version and the staging row's imported mark are
// written together. Promoting an entry twice is a conflict.
func (s *Store) PromoteItem(ctx context.Context, itemID uint, a *models.Article, authorID *uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := get[models.RssItem](ctx, tx, itemID, itemLabel)
		if err != nil {
			return err
		}
		if item.IsImported {
			return apperr.Conflict("RSS item has already been imported")
		}

		a.Status = models.StatusDraft
		if err := s.createArticleTx(tx, a, "Imported from RSS", authorID); err != nil {
			return err
		}

		now := s.now()
		res := tx.Model(&models.RssItem{}).
			Where("id = ? AND is_imported = ?", itemID, false).
			Updates(map[string]any{
				"is_imported": true,
				"imported_at": now,
				"article_id":  a.ID,
			})
		if res.Error != nil {
			return translate(res.Error, itemLabel)
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("RSS item has already been imported")
		}
		return nil
	})
}
