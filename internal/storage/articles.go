package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bilgisen/khabar/internal/apperr"
	"github.com/bilgisen/khabar/internal/models"
)

const (
	articleLabel = "Article"
	versionLabel = "Article version"

	// maxVersionAttempts bounds retries when concurrent edits of the same
	// article race for the next version number.
	maxVersionAttempts = 8
)

var errVersionRace = errors.New("article version changed concurrently")

// contentColumns are the columns whose change produces a new version.
var contentColumns = []string{"title", "title_hi", "content", "content_hi", "excerpt", "excerpt_hi"}

// ArticleUpdate is a partial article edit. Fields holds plain column
// updates; lifecycle changes go through Status and ScheduledAt so the
// published/scheduled timestamps stay consistent.
type ArticleUpdate struct {
	Fields      map[string]any
	Status      *models.ArticleStatus
	ScheduledAt *time.Time
	ChangeNote  string
	AuthorID    *uint
}

// CreateArticle inserts the article and its version 1 snapshot atomically.
func (s *Store) CreateArticle(ctx context.Context, a *models.Article, changeNote string, authorID *uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.createArticleTx(tx, a, changeNote, authorID)
	})
}

func (s *Store) createArticleTx(tx *gorm.DB, a *models.Article, changeNote string, authorID *uint) error {
	now := s.now()
	if a.Status == "" {
		a.Status = models.StatusDraft
	}
	switch a.Status {
	case models.StatusPublished:
		a.PublishedAt = &now
		a.ScheduledAt = nil
	case models.StatusScheduled:
		if a.ScheduledAt == nil || !a.ScheduledAt.After(now) {
			return apperr.Validation("scheduledAt must be in the future")
		}
		at := a.ScheduledAt.UTC()
		a.ScheduledAt = &at
		a.PublishedAt = nil
	case models.StatusDraft:
		a.PublishedAt = nil
		a.ScheduledAt = nil
	default:
		return apperr.Validation("Unknown article status")
	}
	a.Version = 1

	if err := tx.Omit(clause.Associations).Create(a).Error; err != nil {
		return translate(err, articleLabel)
	}
	if changeNote == "" {
		changeNote = "Created"
	}
	return s.recordVersion(tx, a, changeNote, authorID)
}

// recordVersion appends the snapshot of a at a.Version. It must run inside
// the transaction that wrote the article.
func (s *Store) recordVersion(tx *gorm.DB, a *models.Article, changeNote string, authorID *uint) error {
	v := &models.ArticleVersion{
		ArticleID:  a.ID,
		Version:    a.Version,
		Title:      a.Title,
		TitleHi:    a.TitleHi,
		Content:    a.Content,
		ContentHi:  a.ContentHi,
		ChangeNote: changeNote,
		AuthorID:   authorID,
	}
	if err := tx.Create(v).Error; err != nil {
		if isUniqueViolation(err) {
			return errVersionRace
		}
		return translate(err, versionLabel)
	}
	return nil
}

func (s *Store) GetArticle(ctx context.Context, id uint) (*models.Article, error) {
	return getArticle(ctx, s.db, id)
}

func getArticle(ctx context.Context, db *gorm.DB, id uint) (*models.Article, error) {
	var a models.Article
	if err := db.WithContext(ctx).Preload("Category").First(&a, id).Error; err != nil {
		return nil, translate(err, articleLabel)
	}
	return &a, nil
}

// UpdateArticle applies u. Content-affecting changes bump the version by
// exactly one and append a snapshot in the same transaction; a lost race
// with a concurrent editor is retried against the fresh row.
func (s *Store) UpdateArticle(ctx context.Context, id uint, u ArticleUpdate) (*models.Article, error) {
	var out *models.Article
	var err error
	for attempt := 0; attempt < maxVersionAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var txErr error
			out, txErr = s.updateArticleTx(ctx, tx, id, u)
			return txErr
		})
		if !errors.Is(err, errVersionRace) {
			break
		}
	}
	if errors.Is(err, errVersionRace) {
		return nil, apperr.Conflict("Article was modified concurrently, please retry")
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) updateArticleTx(ctx context.Context, tx *gorm.DB, id uint, u ArticleUpdate) (*models.Article, error) {
	cur, err := getArticle(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()

	changes := make(map[string]any, len(u.Fields)+4)
	for k, v := range u.Fields {
		changes[k] = v
	}
	switch {
	case u.Status != nil:
		if err := statusChanges(cur, *u.Status, u.ScheduledAt, now, changes); err != nil {
			return nil, err
		}
	case u.ScheduledAt != nil:
		if cur.Status != models.StatusScheduled {
			return nil, apperr.Validation("scheduledAt can only be changed on scheduled articles")
		}
		if err := statusChanges(cur, models.StatusScheduled, u.ScheduledAt, now, changes); err != nil {
			return nil, err
		}
	}
	if len(changes) == 0 {
		return cur, nil
	}
	changes["updated_at"] = now

	if !contentChanged(cur, changes) {
		if err := tx.Model(&models.Article{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return nil, translate(err, articleLabel)
		}
		return getArticle(ctx, tx, id)
	}

	next := cur.Version + 1
	changes["version"] = next
	res := tx.Model(&models.Article{}).
		Where("id = ? AND version = ?", id, cur.Version).
		Updates(changes)
	if res.Error != nil {
		return nil, translate(res.Error, articleLabel)
	}
	if res.RowsAffected == 0 {
		return nil, errVersionRace
	}

	fresh, err := getArticle(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	note := u.ChangeNote
	if note == "" {
		note = "Updated"
	}
	if err := s.recordVersion(tx, fresh, note, u.AuthorID); err != nil {
		return nil, err
	}
	return fresh, nil
}

// statusChanges adds the column updates for moving cur to status next.
// published_at is only stamped on the transition into published.
func statusChanges(cur *models.Article, next models.ArticleStatus, scheduledAt *time.Time, now time.Time, changes map[string]any) error {
	switch next {
	case models.StatusPublished:
		if cur.Status != models.StatusPublished || cur.PublishedAt == nil {
			changes["published_at"] = now
		}
		changes["scheduled_at"] = nil
	case models.StatusScheduled:
		at := scheduledAt
		if at == nil {
			at = cur.ScheduledAt
		}
		if at == nil || !at.After(now) {
			return apperr.Validation("scheduledAt must be in the future")
		}
		changes["scheduled_at"] = at.UTC()
		changes["published_at"] = nil
	case models.StatusDraft:
		changes["published_at"] = nil
		changes["scheduled_at"] = nil
	default:
		return apperr.Validation("Unknown article status")
	}
	changes["status"] = next
	return nil
}

func contentChanged(cur *models.Article, changes map[string]any) bool {
	current := map[string]string{
		"title":      cur.Title,
		"title_hi":   cur.TitleHi,
		"content":    cur.Content,
		"content_hi": cur.ContentHi,
		"excerpt":    cur.Excerpt,
		"excerpt_hi": cur.ExcerptHi,
	}
	for _, col := range contentColumns {
		v, ok := changes[col]
		if !ok {
			continue
		}
		if s, isString := v.(string); !isString || s != current[col] {
			return true
		}
	}
	return false
}

// PublishArticle is "Publish Now".
func (s *Store) PublishArticle(ctx context.Context, id uint, authorID *uint) (*models.Article, error) {
	status := models.StatusPublished
	return s.UpdateArticle(ctx, id, ArticleUpdate{Status: &status, AuthorID: authorID})
}

// ScheduleArticle moves the article to scheduled at the given future time.
func (s *Store) ScheduleArticle(ctx context.Context, id uint, at time.Time, authorID *uint) (*models.Article, error) {
	status := models.StatusScheduled
	return s.UpdateArticle(ctx, id, ArticleUpdate{Status: &status, ScheduledAt: &at, AuthorID: authorID})
}

// PublishDue flips every scheduled article whose time has come to published.
func (s *Store) PublishDue(ctx context.Context) (int64, error) {
	now := s.now()
	res := s.db.WithContext(ctx).Model(&models.Article{}).
		Where("status = ? AND scheduled_at <= ?", models.StatusScheduled, now).
		Updates(map[string]any{
			"status":       models.StatusPublished,
			"published_at": now,
			"scheduled_at": nil,
			"updated_at":   now,
		})
	if res.Error != nil {
		return 0, translate(res.Error, articleLabel)
	}
	return res.RowsAffected, nil
}

func (s *Store) DeleteArticle(ctx context.Context, id uint) error {
	return remove[models.Article](ctx, s.db, id, articleLabel)
}

// ListArticles is the admin listing: any status, newest first.
func (s *Store) ListArticles(ctx context.Context, f ListFilter) (*Page[models.Article], error) {
	f = f.normalized()
	q := s.db.Model(&models.Article{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	q = searchTitles(q, f.Search, "title", "title_hi")
	return list[models.Article](ctx, q, f, "created_at DESC, id DESC", articleLabel, "Category")
}

// ListPublishedArticles is the public listing.
func (s *Store) ListPublishedArticles(ctx context.Context, f ListFilter) (*Page[models.Article], error) {
	f = f.normalized()
	q := s.db.Model(&models.Article{}).Where("status = ?", models.StatusPublished)
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	q = searchTitles(q, f.Search, "title", "title_hi")
	return list[models.Article](ctx, q, f, "published_at DESC, id DESC", articleLabel, "Category")
}

// ListTrendingArticles returns published articles flagged trending, most
// viewed first.
func (s *Store) ListTrendingArticles(ctx context.Context, limit int) ([]models.Article, error) {
	f := ListFilter{Limit: limit}.normalized()
	var out []models.Article
	err := s.db.WithContext(ctx).Preload("Category").
		Where("status = ? AND is_trending = ?", models.StatusPublished, true).
		Order("view_count DESC, published_at DESC").
		Limit(f.Limit).
		Find(&out).Error
	if err != nil {
		return nil, translate(err, articleLabel)
	}
	return out, nil
}

// GetPublishedArticle returns a published article and counts the view.
func (s *Store) GetPublishedArticle(ctx context.Context, id uint) (*models.Article, error) {
	a, err := s.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != models.StatusPublished {
		return nil, apperr.NotFound(articleLabel)
	}
	err = s.db.WithContext(ctx).Model(&models.Article{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil {
		return nil, translate(err, articleLabel)
	}
	a.ViewCount++
	return a, nil
}

// ListVersions returns the audit trail of an article, oldest first.
func (s *Store) ListVersions(ctx context.Context, articleID uint) ([]models.ArticleVersion, error) {
	var out []models.ArticleVersion
	err := s.db.WithContext(ctx).Where("article_id = ?", articleID).Order("version ASC").Find(&out).Error
	if err != nil {
		return nil, translate(err, versionLabel)
	}
	return out, nil
}
