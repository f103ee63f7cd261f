package storage

import (
	"context"

	"github.com/bilgisen/khabar/internal/models"
)

const (
	streamLabel = "Live stream"
	videoLabel  = "Video"
	adLabel     = "Advertisement"
)

// Live streams

func (s *Store) CreateLiveStream(ctx context.Context, l *models.LiveStream) error {
	return create(ctx, s.db, l, streamLabel)
}

func (s *Store) GetLiveStream(ctx context.Context, id uint) (*models.LiveStream, error) {
	return get[models.LiveStream](ctx, s.db, id, streamLabel)
}

func (s *Store) UpdateLiveStream(ctx context.Context, id uint, changes map[string]any) (*models.LiveStream, error) {
	return update[models.LiveStream](ctx, s.db, id, changes, streamLabel)
}

func (s *Store) DeleteLiveStream(ctx context.Context, id uint) error {
	return remove[models.LiveStream](ctx, s.db, id, streamLabel)
}

func (s *Store) ListLiveStreams(ctx context.Context, f ListFilter) (*Page[models.LiveStream], error) {
	f = f.normalized()
	q := s.db.Model(&models.LiveStream{})
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	q = searchTitles(q, f.Search, "name", "name_hi")
	return list[models.LiveStream](ctx, q, f, "sort_order ASC, id ASC", streamLabel)
}

// ListActiveLiveStreams returns every active stream in display order.
func (s *Store) ListActiveLiveStreams(ctx context.Context) ([]models.LiveStream, error) {
	var out []models.LiveStream
	err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("sort_order ASC, id ASC").Find(&out).Error
	if err != nil {
		return nil, translate(err, streamLabel)
	}
	return out, nil
}

// Videos

func (s *Store) CreateVideo(ctx context.Context, v *models.Video) error {
	if v.Visibility == "" {
		v.Visibility = models.VisibilityPublic
	}
	return create(ctx, s.db, v, videoLabel)
}

func (s *Store) GetVideo(ctx context.Context, id uint) (*models.Video, error) {
	return get[models.Video](ctx, s.db, id, videoLabel)
}

func (s *Store) UpdateVideo(ctx context.Context, id uint, changes map[string]any) (*models.Video, error) {
	return update[models.Video](ctx, s.db, id, changes, videoLabel)
}

func (s *Store) DeleteVideo(ctx context.Context, id uint) error {
	return remove[models.Video](ctx, s.db, id, videoLabel)
}

func (s *Store) ListVideos(ctx context.Context, f ListFilter) (*Page[models.Video], error) {
	f = f.normalized()
	q := s.db.Model(&models.Video{})
	if f.Visibility != "" {
		q = q.Where("visibility = ?", f.Visibility)
	}
	q = searchTitles(q, f.Search, "title", "title_hi")
	return list[models.Video](ctx, q, f, "created_at DESC, id DESC", videoLabel)
}

// Advertisements

// CreateAdvertisement fills a missing width or height from the position.
func (s *Store) CreateAdvertisement(ctx context.Context, a *models.Advertisement) error {
	a.ApplyDefaultSize()
	return create(ctx, s.db, a, adLabel)
}

func (s *Store) GetAdvertisement(ctx context.Context, id uint) (*models.Advertisement, error) {
	return get[models.Advertisement](ctx, s.db, id, adLabel)
}

func (s *Store) UpdateAdvertisement(ctx context.Context, id uint, changes map[string]any) (*models.Advertisement, error) {
	return update[models.Advertisement](ctx, s.db, id, changes, adLabel)
}

func (s *Store) DeleteAdvertisement(ctx context.Context, id uint) error {
	return remove[models.Advertisement](ctx, s.db, id, adLabel)
}

func (s *Store) ListAdvertisements(ctx context.Context, f ListFilter) (*Page[models.Advertisement], error) {
	f = f.normalized()
	q := s.db.Model(&models.Advertisement{})
	if f.Position != "" {
		q = q.Where("position = ?", f.Position)
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	q = searchTitles(q, f.Search, "title")
	return list[models.Advertisement](ctx, q, f, "id DESC", adLabel)
}

// ListActiveAdvertisements is the public ad feed, optionally for one position.
func (s *Store) ListActiveAdvertisements(ctx context.Context, position string) ([]models.Advertisement, error) {
	q := s.db.WithContext(ctx).Where("is_active = ?", true)
	if position != "" {
		q = q.Where("position = ?", position)
	}
	var out []models.Advertisement
	if err := q.Order("id DESC").Find(&out).Error; err != nil {
		return nil, translate(err, adLabel)
	}
	return out, nil
}
