package media

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/bilgisen/khabar/internal/apperr"
)

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

var allowedTypes = map[Kind][]string{
	KindImage: {"image/jpeg", "image/png", "image/gif", "image/webp", "image/avif", "image/svg+xml"},
	KindVideo: {"video/mp4", "video/webm", "video/quicktime", "video/x-matroska", "video/ogg"},
}

// Upload describes a stored file.
type Upload struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Uploader validates and stores uploads.
type Uploader struct {
	store   Store
	limits  map[Kind]int64
	now     func() time.Time
	newUUID func() string
}

func NewUploader(store Store, maxImage, maxVideo int64) *Uploader {
	return &Uploader{
		store:   store,
		limits:  map[Kind]int64{KindImage: maxImage, KindVideo: maxVideo},
		now:     time.Now,
		newUUID: uuid.NewString,
	}
}

// MaxSize returns the size limit for kind.
func (u *Uploader) MaxSize(kind Kind) int64 {
	return u.limits[kind]
}

// Save sniffs the content of body, checks it against kind and stores it
// under a fresh key.
func (u *Uploader) Save(ctx context.Context, kind Kind, body io.ReadSeeker, size int64) (*Upload, error) {
	allowed, ok := allowedTypes[kind]
	if !ok {
		return nil, apperr.Validation("Unknown upload type")
	}
	if size <= 0 {
		return nil, apperr.Validation("File is empty")
	}
	if max := u.limits[kind]; max > 0 && size > max {
		return nil, apperr.Validation(fmt.Sprintf("File exceeds the %d MB limit", max>>20))
	}

	mtype, err := mimetype.DetectReader(body)
	if err != nil {
		return nil, apperr.Validation("Could not read uploaded file")
	}
	contentType := mtype.String()
	base := mtype
	for base != nil && !slices.Contains(allowed, base.String()) {
		base = base.Parent()
	}
	if base == nil {
		return nil, apperr.Validation(fmt.Sprintf("Unsupported %s type %s", kind, contentType))
	}
	contentType = base.String()

	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	key := fmt.Sprintf("%ss/%s/%s%s", kind, u.now().UTC().Format("2006/01"), u.newUUID(), mtype.Extension())
	url, err := u.store.Put(ctx, key, body, size, contentType)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return &Upload{URL: url, Key: key, ContentType: contentType, Size: size}, nil
}
