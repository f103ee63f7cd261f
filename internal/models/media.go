package models

import "time"

type StreamType string

const (
	StreamHLS     StreamType = "hls"
	StreamYouTube StreamType = "youtube"
	StreamCustom  StreamType = "custom"
)

type LiveStream struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	NameHi       string     `json:"nameHi"`
	Description  string     `json:"description"`
	StreamURL    string     `gorm:"not null" json:"streamUrl"`
	ThumbnailURL string     `json:"thumbnailUrl"`
	StreamType   StreamType `gorm:"not null;default:'hls'" json:"streamType"`
	Category     string     `json:"category"`
	Quality      string     `gorm:"not null;default:'720p'" json:"quality"`
	IsActive     bool       `gorm:"not null" json:"isActive"`
	ViewerCount  int        `gorm:"not null;default:0" json:"viewerCount"`
	SortOrder    int        `gorm:"not null;default:0" json:"sortOrder"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityPrivate  Visibility = "private"
	VisibilityUnlisted Visibility = "unlisted"
)

type Video struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Title        string      `gorm:"not null" json:"title"`
	TitleHi      string      `json:"titleHi"`
	Description  string      `json:"description"`
	VideoURL     string      `gorm:"not null" json:"videoUrl"`
	ThumbnailURL string      `json:"thumbnailUrl"`
	Duration     string      `json:"duration"`
	Category     string      `json:"category"`
	Tags         StringSlice `gorm:"type:text" json:"tags"`
	Visibility   Visibility  `gorm:"not null;default:'public'" json:"visibility"`
	IsVertical   bool        `gorm:"not null;default:false" json:"isVertical"`
	Quality      string      `json:"quality"`
	ViewCount    int         `gorm:"not null;default:0" json:"viewCount"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

type AdPosition string

const (
	AdSidebar AdPosition = "sidebar"
	AdHeader  AdPosition = "header"
	AdFooter  AdPosition = "footer"
	AdContent AdPosition = "content"
)

// DefaultSize is the banner size used when an advertisement does not set one.
func (p AdPosition) DefaultSize() (width, height int) {
	switch p {
	case AdHeader, AdFooter:
		return 728, 90
	case AdSidebar:
		return 300, 250
	case AdContent:
		return 300, 250
	default:
		return 300, 250
	}
}

type Advertisement struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"not null" json:"title"`
	ImageURL  string     `gorm:"not null" json:"imageUrl"`
	LinkURL   string     `json:"linkUrl"`
	Position  AdPosition `gorm:"index;not null" json:"position"`
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	IsActive  bool       `gorm:"not null" json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ApplyDefaultSize fills width and height from the position when unset.
func (a *Advertisement) ApplyDefaultSize() {
	w, h := a.Position.DefaultSize()
	if a.Width <= 0 {
		a.Width = w
	}
	if a.Height <= 0 {
		a.Height = h
	}
}
