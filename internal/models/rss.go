package models

import "time"

const (
	MinImportInterval = 5
	MaxImportInterval = 1440

	// StaleAfter is how long an active source may go without a sync
	// before it is reported as stale.
	StaleAfter = 24 * time.Hour
)

// SourceHealth is the derived sync status shown in the admin panel.
type SourceHealth string

const (
	HealthActive   SourceHealth = "active"
	HealthStale    SourceHealth = "stale"
	HealthInactive SourceHealth = "inactive"
)

// RssSource is an external feed definition.
type RssSource struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Name             string     `gorm:"not null" json:"name"`
	URL              string     `gorm:"uniqueIndex;not null" json:"url"`
	Category         string     `json:"category"`
	IsActive         bool       `gorm:"not null" json:"isActive"`
	AutoImport       bool       `gorm:"not null;default:false" json:"autoImport"`
	ImportInterval   int        `gorm:"not null;default:60" json:"importInterval"`
	Priority         Priority   `gorm:"not null;default:'medium'" json:"priority"`
	LastSyncAt       *time.Time `json:"lastSyncAt"`
	LastError        string     `json:"lastError"`
	ArticlesImported int        `gorm:"not null;default:0" json:"articlesImported"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Health classifies the source. An active source that has never synced, or
// last synced more than StaleAfter ago, is stale.
func (s *RssSource) Health(now time.Time) SourceHealth {
	if !s.IsActive {
		return HealthInactive
	}
	if s.LastSyncAt == nil || now.Sub(*s.LastSyncAt) > StaleAfter {
		return HealthStale
	}
	return HealthActive
}

// Interval returns the polling interval as a duration.
func (s *RssSource) Interval() time.Duration {
	return time.Duration(s.ImportInterval) * time.Minute
}

// RssItem is a staged feed entry that has not necessarily become an Article.
type RssItem struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	SourceID    uint       `gorm:"not null;uniqueIndex:idx_rss_item_guid" json:"sourceId"`
	GUID        string     `gorm:"column:guid;not null;uniqueIndex:idx_rss_item_guid" json:"guid"`
	Title       string     `gorm:"not null" json:"title"`
	Link        string     `json:"link"`
	Summary     string     `gorm:"type:text" json:"summary"`
	ImageURL    string     `json:"imageUrl"`
	Author      string     `json:"author"`
	PublishedAt *time.Time `json:"publishedAt"`
	IsImported  bool       `gorm:"not null;default:false" json:"isImported"`
	ImportedAt  *time.Time `json:"importedAt"`
	ArticleID   *uint      `json:"articleId"`
	CreatedAt   time.Time  `json:"createdAt"`
}
