package models

import (
	"time"

	"gorm.io/gorm"
)

// ArticleStatus is the visibility lifecycle of an article.
type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "draft"
	StatusScheduled ArticleStatus = "scheduled"
	StatusPublished ArticleStatus = "published"
)

// Article is a full bilingual news story.
type Article struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	Title         string        `gorm:"not null" json:"title"`
	TitleHi       string        `json:"titleHi"`
	Content       string        `gorm:"type:text" json:"content"`
	ContentHi     string        `gorm:"type:text" json:"contentHi"`
	Excerpt       string        `json:"excerpt"`
	ExcerptHi     string        `json:"excerptHi"`
	CategoryID    *uint         `gorm:"index" json:"categoryId"`
	Category      *Category     `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CategoryTitle string        `gorm:"-" json:"categoryTitle"`
	AuthorName    string        `json:"authorName"`
	ImageURL      string        `json:"imageUrl"`
	Tags          StringSlice   `gorm:"type:text" json:"tags"`
	IsBreaking    bool          `gorm:"not null;default:false" json:"isBreaking"`
	IsTrending    bool          `gorm:"not null;default:false" json:"isTrending"`
	Status        ArticleStatus `gorm:"index;not null;default:'draft'" json:"status"`
	Version       int           `gorm:"not null;default:1" json:"version"`
	ViewCount     int           `gorm:"not null;default:0" json:"viewCount"`
	PublishedAt   *time.Time    `gorm:"index" json:"publishedAt"`
	ScheduledAt   *time.Time    `json:"scheduledAt"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// AfterFind resolves the display category. Articles whose category was
// deleted keep the dangling id and show as "Uncategorized".
func (a *Article) AfterFind(tx *gorm.DB) error {
	if a.Category == nil || a.Category.ID == 0 {
		a.CategoryTitle = "Uncategorized"
	} else {
		a.CategoryTitle = a.Category.Title
	}
	return nil
}

// ArticleVersion is an immutable snapshot of an article's content.
type ArticleVersion struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ArticleID  uint      `gorm:"not null;uniqueIndex:idx_article_version" json:"articleId"`
	Version    int       `gorm:"not null;uniqueIndex:idx_article_version" json:"version"`
	Title      string    `json:"title"`
	TitleHi    string    `json:"titleHi"`
	Content    string    `gorm:"type:text" json:"content"`
	ContentHi  string    `gorm:"type:text" json:"contentHi"`
	ChangeNote string    `json:"changeNote"`
	AuthorID   *uint     `json:"authorId"`
	CreatedAt  time.Time `json:"createdAt"`
}
