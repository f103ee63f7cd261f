package models

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank orders priorities; higher is more important.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// BreakingNewsItem is a short ticker alert.
type BreakingNewsItem struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"not null" json:"title"`
	TitleHi   string     `json:"titleHi"`
	Content   string     `json:"content"`
	Priority  Priority   `gorm:"not null;default:'medium'" json:"priority"`
	IsActive  bool       `gorm:"not null" json:"isActive"`
	ExpiresAt *time.Time `json:"expiresAt"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (BreakingNewsItem) TableName() string { return "breaking_news" }

// Visible reports whether the item may be shown on the public ticker.
// Expired items are hidden even when still flagged active.
func (b *BreakingNewsItem) Visible(now time.Time) bool {
	if !b.IsActive {
		return false
	}
	return b.ExpiresAt == nil || b.ExpiresAt.After(now)
}
