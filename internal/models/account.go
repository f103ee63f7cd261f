package models

import "time"

// Role is a closed set of admin roles. Roles are flat: no role implies another.
type Role string

const (
	RoleManager        Role = "manager"
	RoleEditor         Role = "editor"
	RoleLimitedEditor  Role = "limited_editor"
	RoleSubtitleEditor Role = "subtitle_editor"
	RoleViewer         Role = "viewer"
)

// AllRoles lists every role in display order.
var AllRoles = []Role{RoleManager, RoleEditor, RoleLimitedEditor, RoleSubtitleEditor, RoleViewer}

func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Account is an admin user of the CMS.
type Account struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         Role       `gorm:"not null;default:'viewer'" json:"role"`
	IsActive     bool       `gorm:"not null" json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (Account) TableName() string { return "admin_accounts" }

// AccountSummary is the identity returned to clients after login.
type AccountSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

func (a *Account) Summary() AccountSummary {
	return AccountSummary{ID: a.ID, Username: a.Username, Email: a.Email, Role: a.Role}
}
