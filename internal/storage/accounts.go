package storage

import (
	"context"
	"strings"
	"time"

	"github.com/bilgisen/khabar/internal/apperr"
	"github.com/bilgisen/khabar/internal/models"
)

const accountLabel = "Account"

// NormalizeEmail is the canonical form used for lookups and uniqueness.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) CreateAccount(ctx context.Context, a *models.Account) error {
	a.Email = NormalizeEmail(a.Email)
	a.Username = strings.TrimSpace(a.Username)
	return create(ctx, s.db, a, accountLabel)
}

func (s *Store) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	return get[models.Account](ctx, s.db, id, accountLabel)
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&a).Error
	if err != nil {
		return nil, translate(err, accountLabel)
	}
	return &a, nil
}

func (s *Store) ListAccounts(ctx context.Context, f ListFilter) (*Page[models.Account], error) {
	f = f.normalized()
	q := s.db.Model(&models.Account{})
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	if f.Search != "" {
		q = searchTitles(q, f.Search, "username", "email")
	}
	return list[models.Account](ctx, q, f, "id ASC", accountLabel)
}

func (s *Store) CountAccounts(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Account{}).Count(&n).Error; err != nil {
		return 0, translate(err, accountLabel)
	}
	return n, nil
}

// UpdateAccount applies changes to an account. Like deletion, demotion is
// refused for managers; deactivate them instead.
func (s *Store) UpdateAccount(ctx context.Context, id uint, changes map[string]any) (*models.Account, error) {
	if email, ok := changes["email"].(string); ok {
		changes["email"] = NormalizeEmail(email)
	}
	if role, ok := roleChange(changes); ok && role != models.RoleManager {
		current, err := s.GetAccount(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Role == models.RoleManager {
			return nil, apperr.Validation("Manager accounts cannot be demoted")
		}
	}
	return update[models.Account](ctx, s.db, id, changes, accountLabel)
}

func roleChange(changes map[string]any) (models.Role, bool) {
	switch v := changes["role"].(type) {
	case models.Role:
		return v, true
	case string:
		return models.Role(v), true
	}
	return "", false
}

// TouchLastLogin records a successful login.
func (s *Store) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	err := s.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
	return translate(err, accountLabel)
}

// DeleteAccount removes a non-manager account. Manager accounts are never
// physically deleted; deactivate them instead.
func (s *Store) DeleteAccount(ctx context.Context, id uint) error {
	a, err := s.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	if a.Role == models.RoleManager {
		return apperr.Validation("Manager accounts cannot be deleted")
	}
	return remove[models.Account](ctx, s.db, id, accountLabel)
}
