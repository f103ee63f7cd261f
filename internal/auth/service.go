// Package auth implements admin login, session tokens and role checks.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/bilgisen/khabar/internal/apperr"
	"github.com/bilgisen/khabar/internal/logger"
	"github.com/bilgisen/khabar/internal/models"
)

// AccountStore is the part of the content repository the auth service needs.
type AccountStore interface {
	GetAccount(ctx context.Context, id uint) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string                `json:"token"`
	ExpiresAt time.Time             `json:"expiresAt"`
	User      models.AccountSummary `json:"user"`
}

type Service struct {
	accounts  AccountStore
	hasher    *Hasher
	tokens    *TokenIssuer
	dummyHash string
	now       func() time.Time
	log       *zerolog.Logger
}

func NewService(accounts AccountStore, hasher *Hasher, tokens *TokenIssuer) (*Service, error) {
	// Compared against when the email is unknown so both paths cost one bcrypt check.
	dummy, err := hasher.Hash(context.Background(), "khabar-placeholder-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &Service{
		accounts:  accounts,
		hasher:    hasher,
		tokens:    tokens,
		dummyHash: dummy,
		now:       func() time.Time { return time.Now().UTC() },
		log:       logger.Component("auth"),
	}, nil
}

// HashPassword hashes a new password for storage.
func (s *Service) HashPassword(ctx context.Context, password string) (string, error) {
	return s.hasher.Hash(ctx, password)
}

// CheckPassword verifies password against the account's stored hash.
func (s *Service) CheckPassword(ctx context.Context, acc *models.Account, password string) error {
	ok, err := s.hasher.Compare(ctx, acc.PasswordHash, password)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.InvalidCredentials()
	}
	return nil
}

// Authenticate checks credentials and issues a session token. Unknown
// email, wrong password and inactive account all fail with the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.InvalidCredentials()
	}

	acc, err := s.accounts.GetAccountByEmail(ctx, email)
	switch {
	case apperr.Is(err, apperr.KindNotFound):
		if _, cmpErr := s.hasher.Compare(ctx, s.dummyHash, password); cmpErr != nil {
			return nil, cmpErr
		}
		return nil, apperr.InvalidCredentials()
	case err != nil:
		return nil, err
	}

	ok, err := s.hasher.Compare(ctx, acc.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok || !acc.IsActive {
		s.log.Warn().Uint("account_id", acc.ID).Bool("active", acc.IsActive).Msg("Login rejected")
		return nil, apperr.InvalidCredentials()
	}

	now := s.now()
	if err := s.accounts.TouchLastLogin(ctx, acc.ID, now); err != nil {
		return nil, err
	}
	acc.LastLoginAt = &now

	token, exp, err := s.tokens.Issue(acc)
	if err != nil {
		return nil, apperr.Persistence(err)
	}

	s.log.Info().Uint("account_id", acc.ID).Str("role", string(acc.Role)).Msg("Login succeeded")
	return &LoginResult{Token: token, ExpiresAt: exp, User: acc.Summary()}, nil
}

// Authorize verifies token, reloads its account and checks the role against
// allowed. Deactivating an account revokes its outstanding tokens.
func (s *Service) Authorize(ctx context.Context, token string, allowed []models.Role) (*models.Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.InvalidToken(nil)
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperr.InvalidToken(err)
	}
	id, err := claims.AccountID()
	if err != nil {
		return nil, apperr.InvalidToken(err)
	}

	acc, err := s.accounts.GetAccount(ctx, id)
	switch {
	case apperr.Is(err, apperr.KindNotFound):
		return nil, apperr.InvalidToken(err)
	case err != nil:
		return nil, err
	}
	if !acc.IsActive {
		return nil, apperr.Inactive()
	}
	if !lo.Contains(allowed, acc.Role) {
		return nil, apperr.Forbidden()
	}
	return acc, nil
}

// AuthorizeOp is Authorize against the permission table entry for op.
func (s *Service) AuthorizeOp(ctx context.Context, token string, op Operation) (*models.Account, error) {
	return s.Authorize(ctx, token, Permissions[op])
}
