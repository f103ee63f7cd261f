package auth

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/crypto/bcrypt"

	"github.com/bilgisen/khabar/internal/apperr"
)

// Hasher hashes and checks passwords with bcrypt. At most GOMAXPROCS
// hash operations run at once; callers beyond that wait or give up with ctx.
type Hasher struct {
	cost int
	sem  chan struct{}
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{
		cost: cost,
		sem:  make(chan struct{}, runtime.GOMAXPROCS(0)),
	}
}

func (h *Hasher) acquire(ctx context.Context) error {
	select {
	case h.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hasher) release() { <-h.sem }

// Hash returns the bcrypt hash of password. bcrypt only reads the first
// 72 bytes, so longer passwords are rejected as a validation error.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.release()

	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperr.Validation("Password must be at most 72 bytes")
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare reports whether password matches hash.
func (h *Hasher) Compare(ctx context.Context, hash, password string) (bool, error) {
	if err := h.acquire(ctx); err != nil {
		return false, err
	}
	defer h.release()

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}
