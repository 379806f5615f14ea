// Package security holds the password hasher and the one-time code generator.
package security

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords with bcrypt. At most Workers
// operations run at once.
type Hasher struct {
	cost int
	sem  chan struct{}
}

type HasherConfig struct {
	Cost    int
	Workers int
}

func NewHasher(cfg HasherConfig) *Hasher {
	if cfg.Cost == 0 {
		cfg.Cost = bcrypt.DefaultCost
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Hasher{
		cost: cfg.Cost,
		sem:  make(chan struct{}, cfg.Workers),
	}
}

// Hash returns a salted bcrypt digest of password.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.release()

	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether password matches digest. A malformed digest is a
// mismatch; the only error is ctx ending before a hashing slot frees up.
func (h *Hasher) Verify(ctx context.Context, password, digest string) (bool, error) {
	if err := h.acquire(ctx); err != nil {
		return false, err
	}
	defer h.release()

	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil, nil
}

func (h *Hasher) acquire(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case h.sem <- struct{}{}:
		return nil
	}
}

func (h *Hasher) release() { <-h.sem }
