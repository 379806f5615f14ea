package repository

import (
	"context"
	"time"

	"cashtrackr/internal/domain"
)

// UserRepository defines persistence operations for User entities.
//
// Writes touch only the columns they name, so two requests acting on the
// same user never undo each other's changes. Writes guarded by a token or
// a hash return ErrNotFound when the guard no longer matches the row.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByToken(ctx context.Context, token string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// SetToken replaces the pending code of the user.
	SetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error
	// Confirm marks the user confirmed and spends token.
	Confirm(ctx context.Context, id int64, token string) error
	// ResetPassword stores passwordHash and spends token.
	ResetPassword(ctx context.Context, id int64, token, passwordHash string) error
	// UpdatePassword swaps currentHash for passwordHash.
	UpdatePassword(ctx context.Context, id int64, currentHash, passwordHash string) error
	UpdateProfile(ctx context.Context, id int64, name, email string) error
}
