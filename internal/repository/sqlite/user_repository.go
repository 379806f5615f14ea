package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cashtrackr/internal/domain"
	"cashtrackr/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	token TEXT NULL UNIQUE,
	token_expires_at DATETIME NULL,
	confirmed BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const selectUser = `
SELECT id, name, email, password_hash, token, token_expires_at, confirmed, created_at, updated_at
FROM users
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (name, email, password_hash, token, token_expires_at, confirmed, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Name,
		user.Email,
		user.PasswordHash,
		nullString(user.Token),
		nullTime(user.TokenExpiresAt),
		user.Confirmed,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return 0, mapUserErr("insert user", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user last insert id: %w", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+`WHERE email = ?`, email))
}

func (r *UserRepository) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+`WHERE token = ?`, token))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, selectUser+`WHERE id = ?`, id))
}

func (r *UserRepository) SetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	return r.exec(ctx, "set user token", `
UPDATE users SET token=?, token_expires_at=?, updated_at=?
WHERE id=?`, token, expiresAt.UTC(), time.Now().UTC(), id)
}

func (r *UserRepository) Confirm(ctx context.Context, id int64, token string) error {
	return r.exec(ctx, "confirm user", `
UPDATE users SET confirmed=1, token=NULL, token_expires_at=NULL, updated_at=?
WHERE id=? AND token=?`, time.Now().UTC(), id, token)
}

func (r *UserRepository) ResetPassword(ctx context.Context, id int64, token, passwordHash string) error {
	return r.exec(ctx, "reset user password", `
UPDATE users SET password_hash=?, token=NULL, token_expires_at=NULL, updated_at=?
WHERE id=? AND token=?`, passwordHash, time.Now().UTC(), id, token)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, currentHash, passwordHash string) error {
	return r.exec(ctx, "update user password", `
UPDATE users SET password_hash=?, updated_at=?
WHERE id=? AND password_hash=?`, passwordHash, time.Now().UTC(), id, currentHash)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, name, email string) error {
	return r.exec(ctx, "update user profile", `
UPDATE users SET name=?, email=?, updated_at=?
WHERE id=?`, name, email, time.Now().UTC(), id)
}

// exec runs a single-row update and reports ErrNotFound when no row matched.
func (r *UserRepository) exec(ctx context.Context, op, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapUserErr(op, err)
	}
	return requireRow(res)
}

func mapUserErr(op string, err error) error {
	switch {
	case isUniqueViolation(err, "users.email"):
		return repository.ErrDuplicateEmail
	case isUniqueViolation(err, "users.token"):
		return repository.ErrDuplicateToken
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		user           domain.User
		token          sql.NullString
		tokenExpiresAt sql.NullTime
	)
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&token,
		&tokenExpiresAt,
		&user.Confirmed,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if token.Valid {
		v := token.String
		user.Token = &v
	}
	if tokenExpiresAt.Valid {
		t := tokenExpiresAt.Time.UTC()
		user.TokenExpiresAt = &t
	}
	return &user, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
