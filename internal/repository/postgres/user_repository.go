package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"cashtrackr/internal/domain"
	"cashtrackr/internal/repository"
)

const createUsersTable = `
create table if not exists users (
	id bigserial primary key,
	name text not null,
	email text not null,
	password_hash text not null,
	token text null,
	token_expires_at timestamptz null,
	confirmed boolean not null default false,
	created_at timestamptz not null,
	updated_at timestamptz not null,
	constraint users_email_key unique (email),
	constraint users_token_key unique (token)
);
`

const selectUser = `
select id, name, email, password_hash, token, token_expires_at, confirmed, created_at, updated_at
from users
`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	err := r.pool.QueryRow(ctx, `
		insert into users (name, email, password_hash, token, token_expires_at, confirmed, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		returning id
	`, user.Name, user.Email, user.PasswordHash, user.Token, user.TokenExpiresAt, user.Confirmed, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		return 0, mapUserErr("insert user", err)
	}
	return user.ID, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, selectUser+`where email = $1`, email))
}

func (r *UserRepository) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, selectUser+`where token = $1`, token))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, selectUser+`where id = $1`, id))
}

func (r *UserRepository) SetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	return r.exec(ctx, "set user token", `
		update users set token = $1, token_expires_at = $2, updated_at = $3
		where id = $4
	`, token, expiresAt.UTC(), time.Now().UTC(), id)
}

func (r *UserRepository) Confirm(ctx context.Context, id int64, token string) error {
	return r.exec(ctx, "confirm user", `
		update users set confirmed = true, token = null, token_expires_at = null, updated_at = $1
		where id = $2 and token = $3
	`, time.Now().UTC(), id, token)
}

func (r *UserRepository) ResetPassword(ctx context.Context, id int64, token, passwordHash string) error {
	return r.exec(ctx, "reset user password", `
		update users set password_hash = $1, token = null, token_expires_at = null, updated_at = $2
		where id = $3 and token = $4
	`, passwordHash, time.Now().UTC(), id, token)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, currentHash, passwordHash string) error {
	return r.exec(ctx, "update user password", `
		update users set password_hash = $1, updated_at = $2
		where id = $3 and password_hash = $4
	`, passwordHash, time.Now().UTC(), id, currentHash)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, name, email string) error {
	return r.exec(ctx, "update user profile", `
		update users set name = $1, email = $2, updated_at = $3
		where id = $4
	`, name, email, time.Now().UTC(), id)
}

// exec runs a single-row update and reports ErrNotFound when no row matched.
func (r *UserRepository) exec(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapUserErr(op, err)
	}
	return requireRow(tag)
}

func mapUserErr(op string, err error) error {
	if constraint, ok := uniqueConstraint(err); ok {
		switch constraint {
		case "users_email_key":
			return repository.ErrDuplicateEmail
		case "users_token_key":
			return repository.ErrDuplicateToken
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func requireRow(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Token,
		&u.TokenExpiresAt,
		&u.Confirmed,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
