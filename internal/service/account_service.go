package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cashtrackr/internal/apperr"
	"cashtrackr/internal/domain"
	"cashtrackr/internal/notify"
	"cashtrackr/internal/repository"
	"cashtrackr/internal/security"
)

const codeAttempts = 5

// PasswordHasher hashes and verifies credentials.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, digest string) (bool, error)
}

// TokenIssuer mints session tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// AccountService describes the account lifecycle: registration, email
// confirmation, login and password management.
type AccountService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	ConfirmAccount(ctx context.Context, code string) error
	ResendConfirmation(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (string, error)
	ForgotPassword(ctx context.Context, email string) error
	ValidateResetToken(ctx context.Context, code string) error
	ResetPassword(ctx context.Context, code, password string) error
	ChangePassword(ctx context.Context, userID int64, current, next string) error
	UpdateProfile(ctx context.Context, userID int64, name, email string) (*domain.User, error)
	Profile(ctx context.Context, userID int64) (*domain.User, error)
}

type AccountConfig struct {
	// ConfirmTTL bounds how long a confirmation code stays usable.
	ConfirmTTL time.Duration
	// ResetTTL bounds how long a password reset code stays usable.
	ResetTTL time.Duration
}

type accountService struct {
	users    repository.UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	notifier notify.Notifier
	cfg      AccountConfig

	newCode func() (string, error)
	now     func() time.Time
}

func NewAccountService(users repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer, notifier notify.Notifier, cfg AccountConfig) AccountService {
	if cfg.ConfirmTTL <= 0 {
		cfg.ConfirmTTL = 24 * time.Hour
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = time.Hour
	}
	return &accountService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		cfg:      cfg,
		newCode:  security.NewCode,
		now:      time.Now,
	}
}

func (s *accountService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
	}
	err = s.assignCode(ctx, user, s.cfg.ConfirmTTL, func(ctx context.Context, u *domain.User) error {
		_, err := s.users.Create(ctx, u)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, apperr.Internal(err)
	}

	// the account exists even when mail fails; ResendConfirmation issues a new code
	if err := s.notifier.SendConfirmation(ctx, user.Name, user.Email, *user.Token); err != nil {
		return nil, apperr.Internal(fmt.Errorf("send confirmation: %w", err))
	}

	return sanitizeUser(user), nil
}

func (s *accountService) ConfirmAccount(ctx context.Context, code string) error {
	user, err := s.pendingUser(ctx, code, ErrInvalidConfirmToken)
	if err != nil {
		return err
	}
	return redeem(s.users.Confirm(ctx, user.ID, code), ErrInvalidConfirmToken)
}

func (s *accountService) ResendConfirmation(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return apperr.Internal(err)
	}
	if user.Confirmed {
		return ErrAlreadyConfirmed
	}

	if err := s.assignCode(ctx, user, s.cfg.ConfirmTTL, s.storeToken); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return apperr.Internal(err)
	}

	if err := s.notifier.SendConfirmation(ctx, user.Name, user.Email, *user.Token); err != nil {
		return apperr.Internal(fmt.Errorf("send confirmation: %w", err))
	}
	return nil
}

func (s *accountService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", apperr.Internal(err)
	}

	if !user.Confirmed {
		return "", ErrNotConfirmed
	}
	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return "", apperr.Internal(err)
	}
	if !ok {
		return "", ErrWrongPassword
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return token, nil
}

func (s *accountService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return apperr.Internal(err)
	}

	if err := s.assignCode(ctx, user, s.cfg.ResetTTL, s.storeToken); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return apperr.Internal(err)
	}

	if err := s.notifier.SendPasswordReset(ctx, user.Name, user.Email, *user.Token); err != nil {
		return apperr.Internal(fmt.Errorf("send password reset: %w", err))
	}
	return nil
}

func (s *accountService) ValidateResetToken(ctx context.Context, code string) error {
	_, err := s.pendingUser(ctx, code, ErrInvalidResetToken)
	return err
}

func (s *accountService) ResetPassword(ctx context.Context, code, password string) error {
	user, err := s.pendingUser(ctx, code, ErrInvalidResetToken)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return apperr.Internal(err)
	}
	return redeem(s.users.ResetPassword(ctx, user.ID, code, hash), ErrInvalidResetToken)
}

func (s *accountService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	user, err := s.lookup(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(ctx, current, user.PasswordHash)
	if err != nil {
		return apperr.Internal(err)
	}
	if !ok {
		return ErrWrongCurrentPassword
	}

	hash, err := s.hasher.Hash(ctx, next)
	if err != nil {
		return apperr.Internal(err)
	}

	// the swap only applies while the hash we verified against is still stored
	if err := s.users.UpdatePassword(ctx, user.ID, user.PasswordHash, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWrongCurrentPassword
		}
		return apperr.Internal(err)
	}
	return nil
}

func (s *accountService) UpdateProfile(ctx context.Context, userID int64, name, email string) (*domain.User, error) {
	email = normalizeEmail(email)

	if existing, err := s.users.GetByEmail(ctx, email); err == nil {
		if existing.ID != userID {
			return nil, ErrEmailInUse
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	if _, err := s.lookup(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.users.UpdateProfile(ctx, userID, strings.TrimSpace(name), email); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrEmailInUse
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		default:
			return nil, apperr.Internal(err)
		}
	}
	return s.Profile(ctx, userID)
}

func (s *accountService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *accountService) lookup(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Internal(err)
	}
	return user, nil
}

// pendingUser resolves the account holding code, failing with invalid when
// the code is unknown or has lapsed.
func (s *accountService) pendingUser(ctx context.Context, code string, invalid error) (*domain.User, error) {
	user, err := s.users.GetByToken(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid
		}
		return nil, apperr.Internal(err)
	}
	if !user.TokenValid(s.now()) {
		return nil, invalid
	}
	return user, nil
}

// redeem maps the outcome of a token-guarded write. A missing row means the
// code was spent or replaced after it was read.
func redeem(err error, invalid error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return invalid
	}
	return apperr.Internal(err)
}

func (s *accountService) storeToken(ctx context.Context, user *domain.User) error {
	return s.users.SetToken(ctx, user.ID, *user.Token, *user.TokenExpiresAt)
}

// assignCode sets a fresh code on user and persists it with save, drawing a
// new code when the repository reports a collision with another account.
func (s *accountService) assignCode(ctx context.Context, user *domain.User, ttl time.Duration, save func(context.Context, *domain.User) error) error {
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return err
		}
		user.SetToken(code, s.now().Add(ttl).UTC())

		err = save(ctx, user)
		if errors.Is(err, repository.ErrDuplicateToken) {
			continue
		}
		return err
	}
	return fmt.Errorf("assign code: no free code after %d attempts", codeAttempts)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Confirmed: user.Confirmed,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
