package domain

import "time"

// User represents an account holder. Token holds a pending confirmation or
// password reset code and is nil when nothing is pending.
type User struct {
	ID             int64
	Name           string
	Email          string
	PasswordHash   string
	Token          *string
	TokenExpiresAt *time.Time
	Confirmed      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TokenValid reports whether the pending code is still usable at now.
// A code without an expiry never lapses.
func (u *User) TokenValid(now time.Time) bool {
	if u.Token == nil {
		return false
	}
	return u.TokenExpiresAt == nil || now.Before(*u.TokenExpiresAt)
}

// SetToken replaces the pending code.
func (u *User) SetToken(code string, expiresAt time.Time) {
	u.Token = &code
	u.TokenExpiresAt = &expiresAt
}

