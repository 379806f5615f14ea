package security

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher() *Hasher {
	return NewHasher(HasherConfig{Cost: bcrypt.MinCost, Workers: 2})
}

func TestHashAndVerify(t *testing.T) {
	h := newTestHasher()
	ctx := context.Background()

	digest, err := h.Hash(ctx, "12345678")
	require.NoError(t, err)
	assert.NotEqual(t, "12345678", digest)

	tests := []struct {
		name     string
		password string
		digest   string
		want     bool
	}{
		{"matching password", "12345678", digest, true},
		{"different password", "87654321", digest, false},
		{"empty password", "", digest, false},
		{"malformed digest", "12345678", "not-a-bcrypt-hash", false},
		{"empty digest", "12345678", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify(ctx, tt.password, tt.digest)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestHashUsesFreshSalt(t *testing.T) {
	h := newTestHasher()
	ctx := context.Background()

	a, err := h.Hash(ctx, "same-password")
	require.NoError(t, err)
	b, err := h.Hash(ctx, "same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	for _, digest := range []string{a, b} {
		ok, err := h.Verify(ctx, "same-password", digest)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestHashRejectsOverlongPassword(t *testing.T) {
	_, err := newTestHasher().Hash(context.Background(), strings.Repeat("a", 80))
	assert.Error(t, err)
}

func TestHasherHonoursCancelledContext(t *testing.T) {
	h := NewHasher(HasherConfig{Cost: bcrypt.MinCost, Workers: 1})
	digest, err := h.Hash(context.Background(), "12345678")
	require.NoError(t, err)

	// occupy the only slot
	h.sem <- struct{}{}
	defer h.release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = h.Hash(ctx, "12345678")
	assert.ErrorIs(t, err, context.Canceled)
	ok, err := h.Verify(ctx, "12345678", digest)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
}
