package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	ctx := context.Background()
	h := NewBcryptHasher(bcrypt.MinCost, 2)

	hash, err := h.Hash(ctx, "Sup3r$ecret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$04$"))

	other, err := h.Hash(ctx, "Sup3r$ecret")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)

	tests := []struct {
		name     string
		hashed   string
		pswd     string
		expected bool
		wantErr  error
	}{
		{
			name:     "Match",
			hashed:   hash,
			pswd:     "Sup3r$ecret",
			expected: true,
		},
		{
			name:   "Mismatch",
			hashed: hash,
			pswd:   "wrong",
		},
		{
			name:    "Malformed hash",
			hashed:  "not-a-bcrypt-hash",
			pswd:    "Sup3r$ecret",
			wantErr: ErrMalformedHash,
		},
	}

	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				ok, err := h.ComparePasswords(ctx, tt.hashed, tt.pswd)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tt.expected, ok)
			},
		)
	}
}

func TestBcryptHasher_EmptyPassword(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, 1)

	_, err := h.Hash(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestBcryptHasher_CancelledContext(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, h.sem.Acquire(context.Background(), 1))
	defer h.sem.Release(1)

	_, err := h.Hash(ctx, "Sup3r$ecret")
	assert.ErrorIs(t, err, ErrHashing)
}

func TestBcryptHasher_InvalidCostFallsBack(t *testing.T) {
	h := NewBcryptHasher(100, 0)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}
