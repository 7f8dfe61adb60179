package repo

import (
	"context"
	"time"

	md "github.com/JMURv/auth-service/internal/models"
	"github.com/google/uuid"
)

// TokenStore is the view of persistence available inside one rotation unit of
// work. Lookups by digest lock the returned row until the unit commits.
type TokenStore interface {
	FindByDigest(ctx context.Context, digest string) (*md.RefreshToken, error)
	FindByPreviousDigest(ctx context.Context, digest string) (*md.RefreshToken, error)
	FindFamily(ctx context.Context, familyID uuid.UUID) ([]*md.RefreshToken, error)
	Insert(ctx context.Context, t *md.RefreshToken) error
	MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error
	Revoke(ctx context.Context, id uuid.UUID, reason md.RevokeReason, at time.Time) error
	RevokeFamily(ctx context.Context, familyID uuid.UUID, reason md.RevokeReason, at time.Time) (int64, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*md.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
