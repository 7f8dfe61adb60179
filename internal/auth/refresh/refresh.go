// Package refresh mints opaque refresh tokens. The plaintext goes to the
// client once; only its SHA-256 digest is persisted.
package refresh

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/JMURv/auth-service/internal/dto"
	md "github.com/JMURv/auth-service/internal/models"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
)

// TokenBytes is the amount of entropy in a refresh token (256 bits).
const TokenBytes = 32

type Issuer struct {
	ttl time.Duration
}

func New(ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Issuer{ttl: ttl}
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue generates a token and its record. Without a parent the record opens a
// new family at generation 1; with a parent it is the parent's successor.
func (i *Issuer) Issue(
	ctx context.Context,
	uid uuid.UUID,
	d *dto.DeviceRequest,
	parent *md.RefreshToken,
	now time.Time,
) (string, *md.RefreshToken, error) {
	const op = "auth.Issue.refresh"
	span, _ := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	plain, err := Generate()
	if err != nil {
		return "", nil, err
	}

	rec := &md.RefreshToken{
		ID:          uuid.New(),
		FamilyID:    uuid.New(),
		UserID:      uid,
		TokenDigest: Digest(plain),
		Generation:  1,
		ExpiresAt:   now.Add(i.ttl),
		CreatedAt:   now,
	}

	if parent != nil {
		prev := parent.TokenDigest
		rec.FamilyID = parent.FamilyID
		rec.Generation = parent.Generation + 1
		rec.PreviousTokenDigest = &prev
	}

	if d != nil {
		rec.IPAddress = d.IP
		rec.UserAgent = d.UA
		rec.DeviceID = d.DeviceID
	}

	return plain, rec, nil
}

// Generate returns 32 random bytes, hex-encoded.
func Generate() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func Digest(plain string) string {
	h := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(h[:])
}
