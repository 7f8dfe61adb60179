package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(ctx context.Context, pswd string) (string, error)
	// ComparePasswords returns (false, nil) on mismatch and an error only when
	// the stored hash is malformed or the hasher is unavailable.
	ComparePasswords(ctx context.Context, hashed, pswd string) (bool, error)
	// CompareDummy burns the same CPU time as a real comparison.
	CompareDummy(ctx context.Context, pswd string)
}

// BcryptHasher runs bcrypt on a bounded number of goroutines so that a burst
// of logins cannot starve the rest of the process.
type BcryptHasher struct {
	cost  int
	sem   *semaphore.Weighted
	dummy []byte
}

func NewBcryptHasher(cost int, concurrency int64) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if concurrency < 1 {
		concurrency = 1
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password"), cost)
	if err != nil {
		zap.L().Fatal("failed to precompute dummy hash", zap.Error(err))
	}

	return &BcryptHasher{
		cost:  cost,
		sem:   semaphore.NewWeighted(concurrency),
		dummy: dummy,
	}
}

func (h *BcryptHasher) Hash(ctx context.Context, pswd string) (string, error) {
	const op = "auth.Hash.hasher"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if pswd == "" {
		return "", ErrEmptyPassword
	}

	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("%w: %w", ErrHashing, err)
	}
	defer h.sem.Release(1)

	bytes, err := bcrypt.GenerateFromPassword([]byte(pswd), h.cost)
	if err != nil {
		zap.L().Error("failed to hash password", zap.String("op", op), zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrHashing, err)
	}

	return string(bytes), nil
}

func (h *BcryptHasher) ComparePasswords(ctx context.Context, hashed, pswd string) (bool, error) {
	const op = "auth.ComparePasswords.hasher"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pswd))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %w", ErrMalformedHash, err)
	}
}

func (h *BcryptHasher) CompareDummy(ctx context.Context, pswd string) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return
	}
	defer h.sem.Release(1)

	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(pswd))
}
