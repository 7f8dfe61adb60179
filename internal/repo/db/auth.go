package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/JMURv/auth-service/internal/config"
	md "github.com/JMURv/auth-service/internal/models"
	"github.com/JMURv/auth-service/internal/repo"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

func (r *Repository) FindByDigest(ctx context.Context, digest string) (*md.RefreshToken, error) {
	const op = "auth.FindByDigest.repo"
	return r.getToken(ctx, op, findByDigestQ, digest)
}

func (r *Repository) FindByPreviousDigest(ctx context.Context, digest string) (*md.RefreshToken, error) {
	const op = "auth.FindByPreviousDigest.repo"
	return r.getToken(ctx, op, findByPreviousDigestQ, digest)
}

func (r *Repository) getToken(ctx context.Context, op, query, digest string) (*md.RefreshToken, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res := &md.RefreshToken{}
	err := sqlx.GetContext(ctx, r.q, res, query, digest)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}

		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to get refresh token", zap.String("op", op), zap.Error(err))
		return nil, err
	}

	return res, nil
}

func (r *Repository) FindFamily(ctx context.Context, familyID uuid.UUID) ([]*md.RefreshToken, error) {
	const op = "auth.FindFamily.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res := make([]*md.RefreshToken, 0)
	if err := sqlx.SelectContext(ctx, r.q, &res, findFamilyQ, familyID); err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error(
			"failed to list token family",
			zap.String("op", op),
			zap.String("family", familyID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	return res, nil
}

func (r *Repository) Insert(ctx context.Context, t *md.RefreshToken) error {
	const op = "auth.Insert.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	_, err := r.q.ExecContext(
		ctx, insertRefreshTokenQ,
		t.ID,
		t.FamilyID,
		t.UserID,
		t.TokenDigest,
		t.PreviousTokenDigest,
		t.Generation,
		t.ExpiresAt,
		t.IPAddress,
		t.UserAgent,
		t.DeviceID,
		t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repo.ErrAlreadyExists
		}

		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to insert refresh token", zap.String("op", op), zap.Error(err))
		return err
	}

	return nil
}

// CreateRefreshToken persists the first generation of a new family.
func (r *Repository) CreateRefreshToken(ctx context.Context, t *md.RefreshToken) error {
	return r.Insert(ctx, t)
}

func (r *Repository) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	const op = "auth.MarkUsed.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res, err := r.q.ExecContext(ctx, markUsedQ, id, at)
	if err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to mark token used", zap.String("op", op), zap.Error(err))
		return err
	}

	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if aff == 0 {
		return repo.ErrConflict
	}

	return nil
}

func (r *Repository) Revoke(ctx context.Context, id uuid.UUID, reason md.RevokeReason, at time.Time) error {
	const op = "auth.Revoke.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if _, err := r.q.ExecContext(ctx, revokeTokenQ, id, at, reason); err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error(
			"failed to revoke token",
			zap.String("op", op),
			zap.String("id", id.String()),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func (r *Repository) RevokeFamily(
	ctx context.Context,
	familyID uuid.UUID,
	reason md.RevokeReason,
	at time.Time,
) (int64, error) {
	const op = "auth.RevokeFamily.repo"
	return r.revokeMany(ctx, op, revokeFamilyQ, familyID, reason, at)
}

func (r *Repository) RevokeUserTokens(
	ctx context.Context,
	uid uuid.UUID,
	reason md.RevokeReason,
	at time.Time,
) (int64, error) {
	const op = "auth.RevokeUserTokens.repo"
	return r.revokeMany(ctx, op, revokeUserTokensQ, uid, reason, at)
}

func (r *Repository) revokeMany(
	ctx context.Context,
	op, query string,
	id uuid.UUID,
	reason md.RevokeReason,
	at time.Time,
) (int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res, err := r.q.ExecContext(ctx, query, id, at, reason)
	if err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error(
			"failed to revoke tokens",
			zap.String("op", op),
			zap.String("id", id.String()),
			zap.Error(err),
		)
		return 0, err
	}

	return res.RowsAffected()
}

func (r *Repository) DeleteExpiredTokens(ctx context.Context, before time.Time) (int64, error) {
	const op = "auth.DeleteExpiredTokens.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res, err := r.q.ExecContext(ctx, deleteExpiredTokensQ, before)
	if err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to delete expired tokens", zap.String("op", op), zap.Error(err))
		return 0, err
	}

	return res.RowsAffected()
}
