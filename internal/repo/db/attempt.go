package db

import (
	"context"
	"time"

	"github.com/JMURv/auth-service/internal/config"
	md "github.com/JMURv/auth-service/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

func (r *Repository) CountFailedAttempts(ctx context.Context, email, ip string, since time.Time) (int, error) {
	const op = "attempts.CountFailedAttempts.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	var count int
	if err := sqlx.GetContext(ctx, r.q, &count, countFailedAttemptsQ, email, ip, since); err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to count failed attempts", zap.String("op", op), zap.Error(err))
		return 0, err
	}

	return count, nil
}

func (r *Repository) CreateFailedAttempt(ctx context.Context, a *md.FailedLoginAttempt) error {
	const op = "attempts.CreateFailedAttempt.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	_, err := r.q.ExecContext(
		ctx, createFailedAttemptQ,
		a.Email,
		a.IPAddress,
		a.UserAgent,
		a.Reason,
		a.AttemptedAt,
	)
	if err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to record failed attempt", zap.String("op", op), zap.Error(err))
		return err
	}

	return nil
}

func (r *Repository) DeleteFailedAttempts(ctx context.Context, email, ip string) error {
	const op = "attempts.DeleteFailedAttempts.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if _, err := r.q.ExecContext(ctx, deleteFailedAttemptsQ, email, ip); err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to clear failed attempts", zap.String("op", op), zap.Error(err))
		return err
	}

	return nil
}

func (r *Repository) DeleteStaleAttempts(ctx context.Context, before time.Time) (int64, error) {
	const op = "attempts.DeleteStaleAttempts.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res, err := r.q.ExecContext(ctx, deleteStaleAttemptsQ, before)
	if err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to delete stale attempts", zap.String("op", op), zap.Error(err))
		return 0, err
	}

	return res.RowsAffected()
}
