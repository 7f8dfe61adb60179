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

func (r *Repository) GetUserByID(ctx context.Context, userID uuid.UUID) (*md.User, error) {
	const op = "users.GetUserByID.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res := &md.User{}
	err := sqlx.GetContext(ctx, r.q, res, userGetByIDQ, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}

		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error(
			"failed to get user",
			zap.String("op", op),
			zap.String("id", userID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	return res, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*md.User, error) {
	const op = "users.GetUserByEmail.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res := &md.User{}
	err := sqlx.GetContext(ctx, r.q, res, userGetByEmailQ, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}

		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to get user by email", zap.String("op", op), zap.Error(err))
		return nil, err
	}

	return res, nil
}

func (r *Repository) CreateUser(ctx context.Context, u *md.User) error {
	const op = "users.CreateUser.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	err := r.q.QueryRowxContext(
		ctx, userCreateQ,
		u.ID,
		u.Email,
		u.Password,
		u.FirstName,
		u.LastName,
		u.PhoneNumber,
		u.Role,
		u.IsActive,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repo.ErrAlreadyExists
		}

		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to create user", zap.String("op", op), zap.Error(err))
		return err
	}

	return nil
}

func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	const op = "users.UpdateLastLogin.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res, err := r.q.ExecContext(ctx, userUpdateLastLoginQ, id, at)
	if err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to update last login", zap.String("op", op), zap.Error(err))
		return err
	}

	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if aff == 0 {
		return repo.ErrNotFound
	}

	return nil
}
