package ctrl

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/JMURv/auth-service/internal/config"
	"github.com/JMURv/auth-service/internal/dto"
	md "github.com/JMURv/auth-service/internal/models"
	"github.com/JMURv/auth-service/internal/repo"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

type authCtrl interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, d *dto.DeviceRequest, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, d *dto.DeviceRequest, req *dto.RefreshRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, uid uuid.UUID) error
}

type authRepo interface {
	InTx(ctx context.Context, fn func(tx repo.TokenStore) error) error
	CreateRefreshToken(ctx context.Context, t *md.RefreshToken) error
	RevokeUserTokens(ctx context.Context, uid uuid.UUID, reason md.RevokeReason, at time.Time) (int64, error)
	DeleteExpiredTokens(ctx context.Context, before time.Time) (int64, error)
}

type userRepo interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*md.User, error)
	GetUserByEmail(ctx context.Context, email string) (*md.User, error)
	CreateUser(ctx context.Context, u *md.User) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (c *Controller) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	const op = "auth.Register.ctrl"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	email := normalizeEmail(req.Email)
	_, err := c.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, repo.ErrNotFound) {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to look up user", zap.String("op", op), zap.Error(err))
		return nil, internal(err)
	}

	hash, err := c.au.Hash(ctx, req.Password)
	if err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to hash password", zap.String("op", op), zap.Error(err))
		return nil, internal(err)
	}

	u := &md.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  hash,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      config.DefaultRole,
		IsActive:  true,
	}
	if phone := strings.TrimSpace(req.PhoneNumber); phone != "" {
		u.PhoneNumber = &phone
	}

	if err = c.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil, ErrAlreadyExists
		}
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to create user", zap.String("op", op), zap.Error(err))
		return nil, internal(err)
	}

	zap.L().Info("user registered", zap.String("op", op), zap.String("uid", u.ID.String()))
	return dto.NewUserResponse(u), nil
}

func (c *Controller) Login(
	ctx context.Context,
	d *dto.DeviceRequest,
	req *dto.LoginRequest,
) (*dto.TokenResponse, error) {
	const op = "auth.Login.ctrl"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if d == nil {
		d = &dto.DeviceRequest{}
	}

	now := c.now()
	email := normalizeEmail(req.Email)
	if err := c.limiter.Check(ctx, email, d.IP, now); err != nil {
		return nil, err
	}

	u, err := c.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			c.au.CompareDummy(ctx, req.Password)
			c.limiter.RecordFailure(ctx, email, d, md.FailureUserNotFound, now)
			return nil, ErrInvalidCredentials
		}
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to look up user", zap.String("op", op), zap.Error(err))
		return nil, internal(err)
	}

	ok, err := c.au.ComparePasswords(ctx, u.Password, req.Password)
	if err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error(
			"failed to compare passwords",
			zap.String("op", op),
			zap.String("uid", u.ID.String()),
			zap.Error(err),
		)
		return nil, internal(err)
	}
	if !ok {
		c.limiter.RecordFailure(ctx, email, d, md.FailureInvalidPassword, now)
		return nil, ErrInvalidCredentials
	}

	c.limiter.Reset(ctx, email, d.IP)
	if !u.IsActive {
		return nil, ErrUserInactive
	}

	claims, err := c.claimsFor(ctx, u.ID)
	if err != nil {
		return nil, internal(err)
	}

	access, err := c.au.NewAccessToken(ctx, u, claims)
	if err != nil {
		return nil, internal(err)
	}

	refresh, token, err := c.au.NewRefreshToken(ctx, u.ID, d, nil, now)
	if err != nil {
		return nil, internal(err)
	}

	if err = c.repo.CreateRefreshToken(ctx, token); err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to persist refresh token", zap.String("op", op), zap.Error(err))
		return nil, internal(err)
	}

	if err = c.repo.UpdateLastLogin(ctx, u.ID, now); err != nil {
		zap.L().Warn("failed to update last login", zap.String("op", op), zap.Error(err))
	} else {
		u.LastLoginAt = &now
	}

	return c.tokenResponse(access, refresh, u), nil
}

func (c *Controller) Logout(ctx context.Context, uid uuid.UUID) error {
	const op = "auth.Logout.ctrl"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	n, err := c.repo.RevokeUserTokens(ctx, uid, md.RevokeLogout, c.now())
	if err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error(
			"failed to revoke user tokens",
			zap.String("op", op),
			zap.String("uid", uid.String()),
			zap.Error(err),
		)
		return internal(err)
	}

	zap.L().Info(
		"user logged out",
		zap.String("op", op),
		zap.String("uid", uid.String()),
		zap.Int64("revoked", n),
	)
	return nil
}

func (c *Controller) tokenResponse(access, refresh string, u *md.User) *dto.TokenResponse {
	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    config.TokenType,
		ExpiresIn:    int64(c.au.AccessTTL().Seconds()),
		User:         dto.NewUserResponse(u),
	}
}
