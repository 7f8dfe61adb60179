package ctrl

import (
	"context"
	"time"

	"github.com/JMURv/auth-service/internal/config"
	"github.com/JMURv/auth-service/internal/dto"
	md "github.com/JMURv/auth-service/internal/models"
	metrics "github.com/JMURv/auth-service/internal/observability/metrics/prometheus"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

const (
	DefaultMaxAttempts   = 5
	DefaultAttemptWindow = 15 * time.Minute
	DefaultGracePeriod   = 120 * time.Second
)

type attemptRepo interface {
	CountFailedAttempts(ctx context.Context, email, ip string, since time.Time) (int, error)
	CreateFailedAttempt(ctx context.Context, a *md.FailedLoginAttempt) error
	DeleteFailedAttempts(ctx context.Context, email, ip string) error
	DeleteStaleAttempts(ctx context.Context, before time.Time) (int64, error)
}

// LoginRateLimiter blocks an (email, ip) pair after too many failed logins
// inside a sliding window.
type LoginRateLimiter struct {
	repo   attemptRepo
	max    int
	window time.Duration
	block  time.Duration
}

func NewLoginRateLimiter(repo attemptRepo, conf config.LoginConfig) *LoginRateLimiter {
	l := &LoginRateLimiter{
		repo:   repo,
		max:    conf.MaxAttempts,
		window: conf.Window,
		block:  conf.BlockDuration,
	}
	if l.max <= 0 {
		l.max = DefaultMaxAttempts
	}
	if l.window <= 0 {
		l.window = DefaultAttemptWindow
	}
	if l.block <= 0 {
		l.block = l.window
	}
	return l
}

// Check fails closed: a counting error blocks the login.
func (l *LoginRateLimiter) Check(ctx context.Context, email, ip string, now time.Time) error {
	const op = "auth.RateLimit.Check.ctrl"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	count, err := l.repo.CountFailedAttempts(ctx, email, ip, now.Add(-l.window))
	if err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error(
			"failed to count login attempts",
			zap.String("op", op),
			zap.Error(err),
		)
		return internal(err)
	}

	if count >= l.max {
		zap.L().Info(
			"login blocked",
			zap.String("op", op),
			zap.String("ip", ip),
			zap.Int("attempts", count),
		)
		return &RateLimitError{RetryAfter: l.block}
	}
	return nil
}

func (l *LoginRateLimiter) RecordFailure(
	ctx context.Context,
	email string,
	d *dto.DeviceRequest,
	reason md.FailureReason,
	now time.Time,
) {
	const op = "auth.RateLimit.RecordFailure.ctrl"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	metrics.ObserveLoginFailure(string(reason))
	err := l.repo.CreateFailedAttempt(
		ctx, &md.FailedLoginAttempt{
			Email:       email,
			IPAddress:   d.IP,
			UserAgent:   d.UA,
			Reason:      reason,
			AttemptedAt: now,
		},
	)
	if err != nil {
		zap.L().Warn(
			"failed to record login attempt",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (l *LoginRateLimiter) Reset(ctx context.Context, email, ip string) {
	const op = "auth.RateLimit.Reset.ctrl"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if err := l.repo.DeleteFailedAttempts(ctx, email, ip); err != nil {
		zap.L().Warn(
			"failed to reset login attempts",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}
