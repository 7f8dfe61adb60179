package auth

import (
	"context"
	"time"

	"github.com/JMURv/auth-service/internal/auth/captcha"
	"github.com/JMURv/auth-service/internal/auth/jwt"
	"github.com/JMURv/auth-service/internal/auth/refresh"
	"github.com/JMURv/auth-service/internal/config"
	"github.com/JMURv/auth-service/internal/dto"
	md "github.com/JMURv/auth-service/internal/models"
	"github.com/google/uuid"
)

// Core is everything the service needs to turn credentials into tokens.
type Core interface {
	Hasher
	AccessTTL() time.Duration
	NewAccessToken(ctx context.Context, u *md.User, claims md.AuthzClaims) (string, error)
	ParseClaims(ctx context.Context, tokenStr string) (jwt.Claims, error)
	RefreshTTL() time.Duration
	NewRefreshToken(
		ctx context.Context,
		uid uuid.UUID,
		d *dto.DeviceRequest,
		parent *md.RefreshToken,
		now time.Time,
	) (string, *md.RefreshToken, error)
	Digest(plain string) string
	VerifyRecaptcha(ctx context.Context, token string, action captcha.Actions) (bool, error)
}

type Auth struct {
	hasher  *BcryptHasher
	jwt     *jwt.Core
	refresh *refresh.Issuer
	captcha *captcha.Core
}

func New(conf config.Config) *Auth {
	return &Auth{
		hasher:  NewBcryptHasher(conf.Auth.BcryptCost, conf.Auth.HashConcurrency),
		jwt:     jwt.New(conf),
		refresh: refresh.New(conf.Auth.Refresh.TTL),
		captcha: captcha.New(conf),
	}
}

func (a *Auth) Hash(ctx context.Context, pswd string) (string, error) {
	return a.hasher.Hash(ctx, pswd)
}

func (a *Auth) ComparePasswords(ctx context.Context, hashed, pswd string) (bool, error) {
	return a.hasher.ComparePasswords(ctx, hashed, pswd)
}

func (a *Auth) CompareDummy(ctx context.Context, pswd string) {
	a.hasher.CompareDummy(ctx, pswd)
}

func (a *Auth) AccessTTL() time.Duration {
	return a.jwt.AccessTTL()
}

func (a *Auth) NewAccessToken(ctx context.Context, u *md.User, claims md.AuthzClaims) (string, error) {
	return a.jwt.NewAccessToken(ctx, u, claims)
}

func (a *Auth) ParseClaims(ctx context.Context, tokenStr string) (jwt.Claims, error) {
	return a.jwt.ParseClaims(ctx, tokenStr)
}

func (a *Auth) RefreshTTL() time.Duration {
	return a.refresh.TTL()
}

func (a *Auth) NewRefreshToken(
	ctx context.Context,
	uid uuid.UUID,
	d *dto.DeviceRequest,
	parent *md.RefreshToken,
	now time.Time,
) (string, *md.RefreshToken, error) {
	return a.refresh.Issue(ctx, uid, d, parent, now)
}

func (a *Auth) Digest(plain string) string {
	return refresh.Digest(plain)
}

func (a *Auth) VerifyRecaptcha(ctx context.Context, token string, action captcha.Actions) (bool, error) {
	return a.captcha.VerifyRecaptcha(ctx, token, action)
}
