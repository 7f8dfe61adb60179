package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/JMURv/auth-service/internal/config"
	md "github.com/JMURv/auth-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

type Port interface {
	AccessTTL() time.Duration
	NewAccessToken(ctx context.Context, u *md.User, claims md.AuthzClaims) (string, error)
	ParseClaims(ctx context.Context, tokenStr string) (Claims, error)
}

type Core struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

type Claims struct {
	Email         string                 `json:"email"`
	Role          string                 `json:"role"`
	Organizations []md.OrganizationClaim `json:"organizations"`
	Projects      []md.ProjectClaim      `json:"projects"`
	jwt.RegisteredClaims
}

// UID returns the user id carried in the subject claim.
func (c Claims) UID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

func New(conf config.Config) *Core {
	ttl := conf.Auth.JWT.AccessTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &Core{
		secret:   []byte(conf.Auth.JWT.Secret),
		issuer:   conf.Auth.JWT.Issuer,
		audience: conf.Auth.JWT.Audience,
		ttl:      ttl,
	}
}

func (c *Core) AccessTTL() time.Duration {
	return c.ttl
}

func (c *Core) NewAccessToken(ctx context.Context, u *md.User, claims md.AuthzClaims) (string, error) {
	const op = "auth.NewAccessToken.jwt"
	span, _ := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	now := time.Now()
	signed, err := jwt.NewWithClaims(
		jwt.SigningMethodHS256, &Claims{
			Email:         u.Email,
			Role:          u.Role,
			Organizations: nonNil(claims.Organizations),
			Projects:      nonNil(claims.Projects),
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   u.ID.String(),
				ID:        uuid.NewString(),
				Issuer:    c.issuer,
				Audience:  jwt.ClaimStrings{c.audience},
				ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
				IssuedAt:  jwt.NewNumericDate(now),
				NotBefore: jwt.NewNumericDate(now),
			},
		},
	).SignedString(c.secret)
	if err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error(
			ErrWhileCreatingToken.Error(),
			zap.String("op", op),
			zap.String("uid", u.ID.String()),
			zap.Error(err),
		)

		return "", ErrWhileCreatingToken
	}

	return signed, nil
}

func (c *Core) ParseClaims(ctx context.Context, tokenStr string) (Claims, error) {
	const op = "auth.ParseClaims.jwt"
	span, _ := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	claims := Claims{}
	token, err := jwt.ParseWithClaims(
		tokenStr, &claims, func(token *jwt.Token) (any, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, ErrUnexpectedSignMethod
			}

			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		zap.L().Debug(
			"Failed to parse claims",
			zap.String("op", op),
			zap.Error(err),
		)

		return claims, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid {
		return claims, ErrInvalidToken
	}

	if _, err = claims.UID(); err != nil {
		return claims, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	return claims, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
