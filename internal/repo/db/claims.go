package db

import (
	"context"

	"github.com/JMURv/auth-service/internal/config"
	md "github.com/JMURv/auth-service/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

// ForUser loads organization and project memberships embedded in access tokens.
func (r *Repository) ForUser(ctx context.Context, uid uuid.UUID) (md.AuthzClaims, error) {
	const op = "claims.ForUser.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	res := md.AuthzClaims{
		Organizations: make([]md.OrganizationClaim, 0),
		Projects:      make([]md.ProjectClaim, 0),
	}

	if err := sqlx.SelectContext(ctx, r.q, &res.Organizations, organizationClaimsQ, uid); err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to load organization claims", zap.String("op", op), zap.Error(err))
		return res, err
	}

	if err := sqlx.SelectContext(ctx, r.q, &res.Projects, projectClaimsQ, uid); err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to load project claims", zap.String("op", op), zap.Error(err))
		return res, err
	}

	return res, nil
}
