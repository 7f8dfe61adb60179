package ctrl

import (
	"context"
	"fmt"

	"github.com/JMURv/auth-service/internal/config"
	md "github.com/JMURv/auth-service/internal/models"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const claimsCacheKey = "claims:%v"

func (c *Controller) claimsFor(ctx context.Context, uid uuid.UUID) (md.AuthzClaims, error) {
	const op = "auth.claimsFor.ctrl"

	res := md.AuthzClaims{}
	if c.claims == nil {
		return res, nil
	}

	key := fmt.Sprintf(claimsCacheKey, uid)
	if c.cache != nil {
		if err := c.cache.GetToStruct(ctx, key, &res); err == nil {
			return res, nil
		}
	}

	res, err := c.claims.ForUser(ctx, uid)
	if err != nil {
		zap.L().Error(
			"failed to load authorization claims",
			zap.String("op", op),
			zap.String("uid", uid.String()),
			zap.Error(err),
		)
		return res, err
	}

	if c.cache != nil {
		if bytes, err := json.Marshal(res); err == nil {
			c.cache.Set(ctx, config.ClaimsCacheTime, key, bytes)
		}
	}
	return res, nil
}
