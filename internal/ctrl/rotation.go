package ctrl

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/JMURv/auth-service/internal/config"
	"github.com/JMURv/auth-service/internal/dto"
	md "github.com/JMURv/auth-service/internal/models"
	metrics "github.com/JMURv/auth-service/internal/observability/metrics/prometheus"
	"github.com/JMURv/auth-service/internal/repo"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

// verdict is the domain outcome of one rotation attempt. A verdict carrying an
// error still commits the unit of work, so revocations it performed persist.
type verdict struct {
	outcome string
	err     error
	token   *md.RefreshToken
}

func rejected(outcome string, err error) verdict {
	return verdict{outcome: outcome, err: err}
}

// Refresh exchanges a refresh token for a new access token and a child
// refresh token. A token presented again within the grace period yields an
// access token only; any later reuse revokes the whole family.
func (c *Controller) Refresh(
	ctx context.Context,
	d *dto.DeviceRequest,
	req *dto.RefreshRequest,
) (*dto.TokenResponse, error) {
	const op = "auth.Refresh.ctrl"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if req == nil || req.Refresh == "" {
		return nil, ErrRefreshTokenRequired
	}

	digest := c.au.Digest(req.Refresh)

	var (
		res *dto.TokenResponse
		v   verdict
		err error
	)
	for try := 1; try <= config.MaxRotationTries; try++ {
		err = c.repo.InTx(
			ctx, func(tx repo.TokenStore) error {
				var txErr error
				res, v, txErr = c.rotate(ctx, tx, digest, d)
				return txErr
			},
		)
		if !errors.Is(err, repo.ErrConflict) && !errors.Is(err, repo.ErrAlreadyExists) {
			break
		}

		zap.L().Info(
			"concurrent rotation detected, re-evaluating",
			zap.String("op", op),
			zap.Int("try", try),
		)
	}

	if err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to rotate refresh token", zap.String("op", op), zap.Error(err))
		return nil, internal(err)
	}

	metrics.ObserveRefresh(v.outcome)
	if v.err != nil {
		if errors.Is(v.err, ErrTokenReuse) {
			c.alertReuse(ctx, v.token, d)
		}
		return nil, v.err
	}

	return res, nil
}

func (c *Controller) rotate(
	ctx context.Context,
	tx repo.TokenStore,
	digest string,
	d *dto.DeviceRequest,
) (*dto.TokenResponse, verdict, error) {
	now := c.now()
	token, err := tx.FindByDigest(ctx, digest)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return c.replayOrphan(ctx, tx, digest, now)
		}
		return nil, verdict{}, err
	}

	if token.IsUsed() {
		if c.withinGrace(*token.UsedAt, now) {
			return c.replay(ctx, tx, token, now)
		}
		return c.revokeFamily(ctx, tx, token, now)
	}

	if token.IsExpiredAt(now) {
		if err = tx.Revoke(ctx, token.ID, md.RevokeExpired, now); err != nil {
			return nil, verdict{}, err
		}
		return nil, rejected(metrics.OutcomeExpired, ErrRefreshTokenExpired), nil
	}

	if token.IsRevoked() {
		return nil, rejected(metrics.OutcomeInvalid, ErrInvalidRefreshToken), nil
	}

	u, v, err := c.activeUser(ctx, tx, token, now)
	if err != nil || v.err != nil {
		return nil, v, err
	}

	claims, err := c.claimsFor(ctx, u.ID)
	if err != nil {
		return nil, verdict{}, err
	}

	access, err := c.au.NewAccessToken(ctx, u, claims)
	if err != nil {
		return nil, verdict{}, err
	}

	refresh, child, err := c.au.NewRefreshToken(ctx, u.ID, deviceOf(d, token), token, now)
	if err != nil {
		return nil, verdict{}, err
	}

	if err = tx.Insert(ctx, child); err != nil {
		return nil, verdict{}, err
	}

	if err = tx.MarkUsed(ctx, token.ID, now); err != nil {
		return nil, verdict{}, err
	}

	if err = tx.UpdateLastLogin(ctx, u.ID, now); err != nil {
		return nil, verdict{}, err
	}
	u.LastLoginAt = &now

	return c.tokenResponse(access, refresh, u), verdict{outcome: metrics.OutcomeRotated}, nil
}

// replay serves a used token whose rotation happened within the grace period.
func (c *Controller) replay(
	ctx context.Context,
	tx repo.TokenStore,
	parent *md.RefreshToken,
	now time.Time,
) (*dto.TokenResponse, verdict, error) {
	child, err := tx.FindByPreviousDigest(ctx, parent.TokenDigest)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, rejected(metrics.OutcomeInvalid, ErrInvalidRefreshToken), nil
		}
		return nil, verdict{}, err
	}

	if child.FamilyID != parent.FamilyID || child.Generation != parent.Generation+1 {
		zap.L().Warn(
			"refresh token child does not follow its parent",
			zap.String("op", "auth.replay.ctrl"),
			zap.String("family", parent.FamilyID.String()),
			zap.Int("generation", parent.Generation),
		)
		return nil, rejected(metrics.OutcomeInvalid, ErrInvalidRefreshToken), nil
	}

	return c.replayFromChild(ctx, tx, child, now)
}

// replayOrphan handles a digest that is not stored but is still referenced as
// the parent of a stored token, e.g. after the parent row was swept.
func (c *Controller) replayOrphan(
	ctx context.Context,
	tx repo.TokenStore,
	digest string,
	now time.Time,
) (*dto.TokenResponse, verdict, error) {
	child, err := tx.FindByPreviousDigest(ctx, digest)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, rejected(metrics.OutcomeInvalid, ErrInvalidRefreshToken), nil
		}
		return nil, verdict{}, err
	}

	if !c.withinGrace(child.CreatedAt, now) {
		return nil, rejected(metrics.OutcomeInvalid, ErrInvalidRefreshToken), nil
	}

	return c.replayFromChild(ctx, tx, child, now)
}

// replayFromChild issues an access token on behalf of the live child. Only the
// generation immediately preceding the live token is honored: if the child was
// itself rotated, the presented token is older and counts as reuse.
func (c *Controller) replayFromChild(
	ctx context.Context,
	tx repo.TokenStore,
	child *md.RefreshToken,
	now time.Time,
) (*dto.TokenResponse, verdict, error) {
	switch {
	case child.IsUsed():
		return c.revokeFamily(ctx, tx, child, now)
	case child.IsRevoked(), child.IsExpiredAt(now):
		return nil, rejected(metrics.OutcomeInvalid, ErrInvalidRefreshToken), nil
	}

	u, v, err := c.activeUser(ctx, tx, child, now)
	if err != nil || v.err != nil {
		return nil, v, err
	}

	claims, err := c.claimsFor(ctx, u.ID)
	if err != nil {
		return nil, verdict{}, err
	}

	access, err := c.au.NewAccessToken(ctx, u, claims)
	if err != nil {
		return nil, verdict{}, err
	}

	return c.tokenResponse(access, "", u), verdict{outcome: metrics.OutcomeGraceReplay}, nil
}

func (c *Controller) activeUser(
	ctx context.Context,
	tx repo.TokenStore,
	token *md.RefreshToken,
	now time.Time,
) (*md.User, verdict, error) {
	u, err := tx.GetUserByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, rejected(metrics.OutcomeInvalid, ErrInvalidRefreshToken), nil
		}
		return nil, verdict{}, err
	}

	if !u.IsActive {
		if err = tx.Revoke(ctx, token.ID, md.RevokeUserInactive, now); err != nil {
			return nil, verdict{}, err
		}
		return nil, rejected(metrics.OutcomeUserInactive, ErrUserInactive), nil
	}
	return u, verdict{}, nil
}

func (c *Controller) revokeFamily(
	ctx context.Context,
	tx repo.TokenStore,
	token *md.RefreshToken,
	now time.Time,
) (*dto.TokenResponse, verdict, error) {
	const op = "auth.revokeFamily.ctrl"

	family, err := tx.FindFamily(ctx, token.FamilyID)
	if err != nil {
		return nil, verdict{}, err
	}

	live := make([]int, 0, 1)
	ips := make([]string, 0, len(family))
	for _, t := range family {
		if !t.IsUsed() && !t.IsRevoked() && !t.IsExpiredAt(now) {
			live = append(live, t.Generation)
		}
		if t.IPAddress != "" && !slices.Contains(ips, t.IPAddress) {
			ips = append(ips, t.IPAddress)
		}
	}

	n, err := tx.RevokeFamily(ctx, token.FamilyID, md.RevokeTokenReuse, now)
	if err != nil {
		return nil, verdict{}, err
	}

	zap.L().Warn(
		"refresh token reuse detected",
		zap.String("op", op),
		zap.String("uid", token.UserID.String()),
		zap.String("family", token.FamilyID.String()),
		zap.Int("generation", token.Generation),
		zap.Ints("live_generations", live),
		zap.Strings("family_ips", ips),
		zap.Int64("revoked", n),
	)
	return nil, verdict{outcome: metrics.OutcomeReuse, err: ErrTokenReuse, token: token}, nil
}

func (c *Controller) withinGrace(at, now time.Time) bool {
	return now.Sub(at) <= c.grace
}

// alertTimeout bounds the detached reuse alert, user lookup and mail included.
const alertTimeout = 30 * time.Second

// alertReuse notifies the account owner. It runs detached from the request.
func (c *Controller) alertReuse(ctx context.Context, token *md.RefreshToken, d *dto.DeviceRequest) {
	const op = "auth.alertReuse.ctrl"
	if c.mailer == nil || token == nil {
		return
	}

	ip := ""
	if d != nil {
		ip = d.IP
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertTimeout)
	at := c.now()
	go func() {
		defer cancel()

		u, err := c.repo.GetUserByID(ctx, token.UserID)
		if err != nil {
			zap.L().Warn("failed to load user for reuse alert", zap.String("op", op), zap.Error(err))
			return
		}

		if err = c.mailer.SendReuseAlert(ctx, u.Email, ip, at); err != nil {
			zap.L().Warn("failed to send reuse alert", zap.String("op", op), zap.Error(err))
		}
	}()
}

// deviceOf prefers the metadata of the current request and falls back to the
// parent token's.
func deviceOf(d *dto.DeviceRequest, parent *md.RefreshToken) *dto.DeviceRequest {
	if d != nil && d.IP != "" {
		return d
	}
	return &dto.DeviceRequest{
		IP:       parent.IPAddress,
		UA:       parent.UserAgent,
		DeviceID: parent.DeviceID,
	}
}
