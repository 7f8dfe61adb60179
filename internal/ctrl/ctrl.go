package ctrl

import (
	"context"
	"io"
	"time"

	"github.com/JMURv/auth-service/internal/auth"
	"github.com/JMURv/auth-service/internal/config"
	md "github.com/JMURv/auth-service/internal/models"
	"github.com/google/uuid"
)

//go:generate mockgen -destination=../../tests/mocks/mock_ctrl.go -package=mocks . AppCtrl,CacheService

type AppRepo interface {
	authRepo
	userRepo
	attemptRepo
}

type AppCtrl interface {
	authCtrl
}

type CacheService interface {
	io.Closer
	GetToStruct(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, t time.Duration, key string, val any)
	Delete(ctx context.Context, key string)
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// ClaimsProvider resolves the organization and project memberships of a user.
type ClaimsProvider interface {
	ForUser(ctx context.Context, uid uuid.UUID) (md.AuthzClaims, error)
}

type Mailer interface {
	SendReuseAlert(ctx context.Context, toEmail, ip string, at time.Time) error
}

type Controller struct {
	au      auth.Core
	repo    AppRepo
	cache   CacheService
	claims  ClaimsProvider
	mailer  Mailer
	limiter *LoginRateLimiter
	grace   time.Duration
	now     func() time.Time
}

func New(
	au auth.Core,
	repo AppRepo,
	cache CacheService,
	claims ClaimsProvider,
	mailer Mailer,
	conf config.Config,
) *Controller {
	grace := conf.Auth.Refresh.GracePeriod
	if grace <= 0 {
		grace = DefaultGracePeriod
	}

	return &Controller{
		au:      au,
		repo:    repo,
		cache:   cache,
		claims:  claims,
		mailer:  mailer,
		limiter: NewLoginRateLimiter(repo, conf.Auth.Login),
		grace:   grace,
		now:     time.Now,
	}
}
