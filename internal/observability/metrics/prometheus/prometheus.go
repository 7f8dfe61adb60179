package prometheus

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of handled requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op", "status"},
	)

	refreshOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_refresh_outcomes_total",
			Help: "Refresh token presentations by outcome.",
		},
		[]string{"outcome"},
	)

	loginFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_failures_total",
			Help: "Failed logins by reason.",
		},
		[]string{"reason"},
	)
)

// Refresh outcomes.
const (
	OutcomeRotated      = "rotated"
	OutcomeGraceReplay  = "grace_replay"
	OutcomeReuse        = "reuse_detected"
	OutcomeExpired      = "expired"
	OutcomeInvalid      = "invalid"
	OutcomeUserInactive = "user_inactive"
)

func ObserveRequest(d time.Duration, status int, op string) {
	requestDuration.WithLabelValues(op, strconv.Itoa(status)).Observe(d.Seconds())
}

func ObserveRefresh(outcome string) {
	refreshOutcomes.WithLabelValues(outcome).Inc()
}

func ObserveLoginFailure(reason string) {
	loginFailures.WithLabelValues(reason).Inc()
}

type Metrics struct {
	srv *http.Server
}

func New(port int) *Metrics {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Metrics{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func (m *Metrics) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		if err := m.srv.Shutdown(context.Background()); err != nil {
			zap.L().Warn("Error shutting down prometheus server", zap.Error(err))
		}
	}()

	zap.L().Info("Starting prometheus server", zap.String("addr", m.srv.Addr))
	if err := m.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zap.L().Error("Prometheus server error", zap.Error(err))
	}
}
