package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/JMURv/auth-service/internal/auth"
	"github.com/JMURv/auth-service/internal/config"
	"github.com/JMURv/auth-service/internal/ctrl"
	"github.com/JMURv/auth-service/internal/hdl"
	"github.com/JMURv/auth-service/internal/hdl/http/utils"
	metrics "github.com/JMURv/auth-service/internal/observability/metrics/prometheus"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

// Auth requires a valid `Authorization: Bearer <jwt>` header and puts the
// caller's uid into the request context.
func Auth(au auth.Core) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				header := r.Header.Get("Authorization")
				token, found := strings.CutPrefix(header, config.TokenType+" ")
				if !found || strings.TrimSpace(token) == "" {
					utils.ErrResponse(w, http.StatusUnauthorized, hdl.ErrNoToken)
					return
				}

				claims, err := au.ParseClaims(r.Context(), strings.TrimSpace(token))
				if err != nil {
					utils.ErrResponse(w, http.StatusUnauthorized, hdl.ErrInvalidToken)
					return
				}

				uid, err := claims.UID()
				if err != nil {
					utils.ErrResponse(w, http.StatusUnauthorized, hdl.ErrInvalidToken)
					return
				}

				ctx := context.WithValue(r.Context(), config.UidKey, uid)
				next.ServeHTTP(w, r.WithContext(ctx))
			},
		)
	}
}

// Device records client metadata (ip, user agent, device id) in the context.
func Device(proxies Proxies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				ctx := context.WithValue(r.Context(), config.IpKey, proxies.ClientIP(r))
				ctx = context.WithValue(ctx, config.UaKey, r.UserAgent())
				ctx = context.WithValue(ctx, config.DeviceIDKey, r.Header.Get(config.DeviceIDHeader))
				next.ServeHTTP(w, r.WithContext(ctx))
			},
		)
	}
}

// Proxies lists the peers whose forwarding headers are believed.
type Proxies []netip.Prefix

// ParseProxies accepts single addresses and CIDR ranges.
func ParseProxies(entries []string) (Proxies, error) {
	res := make(Proxies, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}

		if strings.Contains(e, "/") {
			prefix, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
			}
			res = append(res, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
		}
		addr = addr.Unmap()
		res = append(res, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return res, nil
}

func (p Proxies) trusts(addr netip.Addr) bool {
	for _, prefix := range p {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP returns the peer address. Forwarding headers are read only when
// the peer is a trusted proxy; X-Forwarded-For is walked from the right and
// the first hop that is not a trusted proxy wins.
func (p Proxies) ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	peer, err := netip.ParseAddr(host)
	if err != nil {
		return host
	}
	peer = peer.Unmap()
	if !p.trusts(peer) {
		return peer.String()
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		if hop = hop.Unmap(); !p.trusts(hop) {
			return hop.String()
		}
	}

	if realIP, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return realIP.Unmap().String()
	}
	return peer.String()
}

const DefaultRateLimit = 10

// RateLimit allows limit requests per window for every client ip. It fails
// open when the counter store is unavailable.
func RateLimit(
	cache ctrl.CacheService,
	proxies Proxies,
	prefix string,
	limit int64,
	window time.Duration,
) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if window <= 0 {
		window = time.Minute
	}

	return func(next http.Handler) http.Handler {
		if cache == nil {
			return next
		}

		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				key := fmt.Sprintf("ratelimit:%s:%s", prefix, proxies.ClientIP(r))
				n, err := cache.Incr(r.Context(), key, window)
				if err != nil {
					zap.L().Warn(
						"rate limit counter unavailable",
						zap.String("key", key),
						zap.Error(err),
					)
					next.ServeHTTP(w, r)
					return
				}

				if n > limit {
					w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
					utils.ErrResponse(w, http.StatusTooManyRequests, hdl.ErrTooManyRefreshes)
					return
				}
				next.ServeHTTP(w, r)
			},
		)
	}
}

type LoggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func NewLoggingResponseWriter(w http.ResponseWriter) *LoggingResponseWriter {
	return &LoggingResponseWriter{w, http.StatusOK}
}

func (lrw *LoggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			s := time.Now()
			op := fmt.Sprintf("%s %s", r.Method, r.URL.Path)

			lrw := NewLoggingResponseWriter(w)
			next.ServeHTTP(lrw, r)
			metrics.ObserveRequest(time.Since(s), lrw.statusCode, op)
		},
	)
}

func Logger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				start := time.Now()
				lrw := NewLoggingResponseWriter(w)
				logger.Debug(
					"-->",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote", r.RemoteAddr),
				)

				next.ServeHTTP(lrw, r)

				logger.Info(
					"<--",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", lrw.statusCode),
					zap.Duration("duration", time.Since(start)),
					zap.String("remote", r.RemoteAddr),
				)
			},
		)
	}
}

func OT(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			span, ctx := opentracing.StartSpanFromContext(r.Context(), fmt.Sprintf("%s %s", r.Method, r.URL.Path))
			defer span.Finish()

			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}
