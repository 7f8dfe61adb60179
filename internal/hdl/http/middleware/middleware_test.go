package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JMURv/auth-service/internal/auth"
	"github.com/JMURv/auth-service/internal/config"
	md "github.com/JMURv/auth-service/internal/models"
	"github.com/JMURv/auth-service/tests/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testAuth() *auth.Auth {
	conf := config.Config{}
	conf.Auth.BcryptCost = 4
	conf.Auth.JWT = config.JWTConfig{
		Secret:    "secret",
		Issuer:    "auth-svc",
		Audience:  "clients",
		AccessTTL: time.Minute,
	}
	return auth.New(conf)
}

func TestAuth(t *testing.T) {
	au := testAuth()
	uid := uuid.New()
	token, err := au.NewAccessToken(context.Background(), &md.User{ID: uid, Role: "user"}, md.AuthzClaims{})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "Valid", header: "Bearer " + token, status: http.StatusOK},
		{name: "Missing header", header: "", status: http.StatusUnauthorized},
		{name: "Wrong scheme", header: "Basic " + token, status: http.StatusUnauthorized},
		{name: "Invalid token", header: "Bearer garbage", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				var got uuid.UUID
				next := http.HandlerFunc(
					func(w http.ResponseWriter, r *http.Request) {
						got, _ = r.Context().Value(config.UidKey).(uuid.UUID)
						w.WriteHeader(http.StatusOK)
					},
				)

				req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
				if tt.header != "" {
					req.Header.Set("Authorization", tt.header)
				}
				w := httptest.NewRecorder()
				Auth(au)(next).ServeHTTP(w, req)

				assert.Equal(t, tt.status, w.Code)
				if tt.status == http.StatusOK {
					assert.Equal(t, uid, got)
				}
			},
		)
	}
}

func TestDevice(t *testing.T) {
	var ip, ua, deviceID string
	next := http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			ip, _ = r.Context().Value(config.IpKey).(string)
			ua, _ = r.Context().Value(config.UaKey).(string)
			deviceID, _ = r.Context().Value(config.DeviceIDKey).(string)
		},
	)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	req.Header.Set("User-Agent", "agent")
	req.Header.Set(config.DeviceIDHeader, "device-1")
	Device(nil)(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "192.0.2.1", ip)
	assert.Equal(t, "agent", ua)
	assert.Equal(t, "device-1", deviceID)

	req.Header.Set("X-Real-IP", "203.0.113.7")
	Device(nil)(next).ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "192.0.2.1", ip)

	proxies, err := ParseProxies([]string{"192.0.2.0/24"})
	require.NoError(t, err)
	Device(proxies)(next).ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "203.0.113.7", ip)
}

func TestParseProxies(t *testing.T) {
	proxies, err := ParseProxies([]string{"10.0.0.0/8", " 192.0.2.1 ", "", "::ffff:198.51.100.1"})
	require.NoError(t, err)
	require.Len(t, proxies, 3)
	assert.Equal(t, "10.0.0.0/8", proxies[0].String())
	assert.Equal(t, "192.0.2.1/32", proxies[1].String())
	assert.Equal(t, "198.51.100.1/32", proxies[2].String())

	_, err = ParseProxies([]string{"not-an-ip"})
	assert.Error(t, err)

	_, err = ParseProxies([]string{"10.0.0.0/33"})
	assert.Error(t, err)
}

func TestProxies_ClientIP(t *testing.T) {
	trusted, err := ParseProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		proxies  Proxies
		remote   string
		headers  map[string]string
		expected string
	}{
		{
			name:     "No proxies ignores X-Real-IP",
			remote:   "203.0.113.7:5555",
			headers:  map[string]string{"X-Real-IP": "1.1.1.1"},
			expected: "203.0.113.7",
		},
		{
			name:     "No proxies ignores X-Forwarded-For",
			remote:   "203.0.113.7:5555",
			headers:  map[string]string{"X-Forwarded-For": "2.2.2.2"},
			expected: "203.0.113.7",
		},
		{
			name:     "Untrusted peer ignores headers",
			proxies:  trusted,
			remote:   "203.0.113.7:5555",
			headers:  map[string]string{"X-Real-IP": "1.1.1.1", "X-Forwarded-For": "2.2.2.2"},
			expected: "203.0.113.7",
		},
		{
			name:     "Trusted peer uses the rightmost untrusted hop",
			proxies:  trusted,
			remote:   "10.0.0.2:5555",
			headers:  map[string]string{"X-Forwarded-For": "6.6.6.6, 198.51.100.4, 10.0.0.9"},
			expected: "198.51.100.4",
		},
		{
			name:     "Trusted peer falls back to X-Real-IP",
			proxies:  trusted,
			remote:   "10.0.0.2:5555",
			headers:  map[string]string{"X-Real-IP": "198.51.100.4"},
			expected: "198.51.100.4",
		},
		{
			name:     "Trusted peer with garbage headers",
			proxies:  trusted,
			remote:   "10.0.0.2:5555",
			headers:  map[string]string{"X-Real-IP": "nope", "X-Forwarded-For": "nope"},
			expected: "10.0.0.2",
		},
		{
			name:     "Mapped IPv4 peer",
			remote:   "[::ffff:203.0.113.7]:5555",
			expected: "203.0.113.7",
		},
	}

	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
				req.RemoteAddr = tt.remote
				for k, v := range tt.headers {
					req.Header.Set(k, v)
				}
				assert.Equal(t, tt.expected, tt.proxies.ClientIP(req))
			},
		)
	}
}

func TestRateLimit(t *testing.T) {
	mock := gomock.NewController(t)
	defer mock.Finish()

	const key = "ratelimit:refresh:192.0.2.1"
	mcache := mocks.NewMockCacheService(mock)

	tests := []struct {
		name   string
		expect func()
		status int
	}{
		{
			name: "Under limit",
			expect: func() {
				mcache.EXPECT().Incr(gomock.Any(), key, time.Minute).Return(int64(10), nil)
			},
			status: http.StatusOK,
		},
		{
			name: "Over limit",
			expect: func() {
				mcache.EXPECT().Incr(gomock.Any(), key, time.Minute).Return(int64(11), nil)
			},
			status: http.StatusTooManyRequests,
		},
		{
			name: "Counter unavailable fails open",
			expect: func() {
				mcache.EXPECT().Incr(gomock.Any(), key, time.Minute).Return(int64(0), errors.New("down"))
			},
			status: http.StatusOK,
		},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RateLimit(mcache, nil, "refresh", 10, time.Minute)(next)

	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				tt.expect()
				req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
				req.RemoteAddr = "192.0.2.1:1234"
				req.Header.Set("X-Real-IP", "1.1.1.1")
				w := httptest.NewRecorder()
				h.ServeHTTP(w, req)

				assert.Equal(t, tt.status, w.Code)
				if tt.status == http.StatusTooManyRequests {
					assert.Equal(t, "60", w.Header().Get("Retry-After"))
					assert.Contains(t, w.Body.String(), "Too many refresh requests. Please try again later.")
				}
			},
		)
	}
}
