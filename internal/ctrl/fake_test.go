package ctrl

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JMURv/auth-service/internal/auth"
	"github.com/JMURv/auth-service/internal/config"
	"github.com/JMURv/auth-service/internal/dto"
	md "github.com/JMURv/auth-service/internal/models"
	"github.com/JMURv/auth-service/internal/repo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// memState is an in-memory stand-in for the database. It is not safe for
// concurrent use; memRepo serializes access to it.
type memState struct {
	users    map[uuid.UUID]md.User
	tokens   map[uuid.UUID]md.RefreshToken
	attempts []md.FailedLoginAttempt

	conflictOnce bool
}

func (s *memState) clone() *memState {
	c := &memState{
		users:        make(map[uuid.UUID]md.User, len(s.users)),
		tokens:       make(map[uuid.UUID]md.RefreshToken, len(s.tokens)),
		attempts:     append([]md.FailedLoginAttempt(nil), s.attempts...),
		conflictOnce: s.conflictOnce,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.tokens {
		c.tokens[k] = v
	}
	return c
}

func (s *memState) FindByDigest(_ context.Context, digest string) (*md.RefreshToken, error) {
	for _, t := range s.tokens {
		if t.TokenDigest == digest {
			return &t, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *memState) FindByPreviousDigest(_ context.Context, digest string) (*md.RefreshToken, error) {
	for _, t := range s.tokens {
		if t.PreviousTokenDigest != nil && *t.PreviousTokenDigest == digest {
			return &t, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *memState) FindFamily(_ context.Context, familyID uuid.UUID) ([]*md.RefreshToken, error) {
	res := make([]*md.RefreshToken, 0)
	for _, t := range s.tokens {
		if t.FamilyID == familyID {
			res = append(res, &t)
		}
	}
	for i := 1; i < len(res); i++ {
		for j := i; j > 0 && res[j].Generation < res[j-1].Generation; j-- {
			res[j], res[j-1] = res[j-1], res[j]
		}
	}
	return res, nil
}

func (s *memState) Insert(_ context.Context, t *md.RefreshToken) error {
	for _, cur := range s.tokens {
		if cur.TokenDigest == t.TokenDigest {
			return repo.ErrAlreadyExists
		}
		if cur.FamilyID == t.FamilyID && cur.Generation == t.Generation {
			return repo.ErrAlreadyExists
		}
	}
	s.tokens[t.ID] = *t
	return nil
}

func (s *memState) MarkUsed(_ context.Context, id uuid.UUID, at time.Time) error {
	if s.conflictOnce {
		s.conflictOnce = false
		return repo.ErrConflict
	}

	t, ok := s.tokens[id]
	if !ok || t.UsedAt != nil {
		return repo.ErrConflict
	}
	t.UsedAt = &at
	s.tokens[id] = t
	return nil
}

func (s *memState) Revoke(_ context.Context, id uuid.UUID, reason md.RevokeReason, at time.Time) error {
	t, ok := s.tokens[id]
	if !ok {
		return repo.ErrNotFound
	}
	if t.RevokedAt == nil {
		t.RevokedAt, t.RevokeReason = &at, &reason
		s.tokens[id] = t
	}
	return nil
}

func (s *memState) revokeWhere(match func(md.RefreshToken) bool, reason md.RevokeReason, at time.Time) int64 {
	var n int64
	for id, t := range s.tokens {
		if t.RevokedAt == nil && match(t) {
			t.RevokedAt, t.RevokeReason = &at, &reason
			s.tokens[id] = t
			n++
		}
	}
	return n
}

func (s *memState) RevokeFamily(
	_ context.Context,
	familyID uuid.UUID,
	reason md.RevokeReason,
	at time.Time,
) (int64, error) {
	return s.revokeWhere(func(t md.RefreshToken) bool { return t.FamilyID == familyID }, reason, at), nil
}

func (s *memState) GetUserByID(_ context.Context, id uuid.UUID) (*md.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (s *memState) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	u, ok := s.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.LastLoginAt = &at
	s.users[id] = u
	return nil
}

type memRepo struct {
	mu       sync.Mutex
	st       *memState
	countErr error
}

func newMemRepo() *memRepo {
	return &memRepo{
		st: &memState{
			users:  make(map[uuid.UUID]md.User),
			tokens: make(map[uuid.UUID]md.RefreshToken),
		},
	}
}

func (r *memRepo) InTx(ctx context.Context, fn func(tx repo.TokenStore) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	work := r.st.clone()
	if err := fn(work); err != nil {
		// a conflict consumes the injected failure even though the unit rolls back
		r.st.conflictOnce = work.conflictOnce
		return err
	}
	r.st = work
	return nil
}

func (r *memRepo) CreateRefreshToken(ctx context.Context, t *md.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.Insert(ctx, t)
}

func (r *memRepo) RevokeUserTokens(
	_ context.Context,
	uid uuid.UUID,
	reason md.RevokeReason,
	at time.Time,
) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.revokeWhere(func(t md.RefreshToken) bool { return t.UserID == uid }, reason, at), nil
}

func (r *memRepo) DeleteExpiredTokens(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, t := range r.st.tokens {
		if t.ExpiresAt.Before(before) {
			delete(r.st.tokens, id)
			n++
		}
	}
	return n, nil
}

func (r *memRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*md.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.GetUserByID(ctx, id)
}

func (r *memRepo) GetUserByEmail(_ context.Context, email string) (*md.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.st.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memRepo) CreateUser(_ context.Context, u *md.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cur := range r.st.users {
		if strings.EqualFold(cur.Email, u.Email) {
			return repo.ErrAlreadyExists
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.st.users[u.ID] = *u
	return nil
}

func (r *memRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.UpdateLastLogin(ctx, id, at)
}

func (r *memRepo) CountFailedAttempts(_ context.Context, email, ip string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.countErr != nil {
		return 0, r.countErr
	}

	n := 0
	for _, a := range r.st.attempts {
		if a.Email == email && a.IPAddress == ip && !a.AttemptedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) CreateFailedAttempt(_ context.Context, a *md.FailedLoginAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a.ID = int64(len(r.st.attempts) + 1)
	r.st.attempts = append(r.st.attempts, *a)
	return nil
}

func (r *memRepo) DeleteFailedAttempts(_ context.Context, email, ip string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.st.attempts[:0]
	for _, a := range r.st.attempts {
		if a.Email != email || a.IPAddress != ip {
			kept = append(kept, a)
		}
	}
	r.st.attempts = kept
	return nil
}

func (r *memRepo) DeleteStaleAttempts(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	kept := r.st.attempts[:0]
	for _, a := range r.st.attempts {
		if a.AttemptedAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, a)
	}
	r.st.attempts = kept
	return n, nil
}

func (r *memRepo) token(digest string) md.RefreshToken {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, _ := r.st.FindByDigest(context.Background(), digest)
	if t == nil {
		return md.RefreshToken{}
	}
	return *t
}

func (r *memRepo) family(familyID uuid.UUID) []*md.RefreshToken {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, _ := r.st.FindFamily(context.Background(), familyID)
	return res
}

func (r *memRepo) failedAttempts(email string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, a := range r.st.attempts {
		if a.Email == email {
			n++
		}
	}
	return n
}

func (r *memRepo) setActive(id uuid.UUID, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.st.users[id]
	u.IsActive = active
	r.st.users[id] = u
}

func (r *memRepo) deleteToken(digest string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.st.tokens {
		if t.TokenDigest == digest {
			delete(r.st.tokens, id)
		}
	}
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type stubClaims struct {
	claims md.AuthzClaims
	calls  int
}

func (s *stubClaims) ForUser(context.Context, uuid.UUID) (md.AuthzClaims, error) {
	s.calls++
	return s.claims, nil
}

const (
	testEmail    = "alice@example.com"
	testPassword = "Sup3r$ecret"
	testIP       = "10.0.0.1"
)

var testDevice = &dto.DeviceRequest{IP: testIP, UA: "test-agent", DeviceID: "device-1"}

func testConfig() config.Config {
	conf := config.Config{Jaeger: &config.JaegerConfig{}}
	conf.Auth.BcryptCost = 4
	conf.Auth.HashConcurrency = 4
	conf.Auth.JWT = config.JWTConfig{
		Secret:    "test-secret",
		Issuer:    "auth-svc",
		Audience:  "auth-svc-clients",
		AccessTTL: 15 * time.Minute,
	}
	conf.Auth.Refresh = config.RefreshConfig{
		TTL:         7 * 24 * time.Hour,
		GracePeriod: 120 * time.Second,
	}
	conf.Auth.Login = config.LoginConfig{
		MaxAttempts:   5,
		Window:        15 * time.Minute,
		BlockDuration: 15 * time.Minute,
	}
	return conf
}

type fixture struct {
	ctrl  *Controller
	repo  *memRepo
	clock *testClock
	au    *auth.Auth
	user  *md.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conf := testConfig()
	au := auth.New(conf)
	r := newMemRepo()
	clk := &testClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}

	c := New(au, r, nil, nil, nil, conf)
	c.now = clk.Now

	hash, err := au.Hash(context.Background(), testPassword)
	require.NoError(t, err)

	u := &md.User{
		ID:        uuid.New(),
		Email:     testEmail,
		Password:  hash,
		FirstName: "Alice",
		LastName:  "Liddell",
		Role:      config.DefaultRole,
		IsActive:  true,
	}
	require.NoError(t, r.CreateUser(context.Background(), u))

	return &fixture{ctrl: c, repo: r, clock: clk, au: au, user: u}
}

func (f *fixture) login(t *testing.T) *dto.TokenResponse {
	t.Helper()

	res, err := f.ctrl.Login(
		context.Background(), testDevice, &dto.LoginRequest{
			Email:    testEmail,
			Password: testPassword,
		},
	)
	require.NoError(t, err)
	require.NotEmpty(t, res.RefreshToken)
	return res
}

func (f *fixture) refresh(token string) (*dto.TokenResponse, error) {
	return f.ctrl.Refresh(context.Background(), testDevice, &dto.RefreshRequest{Refresh: token})
}
