//go:build integration

package http

import (
	"context"
	"database/sql"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JMURv/auth-service/internal/auth"
	"github.com/JMURv/auth-service/internal/cache/redis"
	"github.com/JMURv/auth-service/internal/config"
	"github.com/JMURv/auth-service/internal/ctrl"
	hdl "github.com/JMURv/auth-service/internal/hdl/http"
	"github.com/JMURv/auth-service/internal/repo/db"
	"github.com/JMURv/auth-service/internal/smtp"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const getTables = `
SELECT tablename 
FROM pg_tables 
WHERE schemaname = 'public' AND tablename <> 'schema_migrations';
`

const (
	pgUser = "app_owner"
	pgPass = "app_password"
	pgDB   = "auth_db"
)

var rootDir = filepath.Join("..", "..", "..")

func getRedis(t *testing.T) (testcontainers.Container, string) {
	ctx := context.Background()
	redisC, err := testcontainers.GenericContainer(
		ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections"),
			},
			Started: true,
		},
	)
	require.NoError(t, err)

	addr, err := redisC.Endpoint(ctx, "")
	require.NoError(t, err)

	zap.L().Info("Redis container is ready", zap.String("addr", addr))
	return redisC, addr
}

func getPostgres(t *testing.T) (*postgres.PostgresContainer, string, int) {
	ctx := context.Background()
	pgC, err := postgres.Run(
		ctx,
		"postgres:17.4-alpine",
		postgres.WithDatabase(pgDB),
		postgres.WithUsername(pgUser),
		postgres.WithPassword(pgPass),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgC.Host(ctx)
	require.NoError(t, err)

	port, err := pgC.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return pgC, host, port.Int()
}

func testConfig(pgHost string, pgPort int, redisAddr string) config.Config {
	conf := config.Config{ServiceName: "auth-svc-integration"}
	conf.DB = config.DBConfig{
		Host:         pgHost,
		Port:         pgPort,
		User:         pgUser,
		Password:     pgPass,
		Database:     pgDB,
		QueryTimeout: 5 * time.Second,
	}
	conf.Redis = config.RedisConfig{Addr: redisAddr}
	conf.Auth = config.AuthConfig{
		BcryptCost:      4,
		HashConcurrency: 4,
		JWT: config.JWTConfig{
			Secret:    "integration-secret",
			Issuer:    "auth-svc",
			Audience:  "auth-svc-clients",
			AccessTTL: 15 * time.Minute,
		},
		Refresh: config.RefreshConfig{
			TTL:         168 * time.Hour,
			GracePeriod: 120 * time.Second,
			RateLimit:   100,
			RateWindow:  time.Minute,
		},
		Login: config.LoginConfig{
			MaxAttempts:   5,
			Window:        15 * time.Minute,
			BlockDuration: 15 * time.Minute,
		},
	}
	return conf
}

func setupTestServer(t *testing.T) (*httptest.Server, func(t *testing.T)) {
	zap.ReplaceGlobals(zap.Must(zap.NewDevelopment()))

	_ = os.Setenv(
		"MIGRATIONS_PATH", filepath.ToSlash(
			filepath.Join(rootDir, "internal", "repo", "db", "migration"),
		),
	)

	redisC, redisAddr := getRedis(t)
	pgC, pgHost, pgPort := getPostgres(t)
	conf := testConfig(pgHost, pgPort, redisAddr)

	au := auth.New(conf)
	cache := redis.New(conf.Redis)
	repo := db.New(conf)
	svc := ctrl.New(au, repo, cache, repo, smtp.New(conf), conf)
	h := hdl.New(au, svc, cache, conf)

	ts := httptest.NewServer(h)

	cleanupFunc := func(t *testing.T) {
		ts.Close()
		truncate(t, conf)

		if err := cache.Close(); err != nil {
			zap.L().Debug("Error while closing cache", zap.Error(err))
		}
		if err := repo.Close(context.Background()); err != nil {
			zap.L().Debug("Error while closing repository", zap.Error(err))
		}

		testcontainers.CleanupContainer(t, redisC)
		testcontainers.CleanupContainer(t, pgC)
	}

	return ts, cleanupFunc
}

func truncate(t *testing.T, conf config.Config) {
	conn, err := sql.Open(
		"pgx", fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=disable",
			conf.DB.User,
			conf.DB.Password,
			conf.DB.Host,
			conf.DB.Port,
			conf.DB.Database,
		),
	)
	require.NoError(t, err)
	defer func() {
		if err := conn.Close(); err != nil {
			zap.L().Debug("Error while closing connection", zap.Error(err))
		}
	}()

	rows, err := conn.Query(getTables)
	require.NoError(t, err)
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Debug("Error while closing rows", zap.Error(err))
		}
	}(rows)

	var tables []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		tables = append(tables, name)
	}

	if len(tables) == 0 {
		return
	}

	_, err = conn.Exec(fmt.Sprintf("TRUNCATE TABLE %v RESTART IDENTITY CASCADE;", strings.Join(tables, ", ")))
	require.NoError(t, err)
}
