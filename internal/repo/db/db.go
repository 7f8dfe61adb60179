package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/JMURv/auth-service/internal/config"
	"github.com/JMURv/auth-service/internal/repo"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

type Repository struct {
	conn    *sqlx.DB
	q       sqlx.ExtContext
	timeout time.Duration
}

func New(conf config.Config) *Repository {
	conn, err := sqlx.Open(
		"pgx", fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=disable",
			conf.DB.User,
			conf.DB.Password,
			conf.DB.Host,
			conf.DB.Port,
			conf.DB.Database,
		),
	)
	if err != nil {
		zap.L().Fatal("failed to connect to the database", zap.Error(err))
	}

	if err = conn.Ping(); err != nil {
		zap.L().Fatal("failed to ping the database", zap.Error(err))
	}

	if err = applyMigrations(conn.DB, conf); err != nil {
		zap.L().Fatal("failed to apply migrations", zap.Error(err))
	}

	return &Repository{conn: conn, q: conn, timeout: conf.DB.QueryTimeout}
}

// InTx runs fn against a TokenStore bound to a single transaction. The unit
// commits only when fn returns nil.
func (r *Repository) InTx(ctx context.Context, fn func(tx repo.TokenStore) error) error {
	const op = "auth.InTx.repo"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	tx, err := r.conn.BeginTxx(ctx, nil)
	if err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to begin transaction", zap.String("op", op), zap.Error(err))
		return err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			zap.L().Warn("failed to rollback transaction", zap.String("op", op), zap.Error(err))
		}
	}()

	if err = fn(&Repository{conn: r.conn, q: tx, timeout: r.timeout}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to commit transaction", zap.String("op", op), zap.Error(err))
		return err
	}

	return nil
}

func (r *Repository) Close(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		done <- r.conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
