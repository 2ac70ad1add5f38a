package store

import (
	"context"
	"errors"
	"fmt"

	"portfolio/internal/content"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// queries implements every row operation against a querier. The pool-backed
// Gateway exposes its read half, transactions expose all of it.
type queries struct {
	q querier
}

// Gateway is the Postgres implementation of content.Gateway.
type Gateway struct {
	queries
	pool *pgxpool.Pool
}

func NewGateway(pool *pgxpool.Pool) *Gateway {
	return &Gateway{queries: queries{q: pool}, pool: pool}
}

func (g *Gateway) InTx(ctx context.Context, fn func(tx content.Tx) error) error {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(&queries{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (g *Gateway) Ping(ctx context.Context) error {
	return g.pool.Ping(ctx)
}

// classify turns constraint violations into engine errors and wraps the rest.
func classify(err error, action string) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &content.ConflictError{Message: fmt.Sprintf("%s: duplicate value violates %s", action, pgErr.ConstraintName)}
	}

	return fmt.Errorf("failed to %s: %w", action, err)
}

var (
	_ content.Gateway = (*Gateway)(nil)
	_ content.Tx      = (*queries)(nil)
)
