package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// txKey - ключ транзакции в контексте.
type txKey struct{}

// querier - общий интерфейс pgxpool.Pool и pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// q возвращает транзакцию из контекста, если она есть, иначе пул.
func (s *ProfilesStorage) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}

	return s.db
}

// WithinTx выполняет fn в одной транзакции: commit при успехе,
// rollback при ошибке или панике. Вложенный вызов переиспользует внешнюю транзакцию.
func (s *ProfilesStorage) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	const op = "storage/postgres/WithinTx"

	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return wrapErr(op, err)
	}

	// Rollback должен пройти даже при истёкшем контексте запроса.
	rbCtx := context.WithoutCancel(ctx)

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(rbCtx)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(rbCtx); rbErr != nil {
			return fmt.Errorf("%s: rollback failed: %v: %w", op, rbErr, err)
		}

		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return wrapErr(op, err)
	}

	return nil
}
