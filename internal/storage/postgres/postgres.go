// postgres предоставляет реализацию storage.ProfilesStorage на базе PostgreSQL.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pribylovaa/profile-service/internal/storage"
)

//go:embed schema.sql
var schemaSQL string

// PoolOptions - размеры пула соединений. Нулевые значения оставляют дефолты pgxpool.
type PoolOptions struct {
	MaxConns int32
	MinConns int32
}

type ProfilesStorage struct {
	db *pgxpool.Pool
}

// New создает и инициализирует пул соединений к PostgreSQL.
func New(ctx context.Context, dbURL string, opts PoolOptions) (*ProfilesStorage, error) {
	const op = "storage/postgres/New"

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}

	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &ProfilesStorage{db: db}, nil
}

// EnsureSchema идемпотентно создаёт таблицы и индексы (CREATE ... IF NOT EXISTS).
// Вызывается один раз при старте, до приёма запросов.
func (s *ProfilesStorage) EnsureSchema(ctx context.Context) error {
	const op = "storage/postgres/EnsureSchema"

	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return wrapErr(op, err)
	}

	return nil
}

// Ping проверяет доступность БД (readiness).
func (s *ProfilesStorage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close закрывает пул соединений.
// Должен вызываться при остановке приложения.
func (s *ProfilesStorage) Close() {
	s.db.Close()
}

// wrapErr классифицирует ошибки драйвера в sentinel-ошибки storage,
// сохраняя исходную ошибку в цепочке.
func wrapErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return fmt.Errorf("%s: %w: %w", op, storage.ErrTimeout, err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%s: %w: %w", op, storage.ErrUnavailable, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.ProfilesStorage = (*ProfilesStorage)(nil)
