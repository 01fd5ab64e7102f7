// Package pg implementa el Store sobre PostgreSQL, como alternativa al
// driver mongo. Mismo contrato y misma semántica de unicidad: los
// índices parciales de la migración hacen el trabajo y una violación
// (23505) se traduce a store.ErrDuplicate.
package pg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trackshare/trackauth/internal/domain/types"
	"github.com/trackshare/trackauth/internal/store"
	migrations "github.com/trackshare/trackauth/migrations/postgres"
)

const uniqueViolation = "23505"

// Store implementa store.Store sobre un pgxpool.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// Pool expone el pool subyacente para el collector de métricas.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Open conecta y aplica las migraciones embebidas.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg: dsn vacío")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// migrate aplica los .sql embebidos en orden lexicográfico. Las
// migraciones son idempotentes (IF NOT EXISTS), así que no hace falta
// tabla de versiones para este esquema.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("pg: read migrations: %w", err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		sql, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return fmt.Errorf("pg: read migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("pg: apply migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) FindByProviderID(ctx context.Context, provider, providerID string) (*types.User, error) {
	return s.scanOne(ctx,
		`SELECT id, name, email, password, provider, provider_id, created_at
		   FROM users WHERE provider = $1 AND provider_id = $2`,
		provider, providerID)
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*types.User, error) {
	return s.scanOne(ctx,
		`SELECT id, name, email, password, provider, provider_id, created_at
		   FROM users WHERE email = $1`,
		email)
}

func (s *Store) scanOne(ctx context.Context, sql string, args ...any) (*types.User, error) {
	var (
		u          types.User
		password   *string
		provider   *string
		providerID *string
	)
	err := s.pool.QueryRow(ctx, sql, args...).
		Scan(&u.ID, &u.Name, &u.Email, &password, &provider, &providerID, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pg: query: %w", err)
	}
	if password != nil {
		u.Password = *password
	}
	if provider != nil {
		u.Provider = *provider
	}
	if providerID != nil {
		u.ProviderID = *providerID
	}
	return &u, nil
}

func (s *Store) Insert(ctx context.Context, u *types.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password, provider, provider_id, created_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7)`,
		u.ID, u.Name, u.Email, u.Password, u.Provider, u.ProviderID, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return store.ErrDuplicate
		}
		return fmt.Errorf("pg: insert: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}
