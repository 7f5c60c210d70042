package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/remind101/migrate"

	"github.com/Protryon/lib-rs-mirror-sub000/store"
	"github.com/Protryon/lib-rs-mirror-sub000/store/postgres/migrations"
)

var _ store.Store = (*Store)(nil)

// Store implements store.Store against a pgxpool.Pool.
//
// All exported Writer/Reader methods live in their own files; this file
// holds only construction, the write mutex, and Close.
type Store struct {
	pool *pgxpool.Pool
	mu   sync.RWMutex
}

// Options configures New.
type Options struct {
	ConnString     string
	ApplicationName string
	RunMigrations  bool
}

// New connects to Postgres, optionally runs migrations, and returns a Store.
//
// Grounded on claircore's libindex.initDB/initStore pair (libindex/init.go):
// a pgxpool.Pool for query traffic plus a separate database/sql connection,
// opened only long enough to run the remind101/migrate migrator, then closed.
func New(ctx context.Context, opts Options) (*Store, error) {
	pool, err := Connect(ctx, opts.ConnString, opts.ApplicationName)
	if err != nil {
		return nil, err
	}

	if opts.RunMigrations {
		if err := runMigrations(opts.ConnString); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return &Store{pool: pool}, nil
}

func runMigrations(connString string) error {
	cfg, err := pgx.ParseConfig(connString)
	if err != nil {
		return fmt.Errorf("failed to parse ConnString: %w", err)
	}
	db := sql.OpenDB(stdlib.GetConnector(*cfg))
	defer db.Close()

	migrator := migrate.NewPostgresMigrator(db)
	migrator.Table = migrations.MigrationTable
	if err := migrator.Exec(migrate.Up, migrations.Migrations...); err != nil {
		return fmt.Errorf("failed to perform migrations: %w", err)
	}
	return nil
}

// Close implements store.Store.
func (s *Store) Close(_ context.Context) error {
	s.pool.Close()
	return nil
}
