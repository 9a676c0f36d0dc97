package storage

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/aluiziolira/bookparse/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresConfig controls the connection pool used by PostgresStore.
type PostgresConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type pgxPool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	Close()
}

var _ RecordStore = (*PostgresStore)(nil)

// PostgresStore keeps records in a table keyed by UPC. The primary key makes
// concurrent appends safe without a client-side lock.
type PostgresStore struct {
	pool  pgxPool
	table string
}

// NewPostgresStore connects to Postgres and ensures the records table exists.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	store, err := NewPostgresStoreWithPool(pool, cfg.Table)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStoreWithPool builds a store from an existing pool.
func NewPostgresStoreWithPool(pool pgxPool, table string) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "books"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PostgresStore{pool: pool, table: table}, nil
}

// EnsureSchema creates the records table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL,
	upc TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	availability TEXT NOT NULL,
	price_excl_tax NUMERIC NOT NULL,
	tax NUMERIC NOT NULL
)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// Load returns all rows ordered by insertion.
func (s *PostgresStore) Load(ctx context.Context) ([]*models.Book, error) {
	query := fmt.Sprintf(
		"SELECT name, availability, upc, price_excl_tax::text, tax::text FROM %s ORDER BY id", s.table)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var books []*models.Book
	for rows.Next() {
		var (
			b          models.Book
			price, tax string
		)
		if err := rows.Scan(&b.Name, &b.Availability, &b.UPC, &price, &tax); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if b.PriceExclTax, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("decode price for %s: %w", b.UPC, err)
		}
		if b.Tax, err = decimal.NewFromString(tax); err != nil {
			return nil, fmt.Errorf("decode tax for %s: %w", b.UPC, err)
		}
		books = append(books, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return books, nil
}

// Append inserts book, ignoring rows whose UPC already exists.
func (s *PostgresStore) Append(ctx context.Context, book *models.Book) (bool, error) {
	if err := book.Validate(); err != nil {
		return false, fmt.Errorf("append record: %w", err)
	}
	query := fmt.Sprintf(`INSERT INTO %s (upc, name, availability, price_excl_tax, tax)
VALUES ($1, $2, $3, $4::numeric, $5::numeric)
ON CONFLICT (upc) DO NOTHING`, s.table)

	tag, err := s.pool.Exec(ctx, query,
		book.UPC,
		book.Name,
		book.Availability,
		book.PriceExclTax.String(),
		book.Tax.String(),
	)
	if err != nil {
		return false, fmt.Errorf("insert record %s: %w", book.UPC, err)
	}
	return tag.RowsAffected() == 1, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
