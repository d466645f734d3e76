package database

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schema string

type PostgresDB struct {
	DB         *sqlx.DB
	SqlBuilder sq.StatementBuilderType
}

type Options struct {
	MaxOpenConns int
}

func New(URL string, opts Options) (*PostgresDB, func(), error) {
	db, cleanup, err := initDB(URL, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	pgDB := &PostgresDB{
		DB:         db,
		SqlBuilder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}

	if err := pgDB.EnsureSchema(context.Background()); err != nil {
		cleanup()
		return nil, nil, err
	}

	return pgDB, cleanup, nil
}

func initDB(URL string, opts Options) (*sqlx.DB, func(), error) {
	db, err := sqlx.Open("postgres", URL)
	if err != nil {
		return nil, nil, err
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxOpenConns / 2)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	cleanup := func() {
		_ = db.Close()
	}
	db.Mapper = NewMapper()

	return db, cleanup, nil
}

// NewMapper maps struct fields to columns through their json tags.
func NewMapper() *reflectx.Mapper {
	return reflectx.NewMapper("json")
}

// EnsureSchema creates the tables used by the application. Safe to call repeatedly.
func (p *PostgresDB) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := p.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
