package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// slowQueryThreshold is the duration after which a query is logged as slow
const slowQueryThreshold = 250 * time.Millisecond

// NewPostgresConnection opens a lib/pq connection pool and wraps it in a bun DB
func NewPostgresConnection(databaseURL string) (*bun.DB, error) {
	sqldb, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqldb.SetMaxOpenConns(25)
	sqldb.SetMaxIdleConns(5)
	sqldb.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return Wrap(sqldb), nil
}

// Wrap builds a bun DB over an existing connection pool with the query hook installed
func Wrap(sqldb *sql.DB) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	db.AddQueryHook(NewQueryHook(slowQueryThreshold))
	return db
}
