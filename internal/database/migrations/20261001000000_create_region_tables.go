package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating categories and cities tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS categories (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(50) NOT NULL UNIQUE
				);
				CREATE TABLE IF NOT EXISTS cities (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(50) NOT NULL UNIQUE
				);
			`); err != nil {
				return fmt.Errorf("failed to create region tables: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				INSERT INTO categories (name) VALUES
					('Sports'), ('Music'), ('Study'), ('Food'), ('Travel'), ('Games'), ('Culture')
				ON CONFLICT (name) DO NOTHING;
				INSERT INTO cities (name) VALUES
					('Seoul'), ('Busan'), ('Incheon'), ('Daegu'), ('Daejeon'), ('Gwangju'), ('Ulsan')
				ON CONFLICT (name) DO NOTHING;
			`); err != nil {
				return fmt.Errorf("failed to seed region tables: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping categories and cities tables...")

		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS cities; DROP TABLE IF EXISTS categories;`); err != nil {
			return fmt.Errorf("failed to drop region tables: %w", err)
		}
		return nil
	})
}
