package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating reviews table...")

		// Reviews go with their event when a cascade removes it.
		if _, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS reviews (
				id BIGSERIAL PRIMARY KEY,
				event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
				user_id BIGINT NOT NULL REFERENCES users(id),
				score INT NOT NULL CHECK (score BETWEEN 1 AND 5),
				title VARCHAR(100) NOT NULL,
				description TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CONSTRAINT reviews_event_user_unique UNIQUE (event_id, user_id)
			);
			CREATE INDEX IF NOT EXISTS idx_reviews_user_id ON reviews(user_id);
		`); err != nil {
			return fmt.Errorf("failed to create reviews table: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping reviews table...")

		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS reviews;`); err != nil {
			return fmt.Errorf("failed to drop reviews table: %w", err)
		}
		return nil
	})
}
