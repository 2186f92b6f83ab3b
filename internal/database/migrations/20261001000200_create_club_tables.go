package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating club tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS clubs (
					id BIGSERIAL PRIMARY KEY,
					lead_id BIGINT NOT NULL REFERENCES users(id),
					name VARCHAR(100) NOT NULL,
					description TEXT NOT NULL,
					max_people INT NOT NULL CHECK (max_people > 0),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					deleted_at TIMESTAMPTZ
				);
				CREATE INDEX IF NOT EXISTS idx_clubs_lead_id ON clubs(lead_id);
			`); err != nil {
				return fmt.Errorf("failed to create clubs table: %w", err)
			}

			// Both tables key on (club_id, user_id) so concurrent requests collapse into one row.
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS club_joins (
					club_id BIGINT NOT NULL REFERENCES clubs(id),
					user_id BIGINT NOT NULL REFERENCES users(id),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (club_id, user_id)
				);
				CREATE INDEX IF NOT EXISTS idx_club_joins_user_id ON club_joins(user_id);

				CREATE TABLE IF NOT EXISTS club_waitings (
					club_id BIGINT NOT NULL REFERENCES clubs(id),
					user_id BIGINT NOT NULL REFERENCES users(id),
					status VARCHAR(10) NOT NULL DEFAULT 'PENDING'
						CHECK (status IN ('PENDING', 'APPROVED', 'REJECTED')),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (club_id, user_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create club membership tables: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping club tables...")

		if _, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS club_waitings;
			DROP TABLE IF EXISTS club_joins;
			DROP TABLE IF EXISTS clubs;
		`); err != nil {
			return fmt.Errorf("failed to drop club tables: %w", err)
		}
		return nil
	})
}
