package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating event tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS events (
					id BIGSERIAL PRIMARY KEY,
					host_id BIGINT NOT NULL REFERENCES users(id),
					club_id BIGINT REFERENCES clubs(id),
					category_id BIGINT NOT NULL REFERENCES categories(id),
					title VARCHAR(100) NOT NULL,
					description TEXT NOT NULL,
					start_time TIMESTAMPTZ NOT NULL,
					end_time TIMESTAMPTZ NOT NULL,
					max_people INT NOT NULL CHECK (max_people > 0),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT events_window CHECK (start_time < end_time)
				);
				CREATE INDEX IF NOT EXISTS idx_events_host_id ON events(host_id);
				CREATE INDEX IF NOT EXISTS idx_events_club_id ON events(club_id);
			`); err != nil {
				return fmt.Errorf("failed to create events table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS event_joins (
					event_id BIGINT NOT NULL REFERENCES events(id),
					user_id BIGINT NOT NULL REFERENCES users(id),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (event_id, user_id)
				);
				CREATE INDEX IF NOT EXISTS idx_event_joins_user_id ON event_joins(user_id);

				CREATE TABLE IF NOT EXISTS event_cities (
					event_id BIGINT NOT NULL REFERENCES events(id),
					city_id BIGINT NOT NULL REFERENCES cities(id),
					PRIMARY KEY (event_id, city_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create event relation tables: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping event tables...")

		if _, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS event_cities;
			DROP TABLE IF EXISTS event_joins;
			DROP TABLE IF EXISTS events;
		`); err != nil {
			return fmt.Errorf("failed to drop event tables: %w", err)
		}
		return nil
	})
}
