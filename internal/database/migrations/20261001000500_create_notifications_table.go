package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating notifications table...")

		if _, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS notifications (
				id BIGSERIAL PRIMARY KEY,
				recipient_id BIGINT NOT NULL REFERENCES users(id),
				type VARCHAR(30) NOT NULL,
				message TEXT NOT NULL,
				is_read BOOLEAN NOT NULL DEFAULT FALSE,
				related_entity_type VARCHAR(20),
				related_entity_id BIGINT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, is_read);
		`); err != nil {
			return fmt.Errorf("failed to create notifications table: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping notifications table...")

		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS notifications;`); err != nil {
			return fmt.Errorf("failed to drop notifications table: %w", err)
		}
		return nil
	})
}
