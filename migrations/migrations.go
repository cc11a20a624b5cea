// Package migrations holds the database schema. Each entry in the list is a
// group of statements applied together in one transaction; the version is
// the 1-based index into the list and is tracked in schema_migrations.
package migrations

import (
	"database/sql"
	"fmt"
)

var migrations = [][]string{
	// Migration 1: all core tables
	{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL DEFAULT '',
			role_id INT NOT NULL DEFAULT 10,
			refresh_token TEXT,
			refresh_expires_at TIMESTAMPTZ,
			refresh_revoked BOOLEAN NOT NULL DEFAULT FALSE
		)`,

		`CREATE TABLE IF NOT EXISTS contacts (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			profession TEXT NOT NULL DEFAULT '',
			income_band TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS lost_reasons (
			id BIGSERIAL PRIMARY KEY,
			label TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS funnels (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			generates_contract BOOLEAN NOT NULL DEFAULT FALSE,
			next_funnel_id BIGINT REFERENCES funnels(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS funnel_stages (
			id BIGSERIAL PRIMARY KEY,
			funnel_id BIGINT NOT NULL REFERENCES funnels(id),
			name TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			order_position INT NOT NULL,
			sla_hours DOUBLE PRECISION,
			proposal_milestone BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_funnel_stages_funnel ON funnel_stages(funnel_id, order_position)`,

		`CREATE TABLE IF NOT EXISTS opportunities (
			id BIGSERIAL PRIMARY KEY,
			contact_id BIGINT NOT NULL REFERENCES contacts(id),
			owner_id BIGINT NOT NULL,
			current_funnel_id BIGINT NOT NULL REFERENCES funnels(id),
			current_stage_id BIGINT NOT NULL REFERENCES funnel_stages(id),
			stage_entered_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			status TEXT NOT NULL DEFAULT 'active',
			proposal_value DOUBLE PRECISION,
			lost_reason_id BIGINT REFERENCES lost_reasons(id),
			lost_at TIMESTAMPTZ,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_opportunities_board ON opportunities(current_funnel_id, status, current_stage_id)`,
		`CREATE INDEX IF NOT EXISTS idx_opportunities_owner ON opportunities(owner_id)`,

		`CREATE TABLE IF NOT EXISTS opportunity_history (
			id BIGSERIAL PRIMARY KEY,
			opportunity_id BIGINT NOT NULL REFERENCES opportunities(id),
			action TEXT NOT NULL,
			from_stage_id BIGINT,
			to_stage_id BIGINT,
			actor_id BIGINT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_opportunity ON opportunity_history(opportunity_id, id)`,

		`CREATE TABLE IF NOT EXISTS tickets (
			id BIGSERIAL PRIMARY KEY,
			creator_id BIGINT NOT NULL,
			assignee_id BIGINT NOT NULL,
			contact_id BIGINT REFERENCES contacts(id),
			opportunity_id BIGINT REFERENCES opportunities(id),
			subject TEXT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			due_date TIMESTAMPTZ,
			priority TEXT NOT NULL DEFAULT 'normal',
			status TEXT NOT NULL DEFAULT 'open',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_assignee ON tickets(assignee_id, status)`,

		`CREATE TABLE IF NOT EXISTS documents (
			id BIGSERIAL PRIMARY KEY,
			opportunity_id BIGINT NOT NULL REFERENCES opportunities(id),
			kind TEXT NOT NULL,
			file_path TEXT NOT NULL,
			created_by BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	},

	// 2: record when an opportunity was won, so win/loss reporting can
	// window on closing time instead of the last edit.
	{
		`ALTER TABLE opportunities ADD COLUMN IF NOT EXISTS won_at TIMESTAMPTZ`,
		`UPDATE opportunities SET won_at = updated_at WHERE status = 'won' AND won_at IS NULL`,
	},
}

// Apply brings the schema up to the latest version.
func Apply(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		version := i + 1
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: begin: %w", version, err)
		}
		for _, stmt := range migrations[i] {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d: %w", version, err)
			}
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: record version: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: commit: %w", version, err)
		}
	}
	return nil
}
