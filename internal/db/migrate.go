package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS buildings (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		address     TEXT NOT NULL,
		latitude    REAL NOT NULL CHECK(latitude BETWEEN -90 AND 90),
		longitude   REAL NOT NULL CHECK(longitude BETWEEN -180 AND 180),
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS activities (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		name_folded TEXT NOT NULL,
		parent_id   TEXT REFERENCES activities(id) ON DELETE SET NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS organizations (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		name_folded TEXT NOT NULL,
		building_id TEXT NOT NULL REFERENCES buildings(id) ON DELETE CASCADE,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS phone_numbers (
		id              TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		number          TEXT NOT NULL,
		position        INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS organization_activities (
		organization_id TEXT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		activity_id     TEXT NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
		PRIMARY KEY (organization_id, activity_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_activities_parent ON activities(parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_name_folded ON activities(name_folded)`,
	`CREATE INDEX IF NOT EXISTS idx_organizations_building ON organizations(building_id)`,
	`CREATE INDEX IF NOT EXISTS idx_organizations_name_folded ON organizations(name_folded)`,
	`CREATE INDEX IF NOT EXISTS idx_phone_numbers_org ON phone_numbers(organization_id)`,
	`CREATE INDEX IF NOT EXISTS idx_org_activities_activity ON organization_activities(activity_id)`,
	`CREATE INDEX IF NOT EXISTS idx_buildings_location ON buildings(latitude, longitude)`,
}
