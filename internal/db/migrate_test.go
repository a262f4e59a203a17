package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	// A second run must be a no-op.
	err := Migrate(db)
	require.NoError(t, err)

	err = Migrate(db)
	require.NoError(t, err)
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{"buildings", "activities", "organizations", "phone_numbers", "organization_activities"}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_activities_parent",
		"idx_activities_name_folded",
		"idx_organizations_building",
		"idx_organizations_name_folded",
		"idx_phone_numbers_org",
		"idx_org_activities_activity",
		"idx_buildings_location",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_ActivityParentSetNullOnDelete(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO activities (id, name, name_folded, parent_id, created_at, updated_at)
		VALUES ('root', 'Food', 'food', NULL, '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO activities (id, name, name_folded, parent_id, created_at, updated_at)
		VALUES ('child', 'Dairy', 'dairy', 'root', '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM activities WHERE id = 'root'`)
	require.NoError(t, err)

	var parent sql.NullString
	require.NoError(t, db.QueryRow(`SELECT parent_id FROM activities WHERE id = 'child'`).Scan(&parent))
	assert.False(t, parent.Valid, "child should be promoted to root")
}

func TestMigrate_RejectsOutOfRangeCoordinates(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO buildings (id, name, address, latitude, longitude, created_at, updated_at)
		VALUES ('b1', 'Tower', 'Main st', 91, 10, '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')`)
	require.Error(t, err)
}
