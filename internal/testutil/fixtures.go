package testutil

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/orgdir/internal/domain"
	"github.com/google/uuid"
)

var testBuildingCounter atomic.Int64

// Activity options
type ActivityOption func(*domain.Activity)

func WithParent(parent *domain.Activity) ActivityOption {
	return func(a *domain.Activity) {
		id := parent.ID
		a.ParentID = &id
	}
}

func WithParentID(id string) ActivityOption {
	return func(a *domain.Activity) {
		a.ParentID = &id
	}
}

func NewTestActivity(name string, opts ...ActivityOption) *domain.Activity {
	now := time.Now().UTC()
	a := &domain.Activity{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Building options
type BuildingOption func(*domain.Building)

func WithLocation(lat, lon float64) BuildingOption {
	return func(b *domain.Building) {
		b.Latitude = lat
		b.Longitude = lon
	}
}

func NewTestBuilding(name string, opts ...BuildingOption) *domain.Building {
	now := time.Now().UTC()
	n := testBuildingCounter.Add(1)
	b := &domain.Building{
		ID:        uuid.New().String(),
		Name:      name,
		Address:   fmt.Sprintf("%d Test Street", n),
		Latitude:  55.75,
		Longitude: 37.61,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func NewTestOrganization(name, buildingID string) *domain.Organization {
	now := time.Now().UTC()
	return &domain.Organization{
		ID:         uuid.New().String(),
		Name:       name,
		BuildingID: buildingID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// SeedActivityChain inserts a root-to-leaf chain of activities named by
// names, each one a child of the previous, and returns them in order.
func SeedActivityChain(t *testing.T, database *sql.DB, names ...string) []*domain.Activity {
	t.Helper()
	out := make([]*domain.Activity, 0, len(names))
	for i, name := range names {
		var opts []ActivityOption
		if i > 0 {
			opts = append(opts, WithParent(out[i-1]))
		}
		a := NewTestActivity(name, opts...)
		if err := InsertActivity(database, a); err != nil {
			t.Fatalf("seeding activity %q: %v", name, err)
		}
		out = append(out, a)
	}
	return out
}

// InsertActivity writes a directly with SQL. testutil cannot depend on the
// repository package because repository tests import testutil.
func InsertActivity(database *sql.DB, a *domain.Activity) error {
	_, err := database.Exec(`INSERT INTO activities (id, name, name_folded, parent_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, domain.FoldName(a.Name), a.ParentID,
		a.CreatedAt.Format(time.RFC3339), a.UpdatedAt.Format(time.RFC3339))
	return err
}

// ForceParent rewrites an activity's parent pointer directly in SQL,
// bypassing every hierarchy check. Used to simulate a corrupted store.
func ForceParent(t *testing.T, database *sql.DB, id string, parentID *string) {
	t.Helper()
	if _, err := database.Exec(`UPDATE activities SET parent_id = ? WHERE id = ?`, parentID, id); err != nil {
		t.Fatalf("forcing parent of %s: %v", id, err)
	}
}
