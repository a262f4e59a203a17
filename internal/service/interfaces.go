package service

import (
	"context"

	"github.com/alexanderramin/orgdir/internal/domain"
	"github.com/alexanderramin/orgdir/internal/importer"
)

// ActivityService is the activity hierarchy engine. It owns the forest
// invariants: no cycles, no node deeper than domain.MaxActivityDepth.
type ActivityService interface {
	Create(ctx context.Context, name string, parentID *string) (*domain.Activity, error)
	GetByID(ctx context.Context, id string) (*domain.Activity, error)
	GetWithChildren(ctx context.Context, id string) (*domain.ActivityWithChildren, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Activity, error)
	ListRoots(ctx context.Context) ([]*domain.Activity, error)
	Tree(ctx context.Context) ([]*domain.ActivityWithChildren, error)
	Update(ctx context.Context, id string, upd domain.ActivityUpdate) (*domain.Activity, error)
	// Delete reports false when id does not exist. Children of a deleted
	// activity become roots.
	Delete(ctx context.Context, id string) (bool, error)
	// DepthOf returns the depth a new child of parentID would occupy.
	DepthOf(ctx context.Context, parentID *string) (int, error)
	// DescendantClosure returns id and every descendant, breadth first.
	DescendantClosure(ctx context.Context, id string) ([]string, error)
	ByNameExact(ctx context.Context, name string) (*domain.Activity, error)
	ByNameSubstring(ctx context.Context, name string) ([]*domain.Activity, error)
}

type BuildingService interface {
	Create(ctx context.Context, b *domain.Building) error
	GetByID(ctx context.Context, id string) (*domain.Building, error)
	GetWithOrganizations(ctx context.Context, id string) (*domain.BuildingWithOrganizations, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Building, error)
	Update(ctx context.Context, id string, upd domain.BuildingUpdate) (*domain.Building, error)
	Delete(ctx context.Context, id string) error
	ListWithinRadius(ctx context.Context, lat, lon, meters float64) ([]*domain.Building, error)
	ListWithinBounds(ctx context.Context, bounds domain.Bounds) ([]*domain.Building, error)
}

// SearchFilter selects organizations. The first non-empty criterion wins,
// in field order; an empty filter lists everything.
type SearchFilter struct {
	Name                   string
	BuildingID             string
	ActivityID             string
	ActivityName           string
	IncludeChildActivities bool
	Offset                 int
	Limit                  int
}

type OrganizationService interface {
	Create(ctx context.Context, in domain.OrganizationInput) (*domain.OrganizationDetails, error)
	GetByID(ctx context.Context, id string) (*domain.OrganizationDetails, error)
	List(ctx context.Context, offset, limit int) ([]*domain.OrganizationDetails, error)
	Update(ctx context.Context, id string, upd domain.OrganizationUpdate) (*domain.OrganizationDetails, error)
	Delete(ctx context.Context, id string) error
	ListByBuilding(ctx context.Context, buildingID string) ([]*domain.OrganizationDetails, error)
	SearchByName(ctx context.Context, name string) ([]*domain.OrganizationDetails, error)
	ListByActivity(ctx context.Context, activityID string, includeChildren bool) ([]*domain.OrganizationDetails, error)
	ListByActivityName(ctx context.Context, name string, includeChildren bool) ([]*domain.OrganizationDetails, error)
	ListByLocation(ctx context.Context, q domain.LocationQuery) ([]*domain.OrganizationDetails, error)
	Search(ctx context.Context, f SearchFilter) ([]*domain.OrganizationDetails, error)
}

// ImportResult holds the outcome of a directory import.
type ImportResult struct {
	BuildingCount     int
	ActivityCount     int
	OrganizationCount int
}

type ImportService interface {
	Import(ctx context.Context, filePath string) (*ImportResult, error)
	ImportFromSchema(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error)
}
