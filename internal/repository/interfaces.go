package repository

import (
	"context"

	"github.com/alexanderramin/orgdir/internal/domain"
)

// ActivityRepo is the node store for the activity forest.
type ActivityRepo interface {
	// Create inserts a, assigning a.ID when it is empty.
	Create(ctx context.Context, a *domain.Activity) error
	GetByID(ctx context.Context, id string) (*domain.Activity, error)
	// GetParentID returns the parent pointer of id; nil means id is a root.
	GetParentID(ctx context.Context, id string) (*string, error)
	ListChildren(ctx context.Context, parentID string) ([]*domain.Activity, error)
	ListRoots(ctx context.Context) ([]*domain.Activity, error)
	ListAll(ctx context.Context) ([]*domain.Activity, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Activity, error)
	Count(ctx context.Context) (int, error)
	SetParent(ctx context.Context, id string, parentID *string) error
	SetName(ctx context.Context, id, name string) error
	// DetachChildren turns every direct child of parentID into a root.
	DetachChildren(ctx context.Context, parentID string) (int64, error)
	Delete(ctx context.Context, id string) error
	FindByNameExact(ctx context.Context, name string) (*domain.Activity, error)
	FindByNameContains(ctx context.Context, substr string) ([]*domain.Activity, error)
}

// AssociationRepo persists organization <-> activity links.
type AssociationRepo interface {
	FindOrganizationsByActivityIDs(ctx context.Context, activityIDs []string) ([]string, error)
	ReplaceActivities(ctx context.Context, organizationID string, activityIDs []string) error
	ListActivities(ctx context.Context, organizationID string) ([]*domain.Activity, error)
}

type BuildingRepo interface {
	Create(ctx context.Context, b *domain.Building) error
	GetByID(ctx context.Context, id string) (*domain.Building, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Building, error)
	ListWithinBounds(ctx context.Context, bounds domain.Bounds) ([]*domain.Building, error)
	Update(ctx context.Context, b *domain.Building) error
	Delete(ctx context.Context, id string) error
}

type OrganizationRepo interface {
	Create(ctx context.Context, o *domain.Organization) error
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Organization, error)
	ListByIDs(ctx context.Context, ids []string) ([]*domain.Organization, error)
	ListByBuilding(ctx context.Context, buildingID string) ([]*domain.Organization, error)
	ListByBuildings(ctx context.Context, buildingIDs []string) ([]*domain.Organization, error)
	SearchByName(ctx context.Context, substr string) ([]*domain.Organization, error)
	Update(ctx context.Context, o *domain.Organization) error
	Delete(ctx context.Context, id string) error
	ReplacePhones(ctx context.Context, organizationID string, numbers []string) error
	ListPhones(ctx context.Context, organizationID string) ([]domain.PhoneNumber, error)
}
