package importer

import (
	"fmt"
	"time"

	"github.com/alexanderramin/orgdir/internal/domain"
	"github.com/google/uuid"
)

// Plan is a converted import: domain records with ids assigned and refs
// resolved, in an order that can be inserted front to back.
type Plan struct {
	Buildings     []*domain.Building
	Activities    []*domain.Activity
	Organizations []PlannedOrganization
}

// PlannedOrganization is an organization with the phones and activity links
// to store alongside it.
type PlannedOrganization struct {
	Organization *domain.Organization
	Phones       []string
	ActivityIDs  []string
}

// Convert transforms a validated ImportSchema into domain records.
// Generates fresh UUIDs for all entities and resolves ref-based links.
func Convert(schema *ImportSchema) (*Plan, error) {
	now := time.Now().UTC()
	plan := &Plan{
		Buildings:     make([]*domain.Building, 0, len(schema.Buildings)),
		Activities:    make([]*domain.Activity, 0, len(schema.Activities)),
		Organizations: make([]PlannedOrganization, 0, len(schema.Organizations)),
	}

	buildingIDs := make(map[string]string) // ref -> UUID
	for _, b := range schema.Buildings {
		realID := uuid.New().String()
		buildingIDs[b.Ref] = realID
		plan.Buildings = append(plan.Buildings, &domain.Building{
			ID:        realID,
			Name:      domain.NormalizeName(b.Name),
			Address:   domain.NormalizeName(b.Address),
			Latitude:  b.Latitude,
			Longitude: b.Longitude,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	activityIDs := make(map[string]string) // ref -> UUID
	for _, a := range schema.Activities {
		realID := uuid.New().String()
		activityIDs[a.Ref] = realID

		var parentID *string
		if a.ParentRef != nil && *a.ParentRef != "" {
			pid, ok := activityIDs[*a.ParentRef]
			if !ok {
				return nil, fmt.Errorf("parent_ref %q not found for activity %q", *a.ParentRef, a.Ref)
			}
			parentID = &pid
		}

		plan.Activities = append(plan.Activities, &domain.Activity{
			ID:        realID,
			Name:      domain.NormalizeName(a.Name),
			ParentID:  parentID,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	for _, o := range schema.Organizations {
		buildingID, ok := buildingIDs[o.BuildingRef]
		if !ok {
			return nil, fmt.Errorf("building_ref %q not found for organization %q", o.BuildingRef, o.Name)
		}
		linked := make([]string, 0, len(o.ActivityRefs))
		for _, ref := range o.ActivityRefs {
			id, ok := activityIDs[ref]
			if !ok {
				return nil, fmt.Errorf("activity_ref %q not found for organization %q", ref, o.Name)
			}
			linked = append(linked, id)
		}

		plan.Organizations = append(plan.Organizations, PlannedOrganization{
			Organization: &domain.Organization{
				ID:         uuid.New().String(),
				Name:       domain.NormalizeName(o.Name),
				BuildingID: buildingID,
				CreatedAt:  now,
				UpdatedAt:  now,
			},
			Phones:      o.Phones,
			ActivityIDs: domain.UniqueIDs(linked),
		})
	}

	return plan, nil
}
