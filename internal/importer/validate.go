package importer

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/orgdir/internal/domain"
)

// ValidateImportSchema checks the import schema for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	buildingRefs := make(map[string]bool)
	errs = append(errs, validateBuildings(schema.Buildings, buildingRefs)...)

	activityDepth := make(map[string]int)
	errs = append(errs, validateActivities(schema.Activities, activityDepth)...)

	errs = append(errs, validateOrganizations(schema.Organizations, buildingRefs, activityDepth)...)

	return errs
}

func validateBuildings(buildings []BuildingImport, refs map[string]bool) []error {
	var errs []error

	for i, b := range buildings {
		prefix := fmt.Sprintf("buildings[%d]", i)

		if b.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if refs[b.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, b.Ref))
		} else {
			refs[b.Ref] = true
		}

		if isBlank(b.Name) {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if isBlank(b.Address) {
			errs = append(errs, fmt.Errorf("%s.address is required", prefix))
		}
		if err := domain.ValidateCoordinates(b.Latitude, b.Longitude); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
		}
	}

	return errs
}

// validateActivities records the depth of every valid ref so that nesting
// beyond domain.MaxActivityDepth is reported before anything is written.
func validateActivities(activities []ActivityImport, depth map[string]int) []error {
	var errs []error

	for i, a := range activities {
		prefix := fmt.Sprintf("activities[%d]", i)

		if isBlank(a.Name) {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}

		level := 0
		if a.ParentRef != nil && *a.ParentRef != "" {
			parentDepth, ok := depth[*a.ParentRef]
			if !ok {
				errs = append(errs, fmt.Errorf("%s.parent_ref: ref %q not found (must appear earlier in activities list)", prefix, *a.ParentRef))
			} else {
				level = parentDepth + 1
				if level > domain.MaxActivityDepth {
					errs = append(errs, fmt.Errorf("%s: nesting under %q exceeds %d levels", prefix, *a.ParentRef, domain.MaxActivityDepth+1))
				}
			}
		}

		if a.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if _, dup := depth[a.Ref]; dup {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, a.Ref))
		} else {
			depth[a.Ref] = level
		}
	}

	return errs
}

func validateOrganizations(orgs []OrganizationImport, buildingRefs map[string]bool, activityRefs map[string]int) []error {
	var errs []error

	for i, o := range orgs {
		prefix := fmt.Sprintf("organizations[%d]", i)

		if isBlank(o.Name) {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if o.BuildingRef == "" {
			errs = append(errs, fmt.Errorf("%s.building_ref is required", prefix))
		} else if !buildingRefs[o.BuildingRef] {
			errs = append(errs, fmt.Errorf("%s.building_ref: ref %q not found", prefix, o.BuildingRef))
		}
		for j, phone := range o.Phones {
			if isBlank(phone) {
				errs = append(errs, fmt.Errorf("%s.phones[%d] is blank", prefix, j))
			}
		}
		for j, ref := range o.ActivityRefs {
			if _, ok := activityRefs[ref]; !ok {
				errs = append(errs, fmt.Errorf("%s.activity_refs[%d]: ref %q not found", prefix, j, ref))
			}
		}
	}

	return errs
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
