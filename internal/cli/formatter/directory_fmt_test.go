package formatter

import (
	"testing"

	"github.com/alexanderramin/orgdir/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormatOrganizationList(t *testing.T) {
	orgs := []*domain.OrganizationDetails{
		{
			Organization: domain.Organization{ID: "org-1", Name: "Horns and Hooves"},
			Building:     &domain.Building{Name: "Tower"},
			Phones:       []domain.PhoneNumber{{Number: "2-222-222"}, {Number: "3-333-333"}},
			Activities:   []*domain.Activity{{Name: "Meat"}, {Name: "Dairy"}},
		},
		{Organization: domain.Organization{ID: "org-2", Name: "Nowhere"}},
	}

	got := stripANSI(FormatOrganizationList(orgs))
	assert.Contains(t, got, "Horns and Hooves")
	assert.Contains(t, got, "Meat, Dairy")
	assert.Contains(t, got, "2-222-222, 3-333-333")
	assert.Contains(t, got, "--")

	assert.Equal(t, "No organizations\n", stripANSI(FormatOrganizationList(nil)))
}

func TestFormatNearbyBuildings_ShowsDistance(t *testing.T) {
	buildings := []*domain.Building{{ID: "b1", Name: "Tower", Address: "Main 1", Latitude: 55.7558, Longitude: 37.6173}}
	got := stripANSI(FormatNearbyBuildings(buildings, 55.7558, 37.6173))
	assert.Contains(t, got, "0 m")
}

func TestFormatBuildingDetail(t *testing.T) {
	b := &domain.BuildingWithOrganizations{
		Building:      domain.Building{ID: "b1", Name: "Tower", Address: "Main 1", Latitude: 1.5, Longitude: 2.25},
		Organizations: []*domain.Organization{{ID: "o1", Name: "Grocer"}},
	}
	got := stripANSI(FormatBuildingDetail(b))
	assert.Contains(t, got, "1.500000, 2.250000")
	assert.Contains(t, got, "Grocer")
}
