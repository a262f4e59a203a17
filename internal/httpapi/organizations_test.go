package httpapi

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type directory struct {
	food, dairy, milk, cars activityResponse
	center, far             buildingResponse
}

// seedDirectory creates Food -> Dairy -> Milk plus Cars, two buildings about
// 60 km apart and one organization per activity.
func seedDirectory(t *testing.T, s *testServer) directory {
	t.Helper()
	var d directory
	d.food = s.createActivity(t, "Food", nil)
	d.dairy = s.createActivity(t, "Dairy", &d.food.ID)
	d.milk = s.createActivity(t, "Milk", &d.dairy.ID)
	d.cars = s.createActivity(t, "Cars", nil)
	d.center = s.createBuilding(t, "Center", 55.7558, 37.6173)
	d.far = s.createBuilding(t, "Far", 55.7558, 38.5800)

	s.createOrganization(t, "Grocer", d.center.ID, d.food.ID)
	s.createOrganization(t, "Creamery", d.center.ID, d.dairy.ID)
	s.createOrganization(t, "Dairy Farm", d.far.ID, d.milk.ID)
	s.createOrganization(t, "Autoparts", d.far.ID, d.cars.ID)
	return d
}

func (s *testServer) search(t *testing.T, params url.Values) []string {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/api/v1/organizations/search?"+params.Encode(), nil)
	requireStatus(t, rec, http.StatusOK)
	return organizationNames(decode[[]organizationResponse](t, rec))
}

func TestOrganizations_CreateAndGet(t *testing.T) {
	s := setupServer(t)
	d := seedDirectory(t, s)
	created := s.createOrganization(t, "Milk Bar", d.center.ID, d.milk.ID, d.dairy.ID)

	rec := s.do(t, http.MethodGet, "/api/v1/organizations/"+created.ID, nil)
	requireStatus(t, rec, http.StatusOK)
	got := decode[organizationResponse](t, rec)
	assert.Equal(t, "Milk Bar", got.Name)
	require.NotNil(t, got.Building)
	assert.Equal(t, d.center.ID, got.Building.ID)
	require.Len(t, got.PhoneNumbers, 1)
	assert.Equal(t, "8-800-555-35-35", got.PhoneNumbers[0].Number)
	assert.Len(t, got.Activities, 2)

	rec = s.do(t, http.MethodGet, "/api/v1/organizations/missing", nil)
	requireAPIError(t, rec, http.StatusNotFound, "NOT_FOUND")
}

func TestOrganizations_CreateRejectsUnknownReferences(t *testing.T) {
	s := setupServer(t)
	d := seedDirectory(t, s)

	rec := s.do(t, http.MethodPost, "/api/v1/organizations", map[string]any{"name": "Ghost", "building_id": "missing"})
	requireAPIError(t, rec, http.StatusNotFound, "NOT_FOUND")

	rec = s.do(t, http.MethodPost, "/api/v1/organizations", map[string]any{
		"name": "Ghost", "building_id": d.center.ID, "activity_ids": []string{"missing"},
	})
	requireAPIError(t, rec, http.StatusNotFound, "NOT_FOUND")

	rec = s.do(t, http.MethodPost, "/api/v1/organizations", map[string]any{
		"name": "Ghost", "building_id": d.center.ID, "phone_numbers": []string{""},
	})
	env := requireAPIError(t, rec, http.StatusBadRequest, "INVALID_REQUEST")
	assert.Equal(t, "required", env.Meta["phone_numbers[0]"])
}

func TestOrganizations_Search(t *testing.T) {
	s := setupServer(t)
	d := seedDirectory(t, s)

	tests := []struct {
		name   string
		params url.Values
		want   []string
	}{
		{"by name", url.Values{"name": {"dairy"}}, []string{"Dairy Farm"}},
		{"by building", url.Values{"building_id": {d.far.ID}}, []string{"Dairy Farm", "Autoparts"}},
		{"activity with children by default", url.Values{"activity_id": {d.food.ID}}, []string{"Grocer", "Creamery", "Dairy Farm"}},
		{"activity without children", url.Values{"activity_id": {d.food.ID}, "include_child_activities": {"false"}}, []string{"Grocer"}},
		{"activity name", url.Values{"activity_name": {"dairy"}}, []string{"Creamery", "Dairy Farm"}},
		{"unknown activity name", url.Values{"activity_name": {"Boats"}}, []string{}},
		{"name wins over building", url.Values{"name": {"grocer"}, "building_id": {d.far.ID}}, []string{"Grocer"}},
		{"no criteria lists all", url.Values{}, []string{"Grocer", "Creamery", "Dairy Farm", "Autoparts"}},
		{"paged", url.Values{"limit": {"2"}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.search(t, tt.params)
			if tt.want == nil {
				assert.Len(t, got, 2)
				return
			}
			assert.ElementsMatch(t, tt.want, got)
		})
	}

	rec := s.do(t, http.MethodGet, "/api/v1/organizations/search?activity_id=missing", nil)
	requireAPIError(t, rec, http.StatusNotFound, "NOT_FOUND")

	rec = s.do(t, http.MethodGet, "/api/v1/organizations/search?include_child_activities=maybe", nil)
	requireAPIError(t, rec, http.StatusBadRequest, "INVALID_REQUEST")
}

func TestOrganizations_ByLocation(t *testing.T) {
	s := setupServer(t)
	seedDirectory(t, s)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"small radius", "latitude=55.7558&longitude=37.6173&radius=1000", []string{"Grocer", "Creamery"}},
		{"large radius", "latitude=55.7558&longitude=37.6173&radius=100000", []string{"Grocer", "Creamery", "Dairy Farm", "Autoparts"}},
		{"box", "min_lat=55&min_lon=38&max_lat=56&max_lon=39", []string{"Dairy Farm", "Autoparts"}},
		{"empty box", "min_lat=10&min_lon=10&max_lat=11&max_lon=11", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/api/v1/organizations/by-location?"+tt.query, nil)
			requireStatus(t, rec, http.StatusOK)
			assert.ElementsMatch(t, tt.want, organizationNames(decode[[]organizationResponse](t, rec)))
		})
	}

	bad := []string{
		"latitude=55&longitude=37",
		"radius=100",
		"latitude=55&longitude=37&radius=-5",
		"min_lat=55&min_lon=38",
		"min_lat=56&min_lon=38&max_lat=55&max_lon=39",
		"latitude=north&longitude=37&radius=5",
	}
	for _, query := range bad {
		rec := s.do(t, http.MethodGet, "/api/v1/organizations/by-location?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestOrganizations_UpdateAndDelete(t *testing.T) {
	s := setupServer(t)
	d := seedDirectory(t, s)
	org := s.createOrganization(t, "Kiosk", d.center.ID, d.food.ID)

	rec := s.do(t, http.MethodPut, "/api/v1/organizations/"+org.ID, map[string]any{
		"name":          "Car Kiosk",
		"building_id":   d.far.ID,
		"phone_numbers": []string{"1-111", "2-222"},
		"activity_ids":  []string{d.cars.ID},
	})
	requireStatus(t, rec, http.StatusOK)
	updated := decode[organizationResponse](t, rec)
	assert.Equal(t, "Car Kiosk", updated.Name)
	assert.Equal(t, d.far.ID, updated.Building.ID)
	require.Len(t, updated.PhoneNumbers, 2)
	assert.Equal(t, "1-111", updated.PhoneNumbers[0].Number)
	require.Len(t, updated.Activities, 1)
	assert.Equal(t, d.cars.ID, updated.Activities[0].ID)

	// Fields left out stay as they were.
	rec = s.do(t, http.MethodPut, "/api/v1/organizations/"+org.ID, map[string]any{"name": "Kiosk"})
	requireStatus(t, rec, http.StatusOK)
	assert.Len(t, decode[organizationResponse](t, rec).PhoneNumbers, 2)

	rec = s.do(t, http.MethodDelete, "/api/v1/organizations/"+org.ID, nil)
	requireStatus(t, rec, http.StatusOK)
	rec = s.do(t, http.MethodDelete, "/api/v1/organizations/"+org.ID, nil)
	requireAPIError(t, rec, http.StatusNotFound, "NOT_FOUND")
}

func TestOrganizations_ActivityDeleteDetachesLinks(t *testing.T) {
	s := setupServer(t)
	d := seedDirectory(t, s)

	rec := s.do(t, http.MethodDelete, "/api/v1/activities/"+d.dairy.ID, nil)
	requireStatus(t, rec, http.StatusOK)

	assert.ElementsMatch(t, []string{"Grocer"}, s.search(t, url.Values{"activity_id": {d.food.ID}}))
	assert.ElementsMatch(t, []string{"Dairy Farm"}, s.search(t, url.Values{"activity_id": {d.milk.ID}}))
}
